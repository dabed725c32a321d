// Copyright (c) 2022 Exograd SAS.
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that the above
// copyright notice and this permission notice appear in all copies.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
// WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY
// SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
// WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
// ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR
// IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.


package daemon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

var TemplateFuncMap = map[string]interface{}{
	"env": func(name string) string {
		return os.Getenv(name)
	},
}

// LoadCfg reads a YAML configuration file, renders it as a template and
// decodes it into dest using the json tags of dest.
func LoadCfg(filePath string, dest interface{}) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", filePath, err)
	}

	data2, err := RenderCfg(data)
	if err != nil {
		return fmt.Errorf("cannot render %s: %w", filePath, err)
	}

	return DecodeCfg(data2, dest)
}

func DecodeCfg(data []byte, dest interface{}) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))

	var yamlValue interface{}
	if err := decoder.Decode(&yamlValue); err != nil && err != io.EOF {
		return fmt.Errorf("cannot decode yaml data: %w", err)
	}

	jsonValue, err := YAMLValueToJSONValue(yamlValue)
	if err != nil {
		return fmt.Errorf("invalid yaml data: %w", err)
	}

	jsonData, err := json.Marshal(jsonValue)
	if err != nil {
		return fmt.Errorf("cannot generate json data: %w", err)
	}

	if err := json.Unmarshal(jsonData, dest); err != nil {
		return fmt.Errorf("cannot decode json data: %w", err)
	}

	return nil
}

func RenderCfg(data []byte) ([]byte, error) {
	tpl := template.New("")
	tpl = tpl.Option("missingkey=error")
	tpl = tpl.Funcs(TemplateFuncMap)

	if _, err := tpl.Parse(string(data)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	templateData := struct{}{}

	if err := tpl.Execute(&buf, templateData); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// YAMLValueToJSONValue converts a value decoded by the yaml package to a
// value which can be encoded by the json package. YAML mappings can have
// non-string keys; JSON objects cannot.
func YAMLValueToJSONValue(yamlValue interface{}) (interface{}, error) {
	switch v := yamlValue.(type) {
	case []interface{}:
		array := make([]interface{}, len(v))

		for i, yamlElement := range v {
			element, err := YAMLValueToJSONValue(yamlElement)
			if err != nil {
				return nil, err
			}

			array[i] = element
		}

		return array, nil

	case map[string]interface{}:
		obj := make(map[string]interface{}, len(v))

		for key, yamlMember := range v {
			member, err := YAMLValueToJSONValue(yamlMember)
			if err != nil {
				return nil, err
			}

			obj[key] = member
		}

		return obj, nil

	case map[interface{}]interface{}:
		obj := make(map[string]interface{}, len(v))

		for yamlKey, yamlMember := range v {
			key, ok := yamlKey.(string)
			if !ok {
				return nil, fmt.Errorf("invalid non-string key %#v", yamlKey)
			}

			member, err := YAMLValueToJSONValue(yamlMember)
			if err != nil {
				return nil, err
			}

			obj[key] = member
		}

		return obj, nil

	default:
		return yamlValue, nil
	}
}
