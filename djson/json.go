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


package djson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Value is a decoded JSON value: nil, bool, json.Number, string, []Value or
// map[string]Value. Numbers are kept as json.Number so that integers and
// floats can be told apart.
type Value interface{}

type InvalidValueError struct {
	Value interface{}
}

func (err *InvalidValueError) Error() string {
	return fmt.Sprintf("%#v (%T) is not a valid json value",
		err.Value, err.Value)
}

func Decode(data []byte) (Value, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if _, err := decoder.Token(); err != io.EOF {
		return nil, errors.New("trailing data after json value")
	}

	return convert(value)
}

func convert(value interface{}) (Value, error) {
	switch v := value.(type) {
	case nil, bool, json.Number, string:
		return v, nil

	case []interface{}:
		array := make([]Value, len(v))
		for i, element := range v {
			e, err := convert(element)
			if err != nil {
				return nil, err
			}
			array[i] = e
		}
		return array, nil

	case map[string]interface{}:
		obj := make(map[string]Value, len(v))
		for key, member := range v {
			m, err := convert(member)
			if err != nil {
				return nil, err
			}
			obj[key] = m
		}
		return obj, nil

	default:
		return nil, &InvalidValueError{Value: value}
	}
}

func IsNull(v Value) bool {
	return v == nil
}

func IsNumber(v Value) bool {
	_, ok := v.(json.Number)
	return ok
}

// IsInteger returns true if v is a number written without fraction or
// exponent, e.g. 42 but not 42.0 or 4.2e1.
func IsInteger(v Value) bool {
	n, ok := v.(json.Number)
	return ok && !strings.ContainsAny(string(n), ".eE")
}

func IsString(v Value) bool {
	_, ok := v.(string)
	return ok
}

func IsBoolean(v Value) bool {
	_, ok := v.(bool)
	return ok
}

func IsArray(v Value) bool {
	_, ok := v.([]Value)
	return ok
}

func IsObject(v Value) bool {
	_, ok := v.(map[string]Value)
	return ok
}

func AsInteger(v Value) (int64, error) {
	return strconv.ParseInt(string(v.(json.Number)), 10, 64)
}

func AsFloat(v Value) (float64, error) {
	return strconv.ParseFloat(string(v.(json.Number)), 64)
}

func AsString(v Value) string {
	return v.(string)
}

func AsBoolean(v Value) bool {
	return v.(bool)
}

func AsArray(v Value) []Value {
	return v.([]Value)
}

func AsObject(v Value) map[string]Value {
	return v.(map[string]Value)
}

// Format returns the textual form of a scalar value: strings as they are,
// numbers as written in the document, booleans as true or false.
func Format(v Value) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", &InvalidValueError{Value: v}
	}
}
