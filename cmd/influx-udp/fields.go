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


package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/exograd/go-influx-udp/influx"
)

// parseFields parses a comma-separated list of key=value fields. Values
// follow line protocol conventions: "12i" is an integer, "1.5" or "2" a
// float, "true" and "false" booleans; anything else, quoted or not, is a
// string.
func parseFields(s string) (influx.Fields, error) {
	pairs, err := splitPairs(s)
	if err != nil {
		return nil, err
	}

	fields := make(influx.Fields, len(pairs))
	for key, value := range pairs {
		fields[key] = parseFieldValue(value)
	}

	return fields, nil
}

func parseTags(s string) (influx.Tags, error) {
	pairs, err := splitPairs(s)
	if err != nil {
		return nil, err
	}

	tags := make(influx.Tags, len(pairs))
	for key, value := range pairs {
		tags[key] = unquote(value)
	}

	return tags, nil
}

func parseFieldValue(s string) influx.FieldValue {
	if isQuoted(s) {
		return influx.String(unquote(s))
	}

	switch strings.ToLower(s) {
	case "true":
		return influx.Bool(true)
	case "false":
		return influx.Bool(false)
	}

	if strings.HasSuffix(s, "i") {
		if i, err := strconv.ParseInt(s[:len(s)-1], 10, 64); err == nil {
			return influx.Int(i)
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return influx.Float(f)
	}

	return influx.String(s)
}

// splitPairs splits "k1=v1,k2=v2" on commas which are not part of a double
// quoted value.
func splitPairs(s string) (map[string]string, error) {
	pairs := make(map[string]string)

	if s == "" {
		return pairs, nil
	}

	var parts []string

	start := 0
	quoted := false

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if quoted {
				i++
			}
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}

	if quoted {
		return nil, fmt.Errorf("unterminated quoted value")
	}

	parts = append(parts, s[start:])

	for _, part := range parts {
		key, value, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("invalid pair %q: missing '='", part)
		}

		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid pair %q: empty key", part)
		}

		if _, found := pairs[key]; found {
			return nil, fmt.Errorf("duplicate key %q", key)
		}

		pairs[key] = value
	}

	return pairs, nil
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

var quoteDecoder = strings.NewReplacer(`\"`, `"`, `\\`, `\`)

func unquote(s string) string {
	if !isQuoted(s) {
		return s
	}

	return quoteDecoder.Replace(s[1 : len(s)-1])
}
