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


package influx

import (
	"fmt"

	"github.com/exograd/go-influx-udp/djson"
)

// SampleFromJSON converts a decoded JSON value to a sample. A scalar is a
// single value, an object is a set of fields, and a two element array is a
// value or set of fields followed by an object of tags. JSON numbers
// written without fraction or exponent are integers.
func SampleFromJSON(v djson.Value) (Sample, error) {
	switch {
	case djson.IsArray(v):
		array := djson.AsArray(v)
		if len(array) != 2 {
			return nil, fmt.Errorf("tagged sample must contain 2 elements")
		}

		if djson.IsArray(array[0]) {
			return nil, fmt.Errorf("nested tagged sample")
		}

		sample, err := SampleFromJSON(array[0])
		if err != nil {
			return nil, err
		}

		tags, err := TagsFromJSON(array[1])
		if err != nil {
			return nil, err
		}

		return Tagged(sample, tags), nil

	case djson.IsObject(v):
		obj := djson.AsObject(v)

		fields := make(Fields, len(obj))
		for key, member := range obj {
			value, err := FieldValueFromJSON(member)
			if err != nil {
				return nil, fmt.Errorf("invalid field %q: %w", key, err)
			}

			fields[key] = value
		}

		return fields, nil

	default:
		return FieldValueFromJSON(v)
	}
}

func FieldValueFromJSON(v djson.Value) (FieldValue, error) {
	switch {
	case djson.IsBoolean(v):
		return Bool(djson.AsBoolean(v)), nil

	case djson.IsString(v):
		return String(djson.AsString(v)), nil

	case djson.IsInteger(v):
		i, err := djson.AsInteger(v)
		if err != nil {
			return FieldValue{}, fmt.Errorf("invalid integer: %w", err)
		}

		return Int(i), nil

	case djson.IsNumber(v):
		f, err := djson.AsFloat(v)
		if err != nil {
			return FieldValue{}, fmt.Errorf("invalid number: %w", err)
		}

		return Float(f), nil

	default:
		return FieldValue{}, fmt.Errorf("value must be a boolean, a number " +
			"or a string")
	}
}

// TagsFromJSON converts a JSON object to a tag set. Numbers and booleans
// are converted to their textual representation. A null value is an empty
// tag set.
func TagsFromJSON(v djson.Value) (Tags, error) {
	if djson.IsNull(v) {
		return Tags{}, nil
	}

	if !djson.IsObject(v) {
		return nil, fmt.Errorf("tags must be an object")
	}

	obj := djson.AsObject(v)

	tags := make(Tags, len(obj))
	for key, member := range obj {
		s, err := djson.Format(member)
		if err != nil {
			return nil, fmt.Errorf("invalid tag %q: value must be a "+
				"boolean, a number or a string", key)
		}

		tags[key] = s
	}

	return tags, nil
}
