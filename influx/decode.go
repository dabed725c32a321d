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
	"math"
	"time"

	"github.com/influxdata/line-protocol/v2/lineprotocol"
)

// DecodePoints parses line protocol data with nanosecond timestamps. Lines
// without a timestamp produce points without a timestamp.
func DecodePoints(data []byte) (Points, error) {
	var points Points

	decoder := lineprotocol.NewDecoderWithBytes(data)

	for decoder.Next() {
		point, err := decodePoint(decoder)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", len(points)+1, err)
		}

		points = append(points, point)
	}

	return points, nil
}

func decodePoint(decoder *lineprotocol.Decoder) (*Point, error) {
	measurement, err := decoder.Measurement()
	if err != nil {
		return nil, fmt.Errorf("invalid measurement: %w", err)
	}

	point := NewPoint(string(measurement), Tags{}, Fields{})

	for {
		key, value, err := decoder.NextTag()
		if err != nil {
			return nil, fmt.Errorf("invalid tag: %w", err)
		} else if key == nil {
			break
		}

		point.Tags[string(key)] = string(value)
	}

	for {
		key, value, err := decoder.NextField()
		if err != nil {
			return nil, fmt.Errorf("invalid field: %w", err)
		} else if key == nil {
			break
		}

		fieldValue, err := decodeFieldValue(value)
		if err != nil {
			return nil, fmt.Errorf("invalid field %q: %w", key, err)
		}

		point.Fields[string(key)] = fieldValue
	}

	t, err := decoder.Time(lineprotocol.Nanosecond, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp: %w", err)
	}

	if !t.IsZero() {
		point.Timestamp = &t
	}

	return point, nil
}

func decodeFieldValue(value lineprotocol.Value) (FieldValue, error) {
	switch value.Kind() {
	case lineprotocol.Int:
		return Int(value.IntV()), nil

	case lineprotocol.Uint:
		u := value.UintV()
		if u > math.MaxInt64 {
			return FieldValue{}, fmt.Errorf("unsigned integer %d overflows int64", u)
		}

		return Int(int64(u)), nil

	case lineprotocol.Float:
		return Float(value.FloatV()), nil

	case lineprotocol.String:
		return String(value.StringV()), nil

	case lineprotocol.Bool:
		return Bool(value.BoolV()), nil

	default:
		return FieldValue{}, fmt.Errorf("unsupported value kind %v", value.Kind())
	}
}
