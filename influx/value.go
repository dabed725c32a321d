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
)

type ValueKind int

const (
	KindInvalid ValueKind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
)

func (k ValueKind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// FieldValue is a typed field value. The kind is decided by the caller when
// the value is built and is never inferred from a formatted string, so that
// Int(1) and Float(1) are encoded differently.
type FieldValue struct {
	kind ValueKind

	b bool
	i int64
	f float64
	s string
}

func Bool(b bool) FieldValue {
	return FieldValue{kind: KindBoolean, b: b}
}

func Int(i int64) FieldValue {
	return FieldValue{kind: KindInteger, i: i}
}

func Float(f float64) FieldValue {
	return FieldValue{kind: KindFloat, f: f}
}

func String(s string) FieldValue {
	return FieldValue{kind: KindString, s: s}
}

// ValueOf converts a native Go value to a FieldValue. Signed and unsigned
// integers of any width become integers, float32 and float64 become floats.
// Any other type is rejected.
func ValueOf(v interface{}) (FieldValue, error) {
	switch x := v.(type) {
	case FieldValue:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return uintValue(uint64(x))
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return uintValue(x)
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	default:
		return FieldValue{}, &EncodingError{
			Message: fmt.Sprintf("unsupported field value type %T", v),
		}
	}
}

// MustValueOf is like ValueOf but panics on unsupported types.
func MustValueOf(v interface{}) FieldValue {
	value, err := ValueOf(v)
	if err != nil {
		panic(err)
	}

	return value
}

func uintValue(u uint64) (FieldValue, error) {
	if u > math.MaxInt64 {
		return FieldValue{}, &EncodingError{
			Message: fmt.Sprintf("unsigned integer %d overflows int64", u),
		}
	}

	return Int(int64(u)), nil
}

func (v FieldValue) Kind() ValueKind {
	return v.kind
}

func (v FieldValue) IsValid() bool {
	return v.kind != KindInvalid
}

func (v FieldValue) BoolValue() bool {
	return v.b
}

func (v FieldValue) IntValue() int64 {
	return v.i
}

func (v FieldValue) FloatValue() float64 {
	return v.f
}

func (v FieldValue) StringValue() string {
	return v.s
}

// Interface returns the value as bool, int64, float64 or string, or nil for
// an invalid value.
func (v FieldValue) Interface() interface{} {
	switch v.kind {
	case KindBoolean:
		return v.b
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	default:
		return nil
	}
}

func (v FieldValue) String() string {
	return fmt.Sprintf("%s(%v)", v.kind, v.Interface())
}

func (v FieldValue) GoString() string {
	return v.String()
}
