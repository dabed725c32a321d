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
	"bytes"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/exograd/go-influx-udp/dtime"
)

var (
	measurementEscaper = strings.NewReplacer(",", "\\,", " ", "\\ ")
	keyEscaper         = strings.NewReplacer(",", "\\,", " ", "\\ ", "=", "\\=")
	tagValueEscaper    = strings.NewReplacer(" ", "\\ ", ",", "\\,", "\"", "\\\"")
	stringEscaper      = strings.NewReplacer("\"", "\\\"")
)

// EncodePoint writes the line protocol representation of a point to buf.
// Tags and fields are written in ascending key order. Points without a
// timestamp are stamped with the current time of the clock.
//
// Nothing is written to buf if the point cannot be encoded.
func EncodePoint(p *Point, clock dtime.Clock, buf *bytes.Buffer) error {
	if err := checkPoint(p); err != nil {
		return err
	}

	buf.WriteString(measurementEscaper.Replace(p.Measurement))

	for _, key := range sortedTagKeys(p.Tags) {
		buf.WriteByte(',')
		buf.WriteString(keyEscaper.Replace(key))
		buf.WriteByte('=')
		buf.WriteString(tagValueEscaper.Replace(p.Tags[key]))
	}

	buf.WriteByte(' ')

	for i, key := range sortedFieldKeys(p.Fields) {
		if i > 0 {
			buf.WriteByte(',')
		}

		buf.WriteString(keyEscaper.Replace(key))
		buf.WriteByte('=')
		encodeFieldValue(p.Fields[key], buf)
	}

	var nanos int64
	if p.Timestamp == nil {
		nanos = clock.Now().UnixNano()
	} else {
		nanos = p.Timestamp.UnixNano()
	}

	buf.WriteByte(' ')
	buf.WriteString(strconv.FormatInt(nanos, 10))

	return nil
}

// EncodePoints writes points as newline-separated lines, without a final
// newline. Either all points are written or none.
func EncodePoints(ps Points, clock dtime.Clock, buf *bytes.Buffer) error {
	for _, p := range ps {
		if err := checkPoint(p); err != nil {
			return err
		}
	}

	for i, p := range ps {
		if i > 0 {
			buf.WriteByte('\n')
		}

		if err := EncodePoint(p, clock, buf); err != nil {
			return err
		}
	}

	return nil
}

func EncodeLine(p *Point, clock dtime.Clock) (string, error) {
	var buf bytes.Buffer
	if err := EncodePoint(p, clock, &buf); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func encodeFieldValue(v FieldValue, buf *bytes.Buffer) {
	switch v.kind {
	case KindBoolean:
		if v.b {
			buf.WriteString("TRUE")
		} else {
			buf.WriteString("FALSE")
		}

	case KindInteger:
		buf.WriteString(strconv.FormatInt(v.i, 10))
		buf.WriteByte('i')

	case KindFloat:
		buf.WriteString(strconv.FormatFloat(v.f, 'f', -1, 64))

	case KindString:
		buf.WriteByte('"')
		buf.WriteString(stringEscaper.Replace(v.s))
		buf.WriteByte('"')
	}
}

func checkPoint(p *Point) error {
	if p == nil {
		return &EncodingError{Message: "missing point"}
	}

	if p.Measurement == "" {
		return &EncodingError{Message: "empty measurement"}
	}

	for key, value := range p.Tags {
		if key == "" {
			return &EncodingError{Message: "empty tag key"}
		}

		if value == "" {
			return &EncodingError{Key: key, Message: "empty tag value"}
		}
	}

	if len(p.Fields) == 0 {
		return &EncodingError{Message: "no fields"}
	}

	for key, value := range p.Fields {
		if key == "" {
			return &EncodingError{Message: "empty field key"}
		}

		switch value.kind {
		case KindInvalid:
			return &EncodingError{Key: key, Message: "invalid field value"}

		case KindFloat:
			if math.IsNaN(value.f) || math.IsInf(value.f, 0) {
				return &EncodingError{Key: key,
					Message: "float value is not a finite number"}
			}
		}
	}

	return nil
}

func sortedTagKeys(tags Tags) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func sortedFieldKeys(fields Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
