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
	protocol "github.com/influxdata/line-protocol"
)

// PointFromMetric converts a metric built for the influxdata line-protocol
// encoder. Metrics with a zero time are stamped at encoding time.
func PointFromMetric(m protocol.Metric) (*Point, error) {
	tags := Tags{}
	for _, tag := range m.TagList() {
		tags[tag.Key] = tag.Value
	}

	fields := Fields{}
	for _, field := range m.FieldList() {
		value, err := ValueOf(field.Value)
		if err != nil {
			if encodingErr, ok := err.(*EncodingError); ok {
				encodingErr.Key = field.Key
			}

			return nil, err
		}

		fields[field.Key] = value
	}

	point := NewPoint(m.Name(), tags, fields)

	if t := m.Time(); !t.IsZero() {
		point.Timestamp = &t
	}

	return point, nil
}
