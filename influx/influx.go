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

import "time"

type Point struct {
	Measurement string
	Tags        Tags
	Fields      Fields
	Timestamp   *time.Time
}

type Points []*Point

type Tags map[string]string

type Fields map[string]FieldValue

func NewPoint(measurement string, tags Tags, fields Fields) *Point {
	return &Point{
		Measurement: measurement,
		Tags:        tags,
		Fields:      fields,
	}
}

func NewPointWithTimestamp(measurement string, tags Tags, fields Fields, t time.Time) *Point {
	return &Point{
		Measurement: measurement,
		Tags:        tags,
		Fields:      fields,
		Timestamp:   &t,
	}
}

// MergeTags returns a new tag set containing all tags of the arguments.
// Later sets override earlier ones.
func MergeTags(tagsList ...Tags) Tags {
	tags := Tags{}

	for _, ts := range tagsList {
		for k, v := range ts {
			tags[k] = v
		}
	}

	return tags
}

// Sample is a point as supplied by callers: a single FieldValue, a Fields
// map, or a TaggedSample wrapping one of the two with point-level tags.
type Sample interface {
	sample()
}

func (FieldValue) sample()   {}
func (Fields) sample()       {}
func (TaggedSample) sample() {}

type TaggedSample struct {
	Sample Sample
	Tags   Tags
}

func Tagged(sample Sample, tags Tags) TaggedSample {
	return TaggedSample{Sample: sample, Tags: tags}
}

// Values builds a list of bare samples from native values, e.g.
// Values(1, 2, 3). It panics on unsupported types.
func Values(values ...interface{}) []Sample {
	samples := make([]Sample, len(values))
	for i, v := range values {
		samples[i] = MustValueOf(v)
	}

	return samples
}
