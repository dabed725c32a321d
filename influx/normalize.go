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

import "fmt"

// DefaultFieldKey is the field key used for samples made of a single value.
const DefaultFieldKey = "value"

// NormalizeSamples turns samples into points of the given measurement, in
// the same order. Global tags are applied to every point; tags attached to
// a sample override global tags with the same key. Neither the global tags
// nor the tags of samples are modified.
func NormalizeSamples(measurement string, samples []Sample, globalTags Tags) (Points, error) {
	points := make(Points, len(samples))

	for i, sample := range samples {
		point, err := normalizeSample(measurement, sample, globalTags)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}

		points[i] = point
	}

	return points, nil
}

func normalizeSample(measurement string, sample Sample, globalTags Tags) (*Point, error) {
	tags := MergeTags(globalTags)

	if tagged, ok := sample.(TaggedSample); ok {
		for k, v := range tagged.Tags {
			tags[k] = v
		}

		sample = tagged.Sample
	}

	var fields Fields

	switch s := sample.(type) {
	case FieldValue:
		fields = Fields{DefaultFieldKey: s}

	case Fields:
		fields = s

	case TaggedSample:
		return nil, &EncodingError{Message: "nested tagged sample"}

	default:
		return nil, &EncodingError{Message: "missing sample value"}
	}

	return NewPoint(measurement, tags, fields), nil
}
