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
	"errors"
	"fmt"
)

var ErrEmptyBatch = errors.New("empty batch")

// EncodingError is returned when a point cannot be represented in the line
// protocol. Key identifies the field or tag involved, if any.
type EncodingError struct {
	Key     string
	Message string
}

func (err *EncodingError) Error() string {
	if err.Key == "" {
		return "invalid point: " + err.Message
	}

	return fmt.Sprintf("invalid point: %q: %s", err.Key, err.Message)
}

type TransportError struct {
	Host string
	Port int
	Err  error
}

func (err *TransportError) Error() string {
	return fmt.Sprintf("cannot send datagram to %s:%d: %v",
		err.Host, err.Port, err.Err)
}

func (err *TransportError) Unwrap() error {
	return err.Err
}
