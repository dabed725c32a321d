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


package udp

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"
)

var ErrClosed = errors.New("sender closed")

// Sender sends datagrams from a single unconnected UDP socket. Sending is
// best-effort: there is no acknowledgment and no retry. A Sender is safe
// for concurrent use.
type Sender struct {
	Network      string
	WriteTimeout time.Duration

	conn   net.PacketConn
	closed bool
	m      sync.Mutex

	closer   sync.Once
	closeErr error
}

func NewSender() *Sender {
	return &Sender{
		Network:      "udp",
		WriteTimeout: time.Second,
	}
}

func (s *Sender) SendDatagram(payload []byte, host string, port int) error {
	s.m.Lock()
	defer s.m.Unlock()

	if s.closed {
		return ErrClosed
	}

	address := net.JoinHostPort(host, strconv.Itoa(port))

	addr, err := net.ResolveUDPAddr(s.Network, address)
	if err != nil {
		return fmt.Errorf("cannot resolve %q: %w", address, err)
	}

	if s.conn == nil {
		conn, err := net.ListenPacket(s.Network, ":0")
		if err != nil {
			return fmt.Errorf("cannot open socket: %w", err)
		}

		s.conn = conn
	}

	if s.WriteTimeout > 0 {
		deadline := time.Now().Add(s.WriteTimeout)
		if err := s.conn.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("cannot set write deadline: %w", err)
		}
	}

	n, err := s.conn.WriteTo(payload, addr)
	if err != nil {
		return err
	} else if n < len(payload) {
		return io.ErrShortWrite
	}

	return nil
}

func (s *Sender) Close() error {
	s.closer.Do(func() {
		s.m.Lock()
		defer s.m.Unlock()

		s.closed = true

		if s.conn != nil {
			s.closeErr = s.conn.Close()
		}
	})

	return s.closeErr
}
