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
	"fmt"
	"io"
	"sync"

	"github.com/exograd/go-influx-udp/check"
	"github.com/exograd/go-influx-udp/dtime"
	"github.com/exograd/go-influx-udp/udp"
	"github.com/exograd/go-log"
	protocol "github.com/influxdata/line-protocol"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 4444
)

// Transport delivers a datagram to a destination. Delivery is best-effort;
// the client never retries a failed send.
type Transport interface {
	SendDatagram(payload []byte, host string, port int) error
}

type ClientCfg struct {
	Log       *log.Logger `json:"-"`
	Transport Transport   `json:"-"`
	Clock     dtime.Clock `json:"-"`
	Hostname  string      `json:"-"`

	Host    string            `json:"host"`
	Port    int               `json:"port"`
	Tags    map[string]string `json:"tags"`
	GoProbe bool              `json:"go_probe"`
}

func (cfg *ClientCfg) Check(c *check.Checker) {
	c.CheckStringNotEmpty("host", cfg.Host)
	c.CheckPort("port", cfg.Port)
	c.CheckStringMap("tags", cfg.Tags)
}

type Client struct {
	Cfg       ClientCfg
	Log       *log.Logger
	Transport Transport
	Clock     dtime.Clock

	tags Tags

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewClient(cfg ClientCfg) (*Client, error) {
	if cfg.Log == nil {
		cfg.Log = log.DefaultLogger("influx")
	}

	if cfg.Clock == nil {
		cfg.Clock = dtime.SystemClock{}
	}

	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}

	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}

	if err := check.CheckObject(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Transport == nil {
		cfg.Transport = udp.NewSender()
	}

	tags := make(Tags)
	if cfg.Hostname != "" {
		tags["host"] = cfg.Hostname
	}
	for name, value := range cfg.Tags {
		tags[name] = value
	}

	c := &Client{
		Cfg:       cfg,
		Log:       cfg.Log,
		Transport: cfg.Transport,
		Clock:     cfg.Clock,

		tags: tags,

		stopChan: make(chan struct{}),
	}

	return c, nil
}

func (c *Client) Start() {
	if c.Cfg.GoProbe {
		c.wg.Add(1)
		go c.goProbeMain()
	}
}

func (c *Client) Stop() {
	close(c.stopChan)
	c.wg.Wait()
}

func (c *Client) Terminate() {
	if closer, ok := c.Transport.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			c.Log.Error("cannot close transport: %v", err)
		}
	}
}

// Send sends a single sample as one datagram.
func (c *Client) Send(measurement string, sample Sample, tags Tags) error {
	return c.SendPoints(measurement, []Sample{sample}, tags)
}

// SendPoints sends samples of a measurement as one datagram, one line per
// sample. Tags of the client configuration apply to all samples, global
// tags override them, and tags of each sample override both.
func (c *Client) SendPoints(measurement string, samples []Sample, globalTags Tags) error {
	if len(samples) == 0 {
		return ErrEmptyBatch
	}

	points, err := NormalizeSamples(measurement, samples,
		MergeTags(c.tags, globalTags))
	if err != nil {
		return err
	}

	return c.sendPoints(points)
}

// WritePoints sends already built points as one datagram. Tags of the
// client configuration are added to each point unless the point has a tag
// with the same key. Points are not modified.
func (c *Client) WritePoints(points Points) error {
	if len(points) == 0 {
		return ErrEmptyBatch
	}

	if len(c.tags) > 0 {
		tagged := make(Points, len(points))

		for i, p := range points {
			if p == nil {
				return &EncodingError{Message: "missing point"}
			}

			p2 := *p
			p2.Tags = MergeTags(c.tags, p.Tags)
			tagged[i] = &p2
		}

		points = tagged
	}

	return c.sendPoints(points)
}

func (c *Client) SendMetrics(metrics ...protocol.Metric) error {
	points := make(Points, len(metrics))

	for i, m := range metrics {
		p, err := PointFromMetric(m)
		if err != nil {
			return fmt.Errorf("metric %d: %w", i, err)
		}

		points[i] = p
	}

	return c.WritePoints(points)
}

func (c *Client) sendPoints(points Points) error {
	var buf bytes.Buffer
	if err := EncodePoints(points, c.Clock, &buf); err != nil {
		return err
	}

	err := c.Transport.SendDatagram(buf.Bytes(), c.Cfg.Host, c.Cfg.Port)
	if err != nil {
		return &TransportError{Host: c.Cfg.Host, Port: c.Cfg.Port, Err: err}
	}

	return nil
}
