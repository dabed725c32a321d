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


package main

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/exograd/go-influx-udp/check"
	"github.com/exograd/go-influx-udp/dhttp"
	"github.com/exograd/go-influx-udp/djson"
	"github.com/exograd/go-influx-udp/dtime"
	"github.com/exograd/go-influx-udp/influx"
)

type PointsRequest struct {
	Measurement string            `json:"measurement"`
	Points      []json.RawMessage `json:"points"`
	Tags        json.RawMessage   `json:"tags,omitempty"`
	Timestamp   *dtime.Timestamp  `json:"timestamp,omitempty"`

	samples []influx.Sample
	tags    influx.Tags
}

type StatusResponse struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func (r *PointsRequest) Check(c *check.Checker) {
	c.CheckStringNotEmpty("measurement", r.Measurement)

	if c.CheckArrayNotEmpty("points", r.Points) {
		r.samples = make([]influx.Sample, 0, len(r.Points))

		c.WithChild("points", func() {
			for i, data := range r.Points {
				r.checkSample(c, strconv.Itoa(i), data)
			}
		})
	}

	r.tags = influx.Tags{}
	if len(r.Tags) > 0 {
		value, err := djson.Decode(r.Tags)
		if err == nil {
			r.tags, err = influx.TagsFromJSON(value)
		}

		if err != nil {
			c.AddError("tags", "%v", err)
			return
		}

		c.CheckStringMap("tags", r.tags)
	}
}

func (r *PointsRequest) checkSample(c *check.Checker, token string, data json.RawMessage) {
	value, err := djson.Decode(data)
	if err != nil {
		c.AddError(token, "%v", err)
		return
	}

	sample, err := influx.SampleFromJSON(value)
	if err != nil {
		c.AddError(token, "%v", err)
		return
	}

	r.samples = append(r.samples, sample)
}

func (s *Service) initAPI(server *dhttp.Server) {
	server.Route("/v1/status", "GET", s.hGetStatus)
	server.Route("/v1/points", "POST", s.hPostPoints)
	server.Route("/v1/write", "POST", s.hPostWrite)
}

func (s *Service) hGetStatus(h *dhttp.Handler) {
	h.ReplyJSON(200, StatusResponse{
		Host: s.Influx.Cfg.Host,
		Port: s.Influx.Cfg.Port,
	})
}

func (s *Service) hPostPoints(h *dhttp.Handler) {
	var req PointsRequest
	if err := h.JSONRequestObject(&req); err != nil {
		return
	}

	points, err := influx.NormalizeSamples(req.Measurement, req.samples,
		req.tags)
	if err != nil {
		s.replySendError(h, err)
		return
	}

	if req.Timestamp != nil {
		t := req.Timestamp.Time()
		for _, p := range points {
			p.Timestamp = &t
		}
	}

	if err := s.Influx.WritePoints(points); err != nil {
		s.replySendError(h, err)
		return
	}

	h.ReplyEmpty(204)
}

func (s *Service) hPostWrite(h *dhttp.Handler) {
	data, err := h.RequestData()
	if err != nil {
		return
	}

	points, err := influx.DecodePoints(data)
	if err != nil {
		h.ReplyError(400, "invalid_line_protocol", "%v", err)
		return
	}

	if err := s.Influx.WritePoints(points); err != nil {
		s.replySendError(h, err)
		return
	}

	h.ReplyEmpty(204)
}

func (s *Service) replySendError(h *dhttp.Handler, err error) {
	var encodingErr *influx.EncodingError
	var transportErr *influx.TransportError

	switch {
	case errors.Is(err, influx.ErrEmptyBatch):
		h.ReplyError(400, "empty_batch", "no points to send")

	case errors.As(err, &encodingErr):
		h.ReplyError(400, "invalid_point", "%v", err)

	case errors.As(err, &transportErr):
		h.Log.Error("%v", err)
		h.ReplyError(502, "transport_error", "cannot send points")

	default:
		h.ReplyInternalError(500, "%v", err)
	}
}
