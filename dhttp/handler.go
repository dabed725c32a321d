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


package dhttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/exograd/go-influx-udp/check"
	"github.com/exograd/go-log"
)

type APIError struct {
	Message string       `json:"error"`
	Code    string       `json:"code,omitempty"`
	Data    APIErrorData `json:"data,omitempty"`
}

type APIErrorData map[string]interface{}

type Handler struct {
	Server *Server
	Log    *log.Logger

	ClientAddress string
	RequestId     string
	RouteId       string

	Request        *http.Request
	ResponseWriter http.ResponseWriter

	StartTime time.Time

	errorCode string
}

func (h *Handler) RequestData() ([]byte, error) {
	data, err := io.ReadAll(h.Request.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.ReplyError(413, "request_body_too_large",
				"request body must not be larger than %d bytes",
				maxBytesErr.Limit)
		} else {
			h.ReplyInternalError(500, "cannot read request body: %v", err)
		}

		return nil, fmt.Errorf("cannot read request body: %w", err)
	}

	return data, nil
}

func (h *Handler) JSONRequestData(dest interface{}) error {
	data, err := h.RequestData()
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		h.ReplyError(400, "invalid_request_body",
			"invalid request body: %v", err)
		return fmt.Errorf("invalid request body: %w", err)
	}

	return nil
}

func (h *Handler) JSONRequestObject(obj check.Object) error {
	if err := h.JSONRequestData(obj); err != nil {
		return err
	}

	checker := check.NewChecker()

	obj.Check(checker)
	if err := checker.Error(); err != nil {
		h.ReplyRequestBodyValidationErrors(checker.Errors)
		return fmt.Errorf("invalid request body: %w", err)
	}

	return nil
}

func (h *Handler) ReplyRequestBodyValidationErrors(err check.ValidationErrors) {
	data := APIErrorData{
		"validation_errors": err,
	}

	h.ReplyErrorData(400, "invalid_request_body", data,
		"invalid request body:\n%v", err)
}

func (h *Handler) Reply(status int, r io.Reader) {
	h.ResponseWriter.WriteHeader(status)

	if r != nil {
		if _, err := io.Copy(h.ResponseWriter, r); err != nil {
			h.Log.Error("cannot write response: %v", err)
			return
		}
	}
}

func (h *Handler) ReplyEmpty(status int) {
	h.Reply(status, nil)
}

func (h *Handler) ReplyJSON(status int, value interface{}) {
	header := h.ResponseWriter.Header()
	header.Set("Content-Type", "application/json")

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(value); err != nil {
		h.Log.Error("cannot encode json response: %v", err)
		h.ResponseWriter.WriteHeader(500)
		return
	}

	h.Reply(status, &buf)
}

func (h *Handler) ReplyInternalError(status int, format string, args ...interface{}) {
	h.Log.Error("internal error: "+format, args...)
	h.ReplyError(status, "internal_error", "internal error")
}

func (h *Handler) ReplyError(status int, code, format string, args ...interface{}) {
	h.ReplyErrorData(status, code, nil, format, args...)
}

func (h *Handler) ReplyErrorData(status int, code string, data APIErrorData, format string, args ...interface{}) {
	h.errorCode = code
	h.Server.handleError(h, status, code, fmt.Sprintf(format, args...), data)
}

func (h *Handler) handlePanic(value interface{}) string {
	var msg string

	switch v := value.(type) {
	case error:
		msg = v.Error()
	case string:
		msg = v
	default:
		msg = fmt.Sprintf("%#v", v)
	}

	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	buf = buf[0 : n-1]

	h.Log.Error("panic: %s\n%s", msg, string(buf))

	return msg
}

func (h *Handler) logRequest() {
	req := h.Request
	w := h.ResponseWriter.(*ResponseWriter)

	reqTime := time.Since(h.StartTime)
	seconds := reqTime.Seconds()

	var reqTimeString string
	if seconds < 0.001 {
		reqTimeString = fmt.Sprintf("%dµs", int(math.Ceil(seconds*1e6)))
	} else if seconds < 1.0 {
		reqTimeString = fmt.Sprintf("%dms", int(math.Ceil(seconds*1e3)))
	} else {
		reqTimeString = fmt.Sprintf("%.1fs", seconds)
	}

	data := log.Data{
		"time":          reqTime.Microseconds(),
		"response_size": w.ResponseBodySize,
	}

	statusString := "-"
	if w.Status != 0 {
		statusString = strconv.Itoa(w.Status)
		data["status"] = w.Status
	}

	if h.errorCode != "" {
		data["error"] = h.errorCode
	}

	h.Log.InfoData(data, "%s %s %s %dB %s",
		req.Method, req.URL.Path, statusString, w.ResponseBodySize,
		reqTimeString)
}
