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
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/exograd/go-influx-udp/dhttp"
	"github.com/exograd/go-influx-udp/dtime"
	"github.com/exograd/go-influx-udp/influx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTransport struct {
	Err error

	payloads []string
	m        sync.Mutex
}

func (t *testTransport) SendDatagram(payload []byte, host string, port int) error {
	t.m.Lock()
	defer t.m.Unlock()

	if t.Err != nil {
		return t.Err
	}

	t.payloads = append(t.payloads, string(payload))
	return nil
}

func (t *testTransport) Payloads() []string {
	t.m.Lock()
	defer t.m.Unlock()

	return append([]string(nil), t.payloads...)
}

func newTestService(t *testing.T) (*Service, *dhttp.Server, *testTransport) {
	transport := &testTransport{}

	client, err := influx.NewClient(influx.ClientCfg{
		Transport: transport,
		Clock:     dtime.FixedClock(time.Unix(0, 1000)),
	})
	require.NoError(t, err)

	server, err := dhttp.NewServer(dhttp.ServerCfg{})
	require.NoError(t, err)

	s := NewService()
	s.Log = client.Log
	s.Influx = client

	s.initAPI(server)

	return s, server, transport
}

func serve(server *dhttp.Server, method, path, body string) (*httptest.ResponseRecorder, dhttp.APIError) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	var apiErr dhttp.APIError
	if w.Code >= 400 {
		json.Unmarshal(w.Body.Bytes(), &apiErr)
	}

	return w, apiErr
}

func TestPostPoints(t *testing.T) {
	assert := assert.New(t)

	_, server, transport := newTestService(t)

	body := `{
  "measurement": "cpu",
  "points": [1, {"a": 1.5, "b": "x"}, [true, {"core": 0}]],
  "tags": {"dc": "eu"}
}`

	w, _ := serve(server, "POST", "/v1/points", body)
	if assert.Equal(204, w.Code) {
		assert.Equal([]string{
			"cpu,dc=eu value=1i 1000\n" +
				"cpu,dc=eu a=1.5,b=\"x\" 1000\n" +
				"cpu,core=0,dc=eu value=TRUE 1000",
		}, transport.Payloads())
	}
}

func TestPostPointsTimestamp(t *testing.T) {
	assert := assert.New(t)

	_, server, transport := newTestService(t)

	body := `{
  "measurement": "cpu",
  "points": [1, 2],
  "timestamp": "2022-01-01T00:00:00Z"
}`

	w, _ := serve(server, "POST", "/v1/points", body)
	if assert.Equal(204, w.Code) {
		assert.Equal([]string{
			"cpu value=1i 1640995200000000000\n" +
				"cpu value=2i 1640995200000000000",
		}, transport.Payloads())
	}
}

func TestPostPointsInvalid(t *testing.T) {
	assert := assert.New(t)

	_, server, transport := newTestService(t)

	tests := []struct {
		body string
		code string
	}{
		{`{"measurement": "", "points": [1]}`, "invalid_request_body"},
		{`{"measurement": "cpu", "points": []}`, "invalid_request_body"},
		{`{"measurement": "cpu", "points": [[1, 2, 3]]}`, "invalid_request_body"},
		{`{"measurement": "cpu", "points": [null]}`, "invalid_request_body"},
		{`{"measurement": "cpu", "points": [1], "tags": {"a": ""}}`, "invalid_request_body"},
		{`{"measurement": "cpu", "points": [1], "tags": [1]}`, "invalid_request_body"},
		{`{"measurement": "cpu", "points": [{"": 1}]}`, "invalid_point"},
		{`{"measurement": "cpu", "points": [{}]}`, "invalid_point"},
		{`not json`, "invalid_request_body"},
	}

	for _, test := range tests {
		w, apiErr := serve(server, "POST", "/v1/points", test.body)
		assert.Equal(400, w.Code, test.body)
		assert.Equal(test.code, apiErr.Code, test.body)
	}

	assert.Empty(transport.Payloads())
}

func TestPostPointsTransportError(t *testing.T) {
	assert := assert.New(t)

	_, server, transport := newTestService(t)
	transport.Err = errors.New("network is unreachable")

	body := `{"measurement": "cpu", "points": [1]}`

	w, apiErr := serve(server, "POST", "/v1/points", body)
	assert.Equal(502, w.Code)
	assert.Equal("transport_error", apiErr.Code)
}

func TestPostWrite(t *testing.T) {
	assert := assert.New(t)

	_, server, transport := newTestService(t)

	body := "mem,host=a used=12i,free=1.5 2000\nmem value=true"

	w, _ := serve(server, "POST", "/v1/write", body)
	if assert.Equal(204, w.Code) {
		assert.Equal([]string{
			"mem,host=a free=1.5,used=12i 2000\nmem value=TRUE 1000",
		}, transport.Payloads())
	}

	w, apiErr := serve(server, "POST", "/v1/write", `cpu value="unterminated`)
	assert.Equal(400, w.Code)
	assert.Equal("invalid_line_protocol", apiErr.Code)

	w, apiErr = serve(server, "POST", "/v1/write", "")
	assert.Equal(400, w.Code)
	assert.Equal("empty_batch", apiErr.Code)

	assert.Len(transport.Payloads(), 1)
}

func TestGetStatus(t *testing.T) {
	assert := assert.New(t)

	_, server, _ := newTestService(t)

	w, _ := serve(server, "GET", "/v1/status", "")
	if assert.Equal(200, w.Code) {
		var status StatusResponse
		if assert.NoError(json.Unmarshal(w.Body.Bytes(), &status)) {
			assert.Equal(influx.DefaultHost, status.Host)
			assert.Equal(influx.DefaultPort, status.Port)
		}
	}
}
