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
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/exograd/go-influx-udp/dtime"
	protocol "github.com/influxdata/line-protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDatagram struct {
	Payload string
	Host    string
	Port    int
}

type testTransport struct {
	Err error

	datagrams []testDatagram
	closed    bool
	m         sync.Mutex
}

func (t *testTransport) SendDatagram(payload []byte, host string, port int) error {
	t.m.Lock()
	defer t.m.Unlock()

	if t.Err != nil {
		return t.Err
	}

	t.datagrams = append(t.datagrams, testDatagram{
		Payload: string(payload),
		Host:    host,
		Port:    port,
	})

	return nil
}

func (t *testTransport) Close() error {
	t.closed = true
	return nil
}

func (t *testTransport) Datagrams() []testDatagram {
	t.m.Lock()
	defer t.m.Unlock()

	return append([]testDatagram(nil), t.datagrams...)
}

func (t *testTransport) LastPayload() string {
	datagrams := t.Datagrams()
	if len(datagrams) == 0 {
		return ""
	}

	return datagrams[len(datagrams)-1].Payload
}

func newTestClient(t *testing.T, cfg ClientCfg) (*Client, *testTransport) {
	transport := &testTransport{}

	cfg.Transport = transport
	if cfg.Clock == nil {
		cfg.Clock = testClock
	}

	client, err := NewClient(cfg)
	require.NoError(t, err)

	return client, transport
}

func TestClientDefaults(t *testing.T) {
	assert := assert.New(t)

	client, err := NewClient(ClientCfg{})
	if !assert.NoError(err) {
		return
	}
	defer client.Terminate()

	assert.Equal("127.0.0.1", client.Cfg.Host)
	assert.Equal(4444, client.Cfg.Port)
	assert.NotNil(client.Transport)
	assert.NotNil(client.Clock)
	assert.NotNil(client.Log)
}

func TestClientInvalidCfg(t *testing.T) {
	assert := assert.New(t)

	_, err := NewClient(ClientCfg{Port: 70000})
	assert.Error(err)

	_, err = NewClient(ClientCfg{Tags: map[string]string{"dc": ""}})
	assert.Error(err)
}

func TestClientSend(t *testing.T) {
	assert := assert.New(t)

	client, transport := newTestClient(t, ClientCfg{
		Host: "metrics.example.com",
		Port: 8089,
	})

	tests := []struct {
		sample Sample
		tags   Tags
		line   string
	}{
		{Int(1), nil,
			"foo value=1i 1465839830100400200"},
		{String("1"), nil,
			`foo value="1" 1465839830100400200`},
		{Float(1.2), nil,
			"foo value=1.2 1465839830100400200"},
		{Fields{"field1": Int(1), "field3": Int(2), "field2": Int(3)},
			Tags{"tag1": "one", "tag0": "two"},
			"foo,tag0=two,tag1=one field1=1i,field2=3i,field3=2i 1465839830100400200"},
		{Fields{"field1": String("field 1")}, nil,
			`foo field1="field 1" 1465839830100400200`},
		{Int(1), Tags{"tag": "test test"},
			`foo,tag=test\ test value=1i 1465839830100400200`},
		{Int(1), Tags{"tag": "test,test"},
			`foo,tag=test\,test value=1i 1465839830100400200`},
		{Int(1), Tags{"tag": `test"test`},
			`foo,tag=test\"test value=1i 1465839830100400200`},
		{Bool(true), nil,
			"foo value=TRUE 1465839830100400200"},
		{Bool(false), nil,
			"foo value=FALSE 1465839830100400200"},
		{Int(12345), nil,
			"foo value=12345i 1465839830100400200"},
	}

	for _, test := range tests {
		if assert.NoError(client.Send("foo", test.sample, test.tags)) {
			assert.Equal(test.line, transport.LastPayload())
		}
	}

	datagrams := transport.Datagrams()
	if assert.Equal(len(tests), len(datagrams)) {
		assert.Equal("metrics.example.com", datagrams[0].Host)
		assert.Equal(8089, datagrams[0].Port)
	}
}

func TestClientSendPoints(t *testing.T) {
	assert := assert.New(t)

	client, transport := newTestClient(t, ClientCfg{})

	assert.NoError(client.SendPoints("foo", Values(1, 2, 3), nil))
	assert.Equal("foo value=1i 1465839830100400200\n"+
		"foo value=2i 1465839830100400200\n"+
		"foo value=3i 1465839830100400200", transport.LastPayload())

	assert.NoError(client.SendPoints("foo", Values(1, 2, 3), Tags{"tag": "x"}))
	assert.Equal("foo,tag=x value=1i 1465839830100400200\n"+
		"foo,tag=x value=2i 1465839830100400200\n"+
		"foo,tag=x value=3i 1465839830100400200", transport.LastPayload())

	samples := []Sample{
		Tagged(Int(1), Tags{"tag1": "x"}),
		Int(2),
		Int(3),
	}
	assert.NoError(client.SendPoints("foo", samples, Tags{"tag2": "x"}))
	assert.Equal("foo,tag1=x,tag2=x value=1i 1465839830100400200\n"+
		"foo,tag2=x value=2i 1465839830100400200\n"+
		"foo,tag2=x value=3i 1465839830100400200", transport.LastPayload())

	assert.Equal(3, len(transport.Datagrams()))
}

func TestClientSendPointsTimestamps(t *testing.T) {
	assert := assert.New(t)

	client, transport := newTestClient(t, ClientCfg{
		Clock: &dtime.StepClock{Start: time.Unix(1, 0), Step: time.Microsecond},
	})

	assert.NoError(client.SendPoints("foo", Values(1, 2), nil))
	assert.Equal("foo value=1i 1000000000\n"+
		"foo value=2i 1000001000", transport.LastPayload())
}

func TestClientDefaultTags(t *testing.T) {
	assert := assert.New(t)

	client, transport := newTestClient(t, ClientCfg{
		Hostname: "node1",
		Tags:     map[string]string{"env": "prod", "dc": "eu"},
	})

	assert.NoError(client.Send("foo", Int(1), Tags{"dc": "us"}))
	assert.Equal("foo,dc=us,env=prod,host=node1 value=1i 1465839830100400200",
		transport.LastPayload())

	assert.NoError(client.Send("foo", Tagged(Int(1), Tags{"host": "node2"}),
		nil))
	assert.Equal("foo,dc=eu,env=prod,host=node2 value=1i 1465839830100400200",
		transport.LastPayload())

	p := NewPoint("bar", Tags{"env": "test"}, Fields{"a": Int(1)})
	assert.NoError(client.WritePoints(Points{p}))
	assert.Equal("bar,dc=eu,env=test,host=node1 a=1i 1465839830100400200",
		transport.LastPayload())
	assert.Equal(Tags{"env": "test"}, p.Tags)
}

func TestClientEmptyBatch(t *testing.T) {
	assert := assert.New(t)

	client, transport := newTestClient(t, ClientCfg{})

	assert.ErrorIs(client.SendPoints("foo", nil, Tags{"a": "b"}), ErrEmptyBatch)
	assert.ErrorIs(client.SendPoints("foo", []Sample{}, nil), ErrEmptyBatch)
	assert.ErrorIs(client.WritePoints(nil), ErrEmptyBatch)
	assert.ErrorIs(client.SendMetrics(), ErrEmptyBatch)

	assert.Equal(0, len(transport.Datagrams()))
}

func TestClientEncodingError(t *testing.T) {
	assert := assert.New(t)

	client, transport := newTestClient(t, ClientCfg{})

	samples := []Sample{Int(1), Fields{"a": Float(1), "b": {}}}
	err := client.SendPoints("foo", samples, nil)

	var encodingErr *EncodingError
	if assert.True(errors.As(err, &encodingErr)) {
		assert.Equal("b", encodingErr.Key)
	}

	err = client.Send("", Int(1), nil)
	assert.True(errors.As(err, &encodingErr))

	assert.Equal(0, len(transport.Datagrams()))
}

func TestClientTransportError(t *testing.T) {
	assert := assert.New(t)

	client, transport := newTestClient(t, ClientCfg{Port: 8089})

	sendErr := errors.New("network is unreachable")
	transport.Err = sendErr

	err := client.Send("foo", Int(1), nil)

	var transportErr *TransportError
	if assert.True(errors.As(err, &transportErr)) {
		assert.Equal("127.0.0.1", transportErr.Host)
		assert.Equal(8089, transportErr.Port)
		assert.ErrorIs(err, sendErr)
	}
}

func TestClientSendMetrics(t *testing.T) {
	assert := assert.New(t)

	client, transport := newTestClient(t, ClientCfg{})

	m1 := &testMetric{
		name:   "metric_name",
		tags:   []*protocol.Tag{{Key: "tag1", Value: "t1"}},
		fields: []*protocol.Field{{Key: "value1", Value: 1}},
		time:   time.Unix(1, 0),
	}

	m2 := &testMetric{
		name:   "other",
		fields: []*protocol.Field{{Key: "value1", Value: 2.5}},
	}

	assert.NoError(client.SendMetrics(m1, m2))
	assert.Equal("metric_name,tag1=t1 value1=1i 1000000000\n"+
		"other value1=2.5 1465839830100400200", transport.LastPayload())
}

func TestClientTerminate(t *testing.T) {
	assert := assert.New(t)

	client, transport := newTestClient(t, ClientCfg{})

	client.Start()
	client.Stop()
	client.Terminate()

	assert.True(transport.closed)
}

func TestClientGoProbe(t *testing.T) {
	assert := assert.New(t)

	interval := GoProbeInterval
	GoProbeInterval = 5 * time.Millisecond
	defer func() { GoProbeInterval = interval }()

	client, transport := newTestClient(t, ClientCfg{
		GoProbe:  true,
		Hostname: "node1",
	})

	client.Start()

	assert.Eventually(func() bool {
		return len(transport.Datagrams()) > 0
	}, time.Second, 5*time.Millisecond)

	client.Stop()

	lines := strings.Split(transport.Datagrams()[0].Payload, "\n")
	if assert.Equal(2, len(lines)) {
		assert.True(strings.HasPrefix(lines[0],
			"go_goroutines,host=node1 count="), lines[0])
		assert.True(strings.HasPrefix(lines[1],
			"go_memory,host=node1 gc_cpu_time_fraction="), lines[1])
	}
}

func TestClientUDP(t *testing.T) {
	assert := assert.New(t)

	addr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	require.NoError(t, err)

	conn, err := net.ListenUDP("udp", addr)
	require.NoError(t, err)
	defer conn.Close()

	client, err := NewClient(ClientCfg{
		Clock: testClock,
		Port:  conn.LocalAddr().(*net.UDPAddr).Port,
	})
	require.NoError(t, err)
	defer client.Terminate()

	samples := []Sample{
		Tagged(Int(1), Tags{"tag1": "x"}),
		Int(2),
	}
	require.NoError(t, client.SendPoints("foo", samples, Tags{"tag2": "x"}))

	buf := make([]byte, 65536)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))

	n, _, err := conn.ReadFromUDP(buf)
	if assert.NoError(err) {
		assert.Equal("foo,tag1=x,tag2=x value=1i 1465839830100400200\n"+
			"foo,tag2=x value=2i 1465839830100400200", string(buf[:n]))
	}
}
