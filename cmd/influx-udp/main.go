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
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/exograd/go-influx-udp/influx"
	"github.com/exograd/go-log"
	"github.com/exograd/go-program"
)

func main() {
	p := program.NewProgram("influx-udp",
		"send points to an influx udp listener")

	p.AddOption("", "host", "host", influx.DefaultHost,
		"the host of the udp listener")
	p.AddOption("", "port", "port", strconv.Itoa(influx.DefaultPort),
		"the port of the udp listener")
	p.AddOption("m", "measurement", "name", "",
		"the measurement of the point")
	p.AddOption("f", "fields", "fields", "",
		"a comma-separated list of key=value fields")
	p.AddOption("t", "tags", "tags", "",
		"a comma-separated list of key=value tags")
	p.AddFlag("", "stdin",
		"read points in line protocol from the standard input")

	p.ParseCommandLine()

	logger := log.DefaultLogger("influx-udp")

	cfg := influx.ClientCfg{
		Log:  logger,
		Host: influx.DefaultHost,
		Port: influx.DefaultPort,
	}

	if p.IsOptionSet("host") {
		cfg.Host = p.OptionValue("host")
	}

	if p.IsOptionSet("port") {
		port, err := strconv.Atoi(p.OptionValue("port"))
		if err != nil {
			p.Fatal("invalid port: %v", err)
		}

		cfg.Port = port
	}

	client, err := influx.NewClient(cfg)
	if err != nil {
		p.Fatal("cannot create client: %v", err)
	}
	defer client.Terminate()

	var points influx.Points

	if p.IsOptionSet("stdin") {
		points, err = readPoints(os.Stdin)
	} else {
		points, err = cmdLinePoints(p)
	}

	if err != nil {
		p.Fatal("%v", err)
	}

	if err := client.WritePoints(points); err != nil {
		p.Fatal("cannot send points: %v", err)
	}

	logger.Info("%d points sent to %s:%d", len(points), cfg.Host, cfg.Port)
}

func readPoints(r io.Reader) (influx.Points, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read standard input: %w", err)
	}

	points, err := influx.DecodePoints(data)
	if err != nil {
		return nil, fmt.Errorf("cannot decode points: %w", err)
	}

	return points, nil
}

func cmdLinePoints(p *program.Program) (influx.Points, error) {
	if !p.IsOptionSet("measurement") {
		return nil, fmt.Errorf("missing measurement")
	}

	if !p.IsOptionSet("fields") {
		return nil, fmt.Errorf("missing fields")
	}

	return buildPoints(p.OptionValue("measurement"),
		p.OptionValue("fields"), p.OptionValue("tags"))
}

func buildPoints(measurement, fieldsString, tagsString string) (influx.Points, error) {
	fields, err := parseFields(fieldsString)
	if err != nil {
		return nil, fmt.Errorf("invalid fields: %w", err)
	}

	tags, err := parseTags(tagsString)
	if err != nil {
		return nil, fmt.Errorf("invalid tags: %w", err)
	}

	return influx.NormalizeSamples(measurement, []influx.Sample{fields}, tags)
}
