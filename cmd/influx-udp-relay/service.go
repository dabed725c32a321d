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

	"github.com/exograd/go-influx-udp/daemon"
	"github.com/exograd/go-influx-udp/dhttp"
	"github.com/exograd/go-influx-udp/influx"
	"github.com/exograd/go-log"
)

type ServiceCfg struct {
	Logger     *log.LoggerCfg   `json:"logger"`
	HTTPServer dhttp.ServerCfg  `json:"http_server"`
	Influx     influx.ClientCfg `json:"influx"`
}

type Service struct {
	Cfg ServiceCfg

	Daemon *daemon.Daemon
	Log    *log.Logger
	Influx *influx.Client
}

func NewService() *Service {
	return &Service{}
}

func (s *Service) ServiceCfg() interface{} {
	return &s.Cfg
}

func (s *Service) DaemonCfg() (daemon.DaemonCfg, error) {
	cfg := daemon.NewDaemonCfg()

	cfg.Logger = s.Cfg.Logger

	cfg.AddHTTPServer("api", s.Cfg.HTTPServer)

	influxCfg := s.Cfg.Influx
	cfg.Influx = &influxCfg

	return cfg, nil
}

func (s *Service) Init(d *daemon.Daemon) error {
	s.Daemon = d
	s.Log = d.Log
	s.Influx = d.Influx

	server, found := d.HTTPServers["api"]
	if !found {
		return fmt.Errorf("missing api http server")
	}

	s.initAPI(server)

	return nil
}

func (s *Service) Start(d *daemon.Daemon) error {
	s.Log.Info("forwarding points to %s:%d",
		s.Influx.Cfg.Host, s.Influx.Cfg.Port)

	return nil
}

func (s *Service) Stop(d *daemon.Daemon) {
}

func (s *Service) Terminate(d *daemon.Daemon) {
}
