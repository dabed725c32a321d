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


package daemon

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/exograd/go-influx-udp/dhttp"
	"github.com/exograd/go-influx-udp/influx"
	"github.com/exograd/go-log"
	"github.com/exograd/go-program"
)

type DaemonCfg struct {
	name string

	Logger *log.LoggerCfg

	HTTPServers map[string]dhttp.ServerCfg

	Influx *influx.ClientCfg
}

func NewDaemonCfg() DaemonCfg {
	return DaemonCfg{
		HTTPServers: make(map[string]dhttp.ServerCfg),
	}
}

func (cfg DaemonCfg) AddHTTPServer(name string, serverCfg dhttp.ServerCfg) {
	if _, found := cfg.HTTPServers[name]; found {
		panic(fmt.Sprintf("duplicate http server %q", name))
	}

	cfg.HTTPServers[name] = serverCfg
}

type Daemon struct {
	Cfg DaemonCfg

	Log *log.Logger

	service Service

	HTTPServers map[string]*dhttp.Server

	Influx *influx.Client

	Hostname string

	stopChan  chan struct{}
	errorChan chan error
}

func newDaemon(cfg DaemonCfg, service Service) *Daemon {
	d := &Daemon{
		Cfg: cfg,

		service: service,

		stopChan:  make(chan struct{}, 1),
		errorChan: make(chan error, 1),
	}

	return d
}

func (d *Daemon) init() error {
	d.Log = log.DefaultLogger(d.Cfg.name)

	initFuncs := []func() error{
		d.initHostname,
		d.initLogger,
		d.initHTTPServers,
		d.initInflux,
	}

	for _, initFunc := range initFuncs {
		if err := initFunc(); err != nil {
			return err
		}
	}

	if err := d.service.Init(d); err != nil {
		return err
	}

	return nil
}

func (d *Daemon) initHostname() error {
	hostname, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("cannot obtain hostname: %w", err)
	}

	d.Hostname = hostname

	return nil
}

func (d *Daemon) initLogger() error {
	if d.Cfg.Logger == nil {
		return nil
	}

	logger, err := log.NewLogger(d.Cfg.name, *d.Cfg.Logger)
	if err != nil {
		return fmt.Errorf("invalid logger configuration: %w", err)
	}

	d.Log = logger

	return nil
}

func (d *Daemon) initHTTPServers() error {
	d.HTTPServers = make(map[string]*dhttp.Server)

	for name, cfg := range d.Cfg.HTTPServers {
		cfg.Log = d.Log.Child("http-server", log.Data{"server": name})

		server, err := dhttp.NewServer(cfg)
		if err != nil {
			return fmt.Errorf("cannot create http server %q: %w", name, err)
		}

		d.HTTPServers[name] = server
	}

	return nil
}

func (d *Daemon) initInflux() error {
	if d.Cfg.Influx == nil {
		return nil
	}

	cfg := *d.Cfg.Influx

	cfg.Log = d.Log.Child("influx", log.Data{})
	cfg.Hostname = d.Hostname

	client, err := influx.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("cannot create influx client: %w", err)
	}

	d.Influx = client

	return nil
}

func (d *Daemon) wait() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case signo := <-sigChan:
		fmt.Println()
		d.Log.Info("received signal %d (%v)", signo, signo)

	case <-d.stopChan:

	case err := <-d.errorChan:
		d.Log.Error("daemon error: %v", err)
		os.Exit(1)
	}
}

func (d *Daemon) start() error {
	d.Log.Info("starting")

	for name, s := range d.HTTPServers {
		if err := s.Start(); err != nil {
			return fmt.Errorf("cannot start http server %q: %w", name, err)
		}
	}

	if d.Influx != nil {
		d.Influx.Start()
	}

	if err := d.service.Start(d); err != nil {
		return err
	}

	d.Log.Info("started")

	return nil
}

func (d *Daemon) stop() {
	d.Log.Info("stopping")

	d.service.Stop(d)

	if d.Influx != nil {
		d.Influx.Stop()
	}

	for _, s := range d.HTTPServers {
		s.Stop()
	}

	d.Log.Info("stopped")
}

func (d *Daemon) terminate() {
	d.service.Terminate(d)

	if d.Influx != nil {
		d.Influx.Terminate()
	}

	close(d.stopChan)
	close(d.errorChan)
}

// Stop asks a running daemon to stop as if it had received a signal.
func (d *Daemon) Stop() {
	select {
	case d.stopChan <- struct{}{}:
	default:
	}
}

// Fatal makes a running daemon log the error and exit.
func (d *Daemon) Fatal(err error) {
	select {
	case d.errorChan <- err:
	default:
	}
}

func Run(name, description string, service Service) {
	// Program
	p := program.NewProgram(name, description)

	p.AddOption("c", "cfg-file", "path", "",
		"the path of the configuration file")

	p.ParseCommandLine()

	// Configuration
	serviceCfg := service.ServiceCfg()

	if p.IsOptionSet("cfg-file") {
		cfgPath := p.OptionValue("cfg-file")

		if err := LoadCfg(cfgPath, serviceCfg); err != nil {
			p.Fatal("cannot load configuration: %v", err)
		}
	}

	daemonCfg, err := service.DaemonCfg()
	if err != nil {
		p.Fatal("invalid configuration: %v", err)
	}

	daemonCfg.name = name

	// Daemon
	d := newDaemon(daemonCfg, service)

	if err := d.init(); err != nil {
		p.Fatal("cannot initialize daemon: %v", err)
	}

	if err := d.start(); err != nil {
		p.Fatal("cannot start daemon: %v", err)
	}

	d.wait()
	d.stop()

	d.terminate()
}

// RunTest runs a daemon in the current process. The ready channel is closed
// once the daemon has started; RunTest returns after the daemon has been
// stopped with Daemon.Stop.
func RunTest(name string, service Service, cfgPath string, readyChan chan<- struct{}) error {
	serviceCfg := service.ServiceCfg()

	if cfgPath != "" {
		if err := LoadCfg(cfgPath, serviceCfg); err != nil {
			return fmt.Errorf("cannot load configuration: %w", err)
		}
	}

	daemonCfg, err := service.DaemonCfg()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	daemonCfg.name = name

	d := newDaemon(daemonCfg, service)

	if err := d.init(); err != nil {
		return fmt.Errorf("cannot initialize daemon: %w", err)
	}

	if err := d.start(); err != nil {
		return fmt.Errorf("cannot start daemon: %w", err)
	}

	close(readyChan)

	d.wait()
	d.stop()

	d.terminate()

	return nil
}
