// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Stage is the running environment of a server.

package hemi

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
)

// Config
type Config struct {
	Engine    string // "std", "hemi", ...
	Address   string // hostname:port
	NumGates  int32  // number of gates. more than one requires SO_REUSEPORT
	LogTarget string // access log file. empty means no access log
	LogRotate string // "", "day", "hour"
}

const (
	DefaultEngine  = "std"
	DefaultAddress = "0.0.0.0:3000"
)

func NewConfig() *Config {
	return &Config{
		Engine:   DefaultEngine,
		Address:  DefaultAddress,
		NumGates: 1,
	}
}

// Check validates config.
func (c *Config) Check() error {
	if !ServerRegistered(c.Engine) {
		return fmt.Errorf("unknown engine %q. available engines: %s", c.Engine, strings.Join(ServerEngines(), ", "))
	}
	if c.Address == "" {
		return errors.New("address is required")
	}
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("invalid address %q: %w", c.Address, err)
	}
	if c.NumGates < 1 {
		return errors.New("number of gates must be at least 1")
	}
	switch c.LogRotate {
	case "", "day", "hour":
	default:
		return fmt.Errorf("invalid log rotate %q. use \"day\" or \"hour\"", c.LogRotate)
	}
	return nil
}

// Stage
type Stage struct {
	// Assocs
	logger Logger // access logger
	server Server // the greeting server
	// States
	config   *Config
	output   io.Writer     // where the listening line goes
	started  bool          // is server serving?
	done     chan struct{} // closed when server stops
	err      error         // error from server.Serve()
	quitOnce sync.Once
}

func NewStage(config *Config) (*Stage, error) {
	if err := config.Check(); err != nil {
		return nil, err
	}
	s := new(Stage)
	c := *config
	s.config = &c
	s.output = os.Stdout
	s.done = make(chan struct{})

	if c.LogTarget == "" {
		s.logger = createLogger("noop", nil)
	} else {
		s.logger = createLogger("file", &LogConfig{Target: c.LogTarget, Rotate: c.LogRotate})
	}
	s.server = createServer(c.Engine, c.Engine+"Server", s)
	return s, nil
}

func (s *Stage) Config() *Config       { return s.config }
func (s *Stage) Logger() Logger        { return s.logger }
func (s *Stage) Server() Server        { return s.server }
func (s *Stage) SetOutput(w io.Writer) { s.output = w }

// Start binds the server and serves it on a runner. The listening line is printed after binding.
func (s *Stage) Start() error {
	if DebugLevel() >= 1 {
		Printf("stage: engine=%s address=%s gates=%d\n", s.config.Engine, s.config.Address, s.config.NumGates)
	}
	if err := s.server.Open(); err != nil {
		return err
	}
	fmt.Fprintf(s.output, "Listening on http://%s\n", s.server.Addr())
	s.started = true
	go s.serve()
	return nil
}
func (s *Stage) serve() { // runner
	s.err = s.server.Serve()
	if DebugLevel() >= 1 {
		Printf("stage: server=%s stopped\n", s.server.Name())
	}
	close(s.done)
}

// Done returns a channel that is closed when the server stops.
func (s *Stage) Done() <-chan struct{} { return s.done }

// Wait blocks until the server stops and returns its error.
func (s *Stage) Wait() error {
	<-s.done
	return s.err
}

// Quit shuts the server, waits for it, then closes the logger.
func (s *Stage) Quit() {
	s.quitOnce.Do(func() {
		s.server.Shut()
		if s.started {
			<-s.done
		}
		s.logger.Close()
		if DebugLevel() >= 1 {
			Printf("stage: quit. served=%d\n", s.served())
		}
	})
}

func (s *Stage) served() int64 {
	if x, ok := s.server.(interface{ Served() int64 }); ok {
		return x.Served()
	}
	return 0
}
