// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Servers answer every request with the greeting. Each engine registers its own server.

package hemi

import (
	"context"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hexinfra/hellox/hemi/library/system"
)

// Server component. A Server is a group of gates.
type Server interface {
	// Methods
	Name() string
	Engine() string
	Stage() *Stage
	Address() string
	Open() error    // binds all gates. fails fast
	Addr() net.Addr // bound address of the first gate, valid after Open
	Serve() error   // runner. returns after Shut
	Shut() error
}

var (
	serversLock    sync.RWMutex
	serverCreators = make(map[string]func(name string, stage *Stage) Server) // indexed by engine
)

func RegisterServer(engine string, create func(name string, stage *Stage) Server) {
	serversLock.Lock()
	defer serversLock.Unlock()

	if _, ok := serverCreators[engine]; ok {
		BugExitln("server conflicts")
	}
	serverCreators[engine] = create
}
func ServerRegistered(engine string) bool {
	serversLock.RLock()
	_, ok := serverCreators[engine]
	serversLock.RUnlock()
	return ok
}
func ServerEngines() []string {
	serversLock.RLock()
	engines := make([]string, 0, len(serverCreators))
	for engine := range serverCreators {
		engines = append(engines, engine)
	}
	serversLock.RUnlock()
	sort.Strings(engines)
	return engines
}
func createServer(engine string, name string, stage *Stage) Server {
	serversLock.RLock()
	defer serversLock.RUnlock()

	if create := serverCreators[engine]; create != nil {
		return create(name, stage)
	}
	return nil
}

// Listen opens a TCP gate at address. SO_REUSEPORT is set if reusePort is true.
func Listen(address string, reusePort bool) (net.Listener, error) {
	listenConfig := net.ListenConfig{Control: system.ListenControl(reusePort)}
	return listenConfig.Listen(context.Background(), "tcp", address)
}

// Server_ is the parent for all servers.
type Server_ struct {
	// Assocs
	stage *Stage         // current stage
	gates []net.Listener // a server has many gates
	// States
	name     string       // server name
	engine   string       // engine the server is registered with
	address  string       // hostname:port
	numGates int32        // number of gates
	shut     atomic.Bool  // is server shut?
	served   atomic.Int64 // requests answered so far
}

func (s *Server_) OnCreate(name string, engine string, stage *Stage) { // exported
	s.name = name
	s.engine = engine
	s.stage = stage
	s.address = stage.config.Address
	s.numGates = stage.config.NumGates
}

func (s *Server_) Name() string    { return s.name }
func (s *Server_) Engine() string  { return s.engine }
func (s *Server_) Stage() *Stage   { return s.stage }
func (s *Server_) Address() string { return s.address }
func (s *Server_) NumGates() int32 { return s.numGates }

// OpenGates binds numGates gates. Gates share the port through SO_REUSEPORT when more than one.
func (s *Server_) OpenGates() error {
	reusePort := s.numGates > 1
	for id := int32(0); id < s.numGates; id++ {
		gate, err := Listen(s.address, reusePort)
		if err != nil {
			s.ShutGates()
			return err
		}
		s.gates = append(s.gates, gate)
		if DebugLevel() >= 2 {
			Printf("server=%s gate=%d opened at %s\n", s.name, id, gate.Addr())
		}
	}
	return nil
}
func (s *Server_) Gates() []net.Listener { return s.gates }
func (s *Server_) Addr() net.Addr {
	if len(s.gates) == 0 {
		return nil
	}
	return s.gates[0].Addr()
}

// ServeGates runs serve on every gate and waits for all of them.
// Errors after the server is shut are not errors.
func (s *Server_) ServeGates(serve func(gate net.Listener) error) error {
	var (
		wait  sync.WaitGroup
		once  sync.Once
		first error
	)
	for id, gate := range s.gates {
		wait.Add(1)
		go func(id int, gate net.Listener) { // runner
			defer wait.Done()
			if err := serve(gate); err != nil && !s.IsShut() {
				once.Do(func() { first = err })
			}
			if DebugLevel() >= 2 {
				Printf("server=%s gate=%d done\n", s.name, id)
			}
		}(id, gate)
	}
	wait.Wait()
	return first
}

func (s *Server_) MarkShut()    { s.shut.Store(true) }
func (s *Server_) IsShut() bool { return s.shut.Load() }

// ShutGates marks the server as shut and closes all gates.
func (s *Server_) ShutGates() error {
	s.MarkShut()
	var first error
	for _, gate := range s.gates {
		if err := gate.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (s *Server_) IncServed()    { s.served.Add(1) }
func (s *Server_) Served() int64 { return s.served.Load() }

// LogAccess logs an answered request to the stage logger.
func (s *Server_) LogAccess(remote string, method string, uri string, proto string, status int, size int) {
	s.IncServed()
	if DebugLevel() >= 3 {
		Printf("server=%s %s \"%s %s %s\" %d %d\n", s.name, remote, method, uri, proto, status, size)
	}
	s.stage.logger.Logf("%s \"%s %s %s\" %d %d\n", remote, method, uri, proto, status, size)
}

// retryAccept sleeps for a while after a temporary accept error, so a broken gate doesn't spin.
func retryAccept(delay time.Duration) time.Duration {
	if delay == 0 {
		delay = 5 * time.Millisecond
	} else {
		delay *= 2
	}
	if delay > time.Second {
		delay = time.Second
	}
	time.Sleep(delay)
	return delay
}
