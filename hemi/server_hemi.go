// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Native greeting server. Gates accept connections, conns answer requests with prebuilt bytes.

package hemi

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

func init() {
	RegisterServer("hemi", func(name string, stage *Stage) Server {
		s := new(hemiServer)
		s.onCreate(name, stage)
		return s
	})
}

const (
	hemiReadTimeout = 60 * time.Second // max idle time between requests on a conn
	hemiMaxDrain    = 64 << 10         // request content larger than this closes the conn
)

// hemiServer
type hemiServer struct {
	// Mixins
	Server_
	// States
	conns sync.Map // active conns, indexed by *hemiConn
}

func (s *hemiServer) onCreate(name string, stage *Stage) {
	s.Server_.OnCreate(name, "hemi", stage)
}

func (s *hemiServer) Open() error { return s.OpenGates() }
func (s *hemiServer) Serve() error { // runner
	return s.ServeGates(s.serveGate)
}
func (s *hemiServer) Shut() error {
	err := s.ShutGates()
	s.conns.Range(func(key, value any) bool {
		value.(net.Conn).Close()
		return true
	})
	return err
}

func (s *hemiServer) serveGate(gate net.Listener) error { // runner
	var (
		subs   sync.WaitGroup // for conns
		connID int64
		delay  time.Duration
	)
	for {
		netConn, err := gate.Accept()
		if err != nil {
			if s.IsShut() || errors.Is(err, net.ErrClosed) {
				break
			}
			delay = retryAccept(delay)
			continue
		}
		delay = 0
		subs.Add(1)
		conn := getHemiConn(connID, s, netConn, &subs)
		s.conns.Store(conn, netConn)
		if s.IsShut() { // shut after accept
			netConn.Close()
		}
		go conn.serve() // conn is put to pool in serve()
		connID++
	}
	subs.Wait() // conns
	if s.IsShut() {
		return nil
	}
	return net.ErrClosed
}

// poolHemiConn
var poolHemiConn sync.Pool

func getHemiConn(id int64, server *hemiServer, netConn net.Conn, subs *sync.WaitGroup) *hemiConn {
	var conn *hemiConn
	if x := poolHemiConn.Get(); x == nil {
		conn = new(hemiConn)
		conn.reader = bufio.NewReaderSize(netConn, 4096)
		conn.output = make([]byte, 0, 256)
	} else {
		conn = x.(*hemiConn)
		conn.reader.Reset(netConn)
	}
	conn.onGet(id, server, netConn, subs)
	return conn
}
func putHemiConn(conn *hemiConn) {
	conn.onPut()
	poolHemiConn.Put(conn)
}

// hemiConn
type hemiConn struct {
	// Conn states (stocks)
	reader *bufio.Reader
	output []byte
	// Conn states (non-zeros)
	id      int64
	server  *hemiServer
	netConn net.Conn
	subs    *sync.WaitGroup
}

func (c *hemiConn) onGet(id int64, server *hemiServer, netConn net.Conn, subs *sync.WaitGroup) {
	c.id = id
	c.server = server
	c.netConn = netConn
	c.subs = subs
}
func (c *hemiConn) onPut() {
	c.reader.Reset(nil)
	c.output = c.output[:0]
	c.server = nil
	c.netConn = nil
	c.subs = nil
}

func (c *hemiConn) serve() { // runner
	subs := c.subs
	defer subs.Done()
	defer putHemiConn(c)
	defer c.closeConn()

	for {
		c.netConn.SetReadDeadline(time.Now().Add(hemiReadTimeout))
		req, err := http.ReadRequest(c.reader)
		if err != nil {
			if isMalformed(err) {
				c.netConn.Write(badRequest)
				c.server.LogAccess(c.netConn.RemoteAddr().String(), "-", "-", "-", http.StatusBadRequest, 0)
			} else if DebugLevel() >= 2 {
				Printf("server=%s conn=%d: %s\n", c.server.Name(), c.id, err.Error())
			}
			return
		}
		keepAlive := !req.Close && !c.server.IsShut()
		if !drainContent(req.Body) {
			keepAlive = false
		}

		status, size := GreetingStatus, len(GreetingBody)
		if Greetable(req.Method) {
			head := req.Method == http.MethodHead
			c.output = AppendGreeting(c.output[:0], head, keepAlive)
			if head {
				size = 0
			}
		} else {
			status, size = http.StatusMethodNotAllowed, len(refusalBody)
			c.output = AppendRefusal(c.output[:0], keepAlive)
		}
		_, err = c.netConn.Write(c.output)
		c.server.LogAccess(c.netConn.RemoteAddr().String(), req.Method, req.RequestURI, req.Proto, status, size)
		if err != nil || !keepAlive {
			return
		}
	}
}

func (c *hemiConn) closeConn() {
	c.server.conns.Delete(c)
	c.netConn.Close()
}

// drainContent discards request content so the next request can be read. Reports false if content is too large.
func drainContent(body io.ReadCloser) bool {
	defer body.Close()
	_, err := io.CopyN(io.Discard, body, hemiMaxDrain+1)
	return err == io.EOF
}

// isMalformed reports whether err is about bad request syntax rather than conn IO.
func isMalformed(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return false
	}
	var netErr net.Error
	return !errors.As(err, &netErr)
}
