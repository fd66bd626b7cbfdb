// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Greeting server on fasthttp.

package fastsrv

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/valyala/fasthttp"

	. "github.com/hexinfra/hellox/hemi"
)

func init() {
	RegisterServer("fasthttp", func(name string, stage *Stage) Server {
		s := new(fastServer)
		s.onCreate(name, stage)
		return s
	})
}

const fastReadTimeout = 60 * time.Second // same as the native engine

// fastServer
type fastServer struct {
	// Mixins
	Server_
	// States
	server      *fasthttp.Server
	conns       sync.Map      // open conns, indexed by net.Conn
	shutTimeout time.Duration // busy conns are closed after this
}

func (s *fastServer) onCreate(name string, stage *Stage) {
	s.Server_.OnCreate(name, "fasthttp", stage)
	s.server = &fasthttp.Server{
		Handler:               s.handle,
		ConnState:             s.trackConn,
		Logger:                DebugLog(2),
		ReadTimeout:           fastReadTimeout,
		IdleTimeout:           fastReadTimeout,
		NoDefaultServerHeader: true,
		CloseOnShutdown:       true,
	}
	s.shutTimeout = 3 * time.Second
}

func (s *fastServer) trackConn(conn net.Conn, state fasthttp.ConnState) {
	switch state {
	case fasthttp.StateNew:
		s.conns.Store(conn, struct{}{})
	case fasthttp.StateHijacked, fasthttp.StateClosed:
		s.conns.Delete(conn)
	}
}

func (s *fastServer) Open() error { return s.OpenGates() }
func (s *fastServer) Serve() error { // runner
	return s.ServeGates(s.server.Serve)
}
func (s *fastServer) Shut() error {
	s.MarkShut()
	ctx, cancel := context.WithTimeout(context.Background(), s.shutTimeout)
	defer cancel()
	err := s.server.ShutdownWithContext(ctx) // closes the gates it serves and idle conns, then waits for busy conns
	s.ShutGates()                            // gates that were never served
	// Busy conns left, such as half-sent requests.
	s.conns.Range(func(key, value any) bool {
		if DebugLevel() >= 2 {
			Printf("server=%s: close busy conn %s\n", s.Name(), key.(net.Conn).RemoteAddr())
		}
		key.(net.Conn).Close()
		return true
	})
	return err
}

func (s *fastServer) handle(ctx *fasthttp.RequestCtx) {
	method := string(ctx.Method())
	if Greetable(method) {
		ctx.SetStatusCode(GreetingStatus)
		ctx.SetContentType(GreetingType)
		ctx.SetBody(GreetingBytes()) // skipped by fasthttp for HEAD
	} else {
		ctx.Error("Method Not Allowed\n", fasthttp.StatusMethodNotAllowed) // resets headers
		ctx.Response.Header.Set(fasthttp.HeaderAllow, GreetingAllow)
	}
	size := len(ctx.Response.Body())
	if ctx.IsHead() {
		size = 0
	}
	s.LogAccess(ctx.RemoteAddr().String(), method, string(ctx.RequestURI()), string(ctx.Request.Header.Protocol()), ctx.Response.StatusCode(), size)
}
