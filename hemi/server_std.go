// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Greeting server on net/http. This is the default engine.

package hemi

import (
	"net/http"
	"strconv"
)

func init() {
	RegisterServer("std", func(name string, stage *Stage) Server {
		s := new(stdServer)
		s.onCreate(name, stage)
		return s
	})
}

// stdServer
type stdServer struct {
	// Mixins
	Server_
	// States
	mux        *http.ServeMux
	httpServer *http.Server
}

func (s *stdServer) onCreate(name string, stage *Stage) {
	s.Server_.OnCreate(name, "std", stage)
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("GET /", s.greet) // other methods get the mux's 405
	s.httpServer = &http.Server{Handler: s, ErrorLog: ErrorLog()}
}

func (s *stdServer) Open() error { return s.OpenGates() }
func (s *stdServer) Serve() error { // runner
	return s.ServeGates(s.httpServer.Serve)
}
func (s *stdServer) Shut() error {
	s.ShutGates()
	return s.httpServer.Close()
}

func (s *stdServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := stdRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(&rec, r)
	s.LogAccess(r.RemoteAddr, r.Method, r.RequestURI, r.Proto, rec.status, rec.size)
}

var greetingLength = strconv.Itoa(len(GreetingBody))

func (s *stdServer) greet(w http.ResponseWriter, r *http.Request) {
	header := w.Header()
	header.Set("Content-Type", GreetingType)
	header.Set("Content-Length", greetingLength)
	w.WriteHeader(GreetingStatus)
	if r.Method != http.MethodHead {
		w.Write(GreetingBytes())
	}
}

// stdRecorder records status and body size for the access log.
type stdRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *stdRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
func (r *stdRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.size += n
	return n, err
}
