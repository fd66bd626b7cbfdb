// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Greeting server on echo.

package echosrv

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	. "github.com/hexinfra/hellox/hemi"
)

func init() {
	RegisterServer("echo", func(name string, stage *Stage) Server {
		s := new(echoServer)
		s.onCreate(name, stage)
		return s
	})
}

// echoServer
type echoServer struct {
	// Mixins
	Server_
	// States
	echo       *echo.Echo
	httpServer *http.Server
}

func (s *echoServer) onCreate(name string, stage *Stage) {
	s.Server_.OnCreate(name, "echo", stage)
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetOutput(DebugLog(2))
	e.Use(s.logAccess)
	e.Match([]string{http.MethodGet, http.MethodHead}, "/*", s.greet) // other methods get echo's 405
	s.echo = e
	s.httpServer = &http.Server{Handler: e, ErrorLog: ErrorLog()}
}

func (s *echoServer) Open() error { return s.OpenGates() }
func (s *echoServer) Serve() error { // runner
	return s.ServeGates(s.httpServer.Serve)
}
func (s *echoServer) Shut() error {
	s.ShutGates()
	return s.httpServer.Close()
}

var greetingLength = strconv.Itoa(len(GreetingBody))

func (s *echoServer) greet(c echo.Context) error {
	if c.Request().Method == http.MethodHead {
		header := c.Response().Header()
		header.Set(echo.HeaderContentType, GreetingType)
		header.Set(echo.HeaderContentLength, greetingLength)
		return c.NoContent(GreetingStatus)
	}
	return c.Blob(GreetingStatus, GreetingType, GreetingBytes())
}

func (s *echoServer) logAccess(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := next(c); err != nil {
			c.Error(err)
		}
		req, resp := c.Request(), c.Response()
		s.LogAccess(req.RemoteAddr, req.Method, req.RequestURI, req.Proto, resp.Status, int(resp.Size))
		return nil
	}
}
