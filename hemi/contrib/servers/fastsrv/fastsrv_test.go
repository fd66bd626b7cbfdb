// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Unit tests for fastsrv.

package fastsrv

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/hexinfra/hellox/hemi"
	"github.com/hexinfra/hellox/hemi/hemitest"
)

func TestGreetings(t *testing.T) { hemitest.CheckGreetings(t, "fasthttp") }
func TestAccessLog(t *testing.T) { hemitest.CheckAccessLog(t, "fasthttp") }

func TestInmemory(t *testing.T) {
	config := hemi.NewConfig()
	config.Engine = "fasthttp"
	stage, err := hemi.NewStage(config)
	if err != nil {
		t.Fatal(err)
	}
	s := stage.Server().(*fastServer)
	ln := fasthttputil.NewInmemoryListener()
	go s.server.Serve(ln)
	defer stage.Quit() // shuts s.server, which closes ln

	client := &fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) { return ln.Dial() },
	}
	req, resp := fasthttp.AcquireRequest(), fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	for _, uri := range []string{"/", "/anything/at/all", "/?query=1"} {
		req.SetRequestURI("http://greeter" + uri)
		if err := client.Do(req, resp); err != nil {
			t.Fatalf("GET %s: %v", uri, err)
		}
		if resp.StatusCode() != hemi.GreetingStatus {
			t.Errorf("GET %s: status=%d", uri, resp.StatusCode())
		}
		if got := string(resp.Header.ContentType()); got != hemi.GreetingType {
			t.Errorf("GET %s: content-type=%q", uri, got)
		}
		if got := string(resp.Body()); got != hemi.GreetingBody {
			t.Errorf("GET %s: body=%q", uri, got)
		}
	}

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetBodyString("x=1")
	if err := client.Do(req, resp); err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode() != fasthttp.StatusMethodNotAllowed {
		t.Errorf("POST: status=%d", resp.StatusCode())
	}
	if got := string(resp.Header.Peek(fasthttp.HeaderAllow)); got != hemi.GreetingAllow {
		t.Errorf("POST: allow=%q", got)
	}
}

func TestHandleHead(t *testing.T) {
	stage, err := hemi.NewStage(&hemi.Config{Engine: "fasthttp", Address: hemi.DefaultAddress, NumGates: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer stage.Quit()
	s := stage.Server().(*fastServer)

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodHead)
	ctx.Request.SetRequestURI("/foo")
	s.handle(&ctx)
	if ctx.Response.StatusCode() != hemi.GreetingStatus {
		t.Errorf("status=%d", ctx.Response.StatusCode())
	}
	if got := string(ctx.Response.Header.ContentType()); got != hemi.GreetingType {
		t.Errorf("content-type=%q", got)
	}
}

func TestShutHalfSentRequest(t *testing.T) {
	config := hemi.NewConfig()
	config.Engine = "fasthttp"
	stage, base := hemitest.StartStage(t, config)
	s := stage.Server().(*fastServer)
	s.shutTimeout = 100 * time.Millisecond

	conn, err := net.Dial("tcp", strings.TrimPrefix(base, "http://"))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte("GET / HTTP/1.1\r\nHost: a\r\n")); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond) // server is reading the head now

	quit := make(chan struct{})
	go func() {
		stage.Quit()
		close(quit)
	}()
	select {
	case <-quit:
	case <-time.After(3 * time.Second):
		t.Fatal("quit is blocked by a half-sent request")
	}
	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, err := conn.Read(make([]byte, 1)); err == nil {
		t.Error("conn should be closed after quit")
	}
}

func TestQuietLogger(t *testing.T) {
	stage, err := hemi.NewStage(&hemi.Config{Engine: "fasthttp", Address: hemi.DefaultAddress, NumGates: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer stage.Quit()
	s := stage.Server().(*fastServer)
	if _, ok := s.server.Logger.(hemi.DebugLog); !ok {
		t.Errorf("logger=%T", s.server.Logger)
	}
}
