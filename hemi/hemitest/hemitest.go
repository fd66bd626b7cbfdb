// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Hemitest package checks that a server engine behaves as a greeting server.

package hemitest

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hexinfra/hellox/hemi"
)

// StartStage starts a stage for engine on a random local port and returns its base url.
// The stage quits when the test ends.
func StartStage(t *testing.T, config *hemi.Config) (*hemi.Stage, string) {
	t.Helper()
	config.Address = "127.0.0.1:0"
	stage, err := hemi.NewStage(config)
	if err != nil {
		t.Fatalf("new stage: %v", err)
	}
	var output bytes.Buffer
	stage.SetOutput(&output)
	if err := stage.Start(); err != nil {
		stage.Quit()
		t.Fatalf("start stage: %v", err)
	}
	t.Cleanup(stage.Quit)
	base := "http://" + stage.Server().Addr().String()
	if got, want := output.String(), "Listening on "+base+"\n"; got != want {
		t.Errorf("listening line: got %q, want %q", got, want)
	}
	return stage, base
}

func newConfig(engine string) *hemi.Config {
	config := hemi.NewConfig()
	config.Engine = engine
	return config
}

// Answer is what a greeting check looks at.
type Answer struct {
	Status int
	Type   string
	Body   string
}

func Do(t *testing.T, client *http.Client, method string, url string, body io.Reader) Answer {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("%s %s: read body: %v", method, url, err)
	}
	return Answer{resp.StatusCode, resp.Header.Get("Content-Type"), string(content)}
}

var greeting = Answer{hemi.GreetingStatus, hemi.GreetingType, hemi.GreetingBody}

// CheckGreetings runs the greeting properties against engine.
func CheckGreetings(t *testing.T, engine string) {
	stage, base := StartStage(t, newConfig(engine))
	client := &http.Client{Timeout: 5 * time.Second}

	t.Run("AnyPath", func(t *testing.T) {
		for _, uri := range []string{"/", "/foo", "/anything/at/all", "/?query=1", "/a/b?x=1"} {
			if got := Do(t, client, "GET", base+uri, nil); got != greeting {
				t.Errorf("GET %s: got %+v", uri, got)
			}
		}
	})
	t.Run("Head", func(t *testing.T) {
		got := Do(t, client, "HEAD", base+"/foo", nil)
		if got.Status != hemi.GreetingStatus || got.Body != "" {
			t.Errorf("HEAD /foo: got %+v", got)
		}
	})
	t.Run("Post", func(t *testing.T) {
		got := Do(t, client, "POST", base+"/", strings.NewReader("x=1"))
		if got.Status == http.StatusOK || got.Body == hemi.GreetingBody {
			t.Errorf("POST /: got %+v", got)
		}
		if got.Status != http.StatusMethodNotAllowed {
			t.Errorf("POST /: status %d, want 405", got.Status)
		}
	})
	t.Run("Idempotent", func(t *testing.T) {
		first := Do(t, client, "GET", base+"/again", nil)
		for i := 0; i < 10; i++ {
			if got := Do(t, client, "GET", base+"/again", nil); got != first {
				t.Fatalf("request %d: got %+v, want %+v", i, got, first)
			}
		}
	})
	t.Run("NewConns", func(t *testing.T) {
		once := &http.Client{Timeout: 5 * time.Second, Transport: &http.Transport{DisableKeepAlives: true}}
		for i := 0; i < 5; i++ {
			if got := Do(t, once, "GET", base+"/", nil); got != greeting {
				t.Fatalf("conn %d: got %+v", i, got)
			}
		}
	})
	if served := stage.Server().(interface{ Served() int64 }).Served(); served < 20 {
		t.Errorf("served=%d, want at least 20", served)
	}
}

// CheckAccessLog checks that engine writes access lines when a log target is set.
func CheckAccessLog(t *testing.T, engine string) {
	config := newConfig(engine)
	config.LogTarget = filepath.Join(t.TempDir(), "access.log")
	stage, base := StartStage(t, config)
	client := &http.Client{Timeout: 5 * time.Second}
	Do(t, client, "GET", base+"/foo?x=1", nil)
	Do(t, client, "POST", base+"/bar", strings.NewReader("y"))
	stage.Quit() // flushes the logger

	data, err := os.ReadFile(config.LogTarget)
	if err != nil {
		t.Fatalf("read access log: %v", err)
	}
	logs := string(data)
	for _, want := range []string{`"GET /foo?x=1 HTTP/1.1" 200 11`, `"POST /bar HTTP/1.1" 405 `} {
		if !strings.Contains(logs, want) {
			t.Errorf("access log lacks %q:\n%s", want, logs)
		}
	}
}
