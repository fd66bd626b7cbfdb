// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Unit tests for the greeting.

package hemi

import (
	"testing"
)

func TestGreetable(t *testing.T) {
	for _, method := range []string{"GET", "HEAD"} {
		if !Greetable(method) {
			t.Errorf("%s should be greetable", method)
		}
	}
	for _, method := range []string{"POST", "PUT", "DELETE", "PATCH", "OPTIONS", "get", ""} {
		if Greetable(method) {
			t.Errorf("%q should not be greetable", method)
		}
	}
}

func TestAppendGreeting(t *testing.T) {
	tests := []struct {
		head      bool
		keepAlive bool
		want      string
	}{
		{false, true, "HTTP/1.1 200 OK\r\nContent-Type: text/plain; charset=utf-8\r\nContent-Length: 11\r\nConnection: keep-alive\r\n\r\nHello world"},
		{false, false, "HTTP/1.1 200 OK\r\nContent-Type: text/plain; charset=utf-8\r\nContent-Length: 11\r\nConnection: close\r\n\r\nHello world"},
		{true, true, "HTTP/1.1 200 OK\r\nContent-Type: text/plain; charset=utf-8\r\nContent-Length: 11\r\nConnection: keep-alive\r\n\r\n"},
	}
	for _, tt := range tests {
		if got := string(AppendGreeting(nil, tt.head, tt.keepAlive)); got != tt.want {
			t.Errorf("head=%v keepAlive=%v: got %q", tt.head, tt.keepAlive, got)
		}
	}
}

func TestAppendGreetingReuse(t *testing.T) {
	p := make([]byte, 0, 256)
	first := string(AppendGreeting(p[:0], false, true))
	second := string(AppendGreeting(p[:0], false, true))
	if first != second {
		t.Error("greeting must be identical across calls")
	}
}

func TestAppendRefusal(t *testing.T) {
	want := "HTTP/1.1 405 Method Not Allowed\r\nAllow: GET, HEAD\r\nContent-Type: text/plain; charset=utf-8\r\nContent-Length: 19\r\nConnection: close\r\n\r\nMethod Not Allowed\n"
	if got := string(AppendRefusal(nil, false)); got != want {
		t.Errorf("got %q", got)
	}
}

func BenchmarkAppendGreeting(b *testing.B) {
	p := make([]byte, 0, 256)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p = AppendGreeting(p[:0], false, true)
	}
}
