// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// The greeting. Every server engine answers with exactly these elements.

package hemi

import (
	"strconv"
)

const (
	GreetingStatus = 200
	GreetingType   = "text/plain; charset=utf-8"
	GreetingBody   = "Hello world"
	GreetingAllow  = "GET, HEAD" // value of the Allow header on refusals
)

var greetingBody = []byte(GreetingBody)

// GreetingBytes returns the greeting body. Callers must not modify it.
func GreetingBytes() []byte { return greetingBody }

// Greetable reports whether a request with method gets the greeting.
// HEAD is the body-less GET, others are refused.
func Greetable(method string) bool {
	return method == "GET" || method == "HEAD"
}

var ( // fixed response parts for native engines
	greetingHead = []byte("HTTP/1.1 200 OK\r\n" +
		"Content-Type: " + GreetingType + "\r\n" +
		"Content-Length: " + strconv.Itoa(len(GreetingBody)) + "\r\n")
	refusalBody = []byte("Method Not Allowed\n")
	refusalHead = []byte("HTTP/1.1 405 Method Not Allowed\r\n" +
		"Allow: " + GreetingAllow + "\r\n" +
		"Content-Type: " + GreetingType + "\r\n" +
		"Content-Length: " + strconv.Itoa(len(refusalBody)) + "\r\n")
	badRequest = []byte("HTTP/1.1 400 Bad Request\r\n" +
		"Content-Length: 0\r\n" +
		"Connection: close\r\n\r\n")

	connectionClose     = []byte("Connection: close\r\n")
	connectionKeepAlive = []byte("Connection: keep-alive\r\n")
	headersEnd          = []byte("\r\n")
)

// AppendGreeting appends the whole HTTP/1.1 greeting response to p.
// With head, the body is omitted while content-length still declares it.
func AppendGreeting(p []byte, head bool, keepAlive bool) []byte {
	p = append(p, greetingHead...)
	p = appendConnection(p, keepAlive)
	p = append(p, headersEnd...)
	if !head {
		p = append(p, greetingBody...)
	}
	return p
}

// AppendRefusal appends a 405 response to p.
func AppendRefusal(p []byte, keepAlive bool) []byte {
	p = append(p, refusalHead...)
	p = appendConnection(p, keepAlive)
	p = append(p, headersEnd...)
	return append(p, refusalBody...)
}

func appendConnection(p []byte, keepAlive bool) []byte {
	if keepAlive {
		return append(p, connectionKeepAlive...)
	}
	return append(p, connectionClose...)
}
