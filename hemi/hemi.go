// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Basic elements that exist between stages.

package hemi

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

const Version = "0.1.0"

var (
	_debugLevel atomic.Int32 // 0: disable, 1: stage events, 2: conn events, 3: request events
)

func DebugLevel() int32         { return _debugLevel.Load() }
func SetDebugLevel(level int32) { _debugLevel.Store(level) }

func Printf(f string, v ...any) { fmt.Printf(f, v...) }

// DebugLog prints messages from libraries through Printf when debug level is at least its value.
type DebugLog int32

func (l DebugLog) Printf(f string, v ...any) {
	if DebugLevel() >= int32(l) {
		if !strings.HasSuffix(f, "\n") {
			f += "\n"
		}
		Printf(f, v...)
	}
}
func (l DebugLog) Write(p []byte) (int, error) {
	if DebugLevel() >= int32(l) {
		Printf("%s", p)
	}
	return len(p), nil
}

// ErrorLog is for http.Server.ErrorLog. Conn errors are shown at debug level 2.
func ErrorLog() *log.Logger { return log.New(DebugLog(2), "", 0) }

const ( // exit codes
	CodeBug = 20
	CodeUse = 21
	CodeEnv = 22
)

func BugExitln(v ...any)          { _exitln(CodeBug, "[BUG] ", v...) }
func BugExitf(f string, v ...any) { _exitf(CodeBug, "[BUG] ", f, v...) }

func UseExitln(v ...any)          { _exitln(CodeUse, "[USE] ", v...) }
func UseExitf(f string, v ...any) { _exitf(CodeUse, "[USE] ", f, v...) }

func EnvExitln(v ...any)          { _exitln(CodeEnv, "[ENV] ", v...) }
func EnvExitf(f string, v ...any) { _exitf(CodeEnv, "[ENV] ", f, v...) }

func _exitln(exitCode int, prefix string, v ...any) {
	fmt.Fprint(os.Stderr, prefix)
	fmt.Fprintln(os.Stderr, v...)
	os.Exit(exitCode)
}
func _exitf(exitCode int, prefix, f string, v ...any) {
	fmt.Fprintf(os.Stderr, prefix+f, v...)
	os.Exit(exitCode)
}
