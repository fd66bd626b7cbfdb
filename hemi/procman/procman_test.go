// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Unit tests for procman.

package procman

import (
	"bytes"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/hexinfra/hellox/hemi"
	"github.com/hexinfra/hellox/hemi/procman/common"
)

var testOpts = &Opts{
	ProgramName:  "hellox",
	ProgramTitle: "Hellox",
	DebugLevel:   0,
	Engine:       hemi.DefaultEngine,
	Address:      hemi.DefaultAddress,
}

func TestParseDefaults(t *testing.T) {
	action, err := parse(testOpts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if action != "serve" {
		t.Errorf("action=%s", action)
	}
	if common.Engine != "std" || common.Address != "0.0.0.0:3000" || common.NumGates != 1 || common.LogFile != "" {
		t.Errorf("engine=%s address=%s gates=%d log=%s", common.Engine, common.Address, common.NumGates, common.LogFile)
	}
	if common.Program != "hellox" {
		t.Errorf("program=%s", common.Program)
	}
}

func TestParseOptions(t *testing.T) {
	action, err := parse(testOpts, []string{"check", "-debug", "2", "-engine", "hemi", "-listen", "127.0.0.1:8080", "-gates", "4", "-log", "access.log", "-rotate", "day"})
	if err != nil {
		t.Fatal(err)
	}
	if action != "check" {
		t.Errorf("action=%s", action)
	}
	if common.DebugLevel != 2 || common.Engine != "hemi" || common.Address != "127.0.0.1:8080" || common.NumGates != 4 || common.LogFile != "access.log" || common.LogRotate != "day" {
		t.Errorf("debug=%d engine=%s address=%s gates=%d log=%s rotate=%s", common.DebugLevel, common.Engine, common.Address, common.NumGates, common.LogFile, common.LogRotate)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := parse(testOpts, []string{"-nope"}); err == nil {
		t.Error("unknown flag must fail")
	}
	if _, err := parse(testOpts, []string{"serve", "extra"}); err == nil {
		t.Error("extra argument must fail")
	}
	if action, err := parse(testOpts, []string{"-h"}); err != nil || action != "help" {
		t.Errorf("-h: action=%s err=%v", action, err)
	}
}

func TestUsage(t *testing.T) {
	var output bytes.Buffer
	printUsage(&output, testOpts)
	usage := output.String()
	for _, want := range []string{"Hellox (" + hemi.Version + ")", "hellox [ACTION] [OPTIONS]", "(default: std)", "(default: 0.0.0.0:3000)"} {
		if !strings.Contains(usage, want) {
			t.Errorf("usage lacks %q", want)
		}
	}
}

func TestServeUntilSignal(t *testing.T) {
	config := hemi.NewConfig()
	config.Address = "127.0.0.1:0"
	stage, err := hemi.NewStage(config)
	if err != nil {
		t.Fatal(err)
	}
	stage.SetOutput(new(bytes.Buffer))
	if err := stage.Start(); err != nil {
		t.Fatal(err)
	}
	signals := make(chan os.Signal, 1)
	signals <- syscall.SIGTERM
	result := make(chan error, 1)
	go func() { result <- serveUntil(stage, signals) }()
	select {
	case err := <-result:
		if err != nil {
			t.Errorf("serveUntil: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serveUntil did not return on signal")
	}
	select {
	case <-stage.Done():
	default:
		t.Error("server should be stopped after signal")
	}
}
