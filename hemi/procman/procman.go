// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Procman package implements the process model of a greeting server: parse the command line, run the stage, and stop on signals.

package procman

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hexinfra/hellox/hemi"
	"github.com/hexinfra/hellox/hemi/procman/common"
)

const usage = `
%s (%s)
================================================================================

  %s [ACTION] [OPTIONS]

ACTION
------

  serve      # start as server
  check      # dry run to check options
  engines    # list registered server engines
  help       # show this message
  version    # show version info

  Only one action is allowed at a time.
  If ACTION is not specified, the default action is "serve".

OPTIONS
-------

  -debug  <level>   # debug level (default: %d. min: 0, max: 3)
  -engine <name>    # server engine (default: %s)
  -listen <addr>    # listen address (default: %s)
  -gates  <num>     # number of gates. more than 1 uses SO_REUSEPORT (default: 1)
  -log    <path>    # access log file (default: none)
  -rotate <unit>    # rotate access log by "day" or "hour" (default: none)

  "-debug" applies to all actions.
  Other options apply to "serve" and "check" only.

`

// Opts
type Opts struct {
	ProgramName  string
	ProgramTitle string
	DebugLevel   int
	Engine       string
	Address      string
}

func Main(opts *Opts) {
	action, err := parse(opts, os.Args[1:])
	if err != nil {
		hemi.UseExitln(err.Error())
	}
	hemi.SetDebugLevel(int32(common.DebugLevel))

	switch action {
	case "help":
		printUsage(os.Stdout, opts)
	case "version":
		fmt.Println(hemi.Version)
	case "engines":
		for _, engine := range hemi.ServerEngines() {
			fmt.Println(engine)
		}
	case "check":
		if _, err := common.GetConfig(); err != nil {
			fmt.Println(err.Error())
		} else {
			fmt.Println("PASS")
		}
	case "serve":
		config, err := common.GetConfig()
		if err != nil {
			hemi.UseExitln(err.Error())
		}
		stage, err := hemi.NewStage(config)
		if err != nil {
			hemi.UseExitln(err.Error())
		}
		if err := stage.Start(); err != nil { // bind failure
			stage.Quit()
			hemi.EnvExitln(err.Error())
		}
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		if err := serveUntil(stage, signals); err != nil {
			hemi.EnvExitln(err.Error())
		}
	default:
		hemi.UseExitf("unknown action: %s\n", action)
	}
}

// parse parses args into common flags and returns the action.
func parse(opts *Opts, args []string) (action string, err error) {
	flags := flag.NewFlagSet(opts.ProgramName, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.IntVar(&common.DebugLevel, "debug", opts.DebugLevel, "")
	flags.StringVar(&common.Engine, "engine", opts.Engine, "")
	flags.StringVar(&common.Address, "listen", opts.Address, "")
	flags.IntVar(&common.NumGates, "gates", 1, "")
	flags.StringVar(&common.LogFile, "log", "", "")
	flags.StringVar(&common.LogRotate, "rotate", "", "")

	common.Program = opts.ProgramName
	action = "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		action = args[0]
		args = args[1:]
	}
	if err = flags.Parse(args); err == flag.ErrHelp {
		return "help", nil
	} else if err != nil {
		return "", err
	}
	if flags.NArg() > 0 {
		return "", fmt.Errorf("unexpected argument: %s", flags.Arg(0))
	}
	return action, nil
}

func printUsage(w io.Writer, opts *Opts) {
	fmt.Fprintf(w, usage, opts.ProgramTitle, hemi.Version, opts.ProgramName, opts.DebugLevel, opts.Engine, opts.Address)
}

// serveUntil blocks until a signal arrives or the server stops by itself, then quits the stage.
func serveUntil(stage *hemi.Stage, signals <-chan os.Signal) error {
	select {
	case sig := <-signals:
		if hemi.DebugLevel() >= 1 {
			hemi.Printf("procman: got signal %s\n", sig)
		}
		stage.Quit()
		return nil
	case <-stage.Done():
		err := stage.Wait()
		stage.Quit()
		return err
	}
}
