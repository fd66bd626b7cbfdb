// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Common elements.

package common

import (
	"path/filepath"

	"github.com/hexinfra/hellox/hemi"
)

var (
	Program    string // hellox, ...
	DebugLevel int
	Engine     string
	Address    string
	NumGates   int
	LogFile    string
	LogRotate  string
)

// GetConfig builds the stage config from flags.
func GetConfig() (*hemi.Config, error) {
	config := hemi.NewConfig()
	config.Engine = Engine
	config.Address = Address
	config.NumGates = int32(NumGates)
	config.LogRotate = LogRotate
	if LogFile != "" {
		logFile, err := filepath.Abs(LogFile)
		if err != nil {
			return nil, err
		}
		config.LogTarget = filepath.ToSlash(logFile)
	}
	return config, config.Check()
}
