// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Hellox greeting server.

package main

import (
	"github.com/hexinfra/hellox/hemi"
	"github.com/hexinfra/hellox/hemi/procman"

	_ "github.com/hexinfra/hellox/exts" // all extensions
)

func main() {
	procman.Main(&procman.Opts{
		ProgramName:  "hellox",
		ProgramTitle: "Hellox",
		DebugLevel:   0,
		Engine:       hemi.DefaultEngine,
		Address:      hemi.DefaultAddress,
	})
}
