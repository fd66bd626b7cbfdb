// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Platform-specific socket options used by gates.

package system

import (
	"syscall"
)

// ListenControl returns a net.ListenConfig.Control that sets SO_REUSEPORT when reusePort is true.
func ListenControl(reusePort bool) func(network string, address string, rawConn syscall.RawConn) error {
	if !reusePort {
		return nil
	}
	return func(network string, address string, rawConn syscall.RawConn) error {
		return SetReusePort(rawConn)
	}
}
