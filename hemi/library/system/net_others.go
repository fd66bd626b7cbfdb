// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

//go:build !linux && !darwin && !freebsd && !windows

// Net for other platforms.

package system

import (
	"errors"
	"syscall"
)

func SetReusePort(rawConn syscall.RawConn) error {
	return errors.New("reuseport is not supported on this platform")
}
