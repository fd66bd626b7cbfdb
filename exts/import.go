// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Import exts you need.

package exts

import ( // import contrib servers here.
	_ "github.com/hexinfra/hellox/hemi/contrib/servers/echosrv"
	_ "github.com/hexinfra/hellox/hemi/contrib/servers/fastsrv"
)
