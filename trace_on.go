// Copyright 2024 The Stalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build staltrace

package stalloc

import (
	"io"
	"os"
)

var traceOut io.Writer = os.Stderr

func init() { trace = true }
