// Copyright 2024 The Stalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build staldebug

package stalloc

import "fmt"

const debugChecks = true

func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("stalloc: assertion failed: "+format, args...))
	}
}
