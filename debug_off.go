// Copyright 2024 The Stalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !staldebug

package stalloc

// debugChecks gates precondition assertions that are too expensive to
// pay for in release builds (spec: PreconditionViolation is undefined
// behavior, not a checked error). Build with -tags staldebug to enable
// them during development and testing.
const debugChecks = false

func assertf(cond bool, format string, args ...interface{}) {}
