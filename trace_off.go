// Copyright 2024 The Stalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !staltrace

package stalloc

import "io"

// traceOut is never written to in this build; discard keeps tracef's
// signature uniform across both build-tag variants.
var traceOut io.Writer = io.Discard

func init() { trace = false }
