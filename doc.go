// Copyright 2024 The Stalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stalloc implements a fixed-capacity, general-purpose memory
// allocator whose entire backing store lives inside a single buffer of
// known size, fixed at construction time.
//
// Unlike a page-slab allocator that grows by asking the OS for more
// memory, an Allocator never resizes its backing store: it is given
// L blocks of B bytes each up front (L*B bytes total, typically an
// embedded array or a stack buffer) and serves every Allocate out of
// that fixed region via a singly-linked, address-ordered free list
// threaded through the buffer itself. That makes it usable in
// freestanding environments with no OS and no heap to fall back on.
//
// The zero value of Allocator is not ready for use; construct one with
// New or NewFromBuffer.
//
// Concurrent use requires wrapping an Allocator in a SyncAllocator
// (see threadsafe.go); the core type is not safe for concurrent access
// on its own.
package stalloc

import "fmt"

// trace, when true, makes every public operation log a one-line
// summary to os.Stderr. It costs nothing when false and is normally
// toggled only by the staltrace build tag (see trace_on.go/trace_off.go).
var trace = false

func tracef(format string, args ...interface{}) {
	if !trace {
		return
	}
	fmt.Fprintf(traceOut, format, args...)
}
