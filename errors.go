// Copyright 2024 The Stalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stalloc

import "errors"

// ErrOOM is returned by Allocate, AllocateZeroed and Grow when no free
// run in the backing buffer can satisfy the request, after a full
// free-list traversal. It is never panicked: out-of-memory is an
// expected, recoverable outcome, not a programming error.
var ErrOOM = errors.New("stalloc: out of memory")

// ErrInvalidParams is returned by New/NewFromBuffer when the block
// count or block size don't satisfy the allocator's layout
// requirements: block size must be a power of two >= headerSize, and
// the block count must fall in [1, maxBlocks].
var ErrInvalidParams = errors.New("stalloc: invalid allocator parameters")
