// Copyright 2024 The Stalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stalloc

import "encoding/binary"

// headerSize is the fixed footprint of a free-run header: 16 bits of
// length, 16 bits of next. It lives in the first block of every FREE
// run; USED runs carry none.
const headerSize = 4

// none is the free-list terminator. A next field holding none means
// "no further free run"; it must never be dereferenced as a block
// index.
const none = 0xFFFF

// maxBlocks is the largest block count a 16-bit next field can index.
// It equals none: the highest block index, maxBlocks-1, is then one
// less than none, so every valid index compares strictly less than none.
const maxBlocks = 0xFFFF

// readHeader unpacks the 4-byte header stored at buf[off:off+4] into
// (length, next). length is decoded as raw+1 so that a stored zero
// means a one-block run; next is none (0xFFFF) for end-of-list.
func readHeader(buf []byte, off int) (length, next uint32) {
	raw := binary.LittleEndian.Uint32(buf[off : off+4])
	length = raw&0xFFFF + 1
	next = raw >> 16
	return length, next
}

// writeHeader packs (length, next) into the 4 bytes at buf[off:off+4].
// length must be in [1, 65536]; next must be none or in [0, maxBlocks).
func writeHeader(buf []byte, off int, length, next uint32) {
	raw := (length - 1) & 0xFFFF
	raw |= next << 16
	binary.LittleEndian.PutUint32(buf[off:off+4], raw)
}
