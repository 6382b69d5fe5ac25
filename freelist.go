// Copyright 2024 The Stalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stalloc

// core is the free-list core (component B): a singly-linked,
// address-ordered list of free runs threaded through buf via the
// 4-byte headers described in header.go. It operates entirely in
// block indices; the façade in allocator.go converts to and from
// byte offsets and pointers.
//
// core is not safe for concurrent use; callers serialize access
// (see threadsafe.go).
type core struct {
	buf       []byte
	blockSize int
	numBlocks uint32

	// baseNext is the anchor node's next field, stored outside buf
	// since the anchor itself has no length to track. It points at
	// the first free run, or none if the allocator is fully used.
	baseNext uint32
}

func (c *core) off(block uint32) int { return int(block) * c.blockSize }

func (c *core) readAt(block uint32) (length, next uint32) { return readHeader(c.buf, c.off(block)) }

func (c *core) writeAt(block uint32, length, next uint32) { writeHeader(c.buf, c.off(block), length, next) }

// setNext rewrites the next field of whichever node is the logical
// predecessor in a list walk: the anchor itself, or a free run's own
// header (with its length left untouched).
func (c *core) setNext(prevIsBase bool, prevIdx uint32, next uint32) {
	if prevIsBase {
		c.baseNext = next
		return
	}
	length, _ := c.readAt(prevIdx)
	c.writeAt(prevIdx, length, next)
}

func alignUp(n, align uint32) uint32 {
	if align <= 1 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}

// allocateBlocks performs a first-fit search over the free list, with
// in-run alignment padding: a candidate run only needs to contain a
// correctly-aligned sub-range large enough for count blocks, not start
// aligned itself. align is given in blocks, already a power of two.
func (c *core) allocateBlocks(count, align uint32) (start uint32, ok bool) {
	if count == 0 {
		count = 1
	}
	prevIsBase := true
	var prevIdx uint32
	curr := c.baseNext
	for curr != none {
		length, next := c.readAt(curr)
		skip := alignUp(curr, align) - curr
		if skip+count <= length {
			tail := length - skip - count
			switch {
			case skip == 0 && tail == 0:
				c.setNext(prevIsBase, prevIdx, next)
			case skip == 0 && tail > 0:
				c.writeAt(curr+count, tail, next)
				c.setNext(prevIsBase, prevIdx, curr+count)
			case skip > 0 && tail == 0:
				c.writeAt(curr, skip, next)
			default:
				c.writeAt(curr, skip, curr+skip+count)
				c.writeAt(curr+skip+count, tail, next)
			}
			return curr + skip, true
		}
		prevIsBase = false
		prevIdx = curr
		curr = next
	}
	return 0, false
}

// deallocateBlocks inserts a newly-freed run back into the free list in
// address order, coalescing with the immediate predecessor and/or
// successor run when either is adjacent.
func (c *core) deallocateBlocks(i, count uint32) {
	prevIsBase := true
	var prevIdx uint32
	curr := c.baseNext
	for curr != none && curr < i {
		prevIsBase = false
		prevIdx = curr
		_, next := c.readAt(curr)
		curr = next
	}
	next := curr

	mergeLeft := false
	var prevLength uint32
	if !prevIsBase {
		prevLength, _ = c.readAt(prevIdx)
		mergeLeft = prevIdx+prevLength == i
	}

	mergeRight := next != none && i+count == next
	var nextLength, nextNext uint32
	if mergeRight {
		nextLength, nextNext = c.readAt(next)
	}

	switch {
	case !mergeLeft && !mergeRight:
		c.writeAt(i, count, next)
		c.setNext(prevIsBase, prevIdx, i)
	case mergeLeft && !mergeRight:
		c.writeAt(prevIdx, prevLength+count, next)
	case !mergeLeft && mergeRight:
		c.writeAt(i, count+nextLength, nextNext)
		c.setNext(prevIsBase, prevIdx, i)
	default: // mergeLeft && mergeRight
		c.writeAt(prevIdx, prevLength+count+nextLength, nextNext)
	}
}

// shrinkInPlace releases the tail end of an allocation, from the new
// end through the old one, back to the free list. It is exactly
// deallocateBlocks on that tail: the region being shrunk is still USED
// up to the new boundary, so the freed tail can only ever coalesce
// with a free run to its right, never its left.
func (c *core) shrinkInPlace(i, oldCount, newCount uint32) {
	c.deallocateBlocks(i+newCount, oldCount-newCount)
}

// growInPlace extends an allocation without moving it. It succeeds
// only when the range immediately following the allocation is covered
// by the start of a single free run large enough to absorb the delta.
func (c *core) growInPlace(i, oldCount, newCount uint32) bool {
	delta := newCount - oldCount
	target := i + oldCount

	prevIsBase := true
	var prevIdx uint32
	curr := c.baseNext
	for curr != none && curr <= target {
		if curr == target {
			length, next := c.readAt(curr)
			if length < delta {
				return false
			}
			tail := length - delta
			if tail == 0 {
				c.setNext(prevIsBase, prevIdx, next)
			} else {
				c.writeAt(target+delta, tail, next)
				c.setNext(prevIsBase, prevIdx, target+delta)
			}
			return true
		}
		prevIsBase = false
		prevIdx = curr
		_, next := c.readAt(curr)
		curr = next
	}
	return false
}

func (c *core) isEmpty() bool {
	if c.baseNext != 0 {
		return false
	}
	length, _ := c.readAt(0)
	return length == c.numBlocks
}

func (c *core) isOOM() bool { return c.baseNext == none }

// runInfo describes one run (free or used) in address order, as
// produced by debugState.
type runInfo struct {
	Start  uint32
	Length uint32
	Free   bool
}

// debugState walks the free list and fills the gaps between free runs
// with synthesized USED runs, yielding the full run sequence in
// address order. It is a snapshot, not an iterator over live state.
func (c *core) debugState() []runInfo {
	var out []runInfo
	pos := uint32(0)
	curr := c.baseNext
	for curr != none {
		if curr > pos {
			out = append(out, runInfo{pos, curr - pos, false})
		}
		length, next := c.readAt(curr)
		out = append(out, runInfo{curr, length, true})
		pos = curr + length
		curr = next
	}
	if pos < c.numBlocks {
		out = append(out, runInfo{pos, c.numBlocks - pos, false})
	}
	return out
}
