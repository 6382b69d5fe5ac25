// Copyright 2024 The Stalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stalloc

import (
	"fmt"
	"unsafe"

	"github.com/cznic/mathutil"
)

// Allocator is the façade (component C): it owns the backing buffer
// and the free-list anchor, and exposes byte-sized public operations
// that quantize into the block-sized operations of the free-list core.
//
// The zero value is not ready for use; construct one with New or
// NewFromBuffer.
type Allocator struct {
	buf       []byte
	blockSize int
	c         core

	allocs uint64
	frees  uint64
	live   uint64
}

// New constructs an Allocator that owns its own numBlocks*blockSize
// byte backing buffer. blockSize must be a power of two, at least
// headerSize (4) bytes. numBlocks must be in [1, 65535]; the upper
// bound is one less than spec's 65536 so that the NONE sentinel
// (0xFFFF) never aliases a real block index (see DESIGN.md).
func New(numBlocks, blockSize int) (*Allocator, error) {
	if !validParams(numBlocks, blockSize) {
		return nil, ErrInvalidParams
	}
	buf := make([]byte, numBlocks*blockSize)
	return newAllocator(buf, blockSize, numBlocks), nil
}

// NewFromBuffer constructs an Allocator over a caller-provided buffer,
// e.g. one embedded in a global or held on the stack instead of
// allocated from the Go heap. len(buf) must be an exact multiple of
// blockSize, yielding numBlocks in [1, 65535].
func NewFromBuffer(buf []byte, blockSize int) (*Allocator, error) {
	if blockSize <= 0 || len(buf)%blockSize != 0 {
		return nil, ErrInvalidParams
	}
	numBlocks := len(buf) / blockSize
	if !validParams(numBlocks, blockSize) {
		return nil, ErrInvalidParams
	}
	return newAllocator(buf, blockSize, numBlocks), nil
}

func validParams(numBlocks, blockSize int) bool {
	if numBlocks < 1 || numBlocks > int(maxBlocks) {
		return false
	}
	if blockSize < headerSize {
		return false
	}
	return blockSize&(blockSize-1) == 0 // power of two
}

func newAllocator(buf []byte, blockSize, numBlocks int) *Allocator {
	a := &Allocator{
		buf:       buf,
		blockSize: blockSize,
		c: core{
			buf:       buf,
			blockSize: blockSize,
			numBlocks: uint32(numBlocks),
			baseNext:  0,
		},
	}
	writeHeader(a.buf, 0, uint32(numBlocks), none)
	tracef("stalloc: New(%d, %d)\n", numBlocks, blockSize)
	return a
}

func (a *Allocator) blockCount(size int) uint32 {
	assertf(size >= 0, "blockCount: negative size %d", size)
	if size <= 0 {
		return 1
	}
	return uint32((size + a.blockSize - 1) / a.blockSize)
}

// alignLog2 turns a byte alignment into the block-granularity log2
// allocateBlocks expects, using mathutil.BitLen the same way the
// teacher package derives its own slot-size logs.
func (a *Allocator) alignLog2(alignBytes int) (uint32, error) {
	if alignBytes <= a.blockSize {
		return 0, nil
	}
	if alignBytes&(alignBytes-1) != 0 {
		return 0, ErrInvalidParams
	}
	byteLog2 := uint32(mathutil.BitLen(alignBytes) - 1)
	blockLog2 := uint32(mathutil.BitLen(a.blockSize) - 1)
	if byteLog2 < blockLog2 {
		return 0, nil
	}
	return byteLog2 - blockLog2, nil
}

func (a *Allocator) ptrOf(block uint32) unsafe.Pointer {
	return unsafe.Pointer(&a.buf[int(block)*a.blockSize])
}

func (a *Allocator) blockOf(ptr unsafe.Pointer) (uint32, bool) {
	base := uintptr(unsafe.Pointer(&a.buf[0]))
	p := uintptr(ptr)
	if p < base || p >= base+uintptr(len(a.buf)) {
		return 0, false
	}
	delta := p - base
	if delta%uintptr(a.blockSize) != 0 {
		return 0, false
	}
	return uint32(delta / uintptr(a.blockSize)), true
}

// Allocate quantizes (size, align) into blocks and an alignment log2
// and serves it from the free-list core. It returns ErrOOM, never a
// panic, when no run can satisfy the request. A size of zero is
// defined to behave as a one-block allocation.
func (a *Allocator) Allocate(size, align int) (unsafe.Pointer, error) {
	log2, err := a.alignLog2(align)
	if err != nil {
		return nil, err
	}
	count := a.blockCount(size)
	start, ok := a.c.allocateBlocks(count, uint32(1)<<log2)
	if !ok {
		tracef("stalloc: Allocate(%#x, %#x) OOM\n", size, align)
		return nil, ErrOOM
	}
	a.allocs++
	a.live++
	p := a.ptrOf(start)
	tracef("stalloc: Allocate(%#x, %#x) = %p\n", size, align, p)
	return p, nil
}

// AllocateZeroed is Allocate followed by zeroing, matching the
// teacher's Calloc = Malloc + zero-fill shape.
func (a *Allocator) AllocateZeroed(size, align int) (unsafe.Pointer, error) {
	p, err := a.Allocate(size, align)
	if err != nil {
		return nil, err
	}
	n := int(a.blockCount(size)) * a.blockSize
	b := unsafe.Slice((*byte)(p), n)
	for i := range b {
		b[i] = 0
	}
	return p, nil
}

// Deallocate returns the blocks covering [ptr, ptr+size) to the
// free-list. ptr must have been returned by a prior Allocate(size, _)
// or AllocateZeroed(size, _) call on this Allocator and not yet freed;
// violating that precondition is undefined behavior, not a checked
// error, except under the staldebug build tag.
func (a *Allocator) Deallocate(ptr unsafe.Pointer, size, align int) {
	block, ok := a.blockOf(ptr)
	assertf(ok, "Deallocate: pointer %p not owned by this allocator", ptr)
	if !ok {
		return
	}
	count := a.blockCount(size)
	a.c.deallocateBlocks(block, count)
	a.frees++
	a.live--
	tracef("stalloc: Deallocate(%p, %#x)\n", ptr, size)
}

// Shrink shrinks an allocation in place. newSize must be < oldSize.
// It always succeeds and returns the same pointer: releasing a tail
// of blocks back to the free list can never fail.
func (a *Allocator) Shrink(ptr unsafe.Pointer, oldSize, newSize, align int) unsafe.Pointer {
	block, ok := a.blockOf(ptr)
	assertf(ok, "Shrink: pointer %p not owned by this allocator", ptr)
	oldCount := a.blockCount(oldSize)
	newCount := a.blockCount(newSize)
	if newCount < oldCount && ok {
		a.c.shrinkInPlace(block, oldCount, newCount)
	}
	tracef("stalloc: Shrink(%p, %#x, %#x)\n", ptr, oldSize, newSize)
	return ptr
}

// Grow attempts to grow an allocation in place. newSize must be >
// oldSize. On success it returns the same pointer; on failure it
// returns (nil, ErrOOM) and the caller must fall back to
// allocate-copy-free — state is left unmutated on failure.
func (a *Allocator) Grow(ptr unsafe.Pointer, oldSize, newSize, align int) (unsafe.Pointer, error) {
	block, ok := a.blockOf(ptr)
	assertf(ok, "Grow: pointer %p not owned by this allocator", ptr)
	if !ok {
		return nil, ErrOOM
	}
	oldCount := a.blockCount(oldSize)
	newCount := a.blockCount(newSize)
	if newCount <= oldCount {
		return ptr, nil
	}
	if !a.c.growInPlace(block, oldCount, newCount) {
		tracef("stalloc: Grow(%p, %#x, %#x) failed\n", ptr, oldSize, newSize)
		return nil, ErrOOM
	}
	tracef("stalloc: Grow(%p, %#x, %#x) = %p\n", ptr, oldSize, newSize, ptr)
	return ptr, nil
}

// UsableSize reports the block-quantized capacity of an allocation of
// size bytes — how much room Grow has before it must move data — the
// same role the teacher's UsableSize/UnsafeUsableSize pair serves.
func (a *Allocator) UsableSize(size int) int {
	return int(a.blockCount(size)) * a.blockSize
}

// IsEmpty reports whether every block is free.
func (a *Allocator) IsEmpty() bool { return a.c.isEmpty() }

// IsOOM reports whether the free list is empty.
func (a *Allocator) IsOOM() bool { return a.c.isOOM() }

// Stats are the allocator's running bookkeeping counters, modeled on
// the teacher's own allocs/mmaps fields and on
// fmstephe/location-system's pointerstore.Stats.
type Stats struct {
	Allocs uint64
	Frees  uint64
	Live   uint64
}

// Stats reports current bookkeeping counters.
func (a *Allocator) Stats() Stats {
	return Stats{Allocs: a.allocs, Frees: a.frees, Live: a.live}
}

// DebugState returns the full run sequence (free and used) in address
// order, in blocks. It is a snapshot, not a live view.
func (a *Allocator) DebugState() []runInfo { return a.c.debugState() }

// String renders the run sequence in address order, e.g.
// "[ free×3 | used×8 | free×1 ]".
func (a *Allocator) String() string {
	runs := a.c.debugState()
	parts := make([]string, len(runs))
	for i, r := range runs {
		kind := "used"
		if r.Free {
			kind = "free"
		}
		parts[i] = fmt.Sprintf("%s×%d", kind, r.Length)
	}
	out := "[ "
	for i, p := range parts {
		if i > 0 {
			out += " | "
		}
		out += p
	}
	return out + " ]"
}
