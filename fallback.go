// Copyright 2024 The Stalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stalloc

import "unsafe"

// Provider is the allocator-capability interface component E routes
// between. *Allocator, *SyncAllocator and *System all implement it,
// so chains can nest to arbitrary depth (a Chain is itself a Provider).
type Provider interface {
	Allocate(size, align int) (unsafe.Pointer, error)
	AllocateZeroed(size, align int) (unsafe.Pointer, error)
	Deallocate(ptr unsafe.Pointer, size, align int)
	Shrink(ptr unsafe.Pointer, oldSize, newSize, align int) unsafe.Pointer
	Grow(ptr unsafe.Pointer, oldSize, newSize, align int) (unsafe.Pointer, error)

	// Owns is the pointer-range test: does ptr fall within a buffer
	// this provider itself manages? It is what lets Deallocate/
	// Shrink/Grow route to the right side of a Chain without any
	// per-allocation tagging.
	Owns(ptr unsafe.Pointer) bool
}

// Owns reports whether ptr falls within a's backing buffer.
func (a *Allocator) Owns(ptr unsafe.Pointer) bool {
	_, ok := a.blockOf(ptr)
	return ok
}

// Owns reports whether ptr falls within the wrapped Allocator's buffer.
func (s *SyncAllocator) Owns(ptr unsafe.Pointer) bool {
	s.lock()
	defer s.unlock()
	return s.a.Owns(ptr)
}

// Chain composes two Providers (component E): try primary, fall back
// to secondary on OutOfMemory. Every non-allocate operation routes by
// the pointer-range test rather than per-allocation tagging, so the
// secondary may be an unbounded OS-backed allocator (System) while the
// composite still prefers to avoid touching it.
type Chain struct {
	primary   Provider
	secondary Provider
}

// NewChain builds a fallback chain: primary is tried first, secondary
// serves requests primary cannot (OOM). Nest Chains to build deeper
// fallback sequences — a Chain is itself a Provider.
func NewChain(primary, secondary Provider) *Chain {
	return &Chain{primary: primary, secondary: secondary}
}

func (c *Chain) Allocate(size, align int) (unsafe.Pointer, error) {
	p, err := c.primary.Allocate(size, align)
	if err != ErrOOM {
		return p, err
	}
	return c.secondary.Allocate(size, align)
}

func (c *Chain) AllocateZeroed(size, align int) (unsafe.Pointer, error) {
	p, err := c.primary.AllocateZeroed(size, align)
	if err != ErrOOM {
		return p, err
	}
	return c.secondary.AllocateZeroed(size, align)
}

func (c *Chain) route(ptr unsafe.Pointer) Provider {
	if c.primary.Owns(ptr) {
		return c.primary
	}
	return c.secondary
}

func (c *Chain) Deallocate(ptr unsafe.Pointer, size, align int) {
	c.route(ptr).Deallocate(ptr, size, align)
}

func (c *Chain) Shrink(ptr unsafe.Pointer, oldSize, newSize, align int) unsafe.Pointer {
	return c.route(ptr).Shrink(ptr, oldSize, newSize, align)
}

func (c *Chain) Grow(ptr unsafe.Pointer, oldSize, newSize, align int) (unsafe.Pointer, error) {
	return c.route(ptr).Grow(ptr, oldSize, newSize, align)
}

// Owns lets a Chain itself serve as the primary or secondary of an
// outer Chain.
func (c *Chain) Owns(ptr unsafe.Pointer) bool {
	return c.primary.Owns(ptr) || c.secondary.Owns(ptr)
}
