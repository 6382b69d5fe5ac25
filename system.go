// Copyright 2024 The Stalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stalloc

import (
	"os"
	"sync"
	"unsafe"
)

var (
	osPageSize = os.Getpagesize()
	osPageMask = osPageSize - 1
)

func roundupPage(n int) int { return (n + osPageMask) &^ osPageMask }

// mmap rounds size up to a whole number of OS pages and hands off to
// the platform-specific mmap0 in mmap_unix.go / mmap_windows.go.
func mmap(size int) ([]byte, error) { return mmap0(roundupPage(size)) }

// System is the OS-backed Provider (component E's usual secondary):
// it has no fixed capacity and genuinely asks the OS for memory via
// anonymous mmap, adapted directly from the teacher package's own
// newPage path. Unlike Allocator, it keeps no free list of its own —
// every allocation is its own whole-page mmap region, and Deallocate
// unmaps it outright. That is deliberately simple: System exists so a
// Chain has somewhere to go when Allocator is OOM, not to be a
// production-grade allocator in its own right.
type System struct {
	mu      sync.Mutex
	regions map[uintptr]int // base address -> mapped size in bytes
}

// NewSystem constructs an OS-backed Provider.
func NewSystem() *System {
	return &System{regions: map[uintptr]int{}}
}

func (s *System) Allocate(size, align int) (unsafe.Pointer, error) {
	if size <= 0 {
		size = 1
	}
	if align > osPageSize {
		return nil, ErrInvalidParams
	}
	n := roundupPage(size)
	b, err := mmap(n)
	if err != nil {
		return nil, ErrOOM
	}
	p := unsafe.Pointer(&b[0])
	s.mu.Lock()
	s.regions[uintptr(p)] = n
	s.mu.Unlock()
	return p, nil
}

func (s *System) AllocateZeroed(size, align int) (unsafe.Pointer, error) {
	// Anonymous mmap pages already come back zeroed, but Allocate's
	// contract doesn't promise that, so zero explicitly to match
	// Allocator.AllocateZeroed's behavior exactly.
	p, err := s.Allocate(size, align)
	if err != nil {
		return nil, err
	}
	b := unsafe.Slice((*byte)(p), size)
	for i := range b {
		b[i] = 0
	}
	return p, nil
}

func (s *System) Deallocate(ptr unsafe.Pointer, size, align int) {
	s.mu.Lock()
	n, ok := s.regions[uintptr(ptr)]
	if ok {
		delete(s.regions, uintptr(ptr))
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	_ = unmap(ptr, n)
}

// Shrink is a no-op for System: an anonymous mapping is already page
// quantized, and partially unmapping it to reclaim a few bytes isn't
// worth the extra syscall for a fallback path that is meant to be
// rarely exercised.
func (s *System) Shrink(ptr unsafe.Pointer, oldSize, newSize, align int) unsafe.Pointer {
	return ptr
}

// Grow succeeds in place only while the request still fits the
// existing mapped page count; otherwise it fails rather than reaching
// for a non-portable mremap, even on the OS-backed side of a Chain.
func (s *System) Grow(ptr unsafe.Pointer, oldSize, newSize, align int) (unsafe.Pointer, error) {
	s.mu.Lock()
	n, ok := s.regions[uintptr(ptr)]
	s.mu.Unlock()
	if ok && newSize <= n {
		return ptr, nil
	}
	return nil, ErrOOM
}

func (s *System) Owns(ptr unsafe.Pointer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.regions[uintptr(ptr)]
	return ok
}
