// Copyright 2024 The Stalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stalloc

import (
	"runtime"
	"sync/atomic"
	"unsafe"
)

// SyncAllocator wraps one Allocator in a test-and-set spinlock so it
// can be shared across goroutines. It does not use a blocking
// primitive: the only suspension is the spin-wait itself during lock
// acquisition, which keeps the wrapper usable in settings with no
// goroutine scheduler to park against.
//
// Poisoning is not implemented: if a wrapped operation panics
// mid-mutation, the lock is released (via defer) but the allocator's
// internal state may be inconsistent; recovery from that state is
// undefined.
type SyncAllocator struct {
	locked uint32
	a      *Allocator
}

// NewSync wraps a into a SyncAllocator. a must not be used directly
// (unwrapped) afterwards.
func NewSync(a *Allocator) *SyncAllocator {
	return &SyncAllocator{a: a}
}

func (s *SyncAllocator) lock() {
	for !atomic.CompareAndSwapUint32(&s.locked, 0, 1) {
		runtime.Gosched()
	}
}

func (s *SyncAllocator) unlock() {
	atomic.StoreUint32(&s.locked, 0)
}

func (s *SyncAllocator) Allocate(size, align int) (p unsafe.Pointer, err error) {
	s.lock()
	defer s.unlock()
	return s.a.Allocate(size, align)
}

func (s *SyncAllocator) AllocateZeroed(size, align int) (p unsafe.Pointer, err error) {
	s.lock()
	defer s.unlock()
	return s.a.AllocateZeroed(size, align)
}

func (s *SyncAllocator) Deallocate(ptr unsafe.Pointer, size, align int) {
	s.lock()
	defer s.unlock()
	s.a.Deallocate(ptr, size, align)
}

func (s *SyncAllocator) Shrink(ptr unsafe.Pointer, oldSize, newSize, align int) unsafe.Pointer {
	s.lock()
	defer s.unlock()
	return s.a.Shrink(ptr, oldSize, newSize, align)
}

func (s *SyncAllocator) Grow(ptr unsafe.Pointer, oldSize, newSize, align int) (unsafe.Pointer, error) {
	s.lock()
	defer s.unlock()
	return s.a.Grow(ptr, oldSize, newSize, align)
}

func (s *SyncAllocator) IsEmpty() bool {
	s.lock()
	defer s.unlock()
	return s.a.IsEmpty()
}

func (s *SyncAllocator) IsOOM() bool {
	s.lock()
	defer s.unlock()
	return s.a.IsOOM()
}

func (s *SyncAllocator) Stats() Stats {
	s.lock()
	defer s.unlock()
	return s.a.Stats()
}

func (s *SyncAllocator) String() string {
	s.lock()
	defer s.unlock()
	return s.a.String()
}
