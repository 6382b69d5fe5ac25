// Copyright 2024 The Stalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stalloc

import "unsafe"

// Arena attaches a Provider to container types that want to allocate
// their backing storage from it instead of the Go heap. It is pure
// translation: many containers may hold the same *Arena by reference,
// sharing one Provider without any of them taking ownership of it.
type Arena struct {
	p Provider
}

// NewArena wraps p for attachment to one or more containers.
func NewArena(p Provider) *Arena { return &Arena{p: p} }

// AllocT reserves space for one T out of a's Provider and returns a
// pointer to it, uninitialized. Free the result with FreeT.
func AllocT[T any](a *Arena) (*T, error) {
	var zero T
	p, err := a.p.Allocate(int(unsafe.Sizeof(zero)), int(unsafe.Alignof(zero)))
	if err != nil {
		return nil, err
	}
	return (*T)(p), nil
}

// FreeT returns the storage behind v to a's Provider. v must have
// been returned by AllocT[T] on the same Arena.
func FreeT[T any](a *Arena, v *T) {
	var zero T
	a.p.Deallocate(unsafe.Pointer(v), int(unsafe.Sizeof(zero)), int(unsafe.Alignof(zero)))
}

// Pool adapts a Provider to the fixed-size Get/Put shape a pooling
// container (c.f. sync.Pool) expects when it wants its slots served
// from a custom backing allocator instead of the Go heap.
type Pool struct {
	p     Provider
	size  int
	align int
}

// NewPool builds a Pool whose every slot is size bytes, aligned to
// align (0 means naturally aligned to the Provider's block size).
func NewPool(p Provider, size, align int) *Pool {
	return &Pool{p: p, size: size, align: align}
}

// Get reserves one slot.
func (pl *Pool) Get() (unsafe.Pointer, error) { return pl.p.Allocate(pl.size, pl.align) }

// Put returns a slot obtained from Get.
func (pl *Pool) Put(ptr unsafe.Pointer) { pl.p.Deallocate(ptr, pl.size, pl.align) }
