// Copyright 2024 The Stalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stalloc

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestSyncAllocatorLinearizesConcurrentUse(t *testing.T) {
	a, err := New(4096, 8)
	require.NoError(t, err)
	s := NewSync(a)

	const goroutines = 16
	const perGoroutine = 32

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				p, err := s.Allocate(8, 1)
				if err != nil {
					continue
				}
				s.Deallocate(p, 8, 1)
			}
		}()
	}
	wg.Wait()

	require.True(t, s.IsEmpty())
}

func TestSyncAllocatorOwnsDelegatesToWrapped(t *testing.T) {
	a, err := New(8, 4)
	require.NoError(t, err)
	s := NewSync(a)

	p, err := s.Allocate(4, 1)
	require.NoError(t, err)
	require.True(t, s.Owns(p))

	var x int
	require.False(t, s.Owns(unsafe.Pointer(&x)))
}
