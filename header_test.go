// Copyright 2024 The Stalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stalloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	cases := []struct {
		length, next uint32
	}{
		{1, none},
		{1, 0},
		{65536, none},
		{8, 7},
		{256, 65534},
	}
	buf := make([]byte, headerSize)
	for _, c := range cases {
		writeHeader(buf, 0, c.length, c.next)
		length, next := readHeader(buf, 0)
		require.Equal(t, c.length, length)
		require.Equal(t, c.next, next)
	}
}

func TestHeaderZeroMeansOneBlock(t *testing.T) {
	buf := make([]byte, headerSize)
	// Raw zero bytes (as in a freshly zeroed buffer) must decode to a
	// one-block run with next == 0, since length is stored as raw+1.
	length, next := readHeader(buf, 0)
	require.Equal(t, uint32(1), length)
	require.Equal(t, uint32(0), next)
}

func TestHeaderNoneSentinel(t *testing.T) {
	buf := make([]byte, headerSize)
	writeHeader(buf, 0, 1, none)
	_, next := readHeader(buf, 0)
	require.Equal(t, uint32(none), next)
}
