// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegLen(t *testing.T) {
	assert.Equal(t, 1, segLen(0, 16))
	assert.Equal(t, 1, segLen(1, 16))
	assert.Equal(t, 1, segLen(16, 16))
	assert.Equal(t, 2, segLen(17, 16))
	assert.Equal(t, 2, segLen(32, 16))
	assert.Equal(t, 3, segLen(33, 16))
}

func TestAddSubSat8(t *testing.T) {
	a := vec8{250, 10, 0}
	b := vec8{10, 5, 0}
	dst := newVec8(3)
	addSat8(dst, a, b)
	assert.Equal(t, vec8{255, 15, 0}, dst)

	subSat8(dst, a, b)
	assert.Equal(t, vec8{240, 5, 0}, dst)

	subSat8(dst, b, a)
	assert.Equal(t, vec8{0, 0, 0}, dst)
}

func TestMax8AndHmax8(t *testing.T) {
	a := vec8{1, 9, 3}
	b := vec8{5, 2, 3}
	dst := newVec8(3)
	max8(dst, a, b)
	assert.Equal(t, vec8{5, 9, 3}, dst)
	assert.Equal(t, uint8(9), hmax8(dst))
}

func TestShiftLeftOne8(t *testing.T) {
	v := vec8{1, 2, 3, 4}
	shifted := shiftLeftOne8(v, 99)
	assert.Equal(t, vec8{99, 1, 2, 3}, shifted)
}

func TestAddSubSat16(t *testing.T) {
	a := vec16{32760, -32760, 0}
	b := vec16{10, -10, 5}
	dst := newVec16(3)
	addSat16(dst, a, b)
	assert.Equal(t, int16(32767), dst[0])
	assert.Equal(t, int16(-32768), dst[1])
	assert.Equal(t, int16(5), dst[2])

	subSat16(dst, a, b)
	assert.Equal(t, int16(32750), dst[0])
	assert.Equal(t, int16(-5), dst[2])
}

func TestAnyExceeds8(t *testing.T) {
	f := vec8{5, 0, 10}
	threshold := vec8{4, 1, 10}
	assert.True(t, anyExceeds8(f, threshold))
	assert.False(t, anyExceeds8(vec8{1, 1}, vec8{2, 2}))
}
