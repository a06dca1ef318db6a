// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, int8(1), roundHalfAwayFromZero(0.5))
	assert.Equal(t, int8(-1), roundHalfAwayFromZero(-0.5))
	assert.Equal(t, int8(2), roundHalfAwayFromZero(1.6))
	assert.Equal(t, int8(0), roundHalfAwayFromZero(0.0))
	assert.Equal(t, int8(127), roundHalfAwayFromZero(1000))
	assert.Equal(t, int8(-128), roundHalfAwayFromZero(-1000))
}

func TestClampBiasMax(t *testing.T) {
	assert.Equal(t, int8(0), clampBiasMax([]int8{1, 2, 3}))
	assert.Equal(t, int8(-4), clampBiasMax([]int8{1, -4, -2}))
	assert.Equal(t, int8(0), clampBiasMax(nil))
}

func TestLocalCompositionBiasNeverPositive(t *testing.T) {
	query := EncodeResidues([]byte("AAAAAKKKKKWWWWW"), Blosum62Alphabet)
	matrix := NewSubstitutionMatrix(Blosum62, len(Blosum62Alphabet))
	bias := localCompositionBias(query, &matrix)
	assert.Len(t, bias, len(query))
	for _, v := range bias {
		assert.LessOrEqual(t, v, int8(0))
	}
}

func TestLocalCompositionBiasProfileModeIsZero(t *testing.T) {
	matrix := NewProfileMatrix(make([]int8, 21*5), 21, 5)
	query := make([]byte, 5)
	bias := localCompositionBias(query, &matrix)
	for _, v := range bias {
		assert.Equal(t, int8(0), v)
	}
}

func TestReverseHelpers(t *testing.T) {
	assert.Equal(t, []int8{3, 2, 1}, reverseInt8([]int8{1, 2, 3}))
	assert.Equal(t, []byte("cba"), reverseBytes([]byte("abc")))
}
