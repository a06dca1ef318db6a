// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunByteKernelFindsBestLocalSubstring(t *testing.T) {
	matrix := simpleMatrix()
	query := EncodeResidues([]byte("AC"), simpleAlphabet)
	db := EncodeResidues([]byte("CCAC"), simpleAlphabet)

	profile := BuildByteProfile(query, len(query), &matrix, nil, 1, 0, len(query), Vec128)
	ws := newWorkspace(64, Vec128)

	res := runByteKernel(Forward, db, len(query), 3, 1, 1, &profile, -1, 0, ws)
	assert.False(t, res.Saturated)
	assert.Equal(t, 4, res.Best.Score)
	assert.Equal(t, 3, res.Best.Ref) // "AC" ends at db index 3
	assert.Equal(t, 1, res.Best.Read)
}

func TestRunByteKernelSaturates(t *testing.T) {
	const n = 3
	data := make([]int8, n*n)
	for a := 0; a < n; a++ {
		data[a*n+a] = 100
	}
	matrix := NewSubstitutionMatrix(data, n)
	long := make([]byte, 40)
	for i := range long {
		long[i] = 0
	}
	profile := BuildByteProfile(long, len(long), &matrix, nil, 100, 0, len(long), Vec128)
	ws := newWorkspace(64, Vec128)

	res := runByteKernel(Forward, long, len(long), 3, 1, 100, &profile, -1, 0, ws)
	assert.True(t, res.Saturated)
}

func TestRunByteKernelSecondBest(t *testing.T) {
	matrix := simpleMatrix()
	query := EncodeResidues([]byte("AAAA"), simpleAlphabet)
	// Two well-separated "AAAA" runs in an otherwise mismatching database.
	db := EncodeResidues([]byte("AAAACCCCCCCCCCCCCCCCCCCCAAAA"), simpleAlphabet)

	profile := BuildByteProfile(query, len(query), &matrix, nil, 1, 0, len(query), Vec128)
	ws := newWorkspace(64, Vec128)

	res := runByteKernel(Forward, db, len(query), 3, 1, 1, &profile, -1, 16, ws)
	assert.Equal(t, 8, res.Best.Score)
	assert.Equal(t, 8, res.Second.Score)
	assert.Equal(t, 3, res.Best.Ref)
	assert.Equal(t, 27, res.Second.Ref)
}
