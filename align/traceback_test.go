// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackUnpackCIGAR(t *testing.T) {
	v := PackCIGAR(12, CIGARInsertion)
	length, op := UnpackCIGAR(v)
	assert.Equal(t, 12, length)
	assert.Equal(t, CIGARInsertion, op)
}

func TestTracebackAllMatches(t *testing.T) {
	matrix := simpleMatrix()
	query := EncodeResidues([]byte("ACAC"), simpleAlphabet)
	db := EncodeResidues([]byte("ACAC"), simpleAlphabet)
	linear := BuildLinearProfile(query, &matrix, nil, 3)
	ws := newWorkspace(64, Vec128)

	cigar := traceback(query, db, 0, 3, 0, 3, linear, 3, 1, ws)
	require := assert.New(t)
	require.Len(cigar, 1)
	length, op := UnpackCIGAR(cigar[0])
	require.Equal(4, length)
	require.Equal(CIGAREqual, op)
}

func TestTracebackWithInsertion(t *testing.T) {
	matrix := simpleMatrix()
	query := EncodeResidues([]byte("AAAAACAAAAA"), simpleAlphabet)
	db := EncodeResidues([]byte("AAAAAAAAAA"), simpleAlphabet)
	linear := BuildLinearProfile(query, &matrix, nil, 3)
	ws := newWorkspace(64, Vec128)

	cigar := traceback(query, db, 0, 10, 0, 9, linear, 3, 1, ws)
	require := assert.New(t)
	require.Len(cigar, 3)

	l0, op0 := UnpackCIGAR(cigar[0])
	l1, op1 := UnpackCIGAR(cigar[1])
	l2, op2 := UnpackCIGAR(cigar[2])
	require.Equal(5, l0)
	require.Equal(CIGAREqual, op0)
	require.Equal(1, l1)
	require.Equal(CIGARInsertion, op1)
	require.Equal(5, l2)
	require.Equal(CIGAREqual, op2)
}

func TestBTMatrixRoundTrip(t *testing.T) {
	m := newBTMatrix(nil, 5, 5)
	m.set(0, 0, ptrDiag)
	m.set(1, 2, ptrUp)
	m.set(4, 4, ptrLeft)
	assert.Equal(t, ptrDiag, m.get(0, 0))
	assert.Equal(t, ptrUp, m.get(1, 2))
	assert.Equal(t, ptrLeft, m.get(4, 4))
	assert.Equal(t, ptrDiag, m.get(2, 2))
}
