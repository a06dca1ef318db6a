// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package align

// SeqMode distinguishes the two ways a query can be scored against a
// database residue: a plain substitution matrix, or a position-specific
// scoring profile built per query column (e.g. from a multiple alignment
// or HMM).
type SeqMode int

const (
	// SubstitutionMatrix scores query position j against database residue
	// a as Matrix[a*AlphabetSize + q[j]].
	SubstitutionMatrix SeqMode = iota
	// Profile scores query position j against database residue a as
	// Matrix[a*QueryLen + j]; the matrix has shape AlphabetSize x QueryLen.
	Profile
)

// ScoringMatrix is the substitution-matrix collaborator the aligner
// consumes; callers build one either from a fixed alphabet_size x
// alphabet_size substitution table, or from a per-query-column profile.
// ScoringMatrix never mutates its Data after construction.
type ScoringMatrix struct {
	Mode SeqMode
	// Data holds int8 scores in the row-major layout implied by Mode:
	// alphabet_size x alphabet_size for SubstitutionMatrix, or
	// alphabet_size x queryLen for Profile (the entryLength in spec.md's
	// formula is queryLen).
	Data []int8
	// AlphabetSize is the number of distinct residue codes scored, i.e.
	// the number of rows of Data.
	AlphabetSize int
}

// At returns the substitution score for residue a against query position j
// (SubstitutionMatrix mode requires the caller to have already looked up
// q[j]; pass the residue code as qResidue).
func (m *ScoringMatrix) At(a, qResidue int) int8 {
	return m.Data[a*m.AlphabetSize+qResidue]
}

// ProfileAt returns the profile score for residue a at query column j,
// given the query length used to build the profile (Profile mode only).
func (m *ScoringMatrix) ProfileAt(a, j, queryLen int) int8 {
	return m.Data[a*queryLen+j]
}

// NewSubstitutionMatrix wraps a flat alphabetSize x alphabetSize table as a
// ScoringMatrix in SubstitutionMatrix mode.
func NewSubstitutionMatrix(data []int8, alphabetSize int) ScoringMatrix {
	if len(data) != alphabetSize*alphabetSize {
		panic("align: substitution matrix size mismatch")
	}
	return ScoringMatrix{Mode: SubstitutionMatrix, Data: data, AlphabetSize: alphabetSize}
}

// NewProfileMatrix wraps a flat alphabetSize x queryLen table as a
// ScoringMatrix in Profile mode.  The neutral residue's row (the last one)
// need not be zero here: Aligner.Init zeroes that row on its own copy of
// the data.
func NewProfileMatrix(data []int8, alphabetSize, queryLen int) ScoringMatrix {
	if len(data) != alphabetSize*queryLen {
		panic("align: profile matrix size mismatch")
	}
	return ScoringMatrix{Mode: Profile, Data: data, AlphabetSize: alphabetSize}
}

// EncodeResidues maps a sequence of ASCII residue letters to the integer
// codes a ScoringMatrix built over alphabet expects, substituting the
// alphabet's last entry (conventionally the neutral "X" catch-all, see
// spec.md section 3) for any byte not found in alphabet.
func EncodeResidues(seq []byte, alphabet []byte) []byte {
	index := make(map[byte]byte, len(alphabet))
	for i, b := range alphabet {
		index[b] = byte(i)
	}
	unknown := byte(len(alphabet) - 1)
	out := make([]byte, len(seq))
	for i, b := range seq {
		if code, ok := index[b]; ok {
			out[i] = code
		} else {
			out[i] = unknown
		}
	}
	return out
}

// Blosum62Alphabet is the residue order used by Blosum62: the 20 standard
// amino acids followed by a neutral "X" catch-all.
var Blosum62Alphabet = []byte("ARNDCQEGHILKMFPSTWYVX")

// Blosum62 is the standard BLOSUM62 substitution matrix over
// Blosum62Alphabet, flattened row-major (21x21); the trailing "X" row and
// column score 0 against everything, matching the neutral-residue
// convention documented in spec.md section 3.
var Blosum62 = buildBlosum62()

func buildBlosum62() []int8 {
	// Standard BLOSUM62 scores over ARNDCQEGHILKMFPSTWYV (20x20); the
	// values below are the well-known NCBI table.
	rows := [20][20]int8{
		{4, -1, -2, -2, 0, -1, -1, 0, -2, -1, -1, -1, -1, -2, -1, 1, 0, -3, -2, 0},
		{-1, 5, 0, -2, -3, 1, 0, -2, 0, -3, -2, 2, -1, -3, -2, -1, -1, -3, -2, -3},
		{-2, 0, 6, 1, -3, 0, 0, 0, 1, -3, -3, 0, -2, -3, -2, 1, 0, -4, -2, -3},
		{-2, -2, 1, 6, -3, 0, 2, -1, -1, -3, -4, -1, -3, -3, -1, 0, -1, -4, -3, -3},
		{0, -3, -3, -3, 9, -3, -4, -3, -3, -1, -1, -3, -1, -2, -3, -1, -1, -2, -2, -1},
		{-1, 1, 0, 0, -3, 5, 2, -2, 0, -3, -2, 1, 0, -3, -1, 0, -1, -2, -1, -2},
		{-1, 0, 0, 2, -4, 2, 5, -2, 0, -3, -3, 1, -2, -3, -1, 0, -1, -3, -2, -2},
		{0, -2, 0, -1, -3, -2, -2, 6, -2, -4, -4, -2, -3, -3, -2, 0, -2, -2, -3, -3},
		{-2, 0, 1, -1, -3, 0, 0, -2, 8, -3, -3, -1, -2, -1, -2, -1, -2, -2, 2, -3},
		{-1, -3, -3, -3, -1, -3, -3, -4, -3, 4, 2, -3, 1, 0, -3, -2, -1, -3, -1, 3},
		{-1, -2, -3, -4, -1, -2, -3, -4, -3, 2, 4, -2, 2, 0, -3, -2, -1, -2, -1, 1},
		{-1, 2, 0, -1, -3, 1, 1, -2, -1, -3, -2, 5, -1, -3, -1, 0, -1, -3, -2, -2},
		{-1, -1, -2, -3, -1, 0, -2, -3, -2, 1, 2, -1, 5, 0, -2, -1, -1, -1, -1, 1},
		{-2, -3, -3, -3, -2, -3, -3, -3, -1, 0, 0, -3, 0, 6, -4, -2, -2, 1, 3, -1},
		{-1, -2, -2, -1, -3, -1, -1, -2, -2, -3, -3, -1, -2, -4, 7, -1, -1, -4, -3, -2},
		{1, -1, 1, 0, -1, 0, 0, 0, -1, -2, -2, 0, -1, -2, -1, 4, 1, -3, -2, -2},
		{0, -1, 0, -1, -1, -1, -1, -2, -2, -1, -1, -1, -1, -2, -1, 1, 5, -2, -2, 0},
		{-3, -3, -4, -4, -2, -2, -3, -2, -2, -3, -2, -3, -1, 1, -4, -3, -2, 11, 2, -3},
		{-2, -2, -2, -3, -2, -1, -2, -3, 2, -1, -1, -2, -1, 3, -3, -2, -2, 2, 7, -1},
		{0, -3, -3, -3, -1, -2, -2, -3, -3, 3, 1, -2, 1, -1, -2, -2, 0, -3, -1, 4},
	}
	const n = 21
	data := make([]int8, n*n)
	for a := 0; a < 20; a++ {
		for b := 0; b < 20; b++ {
			data[a*n+b] = rows[a][b]
		}
	}
	// Row/column 20 ("X") stays zero: neutral against every residue.
	return data
}
