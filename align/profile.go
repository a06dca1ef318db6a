// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package align

// StripedProfile is a SIMD-friendly reordering of query x alphabet scores:
// lane s of segment i holds the score for query position i + s*SegLen, so
// that a vector load of segment i is contiguous in memory. See spec.md
// section 4.1 and the GLOSSARY entry for "Striped profile".
type StripedProfile struct {
	// Data is laid out [residue][segment][lane], flattened row-major:
	// Data[residue*SegLen*Elements + segment*Elements + lane].
	ByteData []uint8 // nil unless built in byte width
	WordData []int16 // nil unless built in word width
	SegLen   int
	Elements int
	// Bias is the byte-mode non-negative offset folded into every
	// ByteData entry; zero (and unused) for word profiles.
	Bias uint8
}

// LinearProfile is the non-striped, per-residue score table used only by
// the banded traceback: LinearProfile.Data[residue][j] is the score of
// query column j against residue. It is always built in word width.
type LinearProfile struct {
	Data [][]int16 // [alphabetSize][queryLen]
}

// buildStriped constructs a striped profile of the given lane width for
// query[0:qlen) (or a reversed query slice, by the caller's choice of
// query/compBias/matrix already being reversed) against matrix, following
// spec.md section 4.1 exactly:
//
//	SUBSTITUTION: profile[a,i,s] = (j>=qlen) ? bias : M[a,q[j+offset]] + C[j+offset] + bias
//	PROFILE:      profile[a,i,s] = (j>=qlen) ? bias : M[a*entryLength + (j+offset-1)] + bias
//
// width is 1 (byte, biased, saturating-safe) or 2 (word, unbiased).
func buildStriped(query []byte, qlen int, matrix *ScoringMatrix, compBias []int8, bias int, offset, entryLength, elements, width int) []int32 {
	sl := segLen(qlen, elements)
	out := make([]int32, matrix.AlphabetSize*sl*elements)
	idx := 0
	for a := 0; a < matrix.AlphabetSize; a++ {
		for i := 0; i < sl; i++ {
			j := i
			for s := 0; s < elements; s++ {
				var v int
				if j >= qlen {
					v = bias
				} else {
					switch matrix.Mode {
					case Profile:
						v = int(matrix.ProfileAt(a, j+offset-1, entryLength)) + bias
					default:
						qpos := j + offset
						c := int8(0)
						if compBias != nil {
							c = compBias[qpos]
						}
						v = int(matrix.At(a, int(query[qpos]))) + int(c) + bias
					}
				}
				out[idx] = int32(v)
				idx++
				j += sl
			}
		}
	}
	return out
}

// toByteData quantizes a buildStriped result (values already including a
// non-negative bias, per spec.md's invariant that byte-mode scores always
// fit in [0,255] by choice of bias) into []uint8.
func toByteData(v []int32) []uint8 {
	out := make([]uint8, len(v))
	for i, x := range v {
		if x < 0 {
			x = 0
		}
		if x > 255 {
			x = 255
		}
		out[i] = uint8(x)
	}
	return out
}

// toWordData narrows a buildStriped result into []int16.
func toWordData(v []int32) []int16 {
	out := make([]int16, len(v))
	for i, x := range v {
		out[i] = clampI16(x)
	}
	return out
}

// reverseProfileMatrix returns a PROFILE-mode matrix covering just the
// qlen columns ending at qEnd, with those columns physically reversed:
// newData[a][j] = matrix[a][qEnd-j]. This mirrors original_source's
// mat_rev = reverse_copy(mat) and lets the reverse endpoint scan address
// the result with a plain forward profile (offset=1, entryLength=qlen)
// instead of an offset trick that only happens to line up at column 0.
func reverseProfileMatrix(matrix *ScoringMatrix, qEnd, qlen, fullQueryLen int) ScoringMatrix {
	data := make([]int8, matrix.AlphabetSize*qlen)
	for a := 0; a < matrix.AlphabetSize; a++ {
		for j := 0; j < qlen; j++ {
			data[a*qlen+j] = matrix.Data[a*fullQueryLen+(qEnd-j)]
		}
	}
	return ScoringMatrix{Mode: Profile, Data: data, AlphabetSize: matrix.AlphabetSize}
}

// BuildByteProfile builds a striped byte profile for query[0:qlen), with
// bias folded in per lane.
func BuildByteProfile(query []byte, qlen int, matrix *ScoringMatrix, compBias []int8, bias uint8, offset, entryLength int, lw LaneWidth) StripedProfile {
	elements := lw.ElementsByte()
	raw := buildStriped(query, qlen, matrix, compBias, int(bias), offset, entryLength, elements, 1)
	return StripedProfile{
		ByteData: toByteData(raw),
		SegLen:   segLen(qlen, elements),
		Elements: elements,
		Bias:     bias,
	}
}

// BuildWordProfile builds a striped word profile for query[0:qlen); word
// profiles never carry a bias, per spec.md section 4.1.
func BuildWordProfile(query []byte, qlen int, matrix *ScoringMatrix, compBias []int8, offset, entryLength int, lw LaneWidth) StripedProfile {
	elements := lw.ElementsWord()
	raw := buildStriped(query, qlen, matrix, compBias, 0, offset, entryLength, elements, 2)
	return StripedProfile{
		WordData: toWordData(raw),
		SegLen:   segLen(qlen, elements),
		Elements: elements,
	}
}

// byteVecAt returns the lane data for residue a, segment i as a vec8.
func (p *StripedProfile) byteVecAt(a, i int) vec8 {
	off := a*p.SegLen*p.Elements + i*p.Elements
	return vec8(p.ByteData[off : off+p.Elements])
}

// wordVecAt returns the lane data for residue a, segment i as a vec16.
func (p *StripedProfile) wordVecAt(a, i int) vec16 {
	off := a*p.SegLen*p.Elements + i*p.Elements
	return vec16(p.WordData[off : off+p.Elements])
}

// BuildLinearProfile builds the non-striped per-residue word profile used
// by the banded traceback: Data[a][j] = M[a,q[j]] + C[j] (SUBSTITUTION) or
// M[a*queryLen+j] + C[j] (PROFILE, C is all zero in that mode).
func BuildLinearProfile(query []byte, matrix *ScoringMatrix, compBias []int8, alphabetSize int) LinearProfile {
	l := len(query)
	data := make([][]int16, alphabetSize)
	for a := 0; a < alphabetSize; a++ {
		row := make([]int16, l)
		for j := 0; j < l; j++ {
			var base int
			if matrix.Mode == Profile {
				base = int(matrix.ProfileAt(a, j, l))
			} else {
				base = int(matrix.At(a, int(query[j])))
				if compBias != nil {
					base += int(compBias[j])
				}
			}
			row[j] = clampI16(int32(base))
		}
		data[a] = row
	}
	return LinearProfile{Data: data}
}
