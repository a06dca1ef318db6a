// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package align

// compositionBiasHalfWidth is the radius of the sliding window used by
// localCompositionBias, matching the neighborhood size MMseqs2 uses when
// correcting for compositionally-biased (low-complexity) regions of a
// query before byte-kernel alignment.
const compositionBiasHalfWidth = 5

// localCompositionBias computes, for each query position, a penalty
// derived from how well that position's residue matches its own
// neighborhood under the scoring matrix: a position embedded in a run of
// self-similar residues (e.g. a low-complexity repeat) gets a negative
// adjustment, damping the score contribution of repetitive regions so they
// don't dominate a local alignment. The result is rounded half away from
// zero into a signed byte per spec.md section 4.7, and clamped so it is
// never positive (only ever discourages, never rewards, repetitive runs).
func localCompositionBias(query []byte, matrix *ScoringMatrix) []int8 {
	l := len(query)
	bias := make([]int8, l)
	if matrix.Mode != SubstitutionMatrix {
		return bias
	}
	for i := 0; i < l; i++ {
		lo := i - compositionBiasHalfWidth
		if lo < 0 {
			lo = 0
		}
		hi := i + compositionBiasHalfWidth
		if hi >= l {
			hi = l - 1
		}
		n := hi - lo + 1
		sum := 0
		for j := lo; j <= hi; j++ {
			sum += int(matrix.At(int(query[i]), int(query[j])))
		}
		avg := float64(sum) / float64(n)
		bias[i] = roundHalfAwayFromZero(-avg)
		if bias[i] > 0 {
			bias[i] = 0
		}
	}
	return bias
}

// roundHalfAwayFromZero rounds x to the nearest int8, breaking ties away
// from zero, matching the C expression "(x<0.0) ? x-0.5 : x+0.5" truncated
// to an integer.
func roundHalfAwayFromZero(x float64) int8 {
	var r float64
	if x < 0 {
		r = x - 0.5
	} else {
		r = x + 0.5
	}
	if r > 127 {
		r = 127
	}
	if r < -128 {
		r = -128
	}
	return int8(r)
}

// clampBiasMax returns the minimum bias value across c, clamped to be at
// most zero; this mirrors MMseqs2's ssw_init, which folds
// min(0, min_i composition_bias[i]) into the byte-mode bias offset rather
// than a positive composition bias ever reducing it.
func clampBiasMax(c []int8) int8 {
	m := int8(0)
	for _, v := range c {
		if v < m {
			m = v
		}
	}
	if m > 0 {
		return 0
	}
	return m
}

// reverseInt8 returns a newly allocated reversal of s.
func reverseInt8(s []int8) []int8 {
	r := make([]int8, len(s))
	for i, v := range s {
		r[len(s)-1-i] = v
	}
	return r
}

// reverseBytes returns a newly allocated reversal of s.
func reverseBytes(s []byte) []byte {
	r := make([]byte, len(s))
	for i, v := range s {
		r[len(s)-1-i] = v
	}
	return r
}
