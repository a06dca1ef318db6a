// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package align

// recoverStart implements spec.md section 4.4: given the score and endpoint
// a forward pass already found, it rebuilds a profile over the matching
// query prefix and rescans the database prefix in reverse to find where
// that optimal alignment began.
//
// dbEnd and qEnd are the 0-based coordinates the forward pass reported;
// score is that pass's score, used as the early-termination target: the
// reverse scan stops the instant a column reattains it, since nothing
// further left can improve on an already-optimal alignment.
//
// query and compBias are the ORIGINAL (forward-oriented) query and
// composition-bias slices; fullQueryLen is the length they were built
// against (== len(query) in practice, kept explicit because PROFILE mode
// addresses the original scoring matrix by that length rather than by
// qEnd+1). db is the original database sequence; only db[:dbEnd+1] is
// scanned.
//
// It returns false if the reverse pass could not reproduce score (an
// internal inconsistency the caller should surface as
// ErrInternalInconsistency), never a Go error directly, since its caller
// (Align) decides how to wrap it.
func recoverStart(db []byte, dbEnd int, query []byte, qEnd int, matrix *ScoringMatrix, compBias []int8, fullQueryLen int, gapOpen, gapExtend, bias uint8, useWord bool, lw LaneWidth, score int, ws *Workspace) (dbStart, qStart int, ok bool) {
	qlen := qEnd + 1
	dbSlice := db[:dbEnd+1]

	var offset, entryLength int
	var revQuery []byte
	var revBias []int8
	revMatrix := matrix
	if matrix.Mode == Profile {
		// Build a physically-reversed copy of the matching query columns
		// (mirroring original_source's mat_rev), then address it as a
		// plain forward profile; see reverseProfileMatrix.
		rev := reverseProfileMatrix(matrix, qEnd, qlen, fullQueryLen)
		revMatrix = &rev
		offset = 1
		entryLength = qlen
		revQuery = query[:qlen]
	} else {
		revQuery = reverseBytes(query[:qlen])
		if compBias != nil {
			revBias = reverseInt8(compBias[:qlen])
		}
	}

	var best alignEnd
	if useWord {
		profile := BuildWordProfile(revQuery, qlen, revMatrix, revBias, offset, entryLength, lw)
		res := runWordKernel(Reverse, dbSlice, qlen, gapOpen, gapExtend, &profile, score, 0, ws)
		best = res.Best
	} else {
		profile := BuildByteProfile(revQuery, qlen, revMatrix, revBias, bias, offset, entryLength, lw)
		res := runByteKernel(Reverse, dbSlice, qlen, gapOpen, gapExtend, bias, &profile, score, 0, ws)
		if res.Saturated {
			return 0, 0, false
		}
		best = res.Best
	}

	if best.Score != score {
		return 0, 0, false
	}
	// best.Ref is already an absolute index into db (the Reverse traversal
	// walks the original slice back to front rather than scanning a
	// physically reversed copy), so unlike a literal array reversal no
	// "dbEnd - ref" translation is needed here.
	return best.Ref, qEnd - best.Read, true
}
