// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package align

// Direction selects which way the forward kernels traverse the database
// sequence: Forward scans left to right looking for the alignment's end;
// Reverse scans right to left over a reversed prefix, used by endpoint
// recovery to find the alignment's start (spec.md section 4.4).
type Direction int

const (
	// Forward traverses the database sequence left to right.
	Forward Direction = iota
	// Reverse traverses the database sequence right to left.
	Reverse
)

// alignEnd is one endpoint record returned by a forward kernel: a score and
// the database/query coordinate it was reached at.
type alignEnd struct {
	Score int
	Ref   int
	Read  int
}

// byteKernelResult bundles the best and second-best endpoints plus a
// saturation flag, mirroring the two alignment_end records returned by
// sw_sse2_byte in spec.md's reference algorithm.
type byteKernelResult struct {
	Best, Second alignEnd
	Saturated    bool
}

// runByteKernel implements the striped, saturating 8-bit forward sweep
// described in spec.md section 4.2: Farrar's layout, the lazy-F fixup, and
// second-best tracking gated on maskLen >= 15.
//
// db is the sequence to traverse (already sliced to the caller's desired
// db_length); dir selects traversal order. profile must be a byte-width
// StripedProfile built for exactly qlen query positions. terminate, when
// >= 0, lets the caller short-circuit once a column reattains a known
// score (used by endpoint recovery); pass -1 to disable it.
func runByteKernel(dir Direction, db []byte, qlen int, gapOpen, gapExtend, bias uint8, profile *StripedProfile, terminate int, maskLen int, ws *Workspace) byteKernelResult {
	segLen := profile.SegLen
	elements := profile.Elements
	n := len(db)

	hStore := vec8(ws.hStoreByte[:segLen*elements])
	hLoad := vec8(ws.hLoadByte[:segLen*elements])
	e := vec8(ws.eByte[:segLen*elements])
	hMax := vec8(ws.hMaxByte[:segLen*elements])
	for i := range hStore {
		hStore[i] = 0
		hLoad[i] = 0
		e[i] = 0
		hMax[i] = 0
	}
	maxColumn := ws.maxColumn[:n]
	for i := range maxColumn {
		maxColumn[i] = 0
	}

	vGapO := broadcast8(elements, gapOpen)
	vGapE := broadcast8(elements, gapExtend)
	vBias := broadcast8(elements, bias)

	max := uint8(0)
	endDB := -1
	endQuery := qlen - 1
	saturated := false

	begin, end, step := 0, n, 1
	if dir == Reverse {
		begin, end, step = n-1, -1, -1
	}

	scratch := newVec8(elements)
	tmp := newVec8(elements)

	for i := begin; i != end; i += step {
		vMaxColumn := broadcast8(elements, 0)
		vF := broadcast8(elements, 0)

		h := segVec(hStore, segLen-1, elements)
		h = shiftLeftOne8(h, 0)

		// Swap store/load buffers for this column.
		hStore, hLoad = hLoad, hStore

		residue := int(db[i])
		for j := 0; j < segLen; j++ {
			p := profile.byteVecAt(residue, j)
			addSat8(scratch, h, p)
			subSat8(scratch, scratch, vBias)
			h = append(vec8(nil), scratch...)

			ej := segVec(e, j, elements)
			max8(h, h, ej)
			max8(h, h, vF)
			max8(vMaxColumn, vMaxColumn, h)

			setSegVec(hStore, j, elements, h)

			subSat8(tmp, h, vGapO)
			subSat8(ej, ej, vGapE)
			max8(ej, ej, tmp)
			setSegVec(e, j, elements, ej)

			subSat8(vF, vF, vGapE)
			max8(vF, vF, tmp)

			h = segVec(hLoad, j, elements)
		}

		// Lazy-F correction: keep propagating F into H until no lane can
		// still improve, per spec.md section 4.2 step 3.
		j := 0
		h = segVec(hStore, 0, elements)
		vF = shiftLeftOne8(vF, 0)
		subSat8(tmp, h, vGapO)
		for anyExceeds8(vF, tmp) {
			max8(h, h, vF)
			max8(vMaxColumn, vMaxColumn, h)
			setSegVec(hStore, j, elements, h)
			subSat8(vF, vF, vGapE)
			j++
			if j >= segLen {
				j = 0
				vF = shiftLeftOne8(vF, 0)
			}
			h = segVec(hStore, j, elements)
			subSat8(tmp, h, vGapO)
		}

		// The reference kernel only recomputes a horizontal max when a
		// per-lane running maximum changes; that's a pure performance
		// shortcut (skipping it can't change which column wins), so this
		// port just recomputes unconditionally.
		colMax := hmax8(vMaxColumn)
		if colMax > max {
			max = colMax
			if int(max)+int(bias) >= 255 {
				saturated = true
				break
			}
			endDB = i
			copy(hMax, hStore)
		}

		maxColumn[i] = uint16(colMax)
		if terminate >= 0 && int(colMax) == terminate {
			break
		}
	}

	if !saturated {
		columnLen := segLen * elements
		for i := 0; i < columnLen; i++ {
			if hMax[i] == max {
				temp := i/elements + (i%elements)*segLen
				if temp < endQuery {
					endQuery = temp
				}
			}
		}
	}

	score := int(max)
	if int(max)+int(bias) >= 255 {
		score = 255
	}
	best := alignEnd{Score: score, Ref: endDB, Read: endQuery}
	second := alignEnd{}

	if maskLen >= 15 && !saturated {
		edge := endDB - maskLen
		if edge < 0 {
			edge = 0
		}
		for i := 0; i < edge; i++ {
			if int(maxColumn[i]) > second.Score {
				second.Score = int(maxColumn[i])
				second.Ref = i
			}
		}
		edge = endDB + maskLen
		if edge > n {
			edge = n
		}
		for i := edge + 1; i < n; i++ {
			if int(maxColumn[i]) > second.Score {
				second.Score = int(maxColumn[i])
				second.Ref = i
			}
		}
	}

	return byteKernelResult{Best: best, Second: second, Saturated: saturated}
}

// segVec returns a copy-free view of segment i of a flat lane buffer.
func segVec(buf vec8, i, elements int) vec8 {
	return buf[i*elements : (i+1)*elements]
}

// setSegVec overwrites segment i of a flat lane buffer with v.
func setSegVec(buf vec8, i, elements int, v vec8) {
	copy(buf[i*elements:(i+1)*elements], v)
}
