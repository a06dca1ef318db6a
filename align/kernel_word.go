// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package align

// wordKernelResult bundles the best and second-best endpoints found by the
// word-width forward sweep. There is no saturation flag: 16-bit signed
// scores cover every value spec.md's score range requires.
type wordKernelResult struct {
	Best, Second alignEnd
}

// runWordKernel implements the striped, saturating 16-bit forward sweep
// described in spec.md section 4.3: unbiased signed scores, and a lazy-F
// fixup bounded to exactly Elements rounds rather than the byte kernel's
// unbounded movemask-driven loop.
//
// Arguments mirror runByteKernel; profile must be a word-width
// StripedProfile built for exactly qlen query positions.
func runWordKernel(dir Direction, db []byte, qlen int, gapOpen, gapExtend uint8, profile *StripedProfile, terminate int, maskLen int, ws *Workspace) wordKernelResult {
	segLen := profile.SegLen
	elements := profile.Elements
	n := len(db)

	hStore := vec16(ws.hStoreWord[:segLen*elements])
	hLoad := vec16(ws.hLoadWord[:segLen*elements])
	e := vec16(ws.eWord[:segLen*elements])
	hMax := vec16(ws.hMaxWord[:segLen*elements])
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

	vGapO := broadcast16(elements, int16(gapOpen))
	vGapE := broadcast16(elements, int16(gapExtend))
	vZero := broadcast16(elements, 0)

	max := int16(0)
	// endDB stays -1 until some column scores above zero, the same "no hit"
	// sentinel the byte kernel uses.
	endDB := -1
	endQuery := qlen - 1

	begin, end, step := 0, n, 1
	if dir == Reverse {
		begin, end, step = n-1, -1, -1
	}

	scratch := newVec16(elements)
	tmp := newVec16(elements)

	for i := begin; i != end; i += step {
		vMaxColumn := broadcast16(elements, -32768)
		vF := broadcast16(elements, -32768)

		h := segVec16(hStore, segLen-1, elements)
		h = shiftLeftOne16(h, 0)

		hStore, hLoad = hLoad, hStore

		residue := int(db[i])
		for j := 0; j < segLen; j++ {
			p := profile.wordVecAt(residue, j)
			addSat16(scratch, h, p)
			h = append(vec16(nil), scratch...)

			ej := segVec16(e, j, elements)
			max16(h, h, ej)
			max16(h, h, vF)
			max16(h, h, vZero)
			max16(vMaxColumn, vMaxColumn, h)

			setSegVec16(hStore, j, elements, h)

			subSat16(tmp, h, vGapO)
			subSat16(ej, ej, vGapE)
			max16(ej, ej, tmp)
			setSegVec16(e, j, elements, ej)

			subSat16(vF, vF, vGapE)
			max16(vF, vF, tmp)

			h = segVec16(hLoad, j, elements)
		}

		// Lazy-F correction: bounded to exactly Elements rounds, per
		// spec.md section 4.3's word-kernel variant, with an early exit
		// after a full round in which no lane of F improved H.
		vF = shiftLeftOne16(vF, 0)
		for k := 0; k < elements; k++ {
			improved := false
			for j := 0; j < segLen; j++ {
				h = segVec16(hStore, j, elements)
				subSat16(tmp, h, vGapO)
				if !anyExceeds16(vF, tmp) {
					continue
				}
				improved = true
				max16(h, h, vF)
				max16(h, h, vZero)
				max16(vMaxColumn, vMaxColumn, h)
				setSegVec16(hStore, j, elements, h)
				subSat16(vF, vF, vGapE)
			}
			if !improved {
				break
			}
			vF = shiftLeftOne16(vF, 0)
		}

		colMax := hmax16(vMaxColumn)
		if colMax > max {
			max = colMax
			endDB = i
			copy(hMax, hStore)
		}

		maxColumn[i] = uint16(int32(colMax) + 32768)
		if terminate >= 0 && int(colMax) == terminate {
			break
		}
	}

	columnLen := segLen * elements
	for i := 0; i < columnLen; i++ {
		if hMax[i] == max {
			temp := i/elements + (i%elements)*segLen
			if temp < endQuery {
				endQuery = temp
			}
		}
	}

	best := alignEnd{Score: int(max), Ref: endDB, Read: endQuery}
	second := alignEnd{}

	if maskLen >= 15 {
		edge := endDB - maskLen
		if edge < 0 {
			edge = 0
		}
		for i := 0; i < edge; i++ {
			v := int(maxColumn[i]) - 32768
			if v > second.Score {
				second.Score = v
				second.Ref = i
			}
		}
		edge = endDB + maskLen
		if edge > n {
			edge = n
		}
		for i := edge + 1; i < n; i++ {
			v := int(maxColumn[i]) - 32768
			if v > second.Score {
				second.Score = v
				second.Ref = i
			}
		}
	}

	return wordKernelResult{Best: best, Second: second}
}

func segVec16(buf vec16, i, elements int) vec16 {
	return buf[i*elements : (i+1)*elements]
}

func setSegVec16(buf vec16, i, elements int, v vec16) {
	copy(buf[i*elements:(i+1)*elements], v)
}
