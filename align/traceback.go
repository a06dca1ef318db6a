// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package align

// CIGAROp is one alignment operation's type, using the extended-CIGAR
// numbering from the SAM specification (spec.md section 3's op-code
// table), packed into the low four bits of a CIGAR token below its run
// length (see PackCIGAR).
type CIGAROp byte

const (
	CIGARMatch     CIGAROp = 0 // M: aligned, residue identity not implied
	CIGARInsertion CIGAROp = 1 // I: consumes query only
	CIGARDeletion  CIGAROp = 2 // D: consumes database only
	CIGARSkip      CIGAROp = 3 // N: intron-like skip; unused by this aligner
	CIGARSoftClip  CIGAROp = 4 // S: unused by this aligner
	CIGARHardClip  CIGAROp = 5 // H: unused by this aligner
	CIGARPadding   CIGAROp = 6 // P: unused by this aligner
	CIGAREqual     CIGAROp = 7 // =: aligned, residues identical
	CIGARMismatch  CIGAROp = 8 // X: aligned, residues differ
)

// PackCIGAR combines a run length and op code the way spec.md section 3
// requires: (length<<4)|op_code.
func PackCIGAR(length int, op CIGAROp) uint32 {
	return uint32(length)<<4 | uint32(op)
}

// UnpackCIGAR splits a packed token back into its run length and op code.
func UnpackCIGAR(v uint32) (length int, op CIGAROp) {
	return int(v >> 4), CIGAROp(v & 0xf)
}

const negInf = -(1 << 30)

// ptrCode is the 2-bit back-pointer stored per traceback cell: which of
// the three recurrences produced this cell's H value. Ties break
// diagonal-over-deletion-over-insertion (M > F > E), matching spec.md
// section 4.5.
type ptrCode byte

const (
	ptrDiag ptrCode = 0
	ptrUp   ptrCode = 1 // E: query-consuming gap (insertion)
	ptrLeft ptrCode = 2 // F: database-consuming gap (deletion)
)

// btMatrix is a 2-bit-per-cell back-pointer grid over a qLen x dLen band,
// packed four cells to a byte to keep traceback memory at query_len *
// db_len / 4 bytes as spec.md section 3 specifies.
type btMatrix struct {
	bits []byte
	dLen int
}

func newBTMatrix(buf []byte, qLen, dLen int) btMatrix {
	need := (qLen*dLen + 3) / 4
	if cap(buf) < need {
		buf = make([]byte, need)
	}
	buf = buf[:need]
	for i := range buf {
		buf[i] = 0
	}
	return btMatrix{bits: buf, dLen: dLen}
}

func (m btMatrix) set(i, j int, c ptrCode) {
	idx := i*m.dLen + j
	b, shift := idx/4, uint((idx%4)*2)
	m.bits[b] = (m.bits[b] &^ (0x3 << shift)) | (byte(c) << shift)
}

func (m btMatrix) get(i, j int) ptrCode {
	idx := i*m.dLen + j
	b, shift := idx/4, uint((idx%4)*2)
	return ptrCode((m.bits[b] >> shift) & 0x3)
}

// traceback reconstructs the CIGAR for the alignment already known to run
// from (qStart,dbStart) to (qEnd,dbEnd) inclusive, via the classic affine
// two-row DP (spec.md section 4.5): since both endpoints are already
// established by the forward and reverse kernel passes, this is a global
// alignment of the bounded sub-rectangle rather than a fresh local search.
func traceback(query, db []byte, qStart, qEnd, dbStart, dbEnd int, linear LinearProfile, gapOpen, gapExtend uint8, ws *Workspace) []uint32 {
	qLen := qEnd - qStart + 1
	dLen := dbEnd - dbStart + 1

	open, ext := int32(gapOpen), int32(gapExtend)

	mat := newBTMatrix(ws.btMatrix, qLen, dLen)
	ws.btMatrix = mat.bits

	prevH := ws.rowPrevH[:qLen+1]
	prevE := ws.rowPrevE[:qLen+1]
	currH := ws.rowCurrH[:qLen+1]
	currE := ws.rowCurrE[:qLen+1]

	prevH[0] = 0
	prevE[0] = negInf
	for i := 1; i <= qLen; i++ {
		prevH[i] = negInf
		prevE[i] = negInf
	}

	for j := 1; j <= dLen; j++ {
		currH[0] = negInf
		currE[0] = negInf
		var f int32 = negInf
		residue := int(db[dbStart+j-1])
		for i := 1; i <= qLen; i++ {
			diag := prevH[i-1]
			if diag > negInf {
				diag += int32(linear.Data[residue][qStart+i-1])
			}

			eVal := prevH[i] - open
			if v := prevE[i] - ext; v > eVal {
				eVal = v
			}

			fVal := currH[i-1] - open
			if v := f - ext; v > fVal {
				fVal = v
			}
			f = fVal

			// M > F > E tie-break (spec.md section 4.5): eVal is the
			// cross-row, database-consuming recurrence (F/Deletion) and
			// fVal is the same-row, query-consuming recurrence
			// (E/Insertion), so eVal must be checked before fVal -- a
			// later comparison only wins on a strict improvement, so
			// checking eVal first makes Deletion stand on a tie against
			// Insertion, and checking diag's assignment first makes it
			// stand on a tie against both.
			h, code := diag, ptrDiag
			if eVal > h {
				h, code = eVal, ptrLeft
			}
			if fVal > h {
				h, code = fVal, ptrUp
			}

			currH[i] = h
			currE[i] = eVal
			mat.set(i-1, j-1, code)
		}
		prevH, currH = currH, prevH
		prevE, currE = currE, prevE
	}

	// Walk back from (qLen,dLen) to (0,0), emitting ops in reverse order.
	ops := ws.cigarScratch[:0]
	i, j := qLen, dLen
	for i > 0 || j > 0 {
		switch {
		case i == 0:
			ops = append(ops, CIGARDeletion)
			j--
		case j == 0:
			ops = append(ops, CIGARInsertion)
			i--
		default:
			switch mat.get(i-1, j-1) {
			case ptrDiag:
				c := CIGARMismatch
				if db[dbStart+j-1] == query[qStart+i-1] {
					c = CIGAREqual
				}
				ops = append(ops, c)
				i--
				j--
			case ptrUp:
				ops = append(ops, CIGARInsertion)
				i--
			case ptrLeft:
				ops = append(ops, CIGARDeletion)
				j--
			}
		}
	}
	ws.cigarScratch = ops

	// ops is in reverse (end-to-start) order; run-length encode while
	// reading it backwards so the resulting CIGAR reads start-to-end.
	var out []uint32
	k := len(ops) - 1
	for k >= 0 {
		c := ops[k]
		run := 1
		k--
		for k >= 0 && ops[k] == c {
			run++
			k--
		}
		out = append(out, PackCIGAR(run, c))
	}
	return out
}
