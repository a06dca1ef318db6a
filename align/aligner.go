// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package align

import (
	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// ScoreSize selects which kernel width(s) Init prepares a query for.
// ScoreByte is cheapest but can saturate on long, high-scoring alignments;
// ScoreWord never saturates but uses twice the memory and time; ScoreBoth
// builds both profiles so Align can silently retry a saturated byte result
// with the word kernel, per spec.md section 4.6.
type ScoreSize int

const (
	ScoreByte ScoreSize = iota
	ScoreWord
	ScoreBoth
)

// Flags adjusts what Align computes beyond the best score and endpoint.
type Flags uint8

// FlagEndpointsOnly skips the banded traceback: Align reports the score and
// start/end coordinates but leaves Result.Cigar nil. Use it when only the
// score matters (e.g. a first-pass database filter), since traceback's
// quadratic-memory back-pointer matrix is the most expensive step.
const FlagEndpointsOnly Flags = 1 << 0

// Result is everything Align reports about one query/database comparison.
type Result struct {
	Score1  int
	QEnd    int
	DbEnd   int
	QStart  int
	DbStart int

	// Score2 and RefEnd2 describe the best-scoring alignment more than
	// maskLen positions away from the primary one, used to assess
	// alignment uniqueness (spec.md section 4.2). RefEnd2 is -1 if no
	// qualifying second-best region existed.
	Score2  int
	RefEnd2 int

	// Cigar is nil unless FlagEndpointsOnly was absent from Align's flags;
	// otherwise it holds the banded traceback's packed CIGAR tokens, see
	// PackCIGAR.
	Cigar []uint32
}

// Workspace holds the buffers an Aligner reuses across calls. The kernels'
// H/E/max buffers, maxColumn and the traceback rows are preallocated for
// maxSeqLen at construction; btMatrix and cigarScratch start empty and grow
// on first use. Align still allocates per call outside the Workspace: the
// kernels' per-column lane vectors, endpoint recovery's reverse profile and
// the returned CIGAR. It is not itself safe for concurrent use; an Aligner's
// Workspace is private to that Aligner.
type Workspace struct {
	lw LaneWidth

	hStoreByte, hLoadByte, eByte, hMaxByte []uint8
	hStoreWord, hLoadWord, eWord, hMaxWord []int16
	maxColumn                              []uint16

	btMatrix     []byte
	rowPrevH, rowPrevE, rowCurrH, rowCurrE []int32
	cigarScratch                           []CIGAROp
}

func newWorkspace(maxSeqLen int, lw LaneWidth) *Workspace {
	eByte := lw.ElementsByte()
	eWord := lw.ElementsWord()
	slByte := segLen(maxSeqLen, eByte)
	slWord := segLen(maxSeqLen, eWord)
	return &Workspace{
		lw:         lw,
		hStoreByte: make([]uint8, slByte*eByte),
		hLoadByte:  make([]uint8, slByte*eByte),
		eByte:      make([]uint8, slByte*eByte),
		hMaxByte:   make([]uint8, slByte*eByte),
		hStoreWord: make([]int16, slWord*eWord),
		hLoadWord:  make([]int16, slWord*eWord),
		eWord:      make([]int16, slWord*eWord),
		hMaxWord:   make([]int16, slWord*eWord),
		maxColumn:  make([]uint16, maxSeqLen),
		rowPrevH:   make([]int32, maxSeqLen+1),
		rowPrevE:   make([]int32, maxSeqLen+1),
		rowCurrH:   make([]int32, maxSeqLen+1),
		rowCurrE:   make([]int32, maxSeqLen+1),
	}
}

// Aligner scores database sequences against one query at a time using
// striped vectorized Smith-Waterman (spec.md sections 4.1-4.6). Construct
// one with NewAligner, call Init whenever the query changes, then call
// Align once per database sequence. An Aligner is not safe for concurrent
// use; give each goroutine its own.
type Aligner struct {
	maxSeqLen        int
	alphabetSize     int
	aaBiasCorrection bool
	lw               LaneWidth

	ws *Workspace

	query       []byte
	queryLen    int
	matrix      ScoringMatrix
	compBias    []int8
	bias        uint8
	scoreSize   ScoreSize
	byteProfile *StripedProfile
	wordProfile *StripedProfile
	linear      LinearProfile
	initialized bool
}

// NewAligner allocates an Aligner whose Workspace is sized for queries up
// to maxSeqLen residues drawn from an alphabet of alphabetSize codes.
// aaBiasCorrection enables the sliding-window composition-bias penalty of
// spec.md section 4.7; it only has an effect in SubstitutionMatrix mode.
func NewAligner(maxSeqLen, alphabetSize int, aaBiasCorrection bool) *Aligner {
	lw := Vec128
	return &Aligner{
		maxSeqLen:        maxSeqLen,
		alphabetSize:     alphabetSize,
		aaBiasCorrection: aaBiasCorrection,
		lw:               lw,
		ws:               newWorkspace(maxSeqLen, lw),
	}
}

// Init rebuilds the query profile for a new query. scoreSize chooses which
// kernel width(s) are prepared; pass ScoreBoth if you expect long,
// high-scoring alignments that might saturate the byte kernel.
func (a *Aligner) Init(query []byte, matrix ScoringMatrix, scoreSize ScoreSize) error {
	if len(query) > a.maxSeqLen {
		return errors.Errorf("align: query length %d exceeds maxSeqLen %d", len(query), a.maxSeqLen)
	}
	a.query = query
	a.queryLen = len(query)
	// In Profile mode the neutral residue (the last row) scores 0 against
	// every query column; the row is zeroed on a copy so the caller's Data
	// is left untouched.
	if matrix.Mode == Profile && matrix.AlphabetSize > 0 {
		data := append([]int8(nil), matrix.Data...)
		row := data[(matrix.AlphabetSize-1)*a.queryLen:]
		for i := range row {
			row[i] = 0
		}
		matrix.Data = data
	}
	a.matrix = matrix
	a.scoreSize = scoreSize

	if a.aaBiasCorrection && matrix.Mode == SubstitutionMatrix {
		a.compBias = localCompositionBias(query, &matrix)
	} else {
		a.compBias = nil
	}

	minScore := int8(0)
	for _, v := range matrix.Data {
		if v < minScore {
			minScore = v
		}
	}
	biasFromComp := int(clampBiasMax(a.compBias))
	a.bias = uint8(-int(minScore) - biasFromComp)

	// Forward-pass offset: buildStriped's PROFILE branch reads matrix
	// column j+offset-1 for query position j, so offset 1 addresses
	// columns 0..queryLen-1 directly; SUBSTITUTION mode reads q[j+offset]
	// and uses 0. This applies identically to byte and word width.
	offset := 0
	if matrix.Mode == Profile {
		offset = 1
	}

	a.byteProfile = nil
	a.wordProfile = nil
	if scoreSize == ScoreByte || scoreSize == ScoreBoth {
		p := BuildByteProfile(query, a.queryLen, &matrix, a.compBias, a.bias, offset, a.queryLen, a.lw)
		a.byteProfile = &p
	}
	if scoreSize == ScoreWord || scoreSize == ScoreBoth {
		p := BuildWordProfile(query, a.queryLen, &matrix, a.compBias, offset, a.queryLen, a.lw)
		a.wordProfile = &p
	}

	a.linear = BuildLinearProfile(query, &matrix, a.compBias, a.alphabetSize)
	a.initialized = true
	log.Debug.Printf("align: Init query_len=%d score_size=%v bias=%d", a.queryLen, scoreSize, a.bias)
	return nil
}

// Align scores db against the query Init was last called with, returning
// the best local alignment's score and endpoints (and, unless
// FlagEndpointsOnly is set, its CIGAR), per spec.md sections 4.6-4.7.
//
// maskLen gates the second-best computation as spec.md section 4.2
// describes: maskLen < 15 disables it outright (Result.RefEnd2 is left at
// -1). filters and filterScore are the two filter checks of spec.md
// section 4.6: a best score below filters skips endpoint recovery (and
// thus the CIGAR) entirely, leaving DbStart/QStart at -1, while an
// alignment whose query or database span exceeds filterScore still
// recovers its endpoints but skips the banded traceback. filterScore <= 0
// disables the second filter, mirroring maskLen's own disable convention.
func (a *Aligner) Align(db []byte, gapOpen, gapExtend uint8, flags Flags, filters uint16, filterScore int, maskLen int) (*Result, error) {
	if !a.initialized {
		return nil, ErrNotInitialized
	}

	useWord := a.scoreSize == ScoreWord
	var best, second alignEnd
	var saturated bool

	if a.scoreSize != ScoreWord {
		res := runByteKernel(Forward, db, a.queryLen, gapOpen, gapExtend, a.bias, a.byteProfile, -1, maskLen, a.ws)
		best, second, saturated = res.Best, res.Second, res.Saturated
		if saturated {
			if a.scoreSize != ScoreBoth {
				return nil, ErrSaturation
			}
			useWord = true
		}
	}
	if useWord {
		if a.wordProfile == nil {
			return nil, ErrScoreSizeInsufficient
		}
		res := runWordKernel(Forward, db, a.queryLen, gapOpen, gapExtend, a.wordProfile, -1, maskLen, a.ws)
		best, second = res.Best, res.Second
	}

	result := &Result{
		Score1:  best.Score,
		DbEnd:   best.Ref,
		QEnd:    best.Read,
		DbStart: -1,
		QStart:  -1,
		RefEnd2: -1,
	}
	if maskLen >= 15 && second.Score > 0 {
		result.Score2 = second.Score
		result.RefEnd2 = second.Ref
	}

	if best.Score <= 0 {
		// No alignment scored above zero anywhere; both kernels leave Ref
		// at -1 in that case, so DbEnd reports -1.
		return result, nil
	}

	// Filter 1 (spec.md section 4.6): a best score below filters skips
	// endpoint recovery, and therefore the CIGAR, entirely.
	if best.Score < int(filters) {
		return result, nil
	}

	dbStart, qStart, ok := recoverStart(db, best.Ref, a.query, best.Read, &a.matrix, a.compBias, a.queryLen, gapOpen, gapExtend, a.bias, useWord, a.lw, best.Score, a.ws)
	if !ok {
		return nil, ErrInternalInconsistency
	}
	result.DbStart = dbStart
	result.QStart = qStart

	if flags&FlagEndpointsOnly != 0 {
		return result, nil
	}

	// Filter 2 (spec.md section 4.6): an alignment spanning more than
	// filterScore positions in either sequence skips the expensive banded
	// traceback; endpoint recovery above still stands.
	qSpan := best.Read - qStart
	dbSpan := best.Ref - dbStart
	if filterScore > 0 && (qSpan > filterScore || dbSpan > filterScore) {
		return result, nil
	}

	result.Cigar = traceback(a.query, db, qStart, best.Read, dbStart, best.Ref, a.linear, gapOpen, gapExtend, a.ws)

	return result, nil
}
