// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package resultstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/bio/align"
)

func sampleResult() *align.Result {
	return &align.Result{
		Score1:  17,
		QStart:  0,
		QEnd:    10,
		DbStart: 0,
		DbEnd:   9,
		Score2:  -1,
		RefEnd2: -1,
		Cigar:   []uint32{align.PackCIGAR(5, align.CIGAREqual), align.PackCIGAR(1, align.CIGARInsertion), align.PackCIGAR(5, align.CIGAREqual)},
	}
}

func TestChecksumStableAcrossEqualResults(t *testing.T) {
	a := sampleResult()
	b := sampleResult()
	assert.Equal(t, Checksum(a), Checksum(b))
}

func TestChecksumDetectsFieldChange(t *testing.T) {
	a := sampleResult()
	b := sampleResult()
	b.Score1++
	assert.NotEqual(t, Checksum(a), Checksum(b))
}

func TestPutGetResultRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "result.bin")
	want := sampleResult()

	require.NoError(t, PutResult(ctx, path, want))
	got, err := GetResult(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetResultDetectsCorruption(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "result.bin")
	require.NoError(t, PutResult(ctx, path, sampleResult()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0644))

	_, err = GetResult(ctx, path)
	assert.Error(t, err)
}
