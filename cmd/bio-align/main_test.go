// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFasta(t *testing.T, path, content string) {
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRunFindsAlignmentAboveMinScore(t *testing.T) {
	dir := t.TempDir()
	queryPath := filepath.Join(dir, "query.fa")
	dbPath := filepath.Join(dir, "db.fa")
	writeTestFasta(t, queryPath, ">q1\nMKTAYIAKQR\n")
	writeTestFasta(t, dbPath, ">d1\nGGGGMKTAYIAKQRGGGG\n>d2\nZZZZZZZZZZ\n")

	flags := cliFlags{
		queryPath: queryPath,
		dbPath:    dbPath,
		gapOpen:   10,
		gapExtend: 1,
		scoreSize: "both",
		biasCorr:  true,
		maskLen:   15,
		minScore:  1,
	}

	var out bytes.Buffer
	require.NoError(t, run(vcontext.Background(), flags, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)
	fields := strings.Split(lines[0], "\t")
	assert.Equal(t, "q1", fields[0])
	assert.Equal(t, "d1", fields[1])
}

func TestRunStoresResultRecordsWhenRequested(t *testing.T) {
	dir := t.TempDir()
	queryPath := filepath.Join(dir, "query.fa")
	dbPath := filepath.Join(dir, "db.fa")
	resultsDir := filepath.Join(dir, "results")
	require.NoError(t, os.Mkdir(resultsDir, 0755))
	writeTestFasta(t, queryPath, ">q1\nMKTAYIAKQR\n")
	writeTestFasta(t, dbPath, ">d1\nGGGGMKTAYIAKQRGGGG\n")

	flags := cliFlags{
		queryPath:  queryPath,
		dbPath:     dbPath,
		gapOpen:    10,
		gapExtend:  1,
		scoreSize:  "both",
		biasCorr:   true,
		maskLen:    15,
		minScore:   1,
		resultsDir: resultsDir,
	}

	var out bytes.Buffer
	require.NoError(t, run(vcontext.Background(), flags, &out))

	entries, err := os.ReadDir(resultsDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestParseScoreSizeRejectsUnknown(t *testing.T) {
	_, err := parseScoreSize("nibble")
	assert.Error(t, err)
}
