// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command bio-align computes striped SIMD Smith-Waterman local alignments
// between one or more query protein sequences and every sequence in a
// database FASTA file, following the same gapped-seed-and-extend role
// bio-fusion's cmd layer plays for transcript fusion detection.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/grailbio/bio/align"
	"github.com/grailbio/bio/align/profilecache"
	"github.com/grailbio/bio/align/resultstore"
	"github.com/grailbio/bio/encoding/fasta"
)

type cliFlags struct {
	queryPath  string
	dbPath     string
	gapOpen    int
	gapExtend  int
	scoreSize  string
	biasCorr   bool
	maskLen    int
	minScore   int
	resultsDir string
	useS3      bool
}

func usage() {
	fmt.Fprintf(os.Stderr, `bio-align: striped SIMD Smith-Waterman local alignment

Usage: bio-align -query query.fa -db database.fa [flags]

Each sequence in -query is aligned against every sequence in -db; hits
scoring at least -min-score are printed to stdout, one line per hit, and
(if -results is set) also persisted as binary records via resultstore.

`)
	flag.PrintDefaults()
}

// loadFasta opens path (transparently gunzipped if named like one, following
// the same fileio.DetermineType dispatch pileup.LoadFa uses) and returns
// every sequence in file order, alphabet-encoded against Blosum62Alphabet.
func loadFasta(ctx context.Context, path string) ([]string, [][]byte, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "bio-align: open %s", path)
	}
	defer func() { _ = f.Close(ctx) }()

	var reader io.Reader = f.Reader(ctx)
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "bio-align: gunzip %s", path)
		}
		defer gz.Close()
		reader = gz
	}

	fa, err := fasta.New(bufio.NewReader(reader))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "bio-align: parse %s", path)
	}
	names := fa.SeqNames()
	seqs := make([][]byte, len(names))
	for i, name := range names {
		n, err := fa.Len(name)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "bio-align: len %s/%s", path, name)
		}
		s, err := fa.Get(name, 0, n)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "bio-align: get %s/%s", path, name)
		}
		seqs[i] = align.EncodeResidues([]byte(s), align.Blosum62Alphabet)
	}
	return names, seqs, nil
}

func parseScoreSize(s string) (align.ScoreSize, error) {
	switch s {
	case "byte":
		return align.ScoreByte, nil
	case "word":
		return align.ScoreWord, nil
	case "both":
		return align.ScoreBoth, nil
	default:
		return 0, errors.Errorf("bio-align: unknown -score-size %q (want byte, word, or both)", s)
	}
}

// alignerCache builds one Aligner per distinct query sequence/scoring
// combination and reuses it across every database sequence a query is run
// against, keyed through profilecache so a repeated query within the same
// process never pays Init's profile-construction cost twice.
type alignerCache struct {
	mu       sync.Mutex
	store    *profilecache.MemStore
	aligners map[uint64]*align.Aligner
}

func newAlignerCache() *alignerCache {
	return &alignerCache{
		store:    profilecache.NewMemStore(),
		aligners: make(map[uint64]*align.Aligner),
	}
}

func (c *alignerCache) getOrInit(query []byte, maxSeqLen int, biasCorrection bool, scoreSize align.ScoreSize) (*align.Aligner, error) {
	key := profilecache.NewKey(query, "blosum62", biasCorrection)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, hit := c.store.Get(key); hit {
		if a, ok := c.aligners[key.Fast]; ok {
			return a, nil
		}
	}

	a := align.NewAligner(maxSeqLen, len(align.Blosum62Alphabet), biasCorrection)
	matrix := align.NewSubstitutionMatrix(align.Blosum62, len(align.Blosum62Alphabet))
	if err := a.Init(query, matrix, scoreSize); err != nil {
		return nil, err
	}
	c.aligners[key.Fast] = a
	c.store.Put(profilecache.Entry{Key: key, Data: []byte{1}})
	return a, nil
}

func run(ctx context.Context, flags cliFlags, results io.Writer) error {
	scoreSize, err := parseScoreSize(flags.scoreSize)
	if err != nil {
		return err
	}

	queryNames, queries, err := loadFasta(ctx, flags.queryPath)
	if err != nil {
		return err
	}
	dbNames, dbSeqs, err := loadFasta(ctx, flags.dbPath)
	if err != nil {
		return err
	}
	log.Debug.Printf("bio-align: loaded %d quer%s, %d database sequence(s)", len(queries), plural(len(queries)), len(dbSeqs))

	if flags.useS3 {
		resultstore.RegisterS3()
	}

	maxSeqLen := 0
	for _, s := range dbSeqs {
		if len(s) > maxSeqLen {
			maxSeqLen = len(s)
		}
	}
	for _, s := range queries {
		if len(s) > maxSeqLen {
			maxSeqLen = len(s)
		}
	}

	cache := newAlignerCache()
	out := bufio.NewWriter(results)
	defer out.Flush()

	for qi, query := range queries {
		aligner, err := cache.getOrInit(query, maxSeqLen, flags.biasCorr, scoreSize)
		if err != nil {
			return errors.Wrapf(err, "bio-align: init query %s", queryNames[qi])
		}
		for di, db := range dbSeqs {
			result, err := aligner.Align(db, uint8(flags.gapOpen), uint8(flags.gapExtend), 0, 0, 0, flags.maskLen)
			if err != nil {
				return errors.Wrapf(err, "bio-align: align %s vs %s", queryNames[qi], dbNames[di])
			}
			if result.Score1 < flags.minScore {
				continue
			}
			fmt.Fprintf(out, "%s\t%s\t%d\t%d-%d\t%d-%d\n",
				queryNames[qi], dbNames[di], result.Score1,
				result.QStart, result.QEnd, result.DbStart, result.DbEnd)

			if flags.resultsDir != "" {
				path := flags.resultsDir + "/" + queryNames[qi] + "--" + dbNames[di] + ".result"
				if err := resultstore.PutResult(ctx, path, result); err != nil {
					return errors.Wrapf(err, "bio-align: store result %s", path)
				}
			}
		}
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func main() {
	flag.Usage = usage
	flags := cliFlags{}
	flag.StringVar(&flags.queryPath, "query", "", "FASTA file of query sequences")
	flag.StringVar(&flags.dbPath, "db", "", "FASTA file of database sequences")
	flag.IntVar(&flags.gapOpen, "gap-open", 10, "gap open penalty")
	flag.IntVar(&flags.gapExtend, "gap-extend", 1, "gap extend penalty")
	flag.StringVar(&flags.scoreSize, "score-size", "both", "byte, word, or both")
	flag.BoolVar(&flags.biasCorr, "bias-correction", true, "apply low-complexity composition bias correction")
	flag.IntVar(&flags.maskLen, "mask-len", 15, "minimum distance from the best alignment for a second-best region to be reported (0 disables)")
	flag.IntVar(&flags.minScore, "min-score", 1, "suppress hits scoring below this")
	flag.StringVar(&flags.resultsDir, "results", "", "directory (local path or, with -s3, an s3:// URL) to write one binary result record per hit")
	flag.BoolVar(&flags.useS3, "s3", false, "register the s3:// file.Implementation so -results can point at S3")

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if flags.queryPath == "" || flags.dbPath == "" {
		usage()
		os.Exit(1)
	}

	if err := run(ctx, flags, os.Stdout); err != nil {
		log.Fatal(err)
	}
}
