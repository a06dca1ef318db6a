// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package resultstore persists align.Result records to a path that may be
// local or, once RegisterS3 has been called, an s3:// URL, checksumming
// each record so a truncated or corrupted write is caught on read rather
// than silently returned as a plausible-looking alignment.
package resultstore

import (
	"context"
	"encoding/binary"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/blainsmith/seahash"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
	"github.com/pkg/errors"

	"github.com/grailbio/bio/align"
)

// RegisterS3 makes paths of the form "s3://bucket/key" usable with
// file.Open/file.Create, following the same registration idiom the
// teacher's own S3-backed tests use.
func RegisterS3() {
	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

// Checksum computes a seahash digest over a Result's numeric fields and
// packed CIGAR, used both to detect corruption on read and, as a side
// effect, as a cheap dedup key for identical alignments.
func Checksum(r *align.Result) uint64 {
	h := seahash.New()
	var buf [8]byte
	writeInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}
	writeInt(r.Score1)
	writeInt(r.QStart)
	writeInt(r.QEnd)
	writeInt(r.DbStart)
	writeInt(r.DbEnd)
	writeInt(r.Score2)
	writeInt(r.RefEnd2)
	for _, token := range r.Cigar {
		binary.LittleEndian.PutUint32(buf[:4], token)
		_, _ = h.Write(buf[:4])
	}
	return h.Sum64()
}

// recordFormatVersion guards against silently misinterpreting a record
// written by an incompatible future version of this package.
const recordFormatVersion = 1

// PutResult writes r to path (local or, if RegisterS3 was called, an
// s3:// URL), prefixed with a format version and Checksum(r) so GetResult
// can validate it came back intact.
func PutResult(ctx context.Context, path string, r *align.Result) error {
	f, err := file.Create(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "resultstore: create %s", path)
	}
	w := f.Writer(ctx)
	if err := writeRecord(w, r); err != nil {
		_ = f.Close(ctx)
		return errors.Wrapf(err, "resultstore: write %s", path)
	}
	return errors.Wrapf(f.Close(ctx), "resultstore: close %s", path)
}

// GetResult reads back a Result written by PutResult, returning an error
// if the stored checksum doesn't match the decoded record.
func GetResult(ctx context.Context, path string) (*align.Result, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "resultstore: open %s", path)
	}
	defer func() { _ = f.Close(ctx) }()
	return readRecord(f.Reader(ctx))
}
