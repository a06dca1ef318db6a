// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package resultstore

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/grailbio/bio/align"
)

// writeRecord encodes the on-disk layout: version, checksum, the seven
// scalar Result fields, then the CIGAR token count and tokens themselves.
func writeRecord(w io.Writer, r *align.Result) error {
	header := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(header[0:4], recordFormatVersion)
	binary.LittleEndian.PutUint64(header[4:12], Checksum(r))
	if _, err := w.Write(header); err != nil {
		return err
	}

	fields := []int{r.Score1, r.QStart, r.QEnd, r.DbStart, r.DbEnd, r.Score2, r.RefEnd2}
	buf := make([]byte, 8*len(fields))
	for i, v := range fields {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
	}
	if _, err := w.Write(buf); err != nil {
		return err
	}

	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(r.Cigar)))
	if _, err := w.Write(countBuf[:]); err != nil {
		return err
	}
	cigarBuf := make([]byte, 4*len(r.Cigar))
	for i, token := range r.Cigar {
		binary.LittleEndian.PutUint32(cigarBuf[i*4:], token)
	}
	_, err := w.Write(cigarBuf)
	return err
}

// readRecord is writeRecord's inverse, rejecting the record outright if
// its checksum doesn't match the decoded fields.
func readRecord(r io.Reader) (*align.Result, error) {
	header := make([]byte, 4+8)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, errors.Wrap(err, "resultstore: read header")
	}
	version := binary.LittleEndian.Uint32(header[0:4])
	if version != recordFormatVersion {
		return nil, errors.Errorf("resultstore: unsupported record version %d", version)
	}
	wantChecksum := binary.LittleEndian.Uint64(header[4:12])

	const numFields = 7
	buf := make([]byte, 8*numFields)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "resultstore: read fields")
	}
	fields := make([]int, numFields)
	for i := range fields {
		fields[i] = int(int64(binary.LittleEndian.Uint64(buf[i*8:])))
	}

	var countBuf [4]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, errors.Wrap(err, "resultstore: read cigar count")
	}
	count := binary.LittleEndian.Uint32(countBuf[:])
	var cigar []uint32
	if count > 0 {
		cigarBuf := make([]byte, 4*count)
		if _, err := io.ReadFull(r, cigarBuf); err != nil {
			return nil, errors.Wrap(err, "resultstore: read cigar")
		}
		cigar = make([]uint32, count)
		for i := range cigar {
			cigar[i] = binary.LittleEndian.Uint32(cigarBuf[i*4:])
		}
	}

	result := &align.Result{
		Score1:  fields[0],
		QStart:  fields[1],
		QEnd:    fields[2],
		DbStart: fields[3],
		DbEnd:   fields[4],
		Score2:  fields[5],
		RefEnd2: fields[6],
		Cigar:   cigar,
	}
	if got := Checksum(result); got != wantChecksum {
		return nil, errors.Errorf("resultstore: checksum mismatch: got %x want %x", got, wantChecksum)
	}
	return result, nil
}
