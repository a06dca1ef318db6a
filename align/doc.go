// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package align implements a striped, vectorized Smith-Waterman local
// alignment engine for protein sequences and PSSM profiles, following
// Farrar's striped SIMD layout with affine gap penalties.
//
// An Aligner owns a fixed-size Workspace sized at construction time for the
// longest query it will ever see; Init() rebuilds the query profile for a
// new query, and Align() scores a single database sequence against it.  An
// Aligner is not safe for concurrent use: callers that want parallelism
// should construct one Aligner per goroutine.
package align
