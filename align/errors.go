// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package align

import "github.com/pkg/errors"

// The error kinds below correspond to spec.md section 7. Callers should
// compare with errors.Cause(err) == ErrXxx (or errors.Is, on Go versions
// where pkg/errors interoperates with it) rather than string-matching.
var (
	// ErrNotInitialized is returned when Align is called before Init.
	ErrNotInitialized = errors.New("align: Align called before Init")

	// ErrScoreSizeInsufficient is returned when Init is asked for a score
	// width that Align later needs but wasn't built.
	ErrScoreSizeInsufficient = errors.New("align: score_size insufficient for required width")

	// ErrSaturation is returned when the byte kernel's score reached 255
	// and no word profile is available to retry with.
	ErrSaturation = errors.New("align: byte kernel saturated and no word profile was built; pass ScoreBoth or ScoreWord to Init")

	// ErrInternalInconsistency is returned by Align when the reverse
	// endpoint-recovery pass cannot reproduce the forward pass's best score
	// (including when that reverse byte pass saturates). Traceback has no
	// error path and never returns it.
	ErrInternalInconsistency = errors.New("align: internal inconsistency between forward and reverse passes")
)
