package search

import (
	"math"

	"github.com/hupe1980/phrasego/internal/coverage"
	"github.com/hupe1980/phrasego/model"
)

// Default search parameters.
const (
	DefaultBeam            = 200
	DefaultPopLimit        = 1000
	DefaultDiversity       = 0
	DefaultBatchSize       = 64
	DefaultDistortionLimit = 6
)

// Params tunes the search.
type Params struct {
	// Beam is the maximum number of hypotheses kept per stack (per mini-stack
	// for cube pruning). 0 means unbounded.
	Beam int
	// PopLimit bounds the frontier pops per stack in cube pruning.
	// 0 means unbounded.
	PopLimit int
	// Diversity seeds each cube edge with this many extra options.
	Diversity int
	// BatchSize is the number of expansions scored together by Batch.
	BatchSize int
	// DistortionLimit bounds reordering jumps. Negative means unlimited.
	DistortionLimit int
	// Threshold drops hypotheses whose total is more than Threshold below
	// the best of their stack. +Inf disables it.
	Threshold float64
}

// DefaultParams returns the default search parameters.
func DefaultParams() Params {
	return Params{
		Beam:            DefaultBeam,
		PopLimit:        DefaultPopLimit,
		Diversity:       DefaultDiversity,
		BatchSize:       DefaultBatchSize,
		DistortionLimit: DefaultDistortionLimit,
		Threshold:       math.Inf(1),
	}
}

func (p Params) normalized() Params {
	if p.Beam < 0 {
		p.Beam = 0
	}
	if p.PopLimit < 0 {
		p.PopLimit = 0
	}
	if p.Diversity < 0 {
		p.Diversity = 0
	}
	if p.BatchSize <= 0 {
		p.BatchSize = DefaultBatchSize
	}
	if p.Threshold <= 0 || math.IsNaN(p.Threshold) {
		p.Threshold = math.Inf(1)
	}
	return p
}

// CanExtend reports whether span may be translated next from a hypothesis
// with coverage cov whose last translated span is prev.
//
// The span must be disjoint from cov. With a non-negative distortion limit
// the jump from the end of prev may not exceed the limit, and a span that
// does not start at the first gap may not end more than limit positions
// past it.
func (p Params) CanExtend(cov coverage.Bitmap, prev, span model.Span) bool {
	if !cov.CanApply(span) {
		return false
	}
	limit := p.DistortionLimit
	if limit < 0 {
		return true
	}
	if jump := span.Start - (prev.End + 1); jump > limit || -jump > limit {
		return false
	}
	gap := cov.FirstGap()
	if span.Start != gap && span.End-gap > limit {
		return false
	}
	return true
}
