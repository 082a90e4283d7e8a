package model

import "context"

// Coverage is a read-only view of the source positions translated so far.
type Coverage interface {
	IsCovered(pos int) bool
	Count() int
	Len() int
}

// PhraseLookup returns the candidate translations for a span.
// Implementations must be safe for concurrent use.
type PhraseLookup interface {
	// Lookup returns the options covering exactly span, or nil if there are none.
	Lookup(ctx context.Context, sentence *Sentence, span Span) ([]*TranslationOption, error)

	// MaxPhraseLength bounds the source length of any option.
	MaxPhraseLength() int
}

// EvalInput describes the parent side of an expansion.
type EvalInput struct {
	Sentence *Sentence

	// PrevSpan is the span translated by the parent, NoSpan for the root.
	PrevSpan Span

	// Coverage is the parent coverage, before the option is applied.
	Coverage Coverage

	// State is the scorer state carried by the parent.
	State any

	// Completes is true when the option covers the last untranslated positions.
	Completes bool
}

// Evaluation is the result of scoring one expansion.
type Evaluation struct {
	// Score is the incremental weighted score added to the parent score.
	Score float64

	// Breakdown holds incremental per-feature scores. It may be nil.
	Breakdown []float64

	// State is handed back to the scorer when the successor is expanded.
	State any

	// Key distinguishes successors that must not be recombined even when
	// their coverage is identical (e.g. n-gram context).
	Key string
}

// Scorer scores expansions. It must be a pure function of its inputs and
// safe for concurrent use.
type Scorer interface {
	// Initial returns the evaluation of the empty hypothesis.
	Initial(ctx context.Context, sentence *Sentence) (Evaluation, error)

	// Evaluate scores applying opt on top of the parent described by in.
	Evaluate(ctx context.Context, in EvalInput, opt *TranslationOption) (Evaluation, error)

	// FeatureNames labels the entries of Evaluation.Breakdown.
	FeatureNames() []string
}

// EvalRequest is one element of a batched evaluation.
type EvalRequest struct {
	Input  EvalInput
	Option *TranslationOption
}

// BatchScorer is implemented by scorers that amortize work across several
// expansions. Results must be positionally aligned with the requests.
type BatchScorer interface {
	Scorer
	EvaluateBatch(ctx context.Context, reqs []EvalRequest) ([]Evaluation, error)
}
