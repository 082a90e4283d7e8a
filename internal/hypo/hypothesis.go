package hypo

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hupe1980/phrasego/internal/coverage"
	"github.com/hupe1980/phrasego/model"
)

// ErrInvalidExpansion is returned when an option overlaps the parent coverage.
var ErrInvalidExpansion = errors.New("hypo: invalid expansion")

// Estimator returns the future estimate for the positions left uncovered.
// futurecost.Table satisfies it.
type Estimator interface {
	Estimate(cov model.Coverage) float64
}

// Hypothesis is one partial or complete translation.
// It is never modified after Root or Expand returns.
type Hypothesis struct {
	ID   ID
	Prev ID

	Coverage coverage.Bitmap
	Span     model.Span
	Option   *model.TranslationOption

	// Score is the accumulated model score so far.
	Score float64
	// Breakdown holds the accumulated per-feature scores.
	Breakdown []float64
	// Future is the estimate for the uncovered positions.
	Future float64

	// State is the scorer state handed to successors.
	State any
	// Key is the scorer recombination key.
	Key string

	recombKey string
}

// Total returns the score used for ranking: actual score plus estimate.
func (h *Hypothesis) Total() float64 {
	return h.Score + h.Future
}

// Complete reports whether every source position is covered.
func (h *Hypothesis) Complete() bool {
	return h.Coverage.Full()
}

// Viable reports whether the hypothesis can still be completed.
func (h *Hypothesis) Viable() bool {
	return !math.IsInf(h.Future, -1)
}

// RecombinationKey identifies the equivalence class of the hypothesis.
func (h *Hypothesis) RecombinationKey() string {
	return h.recombKey
}

// Input describes the hypothesis to a scorer as the parent of an expansion.
func (h *Hypothesis) Input(sentence *model.Sentence, opt *model.TranslationOption) model.EvalInput {
	return model.EvalInput{
		Sentence:  sentence,
		PrevSpan:  h.Span,
		Coverage:  h.Coverage,
		State:     h.State,
		Completes: h.Coverage.Count()+opt.Span.Len() == h.Coverage.Len(),
	}
}

// String returns a string representation of the Hypothesis.
func (h *Hypothesis) String() string {
	target := ""
	if h.Option != nil {
		target = h.Option.TargetString()
	}
	return fmt.Sprintf("hypo#%d<-%d %s %s %q score=%.4f future=%.4f",
		h.ID, h.Prev, h.Coverage, h.Span, target, h.Score, h.Future)
}

func recombinationKey(cov coverage.Bitmap, key string) string {
	return cov.Key() + "\x00" + key
}

// Root allocates the empty hypothesis of a sentence of length n.
func Root(a *Arena, n int, eval model.Evaluation, est Estimator) (ID, error) {
	id, h, err := a.alloc()
	if err != nil {
		return None, err
	}
	h.Prev = None
	h.Coverage = coverage.New(n)
	h.Span = model.NoSpan
	h.Score = eval.Score
	h.Breakdown = append([]float64(nil), eval.Breakdown...)
	h.Future = est.Estimate(h.Coverage)
	h.State = eval.State
	h.Key = eval.Key
	h.recombKey = recombinationKey(h.Coverage, eval.Key)
	return id, nil
}

// Expand applies opt to parent and allocates the successor.
// The option span must be disjoint from the parent coverage.
func Expand(a *Arena, parent ID, opt *model.TranslationOption, eval model.Evaluation, est Estimator) (ID, error) {
	p := a.Get(parent)
	if p == nil {
		return None, fmt.Errorf("%w: unknown parent %d", ErrInvalidExpansion, parent)
	}
	cov, err := p.Coverage.Union(opt.Span)
	if err != nil {
		return None, fmt.Errorf("%w: %w", ErrInvalidExpansion, err)
	}

	id, h, err := a.alloc()
	if err != nil {
		return None, err
	}
	// alloc may have grown the arena; p stays valid because segments never move.
	h.Prev = parent
	h.Coverage = cov
	h.Span = opt.Span
	h.Option = opt
	h.Score = p.Score + eval.Score
	h.Breakdown = addBreakdown(p.Breakdown, eval.Breakdown)
	h.Future = est.Estimate(cov)
	h.State = eval.State
	h.Key = eval.Key
	h.recombKey = recombinationKey(cov, eval.Key)
	return id, nil
}

func addBreakdown(base, delta []float64) []float64 {
	if len(base) == 0 && len(delta) == 0 {
		return nil
	}
	out := make([]float64, max(len(base), len(delta)))
	copy(out, base)
	for i, v := range delta {
		out[i] += v
	}
	return out
}

// Chain returns the hypotheses from the first expansion after the root up to
// id, in source-to-target application order. The root is not included.
func Chain(a *Arena, id ID) []*Hypothesis {
	var chain []*Hypothesis
	for h := a.Get(id); h != nil && h.Prev != None; h = a.Get(h.Prev) {
		chain = append(chain, h)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Target returns the target words produced along the chain ending at id.
func Target(a *Arena, id ID) []string {
	var words []string
	for _, h := range Chain(a, id) {
		words = append(words, h.Option.Target...)
	}
	return words
}

// TargetString joins Target with single spaces.
func TargetString(a *Arena, id ID) string {
	return strings.Join(Target(a, id), " ")
}
