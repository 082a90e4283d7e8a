package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/hupe1980/phrasego/model"
)

// ErrScorer is returned by a Scorer configured to fail.
var ErrScorer = errors.New("testutil: scorer failure")

// Scorer adds a linear distortion penalty and optional bigram bonuses to the
// phrase score. Its recombination key is the last target word and the end of
// the last span, which makes recombination exact.
type Scorer struct {
	DistortionWeight float64
	// Bigrams adds a bonus when the key "prev next" spans a phrase boundary.
	Bigrams map[string]float64
	// FailAfter makes Evaluate fail once that many calls were made. 0 disables it.
	FailAfter int64

	calls atomic.Int64
}

type scorerState struct {
	last string
}

// NewScorer creates a Scorer with the given distortion weight.
func NewScorer(distortionWeight float64) *Scorer {
	return &Scorer{DistortionWeight: distortionWeight}
}

// Calls returns the number of Evaluate calls made so far.
func (s *Scorer) Calls() int64 { return s.calls.Load() }

// FeatureNames implements model.Scorer.
func (s *Scorer) FeatureNames() []string { return []string{"phrase", "distortion", "bigram"} }

// Initial implements model.Scorer.
func (s *Scorer) Initial(context.Context, *model.Sentence) (model.Evaluation, error) {
	return model.Evaluation{
		Breakdown: []float64{0, 0, 0},
		State:     scorerState{last: "<s>"},
		Key:       "<s>|-1",
	}, nil
}

// Evaluate implements model.Scorer.
func (s *Scorer) Evaluate(_ context.Context, in model.EvalInput, opt *model.TranslationOption) (model.Evaluation, error) {
	if n := s.calls.Add(1); s.FailAfter > 0 && n > s.FailAfter {
		return model.Evaluation{}, ErrScorer
	}
	st, _ := in.State.(scorerState)

	jump := opt.Span.Start - (in.PrevSpan.End + 1)
	if jump < 0 {
		jump = -jump
	}
	distortion := -s.DistortionWeight * float64(jump)

	var bigram float64
	last := st.last
	if len(opt.Target) > 0 {
		bigram = s.Bigrams[last+" "+opt.Target[0]]
		last = opt.Target[len(opt.Target)-1]
	}

	return model.Evaluation{
		Score:     opt.Score + distortion + bigram,
		Breakdown: []float64{opt.Score, distortion, bigram},
		State:     scorerState{last: last},
		Key:       fmt.Sprintf("%s|%d", last, opt.Span.End),
	}, nil
}

// BatchScorer wraps Scorer with a model.BatchScorer implementation.
type BatchScorer struct {
	*Scorer
	batches atomic.Int64
}

// NewBatchScorer wraps s.
func NewBatchScorer(s *Scorer) *BatchScorer {
	return &BatchScorer{Scorer: s}
}

// Batches returns the number of EvaluateBatch calls made so far.
func (b *BatchScorer) Batches() int64 { return b.batches.Load() }

// EvaluateBatch implements model.BatchScorer.
func (b *BatchScorer) EvaluateBatch(ctx context.Context, reqs []model.EvalRequest) ([]model.Evaluation, error) {
	b.batches.Add(1)
	out := make([]model.Evaluation, len(reqs))
	for i, req := range reqs {
		eval, err := b.Evaluate(ctx, req.Input, req.Option)
		if err != nil {
			return nil, err
		}
		out[i] = eval
	}
	return out, nil
}
