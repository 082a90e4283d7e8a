// Package feature provides the weighted log-linear scorer used by the
// decoder and the output post-processors.
package feature

import (
	"context"
	"strconv"

	"github.com/hupe1980/phrasego/lm"
	"github.com/hupe1980/phrasego/model"
)

// Feature names, in breakdown order.
const (
	Phrase      = "phrase"
	LM          = "lm"
	Distortion  = "distortion"
	WordPenalty = "word_penalty"
)

var featureNames = []string{Phrase, LM, Distortion, WordPenalty}

// Weights scales each feature.
type Weights struct {
	Phrase      float64
	LM          float64
	Distortion  float64
	WordPenalty float64
}

// DefaultWeights returns the weights used when none are configured.
func DefaultWeights() Weights {
	return Weights{Phrase: 1, LM: 0.5, Distortion: 0.3, WordPenalty: -1}
}

// WeightsFromMap reads weights keyed by feature name. Missing keys keep
// their default.
func WeightsFromMap(m map[string]float64) Weights {
	w := DefaultWeights()
	for name, v := range m {
		switch name {
		case Phrase:
			w.Phrase = v
		case LM:
			w.LM = v
		case Distortion:
			w.Distortion = v
		case WordPenalty:
			w.WordPenalty = v
		}
	}
	return w
}

func (w Weights) dot(f [4]float64) float64 {
	return w.Phrase*f[0] + w.LM*f[1] + w.Distortion*f[2] + w.WordPenalty*f[3]
}

// state is what a hypothesis carries for this scorer.
type state struct {
	lm lm.State
}

// Scorer combines the phrase score of the option, an n-gram language model,
// linear distortion and a word penalty. The language model is optional.
//
// Scorer is stateless between calls and safe for concurrent use.
type Scorer struct {
	lm      *lm.Model
	weights Weights
}

var _ model.BatchScorer = (*Scorer)(nil)

// NewScorer creates a scorer. lang may be nil.
func NewScorer(lang *lm.Model, weights Weights) *Scorer {
	return &Scorer{lm: lang, weights: weights}
}

// FeatureNames implements model.Scorer.
func (s *Scorer) FeatureNames() []string {
	return featureNames
}

// Weights returns the feature weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Initial implements model.Scorer.
func (s *Scorer) Initial(_ context.Context, _ *model.Sentence) (model.Evaluation, error) {
	st := state{}
	if s.lm != nil {
		st.lm = s.lm.Begin()
	}
	return model.Evaluation{
		Breakdown: make([]float64, len(featureNames)),
		State:     st,
		Key:       key(st, model.NoSpan),
	}, nil
}

// Evaluate implements model.Scorer.
func (s *Scorer) Evaluate(ctx context.Context, in model.EvalInput, opt *model.TranslationOption) (model.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return model.Evaluation{}, err
	}
	return s.evaluate(in, opt), nil
}

// EvaluateBatch implements model.BatchScorer.
func (s *Scorer) EvaluateBatch(ctx context.Context, reqs []model.EvalRequest) ([]model.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	evals := make([]model.Evaluation, len(reqs))
	for i, req := range reqs {
		evals[i] = s.evaluate(req.Input, req.Option)
	}
	return evals, nil
}

func (s *Scorer) evaluate(in model.EvalInput, opt *model.TranslationOption) model.Evaluation {
	prev, _ := in.State.(state)

	var f [4]float64
	f[0] = opt.Score
	next := state{}
	if s.lm != nil {
		f[1], next.lm = s.lm.Score(prev.lm, opt.Target, in.Completes)
	}
	f[2] = -float64(DistortionCost(in.PrevSpan, opt.Span))
	f[3] = -float64(len(opt.Target))

	return model.Evaluation{
		Score:     s.weights.dot(f),
		Breakdown: f[:],
		State:     next,
		Key:       key(next, opt.Span),
	}
}

// DistortionCost is the jump width from the end of prev to the start of
// next. The root's NoSpan ends at -1, so starting at 0 costs nothing.
func DistortionCost(prev, next model.Span) int {
	d := next.Start - (prev.End + 1)
	if d < 0 {
		return -d
	}
	return d
}

// key combines the language model context and the end of the last span;
// the two determine every future score.
func key(st state, last model.Span) string {
	return st.lm.Key() + "|" + strconv.Itoa(last.End)
}
