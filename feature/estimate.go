package feature

import (
	"context"

	"github.com/hupe1980/phrasego/model"
)

// estimatingLookup rescores the future estimate of every option with the
// context-free part of the scorer.
type estimatingLookup struct {
	model.PhraseLookup
	scorer *Scorer
}

// WithEstimates wraps lookup so option FutureScores include the language
// model estimate and the word penalty. Options are copied, the wrapped
// lookup's options are never modified.
func (s *Scorer) WithEstimates(lookup model.PhraseLookup) model.PhraseLookup {
	return &estimatingLookup{PhraseLookup: lookup, scorer: s}
}

func (l *estimatingLookup) Lookup(ctx context.Context, sentence *model.Sentence, span model.Span) ([]*model.TranslationOption, error) {
	opts, err := l.PhraseLookup.Lookup(ctx, sentence, span)
	if err != nil || len(opts) == 0 {
		return opts, err
	}
	out := make([]*model.TranslationOption, len(opts))
	for i, opt := range opts {
		o := *opt
		o.FutureScore = l.scorer.Estimate(opt)
		out[i] = &o
	}
	return out, nil
}

// Estimate is the context-free score of an option.
func (s *Scorer) Estimate(opt *model.TranslationOption) float64 {
	var f [4]float64
	f[0] = opt.Score
	if s.lm != nil {
		f[1] = s.lm.Estimate(opt.Target)
	}
	f[3] = -float64(len(opt.Target))
	return s.weights.dot(f)
}
