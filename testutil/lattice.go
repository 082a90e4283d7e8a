package testutil

import (
	"context"
	"fmt"

	"github.com/hupe1980/phrasego/model"
)

// Vocabulary is the target vocabulary of synthetic lattices.
var Vocabulary = []string{"a", "b", "c", "d", "e"}

// Option builds a translation option whose future score equals its score.
func Option(start, end int, score float64, target ...string) *model.TranslationOption {
	return &model.TranslationOption{
		Span:        model.Span{Start: start, End: end},
		Target:      target,
		Scores:      []float64{score},
		Score:       score,
		FutureScore: score,
	}
}

// Sentence returns a sentence of n distinct source words.
func Sentence(n int) *model.Sentence {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return model.NewSentence(1, words)
}

// Lattice builds a random lattice over a sentence of n words. Every word gets
// perSpan single-word options, so the sentence is always translatable; longer
// spans up to maxLen words get options with probability one half.
func (r *RNG) Lattice(n, maxLen, perSpan int) (*model.Sentence, map[model.Span][]*model.TranslationOption) {
	sentence := Sentence(n)
	options := make(map[model.Span][]*model.TranslationOption)
	for start := 0; start < n; start++ {
		for end := start; end < n && end-start < maxLen; end++ {
			if end > start && r.Float64() < 0.5 {
				continue
			}
			span := model.Span{Start: start, End: end}
			for k := 0; k < perSpan; k++ {
				target := make([]string, 1+r.Intn(span.Len()))
				for i := range target {
					target[i] = r.Pick(Vocabulary)
				}
				opt := Option(start, end, -r.Float64()*float64(span.Len()), target...)
				opt.Source = sentence.Words(span)
				options[span] = append(options[span], opt)
			}
		}
	}
	return sentence, options
}

// Lookup is a model.PhraseLookup over a fixed option map.
type Lookup struct {
	Options   map[model.Span][]*model.TranslationOption
	MaxLength int
	// Err, when set, is returned by every Lookup call.
	Err error
}

// Lookup returns the options of span.
func (l *Lookup) Lookup(_ context.Context, _ *model.Sentence, span model.Span) ([]*model.TranslationOption, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Options[span], nil
}

// MaxPhraseLength returns the configured maximum, 0 meaning unbounded.
func (l *Lookup) MaxPhraseLength() int { return l.MaxLength }
