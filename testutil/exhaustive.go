package testutil

import (
	"context"
	"math"

	"github.com/hupe1980/phrasego/model"
)

// boolCoverage adapts a []bool to model.Coverage.
type boolCoverage []bool

func (c boolCoverage) IsCovered(pos int) bool { return c[pos] }

func (c boolCoverage) Len() int { return len(c) }

func (c boolCoverage) Count() int {
	n := 0
	for _, v := range c {
		if v {
			n++
		}
	}
	return n
}

// ExhaustiveBest enumerates every complete derivation without reordering
// limits and returns the best score and its target words.
// It is exponential in the sentence length.
func ExhaustiveBest(sentence *model.Sentence, options map[model.Span][]*model.TranslationOption, scorer model.Scorer) (float64, []string, bool) {
	ctx := context.Background()
	n := sentence.Len()
	init, err := scorer.Initial(ctx, sentence)
	if err != nil {
		return 0, nil, false
	}

	best := math.Inf(-1)
	var bestWords []string
	covered := make(boolCoverage, n)

	var walk func(prev model.Span, state any, score float64, count int, words []string)
	walk = func(prev model.Span, state any, score float64, count int, words []string) {
		if count == n {
			if score > best {
				best = score
				bestWords = append([]string(nil), words...)
			}
			return
		}
		for span, opts := range options {
			free := true
			for i := span.Start; i <= span.End; i++ {
				if covered[i] {
					free = false
					break
				}
			}
			if !free {
				continue
			}
			for _, opt := range opts {
				in := model.EvalInput{
					Sentence:  sentence,
					PrevSpan:  prev,
					Coverage:  covered,
					State:     state,
					Completes: count+span.Len() == n,
				}
				eval, err := scorer.Evaluate(ctx, in, opt)
				if err != nil {
					continue
				}
				for i := span.Start; i <= span.End; i++ {
					covered[i] = true
				}
				walk(span, eval.State, score+eval.Score, count+span.Len(), append(words, opt.Target...))
				for i := span.Start; i <= span.End; i++ {
					covered[i] = false
				}
			}
		}
	}
	walk(model.NoSpan, init.State, init.Score, 0, nil)
	return best, bestWords, !math.IsInf(best, -1)
}
