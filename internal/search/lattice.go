package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/hupe1980/phrasego/model"
)

// Lattice holds the candidate options of one sentence, grouped by span.
// It is read-only once built.
type Lattice struct {
	sentence *model.Sentence
	bySpan   map[model.Span][]*model.TranslationOption
	spans    []model.Span
	options  int
}

// NewLattice creates a lattice from pre-computed options. Options of each
// span are ordered by Score, best first; the input slices are not modified.
// Spans outside the sentence or without options are ignored.
func NewLattice(sentence *model.Sentence, bySpan map[model.Span][]*model.TranslationOption) *Lattice {
	l := &Lattice{
		sentence: sentence,
		bySpan:   make(map[model.Span][]*model.TranslationOption, len(bySpan)),
	}
	for span, opts := range bySpan {
		if len(opts) == 0 || !span.Valid(sentence.Len()) {
			continue
		}
		sorted := append([]*model.TranslationOption(nil), opts...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
		l.bySpan[span] = sorted
		l.spans = append(l.spans, span)
		l.options += len(sorted)
	}
	sort.Slice(l.spans, func(i, j int) bool {
		if l.spans[i].Start != l.spans[j].Start {
			return l.spans[i].Start < l.spans[j].Start
		}
		return l.spans[i].End < l.spans[j].End
	})
	return l
}

// BuildLattice queries lookup for every span up to its maximum phrase length.
func BuildLattice(ctx context.Context, lookup model.PhraseLookup, sentence *model.Sentence) (*Lattice, error) {
	n := sentence.Len()
	maxLen := lookup.MaxPhraseLength()
	if maxLen <= 0 || maxLen > n {
		maxLen = n
	}

	bySpan := make(map[model.Span][]*model.TranslationOption)
	for start := 0; start < n; start++ {
		for end := start; end < n && end-start < maxLen; end++ {
			span := model.Span{Start: start, End: end}
			opts, err := lookup.Lookup(ctx, sentence, span)
			if err != nil {
				return nil, fmt.Errorf("search: lookup %s: %w", span, err)
			}
			if len(opts) > 0 {
				bySpan[span] = opts
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return NewLattice(sentence, bySpan), nil
}

// Sentence returns the source sentence.
func (l *Lattice) Sentence() *model.Sentence { return l.sentence }

// Options returns the options of span, best first.
func (l *Lattice) Options(span model.Span) []*model.TranslationOption {
	return l.bySpan[span]
}

// Spans returns every span with at least one option, ordered by start then end.
func (l *Lattice) Spans() []model.Span { return l.spans }

// BySpan exposes the grouped options, e.g. for futurecost.Build.
func (l *Lattice) BySpan() map[model.Span][]*model.TranslationOption { return l.bySpan }

// Len returns the total number of options.
func (l *Lattice) Len() int { return l.options }
