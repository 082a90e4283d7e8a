package model

import (
	"fmt"
	"strings"
)

// Span is an inclusive, contiguous range of source positions.
type Span struct {
	Start int
	End   int
}

// NoSpan is the span of the empty (root) hypothesis.
var NoSpan = Span{Start: -1, End: -1}

// Len returns the number of positions covered by the span.
func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start + 1
}

// Valid reports whether the span is well formed for a sentence of length n.
func (s Span) Valid(n int) bool {
	return s.Start >= 0 && s.Start <= s.End && s.End < n
}

// String returns a string representation of the Span.
func (s Span) String() string {
	return fmt.Sprintf("[%d..%d]", s.Start, s.End)
}

// Sentence is an immutable sequence of source words.
type Sentence struct {
	ID    int64
	words []string
}

// NewSentence creates a sentence from pre-tokenized words.
// The slice is copied.
func NewSentence(id int64, words []string) *Sentence {
	w := make([]string, len(words))
	copy(w, words)
	return &Sentence{ID: id, words: w}
}

// ParseSentence splits a line on whitespace.
func ParseSentence(id int64, line string) *Sentence {
	return &Sentence{ID: id, words: strings.Fields(line)}
}

// Len returns the number of source words.
func (s *Sentence) Len() int { return len(s.words) }

// Word returns the word at position i.
func (s *Sentence) Word(i int) string { return s.words[i] }

// Words returns the words covered by span.
// The returned slice must be treated as read-only.
func (s *Sentence) Words(span Span) []string {
	return s.words[span.Start : span.End+1]
}

// String joins the source words with single spaces.
func (s *Sentence) String() string {
	return strings.Join(s.words, " ")
}

// TranslationOption attaches a target phrase to one source span.
//
// Options are owned by the PhraseLookup that produced them and are
// referenced, never copied, by hypotheses.
type TranslationOption struct {
	Span   Span
	Source []string
	Target []string

	// Scores holds the raw per-feature phrase scores (log domain).
	Scores []float64

	// Score is the weighted in-isolation score of the phrase pair.
	Score float64

	// FutureScore is the optimistic estimate used by the future-cost table.
	FutureScore float64
}

// TargetString joins the target words with single spaces.
func (o *TranslationOption) TargetString() string {
	return strings.Join(o.Target, " ")
}

// String returns a string representation of the TranslationOption.
func (o *TranslationOption) String() string {
	return fmt.Sprintf("%s %q score=%.4f future=%.4f", o.Span, o.TargetString(), o.Score, o.FutureScore)
}
