// Package model defines core types shared by the decoder and its collaborators.
//
// # Source Types
//
//   - Sentence: immutable source words plus a translation id
//   - Span: inclusive, contiguous range of source positions
//
// # Candidate Types
//
//   - TranslationOption: a target phrase proposed for one span, with its
//     in-isolation score and the future score used by the heuristic
//   - Evaluation: the outcome of scoring an expansion (incremental score,
//     per-feature breakdown, scorer state and recombination key)
//
// # Collaborators
//
// The search core consumes two interfaces and nothing else:
//
//	type PhraseLookup interface {
//	    Lookup(ctx, sentence, span) ([]*TranslationOption, error)
//	    MaxPhraseLength() int
//	}
//
//	type Scorer interface {
//	    Initial(ctx, sentence) (Evaluation, error)
//	    Evaluate(ctx, in, opt) (Evaluation, error)
//	}
//
// Both must be safe for concurrent use by independent searches. Options
// returned by a PhraseLookup are shared by reference and must never be
// mutated after lookup.
package model
