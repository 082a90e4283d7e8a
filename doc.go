// Package phrasego is the decoding core of a phrase-based statistical
// machine translation engine.
//
// Given a source sentence, a phrase lookup and a scorer, a Decoder searches
// the space of partial translations for the highest-scoring complete
// translation, and optionally the n best ones.
//
// # Quick Start
//
//	table, _ := phrasetable.Load(ctx, "phrase-table.zst", nil)
//	lang, _ := lm.Load(ctx, "lm.arpa", nil)
//	scorer := feature.NewScorer(lang, feature.DefaultWeights())
//
//	d, _ := phrasego.New(scorer.WithEstimates(table), scorer,
//	    phrasego.WithAlgorithm(phrasego.CubePruningMiniStack),
//	    phrasego.WithNBest(10, true),
//	)
//	defer d.Close()
//
//	r, _ := d.Translate(ctx, model.ParseSentence(0, "das ist ein kleines haus"))
//	fmt.Println(d.FormatBest(r))
//
// # Search Algorithms
//
//   - Normal: one stack per number of covered source words, each pruned to a
//     beam before its hypotheses are expanded.
//   - Batch: the Normal traversal with expansions scored in batches through
//     model.BatchScorer. Results are identical to Normal.
//   - CubePruningMiniStack: stacks split by coverage and last span, filled
//     lazily by cube pruning with a pop limit per stack.
//
// # Concurrency
//
// Translate decodes in the calling goroutine. TranslateAll fans sentences out
// to a bounded worker pool; a failing sentence reports its error in its
// Result and never aborts the others.
//
// A sentence without any complete translation is not an error. Its Result
// has Found set to false.
package phrasego
