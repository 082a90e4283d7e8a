// Package search implements the stack decoding strategies.
//
// Three strategies are available:
//
//   - Normal: one stack per covered-word count. Each stack is pruned and
//     every surviving hypothesis is expanded with every applicable option.
//   - Batch: the Normal traversal, with expansions scored in groups through
//     model.BatchScorer when the scorer supports it.
//   - CubePruningMiniStack: stacks are split into mini-stacks by coverage and
//     last translated span. Successors are produced lazily from a frontier of
//     (hypothesis, option) grid positions, bounded by a pop limit.
//
// All strategies share one reordering rule (see Params.DistortionLimit) and
// report the best complete hypothesis via Best. An empty final stack means
// no translation was found, which is not an error.
package search
