// Package hypo implements the hypothesis graph shared by every search strategy.
//
// # Arena
//
// All hypotheses of one search live in an Arena and are addressed by ID.
// The predecessor of a hypothesis is an ID into the same arena, never an
// owning reference. Storage is segmented and append-only, so a *Hypothesis
// obtained from Get stays valid until Release is called. The whole graph is
// dropped in bulk when the search ends.
//
// # Recombination
//
// Two hypotheses with identical coverage and identical scorer key are
// interchangeable for the rest of the search. A Stack keeps only the higher
// scoring one and records the other as an arc of the winner, which is what
// n-best extraction walks later.
//
// # Concurrency Model
//
// None of the types in this package are safe for concurrent use. A search
// and its arena are owned by a single goroutine.
package hypo
