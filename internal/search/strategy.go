package search

import (
	"context"
	"fmt"

	"github.com/hupe1980/phrasego/internal/futurecost"
	"github.com/hupe1980/phrasego/internal/hypo"
	"github.com/hupe1980/phrasego/internal/nbest"
	"github.com/hupe1980/phrasego/model"
)

// Strategy is one search over one sentence.
// A Strategy is not safe for concurrent use.
type Strategy interface {
	// Decode runs the search to completion.
	Decode(ctx context.Context) error
	// Best returns the best complete hypothesis, if any.
	Best() (hypo.ID, bool)
	// AddInitialPaths seeds n-best extraction with every complete hypothesis.
	AddInitialPaths(c *nbest.Contenders)
	// Arena returns the storage of every hypothesis created by the search.
	Arena() *hypo.Arena
	// Arcs returns the recombination alternatives.
	Arcs() *hypo.ArcLists
	// Stats returns the search counters.
	Stats() Stats
}

// Stats counts the work done by a search.
type Stats struct {
	Hypotheses int // allocated hypotheses, root included
	Expansions int // scorer evaluations
	Batches    int // EvaluateBatch calls
	Pops       int // cube frontier pops
	Recombined int
	Pruned     int
	Discarded  int
	FinalStack int // complete hypotheses kept
}

func (s *Stats) addStack(st hypo.StackStats) {
	s.Recombined += st.Recombined
	s.Pruned += st.Pruned
	s.Discarded += st.Discarded
}

// Inputs are the per-sentence collaborators of a search.
type Inputs struct {
	Lattice *Lattice
	Table   *futurecost.Table
	Scorer  model.Scorer
	// Arena is optional; a fresh arena is used when nil.
	Arena  *hypo.Arena
	Params Params
}

// New constructs the strategy for alg.
func New(alg Algorithm, in Inputs) (Strategy, error) {
	if in.Lattice == nil || in.Table == nil || in.Scorer == nil {
		return nil, fmt.Errorf("search: lattice, table and scorer are required")
	}
	b := newBase(in)
	switch alg {
	case Normal:
		return newNormal(b), nil
	case Batch:
		return newBatch(b), nil
	case CubePruningMiniStack:
		return newCubePruning(b), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}
}

// base holds what every strategy shares.
type base struct {
	sentence *model.Sentence
	lattice  *Lattice
	table    *futurecost.Table
	scorer   model.Scorer
	arena    *hypo.Arena
	arcs     *hypo.ArcLists
	params   Params

	stats Stats
}

func newBase(in Inputs) *base {
	a := in.Arena
	if a == nil {
		a = hypo.NewArena()
	}
	return &base{
		sentence: in.Lattice.Sentence(),
		lattice:  in.Lattice,
		table:    in.Table,
		scorer:   in.Scorer,
		arena:    a,
		arcs:     hypo.NewArcLists(a),
		params:   in.Params.normalized(),
	}
}

func (b *base) Arena() *hypo.Arena { return b.arena }

func (b *base) Arcs() *hypo.ArcLists { return b.arcs }

func (b *base) newStack() *hypo.Stack {
	return hypo.NewStack(b.arena, b.arcs, b.params.Beam, hypo.WithThreshold(b.params.Threshold))
}

func (b *base) root(ctx context.Context) (hypo.ID, error) {
	eval, err := b.scorer.Initial(ctx, b.sentence)
	if err != nil {
		return hypo.None, fmt.Errorf("search: initial state: %w", err)
	}
	return hypo.Root(b.arena, b.sentence.Len(), eval, b.table)
}

// evaluate scores opt applied to parent.
func (b *base) evaluate(ctx context.Context, parent *hypo.Hypothesis, opt *model.TranslationOption) (model.Evaluation, error) {
	b.stats.Expansions++
	eval, err := b.scorer.Evaluate(ctx, parent.Input(b.sentence, opt), opt)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("search: evaluate %s: %w", opt.Span, err)
	}
	return eval, nil
}

// expand scores and allocates the successor of parent.
func (b *base) expand(ctx context.Context, parent hypo.ID, opt *model.TranslationOption) (hypo.ID, error) {
	eval, err := b.evaluate(ctx, b.arena.Get(parent), opt)
	if err != nil {
		return hypo.None, err
	}
	return hypo.Expand(b.arena, parent, opt, eval, b.table)
}

// extensions calls fn for every span that may follow h, in lattice order.
func (b *base) extensions(h *hypo.Hypothesis, fn func(span model.Span) error) error {
	for _, span := range b.lattice.Spans() {
		if !b.params.CanExtend(h.Coverage, h.Span, span) {
			continue
		}
		if err := fn(span); err != nil {
			return err
		}
	}
	return nil
}

func (b *base) finish(stats Stats) Stats {
	stats.Hypotheses = b.arena.Len()
	return stats
}
