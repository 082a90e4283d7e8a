package search

import (
	"context"
	"fmt"

	"github.com/hupe1980/phrasego/internal/hypo"
	"github.com/hupe1980/phrasego/model"
)

// batch follows the normal traversal but defers scoring until BatchSize
// expansions are pending. Successors are inserted in the order normal would
// insert them, so both produce the same stacks.
type batch struct {
	*normal
	batcher model.BatchScorer // nil when the scorer has no batch support
}

func newBatch(b *base) *batch {
	s := &batch{normal: newNormal(b)}
	if bs, ok := b.scorer.(model.BatchScorer); ok {
		s.batcher = bs
	}
	return s
}

func (s *batch) Decode(ctx context.Context) error {
	sc := getScratch()
	defer putScratch(sc)

	root, err := s.root(ctx)
	if err != nil {
		return err
	}
	s.stacks[0].Add(root)

	last := len(s.stacks) - 1
	for c, stack := range s.stacks {
		if err := ctx.Err(); err != nil {
			return err
		}
		stack.Prune()
		if c == last {
			break
		}
		for _, id := range stack.Sorted() {
			if err := s.collect(ctx, sc, id); err != nil {
				return err
			}
		}
		if err := s.flush(ctx, sc); err != nil {
			return err
		}
	}
	return nil
}

// collect queues every expansion of parent, flushing full batches.
func (s *batch) collect(ctx context.Context, sc *scratch, parent hypo.ID) error {
	h := s.arena.Get(parent)
	return s.extensions(h, func(span model.Span) error {
		for _, opt := range s.lattice.Options(span) {
			sc.parents = append(sc.parents, parent)
			sc.requests = append(sc.requests, model.EvalRequest{Input: h.Input(s.sentence, opt), Option: opt})
			if len(sc.requests) >= s.params.BatchSize {
				if err := s.flush(ctx, sc); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// flush scores the pending expansions and inserts the successors.
func (s *batch) flush(ctx context.Context, sc *scratch) error {
	if len(sc.requests) == 0 {
		return nil
	}
	defer sc.resetBatch()

	evals, err := s.evaluateBatch(ctx, sc.requests)
	if err != nil {
		return err
	}
	for i, req := range sc.requests {
		id, err := hypo.Expand(s.arena, sc.parents[i], req.Option, evals[i], s.table)
		if err != nil {
			return err
		}
		s.add(id)
	}
	return nil
}

func (s *batch) evaluateBatch(ctx context.Context, reqs []model.EvalRequest) ([]model.Evaluation, error) {
	s.stats.Expansions += len(reqs)
	if s.batcher != nil {
		s.stats.Batches++
		evals, err := s.batcher.EvaluateBatch(ctx, reqs)
		if err != nil {
			return nil, fmt.Errorf("search: evaluate batch of %d: %w", len(reqs), err)
		}
		if len(evals) != len(reqs) {
			return nil, fmt.Errorf("search: evaluate batch: got %d results for %d requests", len(evals), len(reqs))
		}
		return evals, nil
	}

	evals := make([]model.Evaluation, len(reqs))
	for i, req := range reqs {
		eval, err := s.scorer.Evaluate(ctx, req.Input, req.Option)
		if err != nil {
			return nil, fmt.Errorf("search: evaluate %s: %w", req.Option.Span, err)
		}
		evals[i] = eval
	}
	return evals, nil
}
