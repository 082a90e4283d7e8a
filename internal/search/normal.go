package search

import (
	"context"

	"github.com/hupe1980/phrasego/internal/hypo"
	"github.com/hupe1980/phrasego/internal/nbest"
	"github.com/hupe1980/phrasego/model"
)

// normal keeps one stack per number of covered source words.
type normal struct {
	*base
	stacks []*hypo.Stack
}

func newNormal(b *base) *normal {
	s := &normal{base: b, stacks: make([]*hypo.Stack, b.sentence.Len()+1)}
	for i := range s.stacks {
		s.stacks[i] = b.newStack()
	}
	return s
}

func (s *normal) Decode(ctx context.Context) error {
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
			if err := s.expandAll(ctx, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *normal) expandAll(ctx context.Context, parent hypo.ID) error {
	h := s.arena.Get(parent)
	return s.extensions(h, func(span model.Span) error {
		for _, opt := range s.lattice.Options(span) {
			id, err := s.expand(ctx, parent, opt)
			if err != nil {
				return err
			}
			s.add(id)
		}
		return nil
	})
}

func (s *normal) add(id hypo.ID) {
	s.stacks[s.arena.Get(id).Coverage.Count()].Add(id)
}

func (s *normal) final() *hypo.Stack { return s.stacks[len(s.stacks)-1] }

func (s *normal) Best() (hypo.ID, bool) { return s.final().Best() }

func (s *normal) AddInitialPaths(c *nbest.Contenders) {
	for _, id := range s.final().Sorted() {
		c.Add(nbest.NewPath(s.arena, s.arcs, id))
	}
}

func (s *normal) Stats() Stats {
	stats := s.stats
	for _, st := range s.stacks {
		stats.addStack(st.Stats())
	}
	stats.FinalStack = s.final().Len()
	return s.finish(stats)
}
