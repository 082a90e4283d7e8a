package search

import (
	"context"
	"sort"

	"github.com/hupe1980/phrasego/internal/coverage"
	"github.com/hupe1980/phrasego/internal/hypo"
	"github.com/hupe1980/phrasego/internal/nbest"
	"github.com/hupe1980/phrasego/model"
)

// gridPos addresses one cell of a cube edge within the stack being filled.
type gridPos struct {
	edge int
	hypo int
	opt  int
}

// cubeItem is a frontier entry: the successor created for a grid cell.
type cubeItem struct {
	pos gridPos
	id  hypo.ID
}

// miniStack groups the hypotheses of a stack that share coverage and last span.
// All its members have the same set of legal extensions.
type miniStack struct {
	cov   coverage.Bitmap
	last  model.Span
	stack *hypo.Stack
}

// layer is the set of mini-stacks with one covered-word count, in creation order.
type layer struct {
	byKey map[string]*miniStack
	order []*miniStack
}

// cubeEdge pairs the sorted hypotheses of a mini-stack with the sorted
// options of one span they can all be extended with.
type cubeEdge struct {
	parents []hypo.ID
	options []*model.TranslationOption
}

type cubePruning struct {
	*base
	layers []*layer
	// edges[c] holds the edges whose successors cover c words.
	edges [][]*cubeEdge
}

func newCubePruning(b *base) *cubePruning {
	n := b.sentence.Len()
	s := &cubePruning{
		base:   b,
		layers: make([]*layer, n+1),
		edges:  make([][]*cubeEdge, n+1),
	}
	for i := range s.layers {
		s.layers[i] = &layer{byKey: make(map[string]*miniStack)}
	}
	return s
}

func (s *cubePruning) Decode(ctx context.Context) error {
	sc := getScratch()
	defer putScratch(sc)

	root, err := s.root(ctx)
	if err != nil {
		return err
	}
	s.add(root)
	s.buildEdges(0)

	n := len(s.layers) - 1
	for c := 1; c <= n; c++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.fill(ctx, sc, c); err != nil {
			return err
		}
		s.buildEdges(c)
	}
	return nil
}

func (s *cubePruning) add(id hypo.ID) {
	h := s.arena.Get(id)
	l := s.layers[h.Coverage.Count()]
	key := h.Coverage.Key() + h.Span.String()
	ms, ok := l.byKey[key]
	if !ok {
		ms = &miniStack{cov: h.Coverage, last: h.Span, stack: s.newStack()}
		l.byKey[key] = ms
		l.order = append(l.order, ms)
	}
	ms.stack.Add(id)
}

// buildEdges prunes the mini-stacks of layer c and creates the edges leading
// out of them.
func (s *cubePruning) buildEdges(c int) {
	for _, ms := range s.layers[c].order {
		ms.stack.Prune()
		if c == len(s.layers)-1 {
			continue
		}
		parents := ms.stack.Sorted()
		if len(parents) == 0 {
			continue
		}
		for _, span := range s.lattice.Spans() {
			if !s.params.CanExtend(ms.cov, ms.last, span) {
				continue
			}
			target := c + span.Len()
			s.edges[target] = append(s.edges[target], &cubeEdge{
				parents: parents,
				options: s.lattice.Options(span),
			})
		}
	}
}

// fill pops successors from the edges into layer c.
func (s *cubePruning) fill(ctx context.Context, sc *scratch, c int) error {
	sc.resetCube()
	edges := s.edges[c]
	s.edges[c] = nil

	for e, edge := range edges {
		if err := s.push(ctx, sc, edges, gridPos{edge: e}); err != nil {
			return err
		}
		for d := 1; d <= s.params.Diversity && d < len(edge.options); d++ {
			if err := s.push(ctx, sc, edges, gridPos{edge: e, opt: d}); err != nil {
				return err
			}
		}
	}

	limit := s.params.PopLimit
	for pops := 0; sc.frontier.Len() > 0 && (limit == 0 || pops < limit); pops++ {
		item, _ := sc.frontier.Pop()
		s.stats.Pops++
		s.add(item.id)

		edge := edges[item.pos.edge]
		if next := item.pos; next.hypo+1 < len(edge.parents) {
			next.hypo++
			if err := s.push(ctx, sc, edges, next); err != nil {
				return err
			}
		}
		if next := item.pos; next.opt+1 < len(edge.options) {
			next.opt++
			if err := s.push(ctx, sc, edges, next); err != nil {
				return err
			}
		}
	}
	return nil
}

// push creates the successor of a grid cell once and queues it.
func (s *cubePruning) push(ctx context.Context, sc *scratch, edges []*cubeEdge, pos gridPos) error {
	if _, ok := sc.seen[pos]; ok {
		return nil
	}
	sc.seen[pos] = struct{}{}

	edge := edges[pos.edge]
	id, err := s.expand(ctx, edge.parents[pos.hypo], edge.options[pos.opt])
	if err != nil {
		return err
	}
	sc.frontier.Push(cubeItem{pos: pos, id: id}, s.arena.Get(id).Total())
	return nil
}

func (s *cubePruning) final() *layer { return s.layers[len(s.layers)-1] }

func (s *cubePruning) Best() (hypo.ID, bool) {
	best := hypo.None
	for _, ms := range s.final().order {
		id, ok := ms.stack.Best()
		if !ok {
			continue
		}
		if best == hypo.None {
			best = id
			continue
		}
		h, b := s.arena.Get(id), s.arena.Get(best)
		if h.Score > b.Score || (h.Score == b.Score && id < best) {
			best = id
		}
	}
	return best, best != hypo.None
}

func (s *cubePruning) complete() []hypo.ID {
	var ids []hypo.ID
	for _, ms := range s.final().order {
		ids = append(ids, ms.stack.Sorted()...)
	}
	sort.Slice(ids, func(i, j int) bool {
		ti, tj := s.arena.Get(ids[i]).Total(), s.arena.Get(ids[j]).Total()
		if ti != tj {
			return ti > tj
		}
		return ids[i] < ids[j]
	})
	return ids
}

func (s *cubePruning) AddInitialPaths(c *nbest.Contenders) {
	for _, id := range s.complete() {
		c.Add(nbest.NewPath(s.arena, s.arcs, id))
	}
}

func (s *cubePruning) Stats() Stats {
	stats := s.stats
	for _, l := range s.layers {
		for _, ms := range l.order {
			stats.addStack(ms.stack.Stats())
			if l == s.final() {
				stats.FinalStack += ms.stack.Len()
			}
		}
	}
	return s.finish(stats)
}
