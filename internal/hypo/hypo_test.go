package hypo

import (
	"errors"
	"math"
	"testing"

	"github.com/hupe1980/phrasego/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type estimatorFunc func(model.Coverage) float64

func (f estimatorFunc) Estimate(c model.Coverage) float64 { return f(c) }

var zero = estimatorFunc(func(model.Coverage) float64 { return 0 })

func option(start, end int, target ...string) *model.TranslationOption {
	return &model.TranslationOption{Span: model.Span{Start: start, End: end}, Target: target}
}

func TestExpand(t *testing.T) {
	a := NewArena()
	root, err := Root(a, 3, model.Evaluation{Score: -0.5, Key: "<s>"}, zero)
	require.NoError(t, err)

	o1 := option(1, 2, "b", "c")
	h1, err := Expand(a, root, o1, model.Evaluation{Score: -1, Breakdown: []float64{-1, 0}, Key: "c"}, zero)
	require.NoError(t, err)

	got := a.Get(h1)
	assert.Equal(t, root, got.Prev)
	assert.Equal(t, -1.5, got.Score)
	assert.Equal(t, []float64{-1, 0}, got.Breakdown)
	assert.Equal(t, "011", got.Coverage.String())
	assert.False(t, got.Complete())

	h2, err := Expand(a, h1, option(0, 0, "a"), model.Evaluation{Score: -2, Breakdown: []float64{-1, -1}}, zero)
	require.NoError(t, err)
	assert.True(t, a.Get(h2).Complete())
	assert.Equal(t, []float64{-2, -1}, a.Get(h2).Breakdown)
	assert.Equal(t, "b c a", TargetString(a, h2))
	assert.Len(t, Chain(a, h2), 2)

	// Parent coverage is untouched by expansion.
	assert.Equal(t, "000", a.Get(root).Coverage.String())
}

func TestExpand_Overlap(t *testing.T) {
	a := NewArena()
	root, _ := Root(a, 3, model.Evaluation{}, zero)
	h1, err := Expand(a, root, option(0, 1, "x"), model.Evaluation{}, zero)
	require.NoError(t, err)

	before := a.Len()
	_, err = Expand(a, h1, option(1, 2, "y"), model.Evaluation{}, zero)
	assert.ErrorIs(t, err, ErrInvalidExpansion)
	assert.Equal(t, before, a.Len(), "failed expansion must not allocate")

	_, err = Expand(a, None, option(0, 0, "z"), model.Evaluation{}, zero)
	assert.ErrorIs(t, err, ErrInvalidExpansion)
}

func TestArena_Segments(t *testing.T) {
	a := NewArena()
	root, _ := Root(a, 1, model.Evaluation{}, zero)
	first := a.Get(root)

	for i := 0; i < 3*segmentSize; i++ {
		_, err := Expand(a, root, option(0, 0, "w"), model.Evaluation{Score: float64(i)}, zero)
		require.NoError(t, err)
	}
	assert.Equal(t, 3*segmentSize+1, a.Len())
	assert.Same(t, first, a.Get(root), "pointers stay stable across growth")
	assert.Nil(t, a.Get(None))
	assert.Nil(t, a.Get(ID(a.Len())))
}

type countingBudget struct {
	limit, used int64
}

func (b *countingBudget) AcquireHypotheses(n int64) error {
	if b.used+n > b.limit {
		return errors.New("full")
	}
	b.used += n
	return nil
}

func (b *countingBudget) ReleaseHypotheses(n int64) { b.used -= n }

func TestArena_Budget(t *testing.T) {
	b := &countingBudget{limit: 3}
	a := NewArena(WithBudget(b))
	root, err := Root(a, 1, model.Evaluation{}, zero)
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.used, "one unit per hypothesis")

	for i := 0; i < 2; i++ {
		_, err := Expand(a, root, option(0, 0, "w"), model.Evaluation{}, zero)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), b.used)
	assert.Equal(t, 3, a.Len())

	_, err = Expand(a, root, option(0, 0, "w"), model.Evaluation{}, zero)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Equal(t, 3, a.Len(), "a refused hypothesis is not allocated")

	a.Release()
	assert.Equal(t, int64(0), b.used)
}

func TestArena_BudgetAcrossSegments(t *testing.T) {
	b := &countingBudget{limit: segmentSize + 1}
	a := NewArena(WithBudget(b))
	root, err := Root(a, 1, model.Evaluation{}, zero)
	require.NoError(t, err)
	for i := 0; i < segmentSize; i++ {
		_, err := Expand(a, root, option(0, 0, "w"), model.Evaluation{}, zero)
		require.NoError(t, err)
	}
	assert.Equal(t, segmentSize+1, a.Len())
	assert.Equal(t, int64(segmentSize+1), b.used)

	a.Release()
	assert.Zero(t, b.used)
}

func TestStack_Recombination(t *testing.T) {
	a := NewArena()
	arcs := NewArcLists(a)
	root, _ := Root(a, 2, model.Evaluation{}, zero)

	s := NewStack(a, arcs, 10)
	weak, _ := Expand(a, root, option(0, 0, "a"), model.Evaluation{Score: -2, Key: "k"}, zero)
	strong, _ := Expand(a, root, option(0, 0, "A"), model.Evaluation{Score: -1, Key: "k"}, zero)
	tie, _ := Expand(a, root, option(0, 0, "á"), model.Evaluation{Score: -1, Key: "k"}, zero)
	other, _ := Expand(a, root, option(0, 0, "b"), model.Evaluation{Score: -5, Key: "other"}, zero)

	assert.True(t, s.Add(weak))
	assert.True(t, s.Add(strong), "higher score replaces the incumbent")
	assert.False(t, s.Add(tie), "equal score keeps the incumbent")
	assert.True(t, s.Add(other))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 2, s.Stats().Recombined)

	arcs.Sort()
	assert.ElementsMatch(t, []ID{strong, weak, tie}, arcs.Get(strong))
	assert.Equal(t, []ID{strong, tie, weak}, arcs.Get(strong), "alternatives sorted by score, ties stable")
	assert.Equal(t, []ID{other}, arcs.Get(other))

	best, ok := s.Best()
	require.True(t, ok)
	assert.Equal(t, strong, best)
}

func TestStack_Prune(t *testing.T) {
	a := NewArena()
	root, _ := Root(a, 1, model.Evaluation{}, zero)
	s := NewStack(a, nil, 3)

	var ids []ID
	for i := 0; i < 6; i++ {
		id, _ := Expand(a, root, option(0, 0, "w"), model.Evaluation{Score: -float64(i), Key: string(rune('a' + i))}, zero)
		ids = append(ids, id)
		s.Add(id)
	}
	assert.Equal(t, 6, s.Len(), "pruning is deferred until twice the beam")

	s.Prune()
	assert.Equal(t, ids[:3], s.Sorted())
	assert.Equal(t, 3, s.Stats().Pruned)
}

func TestStack_Threshold(t *testing.T) {
	a := NewArena()
	root, _ := Root(a, 1, model.Evaluation{}, zero)
	s := NewStack(a, nil, 0, WithThreshold(1.5))

	for i, score := range []float64{-1, -2, -3} {
		id, _ := Expand(a, root, option(0, 0, "w"), model.Evaluation{Score: score, Key: string(rune('a' + i))}, zero)
		s.Add(id)
	}
	s.Prune()
	assert.Equal(t, 2, s.Len())
}

func TestStack_DiscardsHopeless(t *testing.T) {
	a := NewArena()
	hopeless := estimatorFunc(func(model.Coverage) float64 { return math.Inf(-1) })
	root, _ := Root(a, 2, model.Evaluation{}, hopeless)
	id, _ := Expand(a, root, option(0, 0, "w"), model.Evaluation{}, hopeless)

	s := NewStack(a, nil, 10)
	assert.False(t, s.Add(id))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 1, s.Stats().Discarded)
}
