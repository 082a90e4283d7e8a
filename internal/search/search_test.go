package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hupe1980/phrasego/internal/coverage"
	"github.com/hupe1980/phrasego/internal/futurecost"
	"github.com/hupe1980/phrasego/internal/hypo"
	"github.com/hupe1980/phrasego/internal/nbest"
	"github.com/hupe1980/phrasego/model"
	"github.com/hupe1980/phrasego/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var algorithms = []Algorithm{Normal, Batch, CubePruningMiniStack}

func decode(t *testing.T, alg Algorithm, sentence *model.Sentence, options map[model.Span][]*model.TranslationOption, scorer model.Scorer, params Params) Strategy {
	t.Helper()
	lattice := NewLattice(sentence, options)
	s, err := New(alg, Inputs{
		Lattice: lattice,
		Table:   futurecost.Build(sentence.Len(), lattice.BySpan()),
		Scorer:  scorer,
		Params:  params,
	})
	require.NoError(t, err)
	require.NoError(t, s.Decode(context.Background()))
	return s
}

func exhaustiveParams() Params {
	p := DefaultParams()
	p.Beam = 0
	p.PopLimit = 0
	p.DistortionLimit = -1
	return p
}

func toyOptions() map[model.Span][]*model.TranslationOption {
	return map[model.Span][]*model.TranslationOption{
		{Start: 0, End: 0}: {testutil.Option(0, 0, -1, "a")},
		{Start: 1, End: 1}: {testutil.Option(1, 1, -1, "b"), testutil.Option(1, 1, -2, "B")},
		{Start: 2, End: 2}: {testutil.Option(2, 2, -1, "c")},
		{Start: 0, End: 1}: {testutil.Option(0, 1, -0.5, "ab")},
	}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		name string
		want Algorithm
	}{
		{"normal", Normal},
		{"batch", Batch},
		{"cube-pruning", CubePruningMiniStack},
		{"cube-pruning-mini-stack", CubePruningMiniStack},
		{" Normal ", Normal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseAlgorithm("cube-pruning-per-bitmap")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = New(Algorithm(42), Inputs{Lattice: NewLattice(testutil.Sentence(1), nil), Table: futurecost.Build(1, nil), Scorer: testutil.NewScorer(0)})
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestCanExtend(t *testing.T) {
	p := DefaultParams()
	p.DistortionLimit = 2

	empty := coverage.New(6)
	assert.True(t, p.CanExtend(empty, model.NoSpan, model.Span{Start: 0, End: 1}))
	assert.True(t, p.CanExtend(empty, model.NoSpan, model.Span{Start: 2, End: 2}))
	assert.False(t, p.CanExtend(empty, model.NoSpan, model.Span{Start: 3, End: 3}), "jump of 3")

	cov, err := empty.Union(model.Span{Start: 1, End: 1})
	require.NoError(t, err)
	prev := model.Span{Start: 1, End: 1}
	assert.False(t, p.CanExtend(cov, prev, model.Span{Start: 1, End: 2}), "overlap")
	assert.True(t, p.CanExtend(cov, prev, model.Span{Start: 0, End: 0}), "back to the first gap")
	assert.False(t, p.CanExtend(cov, prev, model.Span{Start: 4, End: 5}), "too far past the first gap")

	p.DistortionLimit = -1
	assert.True(t, p.CanExtend(empty, model.NoSpan, model.Span{Start: 5, End: 5}))
}

func TestStrategies_Toy(t *testing.T) {
	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			s := decode(t, alg, testutil.Sentence(3), toyOptions(), testutil.NewScorer(0.1), DefaultParams())

			id, ok := s.Best()
			require.True(t, ok)
			best := s.Arena().Get(id)
			assert.Equal(t, -1.5, best.Score)
			assert.True(t, best.Complete())
			assert.Equal(t, "ab c", hypo.TargetString(s.Arena(), id))
			assert.Equal(t, []float64{-1.5, 0, 0}, best.Breakdown)
		})
	}
}

func TestStrategies_Unreachable(t *testing.T) {
	options := toyOptions()
	delete(options, model.Span{Start: 2, End: 2})

	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			s := decode(t, alg, testutil.Sentence(3), options, testutil.NewScorer(0), DefaultParams())
			_, ok := s.Best()
			assert.False(t, ok)
			assert.Equal(t, 0, s.Stats().FinalStack)

			c := nbest.NewContenders()
			s.AddInitialPaths(c)
			assert.True(t, c.Empty())
		})
	}
}

func TestStrategies_MonotoneLimit(t *testing.T) {
	options := map[model.Span][]*model.TranslationOption{
		{Start: 0, End: 0}: {testutil.Option(0, 0, -1, "a")},
		{Start: 1, End: 4}: {testutil.Option(1, 4, -1, "bcde")},
	}
	p := DefaultParams()
	p.DistortionLimit = 0
	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			s := decode(t, alg, testutil.Sentence(5), options, testutil.NewScorer(0), p)
			_, ok := s.Best()
			assert.True(t, ok, "monotone path respects a zero limit")
		})
	}
}

func TestStrategies_CoverageDisjoint(t *testing.T) {
	rng := testutil.NewRNG(4711)
	for trial := 0; trial < 5; trial++ {
		sentence, options := rng.Lattice(6, 3, 2)
		for _, alg := range algorithms {
			t.Run(fmt.Sprintf("%s/%d", alg, trial), func(t *testing.T) {
				p := DefaultParams()
				p.Beam = 8
				p.PopLimit = 50
				s := decode(t, alg, sentence, options, testutil.NewScorer(0.3), p)

				c := nbest.NewContenders()
				s.AddInitialPaths(c)
				for !c.Empty() {
					path, _ := c.Get()
					assertDisjointPartition(t, s.Arena(), path.Hypotheses(), sentence.Len())
				}
			})
		}
	}
}

func assertDisjointPartition(t *testing.T, a *hypo.Arena, ids []hypo.ID, n int) {
	t.Helper()
	seen := make([]bool, n)
	for _, id := range ids {
		h := a.Get(id)
		for i := h.Span.Start; i <= h.Span.End; i++ {
			require.False(t, seen[i], "position %d translated twice", i)
			seen[i] = true
		}
		prev := a.Get(h.Prev)
		require.NotNil(t, prev)
		assert.Equal(t, prev.Coverage.Count()+h.Span.Len(), h.Coverage.Count())
	}
	for i, v := range seen {
		assert.True(t, v, "position %d not translated", i)
	}
}

func TestStrategies_MatchExhaustive(t *testing.T) {
	rng := testutil.NewRNG(42)
	for trial := 0; trial < 4; trial++ {
		sentence, options := rng.Lattice(5, 2, 2)
		scorer := testutil.NewScorer(0.2)
		want, _, ok := testutil.ExhaustiveBest(sentence, options, scorer)
		require.True(t, ok)

		for _, alg := range algorithms {
			t.Run(fmt.Sprintf("%s/%d", alg, trial), func(t *testing.T) {
				s := decode(t, alg, sentence, options, testutil.NewScorer(0.2), exhaustiveParams())
				id, ok := s.Best()
				require.True(t, ok)
				assert.InDelta(t, want, s.Arena().Get(id).Score, 1e-9)
			})
		}
	}
}

func TestBatch_EqualsNormal(t *testing.T) {
	rng := testutil.NewRNG(99)
	sentence, options := rng.Lattice(7, 3, 3)
	p := DefaultParams()
	p.Beam = 5
	p.BatchSize = 7

	normal := decode(t, Normal, sentence, options, testutil.NewScorer(0.3), p)
	bs := testutil.NewBatchScorer(testutil.NewScorer(0.3))
	batched := decode(t, Batch, sentence, options, bs, p)
	fallback := decode(t, Batch, sentence, options, testutil.NewScorer(0.3), p)

	for _, s := range []Strategy{batched, fallback} {
		nID, nOK := normal.Best()
		bID, bOK := s.Best()
		require.Equal(t, nOK, bOK)
		assert.Equal(t, nID, bID)
		assert.Equal(t, normal.Arena().Get(nID).Score, s.Arena().Get(bID).Score)
		assert.Equal(t, normal.Arena().Len(), s.Arena().Len())
		assert.Equal(t, normal.Stats().Expansions, s.Stats().Expansions)
		assert.Equal(t, normal.Stats().FinalStack, s.Stats().FinalStack)
	}
	assert.Positive(t, bs.Batches())
	assert.Equal(t, int64(bs.Batches()), int64(batched.Stats().Batches))
	assert.Zero(t, fallback.Stats().Batches)
}

func TestCubePruning_PopLimit(t *testing.T) {
	rng := testutil.NewRNG(7)
	sentence, options := rng.Lattice(6, 3, 4)
	p := DefaultParams()
	p.PopLimit = 3

	s := decode(t, CubePruningMiniStack, sentence, options, testutil.NewScorer(0.1), p)
	assert.LessOrEqual(t, s.Stats().Pops, p.PopLimit*sentence.Len())

	full := decode(t, CubePruningMiniStack, sentence, options, testutil.NewScorer(0.1), exhaustiveParams())
	assert.Greater(t, full.Stats().Pops, s.Stats().Pops)
}

func TestCubePruning_Diversity(t *testing.T) {
	rng := testutil.NewRNG(8)
	sentence, options := rng.Lattice(5, 2, 4)
	p := DefaultParams()
	p.PopLimit = 1

	plain := decode(t, CubePruningMiniStack, sentence, options, testutil.NewScorer(0), p)
	p.Diversity = 2
	diverse := decode(t, CubePruningMiniStack, sentence, options, testutil.NewScorer(0), p)

	assert.Greater(t, diverse.Stats().Expansions, plain.Stats().Expansions)
}

func TestStrategies_ScorerError(t *testing.T) {
	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			sentence := testutil.Sentence(3)
			lattice := NewLattice(sentence, toyOptions())
			scorer := testutil.NewScorer(0)
			scorer.FailAfter = 2

			s, err := New(alg, Inputs{
				Lattice: lattice,
				Table:   futurecost.Build(3, lattice.BySpan()),
				Scorer:  scorer,
				Params:  DefaultParams(),
			})
			require.NoError(t, err)
			assert.ErrorIs(t, s.Decode(context.Background()), testutil.ErrScorer)
		})
	}
}

func TestStrategies_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			lattice := NewLattice(testutil.Sentence(3), toyOptions())
			s, err := New(alg, Inputs{
				Lattice: lattice,
				Table:   futurecost.Build(3, lattice.BySpan()),
				Scorer:  testutil.NewScorer(0),
				Params:  DefaultParams(),
			})
			require.NoError(t, err)
			assert.ErrorIs(t, s.Decode(ctx), context.Canceled)
		})
	}
}

func TestBuildLattice(t *testing.T) {
	sentence := testutil.Sentence(3)
	lookup := &testutil.Lookup{Options: toyOptions(), MaxLength: 1}

	l, err := BuildLattice(context.Background(), lookup, sentence)
	require.NoError(t, err)
	assert.Empty(t, l.Options(model.Span{Start: 0, End: 1}), "longer than the maximum phrase length")
	assert.Equal(t, []model.Span{{Start: 0, End: 0}, {Start: 1, End: 1}, {Start: 2, End: 2}}, l.Spans())
	assert.Equal(t, 4, l.Len())

	opts := l.Options(model.Span{Start: 1, End: 1})
	require.Len(t, opts, 2)
	assert.GreaterOrEqual(t, opts[0].Score, opts[1].Score)

	lookup.Err = errors.New("boom")
	_, err = BuildLattice(context.Background(), lookup, sentence)
	assert.ErrorIs(t, err, lookup.Err)
}

func TestNewLattice_SortsWithoutMutating(t *testing.T) {
	span := model.Span{Start: 0, End: 0}
	opts := []*model.TranslationOption{testutil.Option(0, 0, -3, "x"), testutil.Option(0, 0, -1, "y")}
	l := NewLattice(testutil.Sentence(1), map[model.Span][]*model.TranslationOption{span: opts})

	assert.Equal(t, "y", l.Options(span)[0].TargetString())
	assert.Equal(t, "x", opts[0].TargetString())
}

func TestScratch_Reset(t *testing.T) {
	sc := getScratch()
	defer putScratch(sc)

	sc.parents = append(sc.parents, 1)
	sc.requests = append(sc.requests, model.EvalRequest{})
	sc.frontier.Push(cubeItem{id: 3}, 1)
	sc.seen[gridPos{edge: 1}] = struct{}{}

	sc.Reset()
	assert.Empty(t, sc.parents)
	assert.Empty(t, sc.requests)
	assert.Equal(t, 0, sc.frontier.Len())
	assert.Empty(t, sc.seen)
}

func TestStrategies_NBest(t *testing.T) {
	rng := testutil.NewRNG(2024)
	for trial := 0; trial < 5; trial++ {
		sentence, options := rng.Lattice(6, 3, 3)
		for _, alg := range algorithms {
			for _, beam := range []int{0, 3} {
				t.Run(fmt.Sprintf("%s/beam=%d/%d", alg, beam, trial), func(t *testing.T) {
					p := DefaultParams()
					p.Beam = beam
					s := decode(t, alg, sentence, options, testutil.NewScorer(0.2), p)

					best, ok := s.Best()
					paths, err := nbest.Extract(context.Background(), s, nbest.Request{N: 60})
					require.NoError(t, err)
					if !ok {
						assert.Empty(t, paths)
						return
					}
					require.NotEmpty(t, paths)
					assert.InDelta(t, s.Arena().Get(best).Score, paths[0].Score(), 1e-9)

					for i, path := range paths {
						if i > 0 {
							assert.LessOrEqual(t, path.Score(), paths[i-1].Score()+1e-9, "path %d", i)
						}
						assertDisjointPartition(t, s.Arena(), path.Hypotheses(), sentence.Len())
					}
				})
			}
		}
	}
}
