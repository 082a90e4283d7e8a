package futurecost

import (
	"math"
	"testing"

	"github.com/hupe1980/phrasego/internal/coverage"
	"github.com/hupe1980/phrasego/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opt(start, end int, future float64) *model.TranslationOption {
	return &model.TranslationOption{Span: model.Span{Start: start, End: end}, FutureScore: future}
}

func group(opts ...*model.TranslationOption) map[model.Span][]*model.TranslationOption {
	m := make(map[model.Span][]*model.TranslationOption)
	for _, o := range opts {
		m[o.Span] = append(m[o.Span], o)
	}
	return m
}

func TestBuild_ThreeWords(t *testing.T) {
	// Every single word and every adjacent pair has one option scoring 1.0.
	tbl := Build(3, group(
		opt(0, 0, 1), opt(1, 1, 1), opt(2, 2, 1),
		opt(0, 1, 1), opt(1, 2, 1),
	))

	// Two single-word options beat the pair option.
	assert.Equal(t, 2.0, tbl.Get(0, 1))
	assert.Equal(t, 2.0, tbl.Get(1, 2))
	// Every decomposition of the full span reaches three words worth of score.
	assert.Equal(t, 3.0, tbl.Get(0, 2))
	assert.True(t, tbl.Reachable())
}

func TestBuild_SeedsMaximum(t *testing.T) {
	tbl := Build(2, group(opt(0, 0, -3), opt(0, 0, -1), opt(1, 1, -2), opt(0, 1, -2.5)))

	assert.Equal(t, -1.0, tbl.Get(0, 0))
	assert.Equal(t, -2.0, tbl.Get(1, 1))
	// The seeded -2.5 beats the split -1 + -2 = -3.
	assert.Equal(t, -2.5, tbl.Get(0, 1))
}

func TestBuild_SplitOnlyWhenStrictlyGreater(t *testing.T) {
	// The full span option ties the split; the seeded value stays in place.
	tbl := Build(2, group(opt(0, 0, -1), opt(1, 1, -1), opt(0, 1, -2)))
	assert.Equal(t, -2.0, tbl.Get(0, 1))
}

func TestBuild_UncoveredWordKeepsSentinel(t *testing.T) {
	tbl := Build(3, group(opt(0, 0, -1), opt(2, 2, -1)))

	assert.True(t, math.IsInf(tbl.Get(1, 1), -1), "single uncovered word stays -Inf")
	assert.True(t, math.IsInf(tbl.Get(0, 2), -1))
	assert.False(t, tbl.Reachable())

	// A pair option bridging the hole makes the sentence reachable again,
	// but the diagonal cell is never filled in.
	tbl = Build(3, group(opt(0, 0, -1), opt(2, 2, -1), opt(1, 2, -4)))
	assert.True(t, math.IsInf(tbl.Get(1, 1), -1))
	assert.Equal(t, -5.0, tbl.Get(0, 2))
	assert.True(t, tbl.Reachable())
}

func TestBuild_Admissible(t *testing.T) {
	opts := []*model.TranslationOption{
		opt(0, 0, -1.5), opt(1, 1, -0.5), opt(2, 2, -2), opt(3, 3, -1),
		opt(0, 1, -1.0), opt(1, 3, -2.0), opt(2, 3, -4),
	}
	tbl := Build(4, group(opts...))

	// Exhaustive best decomposition of every span.
	var best func(i, j int) float64
	best = func(i, j int) float64 {
		v := math.Inf(-1)
		for _, o := range opts {
			if o.Span.Start != i || o.Span.End > j {
				continue
			}
			rest := 0.0
			if o.Span.End < j {
				rest = best(o.Span.End+1, j)
			}
			if s := o.FutureScore + rest; s > v {
				v = s
			}
		}
		return v
	}

	for i := 0; i < 4; i++ {
		for j := i; j < 4; j++ {
			assert.GreaterOrEqual(t, tbl.Get(i, j), best(i, j), "span [%d,%d]", i, j)
		}
	}
}

func TestTable_Estimate(t *testing.T) {
	tbl := Build(4, group(opt(0, 0, -1), opt(1, 1, -2), opt(2, 2, -3), opt(3, 3, -4)))

	cov := coverage.New(4)
	assert.Equal(t, -10.0, tbl.Estimate(cov))

	cov, err := cov.Union(model.Span{Start: 1, End: 2})
	require.NoError(t, err)
	assert.Equal(t, -5.0, tbl.Estimate(cov))

	cov, _ = cov.Union(model.Span{Start: 0, End: 0})
	cov, _ = cov.Union(model.Span{Start: 3, End: 3})
	assert.Equal(t, 0.0, tbl.Estimate(cov))

	holes := Build(3, group(opt(0, 0, -1), opt(2, 2, -1)))
	assert.True(t, math.IsInf(holes.Estimate(coverage.New(3)), -1))
}
