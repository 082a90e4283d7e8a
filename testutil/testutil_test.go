package testutil

import (
	"context"
	"testing"

	"github.com/hupe1980/phrasego/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLattice_Reproducible(t *testing.T) {
	s1, o1 := NewRNG(4711).Lattice(5, 3, 2)
	s2, o2 := NewRNG(4711).Lattice(5, 3, 2)

	assert.Equal(t, s1.String(), s2.String())
	require.Equal(t, len(o1), len(o2))
	for span, opts := range o1 {
		require.Len(t, o2[span], len(opts))
		for i := range opts {
			assert.Equal(t, opts[i].Target, o2[span][i].Target)
			assert.Equal(t, opts[i].Score, o2[span][i].Score)
		}
	}
	for i := 0; i < 5; i++ {
		assert.Len(t, o1[model.Span{Start: i, End: i}], 2, "every word is translatable")
	}
}

func TestRNG_Reset(t *testing.T) {
	rng := NewRNG(7)
	first := rng.Intn(1000)
	rng.Reset()
	assert.Equal(t, first, rng.Intn(1000))
	assert.Equal(t, int64(7), rng.Seed())
}

func TestExhaustiveBest(t *testing.T) {
	options := map[model.Span][]*model.TranslationOption{
		{Start: 0, End: 0}: {Option(0, 0, -1, "a")},
		{Start: 1, End: 1}: {Option(1, 1, -1, "b")},
		{Start: 0, End: 1}: {Option(0, 1, -0.5, "ab")},
	}
	score, words, ok := ExhaustiveBest(Sentence(2), options, NewScorer(0))
	require.True(t, ok)
	assert.Equal(t, -0.5, score)
	assert.Equal(t, []string{"ab"}, words)

	delete(options, model.Span{Start: 0, End: 1})
	delete(options, model.Span{Start: 1, End: 1})
	_, _, ok = ExhaustiveBest(Sentence(2), options, NewScorer(0))
	assert.False(t, ok)
}

func TestScorer_Distortion(t *testing.T) {
	s := NewScorer(0.5)
	init, err := s.Initial(context.Background(), Sentence(3))
	require.NoError(t, err)

	eval, err := s.Evaluate(context.Background(), model.EvalInput{PrevSpan: model.NoSpan, State: init.State}, Option(2, 2, -1, "c"))
	require.NoError(t, err)
	assert.Equal(t, -2.0, eval.Score)
	assert.Equal(t, []float64{-1, -1, 0}, eval.Breakdown)
	assert.Equal(t, "c|2", eval.Key)
	assert.Equal(t, int64(1), s.Calls())
}
