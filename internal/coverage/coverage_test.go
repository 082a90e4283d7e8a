package coverage

import (
	"testing"

	"github.com/hupe1980/phrasego/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitmap_Union(t *testing.T) {
	b := New(5)
	assert.Equal(t, 0, b.Count())
	assert.Equal(t, 0, b.FirstGap())
	assert.False(t, b.Full())

	b2, err := b.Union(model.Span{Start: 1, End: 2})
	require.NoError(t, err)

	// Receiver is unchanged.
	assert.False(t, b.IsCovered(1))
	assert.Equal(t, 0, b.Count())

	assert.True(t, b2.IsCovered(1))
	assert.True(t, b2.IsCovered(2))
	assert.False(t, b2.IsCovered(3))
	assert.Equal(t, 2, b2.Count())
	assert.Equal(t, "01100", b2.String())
	assert.Equal(t, 0, b2.FirstGap())

	b3, err := b2.Union(model.Span{Start: 0, End: 0})
	require.NoError(t, err)
	assert.Equal(t, 3, b3.FirstGap())
}

func TestBitmap_UnionOverlap(t *testing.T) {
	b, err := New(4).Union(model.Span{Start: 1, End: 2})
	require.NoError(t, err)

	_, err = b.Union(model.Span{Start: 2, End: 3})
	assert.ErrorIs(t, err, ErrOverlap)

	_, err = b.Union(model.Span{Start: 3, End: 4})
	assert.ErrorIs(t, err, ErrOutOfRange)

	assert.False(t, b.CanApply(model.Span{Start: 0, End: 1}))
	assert.True(t, b.CanApply(model.Span{Start: 3, End: 3}))
}

func TestBitmap_Gaps(t *testing.T) {
	b := New(6)
	assert.Equal(t, []model.Span{{Start: 0, End: 5}}, b.Gaps())

	b, _ = b.Union(model.Span{Start: 2, End: 3})
	assert.Equal(t, []model.Span{{Start: 0, End: 1}, {Start: 4, End: 5}}, b.Gaps())

	b, _ = b.Union(model.Span{Start: 0, End: 1})
	b, _ = b.Union(model.Span{Start: 4, End: 5})
	assert.Empty(t, b.Gaps())
	assert.True(t, b.Full())
	assert.Equal(t, -1, b.FirstGap())
}

func TestBitmap_KeyAndEqual(t *testing.T) {
	a, _ := New(70).Union(model.Span{Start: 65, End: 66})
	b, _ := New(70).Union(model.Span{Start: 65, End: 65})
	b, _ = b.Union(model.Span{Start: 66, End: 66})
	c, _ := New(70).Union(model.Span{Start: 1, End: 2})

	assert.Equal(t, a.Key(), b.Key())
	assert.True(t, a.Equal(b))
	assert.NotEqual(t, a.Key(), c.Key())
	assert.False(t, a.Equal(c))
}
