package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedResult struct {
	Text      string    `json:"text"`
	Score     float64   `json:"score"`
	Breakdown []float64 `json:"breakdown"`
	Found     bool      `json:"found"`
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestEncodeDecode(t *testing.T) {
	in := cachedResult{Text: "das haus", Score: -3.25, Breakdown: []float64{-1, -2.25}, Found: true}

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			b, err := Encode(c, in)
			require.NoError(t, err)
			assert.Equal(t, entryVersion, b[0])
			assert.Equal(t, c.Name(), string(b[2:2+int(b[1])]))

			var out cachedResult
			require.NoError(t, Decode(c, b, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestPayloadsInterchangeable(t *testing.T) {
	in := cachedResult{Text: "the house", Score: -1.5, Found: true}
	b, err := GoJSON{}.Marshal(in)
	require.NoError(t, err)

	var out cachedResult
	require.NoError(t, JSON{}.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestDecode_Errors(t *testing.T) {
	b, err := Encode(JSON{}, cachedResult{Text: "x"})
	require.NoError(t, err)

	var out cachedResult
	assert.ErrorIs(t, Decode(GoJSON{}, b, &out), ErrCodecMismatch)
	assert.ErrorIs(t, Decode(JSON{}, nil, &out), ErrEntryFormat)
	assert.ErrorIs(t, Decode(JSON{}, []byte{9, 0}, &out), ErrEntryFormat)
	assert.ErrorIs(t, Decode(JSON{}, []byte{entryVersion, 10, 'j'}, &out), ErrEntryFormat)
	assert.Error(t, Decode(JSON{}, append([]byte{entryVersion, 4}, "json{"...), &out))
}

func BenchmarkEncode(b *testing.B) {
	v := cachedResult{Text: "the house is small", Score: -4.5, Breakdown: []float64{-1, -2, -0.5, -1}, Found: true}
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		b.Run(c.Name(), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := Encode(c, v); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
