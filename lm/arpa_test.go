package lm

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arpa = `
This header is ignored.

\data\
ngram 1=5
ngram 2=3

\1-grams:
-1.0	<s>	-0.5
-1.0	</s>
-0.5	the	-0.25
-0.7	house
-2.0	<unk>

\2-grams:
-0.2	<s> the
-0.1	the house
-0.3	house </s>

\end\
`

func parse(t *testing.T) *Model {
	t.Helper()
	m, err := Parse(strings.NewReader(arpa))
	require.NoError(t, err)
	return m
}

func TestParse(t *testing.T) {
	m := parse(t)
	assert.Equal(t, 2, m.Order())
	assert.Equal(t, 8, m.Len())
}

func TestLogProb(t *testing.T) {
	m := parse(t)
	ln := func(v float64) float64 { return v * math.Ln10 }

	assert.InDelta(t, ln(-0.2), m.LogProb([]string{BOS}, "the"), 1e-9, "bigram hit")
	assert.InDelta(t, ln(-0.25+-0.5), m.LogProb([]string{"the"}, "the"), 1e-9, "backoff to unigram")
	assert.InDelta(t, ln(-0.7), m.LogProb([]string{"house"}, "house"), 1e-9, "no backoff weight")
	assert.InDelta(t, ln(-2.0), m.LogProb(nil, "auto"), 1e-9, "unknown word")
	assert.InDelta(t, ln(-0.1), m.LogProb([]string{BOS, "x", "the"}, "house"), 1e-9, "history truncated to order-1")
}

func TestScore(t *testing.T) {
	m := parse(t)
	ln := func(v float64) float64 { return v * math.Ln10 }

	score, state := m.Score(m.Begin(), []string{"the", "house"}, false)
	assert.InDelta(t, ln(-0.2-0.1), score, 1e-9)
	assert.Equal(t, State{"house"}, state)
	assert.Equal(t, "house", state.Key())

	score, state = m.Score(state, nil, true)
	assert.InDelta(t, ln(-0.3), score, 1e-9)
	assert.Equal(t, State{EOS}, state)

	assert.InDelta(t, ln(-0.5-0.1), m.Estimate([]string{"the", "house"}), 1e-9)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no data", "\\1-grams:\n-1 a\n"},
		{"count mismatch", "\\data\\\nngram 1=2\n\\1-grams:\n-1 a\n\\end\\\n"},
		{"bad field count", "\\data\\\nngram 1=1\n\\1-grams:\n-1 a b c\n"},
		{"bad prob", "\\data\\\nngram 1=1\n\\1-grams:\nx a\n"},
		{"bad count line", "\\data\\\nngrams 1=1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lm.arpa")
	require.NoError(t, os.WriteFile(path, []byte(arpa), 0o600))
	m, err := Load(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Order())
}
