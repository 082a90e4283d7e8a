package futurecost

import (
	"fmt"
	"math"
	"strings"

	"github.com/hupe1980/phrasego/model"
)

// Unreachable is the sentinel for spans without an admissible estimate.
var Unreachable = math.Inf(-1)

// Table is an immutable upper-triangular matrix of span estimates.
type Table struct {
	n     int
	cells []float64 // row-major n*n, lower triangle unused
}

// Build computes the table for a sentence of length n from the options
// grouped by the exact span they cover.
func Build(n int, bySpan map[model.Span][]*model.TranslationOption) *Table {
	t := &Table{n: n, cells: make([]float64, n*n)}
	for i := range t.cells {
		t.cells[i] = Unreachable
	}

	for span, opts := range bySpan {
		if !span.Valid(n) {
			continue
		}
		best := Unreachable
		for _, opt := range opts {
			if opt.FutureScore > best {
				best = opt.FutureScore
			}
		}
		t.set(span.Start, span.End, best)
	}

	for width := 2; width <= n; width++ {
		for start := 0; start+width <= n; start++ {
			end := start + width - 1
			for k := start; k < end; k++ {
				joined := t.Get(start, k) + t.Get(k+1, end)
				if joined > t.Get(start, end) {
					t.set(start, end, joined)
				}
			}
		}
	}

	return t
}

func (t *Table) set(i, j int, v float64) {
	t.cells[i*t.n+j] = v
}

// Len returns the sentence length.
func (t *Table) Len() int { return t.n }

// Get returns the estimate for span [i, j]. Out of range or inverted spans
// are reported as Unreachable.
func (t *Table) Get(i, j int) float64 {
	if i < 0 || j >= t.n || i > j {
		return Unreachable
	}
	return t.cells[i*t.n+j]
}

// Span returns the estimate for s.
func (t *Table) Span(s model.Span) float64 {
	return t.Get(s.Start, s.End)
}

// Reachable reports whether the full sentence has a finite estimate.
func (t *Table) Reachable() bool {
	if t.n == 0 {
		return true
	}
	return !math.IsInf(t.Get(0, t.n-1), -1)
}

// Estimate returns the estimate for every position not covered by cov,
// summed over the maximal uncovered runs. It is 0 for full coverage and
// Unreachable when any run has no admissible estimate.
func (t *Table) Estimate(cov model.Coverage) float64 {
	total := 0.0
	start := -1
	for i := 0; i <= t.n; i++ {
		covered := i == t.n || cov.IsCovered(i)
		if !covered {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			v := t.Get(start, i-1)
			if math.IsInf(v, -1) {
				return Unreachable
			}
			total += v
			start = -1
		}
	}
	return total
}

// String renders the upper triangle, one row per start position.
func (t *Table) String() string {
	var sb strings.Builder
	for i := 0; i < t.n; i++ {
		for j := 0; j < t.n; j++ {
			if j > 0 {
				sb.WriteByte('\t')
			}
			if j < i {
				sb.WriteString("-")
				continue
			}
			fmt.Fprintf(&sb, "%.3f", t.Get(i, j))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
