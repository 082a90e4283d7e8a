package coverage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/phrasego/model"
)

var (
	// ErrOverlap is returned when a span touches an already covered position.
	ErrOverlap = errors.New("coverage: span overlaps covered positions")
	// ErrOutOfRange is returned when a span does not fit the sentence.
	ErrOutOfRange = errors.New("coverage: span out of range")
)

// Compile time check to ensure Bitmap satisfies the model view.
var _ model.Coverage = Bitmap{}

// Bitmap is an immutable set of covered source positions.
type Bitmap struct {
	bits  *bitset.BitSet
	n     int
	count int
}

// New returns an empty bitmap for a sentence of length n.
func New(n int) Bitmap {
	return Bitmap{bits: bitset.New(uint(n)), n: n}
}

// Len returns the sentence length the bitmap was created for.
func (b Bitmap) Len() int { return b.n }

// Count returns the number of covered positions.
func (b Bitmap) Count() int { return b.count }

// Full reports whether every position is covered.
func (b Bitmap) Full() bool { return b.count == b.n }

// IsCovered reports whether pos is covered. Out of range positions are
// reported as uncovered.
func (b Bitmap) IsCovered(pos int) bool {
	if pos < 0 || pos >= b.n || b.bits == nil {
		return false
	}
	return b.bits.Test(uint(pos))
}

// FirstGap returns the first uncovered position, or -1 if the bitmap is full.
func (b Bitmap) FirstGap() int {
	if b.Full() {
		return -1
	}
	if b.bits == nil {
		return 0
	}
	i, ok := b.bits.NextClear(0)
	if !ok || int(i) >= b.n {
		return -1
	}
	return int(i)
}

// CanApply reports whether span fits the sentence and is fully uncovered.
func (b Bitmap) CanApply(span model.Span) bool {
	if !span.Valid(b.n) {
		return false
	}
	for i := span.Start; i <= span.End; i++ {
		if b.bits.Test(uint(i)) {
			return false
		}
	}
	return true
}

// Union returns a new bitmap with every position of span set.
// The receiver is left unchanged.
func (b Bitmap) Union(span model.Span) (Bitmap, error) {
	if !span.Valid(b.n) {
		return Bitmap{}, fmt.Errorf("%w: %s for length %d", ErrOutOfRange, span, b.n)
	}
	for i := span.Start; i <= span.End; i++ {
		if b.bits.Test(uint(i)) {
			return Bitmap{}, fmt.Errorf("%w: position %d of %s", ErrOverlap, i, span)
		}
	}
	next := b.bits.Clone()
	for i := span.Start; i <= span.End; i++ {
		next.Set(uint(i))
	}
	return Bitmap{bits: next, n: b.n, count: b.count + span.Len()}, nil
}

// Gaps returns the maximal uncovered runs in ascending order.
func (b Bitmap) Gaps() []model.Span {
	var gaps []model.Span
	start := -1
	for i := 0; i < b.n; i++ {
		if b.bits.Test(uint(i)) {
			if start >= 0 {
				gaps = append(gaps, model.Span{Start: start, End: i - 1})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		gaps = append(gaps, model.Span{Start: start, End: b.n - 1})
	}
	return gaps
}

// Key returns a stable string identifying the covered set.
// Two bitmaps of the same length have equal keys iff they are equal.
func (b Bitmap) Key() string {
	if b.bits == nil {
		return ""
	}
	words := b.bits.Words()
	buf := make([]byte, 8*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return string(buf)
}

// Equal reports whether both bitmaps cover the same positions.
func (b Bitmap) Equal(o Bitmap) bool {
	if b.n != o.n || b.count != o.count {
		return false
	}
	if b.bits == nil || o.bits == nil {
		return b.count == 0
	}
	return b.bits.Equal(o.bits)
}

// String renders the bitmap as a row of 0/1 characters.
func (b Bitmap) String() string {
	out := make([]byte, b.n)
	for i := 0; i < b.n; i++ {
		if b.IsCovered(i) {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out)
}
