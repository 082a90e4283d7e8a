package hypo

import (
	"errors"
	"fmt"
	"math"
)

const (
	// segmentBits determines the size of each segment.
	// 10 bits = 1024 hypotheses per segment.
	segmentBits = 10
	segmentSize = 1 << segmentBits
	segmentMask = segmentSize - 1
)

// ErrBudgetExceeded is returned when the arena cannot reserve another hypothesis.
var ErrBudgetExceeded = errors.New("hypo: hypothesis budget exceeded")

// ID addresses a hypothesis inside its arena.
type ID uint32

// None marks the absence of a hypothesis (the predecessor of the root).
const None ID = math.MaxUint32

// Budget reserves hypothesis slots from a shared pool.
// resource.Controller satisfies it.
type Budget interface {
	AcquireHypotheses(n int64) error
	ReleaseHypotheses(n int64)
}

type segment struct {
	items [segmentSize]Hypothesis
}

// Arena owns every hypothesis created during one search.
type Arena struct {
	segments []*segment
	n        uint32
	budget   Budget
	reserved int64
}

// ArenaOption is a configuration option for Arena.
type ArenaOption func(*Arena)

// WithBudget makes the arena reserve one unit of b per hypothesis.
func WithBudget(b Budget) ArenaOption {
	return func(a *Arena) {
		a.budget = b
	}
}

// NewArena creates an empty arena.
func NewArena(opts ...ArenaOption) *Arena {
	a := &Arena{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// alloc returns a zeroed slot for a new hypothesis.
func (a *Arena) alloc() (ID, *Hypothesis, error) {
	if a.n == uint32(None) {
		return None, nil, fmt.Errorf("%w: arena address space exhausted", ErrBudgetExceeded)
	}
	if a.budget != nil {
		if err := a.budget.AcquireHypotheses(1); err != nil {
			return None, nil, fmt.Errorf("%w: %w", ErrBudgetExceeded, err)
		}
		a.reserved++
	}
	segIdx := int(a.n >> segmentBits)
	if segIdx >= len(a.segments) {
		a.segments = append(a.segments, &segment{})
	}
	id := ID(a.n)
	a.n++
	h := &a.segments[segIdx].items[uint32(id)&segmentMask]
	h.ID = id
	return id, h, nil
}

// Get returns the hypothesis with the given ID.
// Returns nil for None or IDs that were never allocated.
func (a *Arena) Get(id ID) *Hypothesis {
	if id == None || uint32(id) >= a.n {
		return nil
	}
	return &a.segments[uint32(id)>>segmentBits].items[uint32(id)&segmentMask]
}

// Len returns the number of allocated hypotheses.
func (a *Arena) Len() int { return int(a.n) }

// Release drops every hypothesis and returns reserved capacity to the budget.
// The arena must not be used afterwards.
func (a *Arena) Release() {
	if a.budget != nil && a.reserved > 0 {
		a.budget.ReleaseHypotheses(a.reserved)
	}
	a.reserved = 0
	a.segments = nil
	a.n = 0
}
