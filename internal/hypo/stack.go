package hypo

import (
	"math"
	"sort"
)

// Stack is a beam-bounded, recombining collection of hypotheses.
type Stack struct {
	arena     *Arena
	arcs      *ArcLists
	beam      int
	threshold float64

	members map[string]ID
	heap    beamHeap

	recombined int
	pruned     int
	discarded  int
}

// StackOption is a configuration option for Stack.
type StackOption func(*Stack)

// WithThreshold drops hypotheses whose total is more than t below the best
// one when the stack is pruned. +Inf disables the threshold.
func WithThreshold(t float64) StackOption {
	return func(s *Stack) {
		s.threshold = t
	}
}

// NewStack creates a stack that keeps at most beam hypotheses after pruning.
// beam <= 0 means unbounded. arcs may be nil when alternatives are not needed.
func NewStack(a *Arena, arcs *ArcLists, beam int, opts ...StackOption) *Stack {
	s := &Stack{
		arena:     a,
		arcs:      arcs,
		beam:      beam,
		threshold: math.Inf(1),
		members:   make(map[string]ID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add inserts id, recombining it with an equivalent hypothesis if present.
// It reports whether id is now a member of the stack. Hypotheses without an
// admissible completion are discarded.
func (s *Stack) Add(id ID) bool {
	h := s.arena.Get(id)
	if !h.Viable() {
		s.discarded++
		return false
	}

	key := h.RecombinationKey()
	if cur, ok := s.members[key]; ok {
		s.recombined++
		other := s.arena.Get(cur)
		if h.Score > other.Score {
			s.members[key] = id
			if s.arcs != nil {
				s.arcs.Recombine(id, cur)
			}
		} else {
			if s.arcs != nil {
				s.arcs.Recombine(cur, id)
			}
			return false
		}
	} else {
		s.members[key] = id
	}

	if s.beam > 0 && len(s.members) > 2*s.beam {
		s.Prune()
	}
	kept, ok := s.members[key]
	return ok && kept == id
}

// Len returns the number of live hypotheses.
func (s *Stack) Len() int { return len(s.members) }

// Prune keeps the best beam hypotheses by total score and applies the
// relative threshold.
func (s *Stack) Prune() {
	if len(s.members) == 0 {
		return
	}

	limit := s.beam
	if limit <= 0 {
		limit = len(s.members)
	}
	s.heap.reset()
	best := math.Inf(-1)
	for _, id := range s.members {
		e := entry{ID: id, Total: s.arena.Get(id).Total()}
		best = max(best, e.Total)
		s.heap.pushBounded(e, limit)
	}

	cutoff := best - s.threshold
	if len(s.heap.items) == len(s.members) && math.IsInf(s.threshold, 1) {
		return
	}

	kept := make(map[string]ID, len(s.heap.items))
	for _, e := range s.heap.items {
		if e.Total < cutoff {
			continue
		}
		h := s.arena.Get(e.ID)
		kept[h.RecombinationKey()] = e.ID
	}
	s.pruned += len(s.members) - len(kept)
	s.members = kept
}

// Sorted returns the live hypotheses ordered by total score, best first.
// Ties are broken by allocation order.
func (s *Stack) Sorted() []ID {
	entries := make([]entry, 0, len(s.members))
	for _, id := range s.members {
		entries = append(entries, entry{ID: id, Total: s.arena.Get(id).Total()})
	}
	sort.Slice(entries, func(i, j int) bool { return better(entries[i], entries[j]) })
	ids := make([]ID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

// Best returns the hypothesis with the highest actual score.
// Ties are broken by allocation order.
func (s *Stack) Best() (ID, bool) {
	best := None
	for _, id := range s.members {
		if best == None {
			best = id
			continue
		}
		h, b := s.arena.Get(id), s.arena.Get(best)
		if h.Score > b.Score || (h.Score == b.Score && id < best) {
			best = id
		}
	}
	return best, best != None
}

// StackStats counts what happened to hypotheses offered to a stack.
type StackStats struct {
	Recombined int
	Pruned     int
	Discarded  int
}

// Stats returns the counters accumulated so far.
func (s *Stack) Stats() StackStats {
	return StackStats{Recombined: s.recombined, Pruned: s.pruned, Discarded: s.discarded}
}
