package hypo

import "sort"

// ArcLists records, for each surviving hypothesis, the hypotheses that were
// recombined into it. The survivor is always the first entry of its list.
type ArcLists struct {
	arena *Arena
	lists map[ID][]ID
}

// NewArcLists creates empty arc lists over the given arena.
func NewArcLists(a *Arena) *ArcLists {
	return &ArcLists{arena: a, lists: make(map[ID][]ID)}
}

// Recombine records that loser was merged into winner. Arcs previously
// attached to loser move to winner.
func (l *ArcLists) Recombine(winner, loser ID) {
	list, ok := l.lists[winner]
	if !ok {
		list = []ID{winner}
	}
	if moved, ok := l.lists[loser]; ok {
		list = append(list, moved...)
		delete(l.lists, loser)
	} else {
		list = append(list, loser)
	}
	l.lists[winner] = list
}

// Get returns the arc list of id: id itself followed by its recombined
// alternatives. Hypotheses that never recombined have a single entry.
func (l *ArcLists) Get(id ID) []ID {
	if list, ok := l.lists[id]; ok {
		return list
	}
	return []ID{id}
}

// Len returns the number of hypotheses with at least one alternative.
func (l *ArcLists) Len() int { return len(l.lists) }

// Sort orders the alternatives of every list by score, best first.
// The survivor stays in front; equal scores keep their recombination order.
func (l *ArcLists) Sort() {
	for _, list := range l.lists {
		alts := list[1:]
		sort.SliceStable(alts, func(i, j int) bool {
			return l.arena.Get(alts[i]).Score > l.arena.Get(alts[j]).Score
		})
	}
}
