package hypo

const heapArity = 4

// entry is a lightweight heap element: the ranking score and the arena ID.
type entry struct {
	ID    ID
	Total float64
}

// better reports whether a ranks before b.
// Tie-breaker is ID ascending (allocation order) for determinism.
func better(a, b entry) bool {
	if a.Total != b.Total {
		return a.Total > b.Total
	}
	return a.ID < b.ID
}

// beamHeap is a 4-ary heap ordered worst first, so the top element is the
// eviction candidate when the beam is full.
type beamHeap struct {
	items []entry
}

func (h *beamHeap) Len() int { return len(h.items) }

func (h *beamHeap) reset() { h.items = h.items[:0] }

// pushBounded inserts e if the heap holds fewer than limit entries, or
// replaces the worst entry if e ranks before it.
func (h *beamHeap) pushBounded(e entry, limit int) {
	if len(h.items) < limit {
		h.items = append(h.items, e)
		h.up(len(h.items) - 1)
		return
	}
	if better(e, h.items[0]) {
		h.items[0] = e
		h.down(0, len(h.items))
	}
}

// up moves element at j up the heap.
// 4-ary heap: parent = (j-1)/4 instead of (j-1)/2
func (h *beamHeap) up(j int) {
	item := h.items[j]
	for j > 0 {
		i := (j - 1) / heapArity
		if !better(h.items[i], item) {
			break
		}
		h.items[j] = h.items[i]
		j = i
	}
	h.items[j] = item
}

// down moves element at i0 down the heap.
// 4-ary heap: first child = 4*i+1, up to 4 children to compare.
func (h *beamHeap) down(i0, n int) {
	i := i0
	item := h.items[i]
	for {
		firstChild := heapArity*i + 1
		if firstChild >= n {
			break
		}
		worst := firstChild
		lastChild := min(firstChild+heapArity, n)
		for c := firstChild + 1; c < lastChild; c++ {
			if better(h.items[worst], h.items[c]) {
				worst = c
			}
		}
		if !better(item, h.items[worst]) {
			break
		}
		h.items[i] = h.items[worst]
		i = worst
	}
	h.items[i] = item
}
