package search

import (
	"sync"

	"github.com/hupe1980/phrasego/internal/hypo"
	"github.com/hupe1980/phrasego/internal/queue"
	"github.com/hupe1980/phrasego/model"
)

const (
	// defaultFrontierCapacity is the initial capacity of the cube frontier.
	defaultFrontierCapacity = 256

	// maxRetainedRequests bounds the batch buffer kept across searches.
	maxRetainedRequests = 4096
)

// scratch owns the reusable buffers of one search, so steady-state decoding
// does not allocate them per stack.
//
// scratch is NOT thread-safe. It is owned by the goroutine running the search.
type scratch struct {
	// parents and requests are the pending expansions of Batch, aligned.
	parents  []hypo.ID
	requests []model.EvalRequest

	// frontier is the cube pruning priority queue (best Total first).
	frontier *queue.PriorityQueue[cubeItem]

	// seen marks the grid positions already pushed for the current stack.
	seen map[gridPos]struct{}
}

var scratchPool = sync.Pool{
	New: func() any {
		return &scratch{
			parents:  make([]hypo.ID, 0, DefaultBatchSize),
			requests: make([]model.EvalRequest, 0, DefaultBatchSize),
			frontier: queue.NewMax[cubeItem](defaultFrontierCapacity),
			seen:     make(map[gridPos]struct{}),
		}
	},
}

// getScratch retrieves a cleared scratch from the pool.
func getScratch() *scratch {
	s := scratchPool.Get().(*scratch)
	s.Reset()
	return s
}

// putScratch returns s to the pool for reuse.
func putScratch(s *scratch) {
	if cap(s.requests) > maxRetainedRequests {
		s.parents = make([]hypo.ID, 0, DefaultBatchSize)
		s.requests = make([]model.EvalRequest, 0, DefaultBatchSize)
	}
	s.Reset()
	scratchPool.Put(s)
}

// Reset clears the scratch state without freeing memory.
func (s *scratch) Reset() {
	s.resetBatch()
	s.resetCube()
}

func (s *scratch) resetBatch() {
	s.parents = s.parents[:0]
	clear(s.requests)
	s.requests = s.requests[:0]
}

func (s *scratch) resetCube() {
	s.frontier.Reset()
	clear(s.seen)
}
