package nbest

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/phrasego/internal/queue"
)

// Contenders is the frontier of paths not yet emitted, best score first.
// Paths with equal scores come out in insertion order. A path that visits
// the same hypotheses as one added earlier is ignored.
type Contenders struct {
	queue *queue.PriorityQueue[*Path]
	seen  *roaring64.Bitmap
}

// NewContenders creates an empty frontier.
func NewContenders() *Contenders {
	return &Contenders{
		queue: queue.NewMax[*Path](64),
		seen:  roaring64.NewBitmap(),
	}
}

// Add inserts p and reports whether it was new.
func (c *Contenders) Add(p *Path) bool {
	if !c.seen.CheckedAdd(p.Signature()) {
		return false
	}
	c.queue.Push(p, p.Score())
	return true
}

// Get removes and returns the best path.
func (c *Contenders) Get() (*Path, bool) {
	return c.queue.Pop()
}

// Len returns the number of queued paths.
func (c *Contenders) Len() int { return c.queue.Len() }

// Empty reports whether no path is queued.
func (c *Contenders) Empty() bool { return c.queue.Len() == 0 }
