package nbest

import (
	"fmt"
	"strings"

	"github.com/hupe1980/phrasego/internal/hash"
	"github.com/hupe1980/phrasego/internal/hypo"
)

// node is one position of a path: an arc list and the chosen alternative.
type node struct {
	arcs  []hypo.ID
	index int
}

func (n node) id() hypo.ID { return n.arcs[n.index] }

// notChanged marks a path that was built from a terminal hypothesis.
const notChanged = -1

// Path is a complete derivation through the hypothesis graph, stored from the
// terminal hypothesis back to the first expansion after the root. It differs
// from the path it was derived from in at most one node.
type Path struct {
	arena *hypo.Arena
	arcs  *hypo.ArcLists

	nodes           []node
	prevEdgeChanged int

	score     float64
	breakdown []float64
}

// NewPath builds the best path ending at terminal.
// arcs may be nil, in which case the path has no alternatives.
func NewPath(a *hypo.Arena, arcs *hypo.ArcLists, terminal hypo.ID) *Path {
	p := &Path{arena: a, arcs: arcs, prevEdgeChanged: notChanged}
	h := a.Get(terminal)
	p.score = h.Score
	p.breakdown = append([]float64(nil), h.Breakdown...)
	p.follow(terminal)
	return p
}

// deviate builds the path that equals orig up to edge, takes alternative
// index at edge, and follows best predecessors from there.
func deviate(orig *Path, edge, index int) *Path {
	p := &Path{
		arena:           orig.arena,
		arcs:            orig.arcs,
		prevEdgeChanged: edge,
		nodes:           make([]node, edge, len(orig.nodes)),
	}
	copy(p.nodes, orig.nodes[:edge])

	at := orig.nodes[edge]
	before := orig.arena.Get(at.id())
	after := orig.arena.Get(at.arcs[index])

	p.score = orig.score - before.Score + after.Score
	p.breakdown = make([]float64, max(len(orig.breakdown), len(before.Breakdown), len(after.Breakdown)))
	copy(p.breakdown, orig.breakdown)
	for i, v := range before.Breakdown {
		p.breakdown[i] -= v
	}
	for i, v := range after.Breakdown {
		p.breakdown[i] += v
	}

	p.nodes = append(p.nodes, node{arcs: at.arcs, index: index})
	p.follow(after.Prev)
	return p
}

// follow appends id and its best predecessors up to, not including, the root.
func (p *Path) follow(id hypo.ID) {
	for h := p.arena.Get(id); h != nil && h.Prev != hypo.None; h = p.arena.Get(h.Prev) {
		p.nodes = append(p.nodes, node{arcs: p.alternatives(h.ID), index: 0})
	}
}

func (p *Path) alternatives(id hypo.ID) []hypo.ID {
	if p.arcs == nil {
		return []hypo.ID{id}
	}
	list := p.arcs.Get(id)
	if list[0] != id {
		return []hypo.ID{id}
	}
	return list
}

// CreateDeviantPaths adds to c every path that differs from p in exactly one
// node after the last node p itself changed.
func (p *Path) CreateDeviantPaths(c *Contenders) {
	for edge := p.prevEdgeChanged + 1; edge < len(p.nodes); edge++ {
		for index := 1; index < len(p.nodes[edge].arcs); index++ {
			c.Add(deviate(p, edge, index))
		}
	}
}

// Score returns the total model score of the path.
func (p *Path) Score() float64 { return p.score }

// Breakdown returns the per-feature scores of the path.
func (p *Path) Breakdown() []float64 { return p.breakdown }

// Len returns the number of phrases in the path.
func (p *Path) Len() int { return len(p.nodes) }

// Hypotheses returns the hypotheses of the path in application order.
func (p *Path) Hypotheses() []hypo.ID {
	ids := make([]hypo.ID, len(p.nodes))
	for i, n := range p.nodes {
		ids[len(p.nodes)-1-i] = n.id()
	}
	return ids
}

// Target returns the target words in output order.
func (p *Path) Target() []string {
	var words []string
	for i := len(p.nodes) - 1; i >= 0; i-- {
		if opt := p.arena.Get(p.nodes[i].id()).Option; opt != nil {
			words = append(words, opt.Target...)
		}
	}
	return words
}

// String returns the target words joined by single spaces.
func (p *Path) String() string {
	return strings.Join(p.Target(), " ")
}

// Signature identifies the path by the hypotheses it visits.
func (p *Path) Signature() uint64 {
	d := hash.NewDigest()
	for _, n := range p.nodes {
		d.AddUint32(uint32(n.id()))
	}
	return d.Sum64()
}

// GoString returns a debug representation of the Path.
func (p *Path) GoString() string {
	return fmt.Sprintf("nbest.Path{score: %.4f, nodes: %d, prevEdgeChanged: %d, target: %q}",
		p.score, len(p.nodes), p.prevEdgeChanged, p.String())
}
