package nbest

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/phrasego/internal/hypo"
)

// DefaultFactor bounds the number of paths consumed per requested result.
const DefaultFactor = 20

// ErrInvalidRequest is returned for a request without a positive size.
var ErrInvalidRequest = errors.New("nbest: invalid request")

// Source provides the starting paths and the recombination arcs of a
// finished search.
type Source interface {
	AddInitialPaths(c *Contenders)
	Arcs() *hypo.ArcLists
}

// Request configures an extraction.
type Request struct {
	// N is the number of paths to return.
	N int
	// Distinct skips paths whose target text was already returned.
	Distinct bool
	// Factor caps the paths consumed, accepted or skipped, at N*Factor.
	// 0 means unbounded.
	Factor int
}

// Extract returns up to N paths in non-increasing score order.
func Extract(ctx context.Context, src Source, req Request) ([]*Path, error) {
	if req.N <= 0 || req.Factor < 0 {
		return nil, fmt.Errorf("%w: n=%d factor=%d", ErrInvalidRequest, req.N, req.Factor)
	}

	if arcs := src.Arcs(); arcs != nil {
		arcs.Sort()
	}
	c := NewContenders()
	src.AddInitialPaths(c)

	limit := req.N * req.Factor
	emitted := make(map[string]struct{})
	out := make([]*Path, 0, req.N)
	for consumed := 0; len(out) < req.N && !c.Empty(); consumed++ {
		if limit > 0 && consumed >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		p, _ := c.Get()
		if req.Distinct {
			text := p.String()
			if _, dup := emitted[text]; !dup {
				emitted[text] = struct{}{}
				out = append(out, p)
			}
		} else {
			out = append(out, p)
		}
		p.CreateDeviantPaths(c)
	}
	return out, nil
}
