package search

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAlgorithm is returned for an algorithm name or value that has no
// strategy.
var ErrUnknownAlgorithm = errors.New("search: unknown algorithm")

// Algorithm selects the search strategy.
type Algorithm int

const (
	// Normal expands every hypothesis of a stack with every applicable option.
	Normal Algorithm = iota
	// Batch is Normal with grouped scoring.
	Batch
	// CubePruningMiniStack produces successors lazily per mini-stack.
	CubePruningMiniStack
)

// String returns the canonical name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case Normal:
		return "normal"
	case Batch:
		return "batch"
	case CubePruningMiniStack:
		return "cube-pruning-mini-stack"
	default:
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
}

// Valid reports whether a names an implemented strategy.
func (a Algorithm) Valid() bool {
	return a >= Normal && a <= CubePruningMiniStack
}

// ParseAlgorithm maps a configuration name to an Algorithm.
// "cube-pruning" is accepted as an alias of the mini-stack variant.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "normal", "":
		return Normal, nil
	case "batch", "normal-batch":
		return Batch, nil
	case "cube-pruning", "cube-pruning-mini-stack", "cube":
		return CubePruningMiniStack, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}
