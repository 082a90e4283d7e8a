package phrasego

import (
	"errors"
	"fmt"

	"github.com/hupe1980/phrasego/internal/hypo"
	"github.com/hupe1980/phrasego/internal/nbest"
	"github.com/hupe1980/phrasego/internal/pool"
	"github.com/hupe1980/phrasego/internal/search"
	"github.com/hupe1980/phrasego/resource"
)

var (
	// ErrUnknownAlgorithm is returned for an unrecognized search algorithm name.
	ErrUnknownAlgorithm = errors.New("unknown search algorithm")

	// ErrInvalidExpansion is returned when an option overlaps the coverage
	// of the hypothesis it extends.
	ErrInvalidExpansion = errors.New("invalid expansion")

	// ErrRejected is returned when the decoder no longer accepts work.
	ErrRejected = errors.New("decoder is stopping")

	// ErrBudgetExceeded is returned when a search runs out of hypothesis budget.
	ErrBudgetExceeded = errors.New("hypothesis budget exceeded")

	// ErrEmptySentence is returned for a nil or empty sentence.
	ErrEmptySentence = errors.New("empty sentence")

	// ErrInvalidNBest is returned for a negative n-best size or factor.
	ErrInvalidNBest = errors.New("invalid n-best request")

	// ErrInvalidConfig is returned for option values outside their range.
	ErrInvalidConfig = errors.New("invalid config")
)

// ConfigError reports an invalid option value passed to New.
//
// The sentinel describing the problem (ErrUnknownAlgorithm, ErrInvalidNBest,
// ErrInvalidConfig) can be matched with errors.Is.
type ConfigError struct {
	Field string
	Value any
	cause error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %v", e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, search.ErrUnknownAlgorithm) {
		return fmt.Errorf("%w: %w", ErrUnknownAlgorithm, err)
	}
	if errors.Is(err, hypo.ErrInvalidExpansion) {
		return fmt.Errorf("%w: %w", ErrInvalidExpansion, err)
	}
	if errors.Is(err, pool.ErrRejected) {
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}
	if errors.Is(err, hypo.ErrBudgetExceeded) || errors.Is(err, resource.ErrHypothesesExhausted) {
		return fmt.Errorf("%w: %w", ErrBudgetExceeded, err)
	}
	if errors.Is(err, nbest.ErrInvalidRequest) {
		return fmt.Errorf("%w: %w", ErrInvalidNBest, err)
	}

	return err
}
