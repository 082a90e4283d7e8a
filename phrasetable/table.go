// Package phrasetable provides an in-memory phrase table that implements
// model.PhraseLookup.
//
// Tables are read from Moses-style text:
//
//	source words ||| target words ||| p1 p2 ... [||| alignment ||| counts]
//
// Scores are probabilities and are stored as natural logarithms. Fields after
// the scores are ignored.
package phrasetable

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/hupe1980/phrasego/internal/modelfile"
	"github.com/hupe1980/phrasego/model"
	"github.com/hupe1980/phrasego/resource"
)

const (
	// DefaultMaxPhraseLength bounds the source side of loaded phrases.
	DefaultMaxPhraseLength = 7

	// DefaultTableLimit is the number of targets kept per source phrase.
	DefaultTableLimit = 20

	// DefaultUnknownScore is the weighted score of a pass-through option.
	DefaultUnknownScore = -100.0

	// logFloor replaces log(0).
	logFloor = -100.0

	fieldSep = "|||"
)

// ErrSyntax is returned for malformed phrase table lines.
var ErrSyntax = errors.New("phrasetable: syntax error")

type entry struct {
	target []string
	scores []float64
	score  float64
}

// Table maps source phrases to scored target phrases.
// It is safe for concurrent lookups once loading has finished.
type Table struct {
	opts options

	mu       sync.RWMutex
	entries  map[string][]entry
	maxLen   int
	features int
}

// New creates an empty table.
func New(opts ...Option) *Table {
	return &Table{
		opts:    applyOptions(opts),
		entries: make(map[string][]entry),
	}
}

// Load reads a table from path. Plain, zstd and lz4 files are accepted.
func Load(ctx context.Context, path string, rc *resource.Controller, opts ...Option) (*Table, error) {
	f, err := modelfile.Open(ctx, path, rc)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return t, nil
}

// Parse reads a table from r.
func Parse(r io.Reader, opts ...Option) (*Table, error) {
	t := New(opts...)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		src, tgt, scores, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrSyntax, line, err)
		}
		if err := t.Add(src, tgt, scores); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("phrasetable: read: %w", err)
	}
	t.Finalize()
	return t, nil
}

func parseLine(text string) (src, tgt string, scores []float64, err error) {
	fields := strings.Split(text, fieldSep)
	if len(fields) < 3 {
		return "", "", nil, fmt.Errorf("want at least 3 fields, got %d", len(fields))
	}
	src = strings.TrimSpace(fields[0])
	tgt = strings.TrimSpace(fields[1])
	if src == "" {
		return "", "", nil, errors.New("empty source phrase")
	}
	for _, f := range strings.Fields(fields[2]) {
		p, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return "", "", nil, fmt.Errorf("score %q: %w", f, err)
		}
		scores = append(scores, toLog(p))
	}
	return src, tgt, scores, nil
}

func toLog(p float64) float64 {
	if p <= 0 {
		return logFloor
	}
	return max(math.Log(p), logFloor)
}

// Add inserts a phrase pair. scores are already in the log domain.
// Phrases longer than the configured maximum are skipped.
func (t *Table) Add(source, target string, scores []float64) error {
	src := strings.Fields(source)
	if len(src) == 0 {
		return fmt.Errorf("%w: empty source phrase", ErrSyntax)
	}
	if len(src) > t.opts.maxPhraseLength {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.features == 0 {
		t.features = len(scores)
	} else if len(scores) != t.features {
		return fmt.Errorf("%w: %d scores, table has %d", ErrSyntax, len(scores), t.features)
	}

	key := strings.Join(src, " ")
	t.entries[key] = append(t.entries[key], entry{
		target: strings.Fields(target),
		scores: slices.Clone(scores),
		score:  t.weigh(scores),
	})
	t.maxLen = max(t.maxLen, len(src))
	return nil
}

func (t *Table) weigh(scores []float64) float64 {
	var s float64
	for i, v := range scores {
		w := 1.0
		if i < len(t.opts.weights) {
			w = t.opts.weights[i]
		}
		s += w * v
	}
	return s
}

// Finalize sorts every target list by score and applies the table limit.
// Parse and Load call it; callers using Add must call it before lookups.
func (t *Table) Finalize() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, list := range t.entries {
		slices.SortStableFunc(list, func(a, b entry) int {
			switch {
			case a.score > b.score:
				return -1
			case a.score < b.score:
				return 1
			}
			return 0
		})
		if limit := t.opts.tableLimit; limit > 0 && len(list) > limit {
			list = list[:limit]
		}
		t.entries[key] = list
	}
}

// Len returns the number of distinct source phrases.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// NumFeatures returns the number of scores per phrase pair.
func (t *Table) NumFeatures() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.features
}

// MaxPhraseLength implements model.PhraseLookup.
func (t *Table) MaxPhraseLength() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return max(t.maxLen, 1)
}

// Lookup implements model.PhraseLookup. With unknown-word pass-through
// enabled, a single word without any entry translates to itself.
func (t *Table) Lookup(ctx context.Context, sentence *model.Sentence, span model.Span) ([]*model.TranslationOption, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !span.Valid(sentence.Len()) {
		return nil, nil
	}
	words := sentence.Words(span)
	key := strings.Join(words, " ")

	t.mu.RLock()
	list := t.entries[key]
	features := t.features
	t.mu.RUnlock()

	if len(list) == 0 {
		if t.opts.unknownWords && span.Len() == 1 {
			return []*model.TranslationOption{t.unknown(span, words, features)}, nil
		}
		return nil, nil
	}

	opts := make([]*model.TranslationOption, len(list))
	for i, e := range list {
		opts[i] = &model.TranslationOption{
			Span:        span,
			Source:      words,
			Target:      e.target,
			Scores:      e.scores,
			Score:       e.score,
			FutureScore: e.score,
		}
	}
	return opts, nil
}

func (t *Table) unknown(span model.Span, words []string, features int) *model.TranslationOption {
	scores := make([]float64, features)
	for i := range scores {
		scores[i] = logFloor
	}
	return &model.TranslationOption{
		Span:        span,
		Source:      words,
		Target:      words,
		Scores:      scores,
		Score:       t.opts.unknownScore,
		FutureScore: t.opts.unknownScore,
	}
}
