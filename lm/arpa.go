// Package lm implements a backoff n-gram language model read from ARPA text.
//
// Probabilities are converted from log10 to natural logarithms when loaded,
// so scores combine directly with phrase table scores.
package lm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/hupe1980/phrasego/internal/modelfile"
	"github.com/hupe1980/phrasego/resource"
)

const (
	// BOS and EOS are the sentence boundary tokens.
	BOS = "<s>"
	EOS = "</s>"
	// Unknown is the ARPA token for out-of-vocabulary words.
	Unknown = "<unk>"

	// DefaultUnknownLogProb is used when the model has no <unk> entry.
	DefaultUnknownLogProb = -100.0
)

// ErrFormat is returned for malformed ARPA input.
var ErrFormat = errors.New("lm: invalid arpa")

type entry struct {
	prob    float64
	backoff float64
}

// Model is an immutable backoff n-gram model. It is safe for concurrent use.
type Model struct {
	order   int
	grams   map[string]entry
	unknown float64
}

// Load reads an ARPA file. Plain, zstd and lz4 files are accepted.
func Load(ctx context.Context, path string, rc *resource.Controller) (*Model, error) {
	f, err := modelfile.Open(ctx, path, rc)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return m, nil
}

// Parse reads ARPA text from r.
func Parse(r io.Reader) (*Model, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		counts  = map[int]int{}
		seen    = map[int]int{}
		grams   = map[string]entry{}
		section = -1 // -1 before \data\, 0 in \data\, n in \n-grams:
		line    int
		ended   bool
	)

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		switch {
		case text == `\data\`:
			section = 0
			continue
		case text == `\end\`:
			ended = true
		case strings.HasPrefix(text, `\`) && strings.HasSuffix(text, "-grams:"):
			n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(text, `\`), "-grams:"))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: line %d: section %q", ErrFormat, line, text)
			}
			section = n
			continue
		}
		if ended {
			break
		}

		switch {
		case section < 0:
			// Header text before \data\ is ignored.
		case section == 0:
			n, c, err := parseCount(text)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
			}
			counts[n] = c
		default:
			key, e, err := parseGram(text, section)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
			}
			grams[key] = e
			seen[section]++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("lm: read: %w", err)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("%w: missing \\data\\ section", ErrFormat)
	}

	order := 0
	for n, c := range counts {
		if seen[n] != c {
			return nil, fmt.Errorf("%w: %d-grams: declared %d, found %d", ErrFormat, n, c, seen[n])
		}
		order = max(order, n)
	}

	m := &Model{order: order, grams: grams, unknown: DefaultUnknownLogProb}
	if e, ok := grams[Unknown]; ok {
		m.unknown = e.prob
	}
	return m, nil
}

func parseCount(text string) (n, c int, err error) {
	rest, ok := strings.CutPrefix(text, "ngram ")
	if !ok {
		return 0, 0, fmt.Errorf("unexpected %q", text)
	}
	ns, cs, ok := strings.Cut(rest, "=")
	if !ok {
		return 0, 0, fmt.Errorf("unexpected %q", text)
	}
	if n, err = strconv.Atoi(strings.TrimSpace(ns)); err != nil {
		return 0, 0, err
	}
	if c, err = strconv.Atoi(strings.TrimSpace(cs)); err != nil {
		return 0, 0, err
	}
	return n, c, nil
}

func parseGram(text string, n int) (string, entry, error) {
	fields := strings.Fields(text)
	if len(fields) != n+1 && len(fields) != n+2 {
		return "", entry{}, fmt.Errorf("want %d or %d fields, got %d", n+1, n+2, len(fields))
	}
	p, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return "", entry{}, err
	}
	e := entry{prob: p * math.Ln10}
	if len(fields) == n+2 {
		bo, err := strconv.ParseFloat(fields[n+1], 64)
		if err != nil {
			return "", entry{}, err
		}
		e.backoff = bo * math.Ln10
	}
	return strings.Join(fields[1:n+1], " "), e, nil
}

// Order returns the n of the model.
func (m *Model) Order() int { return m.order }

// Len returns the number of stored n-grams.
func (m *Model) Len() int { return len(m.grams) }

// LogProb returns ln p(word | history) with Katz backoff. Only the last
// Order()-1 history words are used.
func (m *Model) LogProb(history []string, word string) float64 {
	if keep := m.order - 1; len(history) > keep {
		history = history[len(history)-keep:]
	}
	backoff := 0.0
	for i := 0; i <= len(history); i++ {
		ctx := history[i:]
		if e, ok := m.grams[join(ctx, word)]; ok {
			return backoff + e.prob
		}
		if len(ctx) > 0 {
			if e, ok := m.grams[strings.Join(ctx, " ")]; ok {
				backoff += e.backoff
			}
		}
	}
	return m.unknown
}

func join(ctx []string, word string) string {
	if len(ctx) == 0 {
		return word
	}
	return strings.Join(ctx, " ") + " " + word
}
