package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/phrasego"
	"github.com/hupe1980/phrasego/model"
)

// chunkSize is the number of lines handed to the worker pool at once.
const chunkSize = 64

// translator is the part of *phrasego.Decoder the pipeline uses.
type translator interface {
	TranslateAll(ctx context.Context, sentences []*model.Sentence) []*phrasego.Result
	FormatBest(r *phrasego.Result) string
	FormatNBest(r *phrasego.Result) []string
}

func runTranslate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	p := &pipeline{
		d:      a.decoder,
		logger: a.logger,
		nbest:  cfg.NBest.Size > 0,
		chunk:  chunkSize,
	}
	return p.run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}

// pipeline reads lines, translates them in chunks and writes the results in
// input order. Reading, translating and writing run concurrently.
type pipeline struct {
	d      translator
	logger *phrasego.Logger
	nbest  bool
	chunk  int
}

func (p *pipeline) run(ctx context.Context, r io.Reader, w io.Writer) error {
	g, ctx := errgroup.WithContext(ctx)
	chunks := make(chan []*model.Sentence, 2)
	results := make(chan []*phrasego.Result, 2)

	g.Go(func() error {
		defer close(chunks)
		return p.read(ctx, r, chunks)
	})
	g.Go(func() error {
		defer close(results)
		for c := range chunks {
			select {
			case results <- p.d.TranslateAll(ctx, c):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	g.Go(func() error {
		return p.write(ctx, w, results)
	})
	return g.Wait()
}

func (p *pipeline) read(ctx context.Context, r io.Reader, out chan<- []*model.Sentence) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		id    int64
		chunk = make([]*model.Sentence, 0, p.chunk)
	)
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		select {
		case out <- chunk:
		case <-ctx.Done():
			return ctx.Err()
		}
		chunk = make([]*model.Sentence, 0, p.chunk)
		return nil
	}

	for sc.Scan() {
		chunk = append(chunk, model.ParseSentence(id, sc.Text()))
		id++
		if len(chunk) == p.chunk {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return flush()
}

func (p *pipeline) write(ctx context.Context, w io.Writer, in <-chan []*phrasego.Result) error {
	bw := bufio.NewWriter(w)
	for results := range in {
		for _, r := range results {
			if err := p.writeResult(ctx, bw, r); err != nil {
				return err
			}
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return bw.Flush()
}

func (p *pipeline) writeResult(ctx context.Context, w *bufio.Writer, r *phrasego.Result) error {
	if r.Err != nil && !errors.Is(r.Err, phrasego.ErrEmptySentence) {
		p.logger.ErrorContext(ctx, "sentence failed", "sentence", r.ID, "error", r.Err)
	}

	if p.nbest {
		for _, line := range p.d.FormatNBest(r) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	}
	_, err := fmt.Fprintln(w, p.d.FormatBest(r))
	return err
}
