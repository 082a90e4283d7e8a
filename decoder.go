package phrasego

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/phrasego/cache"
	"github.com/hupe1980/phrasego/codec"
	"github.com/hupe1980/phrasego/internal/pool"
	"github.com/hupe1980/phrasego/model"
)

// Decoder translates sentences with one phrase lookup and one scorer.
// It is safe for concurrent use; each sentence is searched independently.
type Decoder struct {
	lookup model.PhraseLookup
	scorer model.Scorer
	opts   options

	fingerprint string

	mu     sync.Mutex // guards pool creation against Close
	pool   *pool.Pool
	closed atomic.Bool
}

// New creates a Decoder.
func New(lookup model.PhraseLookup, scorer model.Scorer, optFns ...Option) (*Decoder, error) {
	if lookup == nil || scorer == nil {
		return nil, fmt.Errorf("phrasego: lookup and scorer are required")
	}
	o := applyOptions(optFns)
	if err := o.validate(); err != nil {
		return nil, err
	}

	d := &Decoder{
		lookup: lookup,
		scorer: scorer,
		opts:   o,
	}
	codecName := ""
	if o.codec != nil {
		codecName = o.codec.Name()
	}
	d.fingerprint = fmt.Sprintf("%s|%s|%s|%+v|%d|%t|%d|%v",
		o.fingerprint, codecName, o.algorithm, o.params, o.nbest, o.distinct, o.nbestFactor, scorer.FeatureNames())
	return d, nil
}

// workers starts the pool on first use, so decoders that only call
// Translate never start goroutines. It fails once the decoder is closed.
func (d *Decoder) workers() (*pool.Pool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed.Load() {
		return nil, ErrRejected
	}
	if d.pool == nil {
		d.pool = pool.New(d.opts.threads,
			pool.WithQueueLimit(d.opts.queueLimit),
			pool.WithCPUAffinity(d.opts.cpuAffinity),
			pool.WithLogger(d.opts.logger.Logger),
		)
	}
	return d.pool, nil
}

// Translate decodes one sentence in the calling goroutine.
func (d *Decoder) Translate(ctx context.Context, s *model.Sentence) (*Result, error) {
	if s == nil || s.Len() == 0 {
		return nil, ErrEmptySentence
	}
	if d.closed.Load() {
		return nil, ErrRejected
	}
	return d.translateSentence(ctx, s)
}

// translateSentence decodes an admitted sentence. Sentences queued before
// Close still run through it.
func (d *Decoder) translateSentence(ctx context.Context, s *model.Sentence) (*Result, error) {
	logger := d.opts.logger.WithSentence(s.ID).WithAlgorithm(d.opts.algorithm)
	start := time.Now()

	r, err := d.translate(ctx, s)
	duration := time.Since(start)

	found := r != nil && r.Found
	if r == nil || !r.Cached {
		d.opts.metricsCollector.RecordDecode(d.opts.algorithm, duration, found, err)
	}
	logger.LogDecode(ctx, r, duration, err)
	return r, translateError(err)
}

func (d *Decoder) translate(ctx context.Context, s *model.Sentence) (*Result, error) {
	if err := d.opts.resource.WaitSentence(ctx); err != nil {
		return nil, err
	}

	var key cache.Key
	if d.opts.cache != nil {
		key = cache.KeyFor(d.fingerprint, s.String())
		if r, ok := d.cached(ctx, key); ok {
			r.ID = s.ID
			return r, nil
		}
	}

	r, err := d.decode(ctx, s)
	if err != nil {
		return nil, err
	}

	if d.opts.cache != nil {
		d.store(ctx, key, r)
	}
	return r, nil
}

// cached treats cache failures as misses.
func (d *Decoder) cached(ctx context.Context, key cache.Key) (*Result, bool) {
	b, ok, err := d.opts.cache.Get(ctx, key)
	if err != nil {
		d.opts.logger.WarnContext(ctx, "cache get failed", "key", key.String(), "error", err)
	}
	if !ok || err != nil {
		d.opts.metricsCollector.RecordCache(false)
		return nil, false
	}

	var r Result
	if err := codec.Decode(d.opts.codec, b, &r); err != nil {
		d.opts.logger.WarnContext(ctx, "cache entry corrupt", "key", key.String(), "error", err)
		d.opts.metricsCollector.RecordCache(false)
		return nil, false
	}
	d.opts.metricsCollector.RecordCache(true)
	r.Cached = true
	return &r, true
}

func (d *Decoder) store(ctx context.Context, key cache.Key, r *Result) {
	b, err := codec.Encode(d.opts.codec, r)
	if err == nil {
		err = d.opts.cache.Set(ctx, key, b)
	}
	if err != nil {
		d.opts.logger.WarnContext(ctx, "cache set failed", "key", key.String(), "error", err)
	}
}

// TranslateAll decodes sentences concurrently on the worker pool and returns
// the results in input order. A failing sentence yields a Result with Err
// set and never affects the others.
func (d *Decoder) TranslateAll(ctx context.Context, sentences []*model.Sentence) []*Result {
	start := time.Now()
	results := make([]*Result, len(sentences))

	var wg sync.WaitGroup
	for i, s := range sentences {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i] = d.safeTranslate(ctx, s)
		}

		p, err := d.workers()
		if err == nil {
			err = p.SubmitFunc(task)
		}
		if err != nil {
			wg.Done()
			d.opts.metricsCollector.RecordRejected()
			results[i] = &Result{ID: sentenceID(s), Err: translateError(err)}
		}
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	d.opts.logger.LogBatch(ctx, len(sentences), failed, time.Since(start))
	return results
}

func (d *Decoder) safeTranslate(ctx context.Context, s *model.Sentence) *Result {
	if s == nil || s.Len() == 0 {
		return &Result{ID: sentenceID(s), Err: ErrEmptySentence}
	}
	r, err := d.translateSentence(ctx, s)
	if err != nil {
		return &Result{ID: sentenceID(s), Err: err}
	}
	return r
}

func sentenceID(s *model.Sentence) int64 {
	if s == nil {
		return 0
	}
	return s.ID
}

// Close stops the worker pool after the queued sentences are decoded.
// Translate and TranslateAll fail with ErrRejected afterwards. Close is
// idempotent.
func (d *Decoder) Close() error {
	d.mu.Lock()
	if d.closed.Swap(true) {
		d.mu.Unlock()
		return nil
	}
	p := d.pool
	d.mu.Unlock()

	if p != nil {
		p.Stop(true)
	}
	return nil
}
