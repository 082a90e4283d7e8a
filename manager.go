package phrasego

import (
	"context"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/phrasego/internal/futurecost"
	"github.com/hupe1980/phrasego/internal/hypo"
	"github.com/hupe1980/phrasego/internal/nbest"
	"github.com/hupe1980/phrasego/internal/search"
	"github.com/hupe1980/phrasego/model"
)

// manager owns the search of one sentence: lattice, future costs, strategy
// and the arena holding every hypothesis.
type manager struct {
	d        *Decoder
	sentence *model.Sentence
	arena    *hypo.Arena
	strategy search.Strategy
}

func (d *Decoder) decode(ctx context.Context, s *model.Sentence) (r *Result, err error) {
	ctx, span := d.opts.tracer.Start(ctx, "phrasego.Decode",
		trace.WithAttributes(
			attribute.Int64("sentence_id", s.ID),
			attribute.Int("words", s.Len()),
			attribute.String("algorithm", d.opts.algorithm.String()),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode failed")
		} else {
			span.SetAttributes(
				attribute.Bool("found", r.Found),
				attribute.Int("hypotheses", r.Stats.Hypotheses),
			)
		}
		span.End()
	}()

	if err := d.opts.resource.AcquireSearch(ctx); err != nil {
		return nil, err
	}
	defer d.opts.resource.ReleaseSearch()

	m, err := d.newManager(ctx, s)
	if err != nil {
		return nil, err
	}
	defer m.release()

	return m.run(ctx)
}

func (d *Decoder) newManager(ctx context.Context, s *model.Sentence) (*manager, error) {
	lattice, err := search.BuildLattice(ctx, d.lookup, s)
	if err != nil {
		return nil, err
	}
	table := futurecost.Build(s.Len(), lattice.BySpan())

	var arenaOpts []hypo.ArenaOption
	if d.opts.resource != nil {
		arenaOpts = append(arenaOpts, hypo.WithBudget(d.opts.resource))
	}
	arena := hypo.NewArena(arenaOpts...)

	strategy, err := search.New(d.opts.algorithm, search.Inputs{
		Lattice: lattice,
		Table:   table,
		Scorer:  d.scorer,
		Arena:   arena,
		Params:  d.opts.params,
	})
	if err != nil {
		arena.Release()
		return nil, err
	}
	return &manager{d: d, sentence: s, arena: arena, strategy: strategy}, nil
}

func (m *manager) run(ctx context.Context) (*Result, error) {
	if err := m.strategy.Decode(ctx); err != nil {
		return nil, err
	}

	r := &Result{ID: m.sentence.ID, Stats: m.strategy.Stats()}
	m.d.opts.metricsCollector.RecordSearch(r.Stats)

	best, ok := m.strategy.Best()
	if !ok {
		return r, nil
	}
	h := m.arena.Get(best)
	r.Found = true
	r.Translation = Translation{
		Text:      m.d.render(hypo.TargetString(m.arena, best)),
		Score:     h.Score,
		Breakdown: slices.Clone(h.Breakdown),
	}

	if m.d.opts.nbest > 0 {
		nb, err := m.nbest(ctx)
		if err != nil {
			return nil, err
		}
		r.NBest = nb
	}
	return r, nil
}

func (m *manager) nbest(ctx context.Context) ([]Translation, error) {
	start := time.Now()
	paths, err := nbest.Extract(ctx, m.strategy, nbest.Request{
		N:        m.d.opts.nbest,
		Distinct: m.d.opts.distinct,
		Factor:   m.d.opts.nbestFactor,
	})
	m.d.opts.logger.LogNBest(ctx, m.d.opts.nbest, len(paths), err)
	if err != nil {
		return nil, err
	}
	m.d.opts.metricsCollector.RecordNBest(m.d.opts.nbest, len(paths), time.Since(start))

	out := make([]Translation, len(paths))
	for i, p := range paths {
		out[i] = Translation{
			Text:      m.d.render(p.String()),
			Score:     p.Score(),
			Breakdown: slices.Clone(p.Breakdown()),
		}
	}
	return out, nil
}

// release returns the arena's budget. Results never reference the arena.
func (m *manager) release() {
	m.arena.Release()
}

func (d *Decoder) render(text string) string {
	for _, p := range d.opts.postProcessors {
		text = p(text)
	}
	return text
}
