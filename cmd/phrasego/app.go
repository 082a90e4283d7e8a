package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/phrasego"
	"github.com/hupe1980/phrasego/cache"
	"github.com/hupe1980/phrasego/codec"
	"github.com/hupe1980/phrasego/feature"
	"github.com/hupe1980/phrasego/internal/config"
	"github.com/hupe1980/phrasego/lm"
	"github.com/hupe1980/phrasego/metric"
	"github.com/hupe1980/phrasego/phrasetable"
	"github.com/hupe1980/phrasego/resource"
)

// app holds everything built from the configuration.
type app struct {
	cfg     *config.Config
	logger  *phrasego.Logger
	decoder *phrasego.Decoder
	cache   cache.Cache
	metrics *http.Server
}

func newLogger(cfg *config.Config) *phrasego.Logger {
	var level slog.Level
	_ = level.UnmarshalText([]byte(cfg.Log.Level))
	if strings.EqualFold(cfg.Log.Format, "json") {
		return phrasego.NewJSONLogger(level)
	}
	return phrasego.NewTextLogger(level)
}

// loadModels reads the phrase table and the language model in parallel.
func loadModels(ctx context.Context, cfg *config.Config, rc *resource.Controller) (*phrasetable.Table, *lm.Model, error) {
	if cfg.Model.PhraseTable == "" {
		return nil, nil, errors.New("no phrase table configured")
	}

	var (
		table *phrasetable.Table
		lang  *lm.Model
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		table, err = phrasetable.Load(ctx, cfg.Model.PhraseTable, rc,
			phrasetable.WithMaxPhraseLength(cfg.Model.MaxPhraseLength),
			phrasetable.WithUnknownWords(cfg.Model.UnknownWords),
		)
		return err
	})
	if cfg.Model.LanguageModel != "" {
		g.Go(func() error {
			var err error
			lang, err = lm.Load(ctx, cfg.Model.LanguageModel, rc)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return table, lang, nil
}

func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch strings.ToLower(cfg.Cache.Backend) {
	case "", "none":
		return nil, nil
	case "lru":
		return cache.NewLRU(int64(cfg.Cache.Size), cache.WithExpiry(cfg.Cache.TTL)), nil
	case "redis":
		r := cache.DialRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisPass, cfg.Cache.RedisDB,
			cache.WithPrefix(cfg.Cache.Prefix),
			cache.WithTTL(cfg.Cache.TTL),
		)
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.Cache.RedisAddr, err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, logger: newLogger(cfg)}

	alg, err := phrasego.ParseAlgorithm(cfg.Search.Algorithm)
	if err != nil {
		return nil, err
	}

	rc := resource.NewController(resource.Config{
		MaxHypotheses:         cfg.Resource.MaxHypotheses,
		MaxConcurrentSearches: int64(cfg.Resource.MaxConcurrentSearches),
		SentencesPerSecond:    cfg.Resource.SentencesPerSecond,
		Burst:                 cfg.Resource.Burst,
		IOLimitBytesPerSec:    int64(cfg.Resource.IOLimitBytesPerSec),
	})

	start := time.Now()
	table, lang, err := loadModels(ctx, cfg, rc)
	if err != nil {
		return nil, fmt.Errorf("failed to load models: %w", err)
	}
	a.logger.InfoContext(ctx, "models loaded",
		"phrases", table.Len(),
		"lm_order", lmOrder(lang),
		"duration", time.Since(start),
	)

	scorer := feature.NewScorer(lang, feature.WeightsFromMap(cfg.Model.Weights))

	opts := []phrasego.Option{
		phrasego.WithAlgorithm(alg),
		phrasego.WithParams(cfg.Params()),
		phrasego.WithNBest(cfg.NBest.Size, cfg.NBest.Distinct),
		phrasego.WithNBestFactor(cfg.NBest.Factor),
		phrasego.WithReportScore(cfg.Output.ReportScore),
		phrasego.WithThreads(cfg.Pool.Threads, cfg.Pool.QueueLimit),
		phrasego.WithCPUAffinity(cfg.Pool.CPUAffinity),
		phrasego.WithResourceController(rc),
		phrasego.WithLogger(a.logger),
		phrasego.WithFingerprint(cfg.Model.PhraseTable, cfg.Model.LanguageModel, fmt.Sprint(scorer.Weights())),
	}
	if cfg.Output.JoinCompounds {
		opts = append(opts, phrasego.WithPostProcessor(feature.JoinCompounds))
	}

	a.cache, err = newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if a.cache != nil {
		cd, ok := codec.ByName(cfg.Cache.Codec)
		if !ok {
			_ = a.cache.Close()
			return nil, fmt.Errorf("unknown cache codec %q (want one of %s)", cfg.Cache.Codec, strings.Join(codec.Names(), ", "))
		}
		opts = append(opts, phrasego.WithCache(a.cache, cd))
	}

	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, phrasego.WithMetricsCollector(metric.NewPrometheus(reg)))
		a.serveMetrics(cfg.Metrics.Addr, reg)
	}

	a.decoder, err = phrasego.New(scorer.WithEstimates(table), scorer, opts...)
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func lmOrder(m *lm.Model) int {
	if m == nil {
		return 0
	}
	return m.Order()
}

func (a *app) serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	a.metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", addr)
}

func (a *app) close() {
	if a.decoder != nil {
		_ = a.decoder.Close()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close failed", "error", err)
		}
	}
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.metrics.Shutdown(ctx)
	}
}
