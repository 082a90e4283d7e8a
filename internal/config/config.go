// Package config loads decoder configuration from YAML, .env and the
// environment.
package config

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/phrasego/internal/search"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PHRASEGO_"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// FieldError reports an invalid configuration field.
type FieldError struct {
	Field string
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: %s=%v: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("config: invalid %s=%v", e.Field, e.Value)
}

func (e *FieldError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalid, e.Err}
	}
	return []error{ErrInvalid}
}

// Config is the complete decoder configuration.
type Config struct {
	Search struct {
		Algorithm       string  `yaml:"algorithm"`
		Beam            int     `yaml:"beam"`
		PopLimit        int     `yaml:"pop_limit"`
		Diversity       int     `yaml:"diversity"`
		BatchSize       int     `yaml:"batch_size"`
		DistortionLimit int     `yaml:"distortion_limit"` // negative = unlimited
		Threshold       float64 `yaml:"threshold"`        // 0 = off
	} `yaml:"search"`
	NBest struct {
		Size     int  `yaml:"size"` // 0 = 1-best only
		Distinct bool `yaml:"distinct"`
		Factor   int  `yaml:"factor"`
	} `yaml:"nbest"`
	Output struct {
		ReportScore   bool `yaml:"report_score"`
		JoinCompounds bool `yaml:"join_compounds"`
	} `yaml:"output"`
	Pool struct {
		Threads     int  `yaml:"threads"` // 0 = one per CPU
		QueueLimit  int  `yaml:"queue_limit"`
		CPUAffinity bool `yaml:"cpu_affinity"`
	} `yaml:"pool"`
	Resource struct {
		MaxHypotheses         int64   `yaml:"max_hypotheses"`          // 0 = unlimited
		MaxConcurrentSearches int     `yaml:"max_concurrent_searches"` // 0 = unlimited
		SentencesPerSecond    float64 `yaml:"sentences_per_second"`    // 0 = unlimited
		Burst                 int     `yaml:"burst"`
		IOLimitBytesPerSec    int     `yaml:"io_limit_bytes_per_sec"`  // model loading, 0 = unlimited
	} `yaml:"resource"`
	Cache struct {
		Backend   string        `yaml:"backend"` // none, lru, redis
		Size      int           `yaml:"size"`    // bytes, lru only
		Codec     string        `yaml:"codec"`
		RedisAddr string        `yaml:"redis_addr"`
		RedisPass string        `yaml:"redis_password"`
		RedisDB   int           `yaml:"redis_db"`
		TTL       time.Duration `yaml:"ttl"`
		Prefix    string        `yaml:"prefix"`
	} `yaml:"cache"`
	Model struct {
		PhraseTable     string             `yaml:"phrase_table"`
		LanguageModel   string             `yaml:"language_model"`
		MaxPhraseLength int                `yaml:"max_phrase_length"`
		UnknownWords    bool               `yaml:"unknown_words"`
		Weights         map[string]float64 `yaml:"weights"`
	} `yaml:"model"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text, json
	} `yaml:"log"`
	Metrics struct {
		Addr string `yaml:"addr"` // empty = no metrics endpoint
	} `yaml:"metrics"`
}

// Default returns the configuration used for omitted fields.
func Default() *Config {
	var cfg Config
	p := search.DefaultParams()
	cfg.Search.Algorithm = search.Normal.String()
	cfg.Search.Beam = p.Beam
	cfg.Search.PopLimit = p.PopLimit
	cfg.Search.Diversity = p.Diversity
	cfg.Search.BatchSize = p.BatchSize
	cfg.Search.DistortionLimit = p.DistortionLimit
	cfg.NBest.Factor = 20
	cfg.Resource.Burst = 1
	cfg.Cache.Backend = "none"
	cfg.Cache.Size = 64 << 20
	cfg.Cache.Codec = "json"
	cfg.Cache.RedisAddr = "localhost:6379"
	cfg.Cache.TTL = time.Hour
	cfg.Cache.Prefix = "phrasego:"
	cfg.Model.MaxPhraseLength = 7
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return &cfg
}

// Load reads .env (if present), then the YAML file at path (if path is not
// empty), then applies PHRASEGO_* environment overrides, and validates.
func Load(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults without consulting the environment.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v := getenv(EnvPrefix + name)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return &FieldError{Field: EnvPrefix + name, Value: v, Err: err}
		}
		*dst = n
		return nil
	}
	flag := func(name string, dst *bool) error {
		v := getenv(EnvPrefix + name)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &FieldError{Field: EnvPrefix + name, Value: v, Err: err}
		}
		*dst = b
		return nil
	}

	str("ALGORITHM", &c.Search.Algorithm)
	str("PHRASE_TABLE", &c.Model.PhraseTable)
	str("LANGUAGE_MODEL", &c.Model.LanguageModel)
	str("CACHE_BACKEND", &c.Cache.Backend)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	str("REDIS_PASSWORD", &c.Cache.RedisPass)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("METRICS_ADDR", &c.Metrics.Addr)

	return errors.Join(
		num("BEAM", &c.Search.Beam),
		num("POP_LIMIT", &c.Search.PopLimit),
		num("DISTORTION_LIMIT", &c.Search.DistortionLimit),
		num("NBEST", &c.NBest.Size),
		num("THREADS", &c.Pool.Threads),
		num("QUEUE_LIMIT", &c.Pool.QueueLimit),
		num("MAX_CONCURRENT_SEARCHES", &c.Resource.MaxConcurrentSearches),
		num("IO_LIMIT", &c.Resource.IOLimitBytesPerSec),
		flag("DISTINCT", &c.NBest.Distinct),
		flag("CPU_AFFINITY", &c.Pool.CPUAffinity),
		flag("REPORT_SCORE", &c.Output.ReportScore),
	)
}

// Validate rejects unknown names and negative sizes.
func (c *Config) Validate() error {
	var errs []error
	if _, err := search.ParseAlgorithm(c.Search.Algorithm); err != nil {
		errs = append(errs, &FieldError{Field: "search.algorithm", Value: c.Search.Algorithm, Err: err})
	}
	nonNegative := map[string]int{
		"search.beam":                      c.Search.Beam,
		"search.pop_limit":                 c.Search.PopLimit,
		"search.diversity":                 c.Search.Diversity,
		"search.batch_size":                c.Search.BatchSize,
		"nbest.size":                       c.NBest.Size,
		"nbest.factor":                     c.NBest.Factor,
		"pool.threads":                     c.Pool.Threads,
		"pool.queue_limit":                 c.Pool.QueueLimit,
		"resource.burst":                   c.Resource.Burst,
		"resource.max_concurrent_searches": c.Resource.MaxConcurrentSearches,
		"resource.io_limit_bytes_per_sec":  c.Resource.IOLimitBytesPerSec,
		"cache.size":                       c.Cache.Size,
		"model.max_phrase_length":          c.Model.MaxPhraseLength,
	}
	for _, field := range slices.Sorted(maps.Keys(nonNegative)) {
		if v := nonNegative[field]; v < 0 {
			errs = append(errs, &FieldError{Field: field, Value: v})
		}
	}
	if c.Search.Threshold < 0 || math.IsNaN(c.Search.Threshold) {
		errs = append(errs, &FieldError{Field: "search.threshold", Value: c.Search.Threshold})
	}
	if c.Resource.MaxHypotheses < 0 {
		errs = append(errs, &FieldError{Field: "resource.max_hypotheses", Value: c.Resource.MaxHypotheses})
	}
	if c.Resource.SentencesPerSecond < 0 {
		errs = append(errs, &FieldError{Field: "resource.sentences_per_second", Value: c.Resource.SentencesPerSecond})
	}
	switch strings.ToLower(c.Cache.Backend) {
	case "", "none", "lru", "redis":
	default:
		errs = append(errs, &FieldError{Field: "cache.backend", Value: c.Cache.Backend})
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, &FieldError{Field: "log.level", Value: c.Log.Level})
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, &FieldError{Field: "log.format", Value: c.Log.Format})
	}
	return errors.Join(errs...)
}

// Params converts the search section.
func (c *Config) Params() search.Params {
	p := search.DefaultParams()
	p.Beam = c.Search.Beam
	p.PopLimit = c.Search.PopLimit
	p.Diversity = c.Search.Diversity
	p.BatchSize = c.Search.BatchSize
	p.DistortionLimit = c.Search.DistortionLimit
	if c.Search.Threshold > 0 {
		p.Threshold = c.Search.Threshold
	}
	return p
}
