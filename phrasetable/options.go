package phrasetable

// Option configures a Table.
type Option func(*options)

type options struct {
	weights         []float64
	maxPhraseLength int
	tableLimit      int
	unknownWords    bool
	unknownScore    float64
}

func applyOptions(opts []Option) options {
	o := options{
		maxPhraseLength: DefaultMaxPhraseLength,
		tableLimit:      DefaultTableLimit,
		unknownScore:    DefaultUnknownScore,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxPhraseLength <= 0 {
		o.maxPhraseLength = DefaultMaxPhraseLength
	}
	return o
}

// WithWeights sets the weight of each phrase score. Missing weights are 1.
func WithWeights(weights ...float64) Option {
	return func(o *options) {
		o.weights = append([]float64(nil), weights...)
	}
}

// WithMaxPhraseLength skips phrases with more source words than n.
func WithMaxPhraseLength(n int) Option {
	return func(o *options) {
		o.maxPhraseLength = n
	}
}

// WithTableLimit keeps the n best targets per source phrase. 0 keeps all.
func WithTableLimit(n int) Option {
	return func(o *options) {
		o.tableLimit = n
	}
}

// WithUnknownWords enables pass-through of words missing from the table.
func WithUnknownWords(enabled bool) Option {
	return func(o *options) {
		o.unknownWords = enabled
	}
}

// WithUnknownScore sets the weighted score of a pass-through option.
func WithUnknownScore(score float64) Option {
	return func(o *options) {
		o.unknownScore = score
	}
}
