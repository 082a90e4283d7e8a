package phrasego

import (
	"strconv"
	"strings"
)

// Translation is one rendered translation with its model scores.
type Translation struct {
	Text      string    `json:"text"`
	Score     float64   `json:"score"`
	Breakdown []float64 `json:"breakdown,omitempty"`
}

// Result is the outcome of decoding one sentence.
//
// A sentence without any complete translation is not an error: Found is
// false and Text is empty.
type Result struct {
	// ID is the translation id of the sentence.
	ID int64 `json:"-"`

	Translation
	Found bool `json:"found"`

	// NBest holds the n best translations, best first, when requested.
	NBest []Translation `json:"nbest,omitempty"`

	// Stats counts the work of the search. Zero for cached results.
	Stats Stats `json:"-"`
	// Cached is true when the result was served from the cache.
	Cached bool `json:"-"`
	// Err is the failure of this sentence in TranslateAll.
	Err error `json:"-"`
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// FormatBest renders the 1-best line, without a trailing newline. With
// score reporting enabled the line starts with the score, or "0" when there
// is no translation.
func (d *Decoder) FormatBest(r *Result) string {
	if !d.opts.reportScore {
		return r.Text
	}
	if !r.Found {
		return "0 "
	}
	return formatScore(r.Score) + " " + r.Text
}

// FormatNBest renders the n-best lines of r:
//
//	id ||| text ||| feature= v ... ||| total
func (d *Decoder) FormatNBest(r *Result) []string {
	names := d.scorer.FeatureNames()
	lines := make([]string, len(r.NBest))
	for i, t := range r.NBest {
		var b strings.Builder
		b.WriteString(strconv.FormatInt(r.ID, 10))
		b.WriteString(" ||| ")
		b.WriteString(t.Text)
		b.WriteString(" |||")
		for j, v := range t.Breakdown {
			if j < len(names) && (j == 0 || names[j] != names[j-1]) {
				b.WriteString(" ")
				b.WriteString(names[j])
				b.WriteString("=")
			}
			b.WriteString(" ")
			b.WriteString(formatScore(v))
		}
		b.WriteString(" ||| ")
		b.WriteString(formatScore(t.Score))
		lines[i] = b.String()
	}
	return lines
}
