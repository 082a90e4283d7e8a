package lm

import "strings"

// State is the target context a hypothesis carries: at most Order()-1 words.
type State []string

// Begin returns the state at the start of a sentence.
func (m *Model) Begin() State {
	if m.order <= 1 {
		return State{}
	}
	return State{BOS}
}

// Key identifies the state for recombination.
func (s State) Key() string {
	return strings.Join(s, " ")
}

// Score appends words to state and returns their log probability and the
// resulting state. If final, the end-of-sentence token is scored too.
func (m *Model) Score(state State, words []string, final bool) (float64, State) {
	history := make([]string, 0, len(state)+len(words)+1)
	history = append(history, state...)

	var total float64
	for _, w := range words {
		total += m.LogProb(history, w)
		history = append(history, w)
	}
	if final {
		total += m.LogProb(history, EOS)
		history = append(history, EOS)
	}
	return total, m.truncate(history)
}

// Estimate scores words without left context. It is used for future cost
// estimation of a phrase in isolation.
func (m *Model) Estimate(words []string) float64 {
	var total float64
	for i, w := range words {
		total += m.LogProb(words[:i], w)
	}
	return total
}

func (m *Model) truncate(history []string) State {
	keep := max(m.order-1, 0)
	if len(history) > keep {
		history = history[len(history)-keep:]
	}
	return State(append([]string(nil), history...))
}
