package score

import (
	"github.com/mchmarny/revscore/pkg/corpus"
	"github.com/mchmarny/revscore/pkg/token"
)

// NoEstimate is returned when text has no scorable tokens.
var NoEstimate = Result{}

// Result is either a score or NoEstimate. Check Value before using it.
type Result struct {
	value  float64
	scored bool
	tokens []WordAverage
}

func newResult(list []WordAverage) Result {
	var total float64
	for _, w := range list {
		total += w.Average
	}
	return Result{
		value:  total / float64(len(list)),
		scored: true,
		tokens: list,
	}
}

// Value returns the estimate and false when no estimate was possible.
func (r Result) Value() (float64, bool) {
	return r.value, r.scored
}

// IsNoEstimate reports whether the text had no scorable tokens.
func (r Result) IsNoEstimate() bool {
	return !r.scored
}

// Tokens returns the per-token evidence in input order.
func (r Result) Tokens() []WordAverage {
	return r.tokens
}

// Matched returns how many tokens had corpus evidence.
func (r Result) Matched() int {
	n := 0
	for _, t := range r.tokens {
		if !t.Fallback {
			n++
		}
	}
	return n
}

// ScoreWord scans entries for word without an index. Entries containing the
// word more than once count once. Words with no evidence score the scale
// midpoint.
func ScoreWord(word string, entries []corpus.Entry, scale corpus.Scale) float64 {
	return scan(token.Normalize(word), entries, scale).Average
}

func scan(w string, entries []corpus.Entry, scale corpus.Scale) WordAverage {
	res := WordAverage{Word: w}
	if w != "" {
		for _, e := range entries {
			if contains(e.Tokens, w) {
				res.Sum += e.Label
				res.Entries++
			}
		}
	}

	if res.Entries == 0 {
		res.Average = scale.Midpoint()
		res.Fallback = true
		return res
	}
	res.Average = float64(res.Sum) / float64(res.Entries)
	return res
}

// Estimate scores text against entries without an index. Repeated tokens
// are scored at every position.
func Estimate(text string, entries []corpus.Entry, scale corpus.Scale) Result {
	tokens := token.Tokenize(text)
	if len(tokens) == 0 {
		return NoEstimate
	}

	list := make([]WordAverage, len(tokens))
	for i, t := range tokens {
		list[i] = scan(t, entries, scale)
	}
	return newResult(list)
}

func contains(tokens []string, w string) bool {
	for _, t := range tokens {
		if t == w {
			return true
		}
	}
	return false
}
