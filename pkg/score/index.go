package score

import (
	"fmt"

	"github.com/mchmarny/revscore/pkg/corpus"
	"github.com/mchmarny/revscore/pkg/token"
)

// WordAverage is the corpus evidence for a single word.
type WordAverage struct {
	Word     string  `json:"word" yaml:"word"`
	Average  float64 `json:"average" yaml:"average"`
	Sum      int     `json:"sum" yaml:"sum"`
	Entries  int     `json:"entries" yaml:"entries"`
	Fallback bool    `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

type wordStat struct {
	sum   int
	count int
}

type settings struct {
	scale    corpus.Scale
	fallback *float64
}

// Option customizes an Index.
type Option func(*settings)

// WithScale sets the label scale. The default is 0-4.
func WithScale(s corpus.Scale) Option {
	return func(o *settings) {
		o.scale = s
	}
}

// WithFallback sets the score of words with no corpus evidence.
// It defaults to the scale midpoint and must lie within the scale.
func WithFallback(v float64) Option {
	return func(o *settings) {
		o.fallback = &v
	}
}

// Index maps every normalized corpus word to the label sum and the number
// of entries containing it. It is built in one pass and never mutated, so
// it is safe for concurrent use.
type Index struct {
	stats    map[string]wordStat
	scale    corpus.Scale
	fallback float64
	entries  int
}

// NewIndex builds the word index for entries.
func NewIndex(entries []corpus.Entry, opts ...Option) (*Index, error) {
	s := &settings{scale: corpus.DefaultScale()}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.scale.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scale %s: %w", s.scale, err)
	}

	fallback := s.scale.Midpoint()
	if s.fallback != nil {
		if !s.scale.ContainsValue(*s.fallback) {
			return nil, fmt.Errorf("fallback %v outside scale %s", *s.fallback, s.scale)
		}
		fallback = *s.fallback
	}

	idx := &Index{
		stats:    make(map[string]wordStat),
		scale:    s.scale,
		fallback: fallback,
		entries:  len(entries),
	}

	for _, e := range entries {
		for w := range distinct(e.Tokens) {
			st := idx.stats[w]
			st.sum += e.Label
			st.count++
			idx.stats[w] = st
		}
	}

	return idx, nil
}

// distinct returns the set of tokens so an entry counts once per word.
func distinct(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Scale returns the label scale of the index.
func (idx *Index) Scale() corpus.Scale {
	return idx.scale
}

// Fallback returns the score used for words absent from the corpus.
func (idx *Index) Fallback() float64 {
	return idx.fallback
}

// Entries returns the number of corpus entries indexed.
func (idx *Index) Entries() int {
	return idx.entries
}

// Words returns the vocabulary size.
func (idx *Index) Words() int {
	return len(idx.stats)
}

// Lookup returns the evidence for word.
func (idx *Index) Lookup(word string) WordAverage {
	w := token.Normalize(word)
	st, ok := idx.stats[w]
	if !ok || st.count == 0 {
		return WordAverage{
			Word:     w,
			Average:  idx.fallback,
			Fallback: true,
		}
	}
	return WordAverage{
		Word:    w,
		Average: float64(st.sum) / float64(st.count),
		Sum:     st.sum,
		Entries: st.count,
	}
}

// ScoreWord returns the average label of entries containing word.
func (idx *Index) ScoreWord(word string) float64 {
	return idx.Lookup(word).Average
}

// Estimate scores text as the mean of its per-token word averages.
func (idx *Index) Estimate(text string) Result {
	tokens := token.Tokenize(text)
	if len(tokens) == 0 {
		return NoEstimate
	}

	list := make([]WordAverage, len(tokens))
	for i, t := range tokens {
		list[i] = idx.Lookup(t)
	}
	return newResult(list)
}
