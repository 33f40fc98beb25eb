package corpus

import (
	"errors"
	"fmt"
)

const (
	// DefaultMinLabel and DefaultMaxLabel bound the stock review scale.
	DefaultMinLabel = 0
	DefaultMaxLabel = 4

	describeScaleMax = 4.0
)

// Scale is the inclusive label range of a corpus.
type Scale struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// DefaultScale returns the 0-4 scale.
func DefaultScale() Scale {
	return Scale{Min: DefaultMinLabel, Max: DefaultMaxLabel}
}

func (s Scale) String() string {
	return fmt.Sprintf("%d-%d", s.Min, s.Max)
}

// Validate checks the range is non-empty.
func (s Scale) Validate() error {
	if s.Min >= s.Max {
		return errors.New("scale min must be lower than max")
	}
	return nil
}

// Contains reports whether label falls within the scale.
func (s Scale) Contains(label int) bool {
	return label >= s.Min && label <= s.Max
}

// ContainsValue reports whether v falls within the scale.
func (s Scale) ContainsValue(v float64) bool {
	return v >= float64(s.Min) && v <= float64(s.Max)
}

// Midpoint is the neutral value used for words with no corpus evidence.
func (s Scale) Midpoint() float64 {
	return float64(s.Min+s.Max) / 2
}

// Rescale maps v from this scale onto the 0-4 scale used for descriptions.
func (s Scale) Rescale(v float64) float64 {
	if s.Min == DefaultMinLabel && s.Max == DefaultMaxLabel {
		return v
	}
	return (v - float64(s.Min)) / float64(s.Max-s.Min) * describeScaleMax
}
