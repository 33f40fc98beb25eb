package corpus

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	maxListedLines = 10
	maxLineExcerpt = 40
)

// LineError describes one malformed corpus line.
type LineError struct {
	Line   int    `json:"line" yaml:"line"`
	Text   string `json:"text,omitempty" yaml:"text,omitempty"`
	Reason string `json:"reason" yaml:"reason"`
}

func newLineError(n int, line, reason string) *LineError {
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) > maxLineExcerpt {
		line = string([]rune(line)[:maxLineExcerpt]) + "..."
	}
	return &LineError{Line: n, Text: line, Reason: reason}
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// FormatError is returned under PolicyStrict and enumerates every malformed line.
type FormatError struct {
	Source string
	Lines  []*LineError
}

func (e *FormatError) Error() string {
	nums := make([]string, 0, maxListedLines)
	for i, l := range e.Lines {
		if i == maxListedLines {
			nums = append(nums, fmt.Sprintf("and %d more", len(e.Lines)-maxListedLines))
			break
		}
		nums = append(nums, strconv.Itoa(l.Line))
	}
	return fmt.Sprintf("corpus %s has %d malformed line(s): %s",
		e.Source, len(e.Lines), strings.Join(nums, ", "))
}

// LineNumbers returns the offending line numbers in input order.
func (e *FormatError) LineNumbers() []int {
	list := make([]int, len(e.Lines))
	for i, l := range e.Lines {
		list[i] = l.Line
	}
	return list
}

// Unwrap exposes the individual line errors to errors.As.
func (e *FormatError) Unwrap() []error {
	list := make([]error, len(e.Lines))
	for i, l := range e.Lines {
		list[i] = l
	}
	return list
}
