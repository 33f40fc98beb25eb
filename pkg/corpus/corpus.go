package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/mchmarny/revscore/pkg/token"
)

const (
	maxLineSize   = 1024 * 1024
	defaultSource = "input"
)

var (
	// ErrEmptyCorpus is recorded as a warning when no line yields a usable entry.
	ErrEmptyCorpus = errors.New("corpus contains no usable entries")
)

// Policy decides what happens to malformed lines.
type Policy int

const (
	// PolicySkip drops malformed lines and records each one as a warning.
	PolicySkip Policy = iota
	// PolicyStrict rejects the whole corpus when any line is malformed.
	PolicyStrict
)

func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "skip"
}

// Options configures corpus parsing.
type Options struct {
	Policy Policy
	Scale  Scale
}

// DefaultOptions skips malformed lines and accepts labels on the 0-4 scale.
func DefaultOptions() Options {
	return Options{
		Policy: PolicySkip,
		Scale:  DefaultScale(),
	}
}

// Entry is one labeled review. Treat it as read-only once loaded.
type Entry struct {
	Label  int      `json:"label" yaml:"label"`
	Text   string   `json:"text" yaml:"text"`
	Tokens []string `json:"-" yaml:"-"`
	Line   int      `json:"line,omitempty" yaml:"line,omitempty"`
}

// NewEntry tokenizes text with the shared token rule.
func NewEntry(label int, text string, line int) Entry {
	return Entry{
		Label:  label,
		Text:   text,
		Tokens: token.Tokenize(text),
		Line:   line,
	}
}

// Corpus is the result of reading a labeled review source.
type Corpus struct {
	Source   string  `json:"source" yaml:"source"`
	Entries  []Entry `json:"-" yaml:"-"`
	Lines    int     `json:"lines" yaml:"lines"`
	Warnings []error `json:"-" yaml:"-"`
}

// Len returns the number of usable entries.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Entries)
}

// Empty reports whether the corpus has no usable entries.
func (c *Corpus) Empty() bool {
	return c.Len() == 0
}

// Skipped returns the line errors recorded under PolicySkip.
func (c *Corpus) Skipped() []*LineError {
	if c == nil {
		return nil
	}
	list := make([]*LineError, 0, len(c.Warnings))
	for _, w := range c.Warnings {
		var le *LineError
		if errors.As(w, &le) {
			list = append(list, le)
		}
	}
	return list
}

// Load reads a corpus file.
func Load(path string, opts Options) (*Corpus, error) {
	if path == "" {
		return nil, errors.New("corpus path required")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus file %s: %w", path, err)
	}
	defer f.Close()

	c, err := parse(f, path, opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Parse reads a corpus from r. The whole input is scanned before the
// policy is applied, so a strict failure lists every malformed line.
func Parse(r io.Reader, opts Options) (*Corpus, error) {
	return parse(r, "", opts)
}

// ParseSource reads a corpus from r and reports it as source, e.g. the URL
// it was fetched from.
func ParseSource(r io.Reader, source string, opts Options) (*Corpus, error) {
	return parse(r, source, opts)
}

// FromLines parses in-memory corpus lines.
func FromLines(lines []string, opts Options) (*Corpus, error) {
	return Parse(strings.NewReader(strings.Join(lines, "\n")), opts)
}

func parse(r io.Reader, source string, opts Options) (*Corpus, error) {
	if source == "" {
		source = defaultSource
	}
	if r == nil {
		return nil, errors.New("corpus reader required")
	}
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	c := &Corpus{
		Source:  source,
		Entries: make([]Entry, 0),
	}

	var bad []*LineError

	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for s.Scan() {
		c.Lines++
		e, lineErr := parseLine(s.Text(), c.Lines, opts.Scale)
		if lineErr != nil {
			bad = append(bad, lineErr)
			continue
		}
		c.Entries = append(c.Entries, e)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading corpus %s: %w", source, err)
	}

	return finish(c, bad, opts.Policy)
}

// Check applies the scale and policy of opts to entries that were parsed
// earlier, e.g. under a different scale before being stored.
func Check(source string, entries []Entry, opts Options) (*Corpus, error) {
	if source == "" {
		source = defaultSource
	}
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	c := &Corpus{
		Source:  source,
		Entries: make([]Entry, 0, len(entries)),
		Lines:   len(entries),
	}

	var bad []*LineError
	for _, e := range entries {
		if !opts.Scale.Contains(e.Label) {
			bad = append(bad, newLineError(e.Line, fmt.Sprintf("%d %s", e.Label, e.Text), outsideScale(e.Label, opts.Scale)))
			continue
		}
		c.Entries = append(c.Entries, e)
	}

	return finish(c, bad, opts.Policy)
}

func (o Options) normalize() (Options, error) {
	if o.Scale == (Scale{}) {
		o.Scale = DefaultScale()
	}
	if err := o.Scale.Validate(); err != nil {
		return o, fmt.Errorf("invalid corpus options: %w", err)
	}
	return o, nil
}

// finish applies the malformed-line policy and the empty warning.
func finish(c *Corpus, bad []*LineError, policy Policy) (*Corpus, error) {
	if len(bad) > 0 {
		if policy == PolicyStrict {
			return nil, &FormatError{Source: c.Source, Lines: bad}
		}
		for _, le := range bad {
			slog.Debug("skipping malformed corpus line", "line", le.Line, "reason", le.Reason)
			c.Warnings = append(c.Warnings, le)
		}
	}

	if len(c.Entries) == 0 {
		c.Warnings = append(c.Warnings, ErrEmptyCorpus)
	}

	return c, nil
}

func outsideScale(label int, scale Scale) string {
	return fmt.Sprintf("label %d outside scale %s", label, scale)
}

func parseLine(line string, n int, scale Scale) (Entry, *LineError) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Entry{}, newLineError(n, line, "empty line")
	}

	label, err := strconv.Atoi(fields[0])
	if err != nil {
		return Entry{}, newLineError(n, line, fmt.Sprintf("invalid label %q", fields[0]))
	}

	if !scale.Contains(label) {
		return Entry{}, newLineError(n, line, outsideScale(label, scale))
	}

	if len(fields) == 1 {
		return Entry{}, newLineError(n, line, "missing review text")
	}

	return NewEntry(label, strings.Join(fields[1:], " "), n), nil
}
