package track

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	colDate = iota
	colTime
	colLatitude
	colLongitude
	colWindSpeed
	colPressure

	minColumns = colWindSpeed + 1
)

// Point is one classified observation of a storm track.
type Point struct {
	Line      int     `json:"line" yaml:"line"`
	Date      string  `json:"date" yaml:"date"`
	Time      string  `json:"time" yaml:"time"`
	Latitude  float64 `json:"lat" yaml:"lat"`
	Longitude float64 `json:"lon" yaml:"lon"`
	WindMPH   int     `json:"wind_mph" yaml:"wind_mph"`
	Pressure  string  `json:"pressure,omitempty" yaml:"pressure,omitempty"`
	Category  int     `json:"category" yaml:"category"`
	Color     string  `json:"color" yaml:"color"`
	LineWidth int     `json:"line_width" yaml:"line_width"`
}

// LineError describes a skipped track line.
type LineError struct {
	Line   int    `json:"line" yaml:"line"`
	Reason string `json:"reason" yaml:"reason"`
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Track is a parsed storm track.
type Track struct {
	Source      string       `json:"source" yaml:"source"`
	Points      []*Point     `json:"points" yaml:"points"`
	Skipped     []*LineError `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	MaxCategory int          `json:"max_category" yaml:"max_category"`
}

// Load reads a track CSV file.
func Load(path string) (*Track, error) {
	if path == "" {
		return nil, errors.New("track path required")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening track file %s: %w", path, err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, err
	}
	t.Source = path
	return t, nil
}

// Parse reads CSV lines of date, time, latitude, longitude, wind speed and
// pressure. Blank and malformed lines are skipped and reported.
func Parse(r io.Reader) (*Track, error) {
	if r == nil {
		return nil, errors.New("track reader required")
	}

	t := &Track{
		Points:  make([]*Point, 0),
		Skipped: make([]*LineError, 0),
	}

	n := 0
	s := bufio.NewScanner(r)
	for s.Scan() {
		n++
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}

		p, err := parsePoint(line)
		if err != nil {
			slog.Debug("skipping track line", "line", n, "error", err)
			t.Skipped = append(t.Skipped, &LineError{Line: n, Reason: err.Error()})
			continue
		}
		p.Line = n
		t.Points = append(t.Points, p)
		t.MaxCategory = max(t.MaxCategory, p.Category)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading track: %w", err)
	}

	return t, nil
}

func parsePoint(line string) (*Point, error) {
	cols := strings.Split(line, ",")
	if len(cols) < minColumns {
		return nil, fmt.Errorf("expected at least %d columns, got %d", minColumns, len(cols))
	}
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}

	lat, err := strconv.ParseFloat(cols[colLatitude], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q", cols[colLatitude])
	}

	lon, err := strconv.ParseFloat(cols[colLongitude], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q", cols[colLongitude])
	}

	wind, err := strconv.ParseFloat(cols[colWindSpeed], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid wind speed %q", cols[colWindSpeed])
	}

	p := &Point{
		Date:      cols[colDate],
		Time:      cols[colTime],
		Latitude:  lat,
		Longitude: lon,
		WindMPH:   int(wind),
	}
	if len(cols) > colPressure {
		p.Pressure = cols[colPressure]
	}

	p.Category = CategoryFromSpeed(p.WindMPH)
	p.Color = Color(p.Category)
	p.LineWidth = LineWidth(p.Category)

	return p, nil
}
