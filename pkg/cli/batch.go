package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mchmarny/revscore/pkg/score"
	urfave "github.com/urfave/cli/v3"
)

const (
	flagInput   = "input"
	flagWorkers = "workers"

	maxReviewSize = 1024 * 1024
)

func newBatchCmd() *urfave.Command {
	flags := corpusFlags()
	flags = append(flags,
		&urfave.StringFlag{
			Name:     flagInput,
			Aliases:  []string{"i"},
			Usage:    "Path to a file with one review per line",
			Required: true,
		},
		&urfave.IntFlag{
			Name:  flagWorkers,
			Usage: "Number of concurrent estimates (default: from config)",
		},
		explainFlag(),
	)

	return &urfave.Command{
		Name:    "batch",
		Aliases: []string{"b"},
		Usage:   "Estimate the score of every review in a file",
		UsageText: `revscore batch --corpus reviews.txt --input new.txt              # score each line
   revscore batch --source movies --input new.txt --workers 8     # more workers`,
		HideHelpCommand: true,
		Action:          cmdBatch,
		Flags:           flags,
	}
}

// BatchResult summarizes a batch run. Results keep the input order.
type BatchResult struct {
	Input      string            `json:"input" yaml:"input"`
	Reviews    int               `json:"reviews" yaml:"reviews"`
	Scored     int               `json:"scored" yaml:"scored"`
	NoEstimate int               `json:"no_estimate" yaml:"no_estimate"`
	Duration   string            `json:"duration" yaml:"duration"`
	Results    []*EstimateResult `json:"results" yaml:"results"`
}

func cmdBatch(ctx context.Context, cmd *urfave.Command) error {
	start := time.Now()
	input := cmd.String(flagInput)

	texts, err := readReviews(input)
	if err != nil {
		return err
	}

	idx, err := loadIndex(ctx, cmd)
	if err != nil {
		return err
	}

	workers := int(cmd.Int(flagWorkers))
	if workers < 1 {
		workers = getConfig(cmd).Settings.Workers
	}

	slog.Debug("scoring reviews", "input", input, "reviews", len(texts), "workers", workers)

	list, err := score.EstimateAll(ctx, idx, texts, workers)
	if err != nil {
		return fmt.Errorf("scoring reviews: %w", err)
	}

	res := &BatchResult{
		Input:   input,
		Reviews: len(texts),
		Results: make([]*EstimateResult, 0, len(list)),
	}

	explain := cmd.Bool(flagExplain)
	for i, r := range list {
		if r.IsNoEstimate() {
			res.NoEstimate++
		} else {
			res.Scored++
		}
		res.Results = append(res.Results, newEstimateResult(idx, texts[i], r, explain))
	}
	res.Duration = time.Since(start).String()

	if err := encode(cmd, res); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	return nil
}

// readReviews returns the non-blank lines of path.
func readReviews(path string) ([]string, error) {
	if path == "" {
		return nil, errors.New("input path required")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input %s: %w", path, err)
	}
	defer f.Close()

	list := make([]string, 0)
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64*1024), maxReviewSize)
	for s.Scan() {
		if line := strings.TrimSpace(s.Text()); line != "" {
			list = append(list, line)
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading input %s: %w", path, err)
	}

	return list, nil
}
