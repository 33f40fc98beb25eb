package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mchmarny/revscore/pkg/score"
	urfave "github.com/urfave/cli/v3"
)

const (
	noEstimateMessage = "no estimate possible: the review has no scorable words"
	reviewPrompt      = "Enter a movie review: "
)

const (
	flagExplain = "explain"
)

func explainFlag() urfave.Flag {
	return &urfave.BoolFlag{
		Name:  flagExplain,
		Usage: "Include the per-word averages behind the estimate",
	}
}

func newEstimateCmd() *urfave.Command {
	return &urfave.Command{
		Name:    "estimate",
		Aliases: []string{"e"},
		Usage:   "Estimate the sentiment score of a review",
		UsageText: `revscore estimate --corpus reviews.txt "A great movie"   # score text against a corpus file
   revscore estimate --source movies "Terrible plot!"        # score against a stored corpus
   revscore estimate --corpus reviews.txt                   # prompt for the review`,
		HideHelpCommand: true,
		Action:          cmdEstimate,
		Flags:           append(corpusFlags(), explainFlag()),
	}
}

// EstimateResult is the caller-facing outcome of scoring one review.
// Score is nil when no estimate was possible.
type EstimateResult struct {
	Text        string              `json:"text" yaml:"text"`
	Score       *float64            `json:"score" yaml:"score"`
	Description score.Sentiment     `json:"description,omitempty" yaml:"description,omitempty"`
	Tokens      int                 `json:"tokens" yaml:"tokens"`
	Matched     int                 `json:"matched" yaml:"matched"`
	Words       []score.WordAverage `json:"words,omitempty" yaml:"words,omitempty"`
	Message     string              `json:"message,omitempty" yaml:"message,omitempty"`
}

func newEstimateResult(idx *score.Index, text string, r score.Result, explain bool) *EstimateResult {
	res := &EstimateResult{
		Text:    text,
		Tokens:  len(r.Tokens()),
		Matched: r.Matched(),
	}

	v, ok := r.Value()
	if !ok {
		res.Message = noEstimateMessage
		return res
	}

	res.Score = &v
	res.Description = score.Describe(idx.Scale().Rescale(v))
	if explain {
		res.Words = r.Tokens()
	}
	return res
}

func cmdEstimate(ctx context.Context, cmd *urfave.Command) error {
	text := strings.Join(cmd.Args().Slice(), " ")
	if text == "" {
		var err error
		if text, err = promptReview(cmd); err != nil {
			return err
		}
	}

	idx, err := loadIndex(ctx, cmd)
	if err != nil {
		return err
	}

	res := newEstimateResult(idx, text, idx.Estimate(text), cmd.Bool(flagExplain))

	if err := encode(cmd, res); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	return nil
}

func promptReview(cmd *urfave.Command) (string, error) {
	r := cmd.Root().Reader
	if r == nil {
		r = os.Stdin
	}
	w := cmd.Root().ErrWriter
	if w == nil {
		w = os.Stderr
	}

	fmt.Fprint(w, reviewPrompt)

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading review: %w", err)
	}
	return strings.TrimSpace(line), nil
}
