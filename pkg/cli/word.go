package cli

import (
	"context"
	"fmt"

	"github.com/mchmarny/revscore/pkg/score"
	urfave "github.com/urfave/cli/v3"
)

func newWordCmd() *urfave.Command {
	return &urfave.Command{
		Name:    "word",
		Aliases: []string{"w"},
		Usage:   "Show the average corpus score of one or more words",
		UsageText: `revscore word --corpus reviews.txt great terrible   # per-word averages
   revscore word --source movies film`,
		HideHelpCommand: true,
		Action:          cmdWord,
		Flags:           corpusFlags(),
	}
}

func cmdWord(ctx context.Context, cmd *urfave.Command) error {
	words := cmd.Args().Slice()
	if len(words) == 0 {
		return urfave.ShowSubcommandHelp(cmd)
	}

	idx, err := loadIndex(ctx, cmd)
	if err != nil {
		return err
	}

	list := make([]score.WordAverage, 0, len(words))
	for _, w := range words {
		list = append(list, idx.Lookup(w))
	}

	if err := encode(cmd, list); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	return nil
}
