package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mchmarny/revscore/pkg/track"
	urfave "github.com/urfave/cli/v3"
)

const (
	flagFile = "file"
)

func newTrackCmd() *urfave.Command {
	return &urfave.Command{
		Name:            "track",
		Aliases:         []string{"t"},
		Usage:           "Classify each point of a hurricane track by wind speed",
		UsageText:       `revscore track --file katrina.csv   # category, color and line width per point`,
		HideHelpCommand: true,
		Action:          cmdTrack,
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:     flagFile,
				Aliases:  []string{"f"},
				Usage:    "Path to the storm track CSV (date, time, lat, lon, wind mph, pressure)",
				Required: true,
			},
		},
	}
}

func cmdTrack(_ context.Context, cmd *urfave.Command) error {
	t, err := track.Load(cmd.String(flagFile))
	if err != nil {
		return fmt.Errorf("loading track: %w", err)
	}

	for _, s := range t.Skipped {
		slog.Warn("skipped track line", "line", s.Line, "reason", s.Reason)
	}

	if err := encode(cmd, t); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	return nil
}
