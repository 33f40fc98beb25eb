package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mchmarny/revscore/pkg/data"
	urfave "github.com/urfave/cli/v3"
)

const (
	flagYes = "yes"
)

func newResetCmd() *urfave.Command {
	return &urfave.Command{
		Name:            "reset",
		Usage:           "Delete all stored corpora and start fresh",
		HideHelpCommand: true,
		Action:          cmdReset,
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  flagYes,
				Usage: "Skip the confirmation prompt",
			},
		},
	}
}

func cmdReset(_ context.Context, cmd *urfave.Command) error {
	cfg := getConfig(cmd)
	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}

	if !cmd.Bool(flagYes) {
		fmt.Fprintf(w, "This will permanently delete all data in %s\n", cfg.DBPath)
		fmt.Fprint(w, "Are you sure? [y/N]: ")

		r := cmd.Root().Reader
		if r == nil {
			r = os.Stdin
		}
		answer, err := bufio.NewReader(r).ReadString('\n')
		if err != nil && answer == "" {
			return fmt.Errorf("reading input: %w", err)
		}

		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Fprintln(w, "Aborted.")
			return nil
		}
	}

	// close the DB before deleting the file
	cfg.close()

	if err := os.Remove(cfg.DBPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting database: %w", err)
	}

	slog.Info("database deleted", "path", cfg.DBPath)

	if err := data.Init(cfg.DBPath); err != nil {
		return fmt.Errorf("re-initializing database: %w", err)
	}

	slog.Info("database re-initialized", "path", cfg.DBPath)
	fmt.Fprintln(w, "Reset complete.")
	return nil
}
