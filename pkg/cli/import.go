package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/mchmarny/revscore/pkg/corpus"
	"github.com/mchmarny/revscore/pkg/data"
	urfave "github.com/urfave/cli/v3"
)

const (
	flagDelete = "delete"
	flagSave   = "save"
)

func newImportCmd() *urfave.Command {
	return &urfave.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "Store a labeled corpus file in the local database",
		UsageText: `revscore import --corpus reviews.txt                  # stored as "reviews"
   revscore import --corpus reviews.txt --source movies  # stored as "movies"
   revscore import --corpus https://example.com/imdb.txt --save imdb.txt  # fetch, keep a copy`,
		HideHelpCommand: true,
		Action:          cmdImport,
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:     flagCorpus,
				Aliases:  []string{"c"},
				Usage:    "Path or http(s) URL of the labeled corpus to store",
				Required: true,
			},
			&urfave.StringFlag{
				Name:    flagSource,
				Aliases: []string{"s"},
				Usage:   "Name to store the corpus under (default: file name without extension)",
			},
			&urfave.StringFlag{
				Name:  flagSave,
				Usage: "Keep a local copy of a remote corpus at this path",
			},
		},
	}
}

func newSourcesCmd() *urfave.Command {
	return &urfave.Command{
		Name:            "sources",
		Usage:           "List stored corpora",
		HideHelpCommand: true,
		Action:          cmdSources,
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:  flagDelete,
				Usage: "Name of a stored corpus to delete",
			},
		},
	}
}

type ImportResult struct {
	Source   *data.Source        `json:"source" yaml:"source"`
	Skipped  []*corpus.LineError `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Duration string              `json:"duration" yaml:"duration"`
}

type SourcesResult struct {
	Sources []*data.Source   `json:"sources" yaml:"sources"`
	State   map[string]int64 `json:"state" yaml:"state"`
	Deleted string           `json:"deleted,omitempty" yaml:"deleted,omitempty"`
}

func cmdImport(ctx context.Context, cmd *urfave.Command) error {
	start := time.Now()
	cfg := getConfig(cmd)
	path := cmd.String(flagCorpus)

	name := cmd.String(flagSource)
	if name == "" {
		name = sourceName(path)
	}

	var (
		c   *corpus.Corpus
		err error
	)
	if save := cmd.String(flagSave); save != "" {
		c, err = downloadCorpus(ctx, path, save, cfg.Settings.CorpusOptions())
	} else {
		c, err = readCorpus(ctx, path, cfg.Settings.CorpusOptions())
	}
	if err != nil {
		return err
	}
	logCorpusWarnings(c)

	db, err := cfg.DB()
	if err != nil {
		return err
	}

	slog.Info("importing corpus", "path", path, "source", name, "entries", c.Len())
	src, err := data.SaveCorpus(db, name, c)
	if err != nil {
		return fmt.Errorf("saving corpus: %w", err)
	}

	res := &ImportResult{
		Source:   src,
		Skipped:  c.Skipped(),
		Duration: time.Since(start).String(),
	}

	if err := encode(cmd, res); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	return nil
}

func cmdSources(_ context.Context, cmd *urfave.Command) error {
	db, err := getConfig(cmd).DB()
	if err != nil {
		return err
	}

	res := &SourcesResult{}

	if name := cmd.String(flagDelete); name != "" {
		ok, err := data.DeleteSource(db, name)
		if err != nil {
			return fmt.Errorf("deleting source: %w", err)
		}
		if !ok {
			return fmt.Errorf("%s: %w", name, data.ErrSourceNotFound)
		}
		slog.Info("source deleted", "source", name)
		res.Deleted = name
	}

	if res.Sources, err = data.ListSources(db); err != nil {
		return fmt.Errorf("listing sources: %w", err)
	}

	if res.State, err = data.GetDataState(db); err != nil {
		return fmt.Errorf("getting data state: %w", err)
	}

	if err := encode(cmd, res); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	return nil
}

// sourceName derives a source name from the corpus file or URL path.
func sourceName(path string) string {
	if u, err := url.Parse(path); err == nil && u.Host != "" {
		path = u.Path
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if name == "" || name == "." || name == "/" {
		return "corpus"
	}
	return name
}
