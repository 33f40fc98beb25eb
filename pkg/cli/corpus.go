package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mchmarny/revscore/pkg/corpus"
	"github.com/mchmarny/revscore/pkg/data"
	"github.com/mchmarny/revscore/pkg/net"
	"github.com/mchmarny/revscore/pkg/score"
	urfave "github.com/urfave/cli/v3"
)

const (
	flagCorpus = "corpus"
	flagSource = "source"
)

// corpusFlags select the corpus a command scores against.
func corpusFlags() []urfave.Flag {
	return []urfave.Flag{
		&urfave.StringFlag{
			Name:    flagCorpus,
			Aliases: []string{"c"},
			Usage:   "Path or http(s) URL of the labeled corpus (one '<label> <review>' per line)",
		},
		&urfave.StringFlag{
			Name:    flagSource,
			Aliases: []string{"s"},
			Usage:   "Name of a corpus previously stored with the import command",
		},
	}
}

// loadCorpus reads the corpus named by --corpus or --source and reports
// skipped lines as warnings.
func loadCorpus(ctx context.Context, cmd *urfave.Command) (*corpus.Corpus, error) {
	cfg := getConfig(cmd)
	path := cmd.String(flagCorpus)
	name := cmd.String(flagSource)

	var (
		c   *corpus.Corpus
		err error
	)

	switch {
	case path != "" && name != "":
		return nil, errors.New("--corpus and --source are mutually exclusive")
	case path != "":
		c, err = readCorpus(ctx, path, cfg.Settings.CorpusOptions())
		if err != nil {
			return nil, err
		}
	case name != "":
		db, dbErr := cfg.DB()
		if dbErr != nil {
			return nil, dbErr
		}
		c, err = data.GetCorpus(db, name, cfg.Settings.CorpusOptions())
		if err != nil {
			return nil, fmt.Errorf("loading stored corpus: %w", err)
		}
	default:
		return nil, errRequired(flagCorpus, flagSource)
	}

	logCorpusWarnings(c)
	slog.Debug("corpus loaded", "source", c.Source, "entries", c.Len(), "lines", c.Lines)

	return c, nil
}

// readCorpus loads a corpus from a local file or an http(s) URL.
func readCorpus(ctx context.Context, path string, opts corpus.Options) (*corpus.Corpus, error) {
	if !net.IsURL(path) {
		c, err := corpus.Load(path, opts)
		if err != nil {
			return nil, fmt.Errorf("loading corpus: %w", err)
		}
		return c, nil
	}

	body, err := net.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetching corpus: %w", err)
	}
	defer body.Close()

	c, err := corpus.ParseSource(body, path, opts)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	return c, nil
}

// downloadCorpus saves a remote corpus to dst and loads the local copy.
// The URL stays the corpus source.
func downloadCorpus(ctx context.Context, src, dst string, opts corpus.Options) (*corpus.Corpus, error) {
	if !net.IsURL(src) {
		return nil, fmt.Errorf("--%s requires an http(s) --%s", flagSave, flagCorpus)
	}

	if err := net.Download(ctx, src, dst); err != nil {
		return nil, fmt.Errorf("downloading corpus: %w", err)
	}
	slog.Debug("corpus saved", "url", src, "path", dst)

	f, err := os.Open(dst)
	if err != nil {
		return nil, fmt.Errorf("opening saved corpus %s: %w", dst, err)
	}
	defer f.Close()

	c, err := corpus.ParseSource(f, src, opts)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	return c, nil
}

func logCorpusWarnings(c *corpus.Corpus) {
	for _, w := range c.Warnings {
		var le *corpus.LineError
		switch {
		case errors.As(w, &le):
			slog.Warn("skipped corpus line", "source", c.Source, "line", le.Line, "reason", le.Reason)
		case errors.Is(w, corpus.ErrEmptyCorpus):
			slog.Warn("corpus has no usable entries, every word scores the fallback", "source", c.Source)
		default:
			slog.Warn("corpus warning", "source", c.Source, "warning", w)
		}
	}
}

// loadIndex builds the word index for the selected corpus.
func loadIndex(ctx context.Context, cmd *urfave.Command) (*score.Index, error) {
	c, err := loadCorpus(ctx, cmd)
	if err != nil {
		return nil, err
	}

	s := getConfig(cmd).Settings
	opts := []score.Option{score.WithScale(s.Scale)}
	if s.Fallback != nil {
		opts = append(opts, score.WithFallback(*s.Fallback))
	}

	idx, err := score.NewIndex(c.Entries, opts...)
	if err != nil {
		return nil, fmt.Errorf("building word index: %w", err)
	}
	slog.Debug("index built", "words", idx.Words(), "entries", idx.Entries(), "fallback", idx.Fallback())

	return idx, nil
}
