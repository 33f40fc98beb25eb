package data

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mchmarny/revscore/pkg/corpus"
)

const (
	insertSourceSQL = `INSERT INTO source (name, origin, entries, skipped, imported_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET origin = ?, entries = ?, skipped = ?, imported_at = ?
	`

	insertEntrySQL = `INSERT INTO entry (source, seq, line, label, body) VALUES (?, ?, ?, ?, ?)`

	deleteEntriesSQL = `DELETE FROM entry WHERE source = ?`
	deleteSourceSQL  = `DELETE FROM source WHERE name = ?`

	selectSourceSQL = `SELECT name, origin, entries, skipped, imported_at FROM source WHERE name = ?`

	selectSourcesSQL = `SELECT name, origin, entries, skipped, imported_at FROM source ORDER BY name`

	selectEntriesSQL = `SELECT line, label, body FROM entry WHERE source = ? ORDER BY seq`
)

var (
	// clock stamps imports, tests swap in a fake one
	clock clockwork.Clock = clockwork.NewRealClock()

	// ErrSourceNotFound is returned when a named corpus is not in the store.
	ErrSourceNotFound = errors.New("corpus source not found")
)

// Source describes a corpus stored in the database.
type Source struct {
	Name       string `json:"name" yaml:"name"`
	Origin     string `json:"origin" yaml:"origin"`
	Entries    int    `json:"entries" yaml:"entries"`
	Skipped    int    `json:"skipped" yaml:"skipped"`
	ImportedAt string `json:"imported_at" yaml:"imported_at"`
}

// SaveCorpus replaces the stored entries of the named source with c.
func SaveCorpus(db *sql.DB, name string, c *corpus.Corpus) (*Source, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("source name required")
	}
	if c == nil {
		return nil, errors.New("corpus required")
	}

	src := &Source{
		Name:       name,
		Origin:     c.Source,
		Entries:    c.Len(),
		Skipped:    len(c.Skipped()),
		ImportedAt: clock.Now().UTC().Format(time.RFC3339),
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	if err := saveCorpusTx(tx, src, c.Entries); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return nil, fmt.Errorf("rolling back after %v: %w", err, rbErr)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return src, nil
}

func saveCorpusTx(tx *sql.Tx, src *Source, entries []corpus.Entry) error {
	if _, err := tx.Exec(deleteEntriesSQL, src.Name); err != nil {
		return fmt.Errorf("clearing entries of %s: %w", src.Name, err)
	}

	if _, err := tx.Exec(insertSourceSQL,
		src.Name, src.Origin, src.Entries, src.Skipped, src.ImportedAt,
		src.Origin, src.Entries, src.Skipped, src.ImportedAt); err != nil {
		return fmt.Errorf("saving source %s: %w", src.Name, err)
	}

	stmt, err := tx.Prepare(insertEntrySQL)
	if err != nil {
		return fmt.Errorf("preparing entry insert statement: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.Exec(src.Name, i+1, e.Line, e.Label, e.Text); err != nil {
			return fmt.Errorf("inserting entry %d of %s: %w", i+1, src.Name, err)
		}
	}

	return nil
}

// GetSource returns the named source or ErrSourceNotFound.
func GetSource(db *sql.DB, name string) (*Source, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	src := &Source{}
	err := db.QueryRow(selectSourceSQL, name).Scan(
		&src.Name, &src.Origin, &src.Entries, &src.Skipped, &src.ImportedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", name, ErrSourceNotFound)
		}
		return nil, fmt.Errorf("querying source %s: %w", name, err)
	}
	return src, nil
}

// GetCorpus loads the named source. Bodies are re-tokenized with the same
// rule used when reading corpus files, and labels are checked against the
// scale in opts since it may differ from the one used at import.
func GetCorpus(db *sql.DB, name string, opts corpus.Options) (*corpus.Corpus, error) {
	if _, err := GetSource(db, name); err != nil {
		return nil, err
	}

	rows, err := db.Query(selectEntriesSQL, name)
	if err != nil {
		return nil, fmt.Errorf("querying entries of %s: %w", name, err)
	}
	defer rows.Close()

	list := make([]corpus.Entry, 0)
	for rows.Next() {
		var (
			line, label int
			body        string
		)
		if err := rows.Scan(&line, &label, &body); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		list = append(list, corpus.NewEntry(label, body, line))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries of %s: %w", name, err)
	}

	c, err := corpus.Check(name, list, opts)
	if err != nil {
		return nil, fmt.Errorf("checking stored corpus %s: %w", name, err)
	}
	return c, nil
}

// ListSources returns all stored sources ordered by name.
func ListSources(db *sql.DB) ([]*Source, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectSourcesSQL)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	list := make([]*Source, 0)
	for rows.Next() {
		s := &Source{}
		if err := rows.Scan(&s.Name, &s.Origin, &s.Entries, &s.Skipped, &s.ImportedAt); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}

	return list, nil
}

// DeleteSource removes the named source and its entries. It reports
// whether the source existed.
func DeleteSource(db *sql.DB, name string) (bool, error) {
	if db == nil {
		return false, errDBNotInitialized
	}

	tx, err := db.Begin()
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(deleteEntriesSQL, name); err != nil {
		return false, fmt.Errorf("deleting entries of %s: %w", name, err)
	}

	res, err := tx.Exec(deleteSourceSQL, name)
	if err != nil {
		return false, fmt.Errorf("deleting source %s: %w", name, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing transaction: %w", err)
	}

	return n > 0, nil
}
