package data

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	stateQueries = map[string]string{
		"sources": "SELECT COUNT(*) FROM source",
		"entries": "SELECT COUNT(*) FROM entry",
		"skipped": "SELECT COALESCE(SUM(skipped), 0) FROM source",
		"labels":  "SELECT COUNT(DISTINCT label) FROM entry",
	}
)

// GetDataState returns the current state of the database.
func GetDataState(db *sql.DB) (map[string]int64, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	state := make(map[string]int64)
	for k, v := range stateQueries {
		count, err := getCount(db, v)
		if err != nil {
			return nil, fmt.Errorf("getting %s count: %w", k, err)
		}
		state[k] = count
	}

	return state, nil
}

func getCount(db *sql.DB, query string) (int64, error) {
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("scanning count: %w", err)
	}
	return count, nil
}
