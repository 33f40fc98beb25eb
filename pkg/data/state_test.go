package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDataState_Empty(t *testing.T) {
	db := setupTestDB(t)
	state, err := GetDataState(db)
	require.NoError(t, err)
	assert.Len(t, state, len(stateQueries))
	for k, v := range state {
		assert.Zero(t, v, k)
	}
}

func TestGetDataState_AfterSave(t *testing.T) {
	db := setupTestDB(t)
	_, err := SaveCorpus(db, "movies", testCorpus(t))
	require.NoError(t, err)

	state, err := GetDataState(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state["sources"])
	assert.Equal(t, int64(3), state["entries"])
	assert.Equal(t, int64(1), state["skipped"])
	assert.Equal(t, int64(3), state["labels"])
}

func TestGetDataState_NilDB(t *testing.T) {
	_, err := GetDataState(nil)
	assert.Error(t, err)
}
