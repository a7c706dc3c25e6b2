package scheduler

import (
	"path/filepath"
	"testing"

	"github.com/aristath/stockscore/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDatabasesJob_Name(t *testing.T) {
	job := NewCheckDatabasesJob("", zerolog.Nop())
	assert.Equal(t, "check_databases", job.Name())
}

func TestCheckDatabasesJob_Run_NoDatabases(t *testing.T) {
	job := NewCheckDatabasesJob("", zerolog.Nop(), nil, nil)
	assert.NoError(t, job.Run()) // nil databases are skipped
}

func TestCheckDatabasesJob_Run(t *testing.T) {
	dir := t.TempDir()

	db, err := database.New(database.Config{
		Path: filepath.Join(dir, "history.db"),
		Name: database.NameHistory,
	})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	job := NewCheckDatabasesJob("", zerolog.Nop(), db)
	assert.NoError(t, job.Run())
}
