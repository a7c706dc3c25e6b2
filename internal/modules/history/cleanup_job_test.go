package history

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupJob(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Record(ctx, sampleAnalysis("005930", 50, now.Add(-48*time.Hour))))
	require.NoError(t, repo.Record(ctx, sampleAnalysis("005930", 60, now.Add(-time.Hour))))

	job := NewCleanupJob(repo, 24*time.Hour, zerolog.Nop())
	job.now = func() time.Time { return now }

	assert.Equal(t, "history_cleanup", job.Name())
	require.NoError(t, job.Run())

	entries, err := repo.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 60.0, entries[0].TotalScore)
}

func TestNewCleanupJob_DefaultRetention(t *testing.T) {
	job := NewCleanupJob(nil, 0, zerolog.Nop())
	assert.Equal(t, DefaultRetention, job.retention)
}
