package reliability

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aristath/stockscore/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (m *memoryStore) Upload(ctx context.Context, key string, body io.Reader) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memoryStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ObjectInfo
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func setupHistoryDB(t *testing.T, dir string) *database.DB {
	db, err := database.New(database.Config{
		Path: filepath.Join(dir, "history.db"),
		Name: database.NameHistory,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	_, err = db.Conn().Exec(`INSERT INTO watchlist (code, name, memo, added_at) VALUES ('005930', 'Samsung', '', 0)`)
	require.NoError(t, err)
	return db
}

func readArchive(t *testing.T, data []byte) map[string][]byte {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	files := make(map[string][]byte)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		content, err := io.ReadAll(tr)
		require.NoError(t, err)
		files[hdr.Name] = content
	}
	return files
}

func TestBackupService_CreateAndUploadBackup(t *testing.T) {
	dir := t.TempDir()
	db := setupHistoryDB(t, dir)
	store := newMemoryStore()

	svc := NewBackupService(store, dir, zerolog.Nop(), db)
	svc.now = func() time.Time { return time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC) }

	key, err := svc.CreateAndUploadBackup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "backups/stockscore-backup-2024-03-04-050607.tar.gz", key)
	require.Equal(t, []string{key}, store.keys())

	files := readArchive(t, store.objects[key])
	require.Contains(t, files, "history.db")
	require.Contains(t, files, metadataFilename)

	var meta BackupMetadata
	require.NoError(t, json.Unmarshal(files[metadataFilename], &meta))
	require.Len(t, meta.Databases, 1)
	assert.Equal(t, "history", meta.Databases[0].Name)
	assert.Equal(t, int64(len(files["history.db"])), meta.Databases[0].SizeBytes)
	assert.True(t, strings.HasPrefix(meta.Databases[0].Checksum, "sha256:"))

	// staging directory is cleaned up
	matches, err := filepath.Glob(filepath.Join(dir, "backup-staging-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestBackupService_UploadFailure(t *testing.T) {
	dir := t.TempDir()
	store := newMemoryStore()
	store.uploadErr = errors.New("bucket unreachable")

	svc := NewBackupService(store, dir, zerolog.Nop(), setupHistoryDB(t, dir))
	_, err := svc.CreateAndUploadBackup(context.Background())
	assert.Error(t, err)
}

func TestBackupService_RotateOldBackups(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ages := []int{0, 1, 2, 10, 40, 50} // days

	tests := []struct {
		name          string
		retentionDays int
		wantDeleted   int
	}{
		{"keep forever", 0, 0},
		{"thirty days", 30, 2},
		{"five days", 5, 3},
		{"one day keeps newest three", 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			for _, age := range ages {
				stamp := now.AddDate(0, 0, -age).Format(archiveTimestamp)
				store.objects[BackupPrefix+archivePrefix+stamp+archiveSuffix] = []byte("x")
			}
			store.objects[BackupPrefix+"stockscore-backup-garbage.tar.gz"] = []byte("x")

			svc := NewBackupService(store, t.TempDir(), zerolog.Nop())
			svc.now = func() time.Time { return now }

			deleted, err := svc.RotateOldBackups(context.Background(), tt.retentionDays)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDeleted, deleted)

			backups, err := svc.ListBackups(context.Background())
			require.NoError(t, err)
			assert.Len(t, backups, len(ages)-tt.wantDeleted)
			assert.GreaterOrEqual(t, len(backups), minBackupsToKeep)
			for i := 1; i < len(backups); i++ {
				assert.True(t, backups[i-1].Timestamp.After(backups[i].Timestamp), "newest first")
			}
		})
	}
}

func TestBackupJob(t *testing.T) {
	dir := t.TempDir()
	store := newMemoryStore()
	svc := NewBackupService(store, dir, zerolog.Nop(), setupHistoryDB(t, dir))

	job := NewBackupJob(svc, 30, zerolog.Nop())
	assert.Equal(t, "cloud_backup", job.Name())
	require.NoError(t, job.Run())
	assert.Len(t, store.keys(), 1)

	store.uploadErr = errors.New("down")
	assert.Error(t, job.Run())
}

func TestParseArchiveTimestamp(t *testing.T) {
	ts, ok := parseArchiveTimestamp("backups/stockscore-backup-2024-01-02-030405.tar.gz")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), ts)

	_, ok = parseArchiveTimestamp("backups/other.tar.gz")
	assert.False(t, ok)
}
