package service

import (
	"bitwise74/usercontent-api/db"
	"bitwise74/usercontent-api/internal/model"
	"bitwise74/usercontent-api/internal/storage"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testRoot = "/srv/usercontent"
	testBase = "https://uc.davidnet.net"
)

type testEnv struct {
	db       *gorm.DB
	fs       afero.Fs
	blobs    *storage.Local
	queue    *TaskQueue
	audit    *AuditLogger
	uploader *Uploader
	querier  *Querier
	deleter  *Deleter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// Pre-create the database file, New refuses to create one inside containers
	dsn := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, os.WriteFile(dsn, nil, 0o644))

	conn, err := db.New("sqlite", dsn, true)
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(testRoot, 0o755))

	blobs, err := storage.NewLocal(fs, testRoot, testBase)
	require.NoError(t, err)

	q := NewTaskQueue(1, 64)
	q.StartWorkerPool()
	t.Cleanup(q.Close)

	audit := NewAuditLogger(conn, q)

	return &testEnv{
		db:       conn,
		fs:       fs,
		blobs:    blobs,
		queue:    q,
		audit:    audit,
		uploader: NewUploader(conn, blobs, audit, nil, UploadOptions{}),
		querier:  NewQuerier(conn, blobs),
		deleter:  NewDeleter(conn, blobs, audit, nil),
	}
}

func (e *testEnv) addSession(t *testing.T, token, userID string) {
	t.Helper()
	require.NoError(t, e.db.Create(&model.Session{Token: token, UserID: userID}).Error)
}

func (e *testEnv) upload(t *testing.T, token, name string, payload []byte) *UploadResult {
	t.Helper()

	res, err := e.uploader.Do(t.Context(), UploadInput{
		Token:    token,
		Type:     "image",
		Filename: name,
		Body:     bytes.NewReader(payload),
	})
	require.NoError(t, err)

	return res
}

func (e *testEnv) countContent(t *testing.T) int64 {
	t.Helper()

	var n int64
	require.NoError(t, e.db.Model(model.Content{}).Count(&n).Error)
	return n
}

// flushAudit waits for every queued log entry and returns all of them in insert order
func (e *testEnv) flushAudit(t *testing.T) []model.AccountLog {
	t.Helper()
	e.queue.Close()

	var logs []model.AccountLog
	require.NoError(t, e.db.Order("rowid").Find(&logs).Error)
	return logs
}

func (e *testEnv) blobCount(t *testing.T) int {
	t.Helper()

	entries, err := e.blobs.List()
	require.NoError(t, err)
	return len(entries)
}
