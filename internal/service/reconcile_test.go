package service

import (
	"bitwise74/usercontent-api/internal/model"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcilerRemovesOrphans(t *testing.T) {
	env := newTestEnv(t)
	env.addSession(t, "tok", "user-1")

	old := time.Now().Add(-2 * time.Hour)

	tracked := env.upload(t, "tok", "tracked.png", []byte("x"))
	require.NoError(t, env.fs.Chtimes(tracked.Path, old, old))

	orphan := env.blobs.Path("abc_orphan.png")
	require.NoError(t, afero.WriteFile(env.fs, orphan, []byte("x"), 0o644))
	require.NoError(t, env.fs.Chtimes(orphan, old, old))

	fresh := env.blobs.Path("abc_fresh.png")
	require.NoError(t, afero.WriteFile(env.fs, fresh, []byte("x"), 0o644))

	hidden := env.blobs.Path(".health_check")
	require.NoError(t, afero.WriteFile(env.fs, hidden, []byte("ok"), 0o644))
	require.NoError(t, env.fs.Chtimes(hidden, old, old))

	require.NoError(t, env.fs.Mkdir(env.blobs.Path("subdir"), 0o755))

	r := NewReconciler(env.db, env.blobs, time.Hour)

	removed, err := r.Run(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	for p, want := range map[string]bool{
		tracked.Path: true,
		orphan:       false,
		fresh:        true,
		hidden:       true,
	} {
		exists, err := afero.Exists(env.fs, p)
		require.NoError(t, err)
		assert.Equal(t, want, exists, p)
	}

	var n int64
	require.NoError(t, env.db.Model(model.Content{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestReconcilerSchedule(t *testing.T) {
	env := newTestEnv(t)
	r := NewReconciler(env.db, env.blobs, time.Hour)

	_, err := r.Schedule("not a schedule")
	assert.Error(t, err)

	c, err := r.Schedule("@every 1h")
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
