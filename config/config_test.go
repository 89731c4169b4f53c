package config

import (
	"os"
	"path/filepath"
	"testing"

	v "github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("UPLOAD_ROOT", "/srv/usercontent")
	t.Setenv("UPLOAD_PUBLIC_BASE_URL", "https://uc.davidnet.net")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	require.NoError(t, Load(t.TempDir()))

	assert.Equal(t, "info", v.GetString("app.log_level"))
	assert.Equal(t, 8080, v.GetInt("host.port"))
	assert.Equal(t, "sqlite", v.GetString("database.driver"))
	assert.Equal(t, int64(5<<20), v.GetInt64("upload.max_size"))
	assert.Equal(t, int64(32<<20), v.GetInt64("upload.max_body"))
	assert.Equal(t, []string{".jpg", ".jpeg", ".png", ".gif", ".pdf"}, v.GetStringSlice("upload.allowed_exts"))
	assert.Equal(t, 20, v.GetInt("upload.prefix_length"))
	assert.Equal(t, []string{
		"https://www.davidnet.net",
		"https://davidnet.net",
		"https://account.davidnet.net",
		"https://auth.davidnet.net",
	}, v.GetStringSlice("host.cors"))
	assert.False(t, v.GetBool("database.migrate_external"))
	assert.False(t, v.GetBool("replica.enabled"))
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("HOST_CORS", "https://a.example, https://b.example")
	t.Setenv("UPLOAD_ALLOWED_EXTS", "PNG,.webp")
	t.Setenv("UPLOAD_MAX_SIZE", "2")
	t.Setenv("APP_LOG_LEVEL", "debug")

	require.NoError(t, Load(t.TempDir()))

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, v.GetStringSlice("host.cors"))
	assert.Equal(t, []string{".png", ".webp"}, v.GetStringSlice("upload.allowed_exts"))
	assert.Equal(t, int64(2<<20), v.GetInt64("upload.max_size"))
	assert.Equal(t, "debug", v.GetString("app.log_level"))
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	toml := `
[upload]
root = "/data/uploads"
public_base_url = "https://cdn.example"
max_size = 1

[database]
driver = "postgres"
dsn = "host=localhost user=uc dbname=uc"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))

	require.NoError(t, Load(dir))

	assert.Equal(t, "/data/uploads", v.GetString("upload.root"))
	assert.Equal(t, "postgres", v.GetString("database.driver"))
	assert.Equal(t, int64(1<<20), v.GetInt64("upload.max_size"))
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad log level", map[string]string{"APP_LOG_LEVEL": "loud"}},
		{"bad port", map[string]string{"HOST_PORT": "70000"}},
		{"bad driver", map[string]string{"DATABASE_DRIVER": "oracle"}},
		{"missing root", map[string]string{"UPLOAD_ROOT": ""}},
		{"relative base url", map[string]string{"UPLOAD_PUBLIC_BASE_URL": "uc.davidnet.net"}},
		{"zero max size", map[string]string{"UPLOAD_MAX_SIZE": "0"}},
		{"body below max size", map[string]string{"UPLOAD_MAX_BODY": "1", "UPLOAD_MAX_SIZE": "5"}},
		{"short prefix", map[string]string{"UPLOAD_PREFIX_LENGTH": "8"}},
		{"bad cors origin", map[string]string{"HOST_CORS": "davidnet.net"}},
		{"bad schedule", map[string]string{"RECONCILE_SCHEDULE": "whenever"}},
		{"bad grace", map[string]string{"RECONCILE_GRACE": "soon"}},
		{"replica without bucket", map[string]string{"REPLICA_ENABLED": "true", "REPLICA_REGION": "auto"}},
		{"replica half credentials", map[string]string{
			"REPLICA_ENABLED":       "true",
			"REPLICA_BUCKET":        "uc",
			"REPLICA_REGION":        "auto",
			"REPLICA_ACCESS_KEY_ID": "id",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, val := range tt.env {
				t.Setenv(k, val)
			}

			assert.Error(t, Load(t.TempDir()))
		})
	}
}
