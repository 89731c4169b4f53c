// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"bitwise74/usercontent-api/pkg/validators"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configDir      = pflag.String("config-dir", ".", "Directory containing config.toml")
	_              = pflag.Bool("reconcile", false, "Removes orphaned blobs once and exits")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers   = []string{"sqlite", "mysql", "postgres"}
	defaultOrigins = []string{"https://www.davidnet.net", "https://davidnet.net", "https://account.davidnet.net", "https://auth.davidnet.net"}
)

// minPrefixLength keeps blob names unguessable
const minPrefixLength = 20

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	return Load(*configDir)
}

// Load reads config.toml from dir (if present), the environment and the
// command line flags into the global viper instance and validates the result
func Load(dir string) error {
	v.Reset()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.cors", "host_cors")

	v.BindEnv("database.driver", "database_driver")
	v.BindEnv("database.dsn", "database_dsn")
	v.BindEnv("database.migrate_external", "database_migrate_external")

	v.BindEnv("upload.root", "upload_root")
	v.BindEnv("upload.public_base_url", "upload_public_base_url")
	v.BindEnv("upload.max_size", "upload_max_size")
	v.BindEnv("upload.max_body", "upload_max_body")
	v.BindEnv("upload.allowed_exts", "upload_allowed_exts")
	v.BindEnv("upload.prefix_length", "upload_prefix_length")

	v.BindEnv("security.rate_limit", "security_rate_limit")

	v.BindEnv("audit.workers", "audit_workers")
	v.BindEnv("audit.queue_size", "audit_queue_size")

	v.BindEnv("cache.content_id_ttl", "cache_content_id_ttl")

	v.BindEnv("reconcile.enabled", "reconcile_enabled")
	v.BindEnv("reconcile.schedule", "reconcile_schedule")
	v.BindEnv("reconcile.grace", "reconcile_grace")

	v.BindEnv("replica.enabled", "replica_enabled")
	v.BindEnv("replica.bucket", "replica_bucket")
	v.BindEnv("replica.region", "replica_region")
	v.BindEnv("replica.endpoint", "replica_endpoint")
	v.BindEnv("replica.access_key_id", "replica_access_key_id")
	v.BindEnv("replica.secret_access_key", "replica_secret_access_key")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors", defaultOrigins)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")
	v.SetDefault("database.migrate_external", false)

	v.SetDefault("upload.max_size", 5)
	v.SetDefault("upload.max_body", 32)
	v.SetDefault("upload.allowed_exts", validators.DefaultAllowedExts)
	v.SetDefault("upload.prefix_length", minPrefixLength)

	v.SetDefault("security.rate_limit", 10)

	v.SetDefault("audit.workers", 1)
	v.SetDefault("audit.queue_size", 256)

	v.SetDefault("cache.content_id_ttl", 15)

	v.SetDefault("reconcile.enabled", false)
	v.SetDefault("reconcile.schedule", "@every 24h")
	v.SetDefault("reconcile.grace", "1h")

	v.SetDefault("replica.enabled", false)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}

		fmt.Println("[WARNING]: config.toml file is missing, using environment variables and defaults only")
	}

	// Lists coming from the environment are comma separated
	for _, key := range []string{"host.cors", "upload.allowed_exts"} {
		v.Set(key, splitList(v.Get(key)))
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if port := v.GetInt("host.port"); port <= 0 || port > 65535 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("database.dsn") == "" {
		return errors.New("database.dsn can't be empty")
	}

	if v.GetString("upload.root") == "" {
		return errors.New("upload.root can't be empty")
	}

	if err := validateBaseURL(v.GetString("upload.public_base_url")); err != nil {
		return err
	}

	if v.GetInt64("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetInt64("upload.max_body") < v.GetInt64("upload.max_size") {
		return errors.New("upload.max_body can't be smaller than upload.max_size")
	}

	exts := validators.NormalizeExts(v.GetStringSlice("upload.allowed_exts"))
	if len(exts) == 0 {
		return errors.New("upload.allowed_exts can't be empty")
	}
	v.Set("upload.allowed_exts", exts)

	if v.GetInt("upload.prefix_length") < minPrefixLength {
		return fmt.Errorf("upload.prefix_length must be at least %d", minPrefixLength)
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if v.GetInt("audit.workers") <= 0 {
		return errors.New("audit.workers must be bigger than 0")
	}

	if v.GetInt("audit.queue_size") <= 0 {
		return errors.New("audit.queue_size must be bigger than 0")
	}

	if v.GetInt("cache.content_id_ttl") < 0 {
		return errors.New("cache.content_id_ttl can't be negative")
	}

	if _, err := cron.ParseStandard(v.GetString("reconcile.schedule")); err != nil {
		return fmt.Errorf("invalid reconcile.schedule, %w", err)
	}

	grace, err := time.ParseDuration(v.GetString("reconcile.grace"))
	if err != nil {
		return fmt.Errorf("invalid reconcile.grace, %w", err)
	}

	if grace < time.Minute {
		return errors.New("reconcile.grace must be at least a minute")
	}

	if v.GetBool("replica.enabled") {
		if v.GetString("replica.bucket") == "" {
			return errors.New("bucket can't be empty")
		}
		if v.GetString("replica.region") == "" {
			return errors.New("region can't be empty")
		}
		if (v.GetString("replica.access_key_id") == "") != (v.GetString("replica.secret_access_key") == "") {
			return errors.New("access key id and secret access key must be set together")
		}
	}

	origins := v.GetStringSlice("host.cors")
	if len(origins) == 0 {
		return errors.New("host.cors needs at least one origin")
	}

	for _, o := range origins {
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("invalid cors origin %q", o)
		}
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	v.Set("upload.max_body", v.GetInt64("upload.max_body")<<20)
	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return errors.New("upload.public_base_url can't be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid upload.public_base_url, %w", err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("upload.public_base_url must be an absolute http(s) URL")
	}

	return nil
}

func splitList(raw any) []string {
	var items []string

	switch val := raw.(type) {
	case string:
		items = strings.Split(val, ",")
	case []string:
		items = val
	case []any:
		for _, i := range val {
			items = append(items, fmt.Sprint(i))
		}
	}

	out := make([]string, 0, len(items))
	for _, i := range items {
		if i = strings.TrimSpace(i); i != "" {
			out = append(out, i)
		}
	}

	return out
}
