// Package config holds the process configuration for the property importer.
//
// Values come from the environment (prefix PROPIMPORT_), optionally seeded from
// .env and .env.local files. Command-line flags are applied on top by the CLI,
// so the precedence is flag, then environment, then the defaults below.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "PROPIMPORT_"

// DefaultEnvFiles are loaded, when present, before the environment is parsed.
var DefaultEnvFiles = []string{".env", ".env.local"}

// Config is the full set of tunables. The validate tags are checked by
// Validate; env tags name the variable without EnvPrefix.
type Config struct {
	Job       string `env:"JOB" envDefault:"propimport" validate:"required"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=silent trace debug info warn warning error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`

	StorageKind     string `env:"STORAGE_KIND" envDefault:"sqlite" validate:"required"`
	StorageDSN      string `env:"STORAGE_DSN" envDefault:"file:propimport.db"`
	StorageTable    string `env:"STORAGE_TABLE" envDefault:"property_listings" validate:"required"`
	AutoCreateTable bool   `env:"AUTO_CREATE_TABLE" envDefault:"true"`

	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760" validate:"gt=0"`
	CommitPolicy   string `env:"COMMIT_POLICY" envDefault:"stop" validate:"oneof=stop continue"`

	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080" validate:"required"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SessionCapacity int           `env:"SESSION_CAPACITY" envDefault:"256" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	MetricsBackend string `env:"METRICS_BACKEND" envDefault:"none" validate:"oneof=none pushgateway prometheus datadog"`
	PushgatewayURL string `env:"PUSHGATEWAY_URL" validate:"omitempty,url"`
	DatadogAddr    string `env:"DATADOG_ADDR"`
}

// LoadEnv loads the files that exist, in order, into the process
// environment. Variables already set are not overridden. It returns how many
// files were found.
func LoadEnv(files []string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if st, err := os.Stat(f); err == nil && !st.IsDir() {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return 0, fmt.Errorf("load env files: %w", err)
	}
	return len(existing), nil
}

// Load reads the env files, then parses the process environment.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = DefaultEnvFiles
	}
	if _, err := LoadEnv(files); err != nil {
		return Config{}, err
	}
	return parse(env.Options{Prefix: EnvPrefix})
}

// FromMap parses a fixed variable set instead of the process environment.
// Keys carry EnvPrefix.
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: EnvPrefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
