// Package config loads service configuration: defaults, then an optional YAML file, then a .env
// file, then GUARDS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/burhani-guards/guards-api/internal/platform/clock"
	"github.com/burhani-guards/guards-api/internal/platform/logging"
)

const envPrefix = "guards"

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Port            int           `yaml:"port"            envconfig:"PORT"`
	StorageBackend  string        `yaml:"storageBackend"  split_words:"true"`
	DatabaseURL     string        `yaml:"databaseUrl"     envconfig:"DATABASE_URL"`
	DBMaxOpenConns  int           `yaml:"dbMaxOpenConns"  envconfig:"DB_MAX_OPEN_CONNS"`
	DisplayTimezone string        `yaml:"displayTimezone" split_words:"true"`
	CaptainITS      string        `yaml:"captainIts"      envconfig:"CAPTAIN_ITS"`
	UploadDir       string        `yaml:"uploadDir"       split_words:"true"`
	MaxImageBytes   int64         `yaml:"maxImageBytes"   split_words:"true"`
	BcryptCost      int           `yaml:"bcryptCost"      split_words:"true"`
	LogLevel        string        `yaml:"logLevel"        split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" split_words:"true"`

	// Seed captain, upserted by the migrate command when SeedCaptainITS is set.
	SeedCaptainITS      string `yaml:"seedCaptainIts"      envconfig:"SEED_CAPTAIN_ITS"`
	SeedCaptainName     string `yaml:"seedCaptainName"     split_words:"true"`
	SeedCaptainEmail    string `yaml:"seedCaptainEmail"    split_words:"true"`
	SeedCaptainPassword string `yaml:"seedCaptainPassword" split_words:"true"`
}

func Defaults() Config {
	return Config{
		Port:            8080,
		StorageBackend:  BackendMemory,
		DisplayTimezone: clock.DefaultDisplayZone,
		CaptainITS:      "30375370",
		UploadDir:       "uploads",
		MaxImageBytes:   5 << 20,
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load builds the configuration. configFile may be empty. envFiles defaults to ".env"; missing
// env files are ignored and never override variables already set.
func Load(configFile string, envFiles ...string) (*Config, error) {
	cfg := Defaults()

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading %s: %w", f, err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	switch c.StorageBackend {
	case BackendMemory:
	case BackendPostgres, BackendMySQL, BackendSQLite:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			errs = append(errs, fmt.Errorf("databaseUrl is required for storage backend %q", c.StorageBackend))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"invalid storageBackend: %q (must be 'memory', 'postgres', 'mysql', or 'sqlite')",
			c.StorageBackend,
		))
	}
	if _, err := clock.LoadDisplayZone(c.DisplayTimezone); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.CaptainITS) == "" {
		errs = append(errs, errors.New("captainIts must be set"))
	}
	if c.MaxImageBytes <= 0 {
		errs = append(errs, errors.New("maxImageBytes must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdownTimeout must be positive"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }
