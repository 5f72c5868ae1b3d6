package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if cfg.Port != 8080 || cfg.StorageBackend != BackendMemory || cfg.CaptainITS != "30375370" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.MaxImageBytes != 5<<20 || cfg.DisplayTimezone != "Asia/Kolkata" || cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("addr=%q", cfg.Addr())
	}
}

func TestLoad_Precedence(t *testing.T) {
	yamlPath := writeFile(t, "guards.yaml", `
port: 9000
storageBackend: sqlite
databaseUrl: file:yaml.db
uploadDir: /srv/yaml
shutdownTimeout: 30s
`)
	envPath := writeFile(t, ".env", "GUARDS_UPLOAD_DIR=/srv/dotenv\nGUARDS_LOG_LEVEL=debug\n")
	// godotenv writes into the process environment.
	t.Cleanup(func() { _ = os.Unsetenv("GUARDS_UPLOAD_DIR") })
	t.Setenv("GUARDS_PORT", "9100")
	t.Setenv("GUARDS_LOG_LEVEL", "warn")

	cfg, err := Load(yamlPath, envPath)
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if cfg.Port != 9100 {
		t.Fatalf("env should win over yaml: port=%d", cfg.Port)
	}
	if cfg.StorageBackend != BackendSQLite || cfg.DatabaseURL != "file:yaml.db" {
		t.Fatalf("yaml values lost: %+v", cfg)
	}
	if cfg.UploadDir != "/srv/dotenv" {
		t.Fatalf(".env should win over yaml: uploadDir=%q", cfg.UploadDir)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf(".env must not override the environment: logLevel=%q", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Fatalf("shutdownTimeout=%v", cfg.ShutdownTimeout)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	t.Setenv("GUARDS_STORAGE_BACKEND", "postgres")
	t.Setenv("GUARDS_DISPLAY_TIMEZONE", "Nowhere/Land")

	_, err := Load("", filepath.Join(t.TempDir(), "none.env"))
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"databaseUrl is required", "Nowhere/Land"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("err=%v, want mention of %q", err, want)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	ok := Defaults()
	if err := ok.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	cases := map[string]func(*Config){
		"port":      func(c *Config) { c.Port = 0 },
		"backend":   func(c *Config) { c.StorageBackend = "mongo" },
		"captain":   func(c *Config) { c.CaptainITS = " " },
		"image":     func(c *Config) { c.MaxImageBytes = 0 },
		"log level": func(c *Config) { c.LogLevel = "chatty" },
		"shutdown":  func(c *Config) { c.ShutdownTimeout = 0 },
	}
	for name, mutate := range cases {
		c := Defaults()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoad_BadYAML(t *testing.T) {
	p := writeFile(t, "bad.yaml", "port: [")
	if _, err := Load(p, filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Fatalf("expected parse error")
	}
}
