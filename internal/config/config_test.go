package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quetzal.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[store]
path = "/var/lib/quetzal"

[server]
addr = ":9090"

[log]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Path != "/var/lib/quetzal" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.Workers != 4 {
		t.Errorf("workers = %d, want default 4", cfg.Server.Workers)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[server]
adress = ":9090"
`)
	if _, err := Load(path); err == nil {
		t.Error("misspelled key loaded without error")
	}
}

func TestNewLogger(t *testing.T) {
	log, err := Default().Log.NewLogger()
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer log.Sync() //nolint:errcheck
	log.Debug("suppressed at info level")

	if _, err := (LogConfig{Level: "verbose"}).NewLogger(); err == nil {
		t.Error("invalid level accepted")
	}
}

func TestNewLoggerFileTarget(t *testing.T) {
	file := filepath.Join(t.TempDir(), "quetzal.log")
	cfg := Default().Log
	cfg.File = file
	log, err := cfg.NewLogger()
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	log.Info("started")
	log.Sync() //nolint:errcheck
	if _, err := os.Stat(file); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}
