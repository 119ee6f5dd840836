package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Set only required env var
	os.Setenv("DATABASE_URL", "postgres://localhost/formazione")
	defer os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 15*time.Second)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("Database.MaxConns = %d, want %d", cfg.Database.MaxConns, 10)
	}
	if cfg.App.Debug {
		t.Error("App.Debug = true, want false by default")
	}
	if cfg.Logging.ToFile {
		t.Error("Logging.ToFile = true, want false by default")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost/formazione")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("DEBUG_MODE", "true")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_TO_FILE", "true")
	os.Setenv("LOG_DIR", "/var/log/schooladmin")
	defer func() {
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("DEBUG_MODE")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("LOG_TO_FILE")
		os.Unsetenv("LOG_DIR")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if !cfg.App.Debug {
		t.Error("App.Debug = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Dir != "/var/log/schooladmin" {
		t.Errorf("Logging.Dir = %q, want %q", cfg.Logging.Dir, "/var/log/schooladmin")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	// DB_URL works as fallback for DATABASE_URL
	os.Setenv("DB_URL", "postgres://localhost/alttest")
	defer os.Unsetenv("DB_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.URL != "postgres://localhost/alttest" {
		t.Errorf("Database.URL = %q, want %q", cfg.Database.URL, "postgres://localhost/alttest")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("DB_URL")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for missing DATABASE_URL")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "SERVER_PORT", "not-a-number"},
		{"port out of range", "SERVER_PORT", "70000"},
		{"bad duration", "SERVER_READ_TIMEOUT", "15 seconds"},
		{"bad bool", "DEBUG_MODE", "maybe"},
		{"bad level", "LOG_LEVEL", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("DATABASE_URL", "postgres://localhost/formazione")
			os.Setenv(tt.key, tt.value)
			defer func() {
				os.Unsetenv("DATABASE_URL")
				os.Unsetenv(tt.key)
			}()

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q expected error", tt.key, tt.value)
			}
		})
	}
}
