package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.Server.Port != 8080 || cfg.Server.Host != "localhost" {
		t.Errorf("Server = %s:%d, want localhost:8080", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Server.MaxBodyBytes != 1<<20 {
		t.Errorf("MaxBodyBytes = %d, want %d", cfg.Server.MaxBodyBytes, 1<<20)
	}
	if cfg.Server.TokenHash != "" {
		t.Error("auth should be disabled by default")
	}
	if !cfg.History.Enabled {
		t.Error("history should be enabled by default")
	}
	if cfg.Report.MinSeverity != "info" {
		t.Errorf("MinSeverity = %q, want info", cfg.Report.MinSeverity)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"version 0", func(c *Config) { c.Version = 0 }, "version"},
		{"version 2", func(c *Config) { c.Version = 2 }, "version"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"json logs", func(c *Config) { c.Logging.Format = "json" }, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }, "server.maxBodyBytes"},
		{"rate limit off ignores zeros", func(c *Config) { c.Server.RateLimit.PerMinute = 0 }, ""},
		{"rate limit", func(c *Config) {
			c.Server.RateLimit.Enabled = true
			c.Server.RateLimit.Burst = 0
		}, "server.rateLimit"},
		{"max runs", func(c *Config) { c.History.MaxRuns = -1 }, "history.maxRuns"},
		{"unlimited runs", func(c *Config) { c.History.MaxRuns = 0 }, ""},
		{"report format", func(c *Config) { c.Report.Format = "pdf" }, "report.format"},
		{"sarif format", func(c *Config) { c.Report.Format = "sarif" }, ""},
		{"severity", func(c *Config) { c.Report.MinSeverity = "urgent" }, "report.minSeverity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() returned unexpected error: %v", err)
				}
				return
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "version", Message: "unsupported config version 99"}

	want := "config error in field 'version': unsupported config version 99"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestLoadConfig_Default(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d (default)", cfg.Version, CurrentVersion)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if !cfg.Server.Metrics || cfg.Server.SamplePath != "" {
		t.Errorf("metrics = %v, samplePath = %q", cfg.Server.Metrics, cfg.Server.SamplePath)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, ".botlint")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create .botlint dir: %v", err)
	}

	configContent := `{
		"version": 1,
		"server": {"port": 9000, "maxBodyBytes": 2048},
		"history": {"enabled": false},
		"report": {"format": "json", "minSeverity": "medium"}
	}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 9000 || cfg.Server.MaxBodyBytes != 2048 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.History.Enabled {
		t.Error("history should be disabled per config")
	}
	if cfg.Report.Format != "json" || cfg.Report.MinSeverity != "medium" {
		t.Errorf("Report = %+v", cfg.Report)
	}
	// Unset keys keep their defaults.
	if cfg.Server.Host != "localhost" || cfg.Logging.Level != "info" {
		t.Errorf("defaults lost: host=%q level=%q", cfg.Server.Host, cfg.Logging.Level)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("BOTLINT_SERVER_PORT", "9191")
	t.Setenv("BOTLINT_HISTORY_ENABLED", "false")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Port = %d, want 9191 from env", cfg.Server.Port)
	}
	if cfg.History.Enabled {
		t.Error("history should be disabled from env")
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, ".botlint")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(tmpDir); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestConfig_Save(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Server.Port = 4242
	cfg.Allowlist.Path = "rules/allow.toml"

	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, ".botlint", "config.json"))
	if err != nil {
		t.Fatalf("Failed to read saved config: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("saved config is not JSON: %v", err)
	}

	loaded, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Server.Port != 4242 || loaded.Allowlist.Path != "rules/allow.toml" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}
