package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"botlint/internal/issue"
	"botlint/internal/paths"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = 1

// EnvPrefix prefixes environment overrides, e.g. BOTLINT_SERVER_PORT.
const EnvPrefix = "BOTLINT"

// ReportFormats lists the accepted values of report.format.
var ReportFormats = []string{"human", "json", "yaml", "toml", "html", "sarif"}

// Config represents the complete botlint configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
	Server    ServerConfig    `json:"server" mapstructure:"server"`
	History   HistoryConfig   `json:"history" mapstructure:"history"`
	Report    ReportConfig    `json:"report" mapstructure:"report"`
	Allowlist AllowlistConfig `json:"allowlist" mapstructure:"allowlist"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format     string `json:"format" mapstructure:"format"`
	Level      string `json:"level" mapstructure:"level"`
	MaxSize    string `json:"maxSize" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Host         string   `json:"host" mapstructure:"host"`
	Port         int      `json:"port" mapstructure:"port"`
	TokenHash    string   `json:"tokenHash" mapstructure:"tokenHash"`
	MaxBodyBytes int64    `json:"maxBodyBytes" mapstructure:"maxBodyBytes"`
	CORSOrigins  []string `json:"corsOrigins" mapstructure:"corsOrigins"`
	// SamplePath is the source rewritten by a bare GET /improved-code.
	SamplePath string `json:"samplePath" mapstructure:"samplePath"`
	Metrics    bool   `json:"metrics" mapstructure:"metrics"`

	RateLimit RateLimitConfig `json:"rateLimit" mapstructure:"rateLimit"`
}

// RateLimitConfig throttles API clients with a token bucket per client
type RateLimitConfig struct {
	Enabled   bool `json:"enabled" mapstructure:"enabled"`
	PerMinute int  `json:"perMinute" mapstructure:"perMinute"`
	Burst     int  `json:"burst" mapstructure:"burst"`
}

// HistoryConfig controls persistence of analysis runs
type HistoryConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	MaxRuns int  `json:"maxRuns" mapstructure:"maxRuns"`
}

// ReportConfig sets CLI report defaults
type ReportConfig struct {
	Format      string `json:"format" mapstructure:"format"`
	MinSeverity string `json:"minSeverity" mapstructure:"minSeverity"`
}

// AllowlistConfig locates the suppression file
type AllowlistConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Logging: LoggingConfig{
			Format:     "human",
			Level:      "info",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
		Server: ServerConfig{
			Host:         "localhost",
			Port:         8080,
			MaxBodyBytes: 1 << 20,
			CORSOrigins:  []string{"*"},
			Metrics:      true,
			RateLimit: RateLimitConfig{
				Enabled:   false,
				PerMinute: 60,
				Burst:     10,
			},
		},
		History: HistoryConfig{
			Enabled: true,
			MaxRuns: 200,
		},
		Report: ReportConfig{
			Format:      "human",
			MinSeverity: string(issue.SeverityInfo),
		},
		Allowlist: AllowlistConfig{
			Path: filepath.Join(paths.DirName, "allowlist.toml"),
		},
	}
}

// setDefaults registers every key so that environment overrides apply
// even without a config file.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.tokenHash", d.Server.TokenHash)
	v.SetDefault("server.maxBodyBytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.corsOrigins", d.Server.CORSOrigins)
	v.SetDefault("server.samplePath", d.Server.SamplePath)
	v.SetDefault("server.metrics", d.Server.Metrics)
	v.SetDefault("server.rateLimit.enabled", d.Server.RateLimit.Enabled)
	v.SetDefault("server.rateLimit.perMinute", d.Server.RateLimit.PerMinute)
	v.SetDefault("server.rateLimit.burst", d.Server.RateLimit.Burst)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.maxRuns", d.History.MaxRuns)
	v.SetDefault("report.format", d.Report.Format)
	v.SetDefault("report.minSeverity", d.Report.MinSeverity)
	v.SetDefault("allowlist.path", d.Allowlist.Path)
}

// LoadConfig loads configuration from .botlint/config.json under root.
// A missing file yields the defaults; environment variables override both.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(paths.ConfigDir(root))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration to .botlint/config.json
func (c *Config) Save(root string) error {
	if _, err := paths.EnsureDir(root); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(paths.ConfigPath(root), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}

	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "must be between 1 and 65535"}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return &ConfigError{Field: "server.maxBodyBytes", Message: "must be positive"}
	}
	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.PerMinute <= 0 || c.Server.RateLimit.Burst <= 0) {
		return &ConfigError{Field: "server.rateLimit", Message: "perMinute and burst must be positive when enabled"}
	}

	if c.History.MaxRuns < 0 {
		return &ConfigError{Field: "history.maxRuns", Message: "must not be negative"}
	}

	if !isReportFormat(c.Report.Format) {
		return &ConfigError{Field: "report.format", Message: "must be one of " + strings.Join(ReportFormats, ", ")}
	}
	if _, err := issue.ParseSeverity(c.Report.MinSeverity); err != nil {
		return &ConfigError{Field: "report.minSeverity", Message: err.Error()}
	}

	return nil
}

func isReportFormat(f string) bool {
	for _, known := range ReportFormats {
		if f == known {
			return true
		}
	}
	return false
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
