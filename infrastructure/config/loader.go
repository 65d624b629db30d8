package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where commands look for the configuration file
const DefaultPath = "config/config.yaml"

// Probe backends
const (
	ProbeFFprobe = "ffprobe"
	ProbeOpenCV  = "opencv"
)

// Config represents the complete application configuration
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	History HistoryConfig `yaml:"history"`
	Google  GoogleConfig  `yaml:"google"`
	Notify  NotifyConfig  `yaml:"notify"`
}

// PathsConfig contains default directories
type PathsConfig struct {
	SourceDirectory string `yaml:"source_directory"`
	OutputDirectory string `yaml:"output_directory"`
}

// FFmpegConfig contains encoder settings
type FFmpegConfig struct {
	Path                string `yaml:"path"`
	ProbeBackend        string `yaml:"probe_backend"`
	ProbeTimeoutSeconds int    `yaml:"probe_timeout_seconds"`
}

// LoggingConfig contains diagnostic logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig contains the HTTP API listen address
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// HistoryConfig contains export history settings
type HistoryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Database string `yaml:"database"`
}

// GoogleConfig contains Google API settings
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	FolderID        string `yaml:"folder_id"`
}

// NotifyConfig contains the Gmail settings used to email segment links
type NotifyConfig struct {
	FromName    string   `yaml:"from_name"`
	FromAddress string   `yaml:"from_address"`
	TokenFile   string   `yaml:"token_file"`
	Recipients  []string `yaml:"recipients"`
	CC          []string `yaml:"cc"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		FFmpeg: FFmpegConfig{
			Path:                "ffmpeg",
			ProbeBackend:        ProbeFFprobe,
			ProbeTimeoutSeconds: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8765,
		},
		History: HistoryConfig{
			Enabled:  true,
			Database: "data/history.db",
		},
		Google: GoogleConfig{
			CredentialsFile: "config/credentials.json",
			TokenFile:       "config/token.json",
		},
		Notify: NotifyConfig{
			TokenFile: "config/gmail_token.json",
		},
	}
}

// Load reads and parses the configuration from the specified YAML file.
// Keys absent from the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields Default()
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ValidationError describes an invalid configuration value
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Message)
}

// Validate checks that enumerated and numeric settings are in range
func (c *Config) Validate() error {
	switch c.FFmpeg.ProbeBackend {
	case ProbeFFprobe, ProbeOpenCV:
	default:
		return ValidationError{Field: "ffmpeg.probe_backend", Message: fmt.Sprintf("must be %q or %q", ProbeFFprobe, ProbeOpenCV)}
	}

	if c.FFmpeg.ProbeTimeoutSeconds <= 0 {
		return ValidationError{Field: "ffmpeg.probe_timeout_seconds", Message: "must be positive"}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ValidationError{Field: "logging.level", Message: "must be debug, info, warn or error"}
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return ValidationError{Field: "logging.format", Message: "must be text or json"}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ValidationError{Field: "server.port", Message: "must be between 1 and 65535"}
	}

	if len(c.Notify.Recipients) > 0 && c.Notify.FromAddress == "" {
		return ValidationError{Field: "notify.from_address", Message: "is required when notify.recipients is set"}
	}

	return nil
}
