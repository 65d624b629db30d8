package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Errors for config management
var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// ConfigManager reads and updates individual settings by dotted key
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

type field struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringField(ptr func(c *Config) *string) field {
	return field{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error {
			*ptr(c) = v
			return nil
		},
	}
}

func intField(ptr func(c *Config) *int) field {
	return field{
		get: func(c *Config) string { return strconv.Itoa(*ptr(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not a number", ErrInvalidValue, v)
			}
			*ptr(c) = n
			return nil
		},
	}
}

func boolField(ptr func(c *Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*ptr(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, v)
			}
			*ptr(c) = b
			return nil
		},
	}
}

// listField stores a comma separated value as a list
func listField(ptr func(c *Config) *[]string) field {
	return field{
		get: func(c *Config) string { return strings.Join(*ptr(c), ",") },
		set: func(c *Config, v string) error {
			var items []string
			for _, item := range strings.Split(v, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			*ptr(c) = items
			return nil
		},
	}
}

var fields = map[string]field{
	"paths.source_directory":       stringField(func(c *Config) *string { return &c.Paths.SourceDirectory }),
	"paths.output_directory":       stringField(func(c *Config) *string { return &c.Paths.OutputDirectory }),
	"ffmpeg.path":                  stringField(func(c *Config) *string { return &c.FFmpeg.Path }),
	"ffmpeg.probe_backend":         stringField(func(c *Config) *string { return &c.FFmpeg.ProbeBackend }),
	"ffmpeg.probe_timeout_seconds": intField(func(c *Config) *int { return &c.FFmpeg.ProbeTimeoutSeconds }),
	"logging.level":                stringField(func(c *Config) *string { return &c.Logging.Level }),
	"logging.format":               stringField(func(c *Config) *string { return &c.Logging.Format }),
	"server.host":                  stringField(func(c *Config) *string { return &c.Server.Host }),
	"server.port":                  intField(func(c *Config) *int { return &c.Server.Port }),
	"history.enabled":              boolField(func(c *Config) *bool { return &c.History.Enabled }),
	"history.database":             stringField(func(c *Config) *string { return &c.History.Database }),
	"google.credentials_file":      stringField(func(c *Config) *string { return &c.Google.CredentialsFile }),
	"google.token_file":            stringField(func(c *Config) *string { return &c.Google.TokenFile }),
	"google.folder_id":             stringField(func(c *Config) *string { return &c.Google.FolderID }),
	"notify.from_name":             stringField(func(c *Config) *string { return &c.Notify.FromName }),
	"notify.from_address":          stringField(func(c *Config) *string { return &c.Notify.FromAddress }),
	"notify.token_file":            stringField(func(c *Config) *string { return &c.Notify.TokenFile }),
	"notify.recipients":            listField(func(c *Config) *[]string { return &c.Notify.Recipients }),
	"notify.cc":                    listField(func(c *Config) *[]string { return &c.Notify.CC }),
}

// Keys returns every settable key in sorted order
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the current value of key
func (m *ConfigManager) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return f.get(m.config), nil
}

// Set updates key, validates the result and saves the file.
// The in-memory config is left untouched if validation fails.
func (m *ConfigManager) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	next := *m.config
	if err := f.set(&next, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	*m.config = next
	return Save(m.config, m.configPath)
}

// Entry is a key/value pair for listing
type Entry struct {
	Key   string
	Value string
}

// List returns all settings in key order
func (m *ConfigManager) List() []Entry {
	keys := Keys()
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k, Value: fields[k].get(m.config)})
	}
	return entries
}
