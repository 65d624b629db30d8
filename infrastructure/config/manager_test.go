package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestConfigManager_GetSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	mgr := NewConfigManager(cfg, path)

	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{"string key", "paths.output_directory", "/tmp/out", nil},
		{"int key", "server.port", "9001", nil},
		{"bool key", "history.enabled", "false", nil},
		{"unknown key", "email.from", "x", ErrUnknownKey},
		{"not a number", "server.port", "abc", ErrInvalidValue},
		{"not a bool", "history.enabled", "maybe", ErrInvalidValue},
		{"fails validation", "logging.level", "verbose", ErrInvalidValue},
		{"list key", "notify.cc", "a@example.com,b@example.com", nil},
		{"recipients without sender", "notify.recipients", "c@example.com", ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mgr.Set(tt.key, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Set() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, err := mgr.Get(tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got != tt.value {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.value)
			}
		})
	}

	// Invalid values must not leak into the live config
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want unchanged info", cfg.Logging.Level)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Server.Port != 9001 || loaded.Paths.OutputDirectory != "/tmp/out" || loaded.History.Enabled {
		t.Errorf("saved config = %+v", loaded)
	}
}

func TestConfigManager_List(t *testing.T) {
	mgr := NewConfigManager(Default(), "")
	entries := mgr.List()

	if len(entries) != len(Keys()) {
		t.Fatalf("List() returned %d entries, want %d", len(entries), len(Keys()))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Key > entries[i].Key {
			t.Errorf("entries not sorted: %q before %q", entries[i-1].Key, entries[i].Key)
		}
	}
}
