// Package config loads the workbench's YAML settings document.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings is the single YAML settings document described in spec.md §6.
type Settings struct {
	AppFolder                string `yaml:"app_folder"`
	AutoConvertOnOpen        bool   `yaml:"auto_convert_on_open"`
	Theme                    string `yaml:"theme"`
	UILanguage               string `yaml:"ui_language"`
	DefaultSourceLanguage    string `yaml:"default_source_language"`
	DefaultTargetLanguage    string `yaml:"default_target_language"`
	DefaultXLIFFVersion      string `yaml:"default_xliff_version"`
	ShowNotifications        bool   `yaml:"show_notifications"`
	EnableSoundNotifications bool   `yaml:"enable_sound_notifications"`
	MaxParallelConversions   int    `yaml:"max_parallel_conversions"`
	DatabaseJournalMode      string `yaml:"database_journal_mode"`
	DatabaseSynchronous      string `yaml:"database_synchronous"`
}

// DefaultSettings returns the settings document with conservative defaults.
func DefaultSettings() *Settings {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Settings{
		AppFolder:              filepath.Join(home, ".weg-translator"),
		AutoConvertOnOpen:      false,
		Theme:                  "system",
		UILanguage:             "en",
		DefaultXLIFFVersion:    "2.0",
		ShowNotifications:      true,
		MaxParallelConversions: 2,
		DatabaseJournalMode:    "WAL",
		DatabaseSynchronous:    "NORMAL",
	}
}

// Load loads settings using the real environment and default file location.
func Load() (*Settings, error) {
	return LoadWithEnv(os.Getenv)
}

// LoadWithEnv loads settings using the provided environment lookup function,
// so tests can supply isolated environment values. A missing settings file is
// not an error; defaults are returned instead.
func LoadWithEnv(getenv func(string) string) (*Settings, error) {
	settings := DefaultSettings()

	path := settingsPathWithEnv(getenv)
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parse settings file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read settings file %s: %w", path, err)
	}

	if folder := getenv("WEG_APP_FOLDER"); folder != "" {
		settings.AppFolder = folder
	}

	return settings, nil
}

// settingsPath returns the default settings file path.
func settingsPath() string {
	return settingsPathWithEnv(os.Getenv)
}

func settingsPathWithEnv(getenv func(string) string) string {
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "weg-translator", "settings.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "weg-translator", "settings.yaml")
}

// Save writes the settings document to the given path, creating parent
// directories as needed.
func Save(path string, settings *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}
