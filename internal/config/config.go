// Package config loads and saves named profiles of the engine's
// configuration — scan roots, rules, and scan options — from the
// platform config directory, built on a viper-based Manager.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/xuanyiying/filemover-cli/internal/types"
)

// Config is one profile's full configuration: the roots to scan, the
// rules to match against them, and the scan options to apply.
type Config struct {
	Roots   []string          `mapstructure:"roots"`
	Rules   []types.Rule      `mapstructure:"rules"`
	Options types.ScanOptions `mapstructure:"options"`
}

// DefaultConfig returns a Config with an empty rule set and the
// Normalizer/Walker defaults, ready for a caller to add roots and
// rules to.
func DefaultConfig() Config {
	return Config{
		Roots:   []string{},
		Rules:   []types.Rule{},
		Options: types.ScanOptions{Normalization: types.DefaultNormalizationOptions()},
	}
}

// Manager loads and saves named profiles under a single config
// directory, one JSON file per profile.
type Manager struct {
	dir string
}

// NewManager returns a Manager rooted at dir. Dir returns the default
// platform config directory when the caller has no override.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Dir resolves the platform config directory for this engine:
// os.UserConfigDir() already encodes the Windows/%APPDATA% vs
// POSIX/$HOME/.config split, so a single call serves both platforms.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve config directory: %w", err)
	}
	return filepath.Join(base, "filemover"), nil
}

func (m *Manager) profilePath(profile string) string {
	return filepath.Join(m.dir, profile+".json")
}

// Load reads profile's configuration. A profile that has never been
// saved loads as DefaultConfig. Unknown keys in the file are a load
// error — ErrorUnused rejects config written for a field this version
// of the engine no longer recognizes, rather than silently dropping
// it.
func (m *Manager) Load(profile string) (Config, error) {
	cfg := DefaultConfig()

	path := m.profilePath(profile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.ErrorUnused = true
		// Save writes the types' json field names and uuid strings, so
		// decode by the same tags and through TextUnmarshaler.
		dc.TagName = "json"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(mapstructure.TextUnmarshallerHookFunc(), dc.DecodeHook)
	}); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as profile's configuration, creating the config
// directory if needed.
func (m *Manager) Save(profile string, cfg Config) error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("config: create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.Set("roots", cfg.Roots)
	v.Set("rules", cfg.Rules)
	v.Set("options", cfg.Options)

	path := m.profilePath(profile)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// List returns the names of every saved profile, sorted.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: list %s: %w", m.dir, err)
	}

	var profiles []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		profiles = append(profiles, strings.TrimSuffix(e.Name(), ".json"))
	}
	return profiles, nil
}

// Delete removes a saved profile. Deleting a profile that does not
// exist is not an error.
func (m *Manager) Delete(profile string) error {
	err := os.Remove(m.profilePath(profile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("config: delete %s: %w", profile, err)
	}
	return nil
}

// Exists reports whether profile has a saved configuration file.
func (m *Manager) Exists(profile string) bool {
	_, err := os.Stat(m.profilePath(profile))
	return err == nil
}
