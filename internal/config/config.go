// ABOUTME: Settings loading with global + project config deep merge
// ABOUTME: YAML configuration via gopkg.in/yaml.v3; maps onto composer options

// Package config loads composer settings from the user and project
// config files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mauromedda/msgcomposer/pkg/composer/form"
	"github.com/mauromedda/msgcomposer/pkg/composer/swipe"
)

// Settings holds the merged configuration.
type Settings struct {
	MaxAttachments   int               `yaml:"max_attachments,omitempty"`
	MaxFileBytes     int64             `yaml:"max_file_bytes,omitempty"`
	DebounceMS       int               `yaml:"debounce_ms,omitempty"`
	CacheTTLMS       int               `yaml:"cache_ttl_ms,omitempty"`
	MatchCap         int               `yaml:"match_cap,omitempty"`
	QueryMaxLen      int               `yaml:"query_max_len,omitempty"`
	SwipeSensitivity int               `yaml:"swipe_sensitivity,omitempty"`
	Keybindings      map[string]string `yaml:"keybindings,omitempty"`
	Disabled         []string          `yaml:"disabled_shortcuts,omitempty"`
	LogFile          string            `yaml:"log_file,omitempty"`
	LogLevel         string            `yaml:"log_level,omitempty"`
	Theme            string            `yaml:"theme,omitempty"`
}

// Load reads and merges global and project-local settings.
// Project settings override global settings.
func Load(projectRoot string) (*Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return LoadWithHome(projectRoot, home)
}

// LoadWithHome is Load with an explicit home directory.
func LoadWithHome(projectRoot, home string) (*Settings, error) {
	global, err := loadFile(globalConfigFile(home))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := loadFile(ProjectConfigFile(projectRoot))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	merged := merge(global, project)
	ResolveEnvVars(merged)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// loadFile reads a Settings from a YAML file. Returns zero Settings if file
// does not exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge deep-merges project settings onto global settings.
// Non-zero project values override global values.
func merge(global, project *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if project == nil {
		return global
	}

	result := *global

	if project.MaxAttachments != 0 {
		result.MaxAttachments = project.MaxAttachments
	}
	if project.MaxFileBytes != 0 {
		result.MaxFileBytes = project.MaxFileBytes
	}
	if project.DebounceMS != 0 {
		result.DebounceMS = project.DebounceMS
	}
	if project.CacheTTLMS != 0 {
		result.CacheTTLMS = project.CacheTTLMS
	}
	if project.MatchCap != 0 {
		result.MatchCap = project.MatchCap
	}
	if project.QueryMaxLen != 0 {
		result.QueryMaxLen = project.QueryMaxLen
	}
	if project.SwipeSensitivity != 0 {
		result.SwipeSensitivity = project.SwipeSensitivity
	}
	if project.LogFile != "" {
		result.LogFile = project.LogFile
	}
	if project.LogLevel != "" {
		result.LogLevel = project.LogLevel
	}
	if project.Theme != "" {
		result.Theme = project.Theme
	}

	if len(project.Keybindings) > 0 {
		kb := make(map[string]string, len(result.Keybindings)+len(project.Keybindings))
		for k, v := range result.Keybindings {
			kb[k] = v
		}
		for k, v := range project.Keybindings {
			kb[k] = v
		}
		result.Keybindings = kb
	}
	if len(project.Disabled) > 0 {
		result.Disabled = append(append([]string(nil), result.Disabled...), project.Disabled...)
	}

	return &result
}

// Validate rejects values outside their documented ranges.
func (s *Settings) Validate() error {
	if s.MaxAttachments < 0 {
		return fmt.Errorf("max_attachments must be positive, got %d", s.MaxAttachments)
	}
	if s.MaxFileBytes < 0 {
		return fmt.Errorf("max_file_bytes must be positive, got %d", s.MaxFileBytes)
	}
	if s.DebounceMS < 0 || s.CacheTTLMS < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if s.SwipeSensitivity != 0 && (s.SwipeSensitivity < 1 || s.SwipeSensitivity > 5) {
		return fmt.Errorf("swipe_sensitivity must be 1..5, got %d", s.SwipeSensitivity)
	}
	switch s.Theme {
	case "", "dark", "light":
	default:
		return fmt.Errorf("theme must be dark or light, got %q", s.Theme)
	}
	return nil
}

// ComposerOptions maps the settings onto composer options; unset fields
// keep the composer defaults.
func (s *Settings) ComposerOptions(mac bool) (form.Options, error) {
	opts := form.DefaultOptions()
	opts.Mac = mac
	if s.MaxAttachments > 0 {
		opts.MaxAttachments = s.MaxAttachments
	}
	if s.MaxFileBytes > 0 {
		opts.MaxFileBytes = s.MaxFileBytes
	}
	if s.DebounceMS > 0 {
		opts.Debounce = time.Duration(s.DebounceMS) * time.Millisecond
	}
	if s.CacheTTLMS > 0 {
		opts.CacheTTL = time.Duration(s.CacheTTLMS) * time.Millisecond
	}
	if s.MatchCap > 0 {
		opts.MatchCap = s.MatchCap
	}
	if s.QueryMaxLen > 0 {
		opts.QueryMaxLen = s.QueryMaxLen
	}
	table, err := ApplyKeybindings(s.Keybindings, s.Disabled, mac)
	if err != nil {
		return opts, err
	}
	opts.Shortcuts = table
	return opts, nil
}

// SwipeOptions maps the sensitivity setting onto detector options.
func (s *Settings) SwipeOptions() swipe.Options {
	return swipe.Options{Sensitivity: s.SwipeSensitivity}
}

// DarkTheme reports whether the dark palette is selected (the default).
func (s *Settings) DarkTheme() bool { return s.Theme != "light" }
