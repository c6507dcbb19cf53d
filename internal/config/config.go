// Package config loads the YAML configuration. Built-in defaults cover
// the five shipped sources, so the service runs without any file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/arcadecheck/arcadecheck/internal/domain"
	"github.com/arcadecheck/arcadecheck/internal/extract"
)

// EnvConfigPath is consulted when no --config flag is given.
const EnvConfigPath = "ARCADECHECK_CONFIG"

// DefaultCheckInterval applies to sources without check_interval_seconds.
const DefaultCheckInterval = 6 * time.Hour

type Config struct {
	Web      WebConfig      `yaml:"web"`
	Storage  StorageConfig  `yaml:"storage"`
	CheckLog CheckLogConfig `yaml:"check_log"`
	Log      LogConfig      `yaml:"log"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Pushover PushoverConfig `yaml:"pushover"`
	Slack    SlackConfig    `yaml:"slack"`
	Sources  []SourceConfig `yaml:"sources" validate:"min=1,dive"`
}

type WebConfig struct {
	Addr         string   `yaml:"addr" validate:"required"`
	Title        string   `yaml:"title"`
	LogLines     int      `yaml:"log_lines" validate:"min=0"`
	AllowedHosts []string `yaml:"allowed_hosts"`
	RatePerMin   int      `yaml:"rate_per_min" validate:"min=0"`
	RateBurst    int      `yaml:"rate_burst" validate:"min=0"`
}

type StorageConfig struct {
	DataDir       string `yaml:"data_dir" validate:"required"`
	LastCheckFile string `yaml:"lastcheck_file" validate:"required"`
}

type CheckLogConfig struct {
	Path string `yaml:"path" validate:"required"`
}

type LogConfig struct {
	Dir        string `yaml:"dir"`
	Level      string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"min=0"`
	MaxBackups int    `yaml:"max_backups" validate:"min=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"min=0"`
	Compress   bool   `yaml:"compress"`
	Console    bool   `yaml:"console"`
}

type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"min=0"`
	UserAgent      string `yaml:"user_agent"`
	MaxBodyMB      int    `yaml:"max_body_mb" validate:"min=0"`
}

type PushoverConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Token    string `yaml:"token"`
	User     string `yaml:"user"`
	Device   string `yaml:"device"`
	Priority int    `yaml:"priority" validate:"min=-2,max=2"`
}

type SlackConfig struct {
	Webhook string `yaml:"webhook" validate:"omitempty,url"`
}

// SourceConfig is one monitored application. Pointer fields distinguish
// "not set" from explicit zero values.
type SourceConfig struct {
	ID                   string       `yaml:"id" validate:"required"`
	Label                string       `yaml:"label"`
	URL                  string       `yaml:"url" validate:"required,url"`
	Descriptor           string       `yaml:"descriptor"`
	VersionFile          string       `yaml:"version_file"`
	CheckIntervalSeconds *int         `yaml:"check_interval_seconds"`
	NotifyOnUpdate       *bool        `yaml:"notify_on_update"`
	NotifyOnError        *bool        `yaml:"notify_on_error"`
	Rule                 extract.Rule `yaml:"rule"`
}

// Interval returns the check cadence. Absent means the default; an
// explicit zero or negative value disables the source's timer.
func (s *SourceConfig) Interval() time.Duration {
	if s.CheckIntervalSeconds == nil {
		return DefaultCheckInterval
	}
	return time.Duration(*s.CheckIntervalSeconds) * time.Second
}

func (s *SourceConfig) NotifyUpdate() bool {
	return s.NotifyOnUpdate == nil || *s.NotifyOnUpdate
}

func (s *SourceConfig) NotifyError() bool {
	return s.NotifyOnError == nil || *s.NotifyOnError
}

// Source converts the entry to its domain form.
func (s *SourceConfig) Source() domain.Source {
	return domain.Source{
		ID:             domain.SourceID(s.ID),
		Label:          s.Label,
		URL:            s.URL,
		Descriptor:     s.Descriptor,
		NotifyOnUpdate: s.NotifyUpdate(),
		NotifyOnError:  s.NotifyError(),
	}
}

// Resolve picks the config path: the flag value wins, then
// $ARCADECHECK_CONFIG.
func Resolve(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	return os.Getenv(EnvConfigPath)
}

// Load reads, normalizes, and validates the YAML file at path. Values in
// the file overlay the built-in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load, but an empty path or a missing file
// yields the built-in defaults instead of an error. The bool reports
// whether a file was actually read.
func LoadOrDefault(path string) (*Config, bool, error) {
	if path == "" {
		cfg := NewDefault()
		cfg.Normalize()
		return cfg, false, nil
	}
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg = NewDefault()
			cfg.Normalize()
			return cfg, false, nil
		}
		return nil, false, err
	}
	return cfg, true, nil
}

// Normalize fills derived per-source fields.
func (c *Config) Normalize() {
	for i := range c.Sources {
		s := &c.Sources[i]
		if s.Label == "" {
			s.Label = s.ID
		}
		if s.VersionFile == "" {
			s.VersionFile = s.ID + ".ver"
		}
	}
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(c.Sources))
	for i := range c.Sources {
		s := &c.Sources[i]
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("duplicate source id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
		if err := s.Rule.Validate(); err != nil {
			return fmt.Errorf("source %q: %w", s.ID, err)
		}
	}
	return nil
}

// VersionFiles maps source ids to their version file names, for the
// file-backed store.
func (c *Config) VersionFiles() map[domain.SourceID]string {
	m := make(map[domain.SourceID]string, len(c.Sources))
	for i := range c.Sources {
		m[domain.SourceID(c.Sources[i].ID)] = c.Sources[i].VersionFile
	}
	return m
}
