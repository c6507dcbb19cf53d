package config

import "github.com/arcadecheck/arcadecheck/internal/extract"

// NewDefault returns the built-in configuration: the five shipped
// sources, local data and log directories, and push notifications
// inactive until credentials are configured.
func NewDefault() *Config {
	return &Config{
		Web: WebConfig{
			Addr:     ":5000",
			Title:    "Arcade App Version Monitor",
			LogLines: 40,
		},
		Storage: StorageConfig{
			DataDir:       "data",
			LastCheckFile: "lastcheck",
		},
		CheckLog: CheckLogConfig{
			Path: "logs/checks.log",
		},
		Log: LogConfig{
			Dir:        "logs",
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 14,
			Compress:   true,
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 20,
			MaxBodyMB:      5,
		},
		Pushover: PushoverConfig{
			Enabled: true,
		},
		Sources: DefaultSources(),
	}
}

// DefaultSources lists the five monitored applications with their
// extraction rules. A config file that sets sources replaces the whole
// list.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{
			ID:         "mame",
			Label:      "MAME",
			URL:        "https://pleasuredome.github.io/pleasuredome/mame/index.html",
			Descriptor: "update ROMs",
			Rule: extract.Rule{
				Kind:      extract.KindText,
				Pattern:   `(?i)MAME\s*-\s*Update ROMs\s*\(v([0-9.]+)\s+to\s+v([0-9.]+)\)`,
				Group:     2,
				FromGroup: 1,
			},
		},
		{
			ID:    "launchbox",
			Label: "LaunchBox",
			URL:   "https://www.launchbox-app.com/about/changelog",
			Rule: extract.Rule{
				Kind:        extract.KindSelector,
				Selector:    "h4",
				Pattern:     `(?i)\bVersion\s+([0-9.]+)\b`,
				SkipMarkers: []string{"beta"},
			},
		},
		{
			ID:         "retroarch",
			Label:      "RetroArch",
			URL:        "https://www.retroarch.com/?page=platforms",
			Descriptor: "stable",
			Rule: extract.Rule{
				Kind:    extract.KindText,
				Pattern: `(?i)The current stable version is:\s*([0-9.]+)`,
			},
		},
		{
			ID:    "ledblinky",
			Label: "LEDBlinky",
			URL:   "https://ledblinky.net/Download.htm",
			Rule: extract.Rule{
				Kind:    extract.KindText,
				Pattern: `(?i)LEDBlinky\s+v([0-9.]+)`,
			},
		},
		{
			ID:         "scummvm",
			Label:      "ScummVM",
			URL:        "https://www.scummvm.org/downloads/",
			Descriptor: "stable",
			Rule: extract.Rule{
				Kind:    extract.KindText,
				Pattern: `(?i)The latest STABLE release of ScummVM is\s+([0-9.]+)`,
			},
		},
	}
}
