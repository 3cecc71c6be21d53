package config

import "time"

// Default list locations, relative to the working directory.
const (
	DefaultFeedsFile    = "feeds.txt"
	DefaultKeywordsFile = "keywords.txt"
)

// Config is the optional file-based configuration.
//
// Secrets never live here: BOT_TOKEN and CHAT_ID come from the environment
// (see LoadSecrets).
type Config struct {
	FeedsFile    string `json:"feeds_file,omitempty"`
	KeywordsFile string `json:"keywords_file,omitempty"`

	// Window is the recency window as a Go duration string (default "12h").
	Window string `json:"window,omitempty"`

	// Schedule switches the process into daemon mode.
	// Accepted forms: cron ("*/15 * * * *"), "@every 10m", "10m", "HH:MM".
	Schedule string `json:"schedule,omitempty"`
	Timezone string `json:"timezone,omitempty"`

	Fetch    FetchConfig    `json:"fetch"`
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
	Storage  StorageConfig  `json:"storage"`
	Metrics  MetricsConfig  `json:"metrics"`
}

type FetchConfig struct {
	// Timeout is a Go duration string (default "20s").
	Timeout   string `json:"timeout,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

type TelegramConfig struct {
	// APIURL overrides https://api.telegram.org (local Bot API servers).
	APIURL         string `json:"api_url,omitempty"`
	ThreadID       int    `json:"thread_id,omitempty"`
	DisablePreview bool   `json:"disable_preview,omitempty"`
	// Timeout is a Go duration string (default "15s").
	Timeout string `json:"timeout,omitempty"`
	// StartupMessage is sent once when the process starts. Empty disables it.
	StartupMessage string `json:"startup_message,omitempty"`
}

type LoggingConfig struct {
	Level    string          `json:"level"`
	Console  bool            `json:"console"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled    bool   `json:"enabled"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
}

// LoggingTelegram mirrors log lines at or above MinLevel into CHAT_ID.
type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	ThreadID   int    `json:"thread_id"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

// StorageConfig selects the seen-set backend.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./seen.txt" }
type StorageConfig struct {
	Driver string `json:"driver"`
	Path   string `json:"path"`
}

// MetricsConfig controls the debug HTTP server (daemon mode only).
//
// Prefer binding to localhost; the server has no authentication.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"` // default: "127.0.0.1:9090"
	Pprof   bool   `json:"pprof,omitempty"`

	// Server timeouts (Go duration strings). WriteTimeout defaults to 0 (disabled)
	// so /debug/pprof/profile works.
	ReadTimeout  string `json:"read_timeout,omitempty"`
	WriteTimeout string `json:"write_timeout,omitempty"`
	IdleTimeout  string `json:"idle_timeout,omitempty"`
}

// Default returns the configuration used when no file is given.
// Parse decodes on top of it, so omitted keys keep these values.
func Default() *Config {
	return &Config{
		FeedsFile:    DefaultFeedsFile,
		KeywordsFile: DefaultKeywordsFile,
		Window:       "12h",
		Fetch:        FetchConfig{Timeout: "20s", UserAgent: "feedwatch/1.0 (+rss)"},
		Telegram:     TelegramConfig{Timeout: "15s"},
		Logging: LoggingConfig{
			Level:    "info",
			Console:  true,
			File:     LoggingFile{Path: "./feedwatch.log"},
			Telegram: LoggingTelegram{MinLevel: "error", RatePerSec: 1},
		},
		Storage: StorageConfig{Driver: "file", Path: "./seen.txt"},
		Metrics: MetricsConfig{Addr: "127.0.0.1:9090", ReadTimeout: "5s", IdleTimeout: "60s"},
	}
}

// Durations holds the parsed duration fields of a Config.
type Durations struct {
	Window       time.Duration
	FetchTimeout time.Duration
	SendTimeout  time.Duration

	MetricsRead  time.Duration
	MetricsWrite time.Duration
	MetricsIdle  time.Duration
}
