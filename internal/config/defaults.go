package config

import (
	"slices"
	"time"

	"github.com/hirepulse/tadash/internal/candidate"
	"github.com/hirepulse/tadash/internal/tracker"
)

// DefaultPath is the configuration file looked up in the working directory.
const DefaultPath = ".tadash.yml"

// DefaultSources is used when no source is configured.
var DefaultSources = []string{"TA Tracker - HM Sheet.csv"}

// DefaultConfig returns a Config with sensible defaults. Slices are copied
// because Unmarshal writes into the backing arrays it is given.
func DefaultConfig() *Config {
	opts := tracker.DefaultOptions()
	return &Config{
		Data: DataConfig{
			Sources:        slices.Clone(DefaultSources),
			SkipRows:       opts.SkipRows,
			Columns:        opts.Columns,
			DateLayouts:    opts.DateLayouts,
			MaxConcurrency: opts.MaxConcurrency,
		},
		Classifier: candidate.DefaultRules(),
		Cache: CacheConfig{
			TTLSeconds: 60,
		},
		Server: ServerConfig{
			Port:            8080,
			ReloadPerMinute: 6,
			ReloadBurst:     2,
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    ".tadash/history.db",
		},
		Report: ReportConfig{
			Title: "TA Pipeline Report",
			TopN:  5,
		},
		Notify: NotifyConfig{
			MinSeverity: "warning",
		},
	}
}

// TrackerOptions translates the data settings into loader options.
func (c *Config) TrackerOptions() tracker.Options {
	return tracker.Options{
		SkipRows:       c.Data.SkipRows,
		Sheet:          c.Data.Sheet,
		Columns:        c.Data.Columns,
		DateLayouts:    c.Data.DateLayouts,
		Classifier:     candidate.NewClassifier(c.Classifier),
		MaxConcurrency: c.Data.MaxConcurrency,
	}
}

// CacheTTL returns the cache time-to-live.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// NeedsS3 reports whether any source is an S3 object.
func (c *Config) NeedsS3() bool {
	for _, s := range c.Data.Sources {
		if tracker.IsS3(s) {
			return true
		}
	}
	return false
}
