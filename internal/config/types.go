package config

import (
	"github.com/hirepulse/tadash/internal/candidate"
	"github.com/hirepulse/tadash/internal/tracker"
)

// Config is the top-level tadash configuration, corresponding to .tadash.yml.
type Config struct {
	Data       DataConfig       `yaml:"data" koanf:"data"`
	Classifier candidate.Rules  `yaml:"classifier" koanf:"classifier"`
	Cache      CacheConfig      `yaml:"cache" koanf:"cache"`
	Server     ServerConfig     `yaml:"server" koanf:"server"`
	History    HistoryConfig    `yaml:"history" koanf:"history"`
	S3         tracker.S3Config `yaml:"s3" koanf:"s3"`
	Report     ReportConfig     `yaml:"report" koanf:"report"`
	Notify     NotifyConfig     `yaml:"notify" koanf:"notify"`
}

// DataConfig describes where tracker exports live and how to read them.
type DataConfig struct {
	// Sources are file paths, doublestar globs or s3://bucket/key URIs.
	Sources        []string        `yaml:"sources" koanf:"sources"`
	SkipRows       int             `yaml:"skip_rows" koanf:"skip_rows"`
	Sheet          string          `yaml:"sheet" koanf:"sheet"`
	Columns        tracker.Columns `yaml:"columns" koanf:"columns"`
	DateLayouts    []string        `yaml:"date_layouts" koanf:"date_layouts"`
	MaxConcurrency int             `yaml:"max_concurrency" koanf:"max_concurrency"`
}

// CacheConfig holds memoisation settings.
type CacheConfig struct {
	TTLSeconds int  `yaml:"ttl_seconds" koanf:"ttl_seconds"`
	Watch      bool `yaml:"watch" koanf:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"`
	// ReloadPerMinute caps forced reloads through the API.
	ReloadPerMinute float64 `yaml:"reload_per_minute" koanf:"reload_per_minute"`
	ReloadBurst     int     `yaml:"reload_burst" koanf:"reload_burst"`
}

// HistoryConfig controls the load log.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" koanf:"enabled"`
	Path    string `yaml:"path" koanf:"path"`
}

// ReportConfig controls the generated pipeline report.
type ReportConfig struct {
	Title string `yaml:"title" koanf:"title"`
	TopN  int    `yaml:"top_n" koanf:"top_n"`
}

// NotifyConfig lists webhooks alerted about load failures and data changes.
type NotifyConfig struct {
	Webhooks    []string `yaml:"webhooks" koanf:"webhooks"`
	MinSeverity string   `yaml:"min_severity" koanf:"min_severity"`
}
