package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nesting levels: TADASH_SERVER__PORT sets server.port.
const EnvPrefix = "TADASH_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (TADASH_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps TADASH_DATA__SKIP_ROWS to data.skip_rows.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if len(c.Data.Sources) == 0 {
		return fmt.Errorf("data.sources must name at least one tracker export")
	}
	for _, s := range c.Data.Sources {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("data.sources contains an empty entry")
		}
	}
	if c.Data.SkipRows < 0 {
		return fmt.Errorf("data.skip_rows must be non-negative")
	}
	if strings.TrimSpace(c.Data.Columns.Status) == "" {
		return fmt.Errorf("data.columns.status is required")
	}
	if c.Data.MaxConcurrency < 0 {
		return fmt.Errorf("data.max_concurrency must be non-negative")
	}

	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must be non-negative")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}
	if c.Server.ReloadPerMinute < 0 {
		return fmt.Errorf("server.reload_per_minute must be non-negative")
	}
	if c.Server.ReloadBurst < 0 {
		return fmt.Errorf("server.reload_burst must be non-negative")
	}

	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}

	if c.Report.TopN < 0 {
		return fmt.Errorf("report.top_n must be non-negative")
	}

	switch c.Notify.MinSeverity {
	case "", "info", "warning", "critical":
	default:
		return fmt.Errorf("invalid notify.min_severity %q: must be info, warning or critical", c.Notify.MinSeverity)
	}
	for _, hook := range c.Notify.Webhooks {
		if u, err := url.Parse(hook); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid notify webhook %q: must be an http(s) URL", hook)
		}
	}

	if c.NeedsS3() && c.S3.Region == "" && c.S3.Endpoint == "" && os.Getenv("AWS_REGION") == "" {
		return fmt.Errorf("s3 sources need s3.region, s3.endpoint or AWS_REGION")
	}

	return nil
}
