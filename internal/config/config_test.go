package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hirepulse/tadash/internal/tracker"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Data.SkipRows != 1 {
		t.Errorf("expected default skip_rows 1, got %d", cfg.Data.SkipRows)
	}
	if cfg.Data.Columns.Status != "Status" {
		t.Errorf("expected default status column %q, got %q", "Status", cfg.Data.Columns.Status)
	}
	if cfg.CacheTTL() != 60*time.Second {
		t.Errorf("expected default ttl 60s, got %v", cfg.CacheTTL())
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.History.Enabled {
		t.Error("history should be disabled by default")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.tadash.yml")

	original := DefaultConfig()
	original.Data.Sources = []string{"exports/**/*.csv", "s3://ta/tracker.xlsx"}
	original.Data.SkipRows = 2
	original.Data.Columns.Recruiter = "Owner"
	original.Classifier.Joined = append(original.Classifier.Joined, "onboarded")
	original.Cache.TTLSeconds = 300
	original.S3.Region = "ap-south-1"
	original.Server.ReloadPerMinute = 1.5

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded.Data.Sources) != 2 || loaded.Data.Sources[1] != "s3://ta/tracker.xlsx" {
		t.Errorf("sources: got %v", loaded.Data.Sources)
	}
	if loaded.Data.SkipRows != 2 {
		t.Errorf("skip_rows: got %d, want 2", loaded.Data.SkipRows)
	}
	if loaded.Data.Columns.Recruiter != "Owner" {
		t.Errorf("columns.recruiter: got %q", loaded.Data.Columns.Recruiter)
	}
	if loaded.Data.Columns.Status != "Status" {
		t.Errorf("columns.status: got %q", loaded.Data.Columns.Status)
	}
	if n := len(loaded.Classifier.Joined); n != 3 {
		t.Errorf("classifier.joined: got %d entries, want 3", n)
	}
	if loaded.CacheTTL() != 5*time.Minute {
		t.Errorf("ttl: got %v", loaded.CacheTTL())
	}
	if loaded.S3.Region != "ap-south-1" {
		t.Errorf("s3.region: got %q", loaded.S3.Region)
	}
	if loaded.Server.ReloadPerMinute != 1.5 {
		t.Errorf("reload_per_minute: got %v", loaded.Server.ReloadPerMinute)
	}
	if !loaded.NeedsS3() {
		t.Error("expected NeedsS3")
	}
}

func TestLoadKeepsDefaultsIntact(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "custom.yml")
	yml := "data:\n  sources: [mine.csv]\n  date_layouts: [\"02/01/2006\"]\n"
	if err := os.WriteFile(custom, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	first, err := Load(custom)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(first.Data.Sources) != 1 || first.Data.Sources[0] != "mine.csv" {
		t.Fatalf("sources: got %v", first.Data.Sources)
	}
	if first.Data.DateLayouts[0] != "02/01/2006" {
		t.Fatalf("date_layouts: got %v", first.Data.DateLayouts)
	}

	second, err := Load(filepath.Join(dir, "missing.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if second.Data.Sources[0] != DefaultSources[0] || DefaultSources[0] != "TA Tracker - HM Sheet.csv" {
		t.Errorf("default sources changed: got %v, package default %v", second.Data.Sources, DefaultSources)
	}
	if tracker.DefaultDateLayouts[0] != "2006-01-02" || second.Data.DateLayouts[0] != "2006-01-02" {
		t.Errorf("default date layouts changed: %v", tracker.DefaultDateLayouts[:2])
	}
	if got := tracker.DefaultOptions().DateLayouts[0]; got != "2006-01-02" {
		t.Errorf("tracker default options: got %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port: got %d", cfg.Server.Port)
	}
	if cfg.Data.SkipRows != 1 || cfg.Data.Columns.Name != "Candidate Name" {
		t.Errorf("unset keys should keep defaults: %+v", cfg.Data)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("TADASH_SERVER__PORT", "9191")
	t.Setenv("TADASH_DATA__SOURCES", "a.csv,b.csv")
	t.Setenv("TADASH_HISTORY__ENABLED", "true")
	t.Setenv("TADASH_CLASSIFIER__EXACT_ROUNDS", "true")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server.Port != 9191 {
		t.Errorf("env override failed: got %d, want 9191", loaded.Server.Port)
	}
	if len(loaded.Data.Sources) != 2 || loaded.Data.Sources[0] != "a.csv" {
		t.Errorf("sources override: got %v", loaded.Data.Sources)
	}
	if !loaded.History.Enabled {
		t.Error("history override failed")
	}
	if !loaded.Classifier.ExactRounds {
		t.Error("classifier.exact_rounds override failed")
	}
}

func TestEnvKey(t *testing.T) {
	if got := envKey("TADASH_DATA__SKIP_ROWS"); got != "data.skip_rows" {
		t.Errorf("envKey = %q", got)
	}
}

func TestTrackerOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Classifier.Selected = []string{"offer made"}
	opts := cfg.TrackerOptions()
	if opts.SkipRows != 1 || opts.Classifier == nil {
		t.Fatalf("options = %+v", opts)
	}
	if got, _ := opts.Classifier.Classify("Offer Made", "", "", ""); got != "Selected" {
		t.Errorf("configured rules not applied, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"no sources", func(c *Config) { c.Data.Sources = nil }, true},
		{"blank source", func(c *Config) { c.Data.Sources = []string{" "} }, true},
		{"negative skip", func(c *Config) { c.Data.SkipRows = -1 }, true},
		{"no status column", func(c *Config) { c.Data.Columns.Status = "" }, true},
		{"negative ttl", func(c *Config) { c.Cache.TTLSeconds = -5 }, true},
		{"zero ttl ok", func(c *Config) { c.Cache.TTLSeconds = 0 }, false},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"negative reload rate", func(c *Config) { c.Server.ReloadPerMinute = -1 }, true},
		{"history without path", func(c *Config) { c.History.Enabled = true; c.History.Path = "" }, true},
		{"bad severity", func(c *Config) { c.Notify.MinSeverity = "loud" }, true},
		{"webhook", func(c *Config) { c.Notify.Webhooks = []string{"https://hooks.example.com/ta"} }, false},
		{"bad webhook", func(c *Config) { c.Notify.Webhooks = []string{"hooks.example.com"} }, true},
		{"s3 with region", func(c *Config) { c.Data.Sources = []string{"s3://b/k.csv"}; c.S3.Region = "eu-west-1" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" a.csv , ,b/*.xlsx,")
	if len(got) != 2 || got[0] != "a.csv" || got[1] != "b/*.xlsx" {
		t.Errorf("splitAndTrim = %v", got)
	}
	if err := validPort("0"); err == nil {
		t.Error("port 0 should be invalid")
	}
	if err := nonNegativeInt("3"); err != nil {
		t.Errorf("nonNegativeInt(3) = %v", err)
	}
}
