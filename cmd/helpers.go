package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hirepulse/tadash/internal/analytics"
	"github.com/hirepulse/tadash/internal/cache"
	"github.com/hirepulse/tadash/internal/config"
	"github.com/hirepulse/tadash/internal/db"
	"github.com/hirepulse/tadash/internal/history"
	"github.com/hirepulse/tadash/internal/notifications"
	"github.com/hirepulse/tadash/internal/report"
	"github.com/hirepulse/tadash/internal/tracker"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `tadash init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// pipeline bundles the dataset cache with the optional load history.
type pipeline struct {
	cfg      *config.Config
	cache    *cache.Cache
	db       *db.DB
	history  *history.Store
	notifier *notifications.Dispatcher
}

// openPipeline builds the tracker loader and cache from cfg. When history is
// enabled every load is recorded. Callers must Close the pipeline.
func openPipeline(ctx context.Context, cfg *config.Config) (*pipeline, error) {
	loader := tracker.NewLoader(cfg.TrackerOptions())
	if cfg.NeedsS3() {
		client, err := tracker.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("creating S3 client: %w", err)
		}
		loader = loader.WithS3(client)
	}

	sources := cfg.Data.Sources
	p := &pipeline{
		cfg: cfg,
		cache: cache.New(func(ctx context.Context) (*tracker.Dataset, error) {
			return loader.Load(ctx, sources)
		}, cfg.CacheTTL()),
	}

	if cfg.History.Enabled {
		database, err := db.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("opening load history: %w", err)
		}
		p.db = database
		p.history = history.NewStore(database)
		p.cache.OnLoad(p.history.Hook())
	}
	return p, nil
}

// notify alerts the configured webhooks about load failures and changes.
// It is only wired for long-running commands.
func (p *pipeline) notify() {
	if len(p.cfg.Notify.Webhooks) == 0 {
		return
	}
	sev, _ := notifications.ParseSeverity(p.cfg.Notify.MinSeverity)
	p.notifier = notifications.NewDispatcher(p.cfg.Notify.Webhooks, sev)
	p.cache.OnLoad(p.notifier.Hook())
}

func (p *pipeline) Close() error {
	if p.notifier != nil {
		p.notifier.Wait()
	}
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func reportOptions(cfg *config.Config) report.Options {
	return report.Options{Title: cfg.Report.Title, TopN: cfg.Report.TopN}
}

// filterFlags are the dashboard sidebar filters as command-line flags.
type filterFlags struct {
	from, to    string
	hm, skill   []string
	location    []string
	recruiter   []string
	query       string
	splitRounds bool
	undated     bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.from, "from", "", "earliest sourcing date (YYYY-MM-DD)")
	fl.StringVar(&f.to, "to", "", "latest sourcing date (YYYY-MM-DD)")
	fl.StringSliceVar(&f.hm, "hm", nil, "hiring managers to include")
	fl.StringSliceVar(&f.skill, "skill", nil, "skills to include")
	fl.StringSliceVar(&f.location, "location", nil, "locations to include")
	fl.StringSliceVar(&f.recruiter, "recruiter", nil, "recruiters to include")
	fl.StringVarP(&f.query, "search", "q", "", "candidate name contains")
	fl.BoolVar(&f.splitRounds, "split-rounds", false, "show rejections per interview round")
	fl.BoolVar(&f.undated, "include-undated", false, "keep candidates whose sourcing date is missing (ignored with --from/--to)")
}

func (f *filterFlags) filter() (analytics.Filter, error) {
	out := analytics.Filter{
		HiringManagers: f.hm,
		Skills:         f.skill,
		Locations:      f.location,
		Recruiters:     f.recruiter,
		NameQuery:      strings.TrimSpace(f.query),
		IncludeUndated: f.undated,
	}
	var err error
	if out.From, err = parseDay("from", f.from); err != nil {
		return out, err
	}
	if out.To, err = parseDay("to", f.to); err != nil {
		return out, err
	}
	if out.From != nil && out.To != nil && out.To.Before(*out.From) {
		return out, fmt.Errorf("--to is before --from")
	}
	return out, nil
}

func parseDay(name, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("--%s must be YYYY-MM-DD", name)
	}
	return &t, nil
}

// loadDataset loads the tracker once for a one-shot command.
func loadDataset(ctx context.Context) (*tracker.Dataset, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	p, err := openPipeline(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	defer p.Close()

	ds, err := p.cache.Get(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading tracker: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d record(s) from %s\n", len(ds.Records), strings.Join(ds.Sources, ", "))
	}
	return ds, cfg, nil
}
