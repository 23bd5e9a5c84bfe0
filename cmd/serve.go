package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hirepulse/tadash/internal/candidate"
	"github.com/hirepulse/tadash/internal/dashboard"
	"github.com/hirepulse/tadash/internal/history"
	"github.com/hirepulse/tadash/internal/server"
)

var (
	servePort  int
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	Long: `Starts the tadash HTTP server with the dashboard JSON API, exports,
reports, a websocket that pushes fresh summaries after every reload and,
when history is enabled, the load log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		if serveWatch {
			cfg.Cache.Watch = true
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := openPipeline(ctx, cfg)
		if err != nil {
			return err
		}
		defer p.Close()

		p.notify()

		srv := server.New(server.Config{
			Port:     cfg.Server.Port,
			AllowAll: cfg.Server.AllowAll,
		}, p.cache, p.db)

		dash := dashboard.New(
			p.cache,
			candidate.NewClassifier(cfg.Classifier),
			dashboard.NewReloadLimiter(cfg.Server.ReloadPerMinute, cfg.Server.ReloadBurst),
			reportOptions(cfg),
		)
		dash.RegisterRoutes(srv.Router())
		if p.history != nil {
			history.RegisterRoutes(srv.Router(), p.history)
		}

		if cfg.Cache.Watch {
			if err := p.cache.Watch(ctx, cfg.Data.Sources); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: file watching disabled: %v\n", err)
			}
		}

		// Warm the cache so the first request is fast; failures are retried
		// on demand.
		if _, err := p.cache.Get(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: initial load failed: %v\n", err)
		}

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "tadash server %s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Sources: %s\n", strings.Join(cfg.Data.Sources, ", "))
		fmt.Fprintf(os.Stderr, "  Cache TTL: %s (watch=%t)\n", p.cache.TTL(), cfg.Cache.Watch)
		if p.db != nil {
			fmt.Fprintf(os.Stderr, "  Load history: %s\n", p.db.Path())
		}

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload when local tracker files change")
	rootCmd.AddCommand(serveCmd)
}
