package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hirepulse/tadash/internal/candidate"
	"github.com/hirepulse/tadash/internal/config"
	"github.com/hirepulse/tadash/internal/db"
	"github.com/hirepulse/tadash/internal/history"
)

var (
	loadsLimit     int
	loadsFailed    bool
	loadsJSON      bool
	loadsOlderThan time.Duration
)

var loadsCmd = &cobra.Command{
	Use:   "loads",
	Short: "Show the tracker load history",
	Long:  `Lists recorded tracker loads, newest first. Requires history.enabled in the config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, database, err := openHistory()
		if err != nil {
			return err
		}
		defer database.Close()

		runs, err := store.List(cmd.Context(), history.ListFilter{FailedOnly: loadsFailed, Limit: loadsLimit})
		if err != nil {
			return err
		}
		if loadsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}
		if len(runs) == 0 {
			fmt.Println("No loads recorded yet.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tDURATION\tROWS\tJOINED\tSELECTED\tRESULT")
		for _, r := range runs {
			result := colorGreen.Sprint("ok")
			if !r.OK() {
				result = colorRed.Sprint(r.Error)
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Duration.Round(time.Millisecond),
				r.Rows,
				r.Counts[candidate.CategoryJoined],
				r.Counts[candidate.CategorySelected],
				result,
			)
		}
		return tw.Flush()
	},
}

var loadsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old entries from the load history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if loadsOlderThan <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}
		store, database, err := openHistory()
		if err != nil {
			return err
		}
		defer database.Close()

		n, err := store.DeleteBefore(cmd.Context(), time.Now().Add(-loadsOlderThan))
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Deleted %d load(s) older than %s\n", n, loadsOlderThan)
		return nil
	},
}

// openHistory opens the configured load history database.
func openHistory() (*history.Store, *db.DB, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if !cfg.History.Enabled {
		if _, err := os.Stat(cfg.History.Path); errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("load history is disabled; set history.enabled in %s", cfgFile)
		}
	}
	database, err := db.Open(cfg.History.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening load history: %w", err)
	}
	return history.NewStore(database), database, nil
}

func init() {
	loadsCmd.Flags().IntVarP(&loadsLimit, "limit", "n", 20, "maximum number of loads to show")
	loadsCmd.Flags().BoolVar(&loadsFailed, "failed", false, "only show failed loads")
	loadsCmd.Flags().BoolVar(&loadsJSON, "json", false, "output as JSON")
	loadsPruneCmd.Flags().DurationVar(&loadsOlderThan, "older-than", 30*24*time.Hour, "delete loads started before this long ago")
	loadsCmd.AddCommand(loadsPruneCmd)
	rootCmd.AddCommand(loadsCmd)
}
