package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hirepulse/tadash/internal/analytics"
	"github.com/hirepulse/tadash/internal/report"
)

var (
	reportFilters filterFlags
	reportFormat  string
	reportOut     string
	reportTitle   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a markdown or HTML pipeline report",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(reportFormat)
		if format != "md" && format != "markdown" && format != "html" {
			return fmt.Errorf("unsupported report format %q (want md or html)", reportFormat)
		}
		f, err := reportFilters.filter()
		if err != nil {
			return err
		}
		ds, cfg, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}

		opts := reportOptions(cfg)
		if reportTitle != "" {
			opts.Title = reportTitle
		}
		s := analytics.Summarize(ds.Records, f, reportFilters.splitRounds)

		var w io.Writer = os.Stdout
		if reportOut != "" {
			file, err := os.Create(reportOut)
			if err != nil {
				return fmt.Errorf("creating %s: %w", reportOut, err)
			}
			defer file.Close()
			w = file
		}

		if format == "html" {
			err = report.WriteHTML(w, s, opts)
		} else {
			_, err = io.WriteString(w, report.Markdown(s, opts))
		}
		if err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		if reportOut != "" {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", reportOut)
		}
		return nil
	},
}

func init() {
	reportFilters.register(reportCmd)
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "md or html")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output file (default stdout)")
	reportCmd.Flags().StringVar(&reportTitle, "title", "", "report title (overrides report.title)")
	rootCmd.AddCommand(reportCmd)
}
