package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hirepulse/tadash/internal/analytics"
	"github.com/hirepulse/tadash/internal/candidate"
)

var (
	summaryFilters filterFlags
	summaryJSON    bool
	summaryTop     int
)

var (
	colorBold   = color.New(color.Bold)
	colorGreen  = color.New(color.FgGreen)
	colorYellow = color.New(color.FgYellow)
	colorRed    = color.New(color.FgRed)
	colorFaint  = color.New(color.Faint)
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print pipeline KPIs, funnel and breakdowns",
	Long:  `Loads the tracker, applies the filters and prints the same numbers the dashboard shows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := summaryFilters.filter()
		if err != nil {
			return err
		}
		ds, cfg, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}

		s := analytics.Summarize(ds.Records, f, summaryFilters.splitRounds)
		if summaryJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		}

		top := cfg.Report.TopN
		if cmd.Flags().Changed("top") {
			top = summaryTop
		}
		printSummary(os.Stdout, s, top)
		return nil
	},
}

// printSummary renders s as terminal tables. top limits each breakdown;
// 0 shows every row.
func printSummary(w io.Writer, s analytics.Summary, top int) {
	colorBold.Fprintln(w, "Key metrics")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Total candidates\t%d\n", s.KPIs.Total)
	fmt.Fprintf(tw, "  Rejections\t%s\n", colorRed.Sprint(s.KPIs.Rejected))
	fmt.Fprintf(tw, "  Selections\t%s\n", colorGreen.Sprint(s.KPIs.Selected))
	fmt.Fprintf(tw, "  Joined\t%s\n", colorGreen.Sprint(s.KPIs.Joined))
	fmt.Fprintf(tw, "  Pending\t%s\n", colorYellow.Sprint(s.QuickStats.Pending))
	fmt.Fprintf(tw, "  Conversion rate\t%.1f%%\n", s.QuickStats.ConversionRate)
	fmt.Fprintf(tw, "  Shortlist rate\t%.1f%%\n", s.QuickStats.ShortlistRate)
	tw.Flush()

	if s.KPIs.Total == 0 {
		fmt.Fprintln(w)
		colorFaint.Fprintln(w, "No candidates match the filters.")
		return
	}

	fmt.Fprintln(w)
	colorBold.Fprintln(w, "Funnel")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	total := s.Funnel[0].Count
	for _, st := range s.Funnel {
		fmt.Fprintf(tw, "  %s\t%d\t%s\n", st.Name, st.Count, bar(st.Count, total, 30))
	}
	tw.Flush()

	fmt.Fprintln(w)
	colorBold.Fprintln(w, "Status distribution")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, sl := range s.Distribution {
		fmt.Fprintf(tw, "  %s\t%d\t%.1f%%\n", colorCategory(sl.Label), sl.Count, float64(sl.Count)/float64(s.KPIs.Total)*100)
	}
	tw.Flush()

	for _, b := range s.Breakdowns {
		fmt.Fprintln(w)
		colorBold.Fprintf(w, "By %s\n", b.Dimension.Title())
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "  \tTotal\tJoined\tSelected\tRejected\tPending\n")
		for _, row := range b.Top(top) {
			fmt.Fprintf(tw, "  %s\t%d\t%d\t%d\t%d\t%d\n", row.Value, row.Total,
				row.Counts[candidate.CategoryJoined],
				row.Counts[candidate.CategorySelected],
				row.Counts[candidate.CategoryRejected]+row.Counts[candidate.CategoryScreeningReject],
				row.Counts[candidate.CategoryPending])
		}
		tw.Flush()
		if hidden := len(b.Rows) - len(b.Top(top)); hidden > 0 {
			colorFaint.Fprintf(w, "  ... %d more\n", hidden)
		}
	}
}

// colorCategory colours a distribution label by outcome.
func colorCategory(label string) string {
	switch {
	case label == string(candidate.CategoryJoined), label == string(candidate.CategorySelected):
		return colorGreen.Sprint(label)
	case strings.HasPrefix(label, string(candidate.CategoryRejected)), label == string(candidate.CategoryScreeningReject):
		return colorRed.Sprint(label)
	case label == string(candidate.CategoryPending):
		return colorYellow.Sprint(label)
	default:
		return label
	}
}

func bar(n, total, width int) string {
	if total <= 0 || n <= 0 {
		return ""
	}
	filled := n * width / total
	if filled == 0 {
		filled = 1
	}
	return strings.Repeat("█", filled)
}

func init() {
	summaryFilters.register(summaryCmd)
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "output as JSON")
	summaryCmd.Flags().IntVar(&summaryTop, "top", 5, "rows per breakdown (0 for all; overrides report.top_n)")
	rootCmd.AddCommand(summaryCmd)
}
