package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hirepulse/tadash/internal/analytics"
	"github.com/hirepulse/tadash/internal/export"
	"github.com/hirepulse/tadash/internal/progress"
)

var (
	exportFilters filterFlags
	exportFormat  string
	exportOut     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered pipeline to Excel or CSV",
	Long: `Writes the filtered records with their dashboard category. The xlsx
format adds Summary and Metrics sheets next to the records.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := exportFormatFor(exportFormat, exportOut)
		if err != nil {
			return err
		}
		f, err := exportFilters.filter()
		if err != nil {
			return err
		}
		ds, _, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = fmt.Sprintf("ta-pipeline-%s.%s", time.Now().Format("20060102-1504"), format)
		}
		file, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer file.Close()

		filtered := f.Apply(ds.Records)
		switch format {
		case "xlsx":
			s := analytics.Summarize(ds.Records, f, exportFilters.splitRounds)
			err = export.WriteXLSX(file, s, filtered, progress.NewReporter("Writing workbook"))
		case "csv":
			err = export.WriteCSV(file, filtered)
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", out, err)
		}

		fmt.Fprintf(os.Stderr, "Exported %d record(s) to %s\n", len(filtered), out)
		return nil
	},
}

// exportFormatFor picks the format from the flag, falling back to the
// output file extension and then xlsx.
func exportFormatFor(flag, out string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(flag))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
	}
	switch format {
	case "":
		return "xlsx", nil
	case "xlsx", "csv":
		return format, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want xlsx or csv)", format)
}

func init() {
	exportFilters.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "xlsx or csv (default from --out, else xlsx)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default ta-pipeline-<timestamp>.<format>)")
	rootCmd.AddCommand(exportCmd)
}
