// Package export writes filtered pipeline data as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/hirepulse/tadash/internal/analytics"
	"github.com/hirepulse/tadash/internal/candidate"
	"github.com/hirepulse/tadash/internal/progress"
)

// Sheet names of the exported workbook.
const (
	SheetSummary = "Summary"
	SheetMetrics = "Metrics"
	SheetRecords = "Records"
)

// XLSXContentType is the MIME type of the exported workbook.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX writes a workbook with Summary, Metrics and Records sheets.
// records should already be filtered; s is their summary. rep may be nil.
func WriteXLSX(w io.Writer, s analytics.Summary, records []candidate.Record, rep progress.Reporter) error {
	if rep == nil {
		rep = progress.Nop{}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	for _, name := range []string{SheetMetrics, SheetRecords} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := writeSummarySheet(f, s, header); err != nil {
		return err
	}

	rep.Start(2 * len(records))
	if err := writeMetricsSheet(f, records, header, rep); err != nil {
		return err
	}
	if err := writeRecordsSheet(f, records, header, rep); err != nil {
		return err
	}
	rep.Finish()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, s analytics.Summary, header int) error {
	rows := [][]any{
		{"KPI", "Value"},
		{"Total Candidates", s.KPIs.Total},
		{"Rejections", s.KPIs.Rejected},
		{"Selected", s.KPIs.Selected},
		{"Joined", s.KPIs.Joined},
		{"Pending/Active", s.KPIs.Pending},
		{"Conversion Rate (%)", s.QuickStats.ConversionRate},
		{"Shortlist Rate (%)", s.QuickStats.ShortlistRate},
		{},
		{"Funnel Stage", "Count"},
	}
	for _, st := range s.Funnel {
		rows = append(rows, []any{st.Name, st.Count})
	}
	rows = append(rows, []any{}, []any{"Category", "Count"})
	for _, sl := range s.Distribution {
		rows = append(rows, []any{sl.Label, sl.Count})
	}

	for i, row := range rows {
		if err := setRow(f, SheetSummary, i+1, row); err != nil {
			return err
		}
		if len(row) == 2 && (row[1] == "Value" || row[1] == "Count") {
			if err := styleRow(f, SheetSummary, i+1, 2, header); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(SheetSummary, "A", "A", 24)
}

var metricsHeader = []any{"Candidate", "HM", "Skill", "TTF", "TTH", "Quality of Hire"}

func writeMetricsSheet(f *excelize.File, records []candidate.Record, header int, rep progress.Reporter) error {
	if err := setRow(f, SheetMetrics, 1, metricsHeader); err != nil {
		return err
	}
	if err := styleRow(f, SheetMetrics, 1, len(metricsHeader), header); err != nil {
		return err
	}
	for i, m := range analytics.MetricsTable(records) {
		row := []any{m.Candidate, m.HiringManager, m.Skill, numOrBlank(m.TTF), numOrBlank(m.TTH), m.QualityOfHire}
		if err := setRow(f, SheetMetrics, i+2, row); err != nil {
			return err
		}
		rep.Update(i+1, "Metrics")
	}
	return f.SetColWidth(SheetMetrics, "A", "C", 22)
}

var recordsHeader = []any{
	"Candidate Name", "HM Details", "Skill", "Location of posting", "Recruiter Name",
	"Sourcing Date", "Status", "Status of R1", "Status of R2", "Status of R3",
	"Dashboard_Category", "Reject Round",
}

func writeRecordsSheet(f *excelize.File, records []candidate.Record, header int, rep progress.Reporter) error {
	if err := setRow(f, SheetRecords, 1, recordsHeader); err != nil {
		return err
	}
	if err := styleRow(f, SheetRecords, 1, len(recordsHeader), header); err != nil {
		return err
	}
	for i, r := range records {
		date := ""
		if r.SourcingDate != nil {
			date = r.SourcingDate.Format("2006-01-02")
		}
		row := []any{
			r.Name, r.HiringManager, r.Skill, r.Location, r.Recruiter,
			date, r.Status, r.R1, r.R2, r.R3,
			string(r.Category), string(r.RejectRound),
		}
		if err := setRow(f, SheetRecords, i+2, row); err != nil {
			return err
		}
		rep.Update(len(records)+i+1, "Records")
	}
	if err := f.SetPanes(SheetRecords, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}
	return f.SetColWidth(SheetRecords, "A", "L", 18)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

func numOrBlank(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
