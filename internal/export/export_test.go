package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hirepulse/tadash/internal/analytics"
	"github.com/hirepulse/tadash/internal/candidate"
)

func sampleRecords() []candidate.Record {
	d := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	ttf := 42.0
	records := []candidate.Record{
		{Name: "Asha", Status: "Joined", HiringManager: "Priya", Skill: "Go", SourcingDate: &d, TTF: &ttf},
		{Name: "Ben", Status: "Rejected", R1: "Cleared", R2: "Not Cleared", HiringManager: "Rahul", Skill: "Java"},
		{Name: "Cara", Status: "Selected", HiringManager: "Priya", Skill: "Go"},
	}
	for i := range records {
		candidate.Default.Apply(&records[i])
	}
	return records
}

type countingReporter struct {
	total, last int
	finished    bool
}

func (r *countingReporter) Start(total int)              { r.total = total }
func (r *countingReporter) Update(current int, _ string) { r.last = current }
func (r *countingReporter) Finish()                      { r.finished = true }

func TestWriteXLSX(t *testing.T) {
	records := sampleRecords()
	summary := analytics.Summarize(records, analytics.Filter{IncludeUndated: true}, false)
	rep := &countingReporter{}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, summary, records, rep); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}
	if rep.total != 6 || rep.last != 6 || !rep.finished {
		t.Errorf("reporter = %+v", rep)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != SheetSummary || sheets[1] != SheetMetrics || sheets[2] != SheetRecords {
		t.Fatalf("sheets = %v", sheets)
	}

	if v, _ := f.GetCellValue(SheetSummary, "B2"); v != "3" {
		t.Errorf("total candidates = %q", v)
	}
	if v, _ := f.GetCellValue(SheetMetrics, "D2"); v != "42" {
		t.Errorf("TTF cell = %q", v)
	}
	if v, _ := f.GetCellValue(SheetMetrics, "F4"); v != candidate.QualityHigh {
		t.Errorf("quality cell = %q", v)
	}

	rows, err := f.GetRows(SheetRecords)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("records rows = %d", len(rows))
	}
	if rows[2][10] != "Rejected" || rows[2][11] != "R2" {
		t.Errorf("ben row = %v", rows[2])
	}
	if rows[1][5] != "2024-02-03" {
		t.Errorf("date cell = %q", rows[1][5])
	}
}

func TestWriteXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, analytics.Summarize(nil, analytics.Filter{}, false), nil, nil); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected a workbook")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0][12] != "Dashboard_Category" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][9] != "2024-02-03" || rows[1][10] != "42" || rows[1][12] != "Joined" {
		t.Errorf("asha = %v", rows[1])
	}
	if rows[2][13] != "R2" || rows[2][14] != candidate.QualityNotSelected {
		t.Errorf("ben = %v", rows[2])
	}
}
