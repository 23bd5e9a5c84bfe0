package tracker

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hirepulse/tadash/internal/candidate"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV returns all rows of a CSV export. Rows may have differing lengths.
func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return rows, nil
}

// readXLSX returns the rows of the named sheet, or the first sheet when
// sheet is empty.
func readXLSX(data []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// columnIndex resolves configured header names to column positions.
// Unresolved columns are -1.
type columnIndex struct {
	name, status, r1, r2, r3       int
	hm, skill, location, recruiter int
	date, ttf, tth                 int
}

func resolveColumns(header []string, cols Columns) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := pos[key]; !dup && key != "" {
			pos[key] = i
		}
	}
	find := func(name string) int {
		if i, ok := pos[normalizeHeader(name)]; ok && name != "" {
			return i
		}
		return -1
	}

	idx := columnIndex{
		name:      find(cols.Name),
		status:    find(cols.Status),
		r1:        find(cols.R1),
		r2:        find(cols.R2),
		r3:        find(cols.R3),
		hm:        find(cols.HiringManager),
		skill:     find(cols.Skill),
		location:  find(cols.Location),
		recruiter: find(cols.Recruiter),
		date:      find(cols.SourcingDate),
		ttf:       find(cols.TTF),
		tth:       find(cols.TTH),
	}
	if idx.status < 0 {
		return idx, fmt.Errorf("%w: %q", ErrMissingStatusColumn, cols.Status)
	}
	return idx, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// parseRows turns raw sheet rows into classified records.
func parseRows(rows [][]string, source string, opts Options) ([]candidate.Record, error) {
	if opts.SkipRows > 0 {
		if opts.SkipRows >= len(rows) {
			return nil, nil
		}
		rows = rows[opts.SkipRows:]
	}
	if len(rows) == 0 {
		return nil, nil
	}

	idx, err := resolveColumns(rows[0], opts.Columns)
	if err != nil {
		return nil, err
	}

	classifier := opts.Classifier
	if classifier == nil {
		classifier = candidate.Default
	}
	layouts := opts.DateLayouts
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}

	records := make([]candidate.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec := candidate.Record{
			Row:           i + 1,
			Name:          cell(row, idx.name),
			Status:        cell(row, idx.status),
			R1:            cell(row, idx.r1),
			R2:            cell(row, idx.r2),
			R3:            cell(row, idx.r3),
			HiringManager: cell(row, idx.hm),
			Skill:         cell(row, idx.skill),
			Location:      cell(row, idx.location),
			Recruiter:     cell(row, idx.recruiter),
			SourcingDate:  parseDate(cell(row, idx.date), layouts),
			TTF:           parseNumber(cell(row, idx.ttf)),
			TTH:           parseNumber(cell(row, idx.tth)),
			Source:        source,
		}
		classifier.Apply(&rec)
		records = append(records, rec)
	}
	return records, nil
}

// cell returns the trimmed value at i, or "" when the column is absent.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseDate returns nil when s matches none of the layouts.
func parseDate(s string, layouts []string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseNumber returns nil for blanks and non-numeric text.
func parseNumber(s string) *float64 {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
