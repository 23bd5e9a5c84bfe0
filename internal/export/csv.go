package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/hirepulse/tadash/internal/candidate"
)

// CSVContentType is the MIME type of the CSV export.
const CSVContentType = "text/csv; charset=utf-8"

var csvHeader = []string{
	"Candidate Name", "Status", "Status of R1", "Status of R2", "Status of R3",
	"HM Details", "Skill", "Location of posting", "Recruiter Name", "Sourcing Date",
	"TTF (60 days)", "TTH (30 days)", "Dashboard_Category", "Reject Round", "Quality of Hire",
}

// WriteCSV writes records with their derived category, one row each.
func WriteCSV(w io.Writer, records []candidate.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range records {
		date := ""
		if r.SourcingDate != nil {
			date = r.SourcingDate.Format("2006-01-02")
		}
		if err := cw.Write([]string{
			r.Name, r.Status, r.R1, r.R2, r.R3,
			r.HiringManager, r.Skill, r.Location, r.Recruiter, date,
			formatNum(r.TTF), formatNum(r.TTH),
			string(r.Category), string(r.RejectRound), candidate.QualityOfHire(r.Category),
		}); err != nil {
			return fmt.Errorf("writing csv row %d: %w", r.Row, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatNum(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
