package analytics

import "github.com/hirepulse/tadash/internal/candidate"

// MetricsRow is one line of the hiring metrics table.
type MetricsRow struct {
	Candidate     string   `json:"candidate"`
	HiringManager string   `json:"hiring_manager"`
	Skill         string   `json:"skill"`
	TTF           *float64 `json:"ttf"`
	TTH           *float64 `json:"tth"`
	QualityOfHire string   `json:"quality_of_hire"`
}

// MetricsTable lists time-to-fill, time-to-hire and quality of hire.
func MetricsTable(records []candidate.Record) []MetricsRow {
	out := make([]MetricsRow, 0, len(records))
	for _, r := range records {
		out = append(out, MetricsRow{
			Candidate:     r.Name,
			HiringManager: r.HiringManager,
			Skill:         r.Skill,
			TTF:           r.TTF,
			TTH:           r.TTH,
			QualityOfHire: candidate.QualityOfHire(r.Category),
		})
	}
	return out
}

// RecordRow is one line of the raw candidate table.
type RecordRow struct {
	Candidate     string             `json:"candidate"`
	HiringManager string             `json:"hiring_manager"`
	Skill         string             `json:"skill"`
	Status        string             `json:"status"`
	Category      candidate.Category `json:"category"`
	RejectRound   candidate.Round    `json:"reject_round,omitempty"`
	Recruiter     string             `json:"recruiter"`
}

// RecordsTable lists candidates with their raw status and derived category.
func RecordsTable(records []candidate.Record) []RecordRow {
	out := make([]RecordRow, 0, len(records))
	for _, r := range records {
		out = append(out, RecordRow{
			Candidate:     r.Name,
			HiringManager: r.HiringManager,
			Skill:         r.Skill,
			Status:        r.Status,
			Category:      r.Category,
			RejectRound:   r.RejectRound,
			Recruiter:     r.Recruiter,
		})
	}
	return out
}

// Averages reports the mean TTF and TTH over records that have them.
// A mean is nil when no record carries the value.
func Averages(records []candidate.Record) (ttf, tth *float64) {
	return mean(records, func(r candidate.Record) *float64 { return r.TTF }),
		mean(records, func(r candidate.Record) *float64 { return r.TTH })
}

func mean(records []candidate.Record, get func(candidate.Record) *float64) *float64 {
	var sum float64
	var n int
	for _, r := range records {
		if v := get(r); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	m := round1(sum / float64(n))
	return &m
}
