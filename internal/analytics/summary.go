package analytics

import (
	"math"

	"github.com/hirepulse/tadash/internal/candidate"
)

// KPIs are the headline tiles.
type KPIs struct {
	Total    int `json:"total"`
	Rejected int `json:"rejected"`
	Selected int `json:"selected"`
	Joined   int `json:"joined"`
	Pending  int `json:"pending"`
}

// ComputeKPIs counts records per headline category. Screening rejects are
// not included in Rejected.
func ComputeKPIs(records []candidate.Record) KPIs {
	k := KPIs{Total: len(records)}
	for _, r := range records {
		switch r.Category {
		case candidate.CategoryRejected:
			k.Rejected++
		case candidate.CategorySelected:
			k.Selected++
		case candidate.CategoryJoined:
			k.Joined++
		case candidate.CategoryPending:
			k.Pending++
		}
	}
	return k
}

// Funnel stage names.
const (
	StageTotal           = "Total Candidates"
	StageAfterScreening  = "After Screening"
	StageAfterInterviews = "After Interviews"
	StageShortlisted     = "Shortlisted"
	StageJoined          = "Joined"
)

// Stage is one bar of the funnel.
type Stage struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Funnel returns the five pipeline stages in order.
func Funnel(records []candidate.Record) []Stage {
	var screening, rejected, selected, joined int
	for _, r := range records {
		switch r.Category {
		case candidate.CategoryScreeningReject:
			screening++
		case candidate.CategoryRejected:
			rejected++
		case candidate.CategorySelected:
			selected++
		case candidate.CategoryJoined:
			joined++
		}
	}
	total := len(records)
	afterScreening := total - screening
	return []Stage{
		{StageTotal, total},
		{StageAfterScreening, afterScreening},
		{StageAfterInterviews, afterScreening - rejected},
		{StageShortlisted, selected},
		{StageJoined, joined},
	}
}

// QuickStats are the secondary tiles. Rates are percentages.
type QuickStats struct {
	Pending        int     `json:"pending"`
	ConversionRate float64 `json:"conversion_rate"`
	ShortlistRate  float64 `json:"shortlist_rate"`
}

// ComputeQuickStats derives rates from the KPIs. Both rates are 0 for an
// empty set.
func ComputeQuickStats(k KPIs) QuickStats {
	qs := QuickStats{Pending: k.Pending}
	if k.Total > 0 {
		qs.ConversionRate = float64(k.Joined) / float64(k.Total) * 100
		qs.ShortlistRate = float64(k.Selected) / float64(k.Total) * 100
	}
	return qs
}

// Rounded returns a copy with rates rounded to one decimal place.
func (q QuickStats) Rounded() QuickStats {
	q.ConversionRate = round1(q.ConversionRate)
	q.ShortlistRate = round1(q.ShortlistRate)
	return q
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Slice is one segment of the category distribution.
type Slice struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Distribution counts records per category in taxonomy order, omitting
// empty categories. With split set, rejections are reported per round.
func Distribution(records []candidate.Record, split bool) []Slice {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Category.Label(r.RejectRound, split)]++
	}

	var out []Slice
	for _, c := range candidate.Categories {
		if c == candidate.CategoryRejected && split {
			for _, rd := range candidate.Rounds {
				label := c.Label(rd, true)
				if n := counts[label]; n > 0 {
					out = append(out, Slice{label, n})
				}
			}
		}
		if n := counts[string(c)]; n > 0 {
			out = append(out, Slice{string(c), n})
		}
	}
	return out
}

// Summary bundles everything the dashboard shows for one filter.
type Summary struct {
	Filter       Filter        `json:"filter"`
	KPIs         KPIs          `json:"kpis"`
	Funnel       []Stage       `json:"funnel"`
	QuickStats   QuickStats    `json:"quick_stats"`
	Distribution []Slice       `json:"distribution"`
	Breakdowns   []Breakdown   `json:"breakdowns"`
	Options      FilterOptions `json:"options"`
}

// Summarize filters records and computes every view. Options are computed
// over the unfiltered records so sidebar choices do not shrink as filters
// are applied.
func Summarize(records []candidate.Record, f Filter, split bool) Summary {
	filtered := f.Apply(records)
	k := ComputeKPIs(filtered)

	breakdowns := make([]Breakdown, 0, len(Dimensions))
	for _, d := range Dimensions {
		breakdowns = append(breakdowns, ComputeBreakdown(filtered, d))
	}
	return Summary{
		Filter:       f,
		KPIs:         k,
		Funnel:       Funnel(filtered),
		QuickStats:   ComputeQuickStats(k).Rounded(),
		Distribution: Distribution(filtered, split),
		Breakdowns:   breakdowns,
		Options:      Options(records),
	}
}
