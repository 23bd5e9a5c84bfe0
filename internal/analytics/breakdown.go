package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hirepulse/tadash/internal/candidate"
)

// Dimension is a record attribute that breakdowns group by.
type Dimension string

const (
	DimensionHiringManager Dimension = "hm"
	DimensionSkill         Dimension = "skill"
	DimensionLocation      Dimension = "location"
	DimensionRecruiter     Dimension = "recruiter"
)

// Dimensions lists every breakdown dimension.
var Dimensions = []Dimension{
	DimensionHiringManager,
	DimensionSkill,
	DimensionLocation,
	DimensionRecruiter,
}

// NotSet labels records with no value for a dimension.
const NotSet = "(not set)"

// ParseDimension accepts the short names above plus a few aliases.
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hm", "hiring_manager", "hiring-manager", "manager":
		return DimensionHiringManager, nil
	case "skill", "skills":
		return DimensionSkill, nil
	case "location", "locations":
		return DimensionLocation, nil
	case "recruiter", "recruiters":
		return DimensionRecruiter, nil
	}
	return "", fmt.Errorf("unknown dimension %q (want hm, skill, location or recruiter)", s)
}

// Title is the human-readable column heading.
func (d Dimension) Title() string {
	switch d {
	case DimensionHiringManager:
		return "Hiring Manager"
	case DimensionSkill:
		return "Skill"
	case DimensionLocation:
		return "Location"
	case DimensionRecruiter:
		return "Recruiter"
	}
	return string(d)
}

// Value returns the record's value for the dimension.
func (d Dimension) Value(r candidate.Record) string {
	switch d {
	case DimensionHiringManager:
		return r.HiringManager
	case DimensionSkill:
		return r.Skill
	case DimensionLocation:
		return r.Location
	case DimensionRecruiter:
		return r.Recruiter
	}
	return ""
}

// BreakdownRow holds per-category counts for one dimension value.
type BreakdownRow struct {
	Value  string                     `json:"value"`
	Total  int                        `json:"total"`
	Counts map[candidate.Category]int `json:"counts"`
}

// Breakdown groups records by one dimension.
type Breakdown struct {
	Dimension Dimension      `json:"dimension"`
	Rows      []BreakdownRow `json:"rows"`
}

// ComputeBreakdown counts categories per dimension value, ordered by total
// descending then value.
func ComputeBreakdown(records []candidate.Record, d Dimension) Breakdown {
	byValue := make(map[string]*BreakdownRow)
	for _, r := range records {
		v := d.Value(r)
		if v == "" {
			v = NotSet
		}
		row, ok := byValue[v]
		if !ok {
			row = &BreakdownRow{Value: v, Counts: make(map[candidate.Category]int)}
			byValue[v] = row
		}
		row.Total++
		row.Counts[r.Category]++
	}

	rows := make([]BreakdownRow, 0, len(byValue))
	for _, row := range byValue {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Value < rows[j].Value
	})
	return Breakdown{Dimension: d, Rows: rows}
}

// Top returns at most n rows.
func (b Breakdown) Top(n int) []BreakdownRow {
	if n <= 0 || n >= len(b.Rows) {
		return b.Rows
	}
	return b.Rows[:n]
}
