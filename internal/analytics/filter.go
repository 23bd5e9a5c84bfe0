// Package analytics derives KPI, funnel, breakdown and table data from
// classified tracker records.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/hirepulse/tadash/internal/candidate"
)

// Filter narrows records the way the dashboard sidebar does. Zero values
// disable the corresponding criterion, except that an unset date range
// stands for the dataset's own sourcing date bounds: records without a
// sourcing date are left out unless IncludeUndated is set or no record in
// the dataset is dated.
type Filter struct {
	From           *time.Time `json:"from,omitempty"`
	To             *time.Time `json:"to,omitempty"`
	HiringManagers []string   `json:"hiring_managers,omitempty"`
	Skills         []string   `json:"skills,omitempty"`
	Locations      []string   `json:"locations,omitempty"`
	Recruiters     []string   `json:"recruiters,omitempty"`
	NameQuery      string     `json:"name_query,omitempty"`
	IncludeUndated bool       `json:"include_undated,omitempty"`
}

// IsZero reports whether no criterion is set.
func (f Filter) IsZero() bool {
	return f.From == nil && f.To == nil &&
		len(f.HiringManagers) == 0 && len(f.Skills) == 0 &&
		len(f.Locations) == 0 && len(f.Recruiters) == 0 &&
		strings.TrimSpace(f.NameQuery) == ""
}

// Apply returns the records matching every active criterion, in input order.
// records must be the whole dataset, since it also supplies the default date
// bounds. The date range is inclusive and compares calendar dates only;
// records without a sourcing date are always excluded while a range is set.
func (f Filter) Apply(records []candidate.Record) []candidate.Record {
	ranged := f.From != nil || f.To != nil
	dropUndated := ranged || (!f.IncludeUndated && anyDated(records))
	if f.IsZero() && !dropUndated {
		return records
	}
	hms := toSet(f.HiringManagers)
	skills := toSet(f.Skills)
	locs := toSet(f.Locations)
	recs := toSet(f.Recruiters)
	q := strings.ToLower(strings.TrimSpace(f.NameQuery))

	var from, to string
	if f.From != nil {
		from = dateKey(*f.From)
	}
	if f.To != nil {
		to = dateKey(*f.To)
	}

	out := make([]candidate.Record, 0, len(records))
	for _, r := range records {
		if r.SourcingDate == nil {
			if dropUndated {
				continue
			}
		} else if ranged {
			d := dateKey(*r.SourcingDate)
			if from != "" && d < from {
				continue
			}
			if to != "" && d > to {
				continue
			}
		}
		if hms != nil && !hms[r.HiringManager] {
			continue
		}
		if skills != nil && !skills[r.Skill] {
			continue
		}
		if locs != nil && !locs[r.Location] {
			continue
		}
		if recs != nil && !recs[r.Recruiter] {
			continue
		}
		if q != "" && (r.Name == "" || !strings.Contains(strings.ToLower(r.Name), q)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func anyDated(records []candidate.Record) bool {
	for _, r := range records {
		if r.SourcingDate != nil {
			return true
		}
	}
	return false
}

// dateKey formats the calendar date so keys sort chronologically.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

// FilterOptions lists the values each sidebar control can offer.
type FilterOptions struct {
	HiringManagers []string   `json:"hiring_managers"`
	Skills         []string   `json:"skills"`
	Locations      []string   `json:"locations"`
	Recruiters     []string   `json:"recruiters"`
	MinDate        *time.Time `json:"min_date,omitempty"`
	MaxDate        *time.Time `json:"max_date,omitempty"`
}

// Options collects sorted unique non-missing values per dimension and the
// sourcing date bounds.
func Options(records []candidate.Record) FilterOptions {
	hms := map[string]bool{}
	skills := map[string]bool{}
	locs := map[string]bool{}
	recs := map[string]bool{}
	var opts FilterOptions

	for _, r := range records {
		addNonEmpty(hms, r.HiringManager)
		addNonEmpty(skills, r.Skill)
		addNonEmpty(locs, r.Location)
		addNonEmpty(recs, r.Recruiter)
		if d := r.SourcingDate; d != nil {
			if opts.MinDate == nil || d.Before(*opts.MinDate) {
				opts.MinDate = d
			}
			if opts.MaxDate == nil || d.After(*opts.MaxDate) {
				opts.MaxDate = d
			}
		}
	}
	opts.HiringManagers = sortedKeys(hms)
	opts.Skills = sortedKeys(skills)
	opts.Locations = sortedKeys(locs)
	opts.Recruiters = sortedKeys(recs)
	return opts
}

func addNonEmpty(m map[string]bool, v string) {
	if v != "" {
		m[v] = true
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
