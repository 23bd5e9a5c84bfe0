package tracker

import (
	"errors"
	"slices"
	"time"

	"github.com/hirepulse/tadash/internal/candidate"
)

var (
	// ErrNoSources is returned when no source pattern resolves to a readable export.
	ErrNoSources = errors.New("no tracker sources found")
	// ErrMissingStatusColumn is returned when a sheet has no status column.
	ErrMissingStatusColumn = errors.New("status column not found")
)

// Columns maps record fields onto sheet header names. Matching is
// case-insensitive and ignores surrounding whitespace.
type Columns struct {
	Name          string `yaml:"name" koanf:"name"`
	Status        string `yaml:"status" koanf:"status"`
	R1            string `yaml:"r1" koanf:"r1"`
	R2            string `yaml:"r2" koanf:"r2"`
	R3            string `yaml:"r3" koanf:"r3"`
	HiringManager string `yaml:"hiring_manager" koanf:"hiring_manager"`
	Skill         string `yaml:"skill" koanf:"skill"`
	Location      string `yaml:"location" koanf:"location"`
	Recruiter     string `yaml:"recruiter" koanf:"recruiter"`
	SourcingDate  string `yaml:"sourcing_date" koanf:"sourcing_date"`
	TTF           string `yaml:"ttf" koanf:"ttf"`
	TTH           string `yaml:"tth" koanf:"tth"`
}

// DefaultColumns returns the header names used by the TA tracker HM sheet.
func DefaultColumns() Columns {
	return Columns{
		Name:          "Candidate Name",
		Status:        "Status",
		R1:            "Status of R1",
		R2:            "Status of R2",
		R3:            "Status of R3",
		HiringManager: "HM Details",
		Skill:         "Skill",
		Location:      "Location of posting",
		Recruiter:     "Recruiter Name",
		SourcingDate:  "Sourcing Date",
		TTF:           "TTF (60 days)",
		TTH:           "TTH (30 days)",
	}
}

// DefaultDateLayouts are tried in order when parsing the sourcing date.
// Slash dates are month-first.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/06",
	"2-Jan-2006",
	"2-Jan-06",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02.01.2006",
}

// Options controls how tracker exports are read.
type Options struct {
	// SkipRows is the number of metadata rows above the header row.
	SkipRows int
	// Sheet selects the worksheet of an .xlsx export; empty means the first sheet.
	Sheet       string
	Columns     Columns
	DateLayouts []string
	Classifier  *candidate.Classifier
	// MaxConcurrency bounds parallel source reads; 0 means unlimited.
	MaxConcurrency int
}

// DefaultOptions returns options matching the HM sheet export.
func DefaultOptions() Options {
	return Options{
		SkipRows:       1,
		Columns:        DefaultColumns(),
		DateLayouts:    slices.Clone(DefaultDateLayouts),
		Classifier:     candidate.Default,
		MaxConcurrency: 4,
	}
}

// Dataset is a classified snapshot of one or more tracker exports.
type Dataset struct {
	Records  []candidate.Record `json:"records"`
	Sources  []string           `json:"sources"`
	LoadedAt time.Time          `json:"loaded_at"`
	Checksum string             `json:"checksum"`
}

// Counts returns the number of records per category.
func (d *Dataset) Counts() map[candidate.Category]int {
	out := make(map[candidate.Category]int, len(candidate.Categories))
	for _, r := range d.Records {
		out[r.Category]++
	}
	return out
}
