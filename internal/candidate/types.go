package candidate

import (
	"strings"
	"time"
)

// Category is the derived pipeline stage of a candidate row.
type Category string

const (
	CategoryJoined          Category = "Joined"
	CategorySelected        Category = "Selected"
	CategoryRejected        Category = "Rejected"
	CategoryScreeningReject Category = "Screening Reject"
	CategoryPending         Category = "Pending/Active"
	CategoryOther           Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryJoined,
	CategorySelected,
	CategoryRejected,
	CategoryScreeningReject,
	CategoryPending,
	CategoryOther,
}

// Round identifies the interview round a rejection happened in.
type Round string

const (
	RoundNone Round = ""
	RoundR1   Round = "R1"
	RoundR2   Round = "R2"
	RoundR3   Round = "R3"
)

// Rounds lists the interview rounds in order.
var Rounds = []Round{RoundR1, RoundR2, RoundR3}

// Quality of hire labels.
const (
	QualityHigh        = "High"
	QualityInProgress  = "In Progress"
	QualityNotSelected = "Not Selected"
)

// Record is one row of the tracker sheet. Missing optional values are nil.
type Record struct {
	Row           int        `json:"row"`
	Name          string     `json:"candidate_name"`
	Status        string     `json:"status"`
	R1            string     `json:"status_r1,omitempty"`
	R2            string     `json:"status_r2,omitempty"`
	R3            string     `json:"status_r3,omitempty"`
	HiringManager string     `json:"hiring_manager"`
	Skill         string     `json:"skill"`
	Location      string     `json:"location"`
	Recruiter     string     `json:"recruiter"`
	SourcingDate  *time.Time `json:"sourcing_date,omitempty"`
	TTF           *float64   `json:"ttf,omitempty"`
	TTH           *float64   `json:"tth,omitempty"`
	Category      Category   `json:"category"`
	RejectRound   Round      `json:"reject_round,omitempty"`
	Source        string     `json:"source,omitempty"`
}

// Label renders the category for charts. Rejections are consolidated unless
// split is set, in which case the round is appended when known.
func (c Category) Label(round Round, split bool) string {
	if c == CategoryRejected && split && round != RoundNone {
		return string(c) + " (" + string(round) + ")"
	}
	return string(c)
}

// QualityOfHire maps a category onto the quality-of-hire column.
func QualityOfHire(c Category) string {
	switch c {
	case CategorySelected:
		return QualityHigh
	case CategoryPending:
		return QualityInProgress
	default:
		return QualityNotSelected
	}
}

// ParseCategory returns the category for a label, accepting any letter case.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}
