package candidate

import "strings"

// NotCleared is the per-round outcome that marks the round a candidate was rejected in.
const NotCleared = "Not Cleared"

// Rules holds the status sets used by the classifier. Entries are matched
// against the trimmed, lowercased status.
type Rules struct {
	Joined    []string `yaml:"joined" koanf:"joined"`
	Selected  []string `yaml:"selected" koanf:"selected"`
	Rejected  []string `yaml:"rejected" koanf:"rejected"`
	Screening []string `yaml:"screening" koanf:"screening"`
	Pending   []string `yaml:"pending" koanf:"pending"`
	// ExactRounds requires round cells to read exactly "Not Cleared"
	// (after trimming) instead of matching any letter case.
	ExactRounds bool `yaml:"exact_rounds" koanf:"exact_rounds"`
}

// DefaultRules returns the status vocabulary of the TA tracker sheet.
func DefaultRules() Rules {
	return Rules{
		Joined:    []string{"joined", "internship letter shared"},
		Selected:  []string{"selected", "yes", "shortlisted"},
		Rejected:  []string{"rejected", "rejected in r1", "rejected in r2", "rejected in technical screening", "offer declined..."},
		Screening: []string{"screening reject"},
		Pending: []string{
			"in process", "under discussion",
			"pending at r1", "pending at r2", "pending at r3",
			"on hold",
			"scheduled for r1", "scheduled for r2", "scheduled for r3",
		},
	}
}

// Classifier maps free-text statuses onto the category taxonomy.
// It holds no per-row state and is safe for concurrent use.
type Classifier struct {
	joined    map[string]struct{}
	selected  map[string]struct{}
	rejected  map[string]struct{}
	screening map[string]struct{}
	pending   map[string]struct{}
	exact     bool
}

// NewClassifier builds a Classifier from the given rules.
func NewClassifier(r Rules) *Classifier {
	return &Classifier{
		joined:    toSet(r.Joined),
		selected:  toSet(r.Selected),
		rejected:  toSet(r.Rejected),
		screening: toSet(r.Screening),
		pending:   toSet(r.Pending),
		exact:     r.ExactRounds,
	}
}

// Default is a Classifier using DefaultRules.
var Default = NewClassifier(DefaultRules())

// Classify returns the category and, for rejections, the round the
// candidate was rejected in.
func (c *Classifier) Classify(status, r1, r2, r3 string) (Category, Round) {
	s := strings.ToLower(strings.TrimSpace(status))
	r1 = strings.TrimSpace(r1)
	r2 = strings.TrimSpace(r2)
	r3 = strings.TrimSpace(r3)

	// Blank statuses are still in the pipeline.
	if s == "" || s == "nan" {
		return CategoryPending, RoundNone
	}
	if has(c.joined, s) {
		return CategoryJoined, RoundNone
	}
	if has(c.selected, s) {
		return CategorySelected, RoundNone
	}
	if has(c.screening, s) {
		return CategoryScreeningReject, RoundNone
	}

	round := RoundNone
	switch {
	case c.notCleared(r1):
		round = RoundR1
	case c.notCleared(r2):
		round = RoundR2
	case c.notCleared(r3):
		round = RoundR3
	}

	if has(c.rejected, s) || strings.Contains(s, "rejected") {
		// A rejection with no round history never reached an interview.
		if round == RoundNone && r1 == "" && r2 == "" && r3 == "" {
			return CategoryScreeningReject, RoundNone
		}
		return CategoryRejected, round
	}
	if has(c.pending, s) {
		return CategoryPending, RoundNone
	}
	return CategoryOther, RoundNone
}

// Apply classifies rec in place.
func (c *Classifier) Apply(rec *Record) {
	rec.Category, rec.RejectRound = c.Classify(rec.Status, rec.R1, rec.R2, rec.R3)
}

func toSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.ToLower(strings.TrimSpace(it))
		if it != "" {
			m[it] = struct{}{}
		}
	}
	return m
}

func has(set map[string]struct{}, s string) bool {
	_, ok := set[s]
	return ok
}

func (c *Classifier) notCleared(cell string) bool {
	if c.exact {
		return cell == NotCleared
	}
	return strings.EqualFold(cell, NotCleared)
}
