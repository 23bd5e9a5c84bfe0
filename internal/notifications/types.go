// Package notifications posts webhook alerts about tracker loads.
package notifications

import (
	"time"

	"github.com/hirepulse/tadash/internal/candidate"
)

// Severity indicates the importance of a notification.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ParseSeverity returns the severity for s, defaulting to info when empty.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case "", SeverityInfo:
		return SeverityInfo, true
	case SeverityWarning, SeverityCritical:
		return Severity(s), true
	}
	return "", false
}

// NotificationType categorises the load outcome that triggered the notification.
type NotificationType string

const (
	TypeLoadFailed    NotificationType = "load_failed"
	TypeLoadRecovered NotificationType = "load_recovered"
	TypeDataChanged   NotificationType = "data_changed"
)

// Notification is the webhook payload.
type Notification struct {
	ID        string                     `json:"id"`
	Type      NotificationType           `json:"type"`
	Severity  Severity                   `json:"severity"`
	Title     string                     `json:"title"`
	Message   string                     `json:"message"`
	Sources   []string                   `json:"sources,omitempty"`
	Counts    map[candidate.Category]int `json:"counts,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
}
