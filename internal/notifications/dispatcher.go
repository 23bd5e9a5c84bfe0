package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hirepulse/tadash/internal/cache"
	"github.com/hirepulse/tadash/internal/candidate"
)

// Dispatcher turns load events into notifications and delivers them to
// webhook subscribers.
type Dispatcher struct {
	webhooks    []string
	minSeverity Severity
	client      *http.Client

	mu       sync.Mutex
	checksum string // of the last successful load
	failing  bool
	counts   map[candidate.Category]int

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher posting to webhooks. Notifications
// below minSeverity are dropped.
func NewDispatcher(webhooks []string, minSeverity Severity) *Dispatcher {
	return &Dispatcher{
		webhooks:    webhooks,
		minSeverity: minSeverity,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Hook returns a cache.OnLoad callback. Delivery happens in the background
// so a slow webhook never delays a load.
func (d *Dispatcher) Hook() func(cache.LoadEvent) {
	return func(ev cache.LoadEvent) {
		n := d.Evaluate(ev)
		if n == nil || !severityMatches(n.Severity, d.minSeverity) {
			return
		}
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.Dispatch(context.Background(), *n); err != nil {
				log.Printf("notifications: %v", err)
			}
		}()
	}
}

// Wait blocks until background deliveries finish.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Evaluate decides whether ev warrants a notification. The first successful
// load only records a baseline.
func (d *Dispatcher) Evaluate(ev cache.LoadEvent) *Notification {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ev.Err != nil {
		if d.failing {
			return nil
		}
		d.failing = true
		return newNotification(TypeLoadFailed, SeverityCritical,
			"Tracker load failed",
			fmt.Sprintf("Loading the TA tracker failed: %v. The dashboard keeps serving the last good data.", ev.Err),
		)
	}

	ds := ev.Dataset
	if ds == nil {
		return nil
	}
	wasFailing := d.failing
	d.failing = false
	prevChecksum, prevCounts := d.checksum, d.counts
	d.checksum, d.counts = ds.Checksum, ds.Counts()

	var n *Notification
	switch {
	case wasFailing:
		n = newNotification(TypeLoadRecovered, SeverityWarning,
			"Tracker load recovered",
			fmt.Sprintf("The TA tracker loaded again with %d candidate(s).", len(ds.Records)),
		)
	case prevChecksum != "" && prevChecksum != ds.Checksum:
		n = newNotification(TypeDataChanged, SeverityInfo,
			"Tracker data changed",
			describeChange(prevCounts, d.counts),
		)
	default:
		return nil
	}
	n.Sources = ds.Sources
	n.Counts = d.counts
	return n
}

// Dispatch sends n to every webhook, returning the first delivery error.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}
	var firstErr error
	for _, url := range d.webhooks {
		if err := d.SendWebhook(ctx, url, payload); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("delivering %s to %s: %w", n.Type, url, err)
		}
	}
	return firstErr
}

// SendWebhook POSTs payload to the given URL.
func (d *Dispatcher) SendWebhook(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func newNotification(t NotificationType, sev Severity, title, msg string) *Notification {
	return &Notification{
		ID:        uuid.New().String(),
		Type:      t,
		Severity:  sev,
		Title:     title,
		Message:   msg,
		CreatedAt: time.Now().UTC(),
	}
}

// describeChange lists the per-category deltas between two loads.
func describeChange(before, after map[candidate.Category]int) string {
	var buf bytes.Buffer
	buf.WriteString("Pipeline counts changed:")
	changed := false
	for _, c := range candidate.Categories {
		if delta := after[c] - before[c]; delta != 0 {
			fmt.Fprintf(&buf, " %s %+d (now %d);", c, delta, after[c])
			changed = true
		}
	}
	if !changed {
		return "Tracker contents changed; category counts are unchanged."
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte(";")))
}

// severityMatches returns true if the notification severity meets or exceeds the filter threshold.
func severityMatches(actual, filter Severity) bool {
	levels := map[Severity]int{
		SeverityInfo:     0,
		SeverityWarning:  1,
		SeverityCritical: 2,
	}
	return levels[actual] >= levels[filter]
}
