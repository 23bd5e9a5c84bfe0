package dashboard

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hirepulse/tadash/internal/analytics"
	"github.com/hirepulse/tadash/internal/candidate"
	"github.com/hirepulse/tadash/internal/export"
	"github.com/hirepulse/tadash/internal/report"
	"github.com/hirepulse/tadash/internal/tracker"
)

// datasetInfo describes the snapshot a response was computed from.
type datasetInfo struct {
	LoadedAt time.Time `json:"loaded_at"`
	Checksum string    `json:"checksum"`
	Sources  []string  `json:"sources"`
	Records  int       `json:"records"`
}

func infoOf(ds *tracker.Dataset) datasetInfo {
	return datasetInfo{
		LoadedAt: ds.LoadedAt,
		Checksum: ds.Checksum,
		Sources:  ds.Sources,
		Records:  len(ds.Records),
	}
}

// summaryResponse is the JSON response for the summary endpoint.
type summaryResponse struct {
	analytics.Summary
	Dataset datasetInfo `json:"dataset"`
}

// metricsResponse is the JSON response for the metrics endpoint.
type metricsResponse struct {
	Rows   []analytics.MetricsRow `json:"rows"`
	AvgTTF *float64               `json:"avg_ttf"`
	AvgTTH *float64               `json:"avg_tth"`
	Total  int                    `json:"total"`
}

// recordsResponse is the JSON response for the records endpoint.
type recordsResponse struct {
	Rows  []analytics.RecordRow `json:"rows"`
	Total int                   `json:"total"`
}

// classifyResponse is the JSON response for the classify endpoint.
type classifyResponse struct {
	Category      candidate.Category `json:"category"`
	RejectRound   candidate.Round    `json:"reject_round,omitempty"`
	Label         string             `json:"label"`
	QualityOfHire string             `json:"quality_of_hire"`
}

// dataset loads the current snapshot and parses the request filter. It
// writes the error response itself and returns ok=false on failure.
func (d *Dashboard) dataset(w http.ResponseWriter, r *http.Request) (*tracker.Dataset, analytics.Filter, bool) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, f, false
	}
	ds, err := d.cache.Get(r.Context())
	if err != nil {
		log.Printf("dashboard: loading tracker: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return nil, f, false
	}
	return ds, f, true
}

func (d *Dashboard) handleSummary(w http.ResponseWriter, r *http.Request) {
	ds, f, ok := d.dataset(w, r)
	if !ok {
		return
	}
	split := parseBool(r.URL.Query(), "split_rounds")
	writeJSON(w, http.StatusOK, summaryResponse{
		Summary: analytics.Summarize(ds.Records, f, split),
		Dataset: infoOf(ds),
	})
}

func (d *Dashboard) handleOptions(w http.ResponseWriter, r *http.Request) {
	ds, err := d.cache.Get(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, analytics.Options(ds.Records))
}

func (d *Dashboard) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	dim, err := analytics.ParseDimension(chi.URLParam(r, "dimension"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ds, f, ok := d.dataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.ComputeBreakdown(f.Apply(ds.Records), dim))
}

func (d *Dashboard) handleMetrics(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePage(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ds, f, ok := d.dataset(w, r)
	if !ok {
		return
	}
	filtered := f.Apply(ds.Records)
	rows := analytics.MetricsTable(filtered)
	ttf, tth := analytics.Averages(filtered)
	writeJSON(w, http.StatusOK, metricsResponse{
		Rows:   page(rows, limit, offset),
		AvgTTF: ttf,
		AvgTTH: tth,
		Total:  len(rows),
	})
}

func (d *Dashboard) handleRecords(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePage(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ds, f, ok := d.dataset(w, r)
	if !ok {
		return
	}
	rows := analytics.RecordsTable(f.Apply(ds.Records))
	writeJSON(w, http.StatusOK, recordsResponse{
		Rows:  page(rows, limit, offset),
		Total: len(rows),
	})
}

func (d *Dashboard) handleReload(w http.ResponseWriter, r *http.Request) {
	if d.reloads != nil {
		res := d.reloads.Reserve()
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "reload rate limit exceeded"})
			return
		}
	}

	ds, err := d.cache.Reload(r.Context())
	if err != nil {
		log.Printf("dashboard: reload: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, infoOf(ds))
}

func (d *Dashboard) handleClassify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cat, round := d.classifier.Classify(q.Get("status"), q.Get("r1"), q.Get("r2"), q.Get("r3"))
	writeJSON(w, http.StatusOK, classifyResponse{
		Category:      cat,
		RejectRound:   round,
		Label:         cat.Label(round, true),
		QualityOfHire: candidate.QualityOfHire(cat),
	})
}

func (d *Dashboard) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	ds, f, ok := d.dataset(w, r)
	if !ok {
		return
	}
	filtered := f.Apply(ds.Records)
	summary := analytics.Summarize(ds.Records, f, parseBool(r.URL.Query(), "split_rounds"))

	w.Header().Set("Content-Type", export.XLSXContentType)
	w.Header().Set("Content-Disposition", attachment("xlsx", ds.LoadedAt))
	if err := export.WriteXLSX(w, summary, filtered, nil); err != nil {
		log.Printf("dashboard: xlsx export: %v", err)
	}
}

func (d *Dashboard) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ds, f, ok := d.dataset(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", export.CSVContentType)
	w.Header().Set("Content-Disposition", attachment("csv", ds.LoadedAt))
	if err := export.WriteCSV(w, f.Apply(ds.Records)); err != nil {
		log.Printf("dashboard: csv export: %v", err)
	}
}

func (d *Dashboard) handleReportMarkdown(w http.ResponseWriter, r *http.Request) {
	ds, f, ok := d.dataset(w, r)
	if !ok {
		return
	}
	s := analytics.Summarize(ds.Records, f, parseBool(r.URL.Query(), "split_rounds"))
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(report.Markdown(s, d.report)))
}

func (d *Dashboard) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	ds, f, ok := d.dataset(w, r)
	if !ok {
		return
	}
	s := analytics.Summarize(ds.Records, f, parseBool(r.URL.Query(), "split_rounds"))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.WriteHTML(w, s, d.report); err != nil {
		log.Printf("dashboard: html report: %v", err)
	}
}

func attachment(ext string, loadedAt time.Time) string {
	return fmt.Sprintf(`attachment; filename="ta-pipeline-%s.%s"`, loadedAt.Format("20060102-1504"), ext)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
