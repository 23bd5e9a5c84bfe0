package dashboard

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/hirepulse/tadash/internal/cache"
	"github.com/hirepulse/tadash/internal/candidate"
	"github.com/hirepulse/tadash/internal/report"
)

// Dashboard serves the data behind the pipeline dashboard.
type Dashboard struct {
	cache      *cache.Cache
	classifier *candidate.Classifier
	reloads    *rate.Limiter
	report     report.Options
}

// New creates a Dashboard. A nil limiter allows unlimited forced reloads;
// a nil classifier uses the default rules.
func New(c *cache.Cache, classifier *candidate.Classifier, reloads *rate.Limiter, reportOpts report.Options) *Dashboard {
	if classifier == nil {
		classifier = candidate.Default
	}
	return &Dashboard{
		cache:      c,
		classifier: classifier,
		reloads:    reloads,
		report:     reportOpts,
	}
}

// NewReloadLimiter allows perMinute forced reloads with the given burst.
// A non-positive rate returns nil, which disables limiting.
func NewReloadLimiter(perMinute float64, burst int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perMinute/60), burst)
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Route("/api/dashboard", func(r chi.Router) {
			r.Get("/summary", d.handleSummary)
			r.Get("/options", d.handleOptions)
			r.Get("/breakdown/{dimension}", d.handleBreakdown)
			r.Get("/metrics", d.handleMetrics)
			r.Get("/records", d.handleRecords)
			r.Post("/reload", d.handleReload)
		})
		r.Get("/api/classify", d.handleClassify)
		r.Get("/api/export.xlsx", d.handleExportXLSX)
		r.Get("/api/export.csv", d.handleExportCSV)
		r.Get("/api/report", d.handleReportMarkdown)
		r.Get("/api/report.html", d.handleReportHTML)
	})

	// Long-lived; kept outside the timeout group.
	r.Get("/ws/summary", d.handleWebSocket)
}
