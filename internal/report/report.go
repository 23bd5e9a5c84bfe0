// Package report renders a pipeline summary as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/hirepulse/tadash/internal/analytics"
	"github.com/hirepulse/tadash/internal/candidate"
)

// Options controls report content.
type Options struct {
	Title string
	// TopN limits each breakdown table; 0 shows every row.
	TopN int
	// GeneratedAt is stamped in the header; zero means now.
	GeneratedAt time.Time
}

// Markdown renders the summary as a GitHub-flavoured Markdown document.
func Markdown(s analytics.Summary, opts Options) string {
	title := opts.Title
	if title == "" {
		title = "TA Pipeline Report"
	}
	at := opts.GeneratedAt
	if at.IsZero() {
		at = time.Now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "_Generated %s_\n\n", at.Format("2 Jan 2006 15:04 MST"))
	if desc := describeFilter(s.Filter); desc != "" {
		fmt.Fprintf(&b, "Filters: %s\n\n", desc)
	}

	b.WriteString("## Key metrics\n\n")
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Total Candidates | %d |\n", s.KPIs.Total)
	fmt.Fprintf(&b, "| Rejections | %d |\n", s.KPIs.Rejected)
	fmt.Fprintf(&b, "| Selected | %d |\n", s.KPIs.Selected)
	fmt.Fprintf(&b, "| Joined | %d |\n", s.KPIs.Joined)
	fmt.Fprintf(&b, "| Pending/Active | %d |\n", s.KPIs.Pending)
	fmt.Fprintf(&b, "| Conversion Rate | %.1f%% |\n", s.QuickStats.ConversionRate)
	fmt.Fprintf(&b, "| Shortlist Rate | %.1f%% |\n\n", s.QuickStats.ShortlistRate)

	b.WriteString("## Funnel\n\n")
	b.WriteString("| Stage | Candidates |\n|---|---:|\n")
	for _, st := range s.Funnel {
		fmt.Fprintf(&b, "| %s | %d |\n", st.Name, st.Count)
	}
	b.WriteString("\n")

	b.WriteString("## Status distribution\n\n")
	if len(s.Distribution) == 0 {
		b.WriteString("No candidates match.\n\n")
	} else {
		b.WriteString("| Category | Candidates |\n|---|---:|\n")
		for _, sl := range s.Distribution {
			fmt.Fprintf(&b, "| %s | %d |\n", escape(sl.Label), sl.Count)
		}
		b.WriteString("\n")
	}

	for _, bd := range s.Breakdowns {
		rows := bd.Top(opts.TopN)
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## By %s\n\n", bd.Dimension.Title())
		b.WriteString("| " + bd.Dimension.Title() + " | Total")
		for _, c := range candidate.Categories {
			b.WriteString(" | " + string(c))
		}
		b.WriteString(" |\n|---|---:")
		for range candidate.Categories {
			b.WriteString("|---:")
		}
		b.WriteString("|\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "| %s | %d", escape(r.Value), r.Total)
			for _, c := range candidate.Categories {
				fmt.Fprintf(&b, " | %d", r.Counts[c])
			}
			b.WriteString(" |\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
th, td { border: 1px solid #ccc; padding: 4px 10px; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// WriteHTML renders the Markdown report to a standalone HTML page.
func WriteHTML(w io.Writer, s analytics.Summary, opts Options) error {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(s, opts)), &body); err != nil {
		return fmt.Errorf("converting markdown: %w", err)
	}
	title := opts.Title
	if title == "" {
		title = "TA Pipeline Report"
	}
	return page.Execute(w, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body.String())})
}

func describeFilter(f analytics.Filter) string {
	var parts []string
	if f.From != nil || f.To != nil {
		from, to := "start", "today"
		if f.From != nil {
			from = f.From.Format("2006-01-02")
		}
		if f.To != nil {
			to = f.To.Format("2006-01-02")
		}
		parts = append(parts, fmt.Sprintf("sourced %s to %s", from, to))
	} else if f.IncludeUndated {
		parts = append(parts, "including undated")
	}
	add := func(label string, values []string) {
		if len(values) > 0 {
			parts = append(parts, label+" "+strings.Join(values, ", "))
		}
	}
	add("HM", f.HiringManagers)
	add("skill", f.Skills)
	add("location", f.Locations)
	add("recruiter", f.Recruiters)
	if q := strings.TrimSpace(f.NameQuery); q != "" {
		parts = append(parts, fmt.Sprintf("name contains %q", q))
	}
	return escape(strings.Join(parts, "; "))
}

// escaper keeps free text from breaking table cells or adding markup.
var escaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "<", "&lt;", ">", "&gt;")

func escape(s string) string { return escaper.Replace(s) }
