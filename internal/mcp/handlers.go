package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hirepulse/tadash/internal/analytics"
	"github.com/hirepulse/tadash/internal/candidate"
	"github.com/hirepulse/tadash/internal/report"
)

// handlePipelineSummary renders the dashboard summary for the filtered records.
func (s *Server) handlePipelineSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f, err := filterFrom(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading tracker: %v", err)), nil
	}

	summary := analytics.Summarize(ds.Records, f, request.GetBool("split_rounds", false))

	switch format := request.GetString("format", "markdown"); format {
	case "markdown", "":
		return mcp.NewToolResultText(report.Markdown(summary, s.report)), nil
	case "json":
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encoding summary: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", format)), nil
	}
}

// handleClassifyStatus classifies one set of status cells without loading data.
func (s *Server) handleClassifyStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := request.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: status"), nil
	}

	cat, round := s.classifier.Classify(status,
		request.GetString("r1", ""),
		request.GetString("r2", ""),
		request.GetString("r3", ""),
	)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Category: %s\n", cat)
	if round != candidate.RoundNone {
		fmt.Fprintf(&sb, "Reject round: %s\n", round)
	}
	fmt.Fprintf(&sb, "Chart label: %s\n", cat.Label(round, true))
	fmt.Fprintf(&sb, "Quality of hire: %s\n", candidate.QualityOfHire(cat))
	return mcp.NewToolResultText(sb.String()), nil
}

// handleSearchCandidates lists candidates whose name matches the query.
func (s *Server) handleSearchCandidates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}

	f, err := filterFrom(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f.NameQuery = strings.TrimSpace(query)

	ds, err := s.cache.Get(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading tracker: %v", err)), nil
	}

	matches := f.Apply(ds.Records)
	if len(matches) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No candidates match %q.", query)), nil
	}
	return mcp.NewToolResultText(formatCandidates(matches, limit)), nil
}

// handleBreakdown groups the filtered records by one dimension.
func (s *Server) handleBreakdown(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("dimension")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: dimension"), nil
	}
	dim, err := analytics.ParseDimension(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	f, err := filterFrom(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading tracker: %v", err)), nil
	}

	b := analytics.ComputeBreakdown(f.Apply(ds.Records), dim)
	if len(b.Rows) == 0 {
		return mcp.NewToolResultText("No candidates match the filters."), nil
	}
	return mcp.NewToolResultText(formatBreakdown(b, request.GetInt("top", 0))), nil
}

// filterFrom reads the shared filter arguments.
func filterFrom(request mcp.CallToolRequest) (analytics.Filter, error) {
	f := analytics.Filter{
		HiringManagers: splitList(request.GetString("hm", "")),
		Skills:         splitList(request.GetString("skill", "")),
		Locations:      splitList(request.GetString("location", "")),
		Recruiters:     splitList(request.GetString("recruiter", "")),
		IncludeUndated: request.GetBool("include_undated", false),
	}
	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		v := strings.TrimSpace(request.GetString(p.key, ""))
		if v == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, fmt.Errorf("%s must be YYYY-MM-DD", p.key)
		}
		*p.dst = &t
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, fmt.Errorf("to is before from")
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// formatCandidates renders matching records for AI agent consumption.
func formatCandidates(records []candidate.Record, limit int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d candidate(s)", len(records))
	if len(records) > limit {
		fmt.Fprintf(&sb, ", showing the first %d", limit)
		records = records[:limit]
	}
	sb.WriteString(":\n")

	for _, r := range records {
		fmt.Fprintf(&sb, "\n- %s: %s\n", orDash(r.Name), r.Category.Label(r.RejectRound, true))
		fmt.Fprintf(&sb, "  Status: %s\n", orDash(r.Status))
		fmt.Fprintf(&sb, "  Hiring manager: %s | Skill: %s | Location: %s | Recruiter: %s\n",
			orDash(r.HiringManager), orDash(r.Skill), orDash(r.Location), orDash(r.Recruiter))
		if r.SourcingDate != nil {
			fmt.Fprintf(&sb, "  Sourced: %s\n", r.SourcingDate.Format("2006-01-02"))
		}
		if r.TTF != nil {
			fmt.Fprintf(&sb, "  Time to fill: %g days\n", *r.TTF)
		}
		if r.TTH != nil {
			fmt.Fprintf(&sb, "  Time to hire: %g days\n", *r.TTH)
		}
	}
	return sb.String()
}

// formatBreakdown renders a breakdown as a markdown table.
func formatBreakdown(b analytics.Breakdown, top int) string {
	var sb strings.Builder
	rows := b.Top(top)
	fmt.Fprintf(&sb, "Breakdown by %s (%d of %d groups):\n\n", b.Dimension.Title(), len(rows), len(b.Rows))

	sb.WriteString("| " + b.Dimension.Title() + " | Total")
	for _, c := range candidate.Categories {
		sb.WriteString(" | " + string(c))
	}
	sb.WriteString(" |\n|---|---")
	for range candidate.Categories {
		sb.WriteString("|---")
	}
	sb.WriteString("|\n")

	for _, row := range rows {
		fmt.Fprintf(&sb, "| %s | %d", row.Value, row.Total)
		for _, c := range candidate.Categories {
			fmt.Fprintf(&sb, " | %d", row.Counts[c])
		}
		sb.WriteString(" |\n")
	}
	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
