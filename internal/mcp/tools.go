package mcp

import "github.com/mark3labs/mcp-go/mcp"

// filterOptions are shared by every tool that reads tracker records.
var filterOptions = []mcp.ToolOption{
	mcp.WithString("from",
		mcp.Description("Earliest sourcing date, YYYY-MM-DD"),
	),
	mcp.WithString("to",
		mcp.Description("Latest sourcing date, YYYY-MM-DD"),
	),
	mcp.WithString("hm",
		mcp.Description("Comma-separated hiring managers"),
	),
	mcp.WithString("skill",
		mcp.Description("Comma-separated skills"),
	),
	mcp.WithString("location",
		mcp.Description("Comma-separated locations"),
	),
	mcp.WithString("recruiter",
		mcp.Description("Comma-separated recruiters"),
	),
	mcp.WithBoolean("include_undated",
		mcp.Description("Keep candidates without a sourcing date when no date range is given"),
	),
}

func withFilters(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(opts, filterOptions...)
}

// pipelineSummaryTool defines the pipeline_summary MCP tool.
var pipelineSummaryTool = mcp.NewTool("pipeline_summary",
	withFilters(
		mcp.WithDescription("Summarize the recruiting pipeline: KPIs, funnel, quick stats, status distribution and top breakdowns."),
		mcp.WithString("format",
			mcp.Description("Output format (default markdown)"),
			mcp.Enum("markdown", "json"),
		),
		mcp.WithBoolean("split_rounds",
			mcp.Description("Show rejections per interview round instead of one Rejected slice"),
		),
	)...,
)

// classifyStatusTool defines the classify_status MCP tool.
var classifyStatusTool = mcp.NewTool("classify_status",
	mcp.WithDescription("Classify a tracker row into its dashboard category from the status and round columns."),
	mcp.WithString("status",
		mcp.Required(),
		mcp.Description("Overall status cell"),
	),
	mcp.WithString("r1", mcp.Description("Round 1 status cell")),
	mcp.WithString("r2", mcp.Description("Round 2 status cell")),
	mcp.WithString("r3", mcp.Description("Round 3 status cell")),
)

// searchCandidatesTool defines the search_candidates MCP tool.
var searchCandidatesTool = mcp.NewTool("search_candidates",
	withFilters(
		mcp.WithDescription("Find candidates whose name contains the query, with their category and pipeline details."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Case-insensitive substring of the candidate name"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of candidates to return (default 20)"),
		),
	)...,
)

// breakdownTool defines the breakdown MCP tool.
var breakdownTool = mcp.NewTool("breakdown",
	withFilters(
		mcp.WithDescription("Count candidates per category for each hiring manager, skill, location or recruiter."),
		mcp.WithString("dimension",
			mcp.Required(),
			mcp.Description("Dimension to group by"),
			mcp.Enum("hm", "skill", "location", "recruiter"),
		),
		mcp.WithNumber("top",
			mcp.Description("Only return the largest N groups (default all)"),
		),
	)...,
)
