package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/hirepulse/tadash/internal/cache"
	"github.com/hirepulse/tadash/internal/candidate"
	"github.com/hirepulse/tadash/internal/report"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes pipeline analytics tools.
type Server struct {
	cache      *cache.Cache
	classifier *candidate.Classifier
	report     report.Options
	mcp        *server.MCPServer
}

// NewServer creates a new MCP server reading tracker data through c.
// A nil classifier uses the default rules.
func NewServer(c *cache.Cache, classifier *candidate.Classifier, reportOpts report.Options) *Server {
	if classifier == nil {
		classifier = candidate.Default
	}
	s := &Server{
		cache:      c,
		classifier: classifier,
		report:     reportOpts,
	}

	s.mcp = server.NewMCPServer(
		"tadash",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(pipelineSummaryTool, s.handlePipelineSummary)
	s.mcp.AddTool(classifyStatusTool, s.handleClassifyStatus)
	s.mcp.AddTool(searchCandidatesTool, s.handleSearchCandidates)
	s.mcp.AddTool(breakdownTool, s.handleBreakdown)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
