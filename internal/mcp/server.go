// Package mcp exposes the coding pipeline's offline operations as MCP tools:
// notes extraction, reply parsing, code prediction, and the manometry
// advisory. Browser-bound workflows stay CLI-only.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claimloop/ecwcoder/internal/config"
	"github.com/claimloop/ecwcoder/internal/predict"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"notes_extract": {
		def:     notesExtractToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNotesExtract },
	},
	"codes_parse": {
		def:     codesParseToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCodesParse },
	},
	"codes_predict": {
		def:     codesPredictToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCodesPredict },
	},
	"manometry_status": {
		def:     manometryStatusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleManometryStatus },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// NewServer creates a new MCP server with the coding tools registered.
func NewServer(cfg *config.Config, service predict.Service, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"ecwcoder",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(cfg, service)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run starts the MCP server using stdio transport.
func Run(cfg *config.Config, version string) error {
	s := NewServer(cfg, nil, version)
	return server.ServeStdio(s)
}
