// Package mcp exposes the shopping lists as MCP tools over stdio.
package mcp

import (
	"database/sql"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/etlefig/Bootschappenbot/internal/config"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"shopping_message": {
		def:     messageToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMessage },
	},
	"shopping_add": {
		def:     addToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAdd },
	},
	"shopping_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"shopping_overview": {
		def:     overviewToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleOverview },
	},
	"shopping_done": {
		def:     doneToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDone },
	},
	"shopping_clear": {
		def:     clearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClear },
	},
	"shopping_set_category": {
		def:     setCategoryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSetCategory },
	},
	"shopping_remove": {
		def:     removeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRemove },
	},
	"shopping_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"shopping_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server with the shopping tools registered.
// Tools listed in cfg.DisabledTools are skipped. Exports without a path
// land in exportDir.
func NewServer(db *sql.DB, cfg *config.Config, exportDir, version string, logger *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"boodschappen",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, exportDir, logger)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run serves the MCP tools on stdin/stdout until the client disconnects.
func Run(db *sql.DB, cfg *config.Config, exportDir, version string, logger *zap.Logger) error {
	s := NewServer(db, cfg, exportDir, version, logger)
	return server.ServeStdio(s)
}
