package mcp

import (
	"database/sql"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/citrus/internal/config"
	"github.com/hpungsan/citrus/internal/ops"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"food", "log", "goals", "insights"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"food_search": {
		def:     foodSearchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFoodSearch },
	},
	"food_lookup_ean": {
		def:     foodLookupEANToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFoodLookupEAN },
	},
	"food_estimate": {
		def:     foodEstimateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFoodEstimate },
	},
	"log_add": {
		def:     logAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogAdd },
	},
	"log_relog": {
		def:     logRelogToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogRelog },
	},
	"log_day": {
		def:     logDayToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogDay },
	},
	"log_delete": {
		def:     logDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogDelete },
	},
	"goals_get": {
		def:     goalsGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGoalsGet },
	},
	"goals_set": {
		def:     goalsSetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGoalsSet },
	},
	"goals_style": {
		def:     goalsStyleToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGoalsStyle },
	},
	"insights_suggest": {
		def:     insightsSuggestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleInsightsSuggest },
	},
}

// AllToolNames returns all valid tool names, sorted.
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

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "log_add" → "log").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	sort.Strings(tools)
	return tools
}

// EnabledTools returns the tool names that survive cfg's disabled lists.
func EnabledTools(cfg *config.Config) []string {
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	enabled := make([]string, 0, len(toolRegistry))
	for _, name := range AllToolNames() {
		if !disabled[name] {
			enabled = append(enabled, name)
		}
	}
	return enabled
}

// NewServer creates a new MCP server with the Citrus tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(db *sql.DB, svc *ops.Service, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"citrus",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, svc)
	for _, name := range EnabledTools(cfg) {
		entry := toolRegistry[name]
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, svc *ops.Service, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(db, svc, cfg, version))
}
