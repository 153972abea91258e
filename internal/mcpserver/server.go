// Package mcpserver exposes the type-at-position query as an MCP tool
// served over stdio.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolName is the name of the only tool registered by New.
const ToolName = "type_at"

// New crea il server MCP e registra il tool type_at. La logica è tutta nel handler.
func New(name, version string, h *Handler) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
	)

	tool := mcp.NewTool(ToolName,
		mcp.WithDescription("Returns the name and fully qualified type of the innermost typed name (variable, parameter, field, constant or function) at a position in a Go source file."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Path of the Go file to query"),
		),
		mcp.WithNumber("line",
			mcp.Required(),
			mcp.Description("1-based line"),
		),
		mcp.WithNumber("column",
			mcp.Required(),
			mcp.Description("1-based byte column"),
		),
		mcp.WithString("backend",
			mcp.Description("types (type-checked, default) or syntax (tree-sitter, declared types only)"),
		),
		mcp.WithString("format",
			mcp.Description("text (default, \"name : type\") or json"),
		),
		mcp.WithBoolean("include_tests",
			mcp.Description("Load _test.go files of the package too"),
		),
	)

	s.AddTool(tool, h.Handle)
	return s
}

// ServeStdio blocks serving s on stdin/stdout.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
