package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codellm-devkit/typeextractor-go/internal/config"
	"github.com/codellm-devkit/typeextractor-go/internal/loader"
	"github.com/codellm-devkit/typeextractor-go/internal/output"
	"github.com/codellm-devkit/typeextractor-go/internal/query"
)

// Handler translates type_at calls into query.Runner runs.
type Handler struct {
	runner *query.Runner
	cfg    *config.Config
	log    *slog.Logger
}

// NewHandler uses cfg for the defaults a call does not override.
func NewHandler(runner *query.Runner, cfg *config.Config, log *slog.Logger) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{runner: runner, cfg: cfg, log: log}
}

// Handle runs one query. Failures and no-match are reported as tool errors,
// never as protocol errors.
func (h *Handler) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := req.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError("file is required"), nil
	}
	line, err := req.RequireInt("line")
	if err != nil {
		return mcp.NewToolResultError("line is required"), nil
	}
	column, err := req.RequireInt("column")
	if err != nil {
		return mcp.NewToolResultError("column is required"), nil
	}
	if line < 0 || column < 0 {
		return mcp.NewToolResultError("line and column must be non-negative"), nil
	}
	backend := req.GetString("backend", h.cfg.Backend)
	if err := config.ValidateBackend(backend); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := req.GetString("format", "text")
	if err := config.ValidateFormat(format); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := h.runner.Run(ctx, query.Request{
		Paths:   []string{file},
		Line:    line,
		Column:  column,
		Backend: backend,
		Load: loader.Options{
			IncludeTest: req.GetBool("include_tests", h.cfg.Load.IncludeTests),
			BuildTags:   h.cfg.Load.BuildTags,
			ExcludeDirs: h.cfg.Load.ExcludeDirs,
		},
	})
	if err != nil {
		h.log.Error("type_at failed", "file", file, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	if format == string(output.FormatJSON) {
		s, err := output.ToJSON(res, h.cfg.IndentJSON())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(s), nil
	}
	if res.Match == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no typed name at %s:%d:%d", file, line, column)), nil
	}
	return mcp.NewToolResultText(res.Match.String()), nil
}
