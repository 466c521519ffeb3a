// Package mcp exposes text analysis as Model Context Protocol tools over stdio.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alDuncanson/embscope/analysis"
	"github.com/alDuncanson/embscope/logging"
)

// NewServer returns an MCP server with every tool registered.
func NewServer(pipeline *analysis.Pipeline, defaults analysis.Config, logger *slog.Logger, version string) *mcpserver.MCPServer {
	server := mcpserver.NewMCPServer("embscope", version, mcpserver.WithToolCapabilities(false))
	RegisterTools(server, pipeline, defaults, logger)
	return server
}

// RegisterTools adds analyze_texts and compare_texts to server.
func RegisterTools(server *mcpserver.MCPServer, pipeline *analysis.Pipeline, defaults analysis.Config, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = logging.Discard()
	}
	handlers := &Handlers{pipeline: pipeline, defaults: defaults, logger: logger}

	server.AddTool(mcp.NewTool("analyze_texts",
		mcp.WithDescription("Embed a list of texts, reduce them to 2D or 3D, group them into quadrant clusters and compare every pair."),
		mcp.WithArray("texts",
			mcp.Required(),
			mcp.Description("Texts to analyze"),
			mcp.WithStringItems(),
		),
		mcp.WithString("method",
			mcp.Description("Reduction method (default: linear)"),
			mcp.Enum(string(analysis.MethodLinear), string(analysis.MethodNonlinear)),
		),
		mcp.WithNumber("dimensions",
			mcp.Description("Target dimensions, 2 or 3 (default: 2)"),
			mcp.Min(2),
			mcp.Max(3),
		),
		mcp.WithNumber("perplexity",
			mcp.Description("t-SNE perplexity, clamped for small inputs (default: 30)"),
		),
		mcp.WithNumber("iterations",
			mcp.Description("t-SNE iterations (default: 500)"),
		),
	), handlers.AnalyzeTexts)

	server.AddTool(mcp.NewTool("compare_texts",
		mcp.WithDescription("Embed two texts and report cosine similarity, Euclidean and Manhattan distance, dot product and a plain-language interpretation."),
		mcp.WithString("a", mcp.Required(), mcp.Description("First text")),
		mcp.WithString("b", mcp.Required(), mcp.Description("Second text")),
		mcp.WithString("metric",
			mcp.Description("Metric reported as score (default: cosine)"),
			mcp.Enum("cosine", "euclidean", "manhattan", "dot"),
		),
	), handlers.CompareTexts)

	return handlers
}
