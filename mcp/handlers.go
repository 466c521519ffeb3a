package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alDuncanson/embscope/analysis"
	"github.com/alDuncanson/embscope/similarity"
)

// Handlers implements the tools. Failures are reported as tool errors so the calling
// agent sees them; only a broken response encoding is a protocol error.
type Handlers struct {
	pipeline *analysis.Pipeline
	defaults analysis.Config
	logger   *slog.Logger
}

type compareResponse struct {
	analysis.Comparison
	Metric         string  `json:"metric"`
	Score          float64 `json:"score"`
	HigherIsCloser bool    `json:"higher_is_closer"`
}

// AnalyzeTexts handles the analyze_texts tool.
func (h *Handlers) AnalyzeTexts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	texts, err := request.RequireStringSlice("texts")
	if err != nil {
		return mcp.NewToolResultError("texts argument is required and must be an array of strings"), nil
	}

	cfg := h.defaults
	if method := request.GetString("method", ""); method != "" {
		if cfg.Method, err = analysis.ParseMethod(method); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	cfg.Dimensions = request.GetInt("dimensions", cfg.Dimensions)
	cfg.Perplexity = request.GetFloat("perplexity", cfg.Perplexity)
	cfg.Iterations = request.GetInt("iterations", cfg.Iterations)
	cfg.Progress = nil

	result, err := h.pipeline.AnalyzeTexts(ctx, texts, cfg)
	if err != nil {
		h.logger.Warn("analyze_texts failed", "records", len(texts), "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	return mcp.NewToolResultJSON(result.Summary())
}

// CompareTexts handles the compare_texts tool.
func (h *Handlers) CompareTexts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := request.RequireString("a")
	if err != nil {
		return mcp.NewToolResultError("a argument is required and must be a string"), nil
	}
	b, err := request.RequireString("b")
	if err != nil {
		return mcp.NewToolResultError("b argument is required and must be a string"), nil
	}
	metric, err := similarity.ParseMetric(request.GetString("metric", string(similarity.MetricCosine)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	records, err := h.pipeline.EmbedRecords(ctx, []string{a, b})
	if err != nil {
		h.logger.Warn("compare_texts failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}
	comparison, err := h.pipeline.Compare(ctx, records[0], records[1])
	if err != nil {
		var mismatch *similarity.ErrDimensionMismatch
		if errors.As(err, &mismatch) {
			return mcp.NewToolResultError(fmt.Sprintf("embeddings differ in length: %d vs %d", mismatch.Left, mismatch.Right)), nil
		}
		h.logger.Warn("compare_texts failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}
	score, err := metric.Func()(records[0].Vector, records[1].Vector)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}

	return mcp.NewToolResultJSON(compareResponse{
		Comparison:     comparison,
		Metric:         string(metric),
		Score:          score,
		HigherIsCloser: metric.HigherIsCloser(),
	})
}
