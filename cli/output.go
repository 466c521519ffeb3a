package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/alDuncanson/embscope/analysis"
	"github.com/alDuncanson/embscope/similarity"
)

// maxTablePairs bounds the comparison table; json and yaml output carry every pair.
const maxTablePairs = 10

func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func printResult(w io.Writer, format string, result *analysis.Result) error {
	if format != FormatTable {
		return writeStructured(w, format, result.Summary())
	}

	fmt.Fprintf(w, "Method: %s (%dD)  Layout: %s  Records: %d  Group similarity: %.4f\n",
		result.Method, result.Dimensions, result.Layout, len(result.Records), result.GroupSimilarity)
	if len(result.ExplainedVariance) > 0 {
		fmt.Fprintf(w, "Explained variance: %s\n", formatFloats(result.ExplainedVariance, "%.3f"))
	}
	if result.Method == analysis.MethodNonlinear {
		fmt.Fprintf(w, "Perplexity: %.1f  Iterations: %d  Converged: %t\n",
			result.EffectivePerplexity, result.Iterations, result.Converged)
	}
	if result.Fallback != "" {
		fmt.Fprintf(w, "Fallback: %s\n", result.Fallback)
	}

	clusterOf := make(map[int]string)
	for _, cluster := range result.Clusters {
		for _, index := range cluster.Indices {
			clusterOf[index] = cluster.Name
		}
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "TEXT\tCOORDS\tCLUSTER\n")
	fmt.Fprintf(tw, "----\t------\t-------\n")
	for i, point := range result.Points {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", truncate(point.Label, 40), formatFloats(point.Coords, "%.3f"), clusterOf[i])
	}
	tw.Flush()

	if len(result.Comparisons) > 0 {
		pairs := append([]analysis.Comparison(nil), result.Comparisons...)
		sort.SliceStable(pairs, func(i, j int) bool {
			return pairs[i].Metrics.Cosine > pairs[j].Metrics.Cosine
		})
		if len(pairs) > maxTablePairs {
			pairs = pairs[:maxTablePairs]
		}

		fmt.Fprintf(w, "\nMost similar pairs:\n")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "TEXT A\tTEXT B\tCOSINE\tEUCLIDEAN\tMEANING\n")
		for _, c := range pairs {
			fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\t%s\n",
				truncate(c.LabelA, 30), truncate(c.LabelB, 30), c.Metrics.Cosine, c.Metrics.Euclidean, c.Interpretation)
		}
		tw.Flush()
		if len(result.Comparisons) > maxTablePairs {
			fmt.Fprintf(w, "(%d of %d pairs)\n", maxTablePairs, len(result.Comparisons))
		}
	}
	return nil
}

// comparisonOutput is a comparison plus the score of the metric picked with --metric.
type comparisonOutput struct {
	analysis.Comparison `yaml:",inline"`
	Metric              similarity.Metric `json:"metric" yaml:"metric"`
	Score               float64           `json:"score" yaml:"score"`
}

func printComparison(w io.Writer, format string, out comparisonOutput) error {
	if format != FormatTable {
		return writeStructured(w, format, out)
	}

	c := out.Comparison
	direction := "lower is closer"
	if out.Metric.HigherIsCloser() {
		direction = "higher is closer"
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "A:\t%s\n", c.LabelA)
	fmt.Fprintf(tw, "B:\t%s\n", c.LabelB)
	fmt.Fprintf(tw, "Cosine similarity:\t%.4f\n", c.Metrics.Cosine)
	fmt.Fprintf(tw, "Euclidean distance:\t%.4f\n", c.Metrics.Euclidean)
	fmt.Fprintf(tw, "Manhattan distance:\t%.4f\n", c.Metrics.Manhattan)
	fmt.Fprintf(tw, "Dot product:\t%.4f\n", c.Metrics.Dot)
	fmt.Fprintf(tw, "Interpretation:\t%s (%s confidence)\n", c.Interpretation, c.Confidence)
	fmt.Fprintf(tw, "Score (%s):\t%.4f (%s)\n", out.Metric, out.Score, direction)
	return tw.Flush()
}

func formatFloats(values []float64, verb string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf(verb, v)
	}
	return strings.Join(parts, ", ")
}

// truncate shortens s to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
