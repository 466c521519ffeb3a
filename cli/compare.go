package cli

import (
	"github.com/spf13/cobra"

	"github.com/alDuncanson/embscope/similarity"
)

func (a *app) newCompareCmd() *cobra.Command {
	var metricName string

	cmd := &cobra.Command{
		Use:   "compare <text-a> <text-b>",
		Short: "Compare two texts",
		Long: `Embed two texts with the configured provider and report cosine similarity,
Euclidean and Manhattan distance, dot product and a plain-language reading of
the cosine score. --metric picks the measurement reported as the score.`,
		Example: `  embscope compare "the cat sat" "a kitten was sitting"
  embscope compare "the cat sat" "a kitten was sitting" --metric euclidean`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			metric, err := similarity.ParseMetric(metricName)
			if err != nil {
				return err
			}
			pipeline, err := a.pipeline(true)
			if err != nil {
				return err
			}

			records, err := pipeline.EmbedRecords(cmd.Context(), args)
			if err != nil {
				return err
			}
			comparison, err := pipeline.Compare(cmd.Context(), records[0], records[1])
			if err != nil {
				return err
			}
			score, err := metric.Func()(records[0].Vector, records[1].Vector)
			if err != nil {
				return err
			}

			return printComparison(cmd.OutOrStdout(), a.format, comparisonOutput{
				Comparison: comparison,
				Metric:     metric,
				Score:      score,
			})
		},
	}

	cmd.Flags().StringVar(&metricName, "metric", string(similarity.MetricCosine), "score metric: cosine, euclidean, manhattan, dot")
	return cmd
}
