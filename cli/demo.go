package cli

import (
	"github.com/spf13/cobra"

	"github.com/alDuncanson/embscope/preload"
)

func (a *app) newDemoCmd() *cobra.Command {
	var flags analysisFlags

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Analyze the bundled demo sentences",
		Long: `Embed a bundled set of sentences about animals, food, weather, technology,
sports and music, then open them in the viewer. Pass --format to print the
analysis instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.config(a.cfg.AnalysisConfig())
			if err != nil {
				return err
			}
			src := source{texts: preload.Sentences()}

			if !cmd.Flags().Changed("format") {
				return a.runViewer(cmd.Context(), src, cfg)
			}

			result, err := a.analyzeSource(cmd.Context(), src, cfg)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a.format, result)
		},
	}

	flags.registerTuning(cmd.Flags())
	return cmd
}
