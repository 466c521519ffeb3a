package cli

import (
	"github.com/spf13/cobra"

	"github.com/alDuncanson/embscope/mcp"
)

func (a *app) newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve analysis tools over MCP stdio",
		Long: `Run embscope as a Model Context Protocol server on stdin/stdout, exposing
the analyze_texts and compare_texts tools to LLM agents. Logs go to stderr.`,
		Example: `  # claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "embscope": {"command": "embscope", "args": ["mcp"]}
  #   }
  # }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pipeline, err := a.pipeline(true)
			if err != nil {
				return err
			}

			server := mcp.NewServer(pipeline, a.cfg.AnalysisConfig(), a.logger, a.version)
			a.logger.Info("MCP server starting on stdio", "provider", a.cfg.Embedder.Provider)
			return mcp.ServeStdio(cmd.Context(), server, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
