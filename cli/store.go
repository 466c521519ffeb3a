package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alDuncanson/embscope/dataimport"
	"github.com/alDuncanson/embscope/qdrant"
)

func (a *app) newStoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "store <file>",
		Short: "Embed texts from a file and save them to Qdrant",
		Long: `Embed every text in a CSV (text column), JSON or YAML list, or plain text file
(one text per line) and upsert the results into the configured Qdrant
collection, ready for analyze --qdrant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			texts, err := dataimport.LoadTexts(args[0])
			if err != nil {
				return fmt.Errorf("loading texts: %w", err)
			}
			if len(texts) == 0 {
				return fmt.Errorf("no texts found in %s", args[0])
			}

			pipeline, err := a.pipeline(true)
			if err != nil {
				return err
			}
			records, err := pipeline.EmbedRecords(ctx, texts)
			if err != nil {
				return err
			}

			store, err := a.openStore(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			points := make([]qdrant.Point, len(records))
			for i, record := range records {
				points[i] = qdrant.PointFromRecord(record)
			}
			if err := store.Upsert(ctx, points...); err != nil {
				return fmt.Errorf("storing records: %w", err)
			}

			a.logger.Info("stored records", "records", len(points), "collection", a.cfg.Qdrant.Collection)
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %d texts in %s\n", len(points), a.cfg.Qdrant.Collection)
			return nil
		},
	}
}
