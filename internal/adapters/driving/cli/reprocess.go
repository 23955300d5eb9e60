package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var reprocessCmd = &cobra.Command{
	Use:   "reprocess [doc-id]",
	Short: "Re-embed a document and rebuild its index",
	Long: `Recomputes embeddings from the document's stored chunk text and rebuilds
its vector index. Use this after changing the embedding model or when
the index artifact was lost or corrupted. The PDF is not re-extracted.`,
	Args: cobra.ExactArgs(1),
	RunE: runReprocess,
}

func init() {
	rootCmd.AddCommand(reprocessCmd)
}

func runReprocess(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	cmd.Printf("Reprocessing %s...\n", docID)

	count, err := ingestService.Reprocess(ctx, docID)
	if err != nil {
		return fmt.Errorf("reprocess failed: %w", err)
	}

	cmd.Printf("Reindexed %d chunks.\n", count)
	return nil
}
