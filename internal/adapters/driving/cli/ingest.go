package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	ingestID    string
	ingestAsync bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file.pdf]",
	Short: "Ingest a PDF document",
	Long: `Extracts text from a PDF, splits it into chunks, computes embeddings,
and builds the document's vector index. Once ingestion completes the
document can be queried with "docq ask".`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestID, "id", "", "document ID (generated when empty)")
	ingestCmd.Flags().BoolVar(&ingestAsync, "async", false, "return immediately and process in the background")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]
	pdf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	filename := filepath.Base(path)

	ctx := context.Background()

	// Allocate the ID here so it can be printed without a follow-up lookup
	id := ingestID
	if id == "" {
		id = uuid.New().String()
	}

	if ingestAsync {
		if _, err := ingestService.Ingest(ctx, id, filename, pdf); err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		cmd.Printf("Ingesting %s in the background.\n", filename)
		cmd.Printf("Document ID: %s\n", id)
		cmd.Printf("Check progress with: docq document status %s\n", id)
		return nil
	}

	cmd.Printf("Ingesting %s...\n", filename)

	count, err := ingestService.IngestSync(ctx, id, filename, pdf)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Indexed %d chunks.\n", count)
	cmd.Printf("Document ID: %s\n", id)
	return nil
}
