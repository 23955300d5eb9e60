package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docq/internal/core/domain"
	"github.com/custodia-labs/docq/internal/core/ports/driving"
)

var (
	askMaxChunks int
	askThreshold float64
	askJSON      bool
)

var askCmd = &cobra.Command{
	Use:   "ask [doc-id] [question]",
	Short: "Ask a question about an ingested document",
	Long: `Retrieves the chunks most relevant to the question from the document's
vector index and composes an answer grounded in them. The document must
be fully indexed.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askMaxChunks, "max-chunks", "n", driving.DefaultMaxChunks, "maximum number of retrieved chunks")
	askCmd.Flags().Float64Var(&askThreshold, "threshold", driving.DefaultSimilarityThreshold, "minimum similarity (negative disables filtering)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	docID, question := args[0], args[1]
	ctx := context.Background()

	answer, err := chatService.Ask(ctx, docID, question, driving.AskOptions{
		MaxChunks:           askMaxChunks,
		SimilarityThreshold: askThreshold,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	return outputAnswerText(cmd, answer)
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer *domain.Answer) error {
	cmd.Println(answer.Text)

	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, src := range answer.Sources {
			cmd.Printf("  page %d, chunk %d (%.2f)\n", src.Page, src.ChunkSeq, src.Similarity)
		}
	}

	return nil
}
