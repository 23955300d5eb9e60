package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docq/internal/core/ports/driving"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [doc-id]",
	Short: "Show a document's conversation history",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear [doc-id]",
	Short: "Delete a document's conversation history",
	Long:  `Removes all recorded turns for the document. Chunks and the vector index are untouched.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", driving.DefaultHistoryLimit, "maximum turns to show (0 shows all)")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	turns, err := chatService.History(ctx, docID, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(turns) == 0 {
		cmd.Println("No conversation history.")
		return nil
	}

	for i := range turns {
		cmd.Printf("[%s] Q: %s\n", turns[i].CreatedAt.Format("2006-01-02 15:04"), turns[i].Question)
		cmd.Printf("A: %s\n", turns[i].Answer)
		cmd.Println()
	}

	cmd.Printf("Total: %d turns\n", len(turns))
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	if err := chatService.ClearHistory(ctx, docID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	cmd.Printf("Cleared conversation history for %s.\n", docID)
	return nil
}
