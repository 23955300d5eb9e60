package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

// pinger is the slice of the model services the ping command needs.
type pinger interface {
	Ping(ctx context.Context) error
	ModelName() string
}

var (
	embeddingPinger pinger
	llmPinger       pinger
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the model backends are reachable",
	Long:  `Sends a lightweight request to the embedding and LLM backends and reports whether each responded.`,
	Args:  cobra.NoArgs,
	RunE:  runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

// SetPingTargets injects the model services the ping command checks.
func SetPingTargets(embedding, llm pinger) {
	embeddingPinger = embedding
	llmPinger = llm
}

func runPing(cmd *cobra.Command, _ []string) error {
	if embeddingPinger == nil || llmPinger == nil {
		return errors.New("model services not configured")
	}

	ctx := context.Background()
	failed := false

	if err := embeddingPinger.Ping(ctx); err != nil {
		cmd.Printf("embedding (%s): unreachable: %v\n", embeddingPinger.ModelName(), err)
		failed = true
	} else {
		cmd.Printf("embedding (%s): ok\n", embeddingPinger.ModelName())
	}

	if err := llmPinger.Ping(ctx); err != nil {
		cmd.Printf("llm (%s): unreachable: %v\n", llmPinger.ModelName(), err)
		failed = true
	} else {
		cmd.Printf("llm (%s): ok\n", llmPinger.ModelName())
	}

	if failed {
		return errors.New("one or more backends unreachable")
	}
	return nil
}
