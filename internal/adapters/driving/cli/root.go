// Package cli implements the command line interface for docq.
// Commands are thin adapters over the driving ports; service instances
// are injected by the composition root before Execute runs.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docq/internal/core/ports/driving"
	"github.com/custodia-labs/docq/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by the composition root. Commands check for nil so
// a partially wired binary fails with a clear message instead of a panic.
var (
	ingestService   driving.IngestService
	chatService     driving.ChatService
	documentService driving.DocumentService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docq",
	Short: "Ask questions about your PDF documents",
	Long: `docq ingests PDF documents and answers questions about their content
using retrieval over a local vector index and a local LLM via Ollama.
No document text ever leaves your machine.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
}

// SetServices injects the application services into the CLI.
func SetServices(ingest driving.IngestService, chat driving.ChatService, document driving.DocumentService) {
	ingestService = ingest
	chatService = chat
	documentService = document
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
