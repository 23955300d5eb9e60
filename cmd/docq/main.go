// Command docq ingests PDF documents and answers questions about them
// using a local Ollama instance. All wiring of adapters to services
// happens here; the packages below know nothing about each other.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docq/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docq/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/docq/internal/adapters/driven/extractor/unipdf"
	ollamallm "github.com/custodia-labs/docq/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/docq/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docq/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/docq/internal/adapters/driving/cli"
	"github.com/custodia-labs/docq/internal/core/ports/driven"
	"github.com/custodia-labs/docq/internal/core/services"
	"github.com/custodia-labs/docq/internal/logger"
	"github.com/custodia-labs/docq/internal/postprocessors"
)

// Populated at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for things like UNIDOC_LICENSE_KEY; absence is fine
	_ = godotenv.Load()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	var promptStore driven.PromptStore
	if ps, err := file.NewPromptStore(""); err != nil {
		logger.Warn("prompt store unavailable, using built-in prompts: %v", err)
	} else {
		promptStore = ps
	}

	store, err := sqlite.NewStore(configStore.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	indexStore, err := flat.NewStore(configStore.GetString("storage.index_dir"))
	if err != nil {
		return fmt.Errorf("init vector index store: %w", err)
	}
	defer indexStore.Close()

	extractor := unipdf.NewExtractor()

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	chunkerCfg := map[string]any{}
	if size := configStore.GetInt("chunker.size"); size > 0 {
		chunkerCfg["chunk_size"] = size
	}
	if overlap, ok := configStore.Get("chunker.overlap"); ok {
		chunkerCfg["overlap"] = overlap
	}
	chunkerProc, err := registry.Build("chunker", chunkerCfg)
	if err != nil {
		return fmt.Errorf("init chunker: %w", err)
	}
	pipeline := postprocessors.NewPipeline(chunkerProc)

	embedder := ollama.NewEmbeddingService(ollama.Config{
		BaseURL:    configStore.GetString("ollama.base_url"),
		Model:      configStore.GetString("embedding.model"),
		Dimensions: configStore.GetInt("embedding.dimensions"),
	})
	defer embedder.Close()

	llm := ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: configStore.GetString("ollama.base_url"),
		Model:   configStore.GetString("llm.model"),
	})
	defer llm.Close()

	ingestService := services.NewIngestService(extractor, pipeline, embedder, indexStore, store.DocumentStore())
	chatService := services.NewChatService(store.DocumentStore(), store.ChatStore(), embedder, llm, indexStore, promptStore)
	documentService := services.NewDocumentService(store.DocumentStore(), indexStore)

	cli.SetServices(ingestService, chatService, documentService)
	cli.SetPingTargets(embedder, llm)
	cli.SetVersion(version)

	return cli.Execute()
}
