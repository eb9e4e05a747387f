package main

import (
	"context"
	"fmt"
	"os"

	"github.com/JonaN-tech/kilocode-ml-service/internal/config"
	"github.com/JonaN-tech/kilocode-ml-service/internal/embedding"
	"github.com/JonaN-tech/kilocode-ml-service/internal/engine"
	"github.com/JonaN-tech/kilocode-ml-service/internal/index"
	"github.com/JonaN-tech/kilocode-ml-service/internal/llm"
	"github.com/spf13/cobra"
)

var buildIndexCmd = &cobra.Command{
	Use:   "build-index",
	Short: "Build the on-disk vector corpora",
	Long:  "Embeds a JSONL file of prior comments and a documentation file into the binary vector corpora consumed by the retrieval layer.",
	RunE:  runBuildIndex,
}

var (
	buildIndexComments string
	buildIndexDocs     string
	buildIndexOutDir   string
	buildIndexAPIKey   string
)

func init() {
	buildIndexCmd.Flags().StringVar(&buildIndexComments, "comments", "", "JSONL file of prior comments (one {\"comment_text\": ...} per line)")
	buildIndexCmd.Flags().StringVar(&buildIndexDocs, "docs", "", "Plain-text or markdown documentation file")
	buildIndexCmd.Flags().StringVarP(&buildIndexOutDir, "out", "o", "data", "Output directory for corpus files")
	buildIndexCmd.Flags().StringVar(&buildIndexAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	rootCmd.AddCommand(buildIndexCmd)
}

func runBuildIndex(_ *cobra.Command, _ []string) error {
	if buildIndexComments == "" && buildIndexDocs == "" {
		return fmt.Errorf("at least one of --comments or --docs is required")
	}

	apiKey := buildIndexAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("API key required: set --api-key flag or GEMINI_API_KEY environment variable")
	}

	if err := os.MkdirAll(buildIndexOutDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", buildIndexOutDir, err)
	}

	cfg := config.Default()

	ctx := context.Background()
	client, err := llm.NewGeminiClient(ctx, apiKey, cfg.EmbedModel)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close()

	embedder := embedding.New(client, cfg.EmbedBatchLimit)
	builder := index.NewBuilder(embedder, cfg.EmbedBatchLimit, buildIndexOutDir)

	if buildIndexComments != "" {
		n, err := builder.BuildStyleCorpus(ctx, buildIndexComments, engine.CorpusStyle)
		if err != nil {
			return fmt.Errorf("failed to build style corpus: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stdout, "Style corpus: %d entries\n", n)
	}

	if buildIndexDocs != "" {
		n, err := builder.BuildDocsCorpus(ctx, buildIndexDocs, engine.CorpusDocs)
		if err != nil {
			return fmt.Errorf("failed to build docs corpus: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stdout, "Docs corpus: %d chunks\n", n)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Corpora written to %s\n", buildIndexOutDir)
	return nil
}
