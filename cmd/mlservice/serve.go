package main

import (
	"context"
	"fmt"

	"github.com/JonaN-tech/kilocode-ml-service/internal/config"
	"github.com/JonaN-tech/kilocode-ml-service/internal/embedding"
	"github.com/JonaN-tech/kilocode-ml-service/internal/engine"
	"github.com/JonaN-tech/kilocode-ml-service/internal/fetch"
	"github.com/JonaN-tech/kilocode-ml-service/internal/index"
	"github.com/JonaN-tech/kilocode-ml-service/internal/llm"
	"github.com/JonaN-tech/kilocode-ml-service/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	serveConfigPath string
	servePort       int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the comment-generation HTTP server",
	Long:  `Start an HTTP server exposing the comment-generation endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "Path to JSON config file")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	ctx := context.Background()
	client, err := llm.NewGeminiClient(ctx, cfg.APIKey, cfg.EmbedModel)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close()

	embedder := embedding.New(client, cfg.EmbedBatchLimit)
	store := index.NewStore(cfg.IndexDir)
	retriever := index.NewRetriever(store, embedder, log)
	service := engine.NewService(cfg, log, client, embedder, retriever)
	fetcher := fetch.NewFetcher(cfg.FetchTextCap, log)

	srv := server.New(cfg, log, service, fetcher)
	return srv.Start()
}
