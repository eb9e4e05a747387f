// Package llm provides an abstraction over the generative-text and embedding
// backends, plus failure classification for the generation state machine.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultCallTimeout bounds every backend call.
const DefaultCallTimeout = 30 * time.Second

// SamplingConfig holds the generation sampling parameters.
type SamplingConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
}

// DefaultSampling returns the sampling configuration used for comment drafts.
func DefaultSampling() SamplingConfig {
	return SamplingConfig{
		Temperature:     0.7,
		TopP:            0.9,
		TopK:            40,
		MaxOutputTokens: 300,
	}
}

// GenerateRequest is a single generative-text call.
type GenerateRequest struct {
	SystemPrompt string
	UserPrompt   string
	ModelName    string
	Sampling     SamplingConfig
}

// Client is an abstraction over LLM providers.
type Client interface {
	// GenerateText generates text with the named model.
	GenerateText(ctx context.Context, req GenerateRequest) (string, error)
	// EmbedTexts embeds a batch of texts into fixed-length vectors.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	// Close releases any resources held by the client.
	Close() error
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client      *genai.Client
	embedModel  string
	callTimeout time.Duration
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(ctx context.Context, apiKey, embedModel string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		embedModel:  embedModel,
		callTimeout: DefaultCallTimeout,
	}, nil
}

// GenerateText generates text with the named model.
func (c *GeminiClient) GenerateText(ctx context.Context, req GenerateRequest) (string, error) {
	if req.ModelName == "" {
		return "", fmt.Errorf("model name is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	model := c.client.GenerativeModel(req.ModelName)
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}
	model.SetTemperature(req.Sampling.Temperature)
	model.SetTopP(req.Sampling.TopP)
	model.SetTopK(req.Sampling.TopK)
	model.SetMaxOutputTokens(req.Sampling.MaxOutputTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(req.UserPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// EmbedTexts embeds a batch of texts using the configured embedding model.
func (c *GeminiClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	em := c.client.EmbeddingModel(c.embedModel)
	batch := em.NewBatch()
	for _, text := range texts {
		batch = batch.AddContent(genai.Text(text))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to embed batch: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}

	return vectors, nil
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
