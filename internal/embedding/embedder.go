// Package embedding provides batched text embedding with L2 normalization
// and a content-hash cache shared across requests.
package embedding

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
	"sync"
)

// Backend is the embedding primitive consumed by the Embedder. The llm
// package provides the Gemini-backed implementation.
type Backend interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Embedder batches embedding requests, normalizes the resulting vectors, and
// caches them by content hash. Safe for concurrent use; cache insertion may
// race harmlessly (last write wins).
type Embedder struct {
	backend    Backend
	batchLimit int

	mu    sync.RWMutex
	cache map[[sha256.Size]byte][]float32
}

// New creates an Embedder over the given backend. batchLimit bounds the
// number of texts sent per backend call.
func New(backend Backend, batchLimit int) *Embedder {
	if batchLimit <= 0 {
		batchLimit = 20
	}
	return &Embedder{
		backend:    backend,
		batchLimit: batchLimit,
		cache:      make(map[[sha256.Size]byte][]float32),
	}
}

// Embed returns one normalized vector per input text, in input order.
// Cached texts are not re-sent to the backend.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	result := make([][]float32, len(texts))

	// Resolve cache hits and collect misses.
	var missTexts []string
	var missIndexes []int
	e.mu.RLock()
	for i, text := range texts {
		if vec, ok := e.cache[sha256.Sum256([]byte(text))]; ok {
			result[i] = vec
		} else {
			missTexts = append(missTexts, text)
			missIndexes = append(missIndexes, i)
		}
	}
	e.mu.RUnlock()

	// Embed misses in bounded batches.
	for start := 0; start < len(missTexts); start += e.batchLimit {
		end := start + e.batchLimit
		if end > len(missTexts) {
			end = len(missTexts)
		}

		vectors, err := e.backend.EmbedTexts(ctx, missTexts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch failed: %w", err)
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("embedding batch size mismatch: got %d, want %d", len(vectors), end-start)
		}

		for j, vec := range vectors {
			normalized := Normalize(vec)
			idx := missIndexes[start+j]
			result[idx] = normalized

			e.mu.Lock()
			e.cache[sha256.Sum256([]byte(missTexts[start+j]))] = normalized
			e.mu.Unlock()
		}
	}

	return result, nil
}

// EmbedOne embeds a single text.
func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// CacheSize reports the number of cached vectors.
func (e *Embedder) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

// Normalize returns the L2-normalized copy of vec. A zero vector is returned
// unchanged.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}

	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = v / norm
	}
	return out
}

// Cosine computes the cosine similarity of two normalized vectors. Vectors of
// different lengths score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
