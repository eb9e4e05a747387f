package textutil

import "strings"

const (
	// DefaultChunkChars is the target characters per chunk
	DefaultChunkChars = 1000
	// DefaultChunkOverlap is the character overlap between adjacent chunks
	DefaultChunkOverlap = 150
	// DefaultMaxChunks bounds the number of chunks produced per post
	DefaultMaxChunks = 12
)

// Chunk splits cleaned text into overlapping chunks for incremental
// embedding. Chunk boundaries prefer sentence endings within the last 100
// characters of the target size.
func Chunk(text string, chunkChars, overlap, maxChunks int) []string {
	if text == "" {
		return nil
	}
	if chunkChars <= 0 {
		chunkChars = DefaultChunkChars
	}
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	if len(text) <= chunkChars {
		return []string{text}
	}

	var chunks []string
	start := 0

	for start < len(text) && len(chunks) < maxChunks {
		end := start + chunkChars
		if end >= len(text) {
			// Final window: emit the tail once and stop.
			if chunk := strings.TrimSpace(text[start:]); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		// Prefer a sentence boundary near the end of the window.
		window := text[start:end]
		lastStop := lastSentenceStop(window)
		if lastStop > chunkChars-100 {
			end = start + lastStop + 1
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// lastSentenceStop returns the index of the last '.', '!' or '?' in s, or -1.
func lastSentenceStop(s string) int {
	best := -1
	for _, stop := range []string{".", "!", "?"} {
		if idx := strings.LastIndex(s, stop); idx > best {
			best = idx
		}
	}
	return best
}
