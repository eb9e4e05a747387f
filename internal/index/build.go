package index

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/JonaN-tech/kilocode-ml-service/internal/embedding"
	"golang.org/x/sync/errgroup"
)

const (
	// docChunkChars is the target size for documentation chunks.
	docChunkChars = 1200
	// docChunkOverlap is the leading overlap carried from the previous chunk.
	docChunkOverlap = 150
	// buildConcurrency bounds parallel embedding batches during builds.
	buildConcurrency = 4
)

// Builder constructs corpora from plain input files and writes the paired
// on-disk format. Build-time only; the serving path never mutates corpora.
type Builder struct {
	embedder *embedding.Embedder
	batch    int
	dir      string
}

// NewBuilder creates a Builder that writes corpora under dir.
func NewBuilder(embedder *embedding.Embedder, batchLimit int, dir string) *Builder {
	if batchLimit <= 0 {
		batchLimit = 20
	}
	return &Builder{embedder: embedder, batch: batchLimit, dir: dir}
}

// styleRecord is one prior human-written comment in the JSONL input.
type styleRecord struct {
	CommentText string `json:"comment_text"`
	PostURL     string `json:"post_url,omitempty"`
}

// BuildStyleCorpus reads a JSONL file of prior comments, deduplicates them by
// normalized text, embeds them, and writes the "comments" corpus.
func (b *Builder) BuildStyleCorpus(ctx context.Context, jsonlPath, name string) (int, error) {
	f, err := os.Open(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open comments file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var meta []Record
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0

	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var rec styleRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return 0, fmt.Errorf("bad JSONL record at line %d: %w", line, err)
		}
		text := strings.TrimSpace(rec.CommentText)
		if text == "" {
			continue
		}

		key := strings.ToLower(whitespaceRe.ReplaceAllString(text, " "))
		if seen[key] {
			continue
		}
		seen[key] = true

		meta = append(meta, Record{
			ID:    fmt.Sprintf("comment_%04d", len(meta)),
			Title: rec.PostURL,
			Text:  text,
		})
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read comments file: %w", err)
	}
	if len(meta) == 0 {
		return 0, fmt.Errorf("no usable comments in %s", jsonlPath)
	}

	if err := b.embedAndWrite(ctx, name, meta); err != nil {
		return 0, err
	}
	return len(meta), nil
}

// BuildDocsCorpus reads a plain-text or markdown documentation file, chunks
// it, embeds the chunks, and writes the "docs" corpus.
func (b *Builder) BuildDocsCorpus(ctx context.Context, docPath, name string) (int, error) {
	data, err := os.ReadFile(docPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read documentation file: %w", err)
	}

	chunks := ChunkDocument(string(data))
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no usable text in %s", docPath)
	}

	meta := make([]Record, len(chunks))
	for i, chunk := range chunks {
		meta[i] = Record{
			ID:   fmt.Sprintf("doc_%04d", i),
			Text: chunk,
		}
	}

	if err := b.embedAndWrite(ctx, name, meta); err != nil {
		return 0, err
	}
	return len(meta), nil
}

// embedAndWrite embeds all record texts in bounded parallel batches and
// writes the corpus files.
func (b *Builder) embedAndWrite(ctx context.Context, name string, meta []Record) error {
	vectors := make([][]float32, len(meta))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(buildConcurrency)

	for start := 0; start < len(meta); start += b.batch {
		start := start
		end := start + b.batch
		if end > len(meta) {
			end = len(meta)
		}

		g.Go(func() error {
			texts := make([]string, end-start)
			for i := start; i < end; i++ {
				texts[i-start] = meta[i].Text
			}
			batch, err := b.embedder.Embed(gctx, texts)
			if err != nil {
				return fmt.Errorf("failed to embed records %d-%d: %w", start, end-1, err)
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return WriteCorpus(b.dir, name, vectors, meta)
}

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	numberedRe    = regexp.MustCompile(`\n(?:\d+\.\s)`)
	paragraphRe   = regexp.MustCompile(`\n{2,}`)
	minSplitParts = 4
)

// ChunkDocument splits documentation text into chunks of roughly
// docChunkChars characters. It first tries numbered-section boundaries,
// falls back to paragraph boundaries, merges small parts, and prefixes each
// chunk after the first with an overlap tail of its predecessor.
func ChunkDocument(text string) []string {
	parts := splitNonEmpty(numberedRe.Split(text, -1))
	if len(parts) < minSplitParts {
		parts = splitNonEmpty(paragraphRe.Split(text, -1))
	}

	// Merge parts up to the target chunk size.
	var merged []string
	var buf strings.Builder
	for _, p := range parts {
		if buf.Len()+len(p)+2 <= docChunkChars {
			if buf.Len() > 0 {
				buf.WriteString("\n\n")
			}
			buf.WriteString(p)
			continue
		}
		if buf.Len() > 0 {
			merged = append(merged, buf.String())
			buf.Reset()
		}
		buf.WriteString(p)
	}
	if buf.Len() > 0 {
		merged = append(merged, buf.String())
	}

	// Carry a tail of the previous chunk as leading overlap.
	chunks := make([]string, len(merged))
	for i, m := range merged {
		if i > 0 {
			prev := merged[i-1]
			tail := prev
			if len(prev) > docChunkOverlap {
				tail = prev[len(prev)-docChunkOverlap:]
			}
			m = strings.TrimSpace(tail + "\n\n" + m)
		}
		chunks[i] = m
	}

	return chunks
}

func splitNonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
