// Package index provides on-disk vector corpora (paired vector array +
// metadata records), lazy cached loading, and cosine-similarity retrieval.
package index

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// vectorsMagic identifies the binary vector file format.
const vectorsMagic = "KCVX"

// metaSchema validates corpus metadata records at load time.
const metaSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "text"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "title": {"type": "string"},
      "text": {"type": "string", "minLength": 1}
    }
  }
}`

// Record is one metadata entry paired with a stored vector.
type Record struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// Corpus is a loaded, immutable (vector, metadata) collection.
type Corpus struct {
	Name    string
	Dim     int
	Vectors [][]float32
	Meta    []Record
}

// Len returns the number of records in the corpus.
func (c *Corpus) Len() int { return len(c.Meta) }

// LoadError describes a corpus that could not be loaded.
type LoadError struct {
	Corpus  string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("index load error for %q: %s: %v", e.Corpus, e.Message, e.Cause)
	}
	return fmt.Sprintf("index load error for %q: %s", e.Corpus, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// Store loads and caches corpora from a directory. Loading is lazy-once with
// double-checked locking; loaded corpora are read lock-free thereafter.
type Store struct {
	dir string

	mu      sync.RWMutex
	corpora map[string]*Corpus
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{
		dir:     dir,
		corpora: make(map[string]*Corpus),
	}
}

// Load returns the named corpus, reading it from disk on first access.
func (s *Store) Load(name string) (*Corpus, error) {
	s.mu.RLock()
	corpus, ok := s.corpora[name]
	s.mu.RUnlock()
	if ok {
		return corpus, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if corpus, ok := s.corpora[name]; ok {
		return corpus, nil
	}

	corpus, err := s.read(name)
	if err != nil {
		return nil, err
	}
	s.corpora[name] = corpus
	return corpus, nil
}

// read loads a corpus from its paired files and checks the count invariant.
func (s *Store) read(name string) (*Corpus, error) {
	vectors, dim, err := readVectors(s.vectorsPath(name))
	if err != nil {
		return nil, &LoadError{Corpus: name, Message: "failed to read vectors", Cause: err}
	}

	meta, err := readMeta(s.metaPath(name))
	if err != nil {
		return nil, &LoadError{Corpus: name, Message: "failed to read metadata", Cause: err}
	}

	if len(vectors) != len(meta) {
		return nil, &LoadError{
			Corpus:  name,
			Message: fmt.Sprintf("vector/metadata count mismatch: %d vectors, %d records", len(vectors), len(meta)),
		}
	}

	return &Corpus{Name: name, Dim: dim, Vectors: vectors, Meta: meta}, nil
}

func (s *Store) vectorsPath(name string) string {
	return filepath.Join(s.dir, name+"_vectors.bin")
}

func (s *Store) metaPath(name string) string {
	return filepath.Join(s.dir, name+"_meta.json")
}

// readVectors reads the binary vector file: magic, uint32 dim, uint32 count,
// then count*dim little-endian float32 values.
func readVectors(path string) ([][]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = f.Close() }()

	magic := make([]byte, 4)
	if _, err := f.Read(magic); err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}
	if string(magic) != vectorsMagic {
		return nil, 0, fmt.Errorf("bad magic %q", string(magic))
	}

	var dim, count uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return nil, 0, fmt.Errorf("failed to read dimension: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &count); err != nil {
		return nil, 0, fmt.Errorf("failed to read count: %w", err)
	}
	if dim == 0 {
		return nil, 0, fmt.Errorf("zero vector dimension")
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		vec := make([]float32, dim)
		if err := binary.Read(f, binary.LittleEndian, &vec); err != nil {
			return nil, 0, fmt.Errorf("failed to read vector %d: %w", i, err)
		}
		vectors[i] = vec
	}

	return vectors, int(dim), nil
}

// readMeta reads and schema-validates the metadata record list.
func readMeta(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(metaSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("invalid metadata: %v", result.Errors()[0])
	}

	var meta []Record
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	return meta, nil
}

// WriteCorpus writes the paired corpus files for name under dir. Used by the
// offline index builder and by tests.
func WriteCorpus(dir, name string, vectors [][]float32, meta []Record) error {
	if len(vectors) != len(meta) {
		return fmt.Errorf("vector/metadata count mismatch: %d vectors, %d records", len(vectors), len(meta))
	}
	if len(vectors) == 0 {
		return fmt.Errorf("refusing to write empty corpus %q", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index dir: %w", err)
	}

	dim := len(vectors[0])
	f, err := os.Create(filepath.Join(dir, name+"_vectors.bin"))
	if err != nil {
		return fmt.Errorf("failed to create vectors file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write([]byte(vectorsMagic)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(dim)); err != nil {
		return fmt.Errorf("failed to write dimension: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(vectors))); err != nil {
		return fmt.Errorf("failed to write count: %w", err)
	}
	for i, vec := range vectors {
		if len(vec) != dim {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(vec), dim)
		}
		if err := binary.Write(f, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("failed to write vector %d: %w", i, err)
		}
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+"_meta.json"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}
