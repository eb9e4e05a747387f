package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCorpusLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	vectors := [][]float32{{1, 0}, {0, 1}}
	meta := []Record{
		{ID: "a", Title: "First", Text: "first record"},
		{ID: "b", Text: "second record"},
	}
	require.NoError(t, WriteCorpus(dir, "docs", vectors, meta))

	corpus, err := NewStore(dir).Load("docs")
	require.NoError(t, err)
	assert.Equal(t, "docs", corpus.Name)
	assert.Equal(t, 2, corpus.Dim)
	assert.Equal(t, 2, corpus.Len())
	assert.Equal(t, vectors, corpus.Vectors)
	assert.Equal(t, meta, corpus.Meta)
}

func TestLoad_MissingCorpus(t *testing.T) {
	_, err := NewStore(t.TempDir()).Load("absent")
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "absent", loadErr.Corpus)
}

func TestLoad_CountMismatch(t *testing.T) {
	dir := t.TempDir()
	vectors := [][]float32{{1, 0}, {0, 1}}
	meta := []Record{
		{ID: "a", Text: "first"},
		{ID: "b", Text: "second"},
	}
	require.NoError(t, WriteCorpus(dir, "docs", vectors, meta))

	// Truncate the metadata to break the pairing invariant.
	short := `[{"id": "a", "text": "first"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs_meta.json"), []byte(short), 0o644))

	_, err := NewStore(dir).Load("docs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}

func TestLoad_RejectsInvalidMetadata(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteCorpus(dir, "docs", [][]float32{{1}}, []Record{{ID: "a", Text: "x"}}))

	// Schema requires a non-empty text on every record.
	bad := `[{"id": "a"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs_meta.json"), []byte(bad), 0o644))

	_, err := NewStore(dir).Load("docs")
	assert.Error(t, err)
}

func TestLoad_RejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs_vectors.bin"), []byte("NOPEgarbage"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs_meta.json"), []byte(`[{"id":"a","text":"x"}]`), 0o644))

	_, err := NewStore(dir).Load("docs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "magic")
}

func TestLoad_CachesCorpus(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteCorpus(dir, "docs", [][]float32{{1}}, []Record{{ID: "a", Text: "x"}}))

	store := NewStore(dir)
	first, err := store.Load("docs")
	require.NoError(t, err)

	// Deleting the files must not matter once the corpus is cached.
	require.NoError(t, os.Remove(filepath.Join(dir, "docs_vectors.bin")))
	second, err := store.Load("docs")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestWriteCorpus_RejectsMismatch(t *testing.T) {
	err := WriteCorpus(t.TempDir(), "docs", [][]float32{{1}}, nil)
	assert.Error(t, err)
}

func TestWriteCorpus_RejectsEmpty(t *testing.T) {
	err := WriteCorpus(t.TempDir(), "docs", nil, nil)
	assert.Error(t, err)
}
