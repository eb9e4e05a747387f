package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JonaN-tech/kilocode-ml-service/internal/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestFetcher(textCap int) (*Fetcher, *[]time.Duration) {
	f := NewFetcher(textCap, quietLogger())
	var sleeps []time.Duration
	f.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return f, &sleeps
}

const testPage = `<html>
<head>
  <title>Fallback Title</title>
  <meta property="og:title" content="OG Title">
</head>
<body>
  <nav>Navigation junk</nav>
  <script>var x = 1;</script>
  <article>The main article body with useful content.</article>
  <footer>Footer junk</footer>
</body>
</html>`

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, testPage)
	}))
	defer srv.Close()

	f, sleeps := newTestFetcher(8000)
	result := f.Fetch(context.Background(), srv.URL)

	assert.Equal(t, types.FetchSuccess, result.Status)
	assert.Equal(t, "OG Title", result.Title)
	assert.Contains(t, result.Text, "main article body")
	assert.NotContains(t, result.Text, "Navigation junk")
	assert.NotContains(t, result.Text, "var x = 1")
	assert.Equal(t, len(result.Text), result.ContentLength)
	assert.Empty(t, *sleeps)
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, testPage)
	}))
	defer srv.Close()

	f, sleeps := newTestFetcher(8000)
	result := f.Fetch(context.Background(), srv.URL)

	assert.Equal(t, types.FetchSuccess, result.Status)
	assert.Equal(t, int32(2), attempts.Load())
	require.Len(t, *sleeps, 1)
	assert.Equal(t, 500*time.Millisecond, (*sleeps)[0])
}

func TestFetch_BlockedAfterAllAttempts(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f, _ := newTestFetcher(8000)
	result := f.Fetch(context.Background(), srv.URL)

	assert.Equal(t, types.FetchBlocked, result.Status)
	assert.Equal(t, int32(3), attempts.Load())
	assert.Empty(t, result.Text)
}

func TestFetch_RateLimitedIsBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f, _ := newTestFetcher(8000)
	result := f.Fetch(context.Background(), srv.URL)
	assert.Equal(t, types.FetchBlocked, result.Status)
}

func TestFetch_EmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head><title>Empty</title></head><body></body></html>`)
	}))
	defer srv.Close()

	f, _ := newTestFetcher(8000)
	result := f.Fetch(context.Background(), srv.URL)

	assert.Equal(t, types.FetchEmpty, result.Status)
	assert.Equal(t, "Empty", result.Title)
}

func TestFetch_EnforcesTextCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "<html><body><article>%s</article></body></html>", strings.Repeat("word ", 1000))
	}))
	defer srv.Close()

	f, _ := newTestFetcher(100)
	result := f.Fetch(context.Background(), srv.URL)

	assert.Equal(t, types.FetchSuccess, result.Status)
	assert.LessOrEqual(t, len(result.Text), 100)
}

func TestFetch_UnreachableHost(t *testing.T) {
	f, _ := newTestFetcher(8000)
	result := f.Fetch(context.Background(), "http://127.0.0.1:1/nothing")
	assert.NotEqual(t, types.FetchSuccess, result.Status)
}

func TestExtractReadableText_FallsBackToTitleTag(t *testing.T) {
	title, text := ExtractReadableText(`<html><head><title>Just Title</title></head><body><main>content here</main></body></html>`)
	assert.Equal(t, "Just Title", title)
	assert.Equal(t, "content here", text)
}

func TestExtractReadableText_Garbage(t *testing.T) {
	title, text := ExtractReadableText("not html at all")
	assert.Empty(t, title)
	assert.Equal(t, "not html at all", text)
}
