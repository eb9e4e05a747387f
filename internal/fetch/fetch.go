package fetch

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/JonaN-tech/kilocode-ml-service/internal/types"
	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 10 * time.Second
	// DefaultUserAgent is the user agent string for HTTP requests.
	DefaultUserAgent = "Mozilla/5.0 (compatible; KiloCodeML/1.0)"
	// maxAttempts bounds fetch retries.
	maxAttempts = 3
	// retryBase is the backoff base between fetch attempts.
	retryBase = 500 * time.Millisecond
)

// Result holds the extracted content of a post URL. Fetching never raises:
// failures are reported through Status with whatever partial content is
// available.
type Result struct {
	URL           string
	Title         string
	Text          string
	Status        types.FetchStatus
	ContentLength int
}

// Fetcher retrieves and extracts readable text from public post URLs with
// bounded retries and a hard text cap.
type Fetcher struct {
	client  *http.Client
	textCap int
	log     *logrus.Logger
	sleep   func(time.Duration)
}

// NewFetcher creates a Fetcher. textCap bounds the extracted text length.
func NewFetcher(textCap int, log *logrus.Logger) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: DefaultTimeout},
		textCap: textCap,
		log:     log,
		sleep:   time.Sleep,
	}
}

// Fetch retrieves a post URL and extracts readable text and a title. It
// retries on timeout, HTTP 5xx, and blocked (403/429) responses, and always
// returns a Result; the Status field carries the failure category.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) Result {
	result := Result{URL: urlStr, Status: types.FetchError}

	var lastStatus types.FetchStatus
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			f.sleep(retryBase * time.Duration(1<<(attempt-1)))
		}

		html, status := f.get(ctx, urlStr)
		lastStatus = status
		if status != types.FetchSuccess {
			// Blocked, HTTP error, and timeout are worth another attempt;
			// anything else is terminal.
			if status == types.FetchBlocked || status == types.FetchHTTPError || status == types.FetchTimeout {
				continue
			}
			break
		}

		title, text := ExtractReadableText(html)
		if f.textCap > 0 && len(text) > f.textCap {
			text = text[:f.textCap]
		}

		if title == "" && DetectPlatform(urlStr) == types.PlatformReddit {
			title = TitleFromRedditURL(urlStr)
		}

		result.Title = title
		result.Text = text
		result.ContentLength = len(text)
		if text == "" {
			result.Status = types.FetchEmpty
		} else {
			result.Status = types.FetchSuccess
		}
		return result
	}

	result.Status = lastStatus
	// A blocked or failed fetch can still recover a Reddit title from the URL.
	if DetectPlatform(urlStr) == types.PlatformReddit {
		result.Title = TitleFromRedditURL(urlStr)
	}

	f.log.WithFields(logrus.Fields{
		"url":    urlStr,
		"status": result.Status,
	}).Warn("fetch_degraded")

	return result
}

// get performs one HTTP GET and maps the outcome onto a FetchStatus.
func (f *Fetcher) get(ctx context.Context, urlStr string) (string, types.FetchStatus) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", types.FetchError
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", types.FetchTimeout
		}
		return "", types.FetchError
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return "", types.FetchBlocked
	case resp.StatusCode != http.StatusOK:
		return "", types.FetchHTTPError
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", types.FetchError
	}

	return string(body), types.FetchSuccess
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout exceeded")
}

var collapseRe = regexp.MustCompile(`\s+`)

// ExtractReadableText parses HTML and returns the page title and the main
// body text with scripts, styles, and navigation chrome removed.
func ExtractReadableText(html string) (title, text string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", ""
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && og != "" {
		title = strings.TrimSpace(og)
	}

	doc.Find("script, style, noscript, nav, footer, header, .ad, .advertisement, .sidebar, .cookie-banner").Remove()

	var body *goquery.Selection
	for _, selector := range []string{"main", "article", ".content", "#content", "body"} {
		if sel := doc.Find(selector); sel.Length() > 0 {
			body = sel.First()
			break
		}
	}
	if body == nil {
		return title, ""
	}

	text = collapseRe.ReplaceAllString(body.Text(), " ")
	return title, strings.TrimSpace(text)
}
