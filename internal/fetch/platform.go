// Package fetch provides the post-fetching collaborator: platform detection,
// bounded-retry HTTP fetching, and HTML-to-text extraction.
package fetch

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/JonaN-tech/kilocode-ml-service/internal/types"
)

// DetectPlatform identifies the social platform from a post URL.
func DetectPlatform(urlStr string) types.Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return types.PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")

	switch {
	case host == "reddit.com" || strings.HasSuffix(host, ".reddit.com"):
		return types.PlatformReddit
	case host == "twitter.com" || host == "x.com" || strings.HasSuffix(host, ".twitter.com"):
		return types.PlatformTwitter
	case host == "github.com" || host == "gist.github.com":
		return types.PlatformGitHub
	case host == "news.ycombinator.com":
		return types.PlatformHackerNews
	case host == "youtube.com" || host == "youtu.be" || strings.HasSuffix(host, ".youtube.com"):
		return types.PlatformYouTube
	case strings.HasSuffix(host, ".substack.com"):
		return types.PlatformSubstack
	default:
		return types.PlatformUnknown
	}
}

var (
	redditPathRe = regexp.MustCompile(`/comments/[^/]+/([^/?#]+)`)
	subredditRe  = regexp.MustCompile(`/r/([^/?#]+)`)
)

// TitleFromRedditURL recovers a human-readable title from a Reddit URL slug.
// Returns "" when the URL carries no slug.
func TitleFromRedditURL(urlStr string) string {
	m := redditPathRe.FindStringSubmatch(urlStr)
	if m == nil {
		return ""
	}

	slug := m[1]
	slug = strings.ReplaceAll(slug, "_", " ")
	slug = strings.ReplaceAll(slug, "-", " ")
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ""
	}

	words := strings.Fields(slug)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// SubredditFromURL extracts the subreddit name from a Reddit URL, or "".
func SubredditFromURL(urlStr string) string {
	m := subredditRe.FindStringSubmatch(urlStr)
	if m == nil {
		return ""
	}
	return m[1]
}
