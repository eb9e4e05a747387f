// Package types defines the shared data structures flowing through the
// comment-generation pipeline.
package types

// Platform represents a known social-media platform.
type Platform string

const (
	// PlatformReddit is reddit.com
	PlatformReddit Platform = "reddit"
	// PlatformTwitter is twitter.com / x.com
	PlatformTwitter Platform = "twitter"
	// PlatformGitHub is github.com (issues and discussions)
	PlatformGitHub Platform = "github"
	// PlatformHackerNews is news.ycombinator.com
	PlatformHackerNews Platform = "hackernews"
	// PlatformYouTube is youtube.com
	PlatformYouTube Platform = "youtube"
	// PlatformSubstack is *.substack.com
	PlatformSubstack Platform = "substack"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// FetchStatus describes the outcome of fetching a post URL.
type FetchStatus string

const (
	// FetchSuccess means readable text was extracted
	FetchSuccess FetchStatus = "success"
	// FetchHTTPError means the server returned a non-success status
	FetchHTTPError FetchStatus = "http_error"
	// FetchTimeout means the request exceeded its deadline
	FetchTimeout FetchStatus = "timeout"
	// FetchBlocked means the server refused the request (403/429)
	FetchBlocked FetchStatus = "blocked"
	// FetchEmpty means the page yielded no readable text
	FetchEmpty FetchStatus = "empty"
	// FetchError is any other failure
	FetchError FetchStatus = "error"
)

// NormalizedPost is a platform-normalized social-media post handed to the
// pipeline. It is immutable once constructed.
type NormalizedPost struct {
	ID          string
	Platform    Platform
	Title       string
	Content     string
	URL         string
	FetchStatus FetchStatus
}

// IsEmpty reports whether the post carries no usable text at all.
func (p *NormalizedPost) IsEmpty() bool {
	return p.Title == "" && p.Content == ""
}
