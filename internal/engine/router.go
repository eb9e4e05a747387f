package engine

import "github.com/JonaN-tech/kilocode-ml-service/internal/types"

// Strategy selects how much machinery a post gets.
type Strategy string

const (
	// StrategyAcknowledge answers degenerate posts with a fixed one-liner,
	// bypassing retrieval and generation entirely.
	StrategyAcknowledge Strategy = "acknowledge"
	// StrategyLightweight uses the static context pack instead of embedding
	// retrieval; always used for twitter.
	StrategyLightweight Strategy = "lightweight"
	// StrategyStandard retrieves style and doc context on the full cleaned
	// post text.
	StrategyStandard Strategy = "standard"
	// StrategyLongForm cleans, chunks, and embeds the post first, then keys
	// retrieval on the most relevant chunk.
	StrategyLongForm Strategy = "longform"
)

// Route is a pure function of (platform, content length) that dispatches a
// post to a generation strategy. Twitter never uses retrieval; short content
// stays lightweight to keep memory bounded.
func Route(post *types.NormalizedPost, shortContentMax, longContentMin int) Strategy {
	if post.IsEmpty() {
		return StrategyAcknowledge
	}
	if post.Platform == types.PlatformTwitter {
		return StrategyLightweight
	}

	contentLen := len(post.Content)
	switch {
	case contentLen < shortContentMax:
		return StrategyLightweight
	case contentLen >= longContentMin:
		return StrategyLongForm
	default:
		return StrategyStandard
	}
}

// PlatformProfile holds per-platform comment requirements.
type PlatformProfile struct {
	MinSentences int
	MaxLen       int
}

// platformProfiles captures the per-platform minimums; reddit and github
// expect more substantial comments than short-form platforms.
var platformProfiles = map[types.Platform]PlatformProfile{
	types.PlatformReddit:     {MinSentences: 3, MaxLen: 800},
	types.PlatformGitHub:     {MinSentences: 3, MaxLen: 800},
	types.PlatformHackerNews: {MinSentences: 2, MaxLen: 800},
	types.PlatformTwitter:    {MinSentences: 1, MaxLen: 280},
	types.PlatformYouTube:    {MinSentences: 2, MaxLen: 800},
	types.PlatformSubstack:   {MinSentences: 2, MaxLen: 800},
}

// ProfileFor returns the comment profile for a platform, defaulting to two
// sentences and the standard maximum.
func ProfileFor(platform types.Platform) PlatformProfile {
	if p, ok := platformProfiles[platform]; ok {
		return p
	}
	return PlatformProfile{MinSentences: 2, MaxLen: 800}
}
