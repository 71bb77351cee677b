package poller

import (
	"strings"

	"github.com/samber/lo"
)

// DefaultKeywords mark a window as video related.
var DefaultKeywords = []string{"YouTube", "Netflix", "Vimeo", "Twitch", "Video"}

// Classifier decides whether a window shows video.
type Classifier struct {
	keywords []string
}

// NewClassifier matches case-insensitively against keywords. Blank entries are ignored.
func NewClassifier(keywords []string) Classifier {
	lowered := lo.Compact(lo.Map(keywords, func(k string, _ int) string {
		return strings.ToLower(strings.TrimSpace(k))
	}))
	return Classifier{keywords: lo.Uniq(lowered)}
}

// IsVideo reports whether any keyword is a substring of the title or the app name.
func (c Classifier) IsVideo(w Window) bool {
	title := strings.ToLower(w.Title)
	app := strings.ToLower(w.App)

	return lo.SomeBy(c.keywords, func(k string) bool {
		return strings.Contains(title, k) || strings.Contains(app, k)
	})
}

// Keywords returns the normalized keyword list.
func (c Classifier) Keywords() []string {
	return c.keywords
}
