package pitch

import (
	"net/url"
	"strings"
)

// Locator derives backend resource URLs from a base location. It holds no
// session state; every method is a pure string composition.
type Locator struct {
	base string
}

// NewLocator returns a locator rooted at baseURL with trailing slashes removed.
func NewLocator(baseURL string) Locator {
	return Locator{base: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// Base returns the normalized base location.
func (l Locator) Base() string {
	return l.base
}

// Endpoint joins escaped path segments onto the base. A trailing empty
// segment produces a trailing slash.
func (l Locator) Endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = url.PathEscape(segment)
	}
	return l.base + "/" + strings.Join(escaped, "/")
}

// MasterDocument returns the viewer URL for the pitch's master document.
func (l Locator) MasterDocument(pitchID string) string {
	return l.Endpoint(pitchID, "master_doc")
}

// Video returns the URL of a named rendered video asset.
func (l Locator) Video(pitchID, name string) string {
	return l.Endpoint("pitch_video", pitchID, name)
}

// Streaming returns the streaming URL for the pitch.
func (l Locator) Streaming(pitchID string) string {
	return l.Endpoint(pitchID, "streaming")
}
