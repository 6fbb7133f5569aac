package routepath

import "strings"

// trailingSlash recognizes the pattern suffixes that already decide how a
// trailing slash is matched.
type trailingSlash struct {
	// Pattern is the token appended to normalized pathnames.
	Pattern string

	// Matchers are the suffixes that count as trailing-slash handling.
	Matchers []string
}

// TrailingSlash is the normalizer used by route compilation and URL building.
//
// A pathname ending in "/", "{/}" or "{/}?" already declares its trailing
// slash behavior and is never rewritten.
var TrailingSlash = trailingSlash{
	Pattern:  "{/}?",
	Matchers: []string{"/", "{/}", "{/}?"},
}

// MatchAny reports whether pathname ends with one of the matchers.
func (t trailingSlash) MatchAny(pathname string) bool {
	for _, m := range t.Matchers {
		if strings.HasSuffix(pathname, m) {
			return true
		}
	}
	return false
}

// Normalize appends Pattern to pathname unless it already ends with a
// trailing-slash token.
func (t trailingSlash) Normalize(pathname string) string {
	if t.MatchAny(pathname) {
		return pathname
	}
	return pathname + t.Pattern
}

// StripTrailingSlashToken removes a trailing "{/}?" or "{/}" group token.
// These are valid pattern syntax but not valid literal URL text. A plain
// trailing "/" is kept since it is a real path character.
func StripTrailingSlashToken(pathname string) string {
	if cut, ok := strings.CutSuffix(pathname, TrailingSlash.Pattern); ok {
		return cut
	}
	if cut, ok := strings.CutSuffix(pathname, "{/}"); ok {
		return cut
	}
	return pathname
}
