package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Location validation errors.
var (
	ErrInvalidLocation      = errors.New("invalid location")
	ErrCrossOrigin          = errors.New("location is on a different origin")
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
)

// ValidateLocation parses a location reported by a browser and checks it is
// safe to feed into route matching.
//
// raw may be absolute ("https://app.example/blog?x=1") or origin-relative
// ("/blog?x=1"). Relative input is resolved against base. The result must be
// on base's origin.
//
// The following inputs are rejected:
//   - unparseable URLs
//   - URLs on another scheme or host
//   - paths containing backslash (\)
//   - paths containing a NUL byte, literal or %00
//   - invalid percent-escapes (e.g., %GG, %2)
func ValidateLocation(base *url.URL, raw string) (*url.URL, error) {
	if raw == "" {
		return nil, ErrInvalidLocation
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return nil, ErrInvalidLocation
	}

	u := base.ResolveReference(ref)
	if u.Scheme != base.Scheme || u.Host != base.Host {
		return nil, ErrCrossOrigin
	}

	path := u.EscapedPath()

	// SECURITY: Reject backslash.
	if strings.Contains(path, "\\") || strings.Contains(strings.ToUpper(path), "%5C") {
		return nil, ErrBackslashInPath
	}

	// SECURITY: Reject NUL byte (both literal and encoded).
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return nil, ErrNullByteInPath
	}

	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return nil, err
		}
	}

	return u, nil
}

// validatePercentEscapes checks that all percent-escapes are valid.
// Valid escapes are %XX where X is a hex digit (0-9, a-f, A-F).
func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); {
		if path[i] != '%' {
			i++
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 3
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
