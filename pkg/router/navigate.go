package router

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/vango-dev/histroute/pkg/routepath"
)

// URLOptions are the values substituted into a route's pathname template.
type URLOptions struct {
	// Params fill ":name" segments. A nil value leaves the marker in place.
	Params map[string]any `json:"params,omitempty"`

	// QueryParams are set on the query string. Nil values are skipped.
	QueryParams map[string]any `json:"query,omitempty"`

	// Hash is the fragment, with or without a leading "#".
	Hash string `json:"hash,omitempty"`
}

// RedirectOptions configure a programmatic navigation.
type RedirectOptions struct {
	URLOptions

	// Replace replaces the current history entry instead of pushing.
	Replace bool `json:"replace,omitempty"`
}

// RedirectOption is a functional option for RedirectOptions.
type RedirectOption func(*RedirectOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() RedirectOption {
	return func(o *RedirectOptions) {
		o.Replace = true
	}
}

// WithParams sets the pathname parameters.
func WithParams(params map[string]any) RedirectOption {
	return func(o *RedirectOptions) {
		o.Params = params
	}
}

// WithQuery sets the query parameters.
func WithQuery(query map[string]any) RedirectOption {
	return func(o *RedirectOptions) {
		o.QueryParams = query
	}
}

// WithHash sets the fragment.
func WithHash(hash string) RedirectOption {
	return func(o *RedirectOptions) {
		o.Hash = hash
	}
}

// NewRedirectOptions applies opts to zero RedirectOptions.
func NewRedirectOptions(opts ...RedirectOption) RedirectOptions {
	var o RedirectOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// BuildURL builds an absolute URL from a pathname template.
//
// A trailing "{/}?" or "{/}" token is dropped. Every path segment that
// starts with ":" is a parameter marker named by the identifier after the
// colon; when opts.Params holds a non-nil value for that name the whole
// segment is replaced by the value's string form, otherwise the marker is
// kept literally. The path is resolved against base, query parameters are
// set in key order and a non-empty Hash becomes the fragment.
//
// BuildURL never fails: a template that does not parse as a reference
// yields base with the query and fragment applied.
func BuildURL(base *url.URL, pathTemplate string, opts URLOptions) *url.URL {
	path := routepath.StripTrailingSlashToken(pathTemplate)

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		name := markerName(seg[1:])
		if name == "" {
			continue
		}
		v, ok := opts.Params[name]
		if !ok || v == nil {
			continue
		}
		segments[i] = url.PathEscape(fmt.Sprint(v))
	}
	path = strings.Join(segments, "/")

	u := resolve(base, path)

	if len(opts.QueryParams) > 0 {
		keys := make([]string, 0, len(opts.QueryParams))
		for k := range opts.QueryParams {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		q := u.Query()
		for _, k := range keys {
			v := opts.QueryParams[k]
			if v == nil {
				continue
			}
			q.Set(k, fmt.Sprint(v))
		}
		u.RawQuery = q.Encode()
	}

	if hash := strings.TrimPrefix(opts.Hash, "#"); hash != "" {
		u.Fragment, u.RawFragment = hash, ""
		if decoded, err := url.PathUnescape(hash); err == nil {
			u.Fragment, u.RawFragment = decoded, hash
		}
	}

	return u
}

// markerName returns the leading identifier of s.
func markerName(s string) string {
	for i, r := range s {
		if r == '_' || r == '$' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' ||
			i > 0 && r >= '0' && r <= '9' || r > 0x7f {
			continue
		}
		return s[:i]
	}
	return s
}

// resolve resolves path against base. A nil base yields a relative URL.
func resolve(base *url.URL, path string) *url.URL {
	ref, err := url.Parse(path)
	if err != nil {
		ref = &url.URL{Path: path}
	}
	if base == nil {
		return ref
	}
	return base.ResolveReference(ref)
}
