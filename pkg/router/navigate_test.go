package router

import (
	"net/url"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestBuildURL(t *testing.T) {
	base := &url.URL{Scheme: "https", Host: "example.com"}

	tests := []struct {
		name     string
		template string
		opts     URLOptions
		want     string
	}{
		{
			name:     "param substituted",
			template: "/blog/:id",
			opts:     URLOptions{Params: map[string]any{"id": 42}},
			want:     "https://example.com/blog/42",
		},
		{
			name:     "missing param keeps marker",
			template: "/blog/:id",
			want:     "https://example.com/blog/:id",
		},
		{
			name:     "nil param keeps marker",
			template: "/blog/:id",
			opts:     URLOptions{Params: map[string]any{"id": nil}},
			want:     "https://example.com/blog/:id",
		},
		{
			name:     "normalization token stripped",
			template: "/blog/:id{/}?",
			opts:     URLOptions{Params: map[string]any{"id": 7}},
			want:     "https://example.com/blog/7",
		},
		{
			name:     "required slash group stripped",
			template: "/docs{/}",
			want:     "https://example.com/docs",
		},
		{
			name:     "plain trailing slash kept",
			template: "/docs/",
			want:     "https://example.com/docs/",
		},
		{
			name:     "marker with regexp replaced whole",
			template: "/post/:id(\\d+)",
			opts:     URLOptions{Params: map[string]any{"id": 9}},
			want:     "https://example.com/post/9",
		},
		{
			name:     "several params",
			template: "/u/:user/repo/:repo",
			opts:     URLOptions{Params: map[string]any{"user": "ann", "repo": "x"}},
			want:     "https://example.com/u/ann/repo/x",
		},
		{
			name:     "param value escaped",
			template: "/tag/:name",
			opts:     URLOptions{Params: map[string]any{"name": "a b/c"}},
			want:     "https://example.com/tag/a%20b%2Fc",
		},
		{
			name:     "query with nil skipped",
			template: "/search",
			opts:     URLOptions{QueryParams: map[string]any{"q": "abc", "page": nil}},
			want:     "https://example.com/search?q=abc",
		},
		{
			name:     "query sorted",
			template: "/search",
			opts:     URLOptions{QueryParams: map[string]any{"z": 1, "a": true}},
			want:     "https://example.com/search?a=true&z=1",
		},
		{
			name:     "hash",
			template: "/docs",
			opts:     URLOptions{Hash: "install"},
			want:     "https://example.com/docs#install",
		},
		{
			name:     "hash leading mark dropped",
			template: "/docs",
			opts:     URLOptions{Hash: "#install"},
			want:     "https://example.com/docs#install",
		},
		{
			name:     "escaped hash kept",
			template: "/docs",
			opts:     URLOptions{Hash: "step%202"},
			want:     "https://example.com/docs#step%202",
		},
		{
			name:     "hash escaped",
			template: "/docs",
			opts:     URLOptions{Hash: "step 2"},
			want:     "https://example.com/docs#step%202",
		},
		{
			name:     "root",
			template: "/",
			want:     "https://example.com/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildURL(base, tt.template, tt.opts)
			if got.String() != tt.want {
				t.Errorf("BuildURL(%q) = %q, want %q", tt.template, got.String(), tt.want)
			}
		})
	}
}

func TestBuildURLPathOfMissingParam(t *testing.T) {
	u := BuildURL(mustParse(t, "https://example.com"), "/blog/:id", URLOptions{})
	if u.Path != "/blog/:id" {
		t.Errorf("Path = %q, want /blog/:id", u.Path)
	}
}

func TestBuildURLIgnoresBaseQueryAndHash(t *testing.T) {
	base := mustParse(t, "https://example.com/old?x=1#frag")
	got := BuildURL(base, "/new", URLOptions{})
	if got.String() != "https://example.com/new" {
		t.Errorf("BuildURL = %q", got.String())
	}
}

func TestBuildURLNilBase(t *testing.T) {
	got := BuildURL(nil, "/a/:b", URLOptions{Params: map[string]any{"b": "c"}})
	if got.String() != "/a/c" {
		t.Errorf("BuildURL = %q, want /a/c", got.String())
	}
}

func TestMarkerName(t *testing.T) {
	tests := map[string]string{
		"id":         "id",
		"id(\\d+)":   "id",
		"path*":      "path",
		"_x1?":       "_x1",
		"1abc":       "",
		"":           "",
		"slug-extra": "slug",
	}
	for in, want := range tests {
		if got := markerName(in); got != want {
			t.Errorf("markerName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRedirectOptionFunctions(t *testing.T) {
	opts := NewRedirectOptions(
		WithReplace(),
		WithParams(map[string]any{"id": 1}),
		WithQuery(map[string]any{"q": "x"}),
		WithHash("top"),
	)

	if !opts.Replace {
		t.Error("WithReplace should set Replace")
	}
	if opts.Params["id"] != 1 {
		t.Error("WithParams should set Params")
	}
	if opts.QueryParams["q"] != "x" {
		t.Error("WithQuery should set QueryParams")
	}
	if opts.Hash != "top" {
		t.Error("WithHash should set Hash")
	}
}
