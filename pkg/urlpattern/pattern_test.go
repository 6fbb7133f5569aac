package urlpattern

import (
	"net/url"
	"reflect"
	"testing"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestCompileMatchesPathname(t *testing.T) {
	tests := []struct {
		name     string
		pathname string
		url      string
		match    bool
		groups   map[string]string
	}{
		{"root", "/", "https://a.test/", true, map[string]string{}},
		{"root without path", "/", "https://a.test", true, map[string]string{}},
		{"literal", "/about", "https://a.test/about", true, map[string]string{}},
		{"literal no trailing slash", "/about", "https://a.test/about/", false, nil},
		{"optional trailing slash", "/about{/}?", "https://a.test/about/", true, map[string]string{}},
		{"optional trailing slash absent", "/about{/}?", "https://a.test/about", true, map[string]string{}},
		{"named", "/blog/:id", "https://a.test/blog/42", true, map[string]string{"id": "42"}},
		{"named does not cross slash", "/blog/:id", "https://a.test/blog/4/2", false, nil},
		{"named with regexp", "/blog/:id(\\d+)", "https://a.test/blog/abc", false, nil},
		{"named with regexp match", "/blog/:id(\\d+)", "https://a.test/blog/7", true, map[string]string{"id": "7"}},
		{"anonymous regexp", "/v(\\d+)/x", "https://a.test/v2/x", true, map[string]string{"0": "2"}},
		{"wildcard", "/assets/*", "https://a.test/assets/css/app.css", true, map[string]string{"0": "css/app.css"}},
		{"optional param present", "/docs/:page?", "https://a.test/docs/intro", true, map[string]string{"page": "intro"}},
		{"optional param absent", "/docs/:page?", "https://a.test/docs", true, map[string]string{}},
		{"one or more", "/files/:path+", "https://a.test/files/a/b/c", true, map[string]string{"path": "a/b/c"}},
		{"one or more empty", "/files/:path+", "https://a.test/files", false, nil},
		{"zero or more", "/files/:path*", "https://a.test/files", true, map[string]string{}},
		{"escaped colon", "/time\\:now", "https://a.test/time:now", true, map[string]string{}},
		{"group with param", "/shop{/:cat}?", "https://a.test/shop/toys", true, map[string]string{"cat": "toys"}},
		{"encoded input kept encoded", "/tag/:name", "https://a.test/tag/a%20b", true, map[string]string{"name": "a%20b"}},
		{"case sensitive", "/About", "https://a.test/about", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(Init{Pathname: tt.pathname})
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			u := mustURL(t, tt.url)

			if got := p.Test(u); got != tt.match {
				t.Fatalf("Test = %v, want %v", got, tt.match)
			}

			res := p.Exec(u)
			if !tt.match {
				if res != nil {
					t.Fatalf("Exec should return nil, got %+v", res)
				}
				return
			}
			if res == nil {
				t.Fatal("Exec returned nil for a matching URL")
			}
			if !reflect.DeepEqual(res.Pathname.Groups, tt.groups) {
				t.Errorf("groups = %v, want %v", res.Pathname.Groups, tt.groups)
			}
		})
	}
}

func TestCompileSearchAndHash(t *testing.T) {
	p, err := Compile(Init{Pathname: "/search", Search: "q=:term", Hash: "section-:n"})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	u := mustURL(t, "https://a.test/search?q=go#section-2")
	res := p.Exec(u)
	if res == nil {
		t.Fatal("expected match")
	}
	if res.Search.Groups["term"] != "go" {
		t.Errorf("search term = %q", res.Search.Groups["term"])
	}
	if res.Hash.Groups["n"] != "2" {
		t.Errorf("hash n = %q", res.Hash.Groups["n"])
	}
	if res.Search.Input != "q=go" || res.Hash.Input != "section-2" {
		t.Errorf("inputs = %q, %q", res.Search.Input, res.Hash.Input)
	}

	if p.Test(mustURL(t, "https://a.test/search?q=go")) {
		t.Error("missing hash should not match")
	}
}

func TestCompileDefaultsMatchAnything(t *testing.T) {
	p := MustCompile(Init{Pathname: "/x"})
	if p.Search() != "*" || p.Hash() != "*" {
		t.Errorf("defaults = %q, %q", p.Search(), p.Hash())
	}
	if !p.Test(mustURL(t, "https://a.test/x?any=thing#frag")) {
		t.Error("empty search/hash templates should match anything")
	}
	if p.Pathname() != "/x" {
		t.Errorf("Pathname = %q", p.Pathname())
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []string{
		"/blog/{",
		"/blog/}",
		"/blog/:",
		"/blog/:id(",
		"/blog/:id()",
		"/:id/:id",
		"/x\\",
		"/bad/(a[)",
	}

	for _, pathname := range tests {
		if _, err := Compile(Init{Pathname: pathname}); err == nil {
			t.Errorf("Compile(%q) should fail", pathname)
		}
	}
}

func TestNilURL(t *testing.T) {
	p := MustCompile(Init{Pathname: "/"})
	if p.Test(nil) || p.Exec(nil) != nil {
		t.Error("nil URL should never match")
	}
}

func TestCompileRegexpIsCached(t *testing.T) {
	a, err := compileRegexp("^/cached$")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := compileRegexp("^/cached$")
	if a != b {
		t.Error("expected cached regexp instance")
	}
}
