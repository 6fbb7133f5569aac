package urlpattern

import (
	"maps"
	"net/url"
	"regexp"
)

// Init holds the template strings for each matched URL component.
// Empty fields default to "*" (match anything).
type Init struct {
	Pathname string
	Search   string
	Hash     string
}

// ComponentResult is the match of one URL component.
type ComponentResult struct {
	// Input is the component text that was matched.
	Input string

	// Groups maps group names to captured text. Optional groups that did not
	// participate in the match are absent.
	Groups map[string]string
}

// Result is the outcome of a successful Exec.
type Result struct {
	Pathname ComponentResult
	Search   ComponentResult
	Hash     ComponentResult
}

// Clone returns a copy of r whose group maps can be modified freely.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	c := *r
	c.Pathname.Groups = maps.Clone(r.Pathname.Groups)
	c.Search.Groups = maps.Clone(r.Search.Groups)
	c.Hash.Groups = maps.Clone(r.Hash.Groups)
	return &c
}

// Pattern is a compiled matcher, the capability route tables are built on.
type Pattern interface {
	// Test reports whether u matches every component of the pattern.
	Test(u *url.URL) bool

	// Exec matches u and returns its captures, or nil when u does not match.
	Exec(u *url.URL) *Result

	// Pathname returns the pathname template the pattern was built from.
	Pathname() string

	// Search returns the search template the pattern was built from.
	Search() string

	// Hash returns the hash template the pattern was built from.
	Hash() string
}

// Compiler builds Patterns. Compile is the implementation shipped with this
// package; callers may supply their own.
type Compiler func(Init) (Pattern, error)

// component is one compiled URL component.
type component struct {
	template string
	re       *regexp.Regexp
	// names maps regexp group names (g0, g1, ...) to pattern group names.
	names map[string]string
}

// match returns the component's groups, or ok=false.
func (c *component) match(input string) (ComponentResult, bool) {
	idx := c.re.FindStringSubmatchIndex(input)
	if idx == nil {
		return ComponentResult{}, false
	}

	groups := make(map[string]string, len(c.names))
	for i, sub := range c.re.SubexpNames() {
		name, ok := c.names[sub]
		if !ok {
			continue
		}
		start, end := idx[2*i], idx[2*i+1]
		if start < 0 {
			continue
		}
		groups[name] = input[start:end]
	}
	return ComponentResult{Input: input, Groups: groups}, true
}

// pattern is the Pattern produced by Compile.
type pattern struct {
	pathname component
	search   component
	hash     component
}

// Compile compiles init into a Pattern. It satisfies Compiler.
func Compile(init Init) (Pattern, error) {
	pathname, err := compileComponent(init.Pathname, kindPathname)
	if err != nil {
		return nil, err
	}
	search, err := compileComponent(init.Search, kindSearch)
	if err != nil {
		return nil, err
	}
	hash, err := compileComponent(init.Hash, kindHash)
	if err != nil {
		return nil, err
	}
	return &pattern{pathname: pathname, search: search, hash: hash}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(init Init) Pattern {
	p, err := Compile(init)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *pattern) Test(u *url.URL) bool {
	if u == nil {
		return false
	}
	return p.pathname.re.MatchString(pathnameInput(u)) &&
		p.search.re.MatchString(u.RawQuery) &&
		p.hash.re.MatchString(u.EscapedFragment())
}

func (p *pattern) Exec(u *url.URL) *Result {
	if u == nil {
		return nil
	}
	pathname, ok := p.pathname.match(pathnameInput(u))
	if !ok {
		return nil
	}
	search, ok := p.search.match(u.RawQuery)
	if !ok {
		return nil
	}
	hash, ok := p.hash.match(u.EscapedFragment())
	if !ok {
		return nil
	}
	return &Result{Pathname: pathname, Search: search, Hash: hash}
}

func (p *pattern) Pathname() string { return p.pathname.template }
func (p *pattern) Search() string   { return p.search.template }
func (p *pattern) Hash() string     { return p.hash.template }

// pathnameInput returns the escaped path the way a browser reports it:
// an absolute URL with no path has pathname "/".
func pathnameInput(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" && u.Host != "" {
		return "/"
	}
	return p
}
