// Package urlpattern compiles URL patterns into matchers for the pathname,
// search and hash components of a URL.
//
// It implements the subset of the WHATWG URLPattern syntax that route tables
// use:
//
//	/blog            literal text
//	/blog/:id        named segment, matches one path segment
//	/file/:id(\d+)   named segment with a custom regular expression
//	/(\d+)           anonymous regular expression group, named "0", "1", ...
//	/assets/*        wildcard, matches anything including "/"
//	/blog{/}?        group; "?" makes it optional
//	/docs/:path*     modifiers ?, * and + on segments; in pathnames a
//	                 preceding "/" becomes part of the optional part
//	\:               escapes the next character
//
// A component left empty in Init matches anything.
//
// Example:
//
//	p, err := urlpattern.Compile(urlpattern.Init{Pathname: "/blog/:id{/}?"})
//	if err != nil {
//	    return err
//	}
//	u, _ := url.Parse("https://app.example/blog/42/")
//	res := p.Exec(u) // res.Pathname.Groups["id"] == "42"
package urlpattern
