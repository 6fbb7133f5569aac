package urlpattern

import (
	"regexp"
	"sync"
)

// regexpCache caches compiled regular expressions by source string.
// The number of unique sources is bounded by the route tables in use, so the
// cache grows to a fixed size and stays there.
var regexpCache sync.Map

// compileRegexp returns a cached *regexp.Regexp for the given source,
// compiling and caching it on first use.
func compileRegexp(src string) (*regexp.Regexp, error) {
	if v, ok := regexpCache.Load(src); ok {
		return v.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(src)
	if err != nil {
		return nil, err
	}

	actual, _ := regexpCache.LoadOrStore(src, re)
	return actual.(*regexp.Regexp), nil
}
