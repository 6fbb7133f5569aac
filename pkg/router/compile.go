package router

import (
	"github.com/vango-dev/histroute/internal/errors"
	"github.com/vango-dev/histroute/pkg/routepath"
	"github.com/vango-dev/histroute/pkg/urlpattern"
)

// Compile builds one CompiledRoute per table entry, in declaration order.
//
// A route with normalization enabled whose pathname does not already end in
// a trailing-slash token gets "{/}?" appended, so "/about" matches both
// "/about" and "/about/".
func Compile(routes Routes, compiler urlpattern.Compiler) (CompiledRoutes, error) {
	if compiler == nil {
		return nil, errors.New(errors.CodeInvalidPattern).
			WithDetail("no pattern compiler").
			WithSuggestion("Pass urlpattern.Compile or another urlpattern.Compiler")
	}

	compiled := make(CompiledRoutes, 0, routes.Len())
	for _, e := range routes.entries {
		pathname := e.Route.Pathname
		if e.Route.ShouldNormalize() {
			pathname = routepath.TrailingSlash.Normalize(pathname)
		}

		p, err := compiler(urlpattern.Init{
			Pathname: pathname,
			Search:   orWildcard(e.Route.Search),
			Hash:     orWildcard(e.Route.Hash),
		})
		if err != nil {
			return nil, errors.New(errors.CodeInvalidPattern).
				WithDetailf("route %q (pathname %q)", e.Name, pathname).
				Wrap(err)
		}

		compiled = append(compiled, CompiledRoute{
			Route:   e.Route,
			Name:    e.Name,
			Pattern: p,
		})
	}
	return compiled, nil
}

func orWildcard(template string) string {
	if template == "" {
		return "*"
	}
	return template
}
