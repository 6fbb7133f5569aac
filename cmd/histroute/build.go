package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/histroute/internal/errors"
	"github.com/vango-dev/histroute/pkg/history"
	"github.com/vango-dev/histroute/pkg/router"
	"github.com/vango-dev/histroute/pkg/urlpattern"
)

func buildCmd(flags *globalFlags) *cobra.Command {
	var (
		params []string
		query  []string
		hash   string
	)

	cmd := &cobra.Command{
		Use:   "build <route>",
		Short: "Build the URL of a named route",
		Long: `Build the absolute URL of a named route without navigating.

Parameters fill ":name" segments of the route's pathname. A parameter that
is not given leaves its ":name" marker in the URL.

Examples:
  histroute build post --param id=7
  histroute build search --query q=go --query page=2
  histroute build docs --param section=intro --hash install`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := router.URLOptions{Hash: hash}
			var err error
			if opts.Params, err = parsePairs("--param", params); err != nil {
				return err
			}
			if opts.QueryParams, err = parsePairs("--query", query); err != nil {
				return err
			}

			cfg, routes, err := loadRoutes(cmd.Context(), flags)
			if err != nil {
				return err
			}
			base, err := cfg.BaseURL()
			if err != nil {
				return err
			}

			c, err := router.New(routes, urlpattern.Compile, history.NewMemory(base))
			if err != nil {
				return err
			}
			defer c.Destroy()

			href, err := c.Href(router.RouteName(args[0]), opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), href)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Path parameter as key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "Query parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&hash, "hash", "", "URL fragment")

	return cmd
}

// parsePairs parses key=value flag values. Later keys win.
func parsePairs(flag string, pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, errors.New(errors.CodeInvalidArgument).
				WithDetailf("%s %q: expected key=value", flag, p)
		}
		out[key] = value
	}
	return out, nil
}
