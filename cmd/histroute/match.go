package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vango-dev/histroute/internal/errors"
	"github.com/vango-dev/histroute/pkg/history"
	"github.com/vango-dev/histroute/pkg/router"
	"github.com/vango-dev/histroute/pkg/urlpattern"
)

func matchCmd(flags *globalFlags) *cobra.Command {
	var details bool

	cmd := &cobra.Command{
		Use:   "match <url>",
		Short: "Resolve a URL to its route state",
		Long: `Resolve a URL against the route table and print the route state as JSON.

Relative URLs are resolved against the configured base origin. When several
routes match, the first one in the table wins; routes marked ignore are
never current.

Examples:
  histroute match /posts/7 --routes routes.yaml
  histroute match "https://example.com/search?q=go#results"
  histroute match /posts/7 --details`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, routes, err := loadRoutes(cmd.Context(), flags)
			if err != nil {
				return err
			}
			base, err := cfg.BaseURL()
			if err != nil {
				return err
			}
			u, err := resolveInput(base, args[0])
			if err != nil {
				return err
			}

			c, err := router.New(routes, urlpattern.Compile, history.NewMemory(u))
			if err != nil {
				return err
			}
			defer c.Destroy()

			if details {
				return printDetails(cmd.OutOrStdout(), c.SummaryState())
			}
			return printJSON(cmd.OutOrStdout(), c.RouteState())
		},
	}

	cmd.Flags().BoolVarP(&details, "details", "d", false, "Print the match result of every route")

	return cmd
}

// resolveInput parses a URL given on the command line.
func resolveInput(base *url.URL, raw string) (*url.URL, error) {
	ref, err := url.Parse(raw)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidArgument).
			WithDetailf("%q is not a URL", raw).
			Wrap(err)
	}
	return base.ResolveReference(ref), nil
}

func printDetails(w io.Writer, s router.SummaryState) error {
	fmt.Fprintf(w, "URL: %s\n\n", s.URL)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUTE\tMATCH\tCURRENT\tPATTERN\tPARAMS")
	for _, d := range s.MatchDetails {
		match := "-"
		params := ""
		if d.IsMatch {
			match = "yes"
			if d.Detail != nil {
				b, _ := json.Marshal(d.Detail.Pathname.Groups)
				params = string(b)
			}
		}
		if d.Ignore {
			match += " (ignored)"
		}
		current := ""
		if d.Name == s.CurrentRouteName {
			current = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Name, match, current, d.Pattern.Pathname(), params)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !s.HasCurrent() {
		fmt.Fprintln(w, "\nNo route matches (404).")
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
