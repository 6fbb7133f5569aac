package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vango-dev/histroute/internal/config"
	"github.com/vango-dev/histroute/internal/errors"
	"github.com/vango-dev/histroute/pkg/router"
	"github.com/vango-dev/histroute/pkg/urlpattern"
)

func routesCmd(flags *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Long: `List routes in declaration order with their compiled pathname patterns.

Declaration order decides which route is current when several match.
--format json or yaml prints the table in route table file format, which
is useful for converting between the two.

Examples:
  histroute routes
  histroute routes --routes routes.yaml --format json > routes.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, routes, err := loadRoutes(cmd.Context(), flags)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return config.EncodeRoutes(cmd.OutOrStdout(), routes, config.FormatJSON)
			case "yaml":
				return config.EncodeRoutes(cmd.OutOrStdout(), routes, config.FormatYAML)
			case "text", "":
			default:
				return errors.New(errors.CodeInvalidArgument).
					WithDetailf("unknown format %q", format).
					WithSuggestion("Use text, json or yaml")
			}

			compiled, err := router.Compile(routes, urlpattern.Compile)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPATTERN\tSEARCH\tHASH\tFLAGS")
			for _, c := range compiled {
				var notes string
				if c.Ignore {
					notes = "ignore"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Name, c.Pattern.Pathname(), c.Pattern.Search(), c.Pattern.Hash(), notes)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")

	return cmd
}
