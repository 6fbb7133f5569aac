package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vango-dev/histroute/internal/config"
	"github.com/vango-dev/histroute/internal/errors"
	"github.com/vango-dev/histroute/pkg/router"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	routesPath string
	base       string
	verbose    bool
	noColor    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "histroute",
		Short: "Inspect and serve named route tables",
		Long: `histroute resolves URLs against a named route table.

The route table is read from the file named by --routes, or from the
project's histroute.json (which may point at a local file or an S3
object). Commands:

  • match   resolve a URL to its route state
  • build   build the URL of a named route
  • routes  list the table in declaration order
  • serve   run the websocket bridge server`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				errors.DisableColors()
			}
			level := slog.LevelInfo
			if flags.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to histroute.json (default: search upward from the working directory)")
	pf.StringVarP(&flags.routesPath, "routes", "r", "", "Route table file, overrides histroute.json")
	pf.StringVar(&flags.base, "base", "", "Origin for relative URLs, overrides histroute.json")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored error output")

	rootCmd.AddCommand(
		matchCmd(flags),
		buildCmd(flags),
		routesCmd(flags),
		serveCmd(flags),
		versionCmd(),
	)

	return rootCmd
}

// loadConfig finds the project configuration and applies flag overrides.
// Without a histroute.json, --routes alone is enough.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case flags.configPath != "":
		cfg, err = config.LoadFile(flags.configPath)
	case flags.routesPath != "":
		cfg = config.New()
	default:
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}

	if flags.routesPath != "" {
		// --routes is relative to the working directory, not the config.
		routes, err := filepath.Abs(flags.routesPath)
		if err != nil {
			return nil, err
		}
		cfg.Routes = routes
		cfg.S3 = config.S3Config{}
	}
	if flags.base != "" {
		cfg.Base = flags.base
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadRoutes loads the configuration and its route table.
func loadRoutes(ctx context.Context, flags *globalFlags) (*config.Config, router.Routes, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, router.Routes{}, err
	}
	routes, err := cfg.LoadRoutes(ctx)
	if err != nil {
		return nil, router.Routes{}, err
	}
	slog.Debug("route table loaded", "routes", routes.Len(), "source", routeSource(cfg))
	return cfg, routes, nil
}

func routeSource(cfg *config.Config) string {
	if cfg.S3.Enabled() {
		return fmt.Sprintf("s3://%s/%s", cfg.S3.Bucket, cfg.S3.Key)
	}
	return cfg.RoutesPath()
}
