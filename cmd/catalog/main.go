package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/MikeMC777/catalog-browser/internal/commands"
	"github.com/MikeMC777/catalog-browser/internal/config"
)

// Build information. Populated at build-time via -ldflags flag.
var (
	version = "dev"
	commit  = "HEAD"
)

func build() string {
	v, c := version, commit
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					c = s.Value
				}
			}
		}
	}
	if len(c) > 7 {
		c = c[:7]
	}
	return fmt.Sprintf("%s (%s)", v, c)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var flush func()
	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "catalog",
		Usage:     "Browse and edit the item catalog",
		UsageText: "catalog [global options] command [command options]",
		Description: `Command line client for the catalog API.

Run 'catalog browse' for the interactive browser, or use list, search, get,
create, categories and stats from scripts with --output json or yaml.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "base-url",
				Usage:       "catalog API address",
				Sources:     cli.EnvVars("CATALOG_BASE_URL"),
				Value:       cfg.BaseURL,
				Destination: &flags.BaseURL,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output format (table, json, yaml)",
				Value:       string(commands.FormatTable),
				Destination: &flags.Output,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("CATALOG_LOG_LEVEL"),
				Value:       cfg.LogLevel,
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("CATALOG_LOG_FILE"),
				Value:       commands.DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "per-request timeout",
				Value:       cfg.ClientTimeout,
				Destination: &flags.Timeout,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := flags.Setup()
			if err != nil {
				return ctx, err
			}
			flush = f
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if flush != nil {
				flush()
			}
			return nil
		},
	}

	app = commands.NewListCmd(flags).Register(app)
	app = commands.NewSearchCmd(flags).Register(app)
	app = commands.NewGetCmd(flags).Register(app)
	app = commands.NewCreateCmd(flags).Register(app)
	app = commands.NewCategoriesCmd(flags).Register(app)
	app = commands.NewStatsCmd(flags).Register(app)
	app = commands.NewBrowseCmd(flags).Register(app)

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		exitCode = 1
	}

	stop()
	os.Exit(exitCode)
}
