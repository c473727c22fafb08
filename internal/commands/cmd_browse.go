package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/MikeMC777/catalog-browser/internal/browser"
	"github.com/MikeMC777/catalog-browser/internal/client"
	"github.com/MikeMC777/catalog-browser/internal/item"
)

type BrowseCmd struct {
	flags *Flags

	// flags
	mode     string
	pageSize int
	debounce time.Duration
}

// NewBrowseCmd creates a new browse command
func NewBrowseCmd(flags *Flags) *BrowseCmd {
	return &BrowseCmd{flags: flags}
}

// Register adds the browse command to the application
func (cmd *BrowseCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "browse",
		Usage:     "Open the interactive catalog browser",
		UsageText: "catalog browse [--mode paged|virtual] [--page-size n] [--debounce 300ms]",
		Description: `Full-screen browser with search-as-you-type, category and sort cycling
and an item detail view.

Paged mode moves page by page with n/p. Virtual mode keeps appending pages as
the cursor nears the end of the list.

Keys: / search, c category, s sort field, o sort order, v toggle mode,
enter details, esc back, q quit.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "mode",
				Usage:       "paged or virtual",
				Value:       browser.Paged.String(),
				Destination: &cmd.mode,
			},
			&cli.IntFlag{
				Name:        "page-size",
				Usage:       "items per page in paged mode",
				Value:       item.DefaultLimit,
				Destination: &cmd.pageSize,
			},
			&cli.DurationFlag{
				Name:        "debounce",
				Usage:       "quiet period before a search is sent",
				Value:       client.DefaultDebounce,
				Destination: &cmd.debounce,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *BrowseCmd) run(ctx context.Context, _ *cli.Command) error {
	mode, err := parseMode(cmd.mode)
	if err != nil {
		return err
	}

	log := cmd.flags.logger().With(zap.String("component", "browser"))
	log.Info("browser starting", zap.Stringer("mode", mode), zap.Int("page_size", cmd.pageSize))

	err = browser.Run(ctx, cmd.flags.Client, browser.Options{
		Mode:     mode,
		PageSize: cmd.pageSize,
		Debounce: cmd.debounce,
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	return nil
}

func parseMode(s string) (browser.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "paged":
		return browser.Paged, nil
	case "virtual":
		return browser.Virtual, nil
	default:
		return browser.Paged, fmt.Errorf("unknown mode %q (want paged or virtual)", s)
	}
}
