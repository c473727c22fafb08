package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/MikeMC777/catalog-browser/internal/item"
)

// QueryCmd backs both list and search; search also sends the price bounds.
type QueryCmd struct {
	flags   *Flags
	variant item.Variant

	// flags
	params   item.Params
	minPrice float64
	maxPrice float64
	all      bool
}

// NewListCmd creates the list command
func NewListCmd(flags *Flags) *QueryCmd {
	return &QueryCmd{flags: flags, variant: item.Basic, params: item.DefaultParams()}
}

// NewSearchCmd creates the search command
func NewSearchCmd(flags *Flags) *QueryCmd {
	return &QueryCmd{flags: flags, variant: item.Advanced, params: item.DefaultParams()}
}

// Register adds the command to the application
func (cmd *QueryCmd) Register(app *cli.Command) *cli.Command {
	c := &cli.Command{
		Name:      "list",
		Usage:     "List items page by page",
		UsageText: "catalog list [--q text] [--category name] [--sort-by field] [--sort-order asc|desc] [--page n] [--limit n] [--all]",
		Flags:     cmd.queryFlags(),
		Action:    cmd.run,
	}
	if cmd.variant == item.Advanced {
		c.Name = "search"
		c.Usage = "Search items with price bounds"
		c.UsageText = "catalog search [list options] [--min-price n] [--max-price n]"
		c.Description = `Same as list, plus an inclusive price range.

Items without a numeric price are left out once either bound is set.`
		c.Flags = append(c.Flags,
			&cli.FloatFlag{
				Name:        "min-price",
				Usage:       "lowest price to include",
				Destination: &cmd.minPrice,
			},
			&cli.FloatFlag{
				Name:        "max-price",
				Usage:       "highest price to include",
				Destination: &cmd.maxPrice,
			},
		)
	}

	app.Commands = append(app.Commands, c)
	return app
}

func (cmd *QueryCmd) queryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "q",
			Usage:       "case-insensitive text matched against name and category",
			Destination: &cmd.params.Q,
		},
		&cli.StringFlag{
			Name:        "category",
			Usage:       "exact category, any case",
			Destination: &cmd.params.Category,
		},
		&cli.StringFlag{
			Name:        "sort-by",
			Usage:       "field to sort by",
			Value:       item.DefaultSortBy,
			Destination: &cmd.params.SortBy,
		},
		&cli.StringFlag{
			Name:        "sort-order",
			Usage:       "asc or desc",
			Value:       item.SortAsc,
			Destination: &cmd.params.SortOrder,
		},
		&cli.IntFlag{
			Name:        "page",
			Usage:       "page number, starting at 1",
			Value:       item.DefaultPage,
			Destination: &cmd.params.Page,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "items per page",
			Value:       item.DefaultLimit,
			Destination: &cmd.params.Limit,
		},
		&cli.BoolFlag{
			Name:        "all",
			Usage:       "fetch every page and print them as one list",
			Destination: &cmd.all,
		},
	}
}

func (cmd *QueryCmd) run(ctx context.Context, c *cli.Command) error {
	p := cmd.params
	if c.IsSet("min-price") {
		p.MinPrice = &cmd.minPrice
	}
	if c.IsSet("max-price") {
		p.MaxPrice = &cmd.maxPrice
	}
	out := c.Root().Writer
	log := cmd.flags.logger().With(zap.String("cmd", c.Name))

	if cmd.all {
		items, err := cmd.flags.Client.FetchAll(ctx, p, cmd.variant)
		if err != nil {
			log.Error("fetch all pages", zap.Error(err))
			return fmt.Errorf("fetch items: %w", err)
		}
		log.Debug("fetched all pages", zap.Int("items", len(items)))
		return render(out, cmd.flags.format(), items, func(w io.Writer) {
			itemsTable(w, items)
		})
	}

	res, err := cmd.flags.Client.Query(ctx, p, cmd.variant)
	if err != nil {
		log.Error("query items", zap.Error(err))
		return fmt.Errorf("query items: %w", err)
	}
	return render(out, cmd.flags.format(), res, func(w io.Writer) {
		itemsTable(w, res.Data)
		pg := res.Pagination
		_, _ = fmt.Fprintf(w, "\npage %d of %d (%d items)\n", pg.CurrentPage, pg.TotalPages, pg.TotalItems)
	})
}
