package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/MikeMC777/catalog-browser/internal/item"
)

type GetCmd struct {
	flags *Flags
}

// NewGetCmd creates a new get command
func NewGetCmd(flags *Flags) *GetCmd {
	return &GetCmd{flags: flags}
}

// Register adds the get command to the application
func (cmd *GetCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "get",
		Usage:     "Show one item",
		UsageText: "catalog get <id>",
		Action:    cmd.run,
	})
	return app
}

func (cmd *GetCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one item id")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid item id %q", c.Args().First())
	}

	it, err := cmd.flags.Client.Get(ctx, id)
	if errors.Is(err, item.ErrNotFound) {
		return fmt.Errorf("item %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("get item %d: %w", id, err)
	}
	return render(c.Root().Writer, cmd.flags.format(), it, func(w io.Writer) {
		itemTable(w, *it)
	})
}
