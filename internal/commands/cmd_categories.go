package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/MikeMC777/catalog-browser/internal/item"
)

type CategoriesCmd struct {
	flags *Flags
}

// NewCategoriesCmd creates a new categories command
func NewCategoriesCmd(flags *Flags) *CategoriesCmd {
	return &CategoriesCmd{flags: flags}
}

// Register adds the categories command to the application
func (cmd *CategoriesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:   "categories",
		Usage:  "List the distinct categories",
		Action: cmd.run,
	})
	return app
}

func (cmd *CategoriesCmd) run(ctx context.Context, c *cli.Command) error {
	cats, err := cmd.flags.Client.Categories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	return render(c.Root().Writer, cmd.flags.format(), item.CategoriesResponse{Categories: cats}, func(w io.Writer) {
		_, _ = fmt.Fprintln(w, "CATEGORY")
		for _, cat := range cats {
			_, _ = fmt.Fprintln(w, cat)
		}
	})
}
