package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/MikeMC777/catalog-browser/internal/item"
)

type CreateCmd struct {
	flags *Flags

	// flags
	file        string
	name        string
	category    string
	price       float64
	description string
	tags        []string
}

// NewCreateCmd creates a new create command
func NewCreateCmd(flags *Flags) *CreateCmd {
	return &CreateCmd{flags: flags}
}

// Register adds the create command to the application
func (cmd *CreateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "create",
		Usage:     "Add an item to the catalog",
		UsageText: "catalog create [--name n] [--category c] [--price p] [--description d] [--tag t...] [-f file.json]",
		Description: `Creates an item. The server assigns the id.

With --file the item is read as a JSON object ("-" reads stdin). Any other
flag that is set overrides the matching field of that object. Unknown JSON
keys are stored as sent.

Examples:
  catalog create --name "Desk Lamp" --category Home --price 39.9
  echo '{"name":"Mug","color":"red"}' | catalog create -f -`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to a JSON item, or - for stdin",
				Destination: &cmd.file,
			},
			&cli.StringFlag{
				Name:        "name",
				Destination: &cmd.name,
			},
			&cli.StringFlag{
				Name:        "category",
				Destination: &cmd.category,
			},
			&cli.FloatFlag{
				Name:        "price",
				Destination: &cmd.price,
			},
			&cli.StringFlag{
				Name:        "description",
				Destination: &cmd.description,
			},
			&cli.StringSliceFlag{
				Name:        "tag",
				Usage:       "tag to attach (repeatable)",
				Destination: &cmd.tags,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *CreateCmd) run(ctx context.Context, c *cli.Command) error {
	var it item.Item
	if cmd.file != "" {
		in, err := cmd.read(c.Root().Reader)
		if err != nil {
			return err
		}
		it = in
	}

	if c.IsSet("name") {
		it.Name = &cmd.name
	}
	if c.IsSet("category") {
		it.Category = &cmd.category
	}
	if c.IsSet("price") {
		it.Price = &cmd.price
	}
	if c.IsSet("description") {
		it.Description = &cmd.description
	}
	if len(cmd.tags) > 0 {
		it.Tags = cmd.tags
	}

	created, err := cmd.flags.Client.Create(ctx, it)
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	cmd.flags.logger().Info("item created", zap.Int64("id", created.ID))

	return render(c.Root().Writer, cmd.flags.format(), created, func(w io.Writer) {
		itemTable(w, *created)
	})
}

func (cmd *CreateCmd) read(stdin io.Reader) (item.Item, error) {
	var it item.Item

	reader := stdin
	if cmd.file != "-" {
		f, err := os.Open(cmd.file)
		if err != nil {
			return it, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	} else if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return it, fmt.Errorf("no input provided (stdin is a terminal); pipe a JSON object or pass a file")
	}

	if err := json.NewDecoder(reader).Decode(&it); err != nil {
		return it, fmt.Errorf("decode JSON: %w", err)
	}
	return it, nil
}
