package commands

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/urfave/cli/v3"
)

type StatsCmd struct {
	flags *Flags
}

// NewStatsCmd creates a new stats command
func NewStatsCmd(flags *Flags) *StatsCmd {
	return &StatsCmd{flags: flags}
}

// Register adds the stats command to the application
func (cmd *StatsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:   "stats",
		Usage:  "Show item count and average price",
		Action: cmd.run,
	})
	return app
}

func (cmd *StatsCmd) run(ctx context.Context, c *cli.Command) error {
	st, err := cmd.flags.Client.Stats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}
	return render(c.Root().Writer, cmd.flags.format(), st, func(w io.Writer) {
		avg := "-"
		if !math.IsNaN(st.AveragePrice) {
			avg = strconv.FormatFloat(st.AveragePrice, 'f', 2, 64)
		}
		_, _ = fmt.Fprintf(w, "TOTAL\t%d\n", st.Total)
		_, _ = fmt.Fprintf(w, "AVERAGE PRICE\t%s\n", avg)
	})
}
