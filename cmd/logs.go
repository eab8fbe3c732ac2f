package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/lepinkainen/ffpool/logging"
	"github.com/lepinkainen/ffpool/ui"
)

type LogsCmd struct {
	LogDir string `name:"log-dir" help:"Directory for run logs. Defaults to the platform log directory." type:"path"`
	Limit  int    `short:"n" help:"Show at most this many runs, newest first. 0 shows all." default:"20"`

	stdout io.Writer `kong:"-"`
}

// Run lists previous run logs and whether their run is still going
func (cmd *LogsCmd) Run() error {
	out := cmd.stdout
	if out == nil {
		out = os.Stdout
	}

	dir := cmd.LogDir
	if dir == "" {
		d, err := logging.DefaultDir(logging.AppName)
		if err != nil {
			return err
		}
		dir = d
	}

	runs, err := logging.ListRuns(dir)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(out, "No run logs in %s\n", dir)
		return nil
	}
	if cmd.Limit > 0 && len(runs) > cmd.Limit {
		runs = runs[:cmd.Limit]
	}

	fmt.Fprintln(out, ui.InfoStyle.Render("Logs in "+dir))
	fmt.Fprintln(out, ui.RenderRuns(runs))
	return nil
}
