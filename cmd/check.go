package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/lepinkainen/ffpool/config"
	"github.com/lepinkainen/ffpool/logging"
	"github.com/lepinkainen/ffpool/types"
	"github.com/lepinkainen/ffpool/ui"
	"github.com/lepinkainen/ffpool/utils"
)

type CheckCmd struct {
	Ffmpeg string `help:"Transcoding tool to look for." default:"ffmpeg"`
	LogDir string `name:"log-dir" help:"Directory for run logs. Defaults to the platform log directory." type:"path"`

	stdout io.Writer `kong:"-"`
}

// Run reports whether the tool is installed and where ffpool reads and writes its files
func (cmd *CheckCmd) Run(appCtx *types.AppContext) error {
	out := cmd.stdout
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintln(out, ui.HeaderStyle.Render(fmt.Sprintf("ffpool %s", types.VersionOf(appCtx))))

	toolPath, toolErr := utils.ValidateTool(cmd.Ffmpeg)
	if toolErr != nil {
		fmt.Fprintln(out, ui.ErrorStyle.Render("❌ "+toolErr.Error()))
	} else {
		fmt.Fprintln(out, ui.SuccessStyle.Render("✓ "+cmd.Ffmpeg+" found at "+toolPath))
	}

	logDir := cmd.LogDir
	if logDir == "" {
		dir, err := logging.DefaultDir(logging.AppName)
		if err != nil {
			fmt.Fprintln(out, ui.ErrorStyle.Render("❌ "+err.Error()))
		}
		logDir = dir
	}
	if logDir != "" {
		fmt.Fprintln(out, ui.InfoStyle.Render("Log directory: "+logDir))
	}

	var searched []string
	if appCtx != nil {
		searched = appCtx.ConfigPaths
	}
	if found := config.FindFiles(searched); len(found) > 0 {
		for _, f := range found {
			fmt.Fprintln(out, ui.InfoStyle.Render("Config file: "+f))
		}
	} else {
		fmt.Fprintln(out, ui.DimStyle.Render("No config file found"))
	}

	return toolErr
}
