package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/ffpool/cmd"
	"github.com/lepinkainen/ffpool/config"
	"github.com/lepinkainen/ffpool/logging"
	"github.com/lepinkainen/ffpool/types"
)

var Version = "dev"

type CLI struct {
	Config  kong.ConfigFlag  `help:"Load flag defaults from this TOML file." type:"path"`
	Version kong.VersionFlag `help:"Print version and exit."`

	Process cmd.ProcessCmd `cmd:"" default:"withargs" help:"Transcode files with a pool of ffmpeg workers (default command)"`
	Check   cmd.CheckCmd   `cmd:"" help:"Check that the transcoding tool is installed and show where ffpool keeps its files"`
	Logs    cmd.LogsCmd    `cmd:"" help:"List previous run logs"`
}

// newParser builds the kong parser. configPaths are TOML files applied in order,
// later files winning; missing files are ignored.
func newParser(cli *CLI, appCtx *types.AppContext, configPaths []string, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("ffpool"),
		kong.Description("Batch-transcode media files by running ffmpeg once per file on a fixed pool of workers."),
		kong.UsageOnError(),
		kong.Configuration(config.TOML, configPaths...),
		kong.Vars{"version": Version},
		kong.Bind(appCtx),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	paths := config.DefaultPaths(logging.AppName)
	appCtx := &types.AppContext{Version: Version, ConfigPaths: paths}

	parser, err := newParser(&cli, appCtx, paths)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if cli.Config != "" {
		appCtx.ConfigPaths = append(appCtx.ConfigPaths, string(cli.Config))
	}

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}
