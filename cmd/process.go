package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lepinkainen/ffpool/logging"
	"github.com/lepinkainen/ffpool/metrics"
	"github.com/lepinkainen/ffpool/processor"
	"github.com/lepinkainen/ffpool/types"
	"github.com/lepinkainen/ffpool/ui"
	"github.com/lepinkainen/ffpool/utils"
	"github.com/lepinkainen/ffpool/video"
)

const etaWarning = "Warning: the ETA is a rough estimate. If your files take very different amounts of time, or there are long pauses between them, expect it to be inaccurate."

// ErrInterrupted is returned when the run was stopped before every input was attempted
var ErrInterrupted = errors.New("run interrupted")

type ProcessCmd struct {
	Threads       int      `short:"t" help:"Number of parallel workers. Most systems handle 2; go higher on a powerful machine." default:"2"`
	FfmpegOptions string   `short:"f" name:"ffmpeg-options" help:"Options passed to ffmpeg between input and output, split on spaces. Use --ffmpeg-options=\"-c:v libx265\" for values starting with a dash."`
	Input         []string `short:"i" help:"Files or directories to process. Directories are searched recursively." type:"path" sep:"none" xor:"source"`
	Ext           []string `help:"Only pick up files with these extensions when searching directories, e.g. mov,mkv. 'media' selects common audio and video formats."`
	FileList      string   `name:"file-list" help:"File containing paths to process, one per line." type:"path" xor:"source"`
	Output        string   `short:"o" help:"Output pattern. Placeholders: {{name}} file name without extension, {{ext}} extension, {{dir}} the input's directory, {{parent}} name of the input's directory. Example: /dest/{{dir}}/{{name}}_transcoded.{{ext}}"`
	Overwrite     bool     `help:"Overwrite destination files that already exist."`
	Verbose       bool     `help:"Show every log line while running, and list failed files at the end."`
	Delete        bool     `help:"Delete the source file after it was processed successfully. Failed files are kept."`
	Eta           bool     `help:"Show an estimated time remaining in the progress bar."`
	Tui           bool     `help:"Show the interactive dashboard instead of a progress bar."`
	Ffmpeg        string   `help:"Transcoding tool to run." default:"ffmpeg"`
	LogDir        string   `name:"log-dir" help:"Directory for run logs. Defaults to the platform log directory." type:"path"`
	MetricsFile   string   `name:"metrics-file" help:"Write Prometheus metrics for the run to this file." type:"path"`

	stdout io.Writer `kong:"-"`
}

func (cmd *ProcessCmd) Run(appCtx *types.AppContext) error {
	version := types.VersionOf(appCtx)
	out := cmd.stdout
	if out == nil {
		out = os.Stdout
	}

	if err := cmd.validate(); err != nil {
		return err
	}

	paths, err := cmd.collectInputs(out)
	if err != nil {
		return err
	}

	logDir := cmd.LogDir
	if logDir == "" {
		if logDir, err = logging.DefaultDir(logging.AppName); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	threads := max(cmd.Threads, 1)
	useTUI := cmd.Tui && ui.IsTerminal(out)

	if !useTUI {
		fmt.Fprintln(out, ui.HeaderStyle.Render(fmt.Sprintf("ffpool %s", version)))
		if cmd.Tui {
			fmt.Fprintln(out, ui.WarningStyle.Render("Output is not a terminal, falling back to the progress bar."))
		}
	}
	if cmd.Eta {
		fmt.Fprintln(out, ui.WarningStyle.Render(etaWarning))
	}

	var (
		progress processor.Progress
		display  logging.Display
		tui      *ui.TUI
	)
	if useTUI {
		tui = ui.NewTUI(len(paths), threads, version, stop)
		progress, display = tui, tui
	} else {
		bar := ui.NewBar(out, len(paths), cmd.Eta)
		progress, display = bar, bar
	}

	logger, err := logging.New(logging.Options{Dir: logDir, Display: display})
	if err != nil {
		return fmt.Errorf("could not create the run log: %w", err)
	}
	defer logger.Close()

	notifiers := processor.Notifiers{}
	if tui != nil {
		tui.Start()
		notifiers = append(notifiers, tui)
	}

	var recorder *metrics.Recorder
	if cmd.MetricsFile != "" {
		recorder = metrics.NewRecorder()
		notifiers = append(notifiers, recorder)
	}

	logger.Info(logging.MainWorker, false, "Processing %d inputs with %d workers, output pattern %q", len(paths), threads, cmd.Output)
	if remote := utils.NetworkInputs(paths); threads > 1 && len(remote) > 0 {
		logger.Info(logging.MainWorker, true, "%d of %d inputs look like they are on a network drive (e.g. %s). A single worker (--threads 1) is usually faster there.", len(remote), len(paths), remote[0])
	}

	proc := processor.New(logger, progress,
		processor.WithRunner(video.NewFFmpeg(cmd.Ffmpeg)),
		processor.WithNotifier(notifiers),
	)

	start := time.Now()
	proc.ProcessFiles(ctx, paths, processor.Config{
		Threads:         threads,
		ToolOptions:     cmd.FfmpegOptions,
		OutputPattern:   cmd.Output,
		Overwrite:       cmd.Overwrite,
		Verbose:         cmd.Verbose,
		DeleteOnSuccess: cmd.Delete,
	})
	elapsed := time.Since(start)

	if tui != nil {
		if err := tui.Err(); err != nil {
			fmt.Fprintln(out, ui.ErrorStyle.Render(fmt.Sprintf("Dashboard error: %v", err)))
		}
	}

	summary := proc.Summary()
	line := ui.SummaryLine(summary, logger.Path())
	logger.Info(logging.MainWorker, false, "%s", line)
	logger.AppendFailures(proc.LogPaths())

	if summary.Failed == 0 {
		fmt.Fprintln(out, ui.SuccessStyle.Render(line))
	} else {
		fmt.Fprintln(out, ui.WarningStyle.Render(line))
	}

	if cmd.Verbose {
		fmt.Fprintln(out, ui.RenderSummary(summary, elapsed))
		if failures := proc.Failures(); len(failures) > 0 {
			fmt.Fprintln(out, "\nThe following files were not processed due to the errors above:")
			fmt.Fprintln(out, ui.RenderFailures(failures))
		}
	}

	if recorder != nil {
		recorder.ObserveRun(summary, elapsed, time.Now())
		if err := recorder.WriteTextfile(cmd.MetricsFile); err != nil {
			fmt.Fprintln(out, ui.ErrorStyle.Render(err.Error()))
		}
	}

	if ctx.Err() != nil {
		return ErrInterrupted
	}
	return nil
}

// validate checks the flag combinations kong cannot express
func (cmd *ProcessCmd) validate() error {
	if len(cmd.Input) == 0 && cmd.FileList == "" {
		return errors.New("either --input or --file-list is required")
	}
	if strings.TrimSpace(cmd.Output) == "" {
		return errors.New("an output pattern is required, see --output")
	}
	return nil
}

// collectInputs loads the file list or expands --input. Unreadable directories are reported and skipped.
func (cmd *ProcessCmd) collectInputs(out io.Writer) ([]string, error) {
	if cmd.FileList != "" {
		return video.LoadFileList(cmd.FileList)
	}

	return video.ExpandInputsMatching(cmd.Input, video.ExtensionMatcher(cmd.Ext), func(path string, err error) {
		fmt.Fprintln(out, ui.WarningStyle.Render(processor.DescribeFSError("read directory", path, err)))
	}), nil
}
