package processor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lepinkainen/ffpool/video"
)

// worker pops paths from the shared queue until it is empty.
// Steps for one path run strictly in sequence before the next pop.
type worker struct {
	id       int
	cfg      Config
	options  []string
	queue    *Queue
	proc     *Processor
	logger   Logger
	runner   video.Runner
	notifier Notifier
	remove   func(path string) error
}

func (w *worker) run(ctx context.Context) {
	for {
		path, ok := w.queue.Pop()
		if !ok {
			return
		}

		start := time.Now()
		job := w.process(ctx, path)
		job.Worker = w.id
		job.Input = path
		job.Duration = time.Since(start)

		w.record(job)
	}
}

// process runs the pipeline for a single path and reports how it ended
func (w *worker) process(ctx context.Context, path string) Job {
	verbose := w.cfg.Verbose

	if fi, err := os.Stat(path); err != nil || !fi.Mode().IsRegular() {
		w.logger.Error(w.id, verbose, "%s doesn't appear to be a file, ignoring. Continuing with next task if there's more to do...", path)
		return Job{Outcome: Skipped}
	}

	w.notifier.JobStarted(w.id, path)
	w.logger.Info(w.id, verbose, "Processing %s", path)

	output, err := video.ResolveOutputPath(path, w.cfg.OutputPattern)
	if err != nil {
		w.logger.Error(w.id, verbose, "Could not build an output path for %s: %v. Continuing with next task if there's more to do...", path, err)
		return Job{Outcome: FailedPattern, Reason: err.Error()}
	}

	if _, err := os.Stat(output); err == nil && !w.cfg.Overwrite {
		w.logger.Error(w.id, verbose, "File %s already exists and --overwrite is set to false. Continuing with next task if there's more to do...", output)
		return Job{Output: output, Outcome: FailedExists, Reason: "destination already exists"}
	}

	if ctx.Err() != nil {
		return w.interrupted(path, output)
	}

	// A failed mkdir is only reported; the tool gets to run and fail on its own terms.
	parent := filepath.Dir(output)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		w.logger.Error(w.id, verbose, "Could not create directory structure for file %s", output)
		w.logger.Error(w.id, verbose, "%s", DescribeFSError("create directory", parent, err))
	}

	result, err := w.runner.Run(ctx, video.Invocation{
		Input:     path,
		Output:    output,
		Options:   w.options,
		Overwrite: w.cfg.Overwrite,
	})
	if err != nil && ctx.Err() != nil {
		return w.interrupted(path, output)
	}
	if err != nil {
		w.logger.Error(w.id, true, "There was an error running the transcoding tool: %v. Please check if it's correctly installed and working as intended.", err)
		return Job{Output: output, Outcome: FailedLaunch, Reason: err.Error()}
	}

	if !result.Success() {
		stderr := strings.TrimSpace(result.Stderr)
		w.logger.Error(w.id, verbose, "Error processing file %s. Error is: %s", path, stderr)
		if w.cfg.DeleteOnSuccess {
			w.logger.Info(w.id, verbose, "Keeping the file due to the error above")
		}
		w.logger.Info(w.id, verbose, "Continuing with next task if there's more to do...")
		return Job{Output: output, Outcome: FailedTool, Reason: stderr}
	}

	w.logger.Info(w.id, verbose, "Success, saving to %s", output)
	if w.cfg.DeleteOnSuccess {
		w.removeSource(path)
	}
	return Job{Output: output, Outcome: Succeeded}
}

func (w *worker) interrupted(path, output string) Job {
	w.logger.Error(w.id, w.cfg.Verbose, "Run interrupted, %s was not processed", path)
	return Job{Output: output, Outcome: FailedLaunch, Reason: "interrupted"}
}

// removeSource deletes the input after a successful run. Errors never revert the success.
func (w *worker) removeSource(path string) {
	if err := w.remove(path); err != nil {
		w.logger.Error(w.id, w.cfg.Verbose, "%s", DescribeFSError("delete file", path, err))
		return
	}
	w.logger.Info(w.id, w.cfg.Verbose, "Removed %s", path)
}

// record applies the job's outcome to the shared run state exactly once
func (w *worker) record(job Job) {
	p := w.proc

	switch {
	case job.Outcome == Succeeded:
		p.progress.Increment(1)
		w.notifier.ProgressChanged(p.progress.Value(), p.progress.Total())
	case job.Outcome == Skipped:
		p.skipped.Add(1)
	case job.Outcome.Failed():
		p.failures.Add(Failure{
			Input:   job.Input,
			Output:  job.Output,
			Outcome: job.Outcome,
			Reason:  job.Reason,
		})
	}

	w.notifier.JobFinished(job)
}
