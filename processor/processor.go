package processor

import (
	"context"
	"os"
	"sync/atomic"

	"github.com/lepinkainen/ffpool/video"
	"golang.org/x/sync/errgroup"
)

// Config is the read-only run configuration handed to every worker
type Config struct {
	Threads         int
	ToolOptions     string // raw option string, tokenized on single spaces
	OutputPattern   string
	Overwrite       bool
	Verbose         bool
	DeleteOnSuccess bool
}

// Logger is the log sink workers write to.
// display asks for the line to be mirrored to the interactive display as well.
type Logger interface {
	Info(worker int, display bool, format string, args ...any)
	Error(worker int, display bool, format string, args ...any)
}

// Progress counts confirmed successes against a known total
type Progress interface {
	Start()
	Increment(n int)
	Value() int
	Total() int
	Finish()
}

// Summary is the caller-facing result of a run
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

// Processor owns the worker pool and the per-run failure list
type Processor struct {
	logger   Logger
	progress Progress
	runner   video.Runner
	notifier Notifier
	remove   func(path string) error

	failures FailureList
	skipped  atomic.Int64
}

// Option customizes a Processor
type Option func(*Processor)

// WithRunner replaces the ffmpeg runner
func WithRunner(r video.Runner) Option {
	return func(p *Processor) {
		p.runner = r
	}
}

// WithNotifier registers an observer for job events
func WithNotifier(n Notifier) Option {
	return func(p *Processor) {
		p.notifier = n
	}
}

// New creates a processor writing to logger and counting successes on progress
func New(logger Logger, progress Progress, opts ...Option) *Processor {
	p := &Processor{
		logger:   logger,
		progress: progress,
		runner:   video.NewFFmpeg(""),
		notifier: Notifiers(nil),
		remove:   os.Remove,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessFiles attempts every path exactly once with cfg.Threads workers
// (at least one) and returns after all of them have finished.
// Failures are available from Failures and FailedPaths afterwards.
// Accounting from an earlier call is discarded.
func (p *Processor) ProcessFiles(ctx context.Context, paths []string, cfg Config) {
	p.failures.Reset()
	p.skipped.Store(0)

	queue := NewQueue(paths)

	threads := cfg.Threads
	if threads < 1 {
		threads = 1
	}

	p.progress.Start()

	var g errgroup.Group
	for i := 0; i < threads; i++ {
		w := &worker{
			id:       i,
			cfg:      cfg,
			options:  video.SplitOptions(cfg.ToolOptions),
			queue:    queue,
			proc:     p,
			logger:   p.logger,
			runner:   p.runner,
			notifier: p.notifier,
			remove:   p.remove,
		}
		g.Go(func() error {
			w.run(ctx)
			return nil
		})
	}
	_ = g.Wait()

	p.progress.Finish()
}

// Failures returns every failed job in the order it was recorded
func (p *Processor) Failures() []Failure {
	return p.failures.Snapshot()
}

// FailedPaths returns the input path of every failed job
func (p *Processor) FailedPaths() []string {
	return p.failures.Paths()
}

// LogPaths returns the paths listed in the run log's failure trailer:
// the existing destination for jobs refused by it, the input otherwise.
func (p *Processor) LogPaths() []string {
	return p.failures.LogPaths()
}

// Summary reports the run's accounting. Only meaningful after ProcessFiles returns.
func (p *Processor) Summary() Summary {
	return Summary{
		Total:     p.progress.Total(),
		Succeeded: p.progress.Value(),
		Failed:    p.failures.Len(),
		Skipped:   int(p.skipped.Load()),
	}
}
