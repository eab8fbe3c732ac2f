package ui

import (
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lepinkainen/ffpool/logging"
	"github.com/lepinkainen/ffpool/processor"
)

// TUI drives the interactive dashboard. It is the run's progress tracker,
// its log display and a job notifier at once; every event becomes a bubbletea
// message so the program goroutine is the only one that draws.
type TUI struct {
	program *tea.Program
	total   int
	done    atomic.Int64

	startOnce sync.Once
	exited    chan struct{}
	final     tea.Model
	err       error
}

// NewTUI prepares a dashboard for total inputs and the given number of workers.
// onInterrupt runs when the user presses q or ctrl+c during the run.
func NewTUI(total, workers int, version string, onInterrupt func(), opts ...tea.ProgramOption) *TUI {
	model := NewTUIModel(total, workers, version, onInterrupt)
	return &TUI{
		program: tea.NewProgram(model, opts...),
		total:   total,
		exited:  make(chan struct{}),
	}
}

// Start runs the bubbletea program in the background. Calling it again is a no-op.
func (t *TUI) Start() {
	t.startOnce.Do(func() {
		go func() {
			defer close(t.exited)
			t.final, t.err = t.program.Run()
		}()
	})
}

// Increment adds n confirmed successes
func (t *TUI) Increment(n int) {
	v := t.done.Add(int64(n))
	t.program.Send(OverallProgressMsg{Completed: int(v), Total: t.total})
}

// Value returns the number of successes so far
func (t *TUI) Value() int {
	return int(t.done.Load())
}

// Total returns the number of inputs the run started with
func (t *TUI) Total() int {
	return t.total
}

// Finish tells the dashboard the run is over and waits for it to exit
func (t *TUI) Finish() {
	t.Start()
	t.program.Send(RunFinishedMsg{})
	<-t.exited
}

// Err returns the error the bubbletea program exited with, if any
func (t *TUI) Err() error {
	<-t.exited
	return t.err
}

// Println forwards a displayed log line to the dashboard
func (t *TUI) Println(level logging.Level, line string) {
	t.program.Send(LogLineMsg{Level: level, Line: line})
}

// JobStarted implements processor.Notifier
func (t *TUI) JobStarted(worker int, input string) {
	t.program.Send(WorkerStartedMsg{WorkerID: worker, Filename: input})
}

// JobFinished implements processor.Notifier
func (t *TUI) JobFinished(job processor.Job) {
	t.program.Send(WorkerCompletedMsg{
		WorkerID: job.Worker,
		Filename: job.Input,
		Output:   job.Output,
		Outcome:  job.Outcome,
		Reason:   job.Reason,
		Duration: job.Duration,
	})
}

// ProgressChanged implements processor.Notifier. Increment already reported it.
func (t *TUI) ProgressChanged(done, total int) {}
