package processor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/lepinkainen/ffpool/video"
)

type logLine struct {
	level   string
	worker  int
	display bool
	text    string
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []logLine
}

func (l *recordingLogger) Info(worker int, display bool, format string, args ...any) {
	l.add("INFO", worker, display, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Error(worker int, display bool, format string, args ...any) {
	l.add("ERROR", worker, display, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) add(level string, worker int, display bool, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, logLine{level, worker, display, text})
}

func (l *recordingLogger) contains(level, substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if line.level == level && strings.Contains(line.text, substr) {
			return true
		}
	}
	return false
}

type counterProgress struct {
	total    int
	done     atomic.Int64
	started  atomic.Bool
	finished atomic.Bool
}

func (c *counterProgress) Start()          { c.started.Store(true) }
func (c *counterProgress) Increment(n int) { c.done.Add(int64(n)) }
func (c *counterProgress) Value() int      { return int(c.done.Load()) }
func (c *counterProgress) Total() int      { return c.total }
func (c *counterProgress) Finish()         { c.finished.Store(true) }

// fakeRunner stands in for ffmpeg: it writes the output file unless the input
// is listed in fail (non-zero exit) or launchFail (process never starts).
type fakeRunner struct {
	mu          sync.Mutex
	invocations []video.Invocation
	fail        map[string]bool
	launchFail  bool
}

func (r *fakeRunner) Run(ctx context.Context, inv video.Invocation) (video.Result, error) {
	r.mu.Lock()
	r.invocations = append(r.invocations, inv)
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return video.Result{}, fmt.Errorf("%w fake: %v", video.ErrLaunch, err)
	}
	if r.launchFail {
		return video.Result{}, fmt.Errorf("%w fake: executable file not found", video.ErrLaunch)
	}
	if r.fail[inv.Input] {
		return video.Result{ExitCode: 1, Stderr: "Invalid data found when processing input\n"}, nil
	}
	if err := os.WriteFile(inv.Output, []byte("encoded"), 0644); err != nil {
		return video.Result{ExitCode: 1, Stderr: err.Error()}, nil
	}
	return video.Result{ExitCode: 0}, nil
}

func (r *fakeRunner) inputs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var in []string
	for _, inv := range r.invocations {
		in = append(in, inv.Input)
	}
	sort.Strings(in)
	return in
}

type recordingNotifier struct {
	mu       sync.Mutex
	started  []string
	finished []Job
	updates  int
}

func (n *recordingNotifier) JobStarted(worker int, input string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.started = append(n.started, input)
}

func (n *recordingNotifier) JobFinished(job Job) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.finished = append(n.finished, job)
}

func (n *recordingNotifier) ProgressChanged(done, total int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates++
}

func makeInputs(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	var paths []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("source"), 0644); err != nil {
			t.Fatalf("Failed to create input %s: %v", name, err)
		}
		paths = append(paths, path)
	}
	return paths
}

func newTestProcessor(total int, runner video.Runner, opts ...Option) (*Processor, *recordingLogger, *counterProgress) {
	logger := &recordingLogger{}
	progress := &counterProgress{total: total}
	opts = append([]Option{WithRunner(runner)}, opts...)
	return New(logger, progress, opts...), logger, progress
}

func TestProcessFiles_AllSucceed(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	inputs := makeInputs(t, srcDir, "a.mov", "b.mov", "c.mkv")

	runner := &fakeRunner{}
	p, _, progress := newTestProcessor(len(inputs), runner)

	p.ProcessFiles(context.Background(), inputs, Config{
		Threads:       2,
		OutputPattern: filepath.Join(outDir, "{{name}}.mp4"),
	})

	if !progress.started.Load() || !progress.finished.Load() {
		t.Error("Expected progress to be started and finished")
	}

	summary := p.Summary()
	if summary.Succeeded != 3 || summary.Failed != 0 || summary.Skipped != 0 || summary.Total != 3 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	for _, name := range []string{"a.mp4", "b.mp4", "c.mp4"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("Expected output %s to exist: %v", name, err)
		}
	}
}

func TestProcessFiles_ExistingDestinationWithoutOverwrite(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	inputs := makeInputs(t, srcDir, "a.mov", "b.mov", "c.mov")

	existing := filepath.Join(outDir, "b.mp4")
	if err := os.WriteFile(existing, []byte("old"), 0644); err != nil {
		t.Fatalf("Failed to create existing output: %v", err)
	}

	runner := &fakeRunner{}
	p, logger, _ := newTestProcessor(len(inputs), runner)

	p.ProcessFiles(context.Background(), inputs, Config{
		Threads:       2,
		OutputPattern: filepath.Join(outDir, "{{name}}.mp4"),
	})

	summary := p.Summary()
	if summary.Succeeded != 2 || summary.Failed != 1 || summary.Total != 3 {
		t.Errorf("Expected 2 succeeded, 1 failed of 3, got %+v", summary)
	}

	failures := p.Failures()
	if len(failures) != 1 {
		t.Fatalf("Expected 1 failure, got %d", len(failures))
	}
	if failures[0].Input != inputs[1] || failures[0].Output != existing || failures[0].Outcome != FailedExists {
		t.Errorf("Unexpected failure record: %+v", failures[0])
	}

	for _, in := range runner.inputs() {
		if in == inputs[1] {
			t.Error("Tool must never be invoked for a pre-existing destination")
		}
	}

	if !logger.contains("ERROR", "already exists and --overwrite is set to false") {
		t.Error("Expected an error line about the existing destination")
	}

	data, _ := os.ReadFile(existing)
	if string(data) != "old" {
		t.Error("Existing destination must be left untouched")
	}
}

func TestProcessFiles_OverwritePassesForceFlag(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	inputs := makeInputs(t, srcDir, "a.mov", "b.mov")

	if err := os.WriteFile(filepath.Join(outDir, "a.mp4"), []byte("old"), 0644); err != nil {
		t.Fatalf("Failed to create existing output: %v", err)
	}

	runner := &fakeRunner{}
	p, _, _ := newTestProcessor(len(inputs), runner)

	p.ProcessFiles(context.Background(), inputs, Config{
		Threads:       1,
		OutputPattern: filepath.Join(outDir, "{{name}}.mp4"),
		Overwrite:     true,
	})

	if got := len(runner.invocations); got != 2 {
		t.Fatalf("Expected 2 invocations, got %d", got)
	}
	for _, inv := range runner.invocations {
		if !inv.Overwrite {
			t.Errorf("Expected overwrite flag for %s", inv.Input)
		}
	}
	if s := p.Summary(); s.Succeeded != 2 {
		t.Errorf("Expected both files to succeed, got %+v", s)
	}
}

func TestProcessFiles_SkipsNonFiles(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	inputs := makeInputs(t, srcDir, "a.mov")
	inputs = append(inputs, filepath.Join(srcDir, "missing.mov"), srcDir)

	runner := &fakeRunner{}
	p, logger, _ := newTestProcessor(len(inputs), runner)

	p.ProcessFiles(context.Background(), inputs, Config{
		Threads:       3,
		OutputPattern: filepath.Join(outDir, "{{name}}.mp4"),
	})

	summary := p.Summary()
	if summary.Succeeded != 1 || summary.Skipped != 2 || summary.Failed != 0 {
		t.Errorf("Expected 1 succeeded and 2 skipped, got %+v", summary)
	}
	if len(p.FailedPaths()) != 0 {
		t.Errorf("Skips must not be failures, got %v", p.FailedPaths())
	}
	if !logger.contains("ERROR", "doesn't appear to be a file") {
		t.Error("Expected a skip error line")
	}
}

func TestProcessFiles_ToolFailure(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	inputs := makeInputs(t, srcDir, "good.mov", "bad.mov")

	runner := &fakeRunner{fail: map[string]bool{inputs[1]: true}}
	p, logger, _ := newTestProcessor(len(inputs), runner)

	p.ProcessFiles(context.Background(), inputs, Config{
		Threads:         2,
		OutputPattern:   filepath.Join(outDir, "{{name}}.mp4"),
		DeleteOnSuccess: true,
	})

	if got := p.FailedPaths(); !reflect.DeepEqual(got, []string{inputs[1]}) {
		t.Errorf("Expected failed paths %v, got %v", inputs[1:], got)
	}
	failures := p.Failures()
	if failures[0].Outcome != FailedTool || !strings.Contains(failures[0].Reason, "Invalid data found") {
		t.Errorf("Expected tool failure with stderr reason, got %+v", failures[0])
	}
	if !logger.contains("ERROR", "Error is: Invalid data found") {
		t.Error("Expected captured stderr in the log")
	}
	if !logger.contains("INFO", "Keeping the file") {
		t.Error("Expected the keep-source notice when delete is requested")
	}

	if _, err := os.Stat(inputs[0]); !os.IsNotExist(err) {
		t.Error("Expected successful source to be deleted")
	}
	if _, err := os.Stat(inputs[1]); err != nil {
		t.Error("Failed source must never be deleted")
	}
}

func TestProcessFiles_LaunchFailureIsReported(t *testing.T) {
	srcDir := t.TempDir()
	inputs := makeInputs(t, srcDir, "a.mov", "b.mov")

	runner := &fakeRunner{launchFail: true}
	p, logger, _ := newTestProcessor(len(inputs), runner)

	p.ProcessFiles(context.Background(), inputs, Config{
		Threads:       1,
		OutputPattern: filepath.Join(t.TempDir(), "{{name}}.mp4"),
	})

	summary := p.Summary()
	if summary.Succeeded != 0 || summary.Failed != 2 {
		t.Errorf("Expected both jobs to fail, got %+v", summary)
	}
	for _, f := range p.Failures() {
		if f.Outcome != FailedLaunch {
			t.Errorf("Expected launch failure, got %v", f.Outcome)
		}
	}

	logger.mu.Lock()
	defer logger.mu.Unlock()
	displayed := false
	for _, line := range logger.lines {
		if line.level == "ERROR" && strings.Contains(line.text, "error running the transcoding tool") && line.display {
			displayed = true
		}
	}
	if !displayed {
		t.Error("Launch failures must always be shown on the display")
	}
}

func TestProcessFiles_CancelledContextAccountsForEveryInput(t *testing.T) {
	srcDir := t.TempDir()
	inputs := makeInputs(t, srcDir, "a.mov", "b.mov", "c.mov")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{}
	p, logger, _ := newTestProcessor(len(inputs), runner)
	p.ProcessFiles(ctx, inputs, Config{
		Threads:       2,
		OutputPattern: filepath.Join(t.TempDir(), "{{name}}.mp4"),
	})

	summary := p.Summary()
	if summary.Succeeded+summary.Failed+summary.Skipped != len(inputs) || summary.Failed != len(inputs) {
		t.Errorf("Expected every input in the failure list, got %+v", summary)
	}
	for _, f := range p.Failures() {
		if f.Reason != "interrupted" {
			t.Errorf("Expected interrupted reason, got %q", f.Reason)
		}
	}
	if logger.contains("ERROR", "error running the transcoding tool") {
		t.Error("An interrupted run must not blame the tool installation")
	}
}

func TestProcessFiles_PatternFailure(t *testing.T) {
	srcDir := t.TempDir()
	inputs := makeInputs(t, srcDir, "noext", "ok.mov")

	runner := &fakeRunner{}
	p, _, _ := newTestProcessor(len(inputs), runner)

	p.ProcessFiles(context.Background(), inputs, Config{
		Threads:       2,
		OutputPattern: filepath.Join(t.TempDir(), "{{name}}.{{ext}}"),
	})

	failures := p.Failures()
	if len(failures) != 1 || failures[0].Input != inputs[0] || failures[0].Outcome != FailedPattern {
		t.Errorf("Expected a pattern failure for the extensionless input, got %+v", failures)
	}
	if !strings.Contains(failures[0].Reason, video.ErrNoExtension.Error()) {
		t.Errorf("Expected reason to mention missing extension, got %q", failures[0].Reason)
	}
	if p.Summary().Succeeded != 1 {
		t.Errorf("Expected the valid input to succeed")
	}
}

func TestProcessFiles_CreatesOutputDirectories(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	inputs := makeInputs(t, srcDir, "clip.mov")

	runner := &fakeRunner{}
	p, _, _ := newTestProcessor(len(inputs), runner)

	p.ProcessFiles(context.Background(), inputs, Config{
		Threads:       1,
		OutputPattern: filepath.Join(outDir, "nested", "{{parent}}", "{{name}}.mkv"),
	})

	expected := filepath.Join(outDir, "nested", filepath.Base(srcDir), "clip.mkv")
	if _, err := os.Stat(expected); err != nil {
		t.Errorf("Expected output at %s: %v", expected, err)
	}
}

func TestProcessFiles_OptionsAreTokenized(t *testing.T) {
	srcDir := t.TempDir()
	inputs := makeInputs(t, srcDir, "clip.mov")

	runner := &fakeRunner{}
	p, _, _ := newTestProcessor(len(inputs), runner)

	p.ProcessFiles(context.Background(), inputs, Config{
		Threads:       1,
		ToolOptions:   "-c:v libx265 -crf 28",
		OutputPattern: filepath.Join(t.TempDir(), "{{name}}.mkv"),
	})

	expected := []string{"-c:v", "libx265", "-crf", "28"}
	if got := runner.invocations[0].Options; !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected options %q, got %q", expected, got)
	}
}

func TestProcessFiles_ZeroThreadsClampedToOne(t *testing.T) {
	srcDir := t.TempDir()
	inputs := makeInputs(t, srcDir, "a.mov", "b.mov")

	runner := &fakeRunner{}
	p, _, _ := newTestProcessor(len(inputs), runner)

	p.ProcessFiles(context.Background(), inputs, Config{
		Threads:       0,
		OutputPattern: filepath.Join(t.TempDir(), "{{name}}.mkv"),
	})

	if s := p.Summary(); s.Succeeded != 2 {
		t.Errorf("Expected all jobs to run with a clamped pool, got %+v", s)
	}
}

func TestProcessFiles_NotifierSeesEveryJob(t *testing.T) {
	srcDir := t.TempDir()
	inputs := makeInputs(t, srcDir, "a.mov", "b.mov", "c.mov")
	inputs = append(inputs, filepath.Join(srcDir, "missing.mov"))

	runner := &fakeRunner{fail: map[string]bool{inputs[2]: true}}
	notifier := &recordingNotifier{}
	p, _, _ := newTestProcessor(len(inputs), runner, WithNotifier(Notifiers{notifier}))

	p.ProcessFiles(context.Background(), inputs, Config{
		Threads:       2,
		OutputPattern: filepath.Join(t.TempDir(), "{{name}}.mkv"),
	})

	if len(notifier.finished) != len(inputs) {
		t.Errorf("Expected %d finished events, got %d", len(inputs), len(notifier.finished))
	}
	if len(notifier.started) != 3 {
		t.Errorf("Expected 3 started events (skips excluded), got %d", len(notifier.started))
	}
	if notifier.updates != 2 {
		t.Errorf("Expected 2 progress updates, got %d", notifier.updates)
	}
}

func TestProcessFiles_AccountingIdentity(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()

	var inputs []string
	fail := map[string]bool{}
	for i := 0; i < 60; i++ {
		name := fmt.Sprintf("clip%02d.mov", i)
		path := filepath.Join(srcDir, name)
		switch i % 4 {
		case 0:
			// missing source: skip
		case 1:
			_ = os.WriteFile(path, []byte("x"), 0644)
			fail[path] = true
		case 2:
			_ = os.WriteFile(path, []byte("x"), 0644)
			_ = os.WriteFile(filepath.Join(outDir, fmt.Sprintf("clip%02d.mkv", i)), []byte("old"), 0644)
		default:
			_ = os.WriteFile(path, []byte("x"), 0644)
		}
		inputs = append(inputs, path)
	}

	runner := &fakeRunner{fail: fail}
	p, _, _ := newTestProcessor(len(inputs), runner)

	p.ProcessFiles(context.Background(), inputs, Config{
		Threads:       8,
		OutputPattern: filepath.Join(outDir, "{{name}}.mkv"),
	})

	s := p.Summary()
	if s.Succeeded+s.Failed+s.Skipped != len(inputs) {
		t.Errorf("Accounting mismatch: %+v does not add up to %d", s, len(inputs))
	}
	if s.Succeeded != 15 || s.Failed != 30 || s.Skipped != 15 {
		t.Errorf("Expected 15/30/15, got %+v", s)
	}
}

func TestProcessFiles_DirectoryCreationFailureStillRunsTool(t *testing.T) {
	srcDir := t.TempDir()
	inputs := makeInputs(t, srcDir, "clip.mov")

	// a regular file where the output directory should be
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create blocker file: %v", err)
	}

	runner := &fakeRunner{}
	p, logger, _ := newTestProcessor(len(inputs), runner)

	p.ProcessFiles(context.Background(), inputs, Config{
		Threads:       1,
		OutputPattern: filepath.Join(blocker, "{{name}}.mkv"),
	})

	if got := len(runner.invocations); got != 1 {
		t.Errorf("Expected the tool to be invoked once despite the mkdir error, got %d", got)
	}
	if !logger.contains("ERROR", "Could not create directory structure for file") {
		t.Error("Expected the directory creation error line")
	}
	if !logger.contains("ERROR", "when trying to create directory "+blocker) {
		t.Error("Expected the described filesystem error for the blocked directory")
	}

	failures := p.Failures()
	if len(failures) != 1 || failures[0].Outcome != FailedTool {
		t.Errorf("Expected the tool's own failure to be recorded, got %+v", failures)
	}
}

func TestProcessFiles_DeleteFailureKeepsSuccess(t *testing.T) {
	srcDir := t.TempDir()
	inputs := makeInputs(t, srcDir, "clip.mov")

	runner := &fakeRunner{}
	p, logger, progress := newTestProcessor(len(inputs), runner)
	p.remove = func(path string) error {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrPermission}
	}

	p.ProcessFiles(context.Background(), inputs, Config{
		Threads:         1,
		OutputPattern:   filepath.Join(t.TempDir(), "{{name}}.mkv"),
		DeleteOnSuccess: true,
	})

	summary := p.Summary()
	if summary.Succeeded != 1 || summary.Failed != 0 {
		t.Errorf("A failed delete must not revert the success, got %+v", summary)
	}
	if progress.Value() != 1 {
		t.Errorf("Expected progress to be incremented once, got %d", progress.Value())
	}
	if !logger.contains("ERROR", "Permission denied when trying to delete file "+inputs[0]) {
		t.Error("Expected the delete error line")
	}
	if logger.contains("INFO", "Removed ") {
		t.Error("A failed delete must not be logged as removed")
	}
	if _, err := os.Stat(inputs[0]); err != nil {
		t.Errorf("Source should still exist: %v", err)
	}
}

func TestProcessFiles_CancelledRunCreatesNoDirectories(t *testing.T) {
	srcDir := t.TempDir()
	inputs := makeInputs(t, srcDir, "a.mov", "b.mov")
	outDir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{}
	p, _, _ := newTestProcessor(len(inputs), runner)
	p.ProcessFiles(ctx, inputs, Config{
		Threads:       2,
		OutputPattern: filepath.Join(outDir, "{{name}}", "{{name}}.mkv"),
	})

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("Failed to read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no output directories after cancellation, found %d", len(entries))
	}
	if len(runner.invocations) != 0 {
		t.Errorf("Expected no tool invocations after cancellation, got %d", len(runner.invocations))
	}
	if s := p.Summary(); s.Failed != len(inputs) {
		t.Errorf("Expected every input to be recorded as interrupted, got %+v", s)
	}
}

func TestProcessFiles_LogPathsNameExistingDestination(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	inputs := makeInputs(t, srcDir, "taken.mov", "broken.mov")

	existing := filepath.Join(outDir, "taken.mkv")
	if err := os.WriteFile(existing, []byte("old"), 0644); err != nil {
		t.Fatalf("Failed to create existing output: %v", err)
	}

	runner := &fakeRunner{fail: map[string]bool{inputs[1]: true}}
	p, _, _ := newTestProcessor(len(inputs), runner)
	p.ProcessFiles(context.Background(), inputs, Config{
		Threads:       1,
		OutputPattern: filepath.Join(outDir, "{{name}}.mkv"),
	})

	got := p.LogPaths()
	sort.Strings(got)
	expected := []string{inputs[1], existing}
	sort.Strings(expected)
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("LogPaths() = %v, expected %v", got, expected)
	}

	failed := p.FailedPaths()
	sort.Strings(failed)
	wantInputs := append([]string(nil), inputs...)
	sort.Strings(wantInputs)
	if !reflect.DeepEqual(failed, wantInputs) {
		t.Errorf("FailedPaths() should keep input paths, got %v", failed)
	}
}

func TestProcessFiles_SecondRunStartsClean(t *testing.T) {
	srcDir := t.TempDir()
	first := makeInputs(t, srcDir, "bad.mov")
	first = append(first, filepath.Join(srcDir, "missing.mov"))
	second := makeInputs(t, srcDir, "good.mov")

	runner := &fakeRunner{fail: map[string]bool{first[0]: true}}
	p, _, _ := newTestProcessor(1, runner)
	cfg := Config{Threads: 1, OutputPattern: filepath.Join(t.TempDir(), "{{name}}.mkv")}

	p.ProcessFiles(context.Background(), first, cfg)
	if s := p.Summary(); s.Failed != 1 || s.Skipped != 1 {
		t.Fatalf("Unexpected first run summary: %+v", s)
	}

	p.ProcessFiles(context.Background(), second, cfg)
	if s := p.Summary(); s.Failed != 0 || s.Skipped != 0 {
		t.Errorf("Second run must not carry over earlier failures or skips, got %+v", s)
	}
	if len(p.FailedPaths()) != 0 {
		t.Errorf("Expected an empty failure list, got %v", p.FailedPaths())
	}
}
