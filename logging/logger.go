package logging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// MainWorker tags lines that do not come from a pool worker
const MainWorker = -1

const (
	fileTimeLayout = "02-01-2006T15-04-05"
	lineTimeLayout = "2006-01-02 15:04:05"
	lockSuffix     = ".lock"

	failuresHeader = "The following files were not processed due to the errors above:"
)

// Level is the severity of a log line
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "ERROR"
	}
	return "INFO"
}

// Display is a live channel that mirrors selected log lines.
// Implementations coordinate with whatever else draws on the same terminal.
type Display interface {
	Println(level Level, line string)
}

// Options configures a Logger
type Options struct {
	// Dir is the log directory. Default: DefaultDir(AppName)
	Dir string

	// Display receives lines logged with display set. May be nil.
	Display Display

	// Now is the clock used for file names and timestamps. Default: time.Now
	Now func() time.Time
}

// Logger is an append-only, per-run log sink.
// Every call writes exactly one line; writes from concurrent workers are serialized.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	lock    *flock.Flock
	runID   string
	display Display
	now     func() time.Time
}

// New creates the run's log file inside opts.Dir, named after the start time.
// The file stays locked until Close so other invocations can tell the run is active.
func New(opts Options) (*Logger, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	dir := opts.Dir
	if dir == "" {
		d, err := DefaultDir(AppName)
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", dir, err)
	}

	start := opts.Now()
	path, file, err := createLogFile(dir, start)
	if err != nil {
		return nil, err
	}

	lock := flock.New(path + lockSuffix)
	if _, err := lock.TryLock(); err != nil {
		file.Close()
		return nil, fmt.Errorf("lock log file %s: %w", path, err)
	}

	l := &Logger{
		file:    file,
		path:    path,
		lock:    lock,
		runID:   uuid.NewString(),
		display: opts.Display,
		now:     opts.Now,
	}

	header := fmt.Sprintf("Run %s started at %s\n", l.runID, start.Format(lineTimeLayout))
	if _, err := io.WriteString(file, header); err != nil {
		l.Close()
		return nil, fmt.Errorf("write log header: %w", err)
	}

	return l, nil
}

// createLogFile picks the first free name for start, appending -1, -2, ... on collision
func createLogFile(dir string, start time.Time) (string, *os.File, error) {
	base := start.Format(fileTimeLayout)
	for i := 0; ; i++ {
		name := base + ".log"
		if i > 0 {
			name = fmt.Sprintf("%s-%d.log", base, i)
		}
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			return path, f, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", nil, fmt.Errorf("create log file %s: %w", path, err)
		}
	}
}

// Info logs an informational line for worker
func (l *Logger) Info(worker int, display bool, format string, args ...any) {
	l.line(LevelInfo, worker, display, fmt.Sprintf(format, args...))
}

// Error logs an error line for worker
func (l *Logger) Error(worker int, display bool, format string, args ...any) {
	l.line(LevelError, worker, display, fmt.Sprintf(format, args...))
}

func (l *Logger) line(level Level, worker int, display bool, text string) {
	line := FormatLine(level, worker, text)

	l.mu.Lock()
	if l.file != nil {
		_, _ = io.WriteString(l.file, l.now().Format(lineTimeLayout)+" "+line+"\n")
	}
	l.mu.Unlock()

	if display && l.display != nil {
		l.display.Println(level, line)
	}
}

// FormatLine renders the severity and worker tag in front of text
func FormatLine(level Level, worker int, text string) string {
	who := "MAIN"
	if worker != MainWorker {
		who = fmt.Sprintf("WORKER %d", worker)
	}
	return fmt.Sprintf("[%s in %s] -- %s", level, who, text)
}

// AppendFailures writes the trailing block of failed paths. Nothing is written for an empty list.
func (l *Logger) AppendFailures(paths []string) {
	if len(paths) == 0 {
		return
	}

	block := "\n" + failuresHeader + "\n" + strings.Join(paths, "\n") + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		_, _ = io.WriteString(l.file, block)
	}
}

// Path returns the location of the log file
func (l *Logger) Path() string {
	return l.path
}

// RunID returns the identifier written in the log header
func (l *Logger) RunID() string {
	return l.runID
}

// Close flushes and closes the log file and releases the run lock
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	if l.file != nil {
		err = l.file.Close()
		l.file = nil
	}
	if l.lock != nil {
		_ = l.lock.Unlock()
		_ = os.Remove(l.lock.Path())
		l.lock = nil
	}
	return err
}
