package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lepinkainen/ffpool/logging"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

const tickInterval = time.Second

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Bar is the console progress tracker. It also implements logging.Display:
// log lines and bar redraws share one lock so they never interleave.
type Bar struct {
	mu       sync.Mutex
	out      io.Writer
	bar      *progressbar.ProgressBar
	total    int
	done     atomic.Int64
	visible  bool
	finished bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewBar creates a tracker for total items rendering to out.
// The bar is only drawn when out is a terminal; lines are printed either way.
// With eta set the bar also shows a remaining-time estimate, which is rough
// when items take very different amounts of time.
func NewBar(out io.Writer, total int, eta bool) *Bar {
	return newBar(out, total, eta, IsTerminal(out))
}

func newBar(out io.Writer, total int, eta, visible bool) *Bar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("Transcoding"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionSetPredictTime(eta),
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetRenderBlankState(false),
	)

	return &Bar{
		out:     out,
		bar:     bar,
		total:   total,
		visible: visible,
		stop:    make(chan struct{}),
	}
}

// Start draws the empty bar and keeps the elapsed time ticking until Finish
func (b *Bar) Start() {
	b.mu.Lock()
	_ = b.bar.RenderBlank()
	b.mu.Unlock()

	b.wg.Add(1)
	go b.tick()
}

func (b *Bar) tick() {
	defer b.wg.Done()
	t := time.NewTicker(tickInterval)
	defer t.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-t.C:
			b.mu.Lock()
			if !b.finished {
				_ = b.bar.RenderBlank()
			}
			b.mu.Unlock()
		}
	}
}

// Increment adds n confirmed successes
func (b *Bar) Increment(n int) {
	b.done.Add(int64(n))

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.finished {
		_ = b.bar.Add(n)
	}
}

// Value returns the number of successes so far
func (b *Bar) Value() int {
	return int(b.done.Load())
}

// Total returns the number of items the run started with
func (b *Bar) Total() int {
	return b.total
}

// Finish stops the bar where it is. A run with failures never reaches 100%,
// so the bar is left in place rather than completed.
func (b *Bar) Finish() {
	b.mu.Lock()
	if b.finished {
		b.mu.Unlock()
		return
	}
	b.finished = true
	_ = b.bar.Exit()
	if b.visible {
		fmt.Fprintln(b.out)
	}
	b.mu.Unlock()

	close(b.stop)
	b.wg.Wait()
}

// Println prints a log line above the bar and redraws it
func (b *Bar) Println(level logging.Level, line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	redraw := b.visible && !b.finished
	if redraw {
		_ = b.bar.Clear()
	}
	fmt.Fprintln(b.out, StyleLine(level, line))
	if redraw {
		_ = b.bar.RenderBlank()
	}
}
