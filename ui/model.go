package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lepinkainen/ffpool/processor"
)

const recentLogLines = 5

// File log entry for the processed files list
type FileLogEntry struct {
	OriginalName string
	NewName      string
	Outcome      processor.Outcome
	Error        string
}

func (f FileLogEntry) FilterValue() string { return f.OriginalName }
func (f FileLogEntry) Title() string       { return f.OriginalName }
func (f FileLogEntry) Description() string {
	switch {
	case f.Outcome == processor.Succeeded:
		return fmt.Sprintf("✓ → %s", f.NewName)
	case f.Outcome == processor.Skipped:
		return "⏭ Not a file, skipped"
	case f.Error != "":
		return fmt.Sprintf("❌ %s", firstLine(f.Error))
	default:
		return fmt.Sprintf("❌ %s", f.Outcome)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

// Worker state tracking
type WorkerState struct {
	ID          int
	CurrentFile string
	Started     time.Time
	Status      string // "idle", "processing", "done"
	Completed   int
}

// TUI Model for the application
type TUIModel struct {
	// Application state
	totalFiles  int
	succeeded   int
	failed      int
	skipped     int
	workers     []*WorkerState
	fileEntries []FileLogEntry
	logLines    []string

	// UI components
	overallProgress progress.Model
	spinner         spinner.Model
	fileList        list.Model

	// Layout
	width  int
	height int

	// Control state
	finished    bool
	interrupted bool
	onInterrupt func()

	// Version for display
	Version string
}

// NewTUIModel creates a new TUI model. onInterrupt, if set, runs once when the
// user asks to stop; the dashboard stays up until the run reports it has finished.
func NewTUIModel(numFiles, numWorkers int, version string, onInterrupt func()) TUIModel {
	if numWorkers < 1 {
		numWorkers = 1
	}

	workers := make([]*WorkerState, numWorkers)
	for i := range workers {
		workers[i] = &WorkerState{
			ID:     i,
			Status: "idle",
		}
	}

	fileList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	fileList.Title = "Processed Files"
	fileList.SetShowStatusBar(false)
	fileList.SetFilteringEnabled(false)

	return TUIModel{
		totalFiles:      numFiles,
		workers:         workers,
		overallProgress: progress.New(progress.WithDefaultGradient()),
		spinner:         spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(ProcessingStyle)),
		fileList:        fileList,
		onInterrupt:     onInterrupt,
		Version:         version,
	}
}

// Init implements tea.Model
func (m TUIModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.finished {
				return m, tea.Quit
			}
			if !m.interrupted {
				m.interrupted = true
				if m.onInterrupt != nil {
					m.onInterrupt()
				}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.overallProgress.Width = max(msg.Width-40, 10)
		m.fileList.SetSize(msg.Width-4, msg.Height/3)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case WorkerStartedMsg:
		if w := m.worker(msg.WorkerID); w != nil {
			w.CurrentFile = msg.Filename
			w.Started = time.Now()
			w.Status = "processing"
		}

	case WorkerCompletedMsg:
		if w := m.worker(msg.WorkerID); w != nil {
			w.Status = "idle"
			w.CurrentFile = ""
			w.Completed++
		}

		// successes arrive through OverallProgressMsg
		switch {
		case msg.Outcome == processor.Skipped:
			m.skipped++
		case msg.Outcome.Failed():
			m.failed++
		}

		m.fileEntries = append(m.fileEntries, FileLogEntry{
			OriginalName: msg.Filename,
			NewName:      msg.Output,
			Outcome:      msg.Outcome,
			Error:        msg.Reason,
		})
		items := make([]list.Item, len(m.fileEntries))
		for i, entry := range m.fileEntries {
			items[i] = entry
		}
		return m, m.fileList.SetItems(items)

	case OverallProgressMsg:
		m.succeeded = msg.Completed

	case LogLineMsg:
		m.logLines = append(m.logLines, StyleLine(msg.Level, msg.Line))
		if len(m.logLines) > recentLogLines {
			m.logLines = m.logLines[len(m.logLines)-recentLogLines:]
		}

	case RunFinishedMsg:
		m.finished = true
		for _, w := range m.workers {
			w.Status = "done"
			w.CurrentFile = ""
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m TUIModel) worker(id int) *WorkerState {
	if id < 0 || id >= len(m.workers) {
		return nil
	}
	return m.workers[id]
}

// View implements tea.Model
func (m TUIModel) View() string {
	header := HeaderStyle.Render(fmt.Sprintf("ffpool %s", m.Version))

	overallPercent := 0.0
	if m.totalFiles > 0 {
		overallPercent = float64(m.succeeded) / float64(m.totalFiles)
	}
	overallView := fmt.Sprintf("Overall Progress: %s (%d/%d)  %s  %s",
		m.overallProgress.ViewAs(overallPercent),
		m.succeeded,
		m.totalFiles,
		ErrorStyle.Render(fmt.Sprintf("%d failed", m.failed)),
		DimStyle.Render(fmt.Sprintf("%d skipped", m.skipped)))

	workerViews := []string{"Worker Status:"}
	for _, w := range m.workers {
		status := fmt.Sprintf("Worker %d: ", w.ID+1)
		if w.Status == "processing" {
			status += fmt.Sprintf("%s %s %s", m.spinner.View(), filepath.Base(w.CurrentFile),
				DimStyle.Render(time.Since(w.Started).Truncate(time.Second).String()))
		} else {
			status += fmt.Sprintf("%-12s %s", w.Status, DimStyle.Render(fmt.Sprintf("%d done", w.Completed)))
		}
		workerViews = append(workerViews, status)
	}

	sections := []string{
		header,
		overallView,
		strings.Join(workerViews, "\n"),
	}
	if len(m.logLines) > 0 {
		sections = append(sections, strings.Join(m.logLines, "\n"))
	}
	sections = append(sections, m.fileList.View())

	switch {
	case m.finished:
		sections = append(sections, SuccessStyle.Render("Run finished."))
	case m.interrupted:
		sections = append(sections, WarningStyle.Render("Stopping: waiting for running jobs to wind down..."))
	default:
		sections = append(sections, "Controls: [q] Stop")
	}

	return strings.Join(sections, "\n\n")
}
