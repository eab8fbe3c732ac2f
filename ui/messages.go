package ui

import (
	"time"

	"github.com/lepinkainen/ffpool/logging"
	"github.com/lepinkainen/ffpool/processor"
)

// TUI Message Types for worker communication
type WorkerStartedMsg struct {
	WorkerID int
	Filename string
}

type WorkerCompletedMsg struct {
	WorkerID int
	Filename string
	Output   string
	Outcome  processor.Outcome
	Reason   string
	Duration time.Duration
}

type OverallProgressMsg struct {
	Completed int
	Total     int
}

// LogLineMsg carries a log line the logger asked to display
type LogLineMsg struct {
	Level logging.Level
	Line  string
}

// RunFinishedMsg tells the dashboard that every worker has returned
type RunFinishedMsg struct{}
