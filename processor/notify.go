package processor

import "time"

// Job is the accounting record of one finished job
type Job struct {
	Worker   int
	Input    string
	Output   string
	Outcome  Outcome
	Reason   string
	Duration time.Duration
}

// Notifier receives run events. Implementations must be safe for concurrent use;
// workers call them from their own goroutines.
type Notifier interface {
	JobStarted(worker int, input string)
	JobFinished(job Job)
	ProgressChanged(done, total int)
}

// Notifiers fans every event out to each notifier in order
type Notifiers []Notifier

func (ns Notifiers) JobStarted(worker int, input string) {
	for _, n := range ns {
		n.JobStarted(worker, input)
	}
}

func (ns Notifiers) JobFinished(job Job) {
	for _, n := range ns {
		n.JobFinished(job)
	}
}

func (ns Notifiers) ProgressChanged(done, total int) {
	for _, n := range ns {
		n.ProgressChanged(done, total)
	}
}
