package processor

import "sync"

// Failure records one job that was attempted but did not succeed
type Failure struct {
	Input   string
	Output  string // resolved destination, empty when resolution itself failed
	Outcome Outcome
	Reason  string
}

// LogPath is the path written to the log's failure trailer
func (f Failure) LogPath() string {
	if f.Outcome == FailedExists && f.Output != "" {
		return f.Output
	}
	return f.Input
}

// FailureList is an append-only, mutex-guarded collection of failures
type FailureList struct {
	mu    sync.Mutex
	items []Failure
}

// Add appends f to the list
func (l *FailureList) Add(f Failure) {
	l.mu.Lock()
	l.items = append(l.items, f)
	l.mu.Unlock()
}

// Reset drops every recorded failure
func (l *FailureList) Reset() {
	l.mu.Lock()
	l.items = nil
	l.mu.Unlock()
}

// Len returns the number of recorded failures
func (l *FailureList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Snapshot returns a copy of the failures in the order they were recorded
func (l *FailureList) Snapshot() []Failure {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := make([]Failure, len(l.items))
	copy(cp, l.items)
	return cp
}

// Paths returns the input path of every failure in recording order
func (l *FailureList) Paths() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	paths := make([]string, len(l.items))
	for i, f := range l.items {
		paths[i] = f.Input
	}
	return paths
}

// LogPaths returns Failure.LogPath for every failure in recording order
func (l *FailureList) LogPaths() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	paths := make([]string, len(l.items))
	for i, f := range l.items {
		paths[i] = f.LogPath()
	}
	return paths
}
