package processor

import "sync"

// Queue is the shared work queue of pending input paths.
// Pop removes an entry atomically, so no two workers ever receive the same one.
type Queue struct {
	mu    sync.Mutex
	paths []string
}

// NewQueue returns a queue holding a copy of paths
func NewQueue(paths []string) *Queue {
	cp := make([]string, len(paths))
	copy(cp, paths)
	return &Queue{paths: cp}
}

// Pop removes and returns one pending path. ok is false once the queue is empty.
func (q *Queue) Pop() (path string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.paths)
	if n == 0 {
		return "", false
	}
	path = q.paths[n-1]
	q.paths[n-1] = ""
	q.paths = q.paths[:n-1]
	return path, true
}

// Len returns the number of paths still waiting
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.paths)
}
