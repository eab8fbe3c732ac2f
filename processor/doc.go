// Package processor runs a batch of input files through an external
// transcoding tool using a fixed pool of workers.
//
// Workers share a single queue of input paths. Each path is popped exactly
// once, its output path is resolved from the configured pattern, and the tool
// is invoked as a child process. Outcomes are accounted for exactly once:
// successes advance the progress tracker, recoverable failures are appended to
// the failure list, and inputs that are not regular files are skipped.
//
// ProcessFiles blocks until every worker has drained the queue and returned.
// Cancelling the context does not stop the workers early. Running tool
// processes are killed and count as tool failures, and inputs popped afterwards
// are recorded as interrupted, so each input is still accounted for exactly once.
package processor
