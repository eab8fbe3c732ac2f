// Package logging writes the per-run log file.
//
// Each run gets its own append-only file in the platform log directory,
// named after the run's start time. Lines carry a timestamp, a severity and
// the id of the worker that produced them. Lines logged with display set are
// mirrored to a Display, which is where the terminal progress bar and the
// interactive dashboard hook in.
package logging
