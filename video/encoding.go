package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Run waits for stderr to close after the tool was killed
const waitDelay = 5 * time.Second

// DefaultBinary is the transcoding tool looked up on PATH when none is configured
const DefaultBinary = "ffmpeg"

// ErrLaunch marks failures where the tool process could not be started at all
var ErrLaunch = errors.New("failed to launch transcoding tool")

// Invocation describes a single run of the external transcoding tool
type Invocation struct {
	Input     string
	Output    string
	Options   []string // already tokenized, passed between input and output
	Overwrite bool     // adds the force-overwrite flag
}

// Result holds what the tool reported back for one invocation
type Result struct {
	ExitCode int
	Stderr   string
}

// Success reports whether the tool exited with status 0
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes the external transcoding tool.
// A non-nil error means the process never ran; a non-zero exit is reported in Result.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Result, error)
}

// FFmpeg runs ffmpeg (or a compatible binary) as a child process
type FFmpeg struct {
	Binary string
}

// NewFFmpeg returns a runner for binary, falling back to DefaultBinary when empty
func NewFFmpeg(binary string) *FFmpeg {
	if binary == "" {
		binary = DefaultBinary
	}
	return &FFmpeg{Binary: binary}
}

// Args builds the argument list: -i <input> <options...> <output> [-y]
func (f *FFmpeg) Args(inv Invocation) []string {
	args := make([]string, 0, len(inv.Options)+4)
	args = append(args, "-i", inv.Input)
	args = append(args, inv.Options...)
	args = append(args, inv.Output)
	if inv.Overwrite {
		args = append(args, "-y")
	}
	return args
}

func (f *FFmpeg) command(ctx context.Context, inv Invocation, stderr *bytes.Buffer) *exec.Cmd {
	cmd := exec.CommandContext(ctx, f.Binary, f.Args(inv)...)
	cmd.Stderr = stderr
	// children inheriting stderr must not keep Wait blocked after a kill
	cmd.WaitDelay = waitDelay
	return cmd
}

// Run starts the tool, discards its stdout and captures stderr.
func (f *FFmpeg) Run(ctx context.Context, inv Invocation) (Result, error) {
	var stderr bytes.Buffer
	cmd := f.command(ctx, inv, &stderr)

	err := cmd.Run()
	if err == nil {
		return Result{ExitCode: 0, Stderr: stderr.String()}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}, nil
	}

	return Result{}, fmt.Errorf("%w %s: %v", ErrLaunch, f.Binary, err)
}

// SplitOptions tokenizes the raw option string on single spaces.
// Quoting is not honored: `-metadata title="a b"` yields three tokens.
// Consecutive spaces produce empty tokens, which are passed through as-is.
func SplitOptions(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, " ")
}
