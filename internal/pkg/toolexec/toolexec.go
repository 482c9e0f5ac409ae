// Package toolexec runs external command-line tools with bounded
// execution time. Tools are addressed by explicit absolute paths from
// configuration; the process PATH is never consulted or mutated.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"
)

var (
	// ErrToolPathNotAbsolute is returned when a configured tool path is relative.
	ErrToolPathNotAbsolute = errors.New("toolexec: tool path must be absolute")

	// ErrTimeout is returned when the tool did not finish within the deadline.
	ErrTimeout = errors.New("toolexec: tool execution timed out")

	// ErrToolFailed is returned when the tool exited non-zero or wrote to stderr.
	ErrToolFailed = errors.New("toolexec: tool execution failed")
)

// Runner executes a single pre-configured external tool.
type Runner struct {
	path    string
	timeout time.Duration
}

// NewRunner builds a Runner for the tool at path. The path must be absolute.
func NewRunner(path string, timeout time.Duration) (*Runner, error) {
	if !filepath.IsAbs(path) {
		return nil, fmt.Errorf("%w: %s", ErrToolPathNotAbsolute, path)
	}

	return &Runner{path: path, timeout: timeout}, nil
}

// Run executes the tool with args and returns its stdout.
//
// A run fails when the process exits non-zero OR writes anything to
// stderr, even with a zero exit status. Both cases return ErrToolFailed
// with the stderr content attached; a deadline hit returns ErrTimeout.
func (r *Runner) Run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, r.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %s", ErrTimeout, r.path)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrToolFailed, r.path, err, stderr.String())
	}

	if stderr.Len() > 0 {
		return nil, fmt.Errorf("%w: %s: %s", ErrToolFailed, r.path, stderr.String())
	}

	return stdout.Bytes(), nil
}

// RunDir executes the tool with args inside working directory dir and
// returns its stdout.
func (r *Runner) RunDir(ctx context.Context, dir string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, r.path, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %s", ErrTimeout, r.path)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrToolFailed, r.path, err, stderr.String())
	}

	if stderr.Len() > 0 {
		return nil, fmt.Errorf("%w: %s: %s", ErrToolFailed, r.path, stderr.String())
	}

	return stdout.Bytes(), nil
}

// RunStdin executes the tool feeding input on stdin and returns its stdout.
func (r *Runner) RunStdin(ctx context.Context, input []byte, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, r.path, args...)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %s", ErrTimeout, r.path)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrToolFailed, r.path, err, stderr.String())
	}

	if stderr.Len() > 0 {
		return nil, fmt.Errorf("%w: %s: %s", ErrToolFailed, r.path, stderr.String())
	}

	return stdout.Bytes(), nil
}
