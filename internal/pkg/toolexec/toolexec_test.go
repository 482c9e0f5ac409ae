package toolexec

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewRunner(t *testing.T) {
	if _, err := NewRunner("qrencode", time.Second); !errors.Is(err, ErrToolPathNotAbsolute) {
		t.Fatalf("expected ErrToolPathNotAbsolute for relative path, got %v", err)
	}

	if _, err := NewRunner("/usr/bin/true", time.Second); err != nil {
		t.Fatalf("absolute path rejected: %v", err)
	}
}

func TestRunner_Run(t *testing.T) {
	t.Run("captures stdout on success", func(t *testing.T) {
		r, err := NewRunner("/bin/echo", 5*time.Second)
		if err != nil {
			t.Fatalf("new runner: %v", err)
		}

		out, err := r.Run(context.Background(), "hello")
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if string(out) != "hello\n" {
			t.Fatalf("unexpected stdout: %q", out)
		}
	})

	t.Run("non-zero exit fails", func(t *testing.T) {
		r, err := NewRunner("/bin/false", 5*time.Second)
		if err != nil {
			t.Fatalf("new runner: %v", err)
		}

		if _, err := r.Run(context.Background()); !errors.Is(err, ErrToolFailed) {
			t.Fatalf("expected ErrToolFailed, got %v", err)
		}
	})

	t.Run("stderr output fails even with zero exit", func(t *testing.T) {
		r, err := NewRunner("/bin/sh", 5*time.Second)
		if err != nil {
			t.Fatalf("new runner: %v", err)
		}

		if _, err := r.Run(context.Background(), "-c", "echo warn 1>&2; exit 0"); !errors.Is(err, ErrToolFailed) {
			t.Fatalf("expected ErrToolFailed, got %v", err)
		}
	})

	t.Run("deadline surfaces as timeout", func(t *testing.T) {
		r, err := NewRunner("/bin/sleep", 50*time.Millisecond)
		if err != nil {
			t.Fatalf("new runner: %v", err)
		}

		if _, err := r.Run(context.Background(), "5"); !errors.Is(err, ErrTimeout) {
			t.Fatalf("expected ErrTimeout, got %v", err)
		}
	})
}

func TestRunner_RunStdin(t *testing.T) {
	r, err := NewRunner("/bin/cat", 5*time.Second)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	out, err := r.RunStdin(context.Background(), []byte("payload"))
	if err != nil {
		t.Fatalf("run stdin: %v", err)
	}
	if string(out) != "payload" {
		t.Fatalf("unexpected stdout: %q", out)
	}
}
