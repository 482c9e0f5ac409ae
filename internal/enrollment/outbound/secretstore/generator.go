package secretstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shandysiswandi/goseed/internal/pkg/otp"
	"github.com/shandysiswandi/goseed/internal/pkg/toolexec"
)

const (
	// GeneratorNative selects in-process TOTP seed generation.
	GeneratorNative = "native"
	// GeneratorExec selects an external generator binary.
	GeneratorExec = "exec"
)

// ErrUnknownGenerator indicates an unsupported seed generator.
var ErrUnknownGenerator = errors.New("secretstore: unknown generator")

// Generator produces a fresh TOTP seed value for an account.
type Generator interface {
	Generate(ctx context.Context, identity string) (string, error)
}

// NativeGenerator creates seeds in process.
type NativeGenerator struct {
	totp otp.OTP
}

// NewNativeGenerator constructs an in-process seed generator.
func NewNativeGenerator(totp otp.OTP) *NativeGenerator {
	return &NativeGenerator{totp: totp}
}

// Generate returns a fresh base32 seed for the account.
func (g *NativeGenerator) Generate(_ context.Context, identity string) (string, error) {
	secret, _, err := g.totp.Generate(identity)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return secret, nil
}

// ExecGenerator shells out to a google-authenticator style binary that
// writes its seed file to a path given with -s. The tool runs against
// a scratch file; persisting the value stays with the Store.
type ExecGenerator struct {
	runner *toolexec.Runner
	args   []string
}

// NewExecGenerator constructs an external seed generator. args are the
// fixed tool flags; the scratch file path is appended after "-s".
func NewExecGenerator(runner *toolexec.Runner, args ...string) *ExecGenerator {
	return &ExecGenerator{runner: runner, args: args}
}

// Generate runs the tool and returns the first line of its seed file.
func (g *ExecGenerator) Generate(ctx context.Context, identity string) (string, error) {
	if !IdentityWellFormed(identity) {
		return "", fmt.Errorf("%w: %q", ErrBadIdentity, identity)
	}

	scratch, err := os.MkdirTemp("", "seedgen-"+identity+"-")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer os.RemoveAll(scratch)

	seedFile := filepath.Join(scratch, "s")
	args := append(append([]string{}, g.args...), "-s", seedFile)
	if _, err := g.runner.Run(ctx, args...); err != nil {
		return "", err
	}

	raw, err := os.ReadFile(seedFile)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	line, _, _ := strings.Cut(string(raw), "\n")
	value := strings.TrimSpace(line)
	if value == "" {
		return "", fmt.Errorf("%w: generator produced empty seed", ErrStorage)
	}

	return value, nil
}
