// Package runner executes the external compiler processes the pipeline
// depends on. Compilers are opaque: the only protocol is argv, an optional
// stdin payload, captured stdout, and the exit code.
package runner

import (
	"bytes"
	"context"
	"os/exec"

	forgeerrors "github.com/assetforge/assetforge/internal/errors"
	"github.com/assetforge/assetforge/internal/logging"
)

// Runner runs an external command to completion and returns its stdout.
// Implementations block until the process exits; callers needing bounded
// latency pass a context with a deadline.
type Runner interface {
	Run(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error)
}

// ExecRunner is the os/exec-backed Runner used in production.
type ExecRunner struct {
	logger logging.Logger
}

// NewExecRunner creates a runner that logs subprocess stderr through the
// given logger.
func NewExecRunner(logger logging.Logger) *ExecRunner {
	return &ExecRunner{logger: logger.WithComponent("runner")}
}

// Run spawns the process, feeds it stdin when non-nil, and collects stdout
// and stderr fully. Exit 0 returns stdout, with any stderr content logged as
// a warning. A nonzero exit becomes a CompileError carrying the command and
// the captured stderr. Failures are not retried.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	command := append([]string{name}, args...)
	if err := cmd.Run(); err != nil {
		return nil, forgeerrors.NewCompileError(command, stderr.String(), err)
	}

	if stderr.Len() > 0 {
		r.logger.Warn(ctx, nil, "subprocess wrote to stderr",
			"command", name, "stderr", stderr.String())
	}
	return stdout.Bytes(), nil
}
