package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ErrProcessFailed is returned when an external program exits non-zero or cannot start.
var ErrProcessFailed = errors.New("process failed")

// Process describes an external program invocation.
type Process struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the current environment.
	Env []string
}

func (p Process) String() string {
	return strings.TrimSpace(p.Name + " " + strings.Join(p.Args, " "))
}

// ProcessRunner runs external programs.
type ProcessRunner interface {
	Run(ctx context.Context, process Process) (CommandResult, error)
}

// ExecRunner runs programs with os/exec, echoing output live and capturing it.
type ExecRunner struct {
	stdout io.Writer
	stderr io.Writer
}

// NewExecRunner returns a runner echoing to stdout and stderr; nil writers only capture.
func NewExecRunner(stdout, stderr io.Writer) *ExecRunner {
	if stdout == nil {
		stdout = io.Discard
	}

	if stderr == nil {
		stderr = io.Discard
	}

	return &ExecRunner{stdout: stdout, stderr: stderr}
}

// Run starts the program and waits for it. Context cancellation kills the process.
func (r *ExecRunner) Run(ctx context.Context, process Process) (CommandResult, error) {
	var outBuf, errBuf bytes.Buffer

	//nolint:gosec // the program and its arguments come from the project configuration
	cmd := exec.CommandContext(ctx, process.Name, process.Args...)
	cmd.Dir = process.Dir
	cmd.Stdout = io.MultiWriter(&outBuf, r.stdout)
	cmd.Stderr = io.MultiWriter(&errBuf, r.stderr)

	if len(process.Env) > 0 {
		cmd.Env = append(os.Environ(), process.Env...)
	}

	err := cmd.Run()

	result := CommandResult{Stdout: outBuf.String(), Stderr: errBuf.String()}
	if err != nil {
		detail := lastLine(result.Stderr)
		if detail != "" {
			return result, fmt.Errorf("%w: %s: %w: %s", ErrProcessFailed, process, err, detail)
		}

		return result, fmt.Errorf("%w: %s: %w", ErrProcessFailed, process, err)
	}

	return result, nil
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")

	return strings.TrimSpace(lines[len(lines)-1])
}
