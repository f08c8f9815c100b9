// Package errorhandler turns cobra failures into a single error carrying the text
// cobra would otherwise have printed to stderr.
package errorhandler

import (
	"bytes"
	"context"
	"strings"

	"github.com/spf13/cobra"
)

// Normalizer cleans captured stderr before it becomes part of an error message.
type Normalizer interface {
	Normalize(raw string) string
}

// Executor runs a root command while intercepting its error stream.
type Executor struct {
	normalizer Normalizer
}

// NewExecutor returns an Executor using [DefaultNormalizer].
func NewExecutor() *Executor {
	return &Executor{normalizer: DefaultNormalizer{}}
}

// Execute runs cmd with a background context.
func (e *Executor) Execute(cmd *cobra.Command) error {
	return e.ExecuteContext(context.Background(), cmd)
}

// ExecuteContext runs cmd and returns nil on success or a *CommandError that unwraps
// to the error returned by the failing command.
func (e *Executor) ExecuteContext(ctx context.Context, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	var errBuf bytes.Buffer

	originalErrWriter := cmd.ErrOrStderr()

	cmd.SetErr(&errBuf)
	defer cmd.SetErr(originalErrWriter)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	return &CommandError{
		message: e.normalizer.Normalize(errBuf.String()),
		cause:   err,
	}
}

// CommandError is a command failure augmented with normalized stderr output.
type CommandError struct {
	message string
	cause   error
}

// Error returns the captured message, followed by the cause unless the message
// already contains it.
func (e *CommandError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause == nil:
		return e.message
	case e.message == "":
		return e.cause.Error()
	case strings.Contains(e.message, e.cause.Error()):
		return e.message
	default:
		return e.message + ": " + e.cause.Error()
	}
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *CommandError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// DefaultNormalizer trims the stream, strips cobra's "Error: " prefix and drops the
// "Run '... --help' for usage." trailer.
type DefaultNormalizer struct{}

// Normalize implements Normalizer.
func (DefaultNormalizer) Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	kept := make([]string, 0, len(lines))

	for i, line := range lines {
		if i == 0 {
			line = strings.TrimPrefix(strings.TrimSpace(line), "Error: ")
		}

		if strings.HasPrefix(line, "Run '") && strings.HasSuffix(line, "for usage.") {
			continue
		}

		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}
