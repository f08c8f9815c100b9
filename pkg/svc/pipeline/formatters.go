package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/cmd/runner"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
)

// ErrFormattersFailed is returned when one or more formatter commands failed.
var ErrFormattersFailed = errors.New("formatter commands failed")

// RunFormatters runs commands one after another in dir. The first failure stops the
// run unless keepGoing is set, in which case every failure is collected.
func RunFormatters(
	ctx context.Context,
	procRunner runner.ProcessRunner,
	dir string,
	commands []v1alpha1.Command,
	keepGoing bool,
	out io.Writer,
) error {
	var failed []string

	for _, command := range commands {
		process := runner.Process{Name: command.Name, Args: command.Args, Dir: dir}

		notify.Activityf(out, "running %s", process)

		_, err := procRunner.Run(ctx, process)
		if err == nil {
			continue
		}

		if !keepGoing {
			return fmt.Errorf("%w: %w", ErrFormattersFailed, err)
		}

		notify.Warningf(out, "%s failed", process)

		failed = append(failed, process.String())
	}

	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrFormattersFailed, strings.Join(failed, "; "))
	}

	return nil
}
