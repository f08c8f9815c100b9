package verifier

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
)

var (
	// ErrNotConfigured is returned by a check that has nothing to verify.
	ErrNotConfigured = errors.New("not configured")
	// ErrChecksFailed is returned when at least one check failed.
	ErrChecksFailed = errors.New("verification failed")
)

// Outcome is the result class of a check.
type Outcome string

const (
	// Passed means the check succeeded.
	Passed Outcome = "passed"
	// Failed means the check ran and found a problem.
	Failed Outcome = "failed"
	// Skipped means the check had no configuration.
	Skipped Outcome = "skipped"
)

// Check verifies one part of a deployment and returns a one-line detail.
// Returning ErrNotConfigured skips the check.
type Check func(ctx context.Context) (string, error)

// Result is the outcome of one check.
type Result struct {
	Check   v1alpha1.Check
	Outcome Outcome
	Detail  string
}

// Summary counts the results of a run.
type Summary struct {
	Results []Result
	Passed  int
	Failed  int
	Skipped int
}

// Ran returns the number of checks that were not skipped.
func (s Summary) Ran() int {
	return s.Passed + s.Failed
}

// Verifier runs registered checks.
type Verifier struct {
	checks map[v1alpha1.Check]Check
	out    io.Writer
}

// New returns a verifier printing one line per check to out.
func New(out io.Writer) *Verifier {
	if out == nil {
		out = io.Discard
	}

	return &Verifier{checks: map[v1alpha1.Check]Check{}, out: out}
}

// Register sets the implementation of a check.
func (v *Verifier) Register(name v1alpha1.Check, check Check) {
	v.checks[name] = check
}

// Run executes selected in order and prints a summary line. It returns ErrChecksFailed
// when any check failed.
func (v *Verifier) Run(ctx context.Context, selected []v1alpha1.Check) (Summary, error) {
	var summary Summary

	for _, name := range selected {
		result := v.runOne(ctx, name)
		summary.Results = append(summary.Results, result)

		switch result.Outcome {
		case Passed:
			summary.Passed++

			notify.Successf(v.out, "%s: %s", name, result.Detail)
		case Failed:
			summary.Failed++

			notify.Errorf(v.out, "%s: %s", name, result.Detail)
		case Skipped:
			summary.Skipped++

			notify.Infof(v.out, "%s: skipped (%s)", name, result.Detail)
		}
	}

	line := fmt.Sprintf("%d/%d checks passed", summary.Passed, summary.Ran())

	if summary.Failed > 0 {
		notify.Errorf(v.out, "%s", line)

		return summary, fmt.Errorf("%w: %s", ErrChecksFailed, line)
	}

	notify.Successf(v.out, "%s", line)

	return summary, nil
}

func (v *Verifier) runOne(ctx context.Context, name v1alpha1.Check) Result {
	check, ok := v.checks[name]
	if !ok {
		return Result{Check: name, Outcome: Skipped, Detail: ErrNotConfigured.Error()}
	}

	detail, err := check(ctx)

	switch {
	case errors.Is(err, ErrNotConfigured):
		return Result{Check: name, Outcome: Skipped, Detail: err.Error()}
	case err != nil:
		return Result{Check: name, Outcome: Failed, Detail: err.Error()}
	default:
		return Result{Check: name, Outcome: Passed, Detail: detail}
	}
}
