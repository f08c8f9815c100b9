package verifier_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/svc/verifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("connection refused")

func pass(detail string) verifier.Check {
	return func(context.Context) (string, error) { return detail, nil }
}

func fail(err error) verifier.Check {
	return func(context.Context) (string, error) { return "", err }
}

func TestVerifier_RunSummarises(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	v := verifier.New(&out)
	v.Register(v1alpha1.CheckKubernetes, pass("deployment \"shop\" successfully rolled out"))
	v.Register(v1alpha1.CheckArgoCD, fail(errDown))
	v.Register(v1alpha1.CheckKong, fail(fmt.Errorf("%w: kong.adminURL is empty", verifier.ErrNotConfigured)))
	v.Register(v1alpha1.CheckHealth, pass("ok"))

	summary, err := v.Run(context.Background(), v1alpha1.ValidChecks())

	require.ErrorIs(t, err, verifier.ErrChecksFailed)
	assert.Equal(t, 2, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 3, summary.Ran())

	text := out.String()
	assert.Contains(t, text, "✔ kubernetes: deployment \"shop\" successfully rolled out\n")
	assert.Contains(t, text, "✗ argocd: connection refused\n")
	assert.Contains(t, text, "ℹ kong: skipped (not configured: kong.adminURL is empty)\n")
	assert.Contains(t, text, "ℹ github: skipped (not configured)\n")
	assert.Contains(t, text, "✗ 2/3 checks passed\n")
}

func TestVerifier_RunOnlySelected(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	v := verifier.New(&out)
	v.Register(v1alpha1.CheckArgoCD, fail(errDown))
	v.Register(v1alpha1.CheckHealth, pass("ok"))

	summary, err := v.Run(context.Background(), []v1alpha1.Check{v1alpha1.CheckHealth})

	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, verifier.Passed, summary.Results[0].Outcome)
	assert.Contains(t, out.String(), "✔ 1/1 checks passed")
}
