package k8s_test

import (
	"testing"

	"github.com/devantler-tech/deployctl/pkg/k8s"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeToDNSLabel(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                 "",
		"prod":             "prod",
		"Prod_EU.West":     "prod-eu-west",
		"  --edge  node-- ": "edge-node",
		"arn:aws:eks/x":    "arn-aws-eks-x",
	}

	for input, want := range tests {
		assert.Equal(t, want, k8s.SanitizeToDNSLabel(input), "input %q", input)
	}
}
