package v1alpha1

import (
	"fmt"
	"slices"
	"strings"
)

// Check is one verification run by `deployctl verify`.
type Check string

const (
	// CheckKubernetes verifies the deployment exists and its rollout completed.
	CheckKubernetes Check = "kubernetes"
	// CheckArgoCD verifies the Application is Synced and Healthy.
	CheckArgoCD Check = "argocd"
	// CheckKong verifies the Kong admin API and the configured routes.
	CheckKong Check = "kong"
	// CheckGitHub reports the latest workflow run on the configured branch.
	CheckGitHub Check = "github"
	// CheckHealth polls the application health URL.
	CheckHealth Check = "health"
)

// ValidChecks returns every check in the order verify runs them.
func ValidChecks() []Check {
	return []Check{CheckKubernetes, CheckArgoCD, CheckKong, CheckGitHub, CheckHealth}
}

// Set for Check (pflag.Value interface).
func (c *Check) Set(value string) error {
	for _, check := range ValidChecks() {
		if strings.EqualFold(strings.TrimSpace(value), string(check)) {
			*c = check

			return nil
		}
	}

	return fmt.Errorf(
		"%w: %s (valid options: %s)",
		ErrInvalidCheck,
		value,
		strings.Join(c.ValidValues(), ", "),
	)
}

// IsValid checks if the check is known.
func (c *Check) IsValid() bool {
	return slices.Contains(ValidChecks(), *c)
}

// String returns the string representation of the Check.
func (c *Check) String() string {
	return string(*c)
}

// Type returns the type of the Check.
func (c *Check) Type() string {
	return "Check"
}

// ValidValues returns all valid Check values as strings.
func (c *Check) ValidValues() []string {
	values := make([]string, 0, len(ValidChecks()))
	for _, check := range ValidChecks() {
		values = append(values, string(check))
	}

	return values
}

// ParseChecks converts names into checks, keeping the canonical order and dropping duplicates.
// An empty input selects every check.
func ParseChecks(names []string) ([]Check, error) {
	if len(names) == 0 {
		return ValidChecks(), nil
	}

	selected := make(map[Check]bool, len(names))

	for _, name := range names {
		var check Check

		err := check.Set(name)
		if err != nil {
			return nil, err
		}

		selected[check] = true
	}

	checks := make([]Check, 0, len(selected))

	for _, check := range ValidChecks() {
		if selected[check] {
			checks = append(checks, check)
		}
	}

	return checks, nil
}
