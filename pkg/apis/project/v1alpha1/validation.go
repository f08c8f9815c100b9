package v1alpha1

import (
	"fmt"
	"regexp"
	"strings"
)

// nameRegex matches DNS-1123 labels, the form image, service and session names must take.
var nameRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9._-]*[a-z0-9])?$`)

// Validate reports every problem of project at once, wrapped in ErrInvalidConfig.
func (p *Project) Validate() error {
	var problems []string

	if p.APIVersion != "" && p.APIVersion != APIVersion {
		problems = append(problems, fmt.Sprintf("apiVersion %q is not %q", p.APIVersion, APIVersion))
	}

	if p.Kind != "" && p.Kind != Kind {
		problems = append(problems, fmt.Sprintf("kind %q is not %q", p.Kind, Kind))
	}

	spec := p.Spec

	problems = append(problems, validateImages(spec.Images)...)
	problems = append(problems, validateHealth(spec.Health)...)
	problems = append(problems, validateStandalone(spec.Standalone)...)
	problems = append(problems, validateKong(spec.Kong)...)

	if spec.Kubernetes.HealthPort < 0 || spec.Kubernetes.HealthPort > maxPort {
		problems = append(problems, fmt.Sprintf("kubernetes.healthPort %d is out of range", spec.Kubernetes.HealthPort))
	}

	if spec.GitHub.Repository != "" && strings.Count(spec.GitHub.Repository, "/") != 1 {
		problems = append(problems, fmt.Sprintf("github.repository %q must be owner/name", spec.GitHub.Repository))
	}

	for i, formatter := range spec.Pipeline.Formatters {
		if formatter.Name == "" {
			problems = append(problems, fmt.Sprintf("pipeline.formatters[%d].name is empty", i))
		}
	}

	if len(problems) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}

const maxPort = 65535

func validateImages(images []Image) []string {
	var problems []string

	seen := make(map[string]bool, len(images))

	for i, image := range images {
		switch {
		case image.Name == "":
			problems = append(problems, fmt.Sprintf("images[%d].name is empty", i))
		case !nameRegex.MatchString(image.Name):
			problems = append(problems, fmt.Sprintf("images[%d].name %q is not a valid image name", i, image.Name))
		case seen[image.Name]:
			problems = append(problems, fmt.Sprintf("images[%d].name %q is duplicated", i, image.Name))
		}

		seen[image.Name] = true
	}

	return problems
}

func validateHealth(health Health) []string {
	var problems []string

	if health.Attempts < 1 {
		problems = append(problems, fmt.Sprintf("health.attempts must be at least 1 (got %d)", health.Attempts))
	}

	if health.Interval <= 0 {
		problems = append(problems, fmt.Sprintf("health.interval must be positive (got %s)", health.Interval))
	}

	if health.ExpectedStatus != 0 && (health.ExpectedStatus < 100 || health.ExpectedStatus > 599) {
		problems = append(problems, fmt.Sprintf("health.expectedStatus %d is not an HTTP status", health.ExpectedStatus))
	}

	return problems
}

func validateStandalone(standalone Standalone) []string {
	var problems []string

	if standalone.HostPort < 0 || standalone.HostPort > maxPort {
		problems = append(problems, fmt.Sprintf("standalone.hostPort %d is out of range", standalone.HostPort))
	}

	if standalone.ContainerPort < 0 || standalone.ContainerPort > maxPort {
		problems = append(problems, fmt.Sprintf("standalone.containerPort %d is out of range", standalone.ContainerPort))
	}

	return problems
}

func validateKong(kong Kong) []string {
	var problems []string

	services := make(map[string]bool, len(kong.Services))
	routes := make(map[string]bool)

	for i, service := range kong.Services {
		if service.Name == "" {
			problems = append(problems, fmt.Sprintf("kong.services[%d].name is empty", i))
		} else if services[service.Name] {
			problems = append(problems, fmt.Sprintf("kong.services[%d].name %q is duplicated", i, service.Name))
		}

		services[service.Name] = true

		if service.URL == "" {
			problems = append(problems, fmt.Sprintf("kong.services[%d].url is empty", i))
		}

		for j, route := range service.Routes {
			if route.Name == "" {
				problems = append(problems, fmt.Sprintf("kong.services[%d].routes[%d].name is empty", i, j))
			} else if routes[route.Name] {
				problems = append(problems, fmt.Sprintf("kong.services[%d].routes[%d].name %q is duplicated", i, j, route.Name))
			}

			routes[route.Name] = true

			if len(route.Paths) == 0 && len(route.Hosts) == 0 {
				problems = append(problems, fmt.Sprintf("kong route %q needs paths or hosts", route.Name))
			}

			problems = append(problems, validatePlugins(fmt.Sprintf("kong route %q", route.Name), route.Plugins)...)
		}

		problems = append(problems, validatePlugins(fmt.Sprintf("kong service %q", service.Name), service.Plugins)...)
	}

	problems = append(problems, validatePlugins("kong", kong.Plugins)...)

	return problems
}

func validatePlugins(scope string, plugins []KongPlugin) []string {
	var problems []string

	seen := make(map[string]bool, len(plugins))

	for i, plugin := range plugins {
		if plugin.Name == "" {
			problems = append(problems, fmt.Sprintf("%s plugins[%d].name is empty", scope, i))

			continue
		}

		if seen[plugin.Name] {
			problems = append(problems, fmt.Sprintf("%s plugin %q is configured twice", scope, plugin.Name))
		}

		seen[plugin.Name] = true
	}

	return problems
}

// Require returns ErrMissingField naming every key whose value is empty.
// Keys are reported in the order given.
func Require(fields ...Field) error {
	var missing []string

	for _, field := range fields {
		if strings.TrimSpace(field.Value) == "" {
			missing = append(missing, field.Key)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
}

// Field pairs a config key with its resolved value for Require.
type Field struct {
	Key   string
	Value string
}
