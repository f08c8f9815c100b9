package project

import (
	"fmt"
	"os"
	"strings"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"gopkg.in/yaml.v3"
)

// rawProject holds the map-valued fields of a project file with their keys as written.
type rawProject struct {
	Spec struct {
		Images []struct {
			BuildArgs map[string]any `yaml:"buildArgs"`
		} `yaml:"images"`
		Pipeline struct {
			WorkflowEnv map[string]any `yaml:"workflowEnv"`
		} `yaml:"pipeline"`
		Kong struct {
			Plugins  []rawPlugin `yaml:"plugins"`
			Services []struct {
				Plugins []rawPlugin `yaml:"plugins"`
				Routes  []struct {
					Plugins []rawPlugin `yaml:"plugins"`
				} `yaml:"routes"`
			} `yaml:"services"`
		} `yaml:"kong"`
	} `yaml:"spec"`
}

type rawPlugin struct {
	Config map[string]any `yaml:"config"`
}

// restoreMapKeys puts back the case of map keys that viper lowercased. Values stay as
// decoded, so ${VAR} expansion is kept.
func restoreMapKeys(path string, config *v1alpha1.Project) error {
	//nolint:gosec // path is the config file chosen by the user
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var raw rawProject

	err = yaml.Unmarshal(content, &raw)
	if err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	spec := &config.Spec

	for i := range spec.Images {
		if i < len(raw.Spec.Images) {
			spec.Images[i].BuildArgs = restoreKeys(spec.Images[i].BuildArgs, raw.Spec.Images[i].BuildArgs)
		}
	}

	spec.Pipeline.WorkflowEnv = restoreKeys(spec.Pipeline.WorkflowEnv, raw.Spec.Pipeline.WorkflowEnv)

	restorePlugins(spec.Kong.Plugins, raw.Spec.Kong.Plugins)

	for i := range spec.Kong.Services {
		if i >= len(raw.Spec.Kong.Services) {
			break
		}

		rawService := raw.Spec.Kong.Services[i]
		restorePlugins(spec.Kong.Services[i].Plugins, rawService.Plugins)

		for j := range spec.Kong.Services[i].Routes {
			if j < len(rawService.Routes) {
				restorePlugins(spec.Kong.Services[i].Routes[j].Plugins, rawService.Routes[j].Plugins)
			}
		}
	}

	return nil
}

func restorePlugins(plugins []v1alpha1.KongPlugin, raw []rawPlugin) {
	for i := range plugins {
		if i < len(raw) {
			plugins[i].Config = restoreKeys(plugins[i].Config, raw[i].Config)
		}
	}
}

// restoreKeys renames every key of decoded to the raw key it lowercases to. Nested
// maps are restored recursively.
func restoreKeys[V any](decoded map[string]V, raw map[string]any) map[string]V {
	if len(decoded) == 0 || len(raw) == 0 {
		return decoded
	}

	originals := make(map[string]string, len(raw))
	for key := range raw {
		originals[strings.ToLower(key)] = key
	}

	restored := make(map[string]V, len(decoded))

	for key, value := range decoded {
		original, ok := originals[strings.ToLower(key)]
		if !ok {
			original = key
		}

		if nested, isMap := any(value).(map[string]any); isMap {
			if rawNested, rawIsMap := raw[original].(map[string]any); rawIsMap {
				if typed, ok := any(restoreKeys(nested, rawNested)).(V); ok {
					value = typed
				}
			}
		}

		restored[original] = value
	}

	return restored
}
