package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/devantler-tech/deployctl/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

const yamlIndent = 2

// ErrNotMapping is returned when a workflow document is not a YAML mapping.
var ErrNotMapping = errors.New("workflow is not a YAML mapping")

// Rules are the settings pinned into every workflow.
type Rules struct {
	// Env is merged into the top-level env block.
	Env map[string]string
	// AllowFailure names jobs that get continue-on-error: true.
	AllowFailure []string
	// RunsOn is set on jobs without runs-on. Reusable workflow calls are left alone.
	RunsOn string
}

// Empty reports whether the rules change nothing.
func (r Rules) Empty() bool {
	return len(r.Env) == 0 && len(r.AllowFailure) == 0 && r.RunsOn == ""
}

// RewriteWorkflow applies rules to a workflow file and reports whether anything changed.
// Unchanged input is returned as-is; comments and key order survive a rewrite.
func RewriteWorkflow(data []byte, rules Rules) ([]byte, bool, error) {
	var doc yaml.Node

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, false, fmt.Errorf("parse workflow: %w", err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, false, ErrNotMapping
	}

	root := doc.Content[0]

	changed := pinEnv(root, rules.Env)

	jobs := mappingValue(root, "jobs")
	if jobs != nil && jobs.Kind == yaml.MappingNode {
		changed = fixJobs(jobs, rules) || changed
	}

	if !changed {
		return data, false, nil
	}

	var buf bytes.Buffer

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(yamlIndent)

	err = encoder.Encode(&doc)
	if err == nil {
		err = encoder.Close()
	}

	if err != nil {
		return nil, false, fmt.Errorf("encode workflow: %w", err)
	}

	return buf.Bytes(), true, nil
}

// FixWorkflows rewrites every *.yml and *.yaml file in dir. It returns the files that
// changed, or would change when dryRun is set. A missing dir holds no workflows.
func FixWorkflows(dir string, rules Rules, dryRun bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read workflow dir %s: %w", dir, err)
	}

	var changed []string

	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yml" && ext != ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())

		updated, err := fixWorkflowFile(path, rules, dryRun)
		if err != nil {
			return changed, err
		}

		if updated {
			changed = append(changed, path)
		}
	}

	return changed, nil
}

func fixWorkflowFile(path string, rules Rules, dryRun bool) (bool, error) {
	//nolint:gosec // path comes from the configured workflow directory
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	rewritten, changed, err := RewriteWorkflow(data, rules)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}

	if !changed || dryRun {
		return changed, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	err = fsutil.WriteFileAtomic(path, rewritten, info.Mode().Perm())
	if err != nil {
		return false, err
	}

	return true, nil
}

func pinEnv(root *yaml.Node, env map[string]string) bool {
	if len(env) == 0 {
		return false
	}

	block := mappingValue(root, "env")
	if block == nil {
		block = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		insertBefore(root, "jobs", scalar("env"), block)
	}

	if block.Kind != yaml.MappingNode {
		return false
	}

	changed := false

	for _, key := range slices.Sorted(maps.Keys(env)) {
		changed = setScalar(block, key, env[key], "!!str") || changed
	}

	return changed
}

func fixJobs(jobs *yaml.Node, rules Rules) bool {
	changed := false

	for i := 0; i+1 < len(jobs.Content); i += 2 {
		name := jobs.Content[i].Value

		job := jobs.Content[i+1]
		if job.Kind != yaml.MappingNode {
			continue
		}

		if slices.Contains(rules.AllowFailure, name) {
			changed = setScalar(job, "continue-on-error", "true", "!!bool") || changed
		}

		if rules.RunsOn != "" && mappingValue(job, "runs-on") == nil && mappingValue(job, "uses") == nil {
			insertAfter(job, "name", scalar("runs-on"), scalar(rules.RunsOn))

			changed = true
		}
	}

	return changed
}

func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}

	return nil
}

// setScalar sets key to value, appending the pair when key is missing.
func setScalar(mapping *yaml.Node, key, value, tag string) bool {
	existing := mappingValue(mapping, key)
	if existing != nil {
		if existing.Kind == yaml.ScalarNode && sameScalar(existing.Value, value, tag) {
			return false
		}

		existing.Kind = yaml.ScalarNode
		existing.Tag = tag
		existing.Value = value
		existing.Style = 0
		existing.Content = nil

		return true
	}

	valueNode := scalar(value)
	valueNode.Tag = tag

	mapping.Content = append(mapping.Content, scalar(key), valueNode)

	return true
}

func sameScalar(current, value, tag string) bool {
	if tag == "!!bool" {
		return strings.EqualFold(current, value)
	}

	return current == value
}

func insertBefore(mapping *yaml.Node, anchor string, key, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == anchor {
			mapping.Content = slices.Insert(mapping.Content, i, key, value)

			return
		}
	}

	mapping.Content = append(mapping.Content, key, value)
}

// insertAfter places the pair after anchor, or first when anchor is missing.
func insertAfter(mapping *yaml.Node, anchor string, key, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == anchor {
			mapping.Content = slices.Insert(mapping.Content, i+2, key, value)

			return
		}
	}

	mapping.Content = slices.Insert(mapping.Content, 0, key, value)
}

func scalar(value string) *yaml.Node {
	node := &yaml.Node{}
	node.SetString(value)

	return node
}
