package pipeline

import (
	"path/filepath"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/di"
	svcpipeline "github.com/devantler-tech/deployctl/pkg/svc/pipeline"
	"github.com/spf13/cobra"
)

// NewPipelineCmd creates the pipeline command group.
func NewPipelineCmd(runtimeContainer *di.Runtime) *cobra.Command {
	return helpers.NewGroupCmd(
		"pipeline",
		"Repair the project's CI pipeline",
		"Run the configured formatters, pin settings into the CI workflow files and "+
			"scaffold a placeholder test when the project has none.",
		NewFixCmd(runtimeContainer),
		NewScaffoldCmd(runtimeContainer),
	)
}

// inProject resolves path against the application directory unless it is absolute.
func inProject(app v1alpha1.App, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(app.Directory, path)
}

func scaffoldOptions(project *v1alpha1.Project) svcpipeline.ScaffoldOptions {
	cfg := project.Spec.Pipeline

	return svcpipeline.ScaffoldOptions{
		TestDir:            inProject(project.Spec.App, cfg.TestDir),
		TestGlob:           cfg.TestGlob,
		PlaceholderPath:    inProject(project.Spec.App, cfg.PlaceholderPath),
		PlaceholderContent: cfg.PlaceholderContent,
	}
}
