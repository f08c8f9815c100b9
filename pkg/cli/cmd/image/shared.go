package image

import (
	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/svc/deployer"
)

//nolint:gochecknoglobals // immutable bindings
var (
	tagBinding      = helpers.Binding{Key: "spec.tag", Flag: "tag"}
	platformBinding = helpers.Binding{Key: "spec.platform", Flag: "platform"}
)

func buildOptions(spec v1alpha1.Spec) deployer.BuildOptions {
	return deployer.BuildOptions{
		ProjectDir: spec.App.Directory,
		Project:    spec.App.Name,
		Platform:   spec.Platform,
	}
}
