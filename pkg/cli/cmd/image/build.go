package image

import (
	"errors"
	"fmt"

	"github.com/devantler-tech/deployctl/pkg/cli/helpers"
	"github.com/devantler-tech/deployctl/pkg/client/oci"
	"github.com/devantler-tech/deployctl/pkg/cmd/parallel"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/svc/deployer"
	"github.com/devantler-tech/deployctl/pkg/utils/notify"
	"github.com/devantler-tech/deployctl/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// ErrVerifyWithoutPush is returned when --verify is used without --push.
var ErrVerifyWithoutPush = errors.New("--verify requires --push")

const buildLongDesc = `Build the images of the project.

Every image in spec.images is built from its context directory (or only the images
named as arguments). Images are tagged <registry.host>/<registry.repository>/<name>:<tag>.
A release tag such as v1.2.3 or 1.2.3-rc.1 must be valid semver and, with --also-latest,
the image is also tagged latest. Other tags (1.2, 2024.01.15, feature-x) are used as given.

Builds run concurrently. With --push every tag is pushed after all builds succeeded,
and with --verify each pushed tag is resolved through the registry API.`

type buildFlags struct {
	push        bool
	verify      bool
	alsoLatest  bool
	parallelism int64
}

// NewBuildCmd creates the image build command.
func NewBuildCmd(runtimeContainer *di.Runtime) *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:          "build [image...]",
		Short:        "Build and optionally push the project images",
		Long:         buildLongDesc,
		SilenceUsage: true,
	}

	cmd.RunE = di.RunEWithRuntime(
		runtimeContainer,
		di.WithTimer(func(cmd *cobra.Command, injector di.Injector, tmr timer.Timer) error {
			return runBuild(cmd, injector, tmr, flags, cmd.Flags().Args())
		}),
	)

	cmd.Flags().StringP("tag", "t", "", "image tag (default: spec.tag)")
	cmd.Flags().String("platform", "", "target platform such as linux/amd64 (default: spec.platform)")
	cmd.Flags().BoolVar(&flags.push, "push", false, "push the images after building")
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "resolve every pushed tag in the registry")
	cmd.Flags().BoolVar(&flags.alsoLatest, "also-latest", false, "also tag version builds as latest")
	cmd.Flags().Int64Var(
		&flags.parallelism, "parallel", 0,
		"maximum number of concurrent builds (default: number of CPUs, between 2 and 8)",
	)

	return cmd
}

func runBuild(
	cmd *cobra.Command,
	injector di.Injector,
	tmr timer.Timer,
	flags *buildFlags,
	names []string,
) error {
	if flags.verify && !flags.push {
		return ErrVerifyWithoutPush
	}

	project, err := helpers.LoadProject(cmd, tagBinding, platformBinding)
	if err != nil {
		return err
	}

	spec := project.Spec

	plans, err := deployer.PlanImages(spec, names, spec.Tag, flags.alsoLatest)
	if err != nil {
		return err
	}

	engine, err := helpers.NewDockerEngine(cmd, injector)
	if err != nil {
		return err
	}

	defer func() { _ = engine.Close() }()

	var verifier oci.Verifier

	if flags.verify {
		verifier, err = helpers.NewRegistryVerifier(injector, spec.Registry)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	builder := deployer.NewBuilder(
		engine,
		parallel.NewExecutor(flags.parallelism),
		helpers.RegistryCredentials(spec.Registry),
		verifier,
		out,
	)

	notify.Titlef(out, "🐳", "Build images...")

	err = builder.Build(cmd.Context(), plans, buildOptions(project.Spec))
	if err != nil {
		return err
	}

	notify.SuccessWithTimerf(out, helpers.Timer(cmd, tmr), "%d image(s) built", len(plans))

	if !flags.push {
		return nil
	}

	tmr.NewStage()

	notify.Titlef(out, "📦", "Push images...")

	err = builder.Push(cmd.Context(), plans, flags.verify)
	if err != nil {
		return fmt.Errorf("failed to push images: %w", err)
	}

	notify.SuccessWithTimerf(out, helpers.Timer(cmd, tmr), "%d tag(s) pushed", len(deployer.AllReferences(plans)))

	return nil
}
