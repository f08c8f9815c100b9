package deployer_test

import (
	"context"
	"testing"

	"github.com/devantler-tech/deployctl/pkg/client/compose"
	"github.com/devantler-tech/deployctl/pkg/client/docker"
	"github.com/devantler-tech/deployctl/pkg/svc/deployer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeployer(t *testing.T, engine *fakeEngine, health *fakeHealth) (*deployer.Deployer, []deployer.ImagePlan) {
	t.Helper()

	plans, err := deployer.PlanImages(testSpec(), nil, "", false)
	require.NoError(t, err)

	builder := deployer.NewBuilder(engine, nil, docker.Credentials{}, nil, nil)

	return deployer.NewDeployer(builder, health, nil), plans
}

func TestDeployer_Compose(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	health := &fakeHealth{}
	runner := &fakeCompose{}
	dep, plans := newDeployer(t, engine, health)

	up := compose.UpOptions{File: "docker-compose.yml", RemoveOrphans: true}

	err := dep.Compose(context.Background(), plans, runner, up, deployer.DeployOptions{
		HealthURL: "https://shop.example.com/health",
	})
	require.NoError(t, err)

	assert.Len(t, engine.builds, 2)
	assert.Len(t, engine.pushes, 2)
	assert.Equal(t, []compose.UpOptions{up}, runner.opts)
	assert.Equal(t, []string{"https://shop.example.com/health"}, health.urls)
}

func TestDeployer_ComposeSkipBuildAndHealth(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	health := &fakeHealth{}
	dep, plans := newDeployer(t, engine, health)

	err := dep.Compose(context.Background(), plans, &fakeCompose{}, compose.UpOptions{File: "c.yml"}, deployer.DeployOptions{
		SkipBuild: true,
		NoHealth:  true,
	})
	require.NoError(t, err)

	assert.Empty(t, engine.builds)
	assert.Len(t, engine.pushes, 2)
	assert.Empty(t, health.urls)
}

func TestDeployer_WebhookOnlyBuilt(t *testing.T) {
	t.Parallel()

	updater := &fakeUpdater{}
	dep, plans := newDeployer(t, &fakeEngine{}, &fakeHealth{})

	err := dep.Webhook(context.Background(), plans, updater, true, deployer.DeployOptions{NoHealth: true})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"ghcr.io/acme/api", "ghcr.io/acme/web"}}, updater.calls)
}

func TestDeployer_WebhookOnlyBuiltDeduplicatesTags(t *testing.T) {
	t.Parallel()

	plans, err := deployer.PlanImages(testSpec(), []string{"api"}, "v1.2.3", true)
	require.NoError(t, err)

	engine := &fakeEngine{}
	updater := &fakeUpdater{}
	dep := deployer.NewDeployer(deployer.NewBuilder(engine, nil, docker.Credentials{}, nil, nil), &fakeHealth{}, nil)

	err = dep.Webhook(context.Background(), plans, updater, true, deployer.DeployOptions{NoHealth: true})
	require.NoError(t, err)

	assert.Len(t, engine.pushes, 2)
	assert.Equal(t, [][]string{{"ghcr.io/acme/api"}}, updater.calls)
}

func TestDeployer_WebhookAllImages(t *testing.T) {
	t.Parallel()

	updater := &fakeUpdater{}
	dep, plans := newDeployer(t, &fakeEngine{}, &fakeHealth{})

	err := dep.Webhook(context.Background(), plans, updater, false, deployer.DeployOptions{NoHealth: true})
	require.NoError(t, err)

	require.Len(t, updater.calls, 1)
	assert.Empty(t, updater.calls[0])
}

func TestDeployer_RequiresHealthURL(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	dep, plans := newDeployer(t, engine, &fakeHealth{})

	err := dep.Webhook(context.Background(), plans, &fakeUpdater{}, false, deployer.DeployOptions{})

	require.ErrorIs(t, err, deployer.ErrHealthURLRequired)
	assert.Empty(t, engine.pushes)
}
