package verify_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/cli/cmd/verify"
	"github.com/devantler-tech/deployctl/pkg/cli/cmdtest"
	"github.com/devantler-tech/deployctl/pkg/client/argocd"
	"github.com/devantler-tech/deployctl/pkg/client/github"
	"github.com/devantler-tech/deployctl/pkg/di"
	"github.com/devantler-tech/deployctl/pkg/k8s"
	"github.com/devantler-tech/deployctl/pkg/svc/verifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
)

func deployment() *appsv1.Deployment {
	replicas := int32(1)

	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "shop", Namespace: "apps"},
		Spec:       appsv1.DeploymentSpec{Replicas: &replicas},
		Status:     appsv1.DeploymentStatus{Replicas: 1, UpdatedReplicas: 1, AvailableReplicas: 1},
	}
}

func application(sync, health string) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "argoproj.io/v1alpha1",
		"kind":       "Application",
		"metadata":   map[string]any{"name": "shop", "namespace": "argocd"},
		"status": map[string]any{
			"sync":   map[string]any{"status": sync},
			"health": map[string]any{"status": health},
		},
	}}
}

// newServer serves the workflow runs API and the application health endpoint.
func newServer(t *testing.T, conclusion string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/shop/actions/workflows/ci.yml/runs", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, `{"total_count":1,"workflow_runs":[{"name":"ci","run_number":12,`+
			`"status":"completed","conclusion":%q,"html_url":"https://github.com/acme/shop/actions/runs/1"}]}`, conclusion)
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func newRuntime(server *httptest.Server, app *unstructured.Unstructured) *di.Runtime {
	clientset := fake.NewClientset(deployment())
	dynamic := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(
		runtime.NewScheme(),
		map[schema.GroupVersionResource]string{argocd.ApplicationGVR: "ApplicationList"},
		app,
	)

	return di.NewRuntime(
		di.ProvideValue[k8s.ClientFactory](func(v1alpha1.Kubernetes) (*k8s.Clients, error) {
			return &k8s.Clients{Kube: clientset, Dynamic: dynamic}, nil
		}),
		di.ProvideValue[github.ClientFactory](func(host string) (*github.Client, error) {
			client, err := github.NewClient(server.Client(), host, "")
			if err != nil {
				return nil, err
			}

			return client, client.SetBaseURL(server.URL)
		}),
	)
}

func writeProject(t *testing.T, serverURL string) string {
	t.Helper()

	return cmdtest.WriteProject(t, fmt.Sprintf(`apiVersion: deployctl.io/v1alpha1
kind: Project
spec:
  app:
    name: shop
  kubernetes:
    namespace: apps
    deployment: shop
  argocd:
    application: shop
  github:
    repository: acme/shop
    branch: main
    workflow: ci.yml
  health:
    url: %s/health
    attempts: 2
    interval: 10ms
`, serverURL))
}

func TestVerify_AllConfiguredChecksPass(t *testing.T) {
	t.Parallel()

	server := newServer(t, "success")

	result, err := cmdtest.Run(
		t, verify.NewVerifyCmd(newRuntime(server, application("Synced", "Healthy"))), writeProject(t, server.URL),
	)
	require.NoError(t, err)

	assert.Contains(t, result.Stdout, `✔ kubernetes: deployment "shop" successfully rolled out`)
	assert.Contains(t, result.Stdout, "✔ argocd: sync=Synced health=Healthy")
	assert.Contains(t, result.Stdout, "ℹ kong: skipped (not configured)")
	assert.Contains(t, result.Stdout, "✔ github: ci #12 completed success https://github.com/acme/shop/actions/runs/1")
	assert.Contains(t, result.Stdout, "✔ health: "+server.URL+"/health is healthy")
	assert.Contains(t, result.Stdout, "✔ 4/4 checks passed")
}

func TestVerify_FailingChecksFailTheCommand(t *testing.T) {
	t.Parallel()

	server := newServer(t, "failure")

	result, err := cmdtest.Run(
		t, verify.NewVerifyCmd(newRuntime(server, application("OutOfSync", "Degraded"))), writeProject(t, server.URL),
	)
	require.ErrorIs(t, err, verifier.ErrChecksFailed)

	assert.Contains(t, result.Stdout, "✗ argocd:")
	assert.Contains(t, result.Stdout, "✗ github:")
	assert.Contains(t, result.Stdout, "✗ 2/4 checks passed")
}

func TestVerify_OnlyRunsSelectedChecks(t *testing.T) {
	t.Parallel()

	server := newServer(t, "failure")

	result, err := cmdtest.Run(
		t, verify.NewVerifyCmd(newRuntime(server, application("OutOfSync", "Degraded"))), writeProject(t, server.URL),
		"--only", "health,kubernetes",
	)
	require.NoError(t, err)

	assert.NotContains(t, result.Stdout, "argocd")
	assert.NotContains(t, result.Stdout, "github")
	assert.Contains(t, result.Stdout, "✔ 2/2 checks passed")
}

func TestVerify_RejectsUnknownCheck(t *testing.T) {
	t.Parallel()

	server := newServer(t, "success")

	_, err := cmdtest.Run(
		t, verify.NewVerifyCmd(newRuntime(server, application("Synced", "Healthy"))), writeProject(t, server.URL),
		"--only", "dns",
	)
	require.ErrorIs(t, err, v1alpha1.ErrInvalidCheck)
}
