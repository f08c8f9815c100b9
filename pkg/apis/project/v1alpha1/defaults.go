package v1alpha1

import "time"

const (
	// DefaultConfigName is the base name of the project file searched in the working directory.
	DefaultConfigName = "deployctl"
	// DefaultTag is the image tag used when none is configured.
	DefaultTag = "latest"
	// DefaultNamespace is the Kubernetes namespace used when none is configured.
	DefaultNamespace = "default"
	// DefaultArgoCDNamespace is the namespace ArgoCD is installed in.
	DefaultArgoCDNamespace = "argocd"
	// DefaultRolloutTimeout bounds the wait for a deployment rollout.
	DefaultRolloutTimeout = 5 * time.Minute
	// DefaultSyncTimeout bounds the wait for an ArgoCD Application to become Synced and Healthy.
	DefaultSyncTimeout = 5 * time.Minute
	// DefaultHealthAttempts is the number of health probes before giving up.
	DefaultHealthAttempts = 30
	// DefaultHealthInterval is the pause between two health probes.
	DefaultHealthInterval = 2 * time.Second
	// DefaultHealthPath is the HTTP path probed on the application.
	DefaultHealthPath = "/health"
	// DefaultDockerfile is the Dockerfile name inside an image build context.
	DefaultDockerfile = "Dockerfile"
	// DefaultComposeFile is the compose file used by `deploy compose`.
	DefaultComposeFile = "docker-compose.yml"
	// DefaultBindAddress is the host address standalone containers publish on.
	DefaultBindAddress = "127.0.0.1"
	// DefaultWorkflowDir holds the CI workflow files rewritten by `pipeline fix`.
	DefaultWorkflowDir = ".github/workflows"
	// DefaultTestDir is where `pipeline scaffold` looks for tests.
	DefaultTestDir = "tests"
	// DefaultTestGlob matches test files inside the test directory.
	DefaultTestGlob = "test_*.py"
	// DefaultPlaceholderPath is the placeholder test written by `pipeline scaffold`.
	DefaultPlaceholderPath = "tests/test_placeholder.py"
	// DefaultPlaceholderContent is the body of the placeholder test.
	DefaultPlaceholderContent = "def test_placeholder():\n    assert True\n"
	// DefaultRegistryFile is the session registry document.
	DefaultRegistryFile = "~/.config/deployctl/sessions.json"
	// DefaultSocketDir is the directory session sockets are placed in.
	DefaultSocketDir = "~/.config/deployctl/sockets"
	// DefaultGitHubHost is the GitHub host used for token lookup.
	DefaultGitHubHost = "github.com"
)

// DefaultSessionRoots returns the directories scanned by `project register`.
func DefaultSessionRoots() []string {
	return []string{"~/projects", "~/work"}
}

// NewProject returns a project with every default applied.
func NewProject() *Project {
	project := &Project{
		APIVersion: APIVersion,
		Kind:       Kind,
	}

	SetDefaults(project)

	return project
}

// SetDefaults fills every zero-valued field of project that has a default.
func SetDefaults(project *Project) {
	if project.APIVersion == "" {
		project.APIVersion = APIVersion
	}

	if project.Kind == "" {
		project.Kind = Kind
	}

	spec := &project.Spec

	if spec.Tag == "" {
		spec.Tag = DefaultTag
	}

	for i := range spec.Images {
		if spec.Images[i].Context == "" {
			spec.Images[i].Context = "."
		}

		if spec.Images[i].Dockerfile == "" {
			spec.Images[i].Dockerfile = DefaultDockerfile
		}
	}

	setKubernetesDefaults(&spec.Kubernetes)
	setArgoCDDefaults(&spec.ArgoCD)
	setHealthDefaults(&spec.Health)
	setStandaloneDefaults(&spec.Standalone)

	if spec.Watchtower.ComposeFile == "" {
		spec.Watchtower.ComposeFile = DefaultComposeFile
	}

	if spec.GitHub.Host == "" {
		spec.GitHub.Host = DefaultGitHubHost
	}

	setPipelineDefaults(&spec.Pipeline)
	setSessionDefaults(&spec.Sessions)
}

func setKubernetesDefaults(kube *Kubernetes) {
	if kube.Namespace == "" {
		kube.Namespace = DefaultNamespace
	}

	if kube.HealthPath == "" {
		kube.HealthPath = DefaultHealthPath
	}

	if kube.RolloutTimeout == 0 {
		kube.RolloutTimeout = DefaultRolloutTimeout
	}
}

func setArgoCDDefaults(argo *ArgoCD) {
	if argo.Namespace == "" {
		argo.Namespace = DefaultArgoCDNamespace
	}

	if argo.SyncTimeout == 0 {
		argo.SyncTimeout = DefaultSyncTimeout
	}
}

func setHealthDefaults(health *Health) {
	if health.Attempts == 0 {
		health.Attempts = DefaultHealthAttempts
	}

	if health.Interval == 0 {
		health.Interval = DefaultHealthInterval
	}
}

func setStandaloneDefaults(standalone *Standalone) {
	if standalone.BindAddress == "" {
		standalone.BindAddress = DefaultBindAddress
	}

	if standalone.HealthPath == "" {
		standalone.HealthPath = DefaultHealthPath
	}

	if standalone.ContainerPort == 0 {
		standalone.ContainerPort = standalone.HostPort
	}
}

func setPipelineDefaults(pipeline *Pipeline) {
	if pipeline.WorkflowDir == "" {
		pipeline.WorkflowDir = DefaultWorkflowDir
	}

	if pipeline.TestDir == "" {
		pipeline.TestDir = DefaultTestDir
	}

	if pipeline.TestGlob == "" {
		pipeline.TestGlob = DefaultTestGlob
	}

	if pipeline.PlaceholderPath == "" {
		pipeline.PlaceholderPath = DefaultPlaceholderPath
	}

	if pipeline.PlaceholderContent == "" {
		pipeline.PlaceholderContent = DefaultPlaceholderContent
	}
}

func setSessionDefaults(sessions *Sessions) {
	if sessions.RegistryFile == "" {
		sessions.RegistryFile = DefaultRegistryFile
	}

	if len(sessions.Roots) == 0 {
		sessions.Roots = DefaultSessionRoots()
	}

	if sessions.SocketDir == "" {
		sessions.SocketDir = DefaultSocketDir
	}
}
