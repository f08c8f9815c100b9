package v1alpha1

import "time"

const (
	// Group is the API group of deployctl configuration.
	Group = "deployctl.io"
	// Version is the API version of deployctl configuration.
	Version = "v1alpha1"
	// Kind is the kind of a project file.
	Kind = "Project"
	// APIVersion is the full API version.
	APIVersion = Group + "/" + Version
)

// Project is the root of a deployctl.yaml file.
type Project struct {
	APIVersion string `json:"apiVersion,omitempty" mapstructure:"apiVersion"`
	Kind       string `json:"kind,omitempty"       mapstructure:"kind"`
	Spec       Spec   `json:"spec"                 mapstructure:"spec"`
}

// Spec holds every section of the project configuration.
type Spec struct {
	App        App        `json:"app"        mapstructure:"app"`
	Registry   Registry   `json:"registry"   mapstructure:"registry"`
	Images     []Image    `json:"images"     mapstructure:"images"`
	Tag        string     `json:"tag"        mapstructure:"tag"`
	Platform   string     `json:"platform"   mapstructure:"platform"`
	Kubernetes Kubernetes `json:"kubernetes" mapstructure:"kubernetes"`
	ArgoCD     ArgoCD     `json:"argocd"     mapstructure:"argocd"`
	Health     Health     `json:"health"     mapstructure:"health"`
	Standalone Standalone `json:"standalone" mapstructure:"standalone"`
	Watchtower Watchtower `json:"watchtower" mapstructure:"watchtower"`
	Kong       Kong       `json:"kong"       mapstructure:"kong"`
	GitHub     GitHub     `json:"github"     mapstructure:"github"`
	Pipeline   Pipeline   `json:"pipeline"   mapstructure:"pipeline"`
	Sessions   Sessions   `json:"sessions"   mapstructure:"sessions"`
}

// App names the application being deployed.
type App struct {
	Name      string `json:"name"      mapstructure:"name"`
	Directory string `json:"directory" mapstructure:"directory"`
}

// Registry is the container registry images are pushed to.
type Registry struct {
	Host       string `json:"host"       mapstructure:"host"`
	Repository string `json:"repository" mapstructure:"repository"`
	Username   string `json:"username"   mapstructure:"username"`
	Password   string `json:"password"   mapstructure:"password"`
	Insecure   bool   `json:"insecure"   mapstructure:"insecure"`
}

// Image is one Docker image built from the project.
type Image struct {
	Name       string            `json:"name"       mapstructure:"name"`
	Context    string            `json:"context"    mapstructure:"context"`
	Dockerfile string            `json:"dockerfile" mapstructure:"dockerfile"`
	Target     string            `json:"target"     mapstructure:"target"`
	BuildArgs  map[string]string `json:"buildArgs"  mapstructure:"buildArgs"`
}

// Kubernetes locates the workload in a cluster.
type Kubernetes struct {
	Kubeconfig     string        `json:"kubeconfig"     mapstructure:"kubeconfig"`
	Context        string        `json:"context"        mapstructure:"context"`
	Namespace      string        `json:"namespace"      mapstructure:"namespace"`
	Deployment     string        `json:"deployment"     mapstructure:"deployment"`
	ConfigMapFile  string        `json:"configMapFile"  mapstructure:"configMapFile"`
	HealthPort     int           `json:"healthPort"     mapstructure:"healthPort"`
	HealthPath     string        `json:"healthPath"     mapstructure:"healthPath"`
	RolloutTimeout time.Duration `json:"rolloutTimeout" mapstructure:"rolloutTimeout"`
}

// ArgoCD locates the Application that deploys the workload.
type ArgoCD struct {
	Namespace   string        `json:"namespace"   mapstructure:"namespace"`
	Application string        `json:"application" mapstructure:"application"`
	SyncTimeout time.Duration `json:"syncTimeout" mapstructure:"syncTimeout"`
}

// Health configures the fixed-interval health poll.
type Health struct {
	URL            string        `json:"url"            mapstructure:"url"`
	Attempts       int           `json:"attempts"       mapstructure:"attempts"`
	Interval       time.Duration `json:"interval"       mapstructure:"interval"`
	ExpectedStatus int           `json:"expectedStatus" mapstructure:"expectedStatus"`
}

// Standalone configures a single container run on the local Docker engine.
type Standalone struct {
	Image         string `json:"image"         mapstructure:"image"`
	ContainerName string `json:"containerName" mapstructure:"containerName"`
	BindAddress   string `json:"bindAddress"   mapstructure:"bindAddress"`
	HostPort      int    `json:"hostPort"      mapstructure:"hostPort"`
	ContainerPort int    `json:"containerPort" mapstructure:"containerPort"`
	EnvFile       string `json:"envFile"       mapstructure:"envFile"`
	HealthPath    string `json:"healthPath"    mapstructure:"healthPath"`
}

// Watchtower configures deployments to a host running Watchtower.
type Watchtower struct {
	ComposeFile    string `json:"composeFile"    mapstructure:"composeFile"`
	ComposeProject string `json:"composeProject" mapstructure:"composeProject"`
	URL            string `json:"url"            mapstructure:"url"`
	Token          string `json:"token"          mapstructure:"token"`
}

// Kong is the declarative gateway configuration applied through the Admin API.
type Kong struct {
	AdminURL   string        `json:"adminURL"   mapstructure:"adminURL"`
	AdminToken string        `json:"adminToken" mapstructure:"adminToken"`
	Services   []KongService `json:"services"   mapstructure:"services"`
	Plugins    []KongPlugin  `json:"plugins"    mapstructure:"plugins"`
}

// KongService is an upstream service with its routes.
type KongService struct {
	Name           string       `json:"name"           mapstructure:"name"`
	URL            string       `json:"url"            mapstructure:"url"`
	Retries        *int         `json:"retries"        mapstructure:"retries"`
	ConnectTimeout int          `json:"connectTimeout" mapstructure:"connectTimeout"`
	ReadTimeout    int          `json:"readTimeout"    mapstructure:"readTimeout"`
	WriteTimeout   int          `json:"writeTimeout"   mapstructure:"writeTimeout"`
	Routes         []KongRoute  `json:"routes"         mapstructure:"routes"`
	Plugins        []KongPlugin `json:"plugins"        mapstructure:"plugins"`
}

// KongRoute exposes a service on paths and hosts.
type KongRoute struct {
	Name         string       `json:"name"         mapstructure:"name"`
	Paths        []string     `json:"paths"        mapstructure:"paths"`
	Hosts        []string     `json:"hosts"        mapstructure:"hosts"`
	Methods      []string     `json:"methods"      mapstructure:"methods"`
	Protocols    []string     `json:"protocols"    mapstructure:"protocols"`
	StripPath    *bool        `json:"stripPath"    mapstructure:"stripPath"`
	PreserveHost bool         `json:"preserveHost" mapstructure:"preserveHost"`
	Plugins      []KongPlugin `json:"plugins"      mapstructure:"plugins"`
}

// KongPlugin enables a plugin on a service, a route or globally.
type KongPlugin struct {
	Name    string         `json:"name"    mapstructure:"name"`
	Enabled *bool          `json:"enabled" mapstructure:"enabled"`
	Config  map[string]any `json:"config"  mapstructure:"config"`
}

// GitHub locates the CI workflow runs checked by verify.
type GitHub struct {
	Host       string `json:"host"       mapstructure:"host"`
	Repository string `json:"repository" mapstructure:"repository"`
	Branch     string `json:"branch"     mapstructure:"branch"`
	Workflow   string `json:"workflow"   mapstructure:"workflow"`
}

// Command is an external formatter or linter invocation.
type Command struct {
	Name string   `json:"name" mapstructure:"name"`
	Args []string `json:"args" mapstructure:"args"`
}

// Pipeline configures the CI fixes applied by `deployctl pipeline`.
type Pipeline struct {
	Formatters         []Command         `json:"formatters"         mapstructure:"formatters"`
	WorkflowDir        string            `json:"workflowDir"        mapstructure:"workflowDir"`
	WorkflowEnv        map[string]string `json:"workflowEnv"        mapstructure:"workflowEnv"`
	AllowFailure       []string          `json:"allowFailure"       mapstructure:"allowFailure"`
	RunsOn             string            `json:"runsOn"             mapstructure:"runsOn"`
	TestDir            string            `json:"testDir"            mapstructure:"testDir"`
	TestGlob           string            `json:"testGlob"           mapstructure:"testGlob"`
	PlaceholderPath    string            `json:"placeholderPath"    mapstructure:"placeholderPath"`
	PlaceholderContent string            `json:"placeholderContent" mapstructure:"placeholderContent"`
}

// Sessions configures the local session registry filled by `deployctl project register`.
type Sessions struct {
	RegistryFile string   `json:"registryFile" mapstructure:"registryFile"`
	Roots        []string `json:"roots"        mapstructure:"roots"`
	SocketDir    string   `json:"socketDir"    mapstructure:"socketDir"`
	Tags         []string `json:"tags"         mapstructure:"tags"`
	AutoStart    bool     `json:"autoStart"    mapstructure:"autoStart"`
}
