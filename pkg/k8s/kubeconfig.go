package k8s

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/devantler-tech/deployctl/pkg/fsutil"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// MergeOptions selects the context copied from one kubeconfig into another.
type MergeOptions struct {
	// SourcePath is the kubeconfig of the cluster being added.
	SourcePath string
	// SourceContext defaults to the current context of the source.
	SourceContext string
	// TargetPath is the kubeconfig receiving the entries. It is created when missing.
	TargetPath string
	// Name is used for the cluster, user and context entries in the target.
	Name string
	// Server overrides the API server URL of the copied cluster.
	Server string
	// Force replaces existing entries named Name.
	Force bool
}

// MergedCluster describes the entries written by MergeContext.
type MergedCluster struct {
	Name     string
	Server   string
	Cluster  *clientcmdapi.Cluster
	AuthInfo *clientcmdapi.AuthInfo
}

// MergeContext copies a context with its cluster and user from the source kubeconfig
// into the target kubeconfig under opts.Name. Relative file references of the source
// become absolute. Other target entries are kept. The target is written with mode 0600.
func MergeContext(opts MergeOptions) (*MergedCluster, error) {
	if opts.SourcePath == "" || opts.TargetPath == "" {
		return nil, ErrKubeconfigPathEmpty
	}

	sourcePath, err := fsutil.ExpandHomePath(opts.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("resolve source kubeconfig: %w", err)
	}

	targetPath, err := fsutil.ExpandHomePath(opts.TargetPath)
	if err != nil {
		return nil, fmt.Errorf("resolve target kubeconfig: %w", err)
	}

	source, err := clientcmd.LoadFromFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load source kubeconfig: %w", err)
	}

	// Certificate, key and token file paths are relative to the source file, not to the target.
	err = clientcmd.ResolveLocalPaths(source)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source kubeconfig paths: %w", err)
	}

	merged, err := extractContext(source, opts.SourceContext)
	if err != nil {
		return nil, err
	}

	if opts.Server != "" {
		merged.Cluster.Server = opts.Server
	}

	merged.Name = opts.Name
	merged.Server = merged.Cluster.Server

	target, err := loadOrEmpty(targetPath)
	if err != nil {
		return nil, err
	}

	if hasEntries(target, opts.Name) && !opts.Force {
		return nil, fmt.Errorf("%w: %s", ErrContextExists, opts.Name)
	}

	target.Clusters[opts.Name] = merged.Cluster
	target.AuthInfos[opts.Name] = merged.AuthInfo
	target.Contexts[opts.Name] = &clientcmdapi.Context{Cluster: opts.Name, AuthInfo: opts.Name}

	content, err := clientcmd.Write(*target)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize kubeconfig: %w", err)
	}

	err = fsutil.WriteFileAtomic(targetPath, content, fsutil.FilePermUserRW)
	if err != nil {
		return nil, fmt.Errorf("failed to write kubeconfig: %w", err)
	}

	return merged, nil
}

func extractContext(config *clientcmdapi.Config, contextName string) (*MergedCluster, error) {
	if contextName == "" {
		contextName = config.CurrentContext
	}

	kubeContext, ok := config.Contexts[contextName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrContextNotFound, contextName)
	}

	cluster, ok := config.Clusters[kubeContext.Cluster]
	if !ok {
		return nil, fmt.Errorf("%w: cluster %q missing", ErrClusterIncomplete, kubeContext.Cluster)
	}

	authInfo, ok := config.AuthInfos[kubeContext.AuthInfo]
	if !ok {
		return nil, fmt.Errorf("%w: user %q missing", ErrClusterIncomplete, kubeContext.AuthInfo)
	}

	return &MergedCluster{Cluster: cluster.DeepCopy(), AuthInfo: authInfo.DeepCopy()}, nil
}

func loadOrEmpty(path string) (*clientcmdapi.Config, error) {
	config, err := clientcmd.LoadFromFile(path)
	if err == nil {
		return config, nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load target kubeconfig: %w", err)
	}

	return clientcmdapi.NewConfig(), nil
}

func hasEntries(config *clientcmdapi.Config, name string) bool {
	_, hasContext := config.Contexts[name]
	_, hasCluster := config.Clusters[name]
	_, hasUser := config.AuthInfos[name]

	return hasContext || hasCluster || hasUser
}
