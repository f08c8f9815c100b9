package k8s_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devantler-tech/deployctl/pkg/k8s"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

func writeKubeconfig(t *testing.T, path string, config *clientcmdapi.Config) {
	t.Helper()

	require.NoError(t, clientcmd.WriteToFile(*config, path))
}

func sourceConfig() *clientcmdapi.Config {
	config := clientcmdapi.NewConfig()
	config.Clusters["edge"] = &clientcmdapi.Cluster{
		Server:                   "https://10.0.0.5:6443",
		CertificateAuthorityData: []byte("ca"),
	}
	config.AuthInfos["edge-admin"] = &clientcmdapi.AuthInfo{Token: "secret-token"}
	config.Contexts["edge"] = &clientcmdapi.Context{Cluster: "edge", AuthInfo: "edge-admin"}
	config.CurrentContext = "edge"

	return config
}

func TestMergeContext_CreatesTarget(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "edge.yaml")
	target := filepath.Join(dir, "config")
	writeKubeconfig(t, source, sourceConfig())

	merged, err := k8s.MergeContext(k8s.MergeOptions{SourcePath: source, TargetPath: target, Name: "prod"})

	require.NoError(t, err)
	assert.Equal(t, "prod", merged.Name)
	assert.Equal(t, "https://10.0.0.5:6443", merged.Server)
	assert.Equal(t, "secret-token", merged.AuthInfo.Token)

	loaded, err := clientcmd.LoadFromFile(target)
	require.NoError(t, err)
	assert.Equal(t, "prod", loaded.Contexts["prod"].Cluster)
	assert.Equal(t, "prod", loaded.Contexts["prod"].AuthInfo)
	assert.Equal(t, []byte("ca"), loaded.Clusters["prod"].CertificateAuthorityData)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestMergeContext_ResolvesRelativeFiles(t *testing.T) {
	t.Parallel()

	sourceDir := filepath.Join(t.TempDir(), "edge")
	require.NoError(t, os.MkdirAll(filepath.Join(sourceDir, "pki"), 0o700))

	config := sourceConfig()
	config.Clusters["edge"].CertificateAuthorityData = nil
	config.Clusters["edge"].CertificateAuthority = "pki/ca.crt"
	config.AuthInfos["edge-admin"] = &clientcmdapi.AuthInfo{
		ClientCertificate: "pki/admin.crt",
		ClientKey:         "pki/admin.key",
		TokenFile:         "token",
	}

	source := filepath.Join(sourceDir, "kubeconfig")
	writeKubeconfig(t, source, config)

	target := filepath.Join(t.TempDir(), "config")

	merged, err := k8s.MergeContext(k8s.MergeOptions{SourcePath: source, TargetPath: target, Name: "edge"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(sourceDir, "pki", "ca.crt"), merged.Cluster.CertificateAuthority)
	assert.Equal(t, filepath.Join(sourceDir, "pki", "admin.crt"), merged.AuthInfo.ClientCertificate)
	assert.Equal(t, filepath.Join(sourceDir, "pki", "admin.key"), merged.AuthInfo.ClientKey)
	assert.Equal(t, filepath.Join(sourceDir, "token"), merged.AuthInfo.TokenFile)

	loaded, err := clientcmd.LoadFromFile(target)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sourceDir, "pki", "ca.crt"), loaded.Clusters["edge"].CertificateAuthority)
	assert.Equal(t, filepath.Join(sourceDir, "token"), loaded.AuthInfos["edge"].TokenFile)
}

func TestMergeContext_KeepsExistingEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "edge.yaml")
	target := filepath.Join(dir, "config")
	writeKubeconfig(t, source, sourceConfig())

	existing := clientcmdapi.NewConfig()
	existing.Clusters["dev"] = &clientcmdapi.Cluster{Server: "https://dev:6443"}
	existing.AuthInfos["dev"] = &clientcmdapi.AuthInfo{Token: "dev"}
	existing.Contexts["dev"] = &clientcmdapi.Context{Cluster: "dev", AuthInfo: "dev"}
	existing.CurrentContext = "dev"
	writeKubeconfig(t, target, existing)

	_, err := k8s.MergeContext(k8s.MergeOptions{
		SourcePath: source,
		TargetPath: target,
		Name:       "prod",
		Server:     "https://prod.example.com:6443",
	})
	require.NoError(t, err)

	loaded, err := clientcmd.LoadFromFile(target)
	require.NoError(t, err)
	assert.Contains(t, loaded.Contexts, "dev")
	assert.Contains(t, loaded.Contexts, "prod")
	assert.Equal(t, "dev", loaded.CurrentContext)
	assert.Equal(t, "https://prod.example.com:6443", loaded.Clusters["prod"].Server)
}

func TestMergeContext_ExistingNameRequiresForce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "edge.yaml")
	target := filepath.Join(dir, "config")
	writeKubeconfig(t, source, sourceConfig())

	opts := k8s.MergeOptions{SourcePath: source, TargetPath: target, Name: "prod"}

	_, err := k8s.MergeContext(opts)
	require.NoError(t, err)

	_, err = k8s.MergeContext(opts)
	require.ErrorIs(t, err, k8s.ErrContextExists)

	opts.Force = true
	_, err = k8s.MergeContext(opts)
	require.NoError(t, err)
}

func TestMergeContext_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "edge.yaml")
	writeKubeconfig(t, source, sourceConfig())

	broken := sourceConfig()
	broken.Contexts["edge"].AuthInfo = "missing"
	brokenPath := filepath.Join(dir, "broken.yaml")
	writeKubeconfig(t, brokenPath, broken)

	tests := []struct {
		name    string
		opts    k8s.MergeOptions
		wantErr error
	}{
		{
			name:    "empty paths",
			opts:    k8s.MergeOptions{Name: "prod"},
			wantErr: k8s.ErrKubeconfigPathEmpty,
		},
		{
			name:    "unknown source context",
			opts:    k8s.MergeOptions{SourcePath: source, SourceContext: "nope", TargetPath: filepath.Join(dir, "a"), Name: "prod"},
			wantErr: k8s.ErrContextNotFound,
		},
		{
			name:    "incomplete context",
			opts:    k8s.MergeOptions{SourcePath: brokenPath, TargetPath: filepath.Join(dir, "b"), Name: "prod"},
			wantErr: k8s.ErrClusterIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := k8s.MergeContext(tt.opts)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := k8s.MergeContext(k8s.MergeOptions{
		SourcePath: filepath.Join(dir, "missing.yaml"),
		TargetPath: filepath.Join(dir, "c"),
		Name:       "prod",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load source kubeconfig")
}
