package argocd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/devantler-tech/deployctl/pkg/k8s"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

const (
	// SecretTypeLabel marks Secrets Argo CD reads declarative configuration from.
	SecretTypeLabel = "argocd.argoproj.io/secret-type"
	// SecretTypeCluster is the SecretTypeLabel value of cluster Secrets.
	SecretTypeCluster = "cluster"

	managedByLabel = "app.kubernetes.io/managed-by"
	managedByValue = "deployctl"
)

// TLSClientConfig is the TLS part of an Argo CD cluster config.
type TLSClientConfig struct {
	Insecure   bool   `json:"insecure"`
	ServerName string `json:"serverName,omitempty"`
	CAData     []byte `json:"caData,omitempty"`
	CertData   []byte `json:"certData,omitempty"`
	KeyData    []byte `json:"keyData,omitempty"`
}

// ClusterConfig is the `config` value of an Argo CD cluster Secret.
type ClusterConfig struct {
	BearerToken     string          `json:"bearerToken,omitempty"`
	Username        string          `json:"username,omitempty"`
	Password        string          `json:"password,omitempty"`
	TLSClientConfig TLSClientConfig `json:"tlsClientConfig"`
}

// Cluster is a cluster to register with Argo CD.
type Cluster struct {
	Name   string
	Server string
	Config ClusterConfig
}

// ClusterFromKubeconfig builds a Cluster from kubeconfig entries. Certificate and token
// files referenced by the entries are read and inlined.
func ClusterFromKubeconfig(
	name, server string,
	cluster *clientcmdapi.Cluster,
	authInfo *clientcmdapi.AuthInfo,
) (Cluster, error) {
	caData, err := dataOrFile(cluster.CertificateAuthorityData, cluster.CertificateAuthority)
	if err != nil {
		return Cluster{}, fmt.Errorf("read certificate authority: %w", err)
	}

	certData, err := dataOrFile(authInfo.ClientCertificateData, authInfo.ClientCertificate)
	if err != nil {
		return Cluster{}, fmt.Errorf("read client certificate: %w", err)
	}

	keyData, err := dataOrFile(authInfo.ClientKeyData, authInfo.ClientKey)
	if err != nil {
		return Cluster{}, fmt.Errorf("read client key: %w", err)
	}

	token := authInfo.Token
	if token == "" && authInfo.TokenFile != "" {
		raw, readErr := dataOrFile(nil, authInfo.TokenFile)
		if readErr != nil {
			return Cluster{}, fmt.Errorf("read token file: %w", readErr)
		}

		token = string(raw)
	}

	if server == "" {
		server = cluster.Server
	}

	return Cluster{
		Name:   name,
		Server: server,
		Config: ClusterConfig{
			BearerToken: token,
			Username:    authInfo.Username,
			Password:    authInfo.Password,
			TLSClientConfig: TLSClientConfig{
				Insecure:   cluster.InsecureSkipTLSVerify,
				ServerName: cluster.TLSServerName,
				CAData:     caData,
				CertData:   certData,
				KeyData:    keyData,
			},
		},
	}, nil
}

func dataOrFile(data []byte, path string) ([]byte, error) {
	if len(data) > 0 || path == "" {
		return data, nil
	}

	//nolint:gosec // path comes from the kubeconfig being registered
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return content, nil
}

// ClusterSecretName returns the Secret name used for a cluster.
func ClusterSecretName(clusterName string) string {
	return "cluster-" + k8s.SanitizeToDNSLabel(clusterName)
}

// BuildClusterSecret returns the declarative cluster Secret for cluster.
func BuildClusterSecret(namespace string, cluster Cluster) (*corev1.Secret, error) {
	config, err := json.Marshal(cluster.Config)
	if err != nil {
		return nil, fmt.Errorf("encode cluster config: %w", err)
	}

	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      ClusterSecretName(cluster.Name),
			Namespace: namespace,
			Labels: map[string]string{
				SecretTypeLabel: SecretTypeCluster,
				managedByLabel:  managedByValue,
			},
		},
		Type: corev1.SecretTypeOpaque,
		StringData: map[string]string{
			"name":   cluster.Name,
			"server": cluster.Server,
			"config": string(config),
		},
	}, nil
}
