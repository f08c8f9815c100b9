package oci

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
)

// Registry verification errors.
var (
	// ErrTagNotFound is returned when a pushed tag does not resolve.
	ErrTagNotFound = errors.New("tag not found in registry")
	// ErrRegistryUnreachable is returned when the registry cannot be reached.
	ErrRegistryUnreachable = errors.New("registry is unreachable")
	// ErrRegistryAuthRequired is returned when the registry rejects anonymous or invalid credentials.
	ErrRegistryAuthRequired = errors.New(
		"registry requires authentication\n" +
			"  - set spec.registry.username and spec.registry.password",
	)
	// ErrRegistryPermissionDenied is returned when credentials lack access to the repository.
	ErrRegistryPermissionDenied = errors.New(
		"registry access denied\n" +
			"  - check the credentials can read the repository",
	)
)

// Credentials authenticate registry requests. Empty credentials are anonymous.
type Credentials struct {
	Username string
	Password string
}

// Verifier resolves image references against their registry.
type Verifier interface {
	// Resolve returns the manifest digest ref points to.
	Resolve(ctx context.Context, ref string) (string, error)
}

// RemoteVerifier implements Verifier with the registry HTTP API.
type RemoteVerifier struct {
	creds     Credentials
	insecure  bool
	transport http.RoundTripper
}

// NewVerifier returns a verifier. insecure allows plain HTTP registries.
func NewVerifier(creds Credentials, insecure bool) *RemoteVerifier {
	return &RemoteVerifier{creds: creds, insecure: insecure}
}

// WithTransport replaces the HTTP transport used for registry requests.
func (v *RemoteVerifier) WithTransport(rt http.RoundTripper) *RemoteVerifier {
	v.transport = rt

	return v
}

// Resolve issues a HEAD for the manifest of ref.
func (v *RemoteVerifier) Resolve(ctx context.Context, ref string) (string, error) {
	nameOpts := []name.Option{name.WeakValidation}
	if v.insecure {
		nameOpts = append(nameOpts, name.Insecure)
	}

	parsed, err := name.ParseReference(ref, nameOpts...)
	if err != nil {
		return "", fmt.Errorf("parse reference %s: %w", ref, err)
	}

	descriptor, err := remote.Head(parsed, v.remoteOptions(ctx)...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ref, classifyRegistryError(err))
	}

	return descriptor.Digest.String(), nil
}

func (v *RemoteVerifier) remoteOptions(ctx context.Context) []remote.Option {
	opts := []remote.Option{remote.WithContext(ctx)}

	if v.creds.Username != "" || v.creds.Password != "" {
		opts = append(opts, remote.WithAuth(&authn.Basic{
			Username: v.creds.Username,
			Password: v.creds.Password,
		}))
	}

	if v.transport != nil {
		opts = append(opts, remote.WithTransport(v.transport))
	}

	return opts
}

// classifyRegistryError maps transport failures onto the package errors.
func classifyRegistryError(err error) error {
	var transportErr *transport.Error
	if errors.As(err, &transportErr) {
		switch transportErr.StatusCode {
		case http.StatusNotFound:
			return ErrTagNotFound
		case http.StatusUnauthorized:
			return ErrRegistryAuthRequired
		case http.StatusForbidden:
			return ErrRegistryPermissionDenied
		}
	}

	lowerErr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lowerErr, "manifest unknown"),
		strings.Contains(lowerErr, "name_unknown"),
		strings.Contains(lowerErr, "name unknown"):
		return ErrTagNotFound
	case strings.Contains(lowerErr, "unauthorized"),
		strings.Contains(lowerErr, "authentication required"):
		return ErrRegistryAuthRequired
	case strings.Contains(lowerErr, "denied"),
		strings.Contains(lowerErr, "forbidden"):
		return ErrRegistryPermissionDenied
	case strings.Contains(lowerErr, "no such host"),
		strings.Contains(lowerErr, "connection refused"),
		strings.Contains(lowerErr, "dial tcp"):
		return fmt.Errorf("%w: %w", ErrRegistryUnreachable, err)
	default:
		return fmt.Errorf("registry check failed: %w", err)
	}
}
