package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/pkg/jsonmessage"
)

// Credentials authenticate pushes to a registry. Empty credentials push anonymously.
type Credentials struct {
	ServerAddress string
	Username      string
	Password      string
}

func (c Credentials) encode() (string, error) {
	if c.Username == "" && c.Password == "" {
		return "", nil
	}

	auth, err := registry.EncodeAuthConfig(registry.AuthConfig{
		Username:      c.Username,
		Password:      c.Password,
		ServerAddress: c.ServerAddress,
	})
	if err != nil {
		return "", fmt.Errorf("encode registry credentials: %w", err)
	}

	return auth, nil
}

// Tag adds target as a new name for source.
func (e *Engine) Tag(ctx context.Context, source, target string) error {
	err := e.client.ImageTag(ctx, source, target)
	if err != nil {
		return fmt.Errorf("tag %s as %s: %w", source, target, err)
	}

	return nil
}

// Push pushes ref and fails when the daemon reports an error in the push stream.
func (e *Engine) Push(ctx context.Context, ref string, creds Credentials) error {
	auth, err := creds.encode()
	if err != nil {
		return err
	}

	stream, err := e.client.ImagePush(ctx, ref, image.PushOptions{RegistryAuth: auth})
	if err != nil {
		return fmt.Errorf("push %s: %w", ref, err)
	}

	defer func() { _ = stream.Close() }()

	err = jsonmessage.DisplayJSONMessagesStream(stream, e.progress, 0, false, nil)
	if err != nil {
		return fmt.Errorf("push %s: %w", ref, err)
	}

	return nil
}
