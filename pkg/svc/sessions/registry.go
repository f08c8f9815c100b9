package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devantler-tech/deployctl/pkg/fsutil"
	"github.com/gofrs/flock"
)

const (
	// StatusInactive is the status of a freshly registered session.
	StatusInactive = "inactive"

	lockRetryDelay = 100 * time.Millisecond
)

// ErrLockTimeout is returned when the registry lock cannot be acquired before the context ends.
var ErrLockTimeout = errors.New("timed out waiting for the session registry lock")

// Session is one registered project.
type Session struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
	AutoStart   bool   `json:"auto_start"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	SocketPath  string `json:"socket_path"`
	Status      string `json:"status"`
}

// Registry is the document stored on disk.
type Registry struct {
	Sessions  []Session `json:"sessions"`
	UpdatedAt string    `json:"updated_at"`
}

// Has reports whether a session called name is registered.
func (r *Registry) Has(name string) bool {
	for _, session := range r.Sessions {
		if session.Name == name {
			return true
		}
	}

	return false
}

// Store reads and writes the registry file at path.
type Store struct {
	path string
	now  func() time.Time
}

// NewStore returns a store for path. A leading ~ is expanded to the home directory.
func NewStore(path string) (*Store, error) {
	expanded, err := fsutil.ExpandHomePath(path)
	if err != nil {
		return nil, err
	}

	if expanded == "" {
		return nil, fsutil.ErrEmptyOutputPath
	}

	return &Store{path: expanded, now: time.Now}, nil
}

// Path returns the registry file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the registry. A missing file is an empty registry.
func (s *Store) Load() (*Registry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Registry{Sessions: []Session{}}, nil
		}

		return nil, fmt.Errorf("read session registry %s: %w", s.path, err)
	}

	var registry Registry

	err = json.Unmarshal(data, &registry)
	if err != nil {
		return nil, fmt.Errorf("parse session registry %s: %w", s.path, err)
	}

	if registry.Sessions == nil {
		registry.Sessions = []Session{}
	}

	return &registry, nil
}

// Update loads the registry under the exclusive lock, applies mutate and writes the
// result back atomically when mutate reports a change.
func (s *Store) Update(ctx context.Context, mutate func(registry *Registry, now time.Time) (bool, error)) error {
	fileLock := flock.New(s.path + ".lock")

	err := os.MkdirAll(filepath.Dir(s.path), 0o750)
	if err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}

	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLockTimeout, err)
	}

	if !locked {
		return ErrLockTimeout
	}

	defer func() { _ = fileLock.Unlock() }()

	registry, err := s.Load()
	if err != nil {
		return err
	}

	now := s.now().UTC()

	changed, err := mutate(registry, now)
	if err != nil || !changed {
		return err
	}

	registry.UpdatedAt = now.Format(time.RFC3339)

	data, err := json.MarshalIndent(registry, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session registry: %w", err)
	}

	return fsutil.WriteFileAtomic(s.path, append(data, '\n'), fsutil.FilePermUserRW)
}
