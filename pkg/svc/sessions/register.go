package sessions

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/devantler-tech/deployctl/pkg/fsutil"
)

// RegisterOptions shape the records added by Register.
type RegisterOptions struct {
	SocketDir string
	// Tags are added to the detected stack tags of every project.
	Tags      []string
	AutoStart bool
	DryRun    bool
}

// Result lists the names Register added and skipped.
type Result struct {
	Added   []string
	Skipped []string
}

// Register adds a session for every candidate whose name is not registered yet.
// Candidates sharing a name with an earlier one are skipped too.
func Register(ctx context.Context, store *Store, candidates []Candidate, opts RegisterOptions) (Result, error) {
	socketDir, err := fsutil.ExpandHomePath(opts.SocketDir)
	if err != nil {
		return Result{}, err
	}

	var result Result

	apply := func(registry *Registry, now time.Time) (bool, error) {
		stamp := now.Format(time.RFC3339)

		for _, candidate := range candidates {
			if registry.Has(candidate.Name) {
				result.Skipped = append(result.Skipped, candidate.Name)

				continue
			}

			registry.Sessions = append(registry.Sessions, Session{
				Name:        candidate.Name,
				Path:        candidate.Path,
				Description: Describe(candidate.Path, candidate.Name),
				Tags:        joinTags(DetectTags(candidate.Path), opts.Tags),
				AutoStart:   opts.AutoStart,
				CreatedAt:   stamp,
				UpdatedAt:   stamp,
				SocketPath:  filepath.Join(socketDir, candidate.Name+".sock"),
				Status:      StatusInactive,
			})

			result.Added = append(result.Added, candidate.Name)
		}

		return len(result.Added) > 0 && !opts.DryRun, nil
	}

	if opts.DryRun {
		registry, err := store.Load()
		if err != nil {
			return Result{}, err
		}

		_, err = apply(registry, store.now().UTC())

		return result, err
	}

	err = store.Update(ctx, apply)
	if err != nil {
		return Result{}, err
	}

	return result, nil
}

func joinTags(detected, extra []string) string {
	tags := slices.Clone(detected)

	for _, tag := range extra {
		tag = strings.TrimSpace(tag)
		if tag != "" && !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}

	return strings.Join(tags, ",")
}
