package sessions

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/devantler-tech/deployctl/pkg/fsutil"
)

// Candidate is a project directory found under a root.
type Candidate struct {
	Name string
	Path string
}

//nolint:gochecknoglobals // immutable lookup table
var stackMarkers = []struct {
	tag   string
	files []string
}{
	{tag: "go", files: []string{"go.mod"}},
	{tag: "node", files: []string{"package.json"}},
	{tag: "python", files: []string{"pyproject.toml", "requirements.txt"}},
	{tag: "docker", files: []string{"Dockerfile"}},
	{tag: "rust", files: []string{"Cargo.toml"}},
}

//nolint:gochecknoglobals // immutable lookup table
var readmeNames = []string{"README.md", "README", "readme.md", "README.rst"}

// ScanRoots returns the non-hidden direct subdirectories of roots, ordered by root and
// then by name. Roots that do not exist are skipped and returned separately.
func ScanRoots(roots []string) ([]Candidate, []string, error) {
	var (
		candidates []Candidate
		missing    []string
	)

	for _, root := range roots {
		dir, err := fsutil.ExpandHomePath(root)
		if err != nil {
			return nil, nil, err
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				missing = append(missing, dir)

				continue
			}

			return nil, nil, fmt.Errorf("scan %s: %w", dir, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}

			candidates = append(candidates, Candidate{Name: entry.Name(), Path: filepath.Join(dir, entry.Name())})
		}
	}

	return candidates, missing, nil
}

// DetectTags returns the stack tags whose marker files exist in dir.
func DetectTags(dir string) []string {
	var tags []string

	for _, marker := range stackMarkers {
		if slices.ContainsFunc(marker.files, func(name string) bool { return exists(filepath.Join(dir, name)) }) {
			tags = append(tags, marker.tag)
		}
	}

	return tags
}

// Describe returns the first non-empty README line of dir without heading markers,
// or "Project <name>" when there is none.
func Describe(dir, name string) string {
	for _, readme := range readmeNames {
		line := firstLine(filepath.Join(dir, readme))
		if line != "" {
			return line
		}
	}

	return "Project " + name
}

func firstLine(path string) string {
	//nolint:gosec // path is a README inside a scanned project
	file, err := os.Open(path)
	if err != nil {
		return ""
	}

	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimLeft(scanner.Text(), "#= "))
		if line != "" {
			return line
		}
	}

	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}
