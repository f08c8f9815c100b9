package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/devantler-tech/deployctl/pkg/fsutil"
)

var errFound = errors.New("found")

// ScaffoldOptions locate the test directory and the placeholder written into it.
type ScaffoldOptions struct {
	TestDir            string
	TestGlob           string
	PlaceholderPath    string
	PlaceholderContent string
}

// Scaffold writes the placeholder test when no file under TestDir matches TestGlob.
// It never overwrites an existing file and reports whether it wrote one.
func Scaffold(opts ScaffoldOptions) (bool, error) {
	found, err := hasMatchingFile(opts.TestDir, opts.TestGlob)
	if err != nil {
		return false, err
	}

	if found {
		return false, nil
	}

	written, err := fsutil.WriteFileIfMissing(
		opts.PlaceholderPath,
		[]byte(opts.PlaceholderContent),
		fsutil.FilePermReadable,
	)
	if err != nil {
		return false, fmt.Errorf("write placeholder test: %w", err)
	}

	return written, nil
}

func hasMatchingFile(dir, pattern string) (bool, error) {
	_, err := filepath.Match(pattern, "")
	if err != nil {
		return false, fmt.Errorf("invalid test glob %q: %w", pattern, err)
	}

	err = filepath.WalkDir(dir, func(_ string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			return nil
		}

		matched, _ := filepath.Match(pattern, entry.Name())
		if matched {
			return errFound
		}

		return nil
	})

	switch {
	case errors.Is(err, errFound):
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("scan %s: %w", dir, err)
	}

	return false, nil
}
