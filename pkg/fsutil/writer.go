package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FilePermUserRW is used for files holding credentials or shared state.
	FilePermUserRW = 0o600
	// FilePermReadable is used for generated project files.
	FilePermReadable = 0o644
	dirPerm          = 0o750
)

// WriteFileIfMissing writes content to output unless the file already exists.
// It reports whether the file was written.
func WriteFileIfMissing(output string, content []byte, perm os.FileMode) (bool, error) {
	if output == "" {
		return false, ErrEmptyOutputPath
	}

	output = filepath.Clean(output)

	err := os.MkdirAll(filepath.Dir(output), dirPerm)
	if err != nil {
		return false, fmt.Errorf("failed to create directory %s: %w", filepath.Dir(output), err)
	}

	//nolint:gosec // output is a configured project path
	file, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}

		return false, fmt.Errorf("failed to create file %s: %w", output, err)
	}

	_, err = file.Write(content)
	closeErr := file.Close()

	if err = errors.Join(err, closeErr); err != nil {
		return false, fmt.Errorf("failed to write file %s: %w", output, err)
	}

	return true, nil
}

// WriteFileAtomic replaces output with content. The data is written to a temporary
// file in the same directory, synced and renamed over output, so readers observe
// either the old or the new file.
func WriteFileAtomic(output string, content []byte, perm os.FileMode) error {
	if output == "" {
		return ErrEmptyOutputPath
	}

	dir := filepath.Dir(output)

	err := os.MkdirAll(dir, dirPerm)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(output)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tmpName := tmp.Name()
	committed := false

	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	_, err = tmp.Write(content)
	if err == nil {
		err = tmp.Sync()
	}

	if err == nil {
		err = tmp.Chmod(perm)
	}

	closeErr := tmp.Close()

	if err = errors.Join(err, closeErr); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	err = os.Rename(tmpName, output)
	if err != nil {
		return fmt.Errorf("failed to replace %s: %w", output, err)
	}

	committed = true

	return nil
}
