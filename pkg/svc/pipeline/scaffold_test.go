package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devantler-tech/deployctl/pkg/svc/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scaffoldOptions(root string) pipeline.ScaffoldOptions {
	return pipeline.ScaffoldOptions{
		TestDir:            filepath.Join(root, "tests"),
		TestGlob:           "test_*.py",
		PlaceholderPath:    filepath.Join(root, "tests", "test_placeholder.py"),
		PlaceholderContent: "def test_placeholder():\n    assert True\n",
	}
}

func TestScaffold_WritesPlaceholderWhenNoTests(t *testing.T) {
	t.Parallel()

	opts := scaffoldOptions(t.TempDir())

	written, err := pipeline.Scaffold(opts)
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(opts.PlaceholderPath)
	require.NoError(t, err)
	assert.Equal(t, opts.PlaceholderContent, string(data))

	written, err = pipeline.Scaffold(opts)
	require.NoError(t, err)
	assert.False(t, written)
}

func TestScaffold_SkipsWhenTestsExist(t *testing.T) {
	t.Parallel()

	opts := scaffoldOptions(t.TempDir())

	nested := filepath.Join(opts.TestDir, "unit")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "test_orders.py"), []byte("def test_x(): pass\n"), 0o644))

	written, err := pipeline.Scaffold(opts)
	require.NoError(t, err)
	assert.False(t, written)

	_, err = os.Stat(opts.PlaceholderPath)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScaffold_NeverOverwrites(t *testing.T) {
	t.Parallel()

	opts := scaffoldOptions(t.TempDir())
	opts.TestGlob = "*_spec.py"

	require.NoError(t, os.MkdirAll(opts.TestDir, 0o750))
	require.NoError(t, os.WriteFile(opts.PlaceholderPath, []byte("keep me\n"), 0o644))

	written, err := pipeline.Scaffold(opts)
	require.NoError(t, err)
	assert.False(t, written)

	data, err := os.ReadFile(opts.PlaceholderPath)
	require.NoError(t, err)
	assert.Equal(t, "keep me\n", string(data))
}

func TestScaffold_InvalidGlob(t *testing.T) {
	t.Parallel()

	opts := scaffoldOptions(t.TempDir())
	opts.TestGlob = "["

	_, err := pipeline.Scaffold(opts)
	require.Error(t, err)
}
