package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunSafely(t *testing.T) {
	t.Parallel()

	t.Run("returns the runner exit code", func(t *testing.T) {
		t.Parallel()

		var errOut bytes.Buffer

		code := runSafely([]string{"verify"}, func(args []string) int {
			assert.Equal(t, []string{"verify"}, args)

			return 3
		}, &errOut)

		assert.Equal(t, 3, code)
		assert.Empty(t, errOut.String())
	})

	t.Run("recovers panics", func(t *testing.T) {
		t.Parallel()

		var errOut bytes.Buffer

		code := runSafely(nil, func([]string) int { panic("kaboom") }, &errOut)

		assert.Equal(t, 1, code)
		assert.Contains(t, errOut.String(), "✗ panic recovered: kaboom")
	})
}
