package schemas_test

import (
	"encoding/json"
	"testing"

	"github.com/devantler-tech/deployctl/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T) map[string]any {
	t.Helper()

	data, err := schemas.Generate()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))

	return schema
}

func prop(t *testing.T, schema map[string]any, keys ...string) map[string]any {
	t.Helper()

	current := schema

	for _, key := range keys {
		props, ok := current["properties"].(map[string]any)
		require.True(t, ok, "properties of %s", key)

		current, ok = props[key].(map[string]any)
		require.True(t, ok, key)
	}

	return current
}

func TestGenerate_RootMetadata(t *testing.T) {
	t.Parallel()

	schema := generate(t)

	assert.Equal(t, "deployctl Project", schema["title"])
	assert.Equal(t, false, schema["additionalProperties"])
	assert.Equal(t, []any{"spec"}, schema["required"])
	assert.Equal(t, []any{"Project"}, prop(t, schema, "kind")["enum"])
	assert.Equal(t, []any{"deployctl.io/v1alpha1"}, prop(t, schema, "apiVersion")["enum"])
}

func TestGenerate_NestedObjects(t *testing.T) {
	t.Parallel()

	schema := generate(t)

	assert.Nil(t, prop(t, schema, "spec")["required"])
	assert.Equal(t, "string", prop(t, schema, "spec", "kubernetes", "rolloutTimeout")["type"])
	assert.NotEmpty(t, prop(t, schema, "spec", "health", "interval")["pattern"])
	assert.Equal(t, "array", prop(t, schema, "spec", "kong", "services")["type"])
	assert.Equal(t, "object", prop(t, schema, "spec", "pipeline", "workflowEnv")["type"])
}
