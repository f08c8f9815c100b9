// Package schemas builds the JSON schema of deployctl.yaml for editor completion.
package schemas

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/invopop/jsonschema"
)

// durationPattern matches the duration strings accepted by time.ParseDuration.
const durationPattern = "^([0-9]+(\\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$"

// Generate returns the indented JSON schema of a project file.
func Generate() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper:                    mapType,
	}

	schema := reflector.Reflect(&v1alpha1.Project{})

	customize(schema)

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return data, nil
}

func customize(schema *jsonschema.Schema) {
	schema.ID = ""
	schema.Title = "deployctl Project"
	schema.Description = "JSON schema for deployctl project files (deployctl.yaml)"

	// Every field has a default or is checked by the command that needs it.
	walk(schema, func(s *jsonschema.Schema) {
		s.Required = nil
	})

	schema.Required = []string{"spec"}

	if schema.Properties == nil {
		return
	}

	if prop, ok := schema.Properties.Get("kind"); ok && prop != nil {
		prop.Enum = []any{v1alpha1.Kind}
	}

	if prop, ok := schema.Properties.Get("apiVersion"); ok && prop != nil {
		prop.Enum = []any{v1alpha1.APIVersion}
	}
}

func walk(schema *jsonschema.Schema, fn func(*jsonschema.Schema)) {
	if schema == nil {
		return
	}

	fn(schema)

	if schema.Properties != nil {
		for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			walk(pair.Value, fn)
		}
	}

	walk(schema.Items, fn)
	walk(schema.AdditionalProperties, fn)
}

func mapType(t reflect.Type) *jsonschema.Schema {
	if t == reflect.TypeFor[time.Duration]() {
		return &jsonschema.Schema{Type: "string", Pattern: durationPattern}
	}

	return nil
}
