package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/tagrss/api/v1beta1"
	"github.com/macropower/tagrss/api/v1beta1/tagrules"
	"github.com/macropower/tagrss/pkg/schema"
)

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	gen := schema.NewGenerator(tagrules.New(), schema.WithID("https://example.com/tagrules.json"))

	data, err := gen.Generate()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "https://example.com/tagrules.json", got["$id"])

	props, ok := got["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "rules")

	apiVersion, ok := props["apiVersion"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{v1beta1.APIVersion}, apiVersion["enum"])

	kind, ok := props["kind"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{tagrules.Kind}, kind["enum"])
}

func TestGenerator_WithComments(t *testing.T) {
	t.Parallel()

	gen := schema.NewGenerator(tagrules.New(),
		schema.WithComments("../..", "github.com/macropower/tagrss/pkg/rule"),
	)

	data, err := gen.Generate()
	require.NoError(t, err)
	assert.Contains(t, string(data), "Type is one of Contains, TimeRange or FromSource.")
}

func TestGenerator_ForeignPackage(t *testing.T) {
	t.Parallel()

	gen := schema.NewGenerator(tagrules.New(),
		schema.WithComments("../..", "github.com/example/other"),
	)

	_, err := gen.Generate()
	require.ErrorContains(t, err, "not part of")
}
