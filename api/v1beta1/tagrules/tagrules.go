// Package tagrules provides the TagRules document type.
package tagrules

import (
	"fmt"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/tagrss/api"
	"github.com/macropower/tagrss/api/v1beta1"
	"github.com/macropower/tagrss/pkg/rule"
	"github.com/macropower/tagrss/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen/tagrules/main.go -o tagrules.v1beta1.json

// Kind is the kind of [TagRules] documents.
const Kind = "TagRules"

var (
	//go:embed rules.yaml
	defaultRulesYAML []byte

	//go:embed tagrules.v1beta1.json
	schemaJSON []byte

	// ValidKinds contains the valid kind values for tag rule documents.
	ValidKinds = []string{Kind}

	// DefaultValidator validates tag rule documents against the JSON schema.
	DefaultValidator = yaml.MustNewValidator("/tagrules.v1beta1.json", schemaJSON)

	// Compile-time interface checks.
	_ v1beta1.Object = (*TagRules)(nil)
)

// TagRules is the persisted form of an ordered rule set.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type TagRules struct {
	v1beta1.TypeMeta `json:",inline"`

	// Rules are evaluated in order against every item.
	Rules []rule.Spec `json:"rules" jsonschema:"title=Rules"`
}

// New creates an empty [TagRules] document.
func New() *TagRules {
	return &TagRules{TypeMeta: v1beta1.NewTypeMeta(Kind)}
}

// EnsureDefaults fills in omitted metadata.
func (t *TagRules) EnsureDefaults() {
	if t.APIVersion == "" {
		t.APIVersion = v1beta1.APIVersion
	}

	if t.Kind == "" {
		t.Kind = Kind
	}
}

func (t TagRules) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// MarshalYAML serializes the document to YAML.
func (t TagRules) MarshalYAML() ([]byte, error) {
	type alias TagRules

	if t.Rules == nil {
		t.Rules = []rule.Spec{}
	}

	b, err := api.MarshalYAML(alias(t))
	if err != nil {
		return nil, fmt.Errorf("marshal tag rules: %w", err)
	}

	return b, nil
}

// Schema returns the embedded JSON schema.
func Schema() []byte {
	return schemaJSON
}

// WriteDefault writes the embedded example rules to the specified path.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultRulesYAML, force, "tag rules")
	if err != nil {
		return fmt.Errorf("write default tag rules: %w", err)
	}

	return nil
}

// GetPath returns the default path of the tag rules document.
func GetPath() string {
	return api.GetConfigPath("rules.yaml")
}
