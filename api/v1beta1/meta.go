// Package v1beta1 contains the v1beta1 API types for tagrss documents.
package v1beta1

import (
	"errors"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
)

// APIVersion is the current API version for all tagrss document kinds.
const APIVersion = "tagrss.jacobcolvin.com/v1beta1"

var (
	// ValidAPIVersions contains all valid API versions.
	ValidAPIVersions = []string{APIVersion}

	ErrUnknownAPIVersion = errors.New("unknown apiVersion")
	ErrUnknownKind       = errors.New("unknown kind")
)

// TypeMeta contains the API version and kind metadata common to all document types.
type TypeMeta struct {
	// APIVersion specifies the API version for this document.
	APIVersion string `json:"apiVersion,omitempty" jsonschema:"title=API Version"`
	// Kind defines the type of document.
	Kind string `json:"kind,omitempty" jsonschema:"title=Kind"`
}

// NewTypeMeta returns a [TypeMeta] for kind at the current [APIVersion].
func NewTypeMeta(kind string) TypeMeta {
	return TypeMeta{APIVersion: APIVersion, Kind: kind}
}

// GetAPIVersion returns the API version.
func (tm TypeMeta) GetAPIVersion() string {
	return tm.APIVersion
}

// GetKind returns the kind.
func (tm TypeMeta) GetKind() string {
	return tm.Kind
}

// Object is the interface that all document types implement.
type Object interface {
	GetAPIVersion() string
	GetKind() string
	EnsureDefaults()
}

// CheckTypeMeta verifies that obj declares a known apiVersion and one of kinds.
// Empty fields are accepted, since hand-written documents may omit them.
func CheckTypeMeta(obj Object, kinds []string) error {
	if v := obj.GetAPIVersion(); v != "" && !slices.Contains(ValidAPIVersions, v) {
		return fmt.Errorf("%w %q", ErrUnknownAPIVersion, v)
	}

	if k := obj.GetKind(); k != "" && !slices.Contains(kinds, k) {
		return fmt.Errorf("%w %q, expected one of %v", ErrUnknownKind, k, kinds)
	}

	return nil
}

// ExtendSchemaWithEnums restricts the apiVersion and kind properties of a
// JSON schema to the given values.
func ExtendSchemaWithEnums(jss *jsonschema.Schema, apiVersions, kinds []string) {
	setEnum(jss, "apiVersion", apiVersions)
	setEnum(jss, "kind", kinds)
}

func setEnum(jss *jsonschema.Schema, property string, values []string) {
	prop, ok := jss.Properties.Get(property)
	if !ok {
		panic(property + " property not found in schema")
	}

	for _, v := range values {
		prop.Enum = append(prop.Enum, v)
	}

	_, _ = jss.Properties.Set(property, prop)
}
