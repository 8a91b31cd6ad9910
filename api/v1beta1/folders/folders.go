// Package folders provides the FolderCatalog document type.
//
// Only the document shell is schema validated. Each folder entry is parsed
// independently by [github.com/macropower/tagrss/pkg/folder], so that a
// single malformed entry does not invalidate its siblings.
package folders

import (
	"fmt"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/tagrss/api"
	"github.com/macropower/tagrss/api/v1beta1"
	"github.com/macropower/tagrss/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen/folders/main.go -o folders.v1beta1.json

// Kind is the kind of [FolderCatalog] documents.
const Kind = "FolderCatalog"

var (
	//go:embed folders.yaml
	defaultFoldersYAML []byte

	//go:embed folders.v1beta1.json
	schemaJSON []byte

	// ValidKinds contains the valid kind values for folder documents.
	ValidKinds = []string{Kind}

	// DefaultValidator validates the folder document shell.
	DefaultValidator = yaml.MustNewValidator("/folders.v1beta1.json", schemaJSON)

	// Compile-time interface checks.
	_ v1beta1.Object = (*FolderCatalog)(nil)
)

// EntryName returns the name of an undecoded folder declaration, or "" if
// entry is not a mapping or has no string name.
func EntryName(entry any) string {
	m, ok := entry.(map[string]any)
	if !ok {
		return ""
	}

	name, _ := m["name"].(string)

	return name
}

// FolderCatalog is an ordered list of virtual folder declarations.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type FolderCatalog struct {
	v1beta1.TypeMeta `json:",inline"`

	// Folders are listed in display order. Each entry is decoded on its own,
	// so entries of any shape are accepted here.
	Folders []any `json:"folders" jsonschema:"title=Folders"`
}

// New creates an empty [FolderCatalog] document.
func New() *FolderCatalog {
	return &FolderCatalog{TypeMeta: v1beta1.NewTypeMeta(Kind)}
}

// EnsureDefaults fills in omitted metadata.
func (f *FolderCatalog) EnsureDefaults() {
	if f.APIVersion == "" {
		f.APIVersion = v1beta1.APIVersion
	}

	if f.Kind == "" {
		f.Kind = Kind
	}
}

func (f FolderCatalog) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// Schema returns the embedded JSON schema.
func Schema() []byte {
	return schemaJSON
}

// WriteDefault writes the embedded example folders to the specified path.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultFoldersYAML, force, "folders")
	if err != nil {
		return fmt.Errorf("write default folders: %w", err)
	}

	return nil
}

// GetPath returns the default path of the folder document.
func GetPath() string {
	return api.GetConfigPath("folders.yaml")
}
