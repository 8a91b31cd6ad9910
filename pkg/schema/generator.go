// Package schema generates JSON schemas for tagrss documents from their Go
// types.
package schema

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/invopop/jsonschema"
)

// ModulePath is the import path of this module. Package paths given to
// [WithComments] must be below it.
const ModulePath = "github.com/macropower/tagrss"

// Generator reflects a Go value into a JSON schema.
type Generator struct {
	reflector *jsonschema.Reflector
	value     any
	id        string
	root      string
	packages  []string
}

// GeneratorOpt configures a [Generator].
type GeneratorOpt func(*Generator)

// WithID sets the $id of the generated schema.
func WithID(id string) GeneratorOpt {
	return func(g *Generator) {
		g.id = id
	}
}

// WithComments adds the Go doc comments of packages as descriptions. root is
// the directory holding the module's go.mod.
func WithComments(root string, packages ...string) GeneratorOpt {
	return func(g *Generator) {
		g.root = root
		g.packages = packages
	}
}

// NewGenerator creates a new [Generator] for value.
func NewGenerator(value any, opts ...GeneratorOpt) *Generator {
	g := &Generator{
		value: value,
		reflector: &jsonschema.Reflector{
			ExpandedStruct: true,
			DoNotReference: true,
		},
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate returns the indented JSON schema.
func (g *Generator) Generate() ([]byte, error) {
	for _, pkg := range g.packages {
		rel, ok := strings.CutPrefix(pkg, ModulePath+"/")
		if !ok {
			return nil, fmt.Errorf("package %q is not part of %s", pkg, ModulePath)
		}

		// Comment keys are derived by joining the base with the walked path,
		// so the base compensates for the root prefix.
		base := path.Join(ModulePath, relativeBase(g.root))

		err := g.reflector.AddGoComments(base, path.Join(g.root, rel))
		if err != nil {
			return nil, fmt.Errorf("add comments of %s: %w", pkg, err)
		}
	}

	jss := g.reflector.Reflect(g.value)
	if g.id != "" {
		jss.ID = jsonschema.ID(g.id)
	}

	out, err := json.MarshalIndent(jss, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(out, '\n'), nil
}

// relativeBase returns the path that cancels root when joined in front of
// it, e.g. "a/b/c" for "../../..".
func relativeBase(root string) string {
	root = path.Clean(root)
	if root == "." {
		return ""
	}

	parts := strings.Split(root, "/")
	base := make([]string, 0, len(parts))

	for _, p := range parts {
		if p != ".." {
			return ""
		}

		base = append(base, "_")
	}

	return strings.Join(base, "/")
}
