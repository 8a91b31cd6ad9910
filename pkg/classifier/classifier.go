// Package classifier combines tag rules and folders into the operations
// used by the update cycle, the CLI and the MCP server.
package classifier

import (
	"errors"
	"fmt"

	"github.com/macropower/tagrss/pkg/folder"
	"github.com/macropower/tagrss/pkg/item"
	"github.com/macropower/tagrss/pkg/ruleset"
)

// ErrUnknownFolder indicates a folder name missing from the catalog.
var ErrUnknownFolder = errors.New("unknown folder")

// Classifier applies a [ruleset.RuleSet] and a [folder.Catalog] to items.
type Classifier struct {
	rules   *ruleset.RuleSet
	catalog *folder.Catalog
}

// New creates a new [Classifier]. Nil arguments are replaced with empty
// values.
func New(rules *ruleset.RuleSet, catalog *folder.Catalog) *Classifier {
	if rules == nil {
		rules = ruleset.New()
	}

	if catalog == nil {
		catalog = folder.NewCatalog()
	}

	return &Classifier{rules: rules, catalog: catalog}
}

// Load reads the tag rules and folder documents. Missing files yield an
// empty rule set or catalog.
func Load(rulesPath, foldersPath string, opts ...folder.Option) (*Classifier, error) {
	rules, err := ruleset.Load(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("load tag rules: %w", err)
	}

	catalog, err := folder.LoadCatalog(foldersPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("load folders: %w", err)
	}

	return New(rules, catalog), nil
}

// Rules returns the rule set.
func (c *Classifier) Rules() *ruleset.RuleSet {
	return c.rules
}

// Catalog returns the folder catalog.
func (c *Classifier) Catalog() *folder.Catalog {
	return c.catalog
}

// ApplyTagRules adds the tags of all matching rules to it and returns the
// number of newly added tag names.
func (c *Classifier) ApplyTagRules(it *item.Item) int {
	return c.rules.Apply(it)
}

// ClassifyIntoFolders returns the names of all folders containing it.
func (c *Classifier) ClassifyIntoFolders(it *item.Item) []string {
	return c.catalog.Classify(it)
}

// Result describes the classification of one item.
type Result struct {
	Tags    []string `json:"tags"`
	Folders []string `json:"folders"`
	Added   int      `json:"added"`
}

// Classify applies the tag rules to a copy of it and then places the copy
// into folders, so that folders can select on tags assigned by rules.
// it is left unchanged; use [Classifier.ApplyTagRules] to tag it in place.
func (c *Classifier) Classify(it *item.Item) Result {
	it = it.Clone()

	added := c.ApplyTagRules(it)

	tags := it.Tags.Names()
	if tags == nil {
		tags = []string{}
	}

	folders := c.ClassifyIntoFolders(it)
	if folders == nil {
		folders = []string{}
	}

	return Result{
		Tags:    tags,
		Folders: folders,
		Added:   added,
	}
}

// Filter returns the items belonging to the named folder, in order.
func (c *Classifier) Filter(name string, items []*item.Item) ([]*item.Item, error) {
	f, ok := c.catalog.Folder(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFolder, name)
	}

	var out []*item.Item

	for _, it := range items {
		if f.Contains(it) {
			out = append(out, it)
		}
	}

	return out, nil
}
