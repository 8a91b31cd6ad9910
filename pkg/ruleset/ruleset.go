// Package ruleset manages ordered collections of tag rules.
//
// A [RuleSet] is loaded from and saved to a TagRules document. Applying a
// rule set to an item adds the tag of every matching rule to the item.
package ruleset

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/macropower/tagrss/api"
	"github.com/macropower/tagrss/api/v1beta1/tagrules"
	"github.com/macropower/tagrss/pkg/config"
	"github.com/macropower/tagrss/pkg/item"
	"github.com/macropower/tagrss/pkg/rule"
	"github.com/macropower/tagrss/pkg/tag"
	"github.com/macropower/tagrss/pkg/yaml"
)

// RuleSet is an ordered, append-only sequence of rules.
// It is safe for concurrent use.
type RuleSet struct {
	rules []rule.Rule
	mu    sync.RWMutex
}

// New creates a [RuleSet] containing rules, in order.
func New(rules ...rule.Rule) *RuleSet {
	return &RuleSet{rules: slices.Clone(rules)}
}

// Add appends r. Duplicates are kept.
func (rs *RuleSet) Add(r rule.Rule) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.rules = append(rs.rules, r)
}

// Rules returns a snapshot of the rules in order.
func (rs *RuleSet) Rules() []rule.Rule {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	return slices.Clone(rs.rules)
}

func (rs *RuleSet) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	return len(rs.rules)
}

// FindTags returns the tags of all matching rules, without modifying it.
// A tag appears once per matching rule.
func (rs *RuleSet) FindTags(it *item.Item) []tag.Tag {
	var tags []tag.Tag

	for _, r := range rs.Rules() {
		if t, ok := r.FindTag(it); ok {
			tags = append(tags, t)
		}
	}

	return tags
}

// Apply evaluates every rule against it and adds each matching rule's tag
// to its tag set. It returns the number of tag names that were not already
// present, so applying the same rule set twice returns 0 the second time.
func (rs *RuleSet) Apply(it *item.Item) int {
	added := 0

	for _, t := range rs.FindTags(it) {
		if it.Tags.Add(t.String()) {
			added++
		}
	}

	return added
}

// Document returns the serialized form of the rule set.
func (rs *RuleSet) Document() *tagrules.TagRules {
	doc := tagrules.New()
	doc.Rules = []rule.Spec{}

	for _, r := range rs.Rules() {
		doc.Rules = append(doc.Rules, rule.SpecOf(r))
	}

	return doc
}

// FromDocument builds a [RuleSet] from a decoded document. Every rule must
// be valid; the first invalid rule is reported with its document path.
func FromDocument(doc *tagrules.TagRules) (*RuleSet, error) {
	rules := make([]rule.Rule, 0, len(doc.Rules))

	for i, spec := range doc.Rules {
		r, err := spec.Build()
		if err != nil {
			//nolint:gosec // G115: slice index.
			path := yaml.NewPathBuilder().Root().Child("rules").Index(uint(i)).Build()

			return nil, yaml.NewError(fmt.Errorf("rule %d: %w", i, err), yaml.WithPath(path))
		}

		rules = append(rules, r)
	}

	return New(rules...), nil
}

// Load reads a TagRules document from path.
//
// A missing file is not an error: it yields an empty [RuleSet]. Any other
// failure, including a single invalid rule, fails the whole load with an
// error matching [config.ErrParse].
func Load(path string, opts ...config.LoaderOpt) (*RuleSet, error) {
	opts = append([]config.LoaderOpt{config.WithKinds(tagrules.ValidKinds...)}, opts...)

	l, err := config.NewLoaderFromFile(path, tagrules.New, tagrules.DefaultValidator, opts...)
	if errors.Is(err, config.ErrSourceNotFound) {
		slog.Debug("tag rules not found, starting empty", slog.String("path", path))

		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tag rules: %w", err)
	}

	return load(l)
}

// Parse decodes a TagRules document from data.
func Parse(data []byte, opts ...config.LoaderOpt) (*RuleSet, error) {
	opts = append([]config.LoaderOpt{config.WithKinds(tagrules.ValidKinds...)}, opts...)

	return load(config.NewLoaderFromBytes(data, tagrules.New, tagrules.DefaultValidator, opts...))
}

func load(l *config.Loader[*tagrules.TagRules]) (*RuleSet, error) {
	err := l.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate tag rules: %w", err)
	}

	doc, err := l.Load()
	if err != nil {
		return nil, fmt.Errorf("load tag rules: %w", err)
	}

	rs, err := FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("build tag rules: %w", l.ParseError(err))
	}

	return rs, nil
}

// Marshal returns the YAML form of the rule set.
func (rs *RuleSet) Marshal() ([]byte, error) {
	return rs.Document().MarshalYAML() //nolint:wrapcheck // Already wrapped.
}

// Save writes the full rule set to path, replacing the file atomically.
func (rs *RuleSet) Save(path string) error {
	b, err := rs.Marshal()
	if err != nil {
		return err
	}

	err = api.WriteFileAtomic(path, b)
	if err != nil {
		return fmt.Errorf("save tag rules: %w", err)
	}

	return nil
}
