package folder

import (
	"fmt"

	"github.com/macropower/tagrss/pkg/expr"
	"github.com/macropower/tagrss/pkg/item"
	"github.com/macropower/tagrss/pkg/rule"
	"github.com/macropower/tagrss/pkg/tag"
)

// Predicate is a boolean test over an item.
type Predicate interface {
	MatchItem(it *item.Item) bool
	String() string
}

var (
	_ Predicate = HasTag{}
	_ Predicate = InWindow{}
	_ Predicate = FromSource{}
	_ Predicate = RuleMatches{}
	_ Predicate = (*rule.Pattern)(nil)
	_ Predicate = (*expr.Program)(nil)
)

// HasTag matches items carrying exactly the tag.
type HasTag struct {
	Tag tag.Tag
}

func (p HasTag) MatchItem(it *item.Item) bool {
	return it.Tags.Has(p.Tag.String())
}

func (p HasTag) String() string {
	return "tag:" + p.Tag.String()
}

// InWindow matches items published inside the window.
type InWindow struct {
	Window rule.Window
}

func (p InWindow) MatchItem(it *item.Item) bool {
	return p.Window.Contains(it.PublishedAt)
}

func (p InWindow) String() string {
	return fmt.Sprintf("time:[%s]", p.Window)
}

// FromSource matches items fetched from the source.
type FromSource struct {
	SourceID int64
}

func (p FromSource) MatchItem(it *item.Item) bool {
	return it.SourceID == p.SourceID
}

func (p FromSource) String() string {
	return fmt.Sprintf("source:%d", p.SourceID)
}

// RuleMatches matches items for which the rule would assign its tag.
type RuleMatches struct {
	Rule rule.Rule
}

func (p RuleMatches) MatchItem(it *item.Item) bool {
	_, ok := p.Rule.FindTag(it)

	return ok
}

func (p RuleMatches) String() string {
	return "rule:" + p.Rule.String()
}
