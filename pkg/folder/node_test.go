package folder_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/macropower/tagrss/pkg/folder"
	"github.com/macropower/tagrss/pkg/item"
	"github.com/macropower/tagrss/pkg/rule"
	"github.com/macropower/tagrss/pkg/tag"
)

func ptr[T any](v T) *T {
	return &v
}

func date(year int, month time.Month, day int) *time.Time {
	return ptr(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func hasTag(name string) *folder.Leaf {
	return folder.NewLeaf(folder.HasTag{Tag: tag.MustNew(name)})
}

func TestBranch_VacuousTruth(t *testing.T) {
	t.Parallel()

	items := []*item.Item{
		{},
		{Title: "anything", Tags: item.NewTagSet("a")},
	}

	for _, it := range items {
		assert.True(t, folder.NewAnd().Evaluate(it))
		assert.False(t, folder.NewOr().Evaluate(it))
	}
}

func TestBranch_Evaluate(t *testing.T) {
	t.Parallel()

	it := &item.Item{Tags: item.NewTagSet("a", "b")}

	tcs := map[string]struct {
		node folder.Node
		want bool
	}{
		"and all":       {node: folder.NewAnd(hasTag("a"), hasTag("b")), want: true},
		"and one false": {node: folder.NewAnd(hasTag("a"), hasTag("c"))},
		"or one true":   {node: folder.NewOr(hasTag("c"), hasTag("b")), want: true},
		"or none true":  {node: folder.NewOr(hasTag("c"), hasTag("d"))},
		"nested": {
			node: folder.NewOr(
				folder.NewAnd(hasTag("a"), hasTag("missing")),
				folder.NewAnd(hasTag("b"), folder.Negate(hasTag("missing"))),
			),
			want: true,
		},
		"not over compound": {
			node: folder.Negate(folder.NewOr(hasTag("c"), hasTag("d"))),
			want: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.node.Evaluate(it))
		})
	}
}

func TestNegate_DoubleNegation(t *testing.T) {
	t.Parallel()

	contains, err := rule.CompilePattern("AI", rule.PatternModeLiteral, true)
	if err != nil {
		t.Fatal(err)
	}

	nodes := map[string]folder.Node{
		"tag leaf":      hasTag("tech/ai"),
		"contains leaf": folder.NewLeaf(contains),
		"window leaf":   folder.NewLeaf(folder.InWindow{Window: rule.Window{Start: date(2024, 1, 1)}}),
		"source leaf":   folder.NewLeaf(folder.FromSource{SourceID: 5}),
		"branch":        folder.NewAnd(hasTag("tech/ai"), folder.NewLeaf(folder.FromSource{SourceID: 5})),
	}

	items := []*item.Item{
		{},
		{Title: "AI", SourceID: 5, Tags: item.NewTagSet("tech/ai"), PublishedAt: date(2024, 6, 1)},
		{Title: "Sports", SourceID: 6, PublishedAt: date(2023, 6, 1)},
		{Title: "AI", SourceID: 6, Tags: item.NewTagSet("tech/ai")},
	}

	for name, n := range nodes {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			double := folder.Negate(folder.Negate(n))
			assert.Equal(t, n.String(), double.String())

			for _, it := range items {
				assert.Equal(t, n.Evaluate(it), double.Evaluate(it))
				assert.NotEqual(t, n.Evaluate(it), folder.Negate(n).Evaluate(it))
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	it := &item.Item{
		SourceID:    5,
		Title:       "I love rust programming",
		PublishedAt: date(2024, 1, 15),
		Tags:        item.NewTagSet("tech/ai"),
	}

	tcs := map[string]struct {
		p    folder.Predicate
		want bool
	}{
		"tag exact":        {p: folder.HasTag{Tag: tag.MustNew("tech/ai")}, want: true},
		"tag ancestor":     {p: folder.HasTag{Tag: tag.MustNew("tech")}},
		"window inside":    {p: folder.InWindow{Window: rule.Window{Start: date(2024, 1, 1), End: date(2024, 2, 1)}}, want: true},
		"window unbounded": {p: folder.InWindow{}},
		"source match":     {p: folder.FromSource{SourceID: 5}, want: true},
		"source miss":      {p: folder.FromSource{SourceID: 6}},
		"rule matches": {
			p:    folder.RuleMatches{Rule: rule.MustNewContains(tag.MustNew("x"), "Rust", rule.PatternModeLiteral, false)},
			want: true,
		},
		"rule misses": {
			p: folder.RuleMatches{Rule: rule.NewFromSource(tag.MustNew("x"), 6)},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.p.MatchItem(it))
		})
	}
}

func TestNode_String(t *testing.T) {
	t.Parallel()

	n := folder.NewAnd(
		hasTag("tech/ai"),
		folder.Negate(folder.NewOr(hasTag("a"), folder.NewLeaf(folder.FromSource{SourceID: 1}))),
		folder.Negate(hasTag("b")),
	)

	assert.Equal(t, "(tag:tech/ai && !((tag:a || source:1)) && !tag:b)", n.String())
}
