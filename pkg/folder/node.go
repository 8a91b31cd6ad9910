package folder

import (
	"fmt"
	"strings"

	"github.com/macropower/tagrss/pkg/item"
)

// Node is a predicate tree node. The set of implementations is closed:
// [*Leaf], [*Not] and [*Branch].
type Node interface {
	// Evaluate reports whether the item satisfies the node.
	Evaluate(it *item.Item) bool
	String() string
	isNode()
}

var (
	_ Node = (*Leaf)(nil)
	_ Node = (*Not)(nil)
	_ Node = (*Branch)(nil)
)

// Leaf wraps a single [Predicate], optionally negated.
type Leaf struct {
	Predicate Predicate
	Negate    bool
}

// NewLeaf returns a non-negated [Leaf] for p.
func NewLeaf(p Predicate) *Leaf {
	return &Leaf{Predicate: p}
}

func (l *Leaf) Evaluate(it *item.Item) bool {
	return l.Predicate.MatchItem(it) != l.Negate
}

func (l *Leaf) String() string {
	if l.Negate {
		return "!" + l.Predicate.String()
	}

	return l.Predicate.String()
}

func (*Leaf) isNode() {}

// Not negates a compound node. Use [Negate] to construct one, which folds
// negations into leaves and cancels double negation.
type Not struct {
	Child Node
}

func (n *Not) Evaluate(it *item.Item) bool {
	return !n.Child.Evaluate(it)
}

func (n *Not) String() string {
	return fmt.Sprintf("!(%s)", n.Child)
}

func (*Not) isNode() {}

// Negate returns the negation of n.
//
// Negating a [*Leaf] flips its Negate flag, and negating a [*Not] returns
// its child, so that Negate(Negate(x)) evaluates identically to x.
//
//nolint:ireturn // Closed sum type.
func Negate(n Node) Node {
	switch n := n.(type) {
	case *Leaf:
		return &Leaf{Predicate: n.Predicate, Negate: !n.Negate}
	case *Not:
		return n.Child
	case *Branch:
		return &Not{Child: n}
	}

	panic(fmt.Sprintf("unhandled node type %T", n))
}

// Combinator joins the children of a [Branch].
type Combinator string

const (
	And Combinator = "and"
	Or  Combinator = "or"
)

// Branch combines child nodes with AND or OR.
//
// An AND branch without children is true and an OR branch without children
// is false.
type Branch struct {
	Combinator Combinator
	Children   []Node
}

// NewAnd returns an AND [Branch].
func NewAnd(children ...Node) *Branch {
	return &Branch{Combinator: And, Children: children}
}

// NewOr returns an OR [Branch].
func NewOr(children ...Node) *Branch {
	return &Branch{Combinator: Or, Children: children}
}

func (b *Branch) Evaluate(it *item.Item) bool {
	switch b.Combinator {
	case And:
		for _, c := range b.Children {
			if !c.Evaluate(it) {
				return false
			}
		}

		return true

	case Or:
		for _, c := range b.Children {
			if c.Evaluate(it) {
				return true
			}
		}

		return false
	}

	panic(fmt.Sprintf("unhandled combinator %q", b.Combinator))
}

func (b *Branch) String() string {
	parts := make([]string, 0, len(b.Children))
	for _, c := range b.Children {
		parts = append(parts, c.String())
	}

	sep := " && "
	if b.Combinator == Or {
		sep = " || "
	}

	return "(" + strings.Join(parts, sep) + ")"
}

func (*Branch) isNode() {}
