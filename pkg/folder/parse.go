package folder

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	xstrings "github.com/charmbracelet/x/exp/strings"

	"github.com/macropower/tagrss/pkg/expr"
	"github.com/macropower/tagrss/pkg/item"
	"github.com/macropower/tagrss/pkg/rule"
	"github.com/macropower/tagrss/pkg/tag"
	"github.com/macropower/tagrss/pkg/yaml"
)

var (
	// ErrInvalidExpression indicates a malformed folder declaration.
	ErrInvalidExpression = errors.New("invalid folder expression")
	// ErrDuplicateName indicates a folder name that was already declared.
	ErrDuplicateName = errors.New("duplicate folder name")
)

// Expression keys of a folder declaration.
const (
	KeyTag      = "tag"
	KeyTime     = "time"
	KeyContains = "contains"
	KeySource   = "source"
	KeyMatch    = "match"
	KeyNot      = "not"
	KeyAnd      = "and"
	KeyOr       = "or"
)

// ExpressionKeys lists every expression key in declaration order.
var ExpressionKeys = []string{KeyTag, KeyTime, KeyContains, KeySource, KeyMatch, KeyNot, KeyAnd, KeyOr}

const keyName = "name"

// Folder is a named predicate tree.
type Folder struct {
	Root Node
	Name string
}

// Contains reports whether it belongs in the folder.
func (f *Folder) Contains(it *item.Item) bool {
	return f.Root.Evaluate(it)
}

func (f *Folder) String() string {
	return fmt.Sprintf("%s: %s", f.Name, f.Root)
}

// Parser builds folders from decoded declarations.
type Parser struct {
	now         func() time.Time
	env         *expr.Environment
	leafOnlyNot bool
}

// NewParser creates a new [Parser].
func NewParser(opts ...Option) *Parser {
	o := newOptions(opts...)

	return &Parser{
		now:         o.now,
		env:         o.env,
		leafOnlyNot: o.leafOnlyNot,
	}
}

// ParseFolder builds a [Folder] from a single decoded declaration.
// Errors are [*yaml.Error]s located relative to the declaration.
func (p *Parser) ParseFolder(entry map[string]any) (*Folder, error) {
	return p.parseFolder(entry, nil)
}

func (p *Parser) parseEntry(entry any, loc []string) (*Folder, error) {
	m, ok := entry.(map[string]any)
	if !ok {
		return nil, p.errorAt(loc, fmt.Errorf("%w: expected a mapping, got %s", ErrInvalidExpression, describe(entry)))
	}

	return p.parseFolder(m, loc)
}

func (p *Parser) parseFolder(entry map[string]any, loc []string) (*Folder, error) {
	name, ok := entry[keyName].(string)
	if !ok || name == "" {
		return nil, p.errorAt(loc, fmt.Errorf("%w: a non-empty %q is required", ErrInvalidExpression, keyName))
	}

	root, err := p.parseMapping(entry, loc, true)
	if err != nil {
		return nil, err
	}

	return &Folder{Name: name, Root: root}, nil
}

//nolint:ireturn // Closed sum type.
func (p *Parser) parseNode(v any, loc []string) (Node, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, p.errorAt(loc, fmt.Errorf("%w: expected a mapping, got %s", ErrInvalidExpression, describe(v)))
	}

	return p.parseMapping(m, loc, false)
}

//nolint:ireturn // Closed sum type.
func (p *Parser) parseMapping(m map[string]any, loc []string, named bool) (Node, error) {
	var keys []string

	for k := range m {
		if named && k == keyName {
			continue
		}

		if !slices.Contains(ExpressionKeys, k) {
			return nil, p.errorAt(append(slices.Clip(loc), k), fmt.Errorf("%w: unknown key %q, expected one of %s",
				ErrInvalidExpression, k, xstrings.EnglishJoin(ExpressionKeys, true)))
		}

		keys = append(keys, k)
	}

	if len(keys) != 1 {
		slices.Sort(keys)

		found := "none"
		if len(keys) > 0 {
			found = xstrings.EnglishJoin(keys, true)
		}

		return nil, p.errorAt(loc, fmt.Errorf("%w: expected exactly one expression key, found %s",
			ErrInvalidExpression, found))
	}

	key := keys[0]

	return p.parseExpression(key, m[key], append(slices.Clip(loc), key))
}

//nolint:ireturn // Closed sum type.
func (p *Parser) parseExpression(key string, v any, loc []string) (Node, error) {
	switch key {
	case KeyTag:
		s, err := p.stringAt(v, loc)
		if err != nil {
			return nil, err
		}

		t, err := tag.New(s)
		if err != nil {
			return nil, p.errorAt(loc, fmt.Errorf("%w: %w", ErrInvalidExpression, err))
		}

		return NewLeaf(HasTag{Tag: t}), nil

	case KeyTime:
		s, err := p.stringAt(v, loc)
		if err != nil {
			return nil, err
		}

		w, err := ParseTimeRange(s, p.now())
		if err != nil {
			return nil, p.errorAt(loc, fmt.Errorf("%w: %w", ErrInvalidExpression, err))
		}

		return NewLeaf(InWindow{Window: w}), nil

	case KeyContains:
		pattern, err := p.parsePattern(v, loc)
		if err != nil {
			return nil, err
		}

		return NewLeaf(pattern), nil

	case KeySource:
		id, err := p.intAt(v, loc)
		if err != nil {
			return nil, err
		}

		return NewLeaf(FromSource{SourceID: id}), nil

	case KeyMatch:
		s, err := p.stringAt(v, loc)
		if err != nil {
			return nil, err
		}

		prog, err := p.env.Compile(s)
		if err != nil {
			return nil, p.errorAt(loc, fmt.Errorf("%w: %w", ErrInvalidExpression, err))
		}

		return NewLeaf(prog), nil

	case KeyNot:
		child, err := p.parseNode(v, loc)
		if err != nil {
			return nil, err
		}

		if _, ok := child.(*Leaf); p.leafOnlyNot && !ok {
			return nil, p.errorAt(loc, fmt.Errorf("%w: %q only accepts a leaf expression", ErrInvalidExpression, KeyNot))
		}

		return Negate(child), nil

	case KeyAnd, KeyOr:
		list, ok := v.([]any)
		if !ok && v != nil {
			return nil, p.errorAt(loc, fmt.Errorf("%w: expected a list, got %s", ErrInvalidExpression, describe(v)))
		}

		children := make([]Node, 0, len(list))

		for i, c := range list {
			child, err := p.parseNode(c, append(slices.Clip(loc), strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}

			children = append(children, child)
		}

		if key == KeyAnd {
			return NewAnd(children...), nil
		}

		return NewOr(children...), nil
	}

	panic(fmt.Sprintf("unhandled expression key %q", key))
}

// parsePattern accepts either a regex string or a mapping with pattern,
// patternMode and caseSensitive keys.
func (p *Parser) parsePattern(v any, loc []string) (*rule.Pattern, error) {
	var (
		text          string
		mode          = rule.PatternModeRegex
		caseSensitive = true
	)

	switch v := v.(type) {
	case string:
		text = v

	case map[string]any:
		for k, fv := range v {
			fieldLoc := append(slices.Clip(loc), k)

			switch k {
			case "pattern":
				s, err := p.stringAt(fv, fieldLoc)
				if err != nil {
					return nil, err
				}

				text = s

			case "patternMode":
				s, err := p.stringAt(fv, fieldLoc)
				if err != nil {
					return nil, err
				}

				mode = rule.PatternMode(s)

			case "caseSensitive":
				b, ok := fv.(bool)
				if !ok {
					return nil, p.errorAt(fieldLoc, fmt.Errorf("%w: expected a bool, got %s",
						ErrInvalidExpression, describe(fv)))
				}

				caseSensitive = b

			default:
				return nil, p.errorAt(fieldLoc, fmt.Errorf("%w: unknown key %q, expected one of %s",
					ErrInvalidExpression, k, xstrings.EnglishJoin([]string{"pattern", "patternMode", "caseSensitive"}, true)))
			}
		}

	default:
		return nil, p.errorAt(loc, fmt.Errorf("%w: expected a string or mapping, got %s",
			ErrInvalidExpression, describe(v)))
	}

	pattern, err := rule.CompilePattern(text, mode, caseSensitive)
	if err != nil {
		return nil, p.errorAt(loc, fmt.Errorf("%w: %w", ErrInvalidExpression, err))
	}

	return pattern, nil
}

func (p *Parser) stringAt(v any, loc []string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", p.errorAt(loc, fmt.Errorf("%w: expected a string, got %s", ErrInvalidExpression, describe(v)))
	}

	return s, nil
}

func (p *Parser) intAt(v any, loc []string) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), nil
		}
	case float64:
		if n == math.Trunc(n) && n >= math.MinInt64 && n <= math.MaxInt64 {
			return int64(n), nil
		}
	}

	return 0, p.errorAt(loc, fmt.Errorf("%w: expected an integer, got %s", ErrInvalidExpression, describe(v)))
}

func (p *Parser) errorAt(loc []string, err error) error {
	return yaml.NewError(err, yaml.WithPath(yaml.PathFromLocation(loc)))
}

func describe(v any) string {
	if v == nil {
		return "null"
	}

	return fmt.Sprintf("%T", v)
}
