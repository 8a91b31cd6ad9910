package expr

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/macropower/tagrss/pkg/item"
)

// Protect CEL environment creation and compilation from concurrent access.
var celMutex sync.Mutex

// Environment provides a thread-safe wrapper around a [*cel.Env].
type Environment struct {
	env *cel.Env
}

// NewEnvironment creates a new [Environment] with the item variables
// and the tag function library declared.
func NewEnvironment(opts ...cel.EnvOption) (*Environment, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	opts = append([]cel.EnvOption{
		cel.Variable("title", cel.StringType),
		cel.Variable("content", cel.StringType),
		cel.Variable("url", cel.StringType),
		cel.Variable("source", cel.IntType),
		cel.Variable("published", cel.TimestampType),
		cel.Variable("hasPublished", cel.BoolType),
		cel.Variable("tags", cel.ListType(cel.StringType)),
		cel.Lib(&lib{}),
	}, opts...)

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return &Environment{env: env}, nil
}

// MustNewEnvironment creates a new [Environment] and panics on error.
func MustNewEnvironment(opts ...cel.EnvOption) *Environment {
	env, err := NewEnvironment(opts...)
	if err != nil {
		panic(err)
	}

	return env
}

// Default is the shared item [Environment].
var Default = MustNewEnvironment()

// Compile compiles a CEL expression that must evaluate to a bool.
func (e *Environment) Compile(expression string) (*Program, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile expression: %w", issues.Err())
	}

	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression must return bool, got %s", ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	return &Program{program: program, expression: expression}, nil
}

// Program is a compiled boolean expression over an item.
type Program struct {
	program    cel.Program
	expression string
}

func (p *Program) String() string {
	return p.expression
}

// MatchItem evaluates the program against it. Evaluation errors and
// non-bool results are treated as non-matches.
func (p *Program) MatchItem(it *item.Item) bool {
	result, _, err := p.program.Eval(Activation(it))
	if err != nil {
		return false
	}

	b, ok := result.Value().(bool)

	return ok && b
}

// Activation returns the CEL variables for it.
func Activation(it *item.Item) map[string]any {
	var published time.Time
	if it.PublishedAt != nil {
		published = *it.PublishedAt
	}

	tags := it.Tags.Names()
	if tags == nil {
		tags = []string{}
	}

	return map[string]any{
		"title":        it.Title,
		"content":      it.ContentString(),
		"url":          it.URL,
		"source":       it.SourceID,
		"published":    published,
		"hasPublished": it.PublishedAt != nil,
		"tags":         tags,
	}
}
