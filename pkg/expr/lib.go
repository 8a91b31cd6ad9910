package expr

import (
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/macropower/tagrss/pkg/tag"
)

type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Strings(),
		ext.Lists(),
		ext.Math(),

		// `tagBase` returns the last segment of a tag name.
		// Example: tags.exists(t, tagBase(t) == "llm").
		cel.Function("tagBase",
			cel.Overload("tag_base", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(name ref.Val) ref.Val {
					s, ok := name.(types.String)
					if !ok {
						return types.NewErr("tagBase: invalid string value")
					}

					v := string(s)

					return types.String(v[strings.LastIndex(v, tag.Separator)+1:])
				}),
			),
		),

		// `tagParent` returns the tag name without its last segment, or ""
		// for a root tag.
		// Example: tags.exists(t, tagParent(t) == "tech").
		cel.Function("tagParent",
			cel.Overload("tag_parent", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(name ref.Val) ref.Val {
					s, ok := name.(types.String)
					if !ok {
						return types.NewErr("tagParent: invalid string value")
					}

					v := string(s)

					i := strings.LastIndex(v, tag.Separator)
					if i < 0 {
						return types.String("")
					}

					return types.String(v[:i])
				}),
			),
		),

		// `tagUnder` reports whether a tag equals or lies below another.
		// Example: tags.exists(t, tagUnder(t, "tech")).
		cel.Function("tagUnder",
			cel.Overload("tag_under_string_string", []*cel.Type{cel.StringType, cel.StringType}, cel.BoolType,
				cel.BinaryBinding(func(name, ancestor ref.Val) ref.Val {
					n, ok := name.(types.String)
					if !ok {
						return types.NewErr("tagUnder: invalid tag value")
					}

					a, ok := ancestor.(types.String)
					if !ok {
						return types.NewErr("tagUnder: invalid ancestor value")
					}

					return types.Bool(n == a || strings.HasPrefix(string(n), string(a)+tag.Separator))
				}),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}
