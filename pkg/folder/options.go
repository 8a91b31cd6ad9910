package folder

import (
	"time"

	"github.com/macropower/tagrss/pkg/config"
	"github.com/macropower/tagrss/pkg/expr"
)

// Option configures a [Parser] or [Catalog].
type Option func(*options)

type options struct {
	now         func() time.Time
	env         *expr.Environment
	loaderOpts  []config.LoaderOpt
	leafOnlyNot bool
}

func newOptions(opts ...Option) *options {
	o := &options{
		now: time.Now,
		env: expr.Default,
	}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// WithNow sets the clock used to resolve relative days in time ranges.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithEnvironment sets the CEL environment used to compile match leaves.
func WithEnvironment(env *expr.Environment) Option {
	return func(o *options) {
		o.env = env
	}
}

// WithLeafOnlyNot restricts "not" to wrapping a single leaf expression.
func WithLeafOnlyNot(leafOnlyNot bool) Option {
	return func(o *options) {
		o.leafOnlyNot = leafOnlyNot
	}
}

// WithLoaderOptions passes options to the underlying document loader.
func WithLoaderOptions(opts ...config.LoaderOpt) Option {
	return func(o *options) {
		o.loaderOpts = append(o.loaderOpts, opts...)
	}
}
