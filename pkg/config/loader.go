package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/macropower/tagrss/api"
	"github.com/macropower/tagrss/api/v1beta1"
	"github.com/macropower/tagrss/pkg/yaml"
)

var (
	// ErrSourceNotFound indicates that a document does not exist.
	ErrSourceNotFound = errors.New("source not found")
	// ErrParse indicates that a document exists but could not be decoded or
	// does not conform to its schema.
	ErrParse = errors.New("parse error")
)

// Validator validates configuration data against a schema.
type Validator interface {
	Validate(data any) error
}

// LoaderOpt configures a [Loader].
type LoaderOpt func(*loaderOptions)

type loaderOptions struct {
	validator Validator
	kinds     []string
	colored   bool
}

// WithValidator sets a custom validator.
func WithValidator(v Validator) LoaderOpt {
	return func(o *loaderOptions) {
		o.validator = v
	}
}

// WithKinds restricts the accepted kind values. Documents that omit their
// kind are always accepted.
func WithKinds(kinds ...string) LoaderOpt {
	return func(o *loaderOptions) {
		o.kinds = kinds
	}
}

// WithColor enables colored source annotations in errors.
func WithColor(colored bool) LoaderOpt {
	return func(o *loaderOptions) {
		o.colored = colored
	}
}

// Loader is a generic document loader that handles validation,
// YAML parsing, and error formatting for any document type T.
type Loader[T v1beta1.Object] struct {
	validator Validator
	newFunc   func() T
	yamlError *yaml.ErrorWrapper
	path      string
	kinds     []string
	data      []byte
}

// NewLoaderFromBytes creates a [Loader] from byte data.
// The newFunc parameter is the constructor for type T (e.g., configs.New).
func NewLoaderFromBytes[T v1beta1.Object](
	data []byte,
	newFunc func() T,
	defaultValidator Validator,
	opts ...LoaderOpt,
) *Loader[T] {
	options := &loaderOptions{
		validator: defaultValidator,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Loader[T]{
		data:      data,
		newFunc:   newFunc,
		validator: options.validator,
		kinds:     options.kinds,
		yamlError: yaml.NewErrorWrapper(
			yaml.WithSource(data),
			yaml.WithColor(options.colored),
		),
	}
}

// NewLoaderFromFile creates a [Loader] from a file path.
// A missing file yields an error matching [ErrSourceNotFound].
func NewLoaderFromFile[T v1beta1.Object](
	path string,
	newFunc func() T,
	defaultValidator Validator,
	opts ...LoaderOpt,
) (*Loader[T], error) {
	data, err := api.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceNotFound, path, err)
	}
	if err != nil {
		return nil, err //nolint:wrapcheck // Return the original error.
	}

	l := NewLoaderFromBytes(data, newFunc, defaultValidator, opts...)
	l.path = path

	return l, nil
}

// Data returns the raw document.
func (l *Loader[T]) Data() []byte {
	return l.data
}

// Validate validates the document against the schema.
func (l *Loader[T]) Validate() error {
	var doc any

	err := yaml.Unmarshal(l.data, &doc)
	if err != nil {
		return l.ParseError(err)
	}

	if l.validator == nil {
		return nil
	}

	if doc == nil {
		// An empty document is validated as an empty mapping.
		doc = map[string]any{}
	}

	err = l.validator.Validate(doc)
	if err != nil {
		return l.ParseError(err)
	}

	return nil
}

// Load parses and returns the document.
//
//nolint:ireturn // Generic type parameter return is intentional.
func (l *Loader[T]) Load() (T, error) {
	var zero T

	obj := l.newFunc()

	err := yaml.Unmarshal(l.data, obj)
	if err != nil {
		return zero, l.ParseError(err)
	}

	if l.kinds != nil {
		err = v1beta1.CheckTypeMeta(obj, l.kinds)
		if err != nil {
			return zero, l.ParseError(err)
		}
	}

	obj.EnsureDefaults()

	return obj, nil
}

// ParseError marks err as an [ErrParse] for this document and annotates any
// [*yaml.Error] in its chain against the source.
func (l *Loader[T]) ParseError(err error) error {
	err = l.yamlError.Wrap(err)
	if l.path != "" {
		return fmt.Errorf("%w: %s: %w", ErrParse, l.path, err)
	}

	return fmt.Errorf("%w: %w", ErrParse, err)
}
