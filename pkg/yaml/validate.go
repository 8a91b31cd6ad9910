package yaml

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Validator validates decoded YAML data against a JSON schema.
// Uses [github.com/santhosh-tekuri/jsonschema/v6].
type Validator struct {
	schema  *jsonschema.Schema
	printer *message.Printer
}

// NewValidator creates a new [Validator] with the provided JSON schema data.
func NewValidator(url string, schemaData []byte) (*Validator, error) {
	var schema any

	err := json.Unmarshal(schemaData, &schema)
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()

	err = compiler.AddResource(url, schema)
	if err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	jss, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Validator{
		schema:  jss,
		printer: message.NewPrinter(language.English),
	}, nil
}

func MustNewValidator(url string, schemaData []byte) *Validator {
	v, err := NewValidator(url, schemaData)
	if err != nil {
		panic(err)
	}

	return v
}

// Validate validates the given data against the schema.
// Schema violations are returned as an [*Error] whose Path points at the
// most specific failing location, so it can be annotated against the source.
func (v *Validator) Validate(data any) error {
	err := v.schema.Validate(data)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return fmt.Errorf("schema validation: %w", err)
	}

	cause := mostSpecificCause(validationErr)

	return &Error{
		Err:  errors.New(cause.ErrorKind.LocalizedString(v.printer)),
		Path: PathFromLocation(cause.InstanceLocation),
	}
}

// mostSpecificCause returns the leaf cause with the longest InstanceLocation.
func mostSpecificCause(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	best := err
	for _, cause := range err.Causes {
		candidate := mostSpecificCause(cause)
		if len(candidate.InstanceLocation) > len(best.InstanceLocation) ||
			(best == err && len(candidate.InstanceLocation) == len(best.InstanceLocation)) {
			best = candidate
		}
	}

	return best
}

// PathFromLocation converts location segments, such as a JSON schema
// InstanceLocation, to a [yaml.Path]. Numeric segments are sequence indexes.
func PathFromLocation(location []string) *yaml.Path {
	current := NewPathBuilder().Root()

	for _, part := range location {
		index, err := strconv.ParseUint(part, 10, 0)
		if err == nil {
			current = current.Index(uint(index))
		} else {
			current = current.Child(part)
		}
	}

	return current.Build()
}
