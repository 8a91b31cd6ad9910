// Package config loads tagrss documents from YAML.
//
// A [Loader] reads a document, validates it against the JSON schema of its
// kind, and decodes it into the matching typed object from api/v1beta1.
// Failures are reported as [ErrSourceNotFound] or [ErrParse], with YAML
// errors annotated against the source document.
package config
