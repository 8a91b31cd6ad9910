// Package configs provides the global Config configuration type for tagrss.
package configs

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/tagrss/api"
	"github.com/macropower/tagrss/api/v1beta1"
	"github.com/macropower/tagrss/api/v1beta1/folders"
	"github.com/macropower/tagrss/api/v1beta1/tagrules"
	"github.com/macropower/tagrss/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen/configs/main.go -o configs.v1beta1.json

// Kind is the kind of [Config] documents.
const Kind = "Configuration"

const (
	DefaultConcurrency = 4
	DefaultTimeout     = "30s"
	DefaultUserAgent   = "tagrss"
	DefaultDatabase    = "tagrss.db"
)

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	//go:embed configs.v1beta1.json
	schemaJSON []byte

	// ValidKinds contains the valid kind values for global configurations.
	ValidKinds = []string{Kind}

	// DefaultValidator validates global configuration against the JSON schema.
	DefaultValidator = yaml.MustNewValidator("/configs.v1beta1.json", schemaJSON)

	// ErrInvalidConfig indicates a configuration value outside its domain.
	ErrInvalidConfig = errors.New("invalid configuration")

	// Compile-time interface checks.
	_ v1beta1.Object = (*Config)(nil)
)

// Config represents the global tagrss configuration.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	v1beta1.TypeMeta `json:",inline"`

	Database *DatabaseConfig `json:"database,omitempty" jsonschema:"title=Database"`
	Rules    *RulesConfig    `json:"rules,omitempty" jsonschema:"title=Rules"`
	Folders  *FoldersConfig  `json:"folders,omitempty" jsonschema:"title=Folders"`
	Update   *UpdateConfig   `json:"update,omitempty" jsonschema:"title=Update"`
	Log      *LogConfig      `json:"log,omitempty" jsonschema:"title=Log"`
	Feeds    []FeedConfig    `json:"feeds,omitempty" jsonschema:"title=Feeds"`
}

// DatabaseConfig locates the item store.
type DatabaseConfig struct {
	// Path to the SQLite database. Defaults to $XDG_DATA_HOME/tagrss/tagrss.db.
	Path string `json:"path,omitempty" jsonschema:"title=Path"`
}

// RulesConfig locates the TagRules document.
type RulesConfig struct {
	// Path to the rules document. Defaults to $XDG_CONFIG_HOME/tagrss/rules.yaml.
	Path string `json:"path,omitempty" jsonschema:"title=Path"`
}

// FoldersConfig locates and configures the FolderCatalog document.
type FoldersConfig struct {
	// LeafOnlyNot restricts "not" to wrapping a single leaf expression.
	LeafOnlyNot *bool `json:"leafOnlyNot,omitempty" jsonschema:"title=Leaf Only Not"`
	// Path to the folders document. Defaults to $XDG_CONFIG_HOME/tagrss/folders.yaml.
	Path string `json:"path,omitempty" jsonschema:"title=Path"`
}

// UpdateConfig controls feed fetching.
type UpdateConfig struct {
	// Concurrency is the maximum number of feeds fetched at once.
	Concurrency *int `json:"concurrency,omitempty" jsonschema:"title=Concurrency,minimum=1"`
	// Timeout bounds each feed request, as a Go duration string.
	Timeout string `json:"timeout,omitempty" jsonschema:"title=Timeout"`
	// UserAgent is sent with every feed request.
	UserAgent string `json:"userAgent,omitempty" jsonschema:"title=User Agent"`
}

// LogConfig adds a log file alongside standard error.
type LogConfig struct {
	// File receives JSON logs when set.
	File string `json:"file,omitempty" jsonschema:"title=File"`
	// Level is the minimum level written to File.
	Level string `json:"level,omitempty" jsonschema:"title=Level,enum=error,enum=warn,enum=info,enum=debug"`
}

// FeedConfig declares a feed that is registered as a source on update.
type FeedConfig struct {
	URL   string `json:"url" jsonschema:"title=URL,format=uri"`
	Title string `json:"title,omitempty" jsonschema:"title=Title"`
}

// New creates a new global [Config] with default values.
func New() *Config {
	c := &Config{TypeMeta: v1beta1.NewTypeMeta(Kind)}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults initializes nil fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.APIVersion == "" {
		c.APIVersion = v1beta1.APIVersion
	}

	if c.Kind == "" {
		c.Kind = Kind
	}

	if c.Database == nil {
		c.Database = &DatabaseConfig{}
	}

	if c.Rules == nil {
		c.Rules = &RulesConfig{}
	}

	if c.Folders == nil {
		c.Folders = &FoldersConfig{}
	}

	if c.Folders.LeafOnlyNot == nil {
		c.Folders.LeafOnlyNot = new(bool)
	}

	if c.Update == nil {
		c.Update = &UpdateConfig{}
	}

	if c.Update.Concurrency == nil {
		n := DefaultConcurrency
		c.Update.Concurrency = &n
	}

	if c.Update.Timeout == "" {
		c.Update.Timeout = DefaultTimeout
	}

	if c.Update.UserAgent == "" {
		c.Update.UserAgent = DefaultUserAgent
	}

	if c.Log == nil {
		c.Log = &LogConfig{}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate validates values that the schema cannot express.
func (c *Config) Validate() error {
	if c.Update != nil {
		if c.Update.Concurrency != nil && *c.Update.Concurrency < 1 {
			return fmt.Errorf("%w: update.concurrency must be at least 1", ErrInvalidConfig)
		}

		if c.Update.Timeout != "" {
			d, err := time.ParseDuration(c.Update.Timeout)
			if err != nil {
				return fmt.Errorf("%w: update.timeout: %w", ErrInvalidConfig, err)
			}

			if d <= 0 {
				return fmt.Errorf("%w: update.timeout must be positive", ErrInvalidConfig)
			}
		}
	}

	for i, f := range c.Feeds {
		u, err := url.Parse(f.URL)
		if err != nil {
			return fmt.Errorf("%w: feeds[%d].url: %w", ErrInvalidConfig, i, err)
		}

		if u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file" {
			return fmt.Errorf("%w: feeds[%d].url: unsupported scheme %q", ErrInvalidConfig, i, u.Scheme)
		}
	}

	return nil
}

// DatabasePath returns the configured or default database path.
func (c *Config) DatabasePath() string {
	if c.Database != nil && c.Database.Path != "" {
		return c.Database.Path
	}

	return api.GetDataPath(DefaultDatabase)
}

// RulesPath returns the configured or default tag rules path.
func (c *Config) RulesPath() string {
	if c.Rules != nil && c.Rules.Path != "" {
		return c.Rules.Path
	}

	return tagrules.GetPath()
}

// FoldersPath returns the configured or default folders path.
func (c *Config) FoldersPath() string {
	if c.Folders != nil && c.Folders.Path != "" {
		return c.Folders.Path
	}

	return folders.GetPath()
}

// LeafOnlyNot reports whether the narrow "not" grammar is enabled.
func (c *Config) LeafOnlyNot() bool {
	return c.Folders != nil && c.Folders.LeafOnlyNot != nil && *c.Folders.LeafOnlyNot
}

// Concurrency returns the configured or default update concurrency.
func (c *Config) Concurrency() int {
	if c.Update != nil && c.Update.Concurrency != nil {
		return *c.Update.Concurrency
	}

	return DefaultConcurrency
}

// Timeout returns the per-feed request timeout. Invalid values fall back to
// the default; [Config.Validate] reports them.
func (c *Config) Timeout() time.Duration {
	if c.Update != nil {
		if d, err := time.ParseDuration(c.Update.Timeout); err == nil && d > 0 {
			return d
		}
	}

	d, _ := time.ParseDuration(DefaultTimeout) //nolint:errcheck // Constant.

	return d
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// MarshalYAML serializes the config to YAML.
func (c Config) MarshalYAML() ([]byte, error) {
	type alias Config

	b, err := api.MarshalYAML(alias(c))
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	return b, nil
}

// Write writes the config to the specified path if it doesn't already exist.
func (c Config) Write(path string) error {
	b, err := c.MarshalYAML()
	if err != nil {
		return err
	}

	err = api.WriteIfNotExists(path, b)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Schema returns the embedded JSON schema.
func Schema() []byte {
	return schemaJSON
}

// WriteDefault writes the embedded default config.yaml to the specified path.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultConfigYAML, force, "configuration")
	if err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	return nil
}

// GetPath returns the path to the global configuration file.
func GetPath() string {
	return api.GetConfigPath("config.yaml")
}
