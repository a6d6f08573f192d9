package polidi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/byte4ever/polidi/policy"
)

// Config is the file format read by [LoadConfig]. It sets registration
// lifetimes and holds named policy settings for builders to read.
type Config struct {
	// Lifetime is the default registration lifetime. Optional; defaults to
	// transient.
	Lifetime *Lifetime `json:"lifetime,omitempty" yaml:"lifetime,omitempty" jsonschema:"description=Default registration lifetime"`
	// Lifetimes overrides the lifetime per family name. Optional.
	Lifetimes map[string]Lifetime `json:"lifetimes,omitempty" yaml:"lifetimes,omitempty" jsonschema:"description=Lifetime overrides keyed by family name"`
	// Policies holds settings per policy name. Optional.
	Policies map[string]policy.Config `json:"policies,omitempty" yaml:"policies,omitempty" jsonschema:"description=Policy settings keyed by policy name"`
}

var errUnknownFormat = errors.New("unknown config format")

// LoadConfig reads a config file. Files ending in .yaml or .yml are decoded
// as YAML, files ending in .json as JSON. Unknown fields are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("polidi: reading config: %w", err)
	}

	cfg, err := ParseConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("polidi: %s: %w", path, err)
	}

	return cfg, nil
}

// ParseConfig decodes data in the given format: "json", "yaml" or "yml",
// with or without a leading dot. The result is validated.
func ParseConfig(data []byte, format string) (*Config, error) {
	var cfg Config

	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()

		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)

		// An empty document leaves cfg zero.
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w %q", errUnknownFormat, format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks every policy entry without building it.
func (c *Config) Validate() error {
	var errs []error

	for _, name := range c.PolicyNames() {
		pc := c.Policies[name]
		if _, err := pc.Options(); err != nil {
			errs = append(errs, fmt.Errorf("policy %q: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// PolicyNames returns the configured policy names, sorted.
func (c *Config) PolicyNames() []string {
	names := make([]string, 0, len(c.Policies))
	for name := range c.Policies {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Policy builds the named policy from its settings, or a single-attempt
// policy when the name is not configured. Extra opts take precedence.
//
//nolint:ireturn // the concrete kind depends on the settings
func (c *Config) Policy(name string, opts ...policy.Option) (policy.Policy, error) {
	if c == nil {
		return policy.FromConfig(name, nil, opts...)
	}

	pc, ok := c.Policies[name]
	if !ok {
		return policy.FromConfig(name, nil, opts...)
	}

	return policy.FromConfig(name, &pc, opts...)
}

// Options returns the registry options c implies.
func (c *Config) Options() []Option {
	if c == nil || len(c.Lifetimes) == 0 {
		return nil
	}

	return []Option{WithLifetimes(c.Lifetimes)}
}

// DefaultLifetime returns the configured default lifetime, or [Transient].
func (c *Config) DefaultLifetime() Lifetime {
	if c == nil || c.Lifetime == nil {
		return Transient
	}

	return *c.Lifetime
}

// NewFromConfig is [New] with the lifetimes taken from cfg. Extra opts are
// applied after the config's own.
func NewFromConfig(m *Module, cfg *Config, opts ...Option) (*Container, error) {
	if cfg != nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return New(m, cfg.DefaultLifetime(), append(cfg.Options(), opts...)...)
}

// ConfigSchema returns the JSON schema of the config file format.
func ConfigSchema() *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	r.ExpandedStruct = true
	r.DoNotReference = true

	return r.Reflect(&Config{})
}
