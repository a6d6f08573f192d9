package polidi

import (
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// Lifetime says how long a resolved instance is reused.
type Lifetime uint8

const (
	// Transient creates a fresh instance on every resolution.
	Transient Lifetime = iota
	// Scoped creates one instance per [Scope].
	Scoped
	// Singleton creates one instance per [Container].
	Singleton
)

//nolint:gochecknoglobals // lookup table
var lifetimeNames = [...]string{
	Transient: "transient",
	Scoped:    "scoped",
	Singleton: "singleton",
}

// String returns the lowercase lifetime name.
func (l Lifetime) String() string {
	if int(l) < len(lifetimeNames) {
		return lifetimeNames[l]
	}

	return fmt.Sprintf("Lifetime(%d)", uint8(l))
}

// ParseLifetime parses a lifetime name, ignoring case and surrounding
// spaces.
func ParseLifetime(s string) (Lifetime, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range lifetimeNames {
		if n == name {
			return Lifetime(i), nil
		}
	}

	return 0, fmt.Errorf("unknown lifetime %q", s)
}

// MarshalText implements [encoding.TextMarshaler].
func (l Lifetime) MarshalText() ([]byte, error) {
	if int(l) >= len(lifetimeNames) {
		return nil, fmt.Errorf("invalid lifetime %d", uint8(l))
	}

	return []byte(l.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (l *Lifetime) UnmarshalText(text []byte) error {
	parsed, err := ParseLifetime(string(text))
	if err != nil {
		return err
	}

	*l = parsed

	return nil
}

// UnmarshalYAML implements [yaml.Unmarshaler].
func (l *Lifetime) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: lifetime must be a string", node.Line)
	}

	if err := l.UnmarshalText([]byte(node.Value)); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	return nil
}

// JSONSchema describes a lifetime as a string enum.
func (Lifetime) JSONSchema() *jsonschema.Schema {
	enum := make([]any, 0, len(lifetimeNames))
	for _, n := range lifetimeNames {
		enum = append(enum, n)
	}

	return &jsonschema.Schema{
		Type:        "string",
		Enum:        enum,
		Description: "How long a resolved instance is reused.",
	}
}

// Contract names the role a registration plays.
type Contract uint8

const (
	// ContractBuilder binds a family to its builder.
	ContractBuilder Contract = iota + 1
	// ContractConfigurator binds a configurator type to itself.
	ContractConfigurator
	// ContractPolicy binds family handles to proxies.
	ContractPolicy
)

// String returns the contract name.
func (c Contract) String() string {
	switch c {
	case ContractBuilder:
		return "builder"
	case ContractConfigurator:
		return "configurator"
	case ContractPolicy:
		return "policy"
	default:
		return fmt.Sprintf("Contract(%d)", uint8(c))
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (c Contract) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (c *Contract) UnmarshalText(text []byte) error {
	for _, cand := range []Contract{ContractBuilder, ContractConfigurator, ContractPolicy} {
		if cand.String() == string(text) {
			*c = cand

			return nil
		}
	}

	return fmt.Errorf("unknown contract %q", text)
}
