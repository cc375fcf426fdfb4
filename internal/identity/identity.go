// Package identity declares how users sign in and which attributes every
// identity carries.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/terraincognita07/kgjournal/internal/models"
)

var ErrInvalidAttribute = errors.New("invalid user attribute")

type LoginMethod string

const LoginWithEmail LoginMethod = "email"

type TriggerKind string

const TriggerPreTokenGeneration TriggerKind = "preTokenGeneration"

const (
	attributeMinLength = 1
	attributeMaxLength = 128
)

type AttributeType string

const AttributeString AttributeType = "String"

type Attribute struct {
	Name      string        `yaml:"name" json:"name"`
	Type      AttributeType `yaml:"type" json:"type"`
	Mutable   bool          `yaml:"mutable" json:"mutable"`
	MinLength int           `yaml:"minLength" json:"minLength"`
	MaxLength int           `yaml:"maxLength" json:"maxLength"`
}

// Config is the declarative auth resource. Triggers maps a lifecycle event to
// the function name that handles it.
type Config struct {
	LoginWith  LoginMethod            `yaml:"loginWith" json:"loginWith"`
	Attributes []Attribute            `yaml:"userAttributes" json:"userAttributes"`
	Triggers   map[TriggerKind]string `yaml:"triggers" json:"triggers"`
}

func CompanyAttribute(name string) Attribute {
	return Attribute{
		Name:      name,
		Type:      AttributeString,
		Mutable:   true,
		MinLength: attributeMinLength,
		MaxLength: attributeMaxLength,
	}
}

// DefaultConfig signs users in by email and tags every identity with the
// owning and customer company ids.
func DefaultConfig(triggerFunction string) Config {
	return Config{
		LoginWith: LoginWithEmail,
		Attributes: []Attribute{
			CompanyAttribute(models.AttributeOwnerID),
			CompanyAttribute(models.AttributeCustomerID),
		},
		Triggers: map[TriggerKind]string{
			TriggerPreTokenGeneration: triggerFunction,
		},
	}
}

func (config Config) Attribute(name string) (Attribute, bool) {
	for _, attribute := range config.Attributes {
		if attribute.Name == name {
			return attribute, true
		}
	}
	return Attribute{}, false
}

func (config Config) AttributeNames() []string {
	names := make([]string, 0, len(config.Attributes))
	for _, attribute := range config.Attributes {
		names = append(names, attribute.Name)
	}
	return names
}

// ResolveAttribute accepts the declared name or a short alias such as
// "owner", "ownerId" or "customerId", case-insensitively.
func (config Config) ResolveAttribute(alias string) (string, error) {
	wanted := strings.ToLower(strings.TrimSpace(alias))
	if wanted == "" {
		return "", fmt.Errorf("%w: attribute name is required", ErrInvalidAttribute)
	}
	for _, attribute := range config.Attributes {
		bare := strings.ToLower(strings.TrimPrefix(attribute.Name, "custom:"))
		switch wanted {
		case strings.ToLower(attribute.Name), bare, strings.TrimSuffix(bare, "id"):
			return attribute.Name, nil
		}
	}
	return "", fmt.Errorf("%w: unknown attribute %q", ErrInvalidAttribute, alias)
}

func (config Config) ValidateAttribute(name string, value string) error {
	attribute, ok := config.Attribute(name)
	if !ok {
		return fmt.Errorf("%w: unknown attribute %q", ErrInvalidAttribute, name)
	}
	if !attribute.Mutable {
		return fmt.Errorf("%w: %s is immutable", ErrInvalidAttribute, name)
	}

	length := utf8.RuneCountInString(value)
	if length < attribute.MinLength || length > attribute.MaxLength {
		return fmt.Errorf("%w: %s must be %d to %d characters, got %d", ErrInvalidAttribute, name, attribute.MinLength, attribute.MaxLength, length)
	}
	return nil
}

func (config Config) ValidateAttributes(attributes map[string]string) error {
	for name, value := range attributes {
		if err := config.ValidateAttribute(name, value); err != nil {
			return err
		}
	}
	return nil
}

func (config Config) TriggerFor(kind TriggerKind) (string, bool) {
	name, ok := config.Triggers[kind]
	return name, ok && name != ""
}

// Validate checks the configuration itself.
func (config Config) Validate() error {
	if config.LoginWith != LoginWithEmail {
		return fmt.Errorf("unsupported login method %q", config.LoginWith)
	}
	seen := make(map[string]struct{}, len(config.Attributes))
	for _, attribute := range config.Attributes {
		if !strings.HasPrefix(attribute.Name, "custom:") {
			return fmt.Errorf("custom attribute %q must use the custom: prefix", attribute.Name)
		}
		if _, duplicate := seen[attribute.Name]; duplicate {
			return fmt.Errorf("attribute %q declared twice", attribute.Name)
		}
		seen[attribute.Name] = struct{}{}
		if attribute.MinLength < 0 || attribute.MaxLength < attribute.MinLength {
			return fmt.Errorf("attribute %q has invalid length bounds", attribute.Name)
		}
	}
	return nil
}
