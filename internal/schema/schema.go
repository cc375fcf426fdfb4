// Package schema declares the journal data models, their enums and
// relationships, and the authorization rules attached to each model.
package schema

import (
	"errors"
	"fmt"

	"github.com/terraincognita07/kgjournal/internal/authz"
)

const (
	PrimaryKey = "id"
	OwnerField = "ownerId"
)

var ErrInvalidSchema = errors.New("invalid schema")

type FieldKind string

const (
	KindID       FieldKind = "id"
	KindString   FieldKind = "string"
	KindFloat    FieldKind = "float"
	KindInteger  FieldKind = "integer"
	KindBoolean  FieldKind = "boolean"
	KindDateTime FieldKind = "datetime"
	KindEnum     FieldKind = "enum"
)

type Field struct {
	Name       string    `yaml:"name" json:"name"`
	Kind       FieldKind `yaml:"type" json:"type"`
	Enum       string    `yaml:"enum,omitempty" json:"enum,omitempty"`
	IsRequired bool      `yaml:"required,omitempty" json:"required,omitempty"`
	IsList     bool      `yaml:"list,omitempty" json:"list,omitempty"`
	Default    any       `yaml:"default,omitempty" json:"default,omitempty"`
}

func ID(name string) Field       { return Field{Name: name, Kind: KindID} }
func String(name string) Field   { return Field{Name: name, Kind: KindString} }
func Float(name string) Field    { return Field{Name: name, Kind: KindFloat} }
func Integer(name string) Field  { return Field{Name: name, Kind: KindInteger} }
func Boolean(name string) Field  { return Field{Name: name, Kind: KindBoolean} }
func DateTime(name string) Field { return Field{Name: name, Kind: KindDateTime} }

func Ref(name string, enum string) Field {
	return Field{Name: name, Kind: KindEnum, Enum: enum}
}

func (field Field) Required() Field {
	field.IsRequired = true
	return field
}

func (field Field) List() Field {
	field.IsList = true
	return field
}

func (field Field) WithDefault(value any) Field {
	field.Default = value
	return field
}

type Enum struct {
	Name   string   `yaml:"name" json:"name"`
	Values []string `yaml:"values" json:"values"`
}

func NewEnum(name string, values ...string) Enum {
	return Enum{Name: name, Values: values}
}

func (enum Enum) Contains(value string) bool {
	for _, member := range enum.Values {
		if member == value {
			return true
		}
	}
	return false
}

type RelationKind string

const (
	HasMany   RelationKind = "hasMany"
	BelongsTo RelationKind = "belongsTo"
)

type Relation struct {
	Name           string       `yaml:"name" json:"name"`
	Kind           RelationKind `yaml:"kind" json:"kind"`
	Target         string       `yaml:"target" json:"target"`
	ReferenceField string       `yaml:"references" json:"references"`
}

type Model struct {
	Name      string       `yaml:"name" json:"name"`
	Fields    []Field      `yaml:"fields" json:"fields"`
	Relations []Relation   `yaml:"relations,omitempty" json:"relations,omitempty"`
	Rules     authz.Policy `yaml:"authorization" json:"authorization"`

	schema *Schema
}

func NewModel(name string, fields ...Field) *Model {
	return &Model{Name: name, Fields: fields}
}

func (model *Model) HasMany(name string, target string, referenceField string) *Model {
	model.Relations = append(model.Relations, Relation{Name: name, Kind: HasMany, Target: target, ReferenceField: referenceField})
	return model
}

func (model *Model) BelongsTo(name string, target string, referenceField string) *Model {
	model.Relations = append(model.Relations, Relation{Name: name, Kind: BelongsTo, Target: target, ReferenceField: referenceField})
	return model
}

func (model *Model) Authorize(rules ...authz.Rule) *Model {
	model.Rules = append(model.Rules, rules...)
	return model
}

func (model *Model) Field(name string) (Field, bool) {
	for _, field := range model.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

func (model *Model) Relation(name string) (Relation, bool) {
	for _, relation := range model.Relations {
		if relation.Name == name {
			return relation, true
		}
	}
	return Relation{}, false
}

// ParentReference returns the reference field of the model's belongsTo
// relation, if it has one.
func (model *Model) ParentReference() (string, bool) {
	for _, relation := range model.Relations {
		if relation.Kind == BelongsTo {
			return relation.ReferenceField, true
		}
	}
	return "", false
}

// Policy is the effective rule list: model rules followed by schema rules.
func (model *Model) Policy() authz.Policy {
	if model.schema == nil {
		return model.Rules
	}
	return authz.Union(model.Rules, model.schema.Rules)
}

func (model *Model) Schema() *Schema {
	return model.schema
}

type Schema struct {
	Name        string       `yaml:"name" json:"name"`
	DisplayName string       `yaml:"displayName" json:"displayName"`
	Enums       []Enum       `yaml:"enums" json:"enums"`
	Models      []*Model     `yaml:"models" json:"models"`
	Rules       authz.Policy `yaml:"authorization" json:"authorization"`
}

func New(name string, displayName string, enums ...Enum) *Schema {
	return &Schema{Name: name, DisplayName: displayName, Enums: enums}
}

func (schema *Schema) Add(models ...*Model) *Schema {
	for _, model := range models {
		model.schema = schema
		schema.Models = append(schema.Models, model)
	}
	return schema
}

func (schema *Schema) Authorize(rules ...authz.Rule) *Schema {
	schema.Rules = append(schema.Rules, rules...)
	return schema
}

func (schema *Schema) Model(name string) (*Model, bool) {
	for _, model := range schema.Models {
		if model.Name == name {
			return model, true
		}
	}
	return nil, false
}

func (schema *Schema) Enum(name string) (Enum, bool) {
	for _, enum := range schema.Enums {
		if enum.Name == name {
			return enum, true
		}
	}
	return Enum{}, false
}

// Validate checks that every reference inside the schema resolves.
func (schema *Schema) Validate() error {
	if schema.Name == "" {
		return fmt.Errorf("%w: schema name is empty", ErrInvalidSchema)
	}
	seen := make(map[string]struct{}, len(schema.Models))
	for _, model := range schema.Models {
		if _, duplicate := seen[model.Name]; duplicate {
			return fmt.Errorf("%w: %s declares model %s twice", ErrInvalidSchema, schema.Name, model.Name)
		}
		seen[model.Name] = struct{}{}
		if err := schema.validateModel(model); err != nil {
			return err
		}
	}
	return nil
}

func (schema *Schema) validateModel(model *Model) error {
	owner, ok := model.Field(OwnerField)
	if !ok || owner.Kind != KindString || !owner.IsRequired {
		return fmt.Errorf("%w: %s.%s must declare a required string %s", ErrInvalidSchema, schema.Name, model.Name, OwnerField)
	}
	if len(model.Rules) == 0 {
		return fmt.Errorf("%w: %s.%s declares no authorization rules", ErrInvalidSchema, schema.Name, model.Name)
	}

	for _, field := range model.Fields {
		if field.Kind != KindEnum {
			continue
		}
		if _, ok := schema.Enum(field.Enum); !ok {
			return fmt.Errorf("%w: %s.%s.%s references unknown enum %s", ErrInvalidSchema, schema.Name, model.Name, field.Name, field.Enum)
		}
	}

	for _, relation := range model.Relations {
		target, ok := schema.Model(relation.Target)
		if !ok {
			return fmt.Errorf("%w: %s.%s.%s targets unknown model %s", ErrInvalidSchema, schema.Name, model.Name, relation.Name, relation.Target)
		}
		holder := model
		if relation.Kind == HasMany {
			holder = target
		}
		reference, ok := holder.Field(relation.ReferenceField)
		if !ok || reference.Kind != KindID {
			return fmt.Errorf("%w: %s.%s.%s reference %s must be an id field on %s", ErrInvalidSchema, schema.Name, model.Name, relation.Name, relation.ReferenceField, holder.Name)
		}
		if _, clash := model.Field(relation.Name); clash {
			return fmt.Errorf("%w: %s.%s relation %s shadows a field", ErrInvalidSchema, schema.Name, model.Name, relation.Name)
		}
	}
	return nil
}
