package schema

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownSchema = errors.New("unknown schema")
	ErrUnknownModel  = errors.New("unknown model")
)

type Registry struct {
	schemas map[string]*Schema
}

func NewRegistry(schemas ...*Schema) (*Registry, error) {
	registry := &Registry{schemas: make(map[string]*Schema, len(schemas))}
	for _, declared := range schemas {
		if err := declared.Validate(); err != nil {
			return nil, err
		}
		if _, duplicate := registry.schemas[declared.Name]; duplicate {
			return nil, fmt.Errorf("%w: schema %s registered twice", ErrInvalidSchema, declared.Name)
		}
		registry.schemas[declared.Name] = declared
	}
	return registry, nil
}

// Default registers both journal revisions.
func Default() *Registry {
	registry, err := NewRegistry(Journal(), Exposure())
	if err != nil {
		panic(err)
	}
	return registry
}

func (registry *Registry) Schemas() []*Schema {
	schemas := make([]*Schema, 0, len(registry.schemas))
	for _, declared := range registry.schemas {
		schemas = append(schemas, declared)
	}
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].Name < schemas[j].Name })
	return schemas
}

func (registry *Registry) Resolve(schemaName string, modelName string) (*Model, error) {
	declared, ok := registry.schemas[schemaName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, schemaName)
	}
	model, ok := declared.Model(modelName)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownModel, schemaName, modelName)
	}
	return model, nil
}
