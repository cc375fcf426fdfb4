// Package backend composes the auth configuration, the data schemas and the
// functions into one validated backend definition.
package backend

import (
	"errors"
	"fmt"

	"github.com/terraincognita07/kgjournal/internal/identity"
	"github.com/terraincognita07/kgjournal/internal/schema"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidBackend         = errors.New("invalid backend definition")
	ErrUnexpectedFunctionKind = errors.New("unexpected function implementation")
)

type Backend struct {
	auth      identity.Config
	data      *schema.Registry
	functions []Function
}

// Define checks that every trigger the auth config registers names a declared
// function placed in the auth resource group.
func Define(auth identity.Config, data *schema.Registry, functions ...Function) (*Backend, error) {
	if err := auth.Validate(); err != nil {
		return nil, fmt.Errorf("%w: auth: %v", ErrInvalidBackend, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: no data schemas", ErrInvalidBackend)
	}

	backend := &Backend{auth: auth, data: data}
	for _, function := range functions {
		if function == nil {
			return nil, fmt.Errorf("%w: nil function", ErrInvalidBackend)
		}
		if _, duplicate := backend.Function(function.Name()); duplicate {
			return nil, fmt.Errorf("%w: function %s declared twice", ErrInvalidBackend, function.Name())
		}
		if function.Timeout() <= 0 {
			return nil, fmt.Errorf("%w: function %s timeout must be positive", ErrInvalidBackend, function.Name())
		}
		backend.functions = append(backend.functions, function)
	}

	for kind, name := range auth.Triggers {
		function, ok := backend.Function(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s trigger names undeclared function %q", ErrInvalidBackend, kind, name)
		}
		if function.ResourceGroup() != ResourceGroupAuth {
			return nil, fmt.Errorf("%w: %s trigger function %s must be in the %s resource group", ErrInvalidBackend, kind, name, ResourceGroupAuth)
		}
	}
	return backend, nil
}

func (backend *Backend) Auth() identity.Config {
	return backend.auth
}

func (backend *Backend) Data() *schema.Registry {
	return backend.data
}

func (backend *Backend) Function(name string) (Function, bool) {
	for _, function := range backend.functions {
		if function.Name() == name {
			return function, true
		}
	}
	return nil, false
}

// TriggerFunction narrows the pre-token-generation trigger's handle to
// *LambdaFunction for access to its extended configuration.
func (backend *Backend) TriggerFunction() (*LambdaFunction, error) {
	name, ok := backend.auth.TriggerFor(identity.TriggerPreTokenGeneration)
	if !ok {
		return nil, fmt.Errorf("%w: no pre-token-generation trigger", ErrInvalidBackend)
	}
	function, ok := backend.Function(name)
	if !ok {
		return nil, fmt.Errorf("%w: trigger function %q not declared", ErrInvalidBackend, name)
	}
	lambdaFunction, ok := function.(*LambdaFunction)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T", ErrUnexpectedFunctionKind, name, function)
	}
	return lambdaFunction, nil
}

type manifest struct {
	Auth      identity.Config    `yaml:"auth"`
	Data      []*schema.Schema   `yaml:"data"`
	Functions []manifestFunction `yaml:"functions"`
}

type manifestFunction struct {
	Name          string            `yaml:"name"`
	Runtime       string            `yaml:"runtime,omitempty"`
	EntryPoint    string            `yaml:"entryPoint,omitempty"`
	SourceDir     string            `yaml:"source,omitempty"`
	Timeout       string            `yaml:"timeout"`
	ResourceGroup string            `yaml:"resourceGroup"`
	Environment   map[string]string `yaml:"environment,omitempty"`
}

// Manifest renders the definition as YAML.
func (backend *Backend) Manifest() ([]byte, error) {
	document := manifest{Auth: backend.auth, Data: backend.data.Schemas()}
	for _, function := range backend.functions {
		descriptor := FunctionDescriptor{
			Name:          function.Name(),
			ResourceGroup: function.ResourceGroup(),
		}
		if lambdaFunction, ok := function.(*LambdaFunction); ok {
			descriptor = lambdaFunction.Descriptor()
		}
		document.Functions = append(document.Functions, manifestFunction{
			Name:          descriptor.Name,
			Runtime:       descriptor.Runtime,
			EntryPoint:    descriptor.EntryPoint,
			SourceDir:     descriptor.SourceDir,
			Timeout:       function.Timeout().String(),
			ResourceGroup: descriptor.ResourceGroup,
			Environment:   descriptor.Environment,
		})
	}
	return yaml.Marshal(document)
}
