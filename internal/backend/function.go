package backend

import (
	"fmt"
	"sort"
	"time"

	"github.com/terraincognita07/kgjournal/internal/trigger"
)

const (
	ResourceGroupAuth = "auth"
	ResourceGroupData = "data"

	RuntimeProvidedAL2023 = "provided.al2023"
)

// FunctionDescriptor is the deployable description of a function.
type FunctionDescriptor struct {
	Name          string            `yaml:"name"`
	Runtime       string            `yaml:"runtime"`
	EntryPoint    string            `yaml:"entryPoint"`
	SourceDir     string            `yaml:"source"`
	Timeout       time.Duration     `yaml:"timeout"`
	ResourceGroup string            `yaml:"resourceGroup"`
	Environment   map[string]string `yaml:"environment,omitempty"`
}

func SetCompanyID() FunctionDescriptor {
	return FunctionDescriptor{
		Name:          trigger.SetCompanyIDName,
		Runtime:       RuntimeProvidedAL2023,
		EntryPoint:    "bootstrap",
		SourceDir:     "cmd/setcompanyid",
		Timeout:       trigger.DefaultTimeout,
		ResourceGroup: ResourceGroupAuth,
	}
}

func (descriptor FunctionDescriptor) Validate() error {
	switch {
	case descriptor.Name == "":
		return fmt.Errorf("function name is required")
	case descriptor.Runtime == "" || descriptor.EntryPoint == "":
		return fmt.Errorf("function %s needs a runtime and an entry point", descriptor.Name)
	case descriptor.Timeout <= 0:
		return fmt.Errorf("function %s timeout must be positive", descriptor.Name)
	case descriptor.ResourceGroup == "":
		return fmt.Errorf("function %s needs a resource group", descriptor.Name)
	}
	return nil
}

// Function is the generic compute handle a backend exposes for each declared
// function.
type Function interface {
	Name() string
	ResourceGroup() string
	Timeout() time.Duration
}

// LambdaFunction is the concrete handle. Its extra methods are reachable only
// after narrowing a Function to *LambdaFunction.
type LambdaFunction struct {
	descriptor FunctionDescriptor
	handler    trigger.HandlerFunc
}

func NewLambdaFunction(descriptor FunctionDescriptor, handler trigger.HandlerFunc) *LambdaFunction {
	descriptor.Environment = copyEnvironment(descriptor.Environment)
	return &LambdaFunction{descriptor: descriptor, handler: handler}
}

func (function *LambdaFunction) Name() string           { return function.descriptor.Name }
func (function *LambdaFunction) ResourceGroup() string  { return function.descriptor.ResourceGroup }
func (function *LambdaFunction) Timeout() time.Duration { return function.descriptor.Timeout }

func (function *LambdaFunction) Descriptor() FunctionDescriptor {
	descriptor := function.descriptor
	descriptor.Environment = copyEnvironment(function.descriptor.Environment)
	return descriptor
}

func (function *LambdaFunction) AddEnvironment(key string, value string) *LambdaFunction {
	if function.descriptor.Environment == nil {
		function.descriptor.Environment = make(map[string]string)
	}
	function.descriptor.Environment[key] = value
	return function
}

// SetTimeout replaces the declared timeout. The new value is what the manifest
// reports and what sign-in enforces.
func (function *LambdaFunction) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("function %s timeout must be positive", function.descriptor.Name)
	}
	function.descriptor.Timeout = timeout
	return nil
}

func (function *LambdaFunction) Handler() trigger.HandlerFunc {
	return function.handler
}

func (function *LambdaFunction) EnvironmentKeys() []string {
	keys := make([]string, 0, len(function.descriptor.Environment))
	for key := range function.descriptor.Environment {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func copyEnvironment(environment map[string]string) map[string]string {
	if environment == nil {
		return nil
	}
	copied := make(map[string]string, len(environment))
	for key, value := range environment {
		copied[key] = value
	}
	return copied
}
