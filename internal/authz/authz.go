// Package authz evaluates declared authorization rules as a union of grants.
//
// A Policy is an ordered list of rules, each pairing a predicate over the caller
// and the record with the operations it grants. A request is allowed when any
// rule matches and lists the requested operation. There are no deny rules.
package authz

import (
	"errors"
	"fmt"
	"strings"
)

var ErrAccessDenied = errors.New("access denied")

type Operation string

const (
	Create Operation = "create"
	Read   Operation = "read"
	Update Operation = "update"
	Delete Operation = "delete"
)

// AllOperations lists every operation a generated data API exposes.
func AllOperations() []Operation {
	return []Operation{Create, Read, Update, Delete}
}

type Provider string

const (
	ProviderUserPool     Provider = "userPool"
	ProviderIdentityPool Provider = "identityPool"
)

type Strategy string

const (
	StrategyOwner         Strategy = "owner"
	StrategyGroup         Strategy = "group"
	StrategyAuthenticated Strategy = "authenticated"
)

type Principal struct {
	Subject  string
	Email    string
	Groups   []string
	Provider Provider
	Claims   map[string]string
}

func (principal Principal) InGroup(name string) bool {
	for _, group := range principal.Groups {
		if group == name {
			return true
		}
	}
	return false
}

type Resource struct {
	Model   string
	OwnerID string
}

type Rule struct {
	Strategy   Strategy    `yaml:"allow" json:"allow"`
	OwnerField string      `yaml:"ownerField,omitempty" json:"ownerField,omitempty"`
	Group      string      `yaml:"group,omitempty" json:"group,omitempty"`
	Provider   Provider    `yaml:"provider,omitempty" json:"provider,omitempty"`
	Operations []Operation `yaml:"operations" json:"operations"`
}

// Owner grants every operation to a user-pool caller whose subject equals the
// record's owner field.
func Owner(field string) Rule {
	return Rule{
		Strategy:   StrategyOwner,
		OwnerField: field,
		Provider:   ProviderUserPool,
		Operations: AllOperations(),
	}
}

func Group(name string, operations ...Operation) Rule {
	return Rule{Strategy: StrategyGroup, Group: name, Operations: operations}
}

func Authenticated(provider Provider, operations ...Operation) Rule {
	return Rule{Strategy: StrategyAuthenticated, Provider: provider, Operations: operations}
}

func (rule Rule) String() string {
	switch rule.Strategy {
	case StrategyOwner:
		return fmt.Sprintf("owner(%s)", rule.OwnerField)
	case StrategyGroup:
		return fmt.Sprintf("group(%s)", rule.Group)
	case StrategyAuthenticated:
		return fmt.Sprintf("authenticated(%s)", rule.Provider)
	default:
		return string(rule.Strategy)
	}
}

func (rule Rule) allows(operation Operation) bool {
	for _, granted := range rule.Operations {
		if granted == operation {
			return true
		}
	}
	return false
}

func (rule Rule) matches(principal Principal, resource Resource) bool {
	switch rule.Strategy {
	case StrategyOwner:
		return principal.Provider == ProviderUserPool &&
			strings.TrimSpace(principal.Subject) != "" &&
			principal.Subject == resource.OwnerID
	case StrategyGroup:
		return principal.Provider == ProviderUserPool && principal.InGroup(rule.Group)
	case StrategyAuthenticated:
		return principal.Provider == rule.Provider && strings.TrimSpace(principal.Subject) != ""
	default:
		return false
	}
}

// Grants reports whether this single rule permits the operation.
func (rule Rule) Grants(principal Principal, operation Operation, resource Resource) bool {
	return rule.allows(operation) && rule.matches(principal, resource)
}

type Policy []Rule

type Decision struct {
	Allowed bool
	Rule    string
}

func (policy Policy) Evaluate(principal Principal, operation Operation, resource Resource) Decision {
	for _, rule := range policy {
		if rule.Grants(principal, operation, resource) {
			return Decision{Allowed: true, Rule: rule.String()}
		}
	}
	return Decision{}
}

func (policy Policy) Authorize(principal Principal, operation Operation, resource Resource) error {
	if policy.Evaluate(principal, operation, resource).Allowed {
		return nil
	}
	return fmt.Errorf("%w: %s on %s", ErrAccessDenied, operation, resource.Model)
}

// GrantsRegardlessOfOwner reports whether the caller may perform the operation on
// any record of the model, i.e. some non-owner rule grants it.
func (policy Policy) GrantsRegardlessOfOwner(principal Principal, operation Operation, model string) bool {
	return policy.Evaluate(principal, operation, Resource{Model: model}).Allowed
}

func Union(policies ...Policy) Policy {
	total := 0
	for _, policy := range policies {
		total += len(policy)
	}
	merged := make(Policy, 0, total)
	for _, policy := range policies {
		merged = append(merged, policy...)
	}
	return merged
}
