package schema

import (
	"github.com/terraincognita07/kgjournal/internal/authz"
	"github.com/terraincognita07/kgjournal/internal/models"
)

// OwnedRecordRules is attached to every journal model: the owner has full
// access and Admin group members may do anything to any record.
func OwnedRecordRules() []authz.Rule {
	return []authz.Rule{
		authz.Owner(OwnerField),
		authz.Group(models.GroupAdmin, authz.AllOperations()...),
	}
}

// SchemaRules apply to every model of a schema in addition to its own rules.
func SchemaRules() []authz.Rule {
	return []authz.Rule{
		authz.Authenticated(authz.ProviderIdentityPool, authz.Read),
		authz.Group(models.GroupAdmin, authz.AllOperations()...),
	}
}
