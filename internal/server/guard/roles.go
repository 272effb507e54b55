package guard

import (
	"slices"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
)

// Authorizer checks route role requirements fixed at startup. Routes that
// are absent or map to no roles admit any authenticated user.
type Authorizer struct {
	routes map[string][]string
}

// NewAuthorizer copies table; each role list is sorted and de-duplicated.
func NewAuthorizer(table map[string][]string) *Authorizer {
	routes := make(map[string][]string, len(table))
	for route, roles := range table {
		r := slices.Clone(roles)
		slices.Sort(r)
		routes[route] = slices.Compact(r)
	}
	return &Authorizer{routes: routes}
}

// Required returns the roles any of which admits route.
func (a *Authorizer) Required(route string) []string {
	return slices.Clone(a.routes[route])
}

// Authorize admits u to route when the route needs no role or u holds at
// least one of them. Refusals are *common.InsufficientRoleError.
func (a *Authorizer) Authorize(route string, u *models.User) error {
	required := a.routes[route]
	if len(required) == 0 {
		return nil
	}
	if u == nil {
		return common.ErrMissingIdentity
	}
	if u.HasAnyRole(required...) {
		return nil
	}
	return &common.InsufficientRoleError{FullName: u.FullName, Required: slices.Clone(required)}
}
