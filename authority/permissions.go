package authority

import (
	"strings"

	"github.com/fundwit/go-commons/types"
)

const (
	// SystemAdmin is the supervisor role of the platform.
	SystemAdmin = "system:admin"
	// Creative marks freelancers who may apply to projects.
	Creative = "creative"

	OrganizationRoleManager = "manager"
	OrganizationRoleMember  = "member"
)

// OrganizationPerm formats the permission of a role in an organization, e.g. manager_1234.
func OrganizationPerm(role string, organizationID types.ID) string {
	return role + "_" + organizationID.String()
}

type Permissions []string

func (c Permissions) HasRole(role string) bool {
	for _, v := range c {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (c Permissions) IsSystemAdmin() bool {
	return c.HasRole(SystemAdmin)
}

// IsOrganizationManager reports whether the perms hold the manager role of the organization.
func (c Permissions) IsOrganizationManager(organizationID types.ID) bool {
	return c.HasRole(OrganizationPerm(OrganizationRoleManager, organizationID))
}

// IsOrganizationMember is true for members and managers of the organization.
func (c Permissions) IsOrganizationMember(organizationID types.ID) bool {
	return c.IsOrganizationManager(organizationID) || c.HasRole(OrganizationPerm(OrganizationRoleMember, organizationID))
}

// Organizations parses organization ids from perms like manager_1234.
func (c Permissions) Organizations() []types.ID {
	ids := []types.ID{}
	for _, v := range c {
		pairs := strings.Split(v, "_")
		if len(pairs) != 2 {
			continue
		}
		id, err := types.ParseID(pairs[1])
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
