package access

import (
	"creativehub/authority"
	"creativehub/domain/project"
	"creativehub/domain/state"
	"creativehub/session"

	"github.com/fundwit/go-commons/types"
)

type Policy interface {
	MayInvoke(s *session.Session, p *project.Project, transition string) bool
}

// RolePolicy grants:
//   - system admins every transition
//   - the owner and the organization manager submit, mediate, complete and reset
//   - publish only to system admins, as it is the supervisor review
type RolePolicy struct{}

func NewRolePolicy() *RolePolicy {
	return &RolePolicy{}
}

var ownerTransitions = map[string]bool{
	state.Submit:   true,
	state.Mediate:  true,
	state.Complete: true,
	state.Reset:    true,
}

func (r *RolePolicy) MayInvoke(s *session.Session, p *project.Project, transition string) bool {
	if !s.Authenticated() {
		return false
	}
	if s.Perms.IsSystemAdmin() {
		return true
	}
	return ownerTransitions[transition] && r.isResponsible(s, p)
}

// MayView lets every authenticated user see published projects. Unpublished ones
// stay with the organization, the people responsible and the participants.
func (r *RolePolicy) MayView(s *session.Session, p *project.Project) bool {
	if !s.Authenticated() {
		return false
	}
	if p.Published || s.Perms.IsSystemAdmin() || s.Perms.IsOrganizationMember(p.OrganizationID) {
		return true
	}
	return r.isResponsible(s, p) || p.IsParticipant(s.Identity.ID)
}

func (r *RolePolicy) MayApply(s *session.Session, p *project.Project) bool {
	if !s.Authenticated() || s.Identity.ID == p.OwnerID {
		return false
	}
	return s.Perms.HasRole(authority.Creative)
}

func (r *RolePolicy) MayCreate(s *session.Session, organizationID types.ID) bool {
	if !s.Authenticated() {
		return false
	}
	return s.Perms.IsSystemAdmin() || s.Perms.IsOrganizationMember(organizationID)
}

func (r *RolePolicy) isResponsible(s *session.Session, p *project.Project) bool {
	id := s.Identity.ID
	if id == p.OwnerID || (p.ManagerID != 0 && id == p.ManagerID) {
		return true
	}
	return s.Perms.IsOrganizationManager(p.OrganizationID)
}

var _ Policy = (*RolePolicy)(nil)
var _ project.Policy = (*RolePolicy)(nil)
