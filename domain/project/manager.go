package project

import (
	"context"
	"creativehub/bizerror"
	"creativehub/domain/state"
	"creativehub/event"
	"creativehub/idgen"
	"creativehub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Policy decides who may create, view and apply to projects.
type Policy interface {
	MayCreate(s *session.Session, organizationID types.ID) bool
	MayView(s *session.Session, p *Project) bool
	MayApply(s *session.Session, p *Project) bool
}

type ManagerTraits interface {
	Create(ctx context.Context, c *ProjectCreation, s *session.Session) (*Project, error)
	Detail(ctx context.Context, uuid string, s *session.Session) (*Project, error)
	Apply(ctx context.Context, uuid string, s *session.Session) (*Applicant, error)
}

type Manager struct {
	store      Store
	policy     Policy
	machine    *state.StateMachine
	dispatcher event.Dispatcher
}

func NewManager(store Store, policy Policy, machine *state.StateMachine, dispatcher event.Dispatcher) *Manager {
	return &Manager{store: store, policy: policy, machine: machine, dispatcher: dispatcher}
}

func (m *Manager) Create(ctx context.Context, c *ProjectCreation, s *session.Session) (*Project, error) {
	if !m.policy.MayCreate(s, c.OrganizationID) {
		return nil, bizerror.ErrForbidden
	}

	now := types.CurrentTimestamp()
	p := &Project{
		ID:             idgen.NextID(idWorker),
		UUID:           uuid.New().String(),
		Title:          c.Title,
		OrganizationID: c.OrganizationID,
		OwnerID:        s.Identity.ID,
		ManagerID:      c.ManagerID,
		ManagerUUID:    c.ManagerUUID,
		CreateTime:     now,
		UpdateTime:     now,
		Applicants:     []Applicant{},
		Participants:   []Participant{},
	}
	if c.Description != nil {
		p.Description = *c.Description
	}
	p.SetState(m.machine.InitialState)

	ev, err := m.store.Create(ctx, p, &s.Identity)
	if err != nil {
		return nil, err
	}
	m.dispatcher.Dispatch(ctx, ev)
	return p, nil
}

func (m *Manager) Detail(ctx context.Context, uuid string, s *session.Session) (*Project, error) {
	p, err := m.store.Detail(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if !m.policy.MayView(s, p) {
		return nil, bizerror.ErrForbidden
	}
	return p, nil
}

func (m *Manager) Apply(ctx context.Context, uuid string, s *session.Session) (*Applicant, error) {
	p, err := m.store.Detail(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if !m.policy.MayApply(s, p) {
		return nil, bizerror.ErrForbidden
	}
	if p.StateName != state.Open {
		return nil, &bizerror.ErrConflict{Code: "project.not_open", Message: "Project is not open for applications."}
	}
	if p.IsApplicant(s.Identity.ID) {
		return nil, &bizerror.ErrConflict{Code: "project.already_applied", Message: "Already applied to the project."}
	}

	applicant := &Applicant{
		ProjectID:  p.ID,
		UserID:     s.Identity.ID,
		UserUUID:   s.Identity.UUID,
		Weight:     len(p.Applicants),
		CreateTime: types.CurrentTimestamp(),
	}
	ev, err := m.store.AddApplicant(ctx, p, applicant, &s.Identity)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"project": p.UUID, "applicant": applicant.UserUUID}).Info("applicant added")
	m.dispatcher.Dispatch(ctx, ev)
	return applicant, nil
}
