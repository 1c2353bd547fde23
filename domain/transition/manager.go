package transition

import (
	"context"
	"creativehub/bizerror"
	"creativehub/domain/access"
	"creativehub/domain/lifecycle"
	"creativehub/domain/project"
	"creativehub/domain/state"
	"creativehub/session"
	"errors"

	"github.com/sirupsen/logrus"
)

type ManagerTraits interface {
	Submit(ctx context.Context, uuid string, s *session.Session) (*project.Project, error)
	Publish(ctx context.Context, uuid string, s *session.Session) (*project.Project, error)
	Mediate(ctx context.Context, uuid string, selection SelectionInput, s *session.Session) (*project.Project, error)
	Complete(ctx context.Context, uuid string, results ResultInput, s *session.Session) (*project.Project, error)
	Reset(ctx context.Context, uuid string, s *session.Session) (*project.Project, error)
	Transitions(ctx context.Context, uuid string, s *session.Session) ([]state.Transition, error)
}

// SelectionInput and ResultInput decode the request payload. They run only after
// the project is found, access is granted and the lifecycle accepts the transition.
type SelectionInput func() ([]string, error)
type ResultInput func() ([]ResultEntry, error)

func Selected(uuids ...string) SelectionInput {
	return func() ([]string, error) { return uuids, nil }
}

func Results(entries ...ResultEntry) ResultInput {
	return func() ([]ResultEntry, error) { return entries, nil }
}

// Manager runs a transition request: load, authorize, apply in memory, then
// let the coordinator persist and notify.
type Manager struct {
	store       project.Store
	policy      access.Policy
	guard       *lifecycle.Guard
	coordinator *Coordinator
}

func NewManager(store project.Store, policy access.Policy, guard *lifecycle.Guard, coordinator *Coordinator) *Manager {
	return &Manager{store: store, policy: policy, guard: guard, coordinator: coordinator}
}

func (m *Manager) Submit(ctx context.Context, uuid string, s *session.Session) (*project.Project, error) {
	return m.transit(ctx, uuid, state.Submit, s, m.coordinator.OnSubmit)
}

func (m *Manager) Publish(ctx context.Context, uuid string, s *session.Session) (*project.Project, error) {
	return m.transit(ctx, uuid, state.Publish, s, m.coordinator.OnPublish)
}

func (m *Manager) Reset(ctx context.Context, uuid string, s *session.Session) (*project.Project, error) {
	return m.transit(ctx, uuid, state.Reset, s, m.coordinator.OnReset)
}

func (m *Manager) Mediate(ctx context.Context, uuid string, selection SelectionInput, s *session.Session) (*project.Project, error) {
	return m.transit(ctx, uuid, state.Mediate, s, func(ctx context.Context, t *Transit) error {
		selected, err := selection()
		if err != nil {
			return err
		}
		return m.coordinator.OnMediate(ctx, t, selected)
	})
}

func (m *Manager) Complete(ctx context.Context, uuid string, results ResultInput, s *session.Session) (*project.Project, error) {
	return m.transit(ctx, uuid, state.Complete, s, func(ctx context.Context, t *Transit) error {
		entries, err := results()
		if err != nil {
			return err
		}
		return m.coordinator.OnComplete(ctx, t, entries)
	})
}

// Transitions lists what s may invoke on the project right now.
func (m *Manager) Transitions(ctx context.Context, uuid string, s *session.Session) ([]state.Transition, error) {
	p, err := m.store.Detail(ctx, uuid)
	if err != nil {
		return nil, err
	}
	available := []state.Transition{}
	for _, t := range m.guard.Machine().AvailableTransitions(p.StateName) {
		if m.policy.MayInvoke(s, p, t.Name) && m.guard.CanTransition(p, t.Name) {
			available = append(available, t)
		}
	}
	return available, nil
}

func (m *Manager) transit(ctx context.Context, uuid, name string, s *session.Session,
	effect func(ctx context.Context, t *Transit) error) (*project.Project, error) {

	p, err := m.store.Detail(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if !m.policy.MayInvoke(s, p, name) {
		observe(name, OutcomeForbidden)
		return nil, bizerror.ErrForbidden
	}

	from := p.StateName
	if err := lifecycle.NewLifecycle(m.guard).Bind(p).Transition(name); err != nil {
		observe(name, OutcomeRejected)
		return nil, err
	}

	if err := effect(ctx, &Transit{Project: p, From: from, Name: name, Identity: &s.Identity}); err != nil {
		observe(name, outcomeOf(err))
		logrus.WithFields(logrus.Fields{"project": uuid, "transition": name}).Info("transition not committed: ", err)
		return nil, err
	}
	observe(name, OutcomeCommitted)
	return p, nil
}

func outcomeOf(err error) string {
	var badParam *bizerror.ErrBadParam
	var unprocessable *bizerror.ErrUnprocessable
	switch {
	case errors.As(err, &badParam), errors.As(err, &unprocessable):
		return OutcomeInvalid
	case errors.Is(err, bizerror.ErrConcurrentModification):
		return OutcomeConflict
	default:
		return OutcomeFailed
	}
}
