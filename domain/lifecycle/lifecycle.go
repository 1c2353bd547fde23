package lifecycle

import (
	"creativehub/domain/state"
)

// Lifecycle drives one subject at a time. It only changes the in-memory state,
// the caller persists. Not safe for concurrent use.
type Lifecycle struct {
	guard   *Guard
	subject Subject
}

func NewLifecycle(guard *Guard) *Lifecycle {
	return &Lifecycle{guard: guard}
}

func (l *Lifecycle) Bind(subject Subject) *Lifecycle {
	l.subject = subject
	return l
}

func (l *Lifecycle) State() string {
	if l.subject == nil {
		return ""
	}
	return l.subject.CurrentState()
}

func (l *Lifecycle) IsDraft() bool     { return l.State() == state.Draft }
func (l *Lifecycle) IsPending() bool   { return l.State() == state.Pending }
func (l *Lifecycle) IsOpen() bool      { return l.State() == state.Open }
func (l *Lifecycle) IsOngoing() bool   { return l.State() == state.Ongoing }
func (l *Lifecycle) IsCompleted() bool { return l.State() == state.Completed }

func (l *Lifecycle) Can(transition string) bool {
	return l.subject != nil && l.guard.CanTransition(l.subject, transition)
}

func (l *Lifecycle) Submit() error   { return l.Transition(state.Submit) }
func (l *Lifecycle) Publish() error  { return l.Transition(state.Publish) }
func (l *Lifecycle) Mediate() error  { return l.Transition(state.Mediate) }
func (l *Lifecycle) Complete() error { return l.Transition(state.Complete) }
func (l *Lifecycle) Reset() error    { return l.Transition(state.Reset) }

func (l *Lifecycle) Transition(name string) error {
	if l.subject == nil {
		return ErrNotBound
	}
	if err := l.guard.Check(l.subject, name); err != nil {
		return err
	}
	to, _ := l.guard.machine.Destination(l.subject.CurrentState(), name)
	l.subject.SetState(to)
	return nil
}
