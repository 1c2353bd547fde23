package lifecycle

import (
	"creativehub/domain/state"
)

// Subject is the entity a lifecycle operates on.
type Subject interface {
	CurrentState() string
	SetState(s state.State)
	HasApplicant() bool
}

type Precondition struct {
	Reason string
	Holds  func(subject Subject) bool
}

type Guard struct {
	machine       state.StateMachineTraits
	preconditions map[string][]Precondition
}

// NewGuard returns a guard with the project rules registered: mediate needs an applicant.
func NewGuard(machine state.StateMachineTraits) *Guard {
	g := &Guard{machine: machine, preconditions: map[string][]Precondition{}}
	g.Require(state.Mediate, Precondition{Reason: ReasonNoApplicant, Holds: func(s Subject) bool {
		return s.HasApplicant()
	}})
	return g
}

func (g *Guard) Require(transition string, p Precondition) {
	g.preconditions[transition] = append(g.preconditions[transition], p)
}

func (g *Guard) Machine() state.StateMachineTraits {
	return g.machine
}

func (g *Guard) CanTransition(subject Subject, transition string) bool {
	return g.Check(subject, transition) == nil
}

// Check returns nil or a *TransitionRejected naming the first failed rule.
func (g *Guard) Check(subject Subject, transition string) error {
	current := subject.CurrentState()
	if !g.machine.HasEdge(current, transition) {
		return &TransitionRejected{Transition: transition, State: current, Reason: ReasonNoEdge}
	}
	for _, p := range g.preconditions[transition] {
		if !p.Holds(subject) {
			return &TransitionRejected{Transition: transition, State: current, Reason: p.Reason}
		}
	}
	return nil
}
