package state

import (
	"errors"
	"fmt"
)

const (
	Draft     = "draft"
	Pending   = "pending"
	Open      = "open"
	Ongoing   = "ongoing"
	Completed = "completed"

	Submit   = "submit"
	Publish  = "publish"
	Mediate  = "mediate"
	Complete = "complete"
	Reset    = "reset"
)

// AnyState as the from of a transition matches every state of the machine.
const AnyState = "*"

type StateMachineTraits interface {
	HasEdge(state, transition string) bool
	Destination(state, transition string) (State, bool)
	AvailableTransitions(fromState string) []Transition
}

// stateless object, just used for state computing
type StateMachine struct {
	Name         string       `json:"name"`
	InitialState State        `json:"initialState"`
	States       []State      `json:"states"`
	Transitions  []Transition `json:"transitions"`
}

type State struct {
	Name     string   `json:"name"     yaml:"name"`
	Category Category `json:"category" yaml:"category"`
}

type Transition struct {
	Name string `json:"name"`
	From State  `json:"from"`
	To   State  `json:"to"`
}

func NewStateMachine(name string, initial State, states []State, transitions []Transition) *StateMachine {
	return &StateMachine{Name: name, InitialState: initial, States: states, Transitions: transitions}
}

func (sm *StateMachine) FindState(name string) (State, bool) {
	for _, s := range sm.States {
		if s.Name == name {
			return s, true
		}
	}
	return State{}, false
}

func (sm *StateMachine) HasEdge(state, transition string) bool {
	_, found := sm.Destination(state, transition)
	return found
}

// Destination resolves the target of transition from state. An edge declared for
// the exact state wins over a wildcard edge of the same name.
func (sm *StateMachine) Destination(state, transition string) (State, bool) {
	if _, known := sm.FindState(state); !known {
		return State{}, false
	}
	var wildcard *Transition
	for i := range sm.Transitions {
		t := &sm.Transitions[i]
		if t.Name != transition {
			continue
		}
		if t.From.Name == state {
			return t.To, true
		}
		if t.From.Name == AnyState && wildcard == nil {
			wildcard = t
		}
	}
	if wildcard != nil {
		return wildcard.To, true
	}
	return State{}, false
}

// AvailableTransitions lists the transitions leaving fromState, wildcard edges expanded.
func (sm *StateMachine) AvailableTransitions(fromState string) []Transition {
	r := []Transition{}
	from, known := sm.FindState(fromState)
	if !known {
		return r
	}
	seen := map[string]bool{}
	for _, t := range sm.Transitions {
		if seen[t.Name] || (t.From.Name != fromState && t.From.Name != AnyState) {
			continue
		}
		to, _ := sm.Destination(fromState, t.Name)
		r = append(r, Transition{Name: t.Name, From: from, To: to})
		seen[t.Name] = true
	}
	return r
}

func (sm *StateMachine) Validate() error {
	if sm.Name == "" {
		return errors.New("workflow name is required")
	}
	if len(sm.States) == 0 {
		return errors.New("workflow has no states")
	}
	names := map[string]bool{}
	for _, s := range sm.States {
		if s.Name == "" || s.Name == AnyState {
			return fmt.Errorf("invalid state name '%s'", s.Name)
		}
		if names[s.Name] {
			return fmt.Errorf("duplicate state '%s'", s.Name)
		}
		names[s.Name] = true
	}
	if !names[sm.InitialState.Name] {
		return fmt.Errorf("initial state '%s' is not a state of the workflow", sm.InitialState.Name)
	}

	edges := map[string]bool{}
	for _, t := range sm.Transitions {
		if t.Name == "" {
			return errors.New("transition name is required")
		}
		if t.From.Name != AnyState && !names[t.From.Name] {
			return fmt.Errorf("transition '%s' leaves unknown state '%s'", t.Name, t.From.Name)
		}
		if !names[t.To.Name] {
			return fmt.Errorf("transition '%s' enters unknown state '%s'", t.Name, t.To.Name)
		}
		key := t.From.Name + "/" + t.Name
		if edges[key] {
			return fmt.Errorf("transition '%s' is declared twice from '%s'", t.Name, t.From.Name)
		}
		edges[key] = true
	}
	return nil
}
