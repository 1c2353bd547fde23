package state

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed lifecycle.yaml
var defaultDefinition []byte

type definition struct {
	Name         string                 `yaml:"name"`
	InitialState string                 `yaml:"initialState"`
	States       []State                `yaml:"states"`
	Transitions  []transitionDefinition `yaml:"transitions"`
}

type transitionDefinition struct {
	Name string `yaml:"name"`
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Load reads a workflow definition in yaml and returns the validated state machine.
func Load(r io.Reader) (*StateMachine, error) {
	var def definition
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("decode workflow definition: %w", err)
	}

	sm := &StateMachine{Name: def.Name, States: def.States, Transitions: []Transition{}}
	sm.InitialState = lookup(sm, def.InitialState)
	for _, t := range def.Transitions {
		from := State{Name: AnyState}
		if t.From != AnyState {
			from = lookup(sm, t.From)
		}
		sm.Transitions = append(sm.Transitions, Transition{Name: t.Name, From: from, To: lookup(sm, t.To)})
	}
	if err := sm.Validate(); err != nil {
		return nil, err
	}
	return sm, nil
}

func LoadFile(path string) (*StateMachine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Default returns the built-in project lifecycle.
func Default() *StateMachine {
	sm, err := Load(bytes.NewReader(defaultDefinition))
	if err != nil {
		panic(err)
	}
	return sm
}

// lookup keeps unknown names as bare states, Validate reports them.
func lookup(sm *StateMachine, name string) State {
	if s, found := sm.FindState(name); found {
		return s
	}
	return State{Name: name}
}

func (sm *StateMachine) MarshalDefinition() ([]byte, error) {
	def := definition{Name: sm.Name, InitialState: sm.InitialState.Name, States: sm.States}
	for _, t := range sm.Transitions {
		def.Transitions = append(def.Transitions, transitionDefinition{Name: t.Name, From: t.From.Name, To: t.To.Name})
	}
	return yaml.Marshal(def)
}
