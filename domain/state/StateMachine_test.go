package state_test

import (
	"creativehub/domain/state"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	var (
		stateMachine *state.StateMachine
	)

	BeforeEach(func() {
		stateMachine = state.Default()
	})

	Describe("Default", func() {
		It("should load the embedded project lifecycle", func() {
			Expect(stateMachine.Name).To(Equal("project-lifecycle"))
			Expect(stateMachine.InitialState).To(Equal(state.State{Name: state.Draft, Category: state.InBacklog}))
			Expect(stateMachine.States).To(Equal([]state.State{
				{Name: state.Draft, Category: state.InBacklog},
				{Name: state.Pending, Category: state.InBacklog},
				{Name: state.Open, Category: state.InProcess},
				{Name: state.Ongoing, Category: state.InProcess},
				{Name: state.Completed, Category: state.Done},
			}))
			Expect(stateMachine.Validate()).To(Succeed())
		})
	})

	Describe("HasEdge and Destination", func() {
		edges := map[string]string{
			state.Draft + "/" + state.Submit:     state.Pending,
			state.Pending + "/" + state.Publish:  state.Open,
			state.Open + "/" + state.Mediate:     state.Ongoing,
			state.Ongoing + "/" + state.Complete: state.Completed,
		}
		for _, s := range []string{state.Draft, state.Pending, state.Open, state.Ongoing, state.Completed} {
			edges[s+"/"+state.Reset] = state.Draft
		}

		It("should contain exactly the lifecycle edges", func() {
			for _, s := range []string{state.Draft, state.Pending, state.Open, state.Ongoing, state.Completed} {
				for _, t := range []string{state.Submit, state.Publish, state.Mediate, state.Complete, state.Reset} {
					expected, exists := edges[s+"/"+t]
					Expect(stateMachine.HasEdge(s, t)).To(Equal(exists), s+"/"+t)
					Expect(stateMachine.HasEdge(s, t)).To(Equal(exists), "repeated "+s+"/"+t)

					to, found := stateMachine.Destination(s, t)
					Expect(found).To(Equal(exists))
					if exists {
						Expect(to.Name).To(Equal(expected))
					} else {
						Expect(to).To(BeZero())
					}
				}
			}
		})

		It("should have no edge for unknown states or transitions", func() {
			Expect(stateMachine.HasEdge("archived", state.Reset)).To(BeFalse())
			Expect(stateMachine.HasEdge(state.AnyState, state.Reset)).To(BeFalse())
			Expect(stateMachine.HasEdge(state.Draft, "approve")).To(BeFalse())
		})

		It("should prefer an explicit edge over the wildcard", func() {
			sm := state.NewStateMachine("m", state.State{Name: "a"},
				[]state.State{{Name: "a"}, {Name: "b"}, {Name: "c"}},
				[]state.Transition{
					{Name: "go", From: state.State{Name: state.AnyState}, To: state.State{Name: "b"}},
					{Name: "go", From: state.State{Name: "b"}, To: state.State{Name: "c"}},
				})
			to, found := sm.Destination("a", "go")
			Expect(found).To(BeTrue())
			Expect(to).To(Equal(state.State{Name: "b"}))
			to, found = sm.Destination("b", "go")
			Expect(found).To(BeTrue())
			Expect(to).To(Equal(state.State{Name: "c"}))
		})
	})

	Describe("AvailableTransitions", func() {
		It("should expand wildcard transitions", func() {
			Ω(stateMachine.AvailableTransitions(state.Open)).Should(Equal([]state.Transition{
				{Name: state.Mediate, From: state.State{Name: state.Open, Category: state.InProcess},
					To: state.State{Name: state.Ongoing, Category: state.InProcess}},
				{Name: state.Reset, From: state.State{Name: state.Open, Category: state.InProcess},
					To: state.State{Name: state.Draft, Category: state.InBacklog}},
			}))
			Ω(stateMachine.AvailableTransitions(state.Completed)).Should(HaveLen(1))
			Ω(stateMachine.AvailableTransitions("UNKNOWN")).Should(BeEmpty())
		})
	})

	Describe("Load", func() {
		It("should reject invalid definitions", func() {
			cases := map[string]string{
				"missing name":       "initialState: a\nstates: [{name: a, category: Done}]\n",
				"unknown initial":    "name: m\ninitialState: x\nstates: [{name: a, category: Done}]\n",
				"duplicate state":    "name: m\ninitialState: a\nstates: [{name: a, category: Done}, {name: a, category: Done}]\n",
				"unknown from":       "name: m\ninitialState: a\nstates: [{name: a, category: Done}]\ntransitions: [{name: t, from: x, to: a}]\n",
				"unknown to":         "name: m\ninitialState: a\nstates: [{name: a, category: Done}]\ntransitions: [{name: t, from: a, to: x}]\n",
				"duplicate edge":     "name: m\ninitialState: a\nstates: [{name: a, category: Done}]\ntransitions: [{name: t, from: a, to: a}, {name: t, from: a, to: a}]\n",
				"unknown category":   "name: m\ninitialState: a\nstates: [{name: a, category: Archived}]\n",
				"unknown field":      "name: m\ninitialState: a\nfinal: true\nstates: [{name: a, category: Done}]\n",
				"unnamed transition": "name: m\ninitialState: a\nstates: [{name: a, category: Done}]\ntransitions: [{from: a, to: a}]\n",
			}
			for name, def := range cases {
				_, err := state.Load(strings.NewReader(def))
				Expect(err).To(HaveOccurred(), name)
			}
		})

		It("should round trip the definition through a file", func() {
			data, err := stateMachine.MarshalDefinition()
			Expect(err).ToNot(HaveOccurred())

			dir, err := os.MkdirTemp("", "workflow")
			Expect(err).ToNot(HaveOccurred())
			defer os.RemoveAll(dir)
			path := filepath.Join(dir, "workflow.yaml")
			Expect(os.WriteFile(path, data, 0600)).To(Succeed())

			loaded, err := state.LoadFile(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(loaded).To(Equal(stateMachine))
		})

		It("should fail on missing file", func() {
			_, err := state.LoadFile("/not/exist/workflow.yaml")
			Expect(err).To(HaveOccurred())
		})
	})
})
