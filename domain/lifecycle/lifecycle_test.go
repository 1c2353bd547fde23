package lifecycle_test

import (
	"creativehub/domain/lifecycle"
	"creativehub/domain/state"
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type subject struct {
	state      state.State
	applicants int
}

func (s *subject) CurrentState() string    { return s.state.Name }
func (s *subject) SetState(st state.State) { s.state = st }
func (s *subject) HasApplicant() bool      { return s.applicants > 0 }

var allStates = []string{state.Draft, state.Pending, state.Open, state.Ongoing, state.Completed}
var allTransitions = []string{state.Submit, state.Publish, state.Mediate, state.Complete, state.Reset}

var _ = Describe("Lifecycle", func() {
	var (
		machine *state.StateMachine
		guard   *lifecycle.Guard
		engine  *lifecycle.Lifecycle
	)

	BeforeEach(func() {
		machine = state.Default()
		guard = lifecycle.NewGuard(machine)
		engine = lifecycle.NewLifecycle(guard)
	})

	Describe("Guard", func() {
		It("should follow the state graph", func() {
			for _, s := range allStates {
				for _, t := range allTransitions {
					p := &subject{state: state.State{Name: s}, applicants: 1}
					Expect(guard.CanTransition(p, t)).To(Equal(machine.HasEdge(s, t)), s+"/"+t)
				}
			}
		})

		It("should refuse mediate without applicants even in open", func() {
			p := &subject{state: state.State{Name: state.Open}}
			Expect(guard.CanTransition(p, state.Mediate)).To(BeFalse())

			err := guard.Check(p, state.Mediate)
			Expect(err).To(Equal(&lifecycle.TransitionRejected{
				Transition: state.Mediate, State: state.Open, Reason: lifecycle.ReasonNoApplicant}))
			Expect(errors.Is(err, lifecycle.ErrIllegalTransition)).To(BeTrue())

			p.applicants = 2
			Expect(guard.CanTransition(p, state.Mediate)).To(BeTrue())
			Expect(p.state.Name).To(Equal(state.Open))
		})

		It("should evaluate registered preconditions", func() {
			guard.Require(state.Submit, lifecycle.Precondition{Reason: "title missing", Holds: func(lifecycle.Subject) bool {
				return false
			}})
			err := guard.Check(&subject{state: state.State{Name: state.Draft}}, state.Submit)
			Expect(err.Error()).To(Equal("transition 'submit' is not allowed in state 'draft': title missing"))
		})
	})

	Describe("queries", func() {
		It("should be stable without mutation", func() {
			engine.Bind(&subject{state: state.State{Name: state.Open}})
			Expect(engine.IsOpen()).To(BeTrue())
			Expect(engine.IsOpen()).To(BeTrue())
			Expect(engine.IsDraft()).To(BeFalse())
			Expect(engine.IsPending()).To(BeFalse())
			Expect(engine.IsOngoing()).To(BeFalse())
			Expect(engine.IsCompleted()).To(BeFalse())
			Expect(engine.State()).To(Equal(state.Open))
		})

		It("should report nothing when unbound", func() {
			Expect(engine.State()).To(BeEmpty())
			Expect(engine.Can(state.Submit)).To(BeFalse())
			Expect(engine.Submit()).To(Equal(lifecycle.ErrNotBound))
		})
	})

	Describe("mutators", func() {
		It("should only allow submit from draft", func() {
			p := &subject{state: machine.InitialState, applicants: 1}
			engine.Bind(p)
			for _, mutate := range []func() error{engine.Publish, engine.Mediate, engine.Complete} {
				err := mutate()
				Expect(errors.Is(err, lifecycle.ErrIllegalTransition)).To(BeTrue())
				Expect(engine.IsDraft()).To(BeTrue())
			}
			Expect(engine.Submit()).To(Succeed())
			Expect(p.state).To(Equal(state.State{Name: state.Pending, Category: state.InBacklog}))
		})

		It("should reset from every state to draft", func() {
			for _, s := range allStates {
				p := &subject{state: state.State{Name: s}}
				Expect(engine.Bind(p).Reset()).To(Succeed())
				Expect(p.state.Name).To(Equal(state.Draft))
			}
		})

		It("should carry rejection details", func() {
			p := &subject{state: state.State{Name: state.Completed}}
			err := engine.Bind(p).Complete()
			var rejected *lifecycle.TransitionRejected
			Expect(errors.As(err, &rejected)).To(BeTrue())
			Expect(rejected.Transition).To(Equal(state.Complete))
			Expect(rejected.State).To(Equal(state.Completed))
			Expect(rejected.Reason).To(Equal(lifecycle.ReasonNoEdge))
		})

		It("should walk the whole lifecycle", func() {
			p := &subject{state: machine.InitialState}
			engine.Bind(p)
			Expect(engine.Submit()).To(Succeed())
			Expect(engine.IsPending()).To(BeTrue())
			Expect(engine.Publish()).To(Succeed())
			Expect(engine.IsOpen()).To(BeTrue())
			Expect(errors.Is(engine.Mediate(), lifecycle.ErrIllegalTransition)).To(BeTrue())
			p.applicants = 1
			Expect(engine.Mediate()).To(Succeed())
			Expect(engine.IsOngoing()).To(BeTrue())
			Expect(engine.Complete()).To(Succeed())
			Expect(engine.IsCompleted()).To(BeTrue())
			Expect(p.state.Category).To(Equal(state.Done))
		})

		It("should rebind sequentially", func() {
			a := &subject{state: state.State{Name: state.Draft}}
			b := &subject{state: state.State{Name: state.Pending}}
			Expect(engine.Bind(a).Submit()).To(Succeed())
			Expect(engine.Bind(b).Publish()).To(Succeed())
			Expect(a.state.Name).To(Equal(state.Pending))
			Expect(b.state.Name).To(Equal(state.Open))
		})
	})
})
