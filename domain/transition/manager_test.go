package transition_test

import (
	"context"
	"creativehub/bizerror"
	"creativehub/domain/access"
	"creativehub/domain/lifecycle"
	"creativehub/domain/project"
	"creativehub/domain/project/projecttest"
	"creativehub/domain/state"
	"creativehub/domain/transition"
	"creativehub/event"
	"creativehub/testinfra"
	"errors"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Manager", func() {
	var (
		store      *projecttest.MemoryStore
		dispatcher *projecttest.RecordingDispatcher
		manager    *transition.Manager
		projects   *project.Manager
		ctx        context.Context
	)

	owner := testinfra.BuildSession(10, uuid.New().String(), "member_100")
	admin := testinfra.BuildSession(1, uuid.New().String(), "system:admin")
	creative := testinfra.BuildSession(30, uuid.New().String(), "creative")

	BeforeEach(func() {
		store = projecttest.NewMemoryStore()
		dispatcher = &projecttest.RecordingDispatcher{}
		machine := state.Default()
		policy := access.NewRolePolicy()
		coordinator := transition.NewCoordinator(store, &fakeResolver{}, dispatcher)
		manager = transition.NewManager(store, policy, lifecycle.NewGuard(machine), coordinator)
		projects = project.NewManager(store, policy, machine, dispatcher)
		ctx = context.Background()
	})

	createProject := func() *project.Project {
		description := ""
		p, err := projects.Create(ctx, &project.ProjectCreation{Title: "logo", Description: &description, OrganizationID: 100}, owner)
		Expect(err).To(BeNil())
		return p
	}

	It("should run the whole lifecycle", func() {
		p := createProject()
		Expect(p.StateName).To(Equal(state.Draft))
		Expect(p.Applicants).To(BeEmpty())

		p, err := manager.Submit(ctx, p.UUID, owner)
		Expect(err).To(BeNil())
		Expect(p.StateName).To(Equal(state.Pending))

		p, err = manager.Publish(ctx, p.UUID, admin)
		Expect(err).To(BeNil())
		Expect(p.StateName).To(Equal(state.Open))
		Expect(p.Published).To(BeTrue())

		_, err = manager.Mediate(ctx, p.UUID, transition.Selected(creative.Identity.UUID), owner)
		Expect(errors.Is(err, lifecycle.ErrIllegalTransition)).To(BeTrue())

		_, err = projects.Apply(ctx, p.UUID, creative)
		Expect(err).To(BeNil())

		p, err = manager.Mediate(ctx, p.UUID, transition.Selected(creative.Identity.UUID), owner)
		Expect(err).To(BeNil())
		Expect(p.StateName).To(Equal(state.Ongoing))
		Expect(p.Participants).To(HaveLen(1))
		Expect(p.Participants[0].UserID).To(Equal(creative.Identity.ID))

		p, err = manager.Complete(ctx, p.UUID, transition.Results(), owner)
		Expect(err).To(BeNil())
		Expect(p.StateName).To(Equal(state.Completed))
		Expect(store.Get(p.UUID).StateName).To(Equal(state.Completed))

		Expect(dispatcher.Categories()).To(Equal([]event.EventCategory{
			event.EventCategoryProjectCreated,
			event.EventCategoryProjectSubmitted,
			event.EventCategoryProjectPublished,
			event.EventCategoryProjectApplied,
			event.EventCategoryProjectMediated,
			event.EventCategoryProjectCompleted,
		}))
	})

	It("should check access before the lifecycle", func() {
		p := createProject()

		_, err := manager.Publish(ctx, p.UUID, owner)
		Expect(err).To(Equal(bizerror.ErrForbidden))
		_, err = manager.Submit(ctx, p.UUID, creative)
		Expect(err).To(Equal(bizerror.ErrForbidden))

		Expect(store.Get(p.UUID).StateName).To(Equal(state.Draft))
	})

	It("should decode input only for accepted transitions", func() {
		p := createProject()
		decoded := 0
		input := func() ([]string, error) {
			decoded++
			return nil, &bizerror.ErrBadParam{Cause: errors.New("bad body")}
		}

		_, err := manager.Mediate(ctx, uuid.New().String(), input, owner)
		Expect(err).To(Equal(bizerror.ErrNotFound))
		_, err = manager.Mediate(ctx, p.UUID, input, creative)
		Expect(err).To(Equal(bizerror.ErrForbidden))
		_, err = manager.Mediate(ctx, p.UUID, input, owner)
		Expect(errors.Is(err, lifecycle.ErrIllegalTransition)).To(BeTrue())
		Expect(decoded).To(BeZero())

		stored := store.Get(p.UUID)
		stored.StateName = state.Open
		stored.Applicants = []project.Applicant{{ProjectID: stored.ID, UserID: 30, UserUUID: creative.Identity.UUID}}
		store.Put(stored)

		_, err = manager.Mediate(ctx, p.UUID, input, owner)
		var badParam *bizerror.ErrBadParam
		Expect(errors.As(err, &badParam)).To(BeTrue())
		Expect(decoded).To(Equal(1))
		Expect(store.Get(p.UUID).StateName).To(Equal(state.Open))
	})

	It("should reject illegal transitions without side effects", func() {
		p := createProject()
		events := len(dispatcher.Records)

		for _, invoke := range []func() (*project.Project, error){
			func() (*project.Project, error) { return manager.Publish(ctx, p.UUID, admin) },
			func() (*project.Project, error) {
				return manager.Mediate(ctx, p.UUID, transition.Selected(creative.Identity.UUID), admin)
			},
			func() (*project.Project, error) { return manager.Complete(ctx, p.UUID, transition.Results(), admin) },
		} {
			_, err := invoke()
			var rejected *lifecycle.TransitionRejected
			Expect(errors.As(err, &rejected)).To(BeTrue())
			Expect(rejected.State).To(Equal(state.Draft))
		}
		Expect(store.Get(p.UUID).StateName).To(Equal(state.Draft))
		Expect(dispatcher.Records).To(HaveLen(events))
	})

	It("should reset from any state and keep participants", func() {
		p := createProject()
		_, err := manager.Reset(ctx, p.UUID, owner)
		Expect(err).To(BeNil())

		stored := store.Get(p.UUID)
		stored.StateName = state.Ongoing
		stored.Participants = []project.Participant{{ProjectID: stored.ID, UserID: 30, Role: project.RoleCreative}}
		store.Put(stored)

		p, err = manager.Reset(ctx, p.UUID, owner)
		Expect(err).To(BeNil())
		Expect(p.StateName).To(Equal(state.Draft))
		Expect(store.Get(p.UUID).Participants).To(HaveLen(1))
	})

	It("should return not found for unknown projects", func() {
		_, err := manager.Submit(ctx, uuid.New().String(), owner)
		Expect(err).To(Equal(bizerror.ErrNotFound))
		_, err = manager.Transitions(ctx, uuid.New().String(), owner)
		Expect(err).To(Equal(bizerror.ErrNotFound))
	})

	It("should list transitions the caller may invoke", func() {
		p := createProject()

		available, err := manager.Transitions(ctx, p.UUID, owner)
		Expect(err).To(BeNil())
		Expect(names(available)).To(Equal([]string{state.Submit, state.Reset}))

		available, err = manager.Transitions(ctx, p.UUID, creative)
		Expect(err).To(BeNil())
		Expect(available).To(BeEmpty())

		stored := store.Get(p.UUID)
		stored.StateName = state.Open
		store.Put(stored)
		available, err = manager.Transitions(ctx, p.UUID, admin)
		Expect(err).To(BeNil())
		Expect(names(available)).To(Equal([]string{state.Reset}))
	})
})

func names(transitions []state.Transition) []string {
	r := []string{}
	for _, t := range transitions {
		r = append(r, t.Name)
	}
	return r
}
