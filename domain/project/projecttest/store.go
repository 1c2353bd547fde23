// Package projecttest provides in-memory doubles of the project store and event dispatcher.
package projecttest

import (
	"context"
	"creativehub/bizerror"
	"creativehub/domain/project"
	"creativehub/event"
	"creativehub/session"
	"sort"
	"sync"

	"github.com/fundwit/go-commons/types"
)

type MemoryStore struct {
	mu       sync.Mutex
	projects map[string]*project.Project
	results  map[types.ID]*project.Result
	nextID   types.ID

	Events []event.EventRecord
	// CommitErr, when set, fails Commit before anything is written.
	CommitErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{projects: map[string]*project.Project{}, results: map[types.ID]*project.Result{}, nextID: 1000}
}

// Put stores a copy of p together with an empty result.
func (s *MemoryStore) Put(p *project.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.UUID] = clone(p)
	if _, found := s.results[p.ID]; !found {
		s.results[p.ID] = &project.Result{ID: p.ID, ProjectID: p.ID, Files: project.ResultFiles{}, Links: project.ResultLinks{}}
	}
}

func (s *MemoryStore) Get(uuid string) *project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, found := s.projects[uuid]; found {
		return clone(p)
	}
	return nil
}

func (s *MemoryStore) Create(ctx context.Context, p *project.Project, identity *session.Identity) (*event.EventRecord, error) {
	s.Put(p)
	return s.record(project.ProjectEvent(p, event.EventCategoryProjectCreated), identity), nil
}

func (s *MemoryStore) Detail(ctx context.Context, uuid string) (*project.Project, error) {
	if p := s.Get(uuid); p != nil {
		return p, nil
	}
	return nil, bizerror.ErrNotFound
}

func (s *MemoryStore) DetailResult(ctx context.Context, projectID types.ID) (*project.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, found := s.results[projectID]
	if !found {
		return nil, bizerror.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (s *MemoryStore) AddApplicant(ctx context.Context, p *project.Project, applicant *project.Applicant, identity *session.Identity) (*event.EventRecord, error) {
	s.mu.Lock()
	stored, found := s.projects[p.UUID]
	if !found {
		s.mu.Unlock()
		return nil, bizerror.ErrNotFound
	}
	if stored.Version != p.Version {
		s.mu.Unlock()
		return nil, bizerror.ErrConcurrentModification
	}
	stored.Version++
	stored.Applicants = append(stored.Applicants, *applicant)
	s.mu.Unlock()

	p.Version++
	p.Applicants = append(p.Applicants, *applicant)
	return s.record(project.ProjectEvent(p, event.EventCategoryProjectApplied), identity), nil
}

func (s *MemoryStore) Commit(ctx context.Context, changeset *project.Changeset) (*event.EventRecord, error) {
	if s.CommitErr != nil {
		return nil, s.CommitErr
	}
	p := changeset.Project

	s.mu.Lock()
	stored, found := s.projects[p.UUID]
	if !found {
		s.mu.Unlock()
		return nil, bizerror.ErrNotFound
	}
	if stored.Version != p.Version {
		s.mu.Unlock()
		return nil, bizerror.ErrConcurrentModification
	}
	p.Version++
	if changeset.Participants != nil {
		p.Participants = changeset.Participants
	}
	s.projects[p.UUID] = clone(p)
	if changeset.Result != nil {
		r := *changeset.Result
		r.ProjectID = p.ID
		s.results[p.ID] = &r
	}
	s.mu.Unlock()

	return s.record(changeset.Event, changeset.Identity), nil
}

func (s *MemoryStore) LoadProjects(ctx context.Context, page, size int) ([]project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := []project.Project{}
	for _, p := range s.projects {
		all = append(all, *clone(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []project.Project{}, nil
	}
	end := offset + size
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *MemoryStore) record(source event.Event, identity *session.Identity) *event.EventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r := event.EventRecord{ID: s.nextID, Event: source, Timestamp: types.CurrentTimestamp()}
	if identity != nil {
		r.CreatorId = identity.ID
		r.CreatorName = identity.Name
	}
	s.Events = append(s.Events, r)
	return &r
}

func clone(p *project.Project) *project.Project {
	c := *p
	c.Applicants = append([]project.Applicant{}, p.Applicants...)
	c.Participants = append([]project.Participant{}, p.Participants...)
	return &c
}

var _ project.Store = (*MemoryStore)(nil)

// RecordingDispatcher keeps every dispatched record.
type RecordingDispatcher struct {
	mu      sync.Mutex
	Records []event.EventRecord
}

func (d *RecordingDispatcher) Dispatch(ctx context.Context, record *event.EventRecord) []event.EventHandleResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Records = append(d.Records, *record)
	return nil
}

func (d *RecordingDispatcher) Categories() []event.EventCategory {
	d.mu.Lock()
	defer d.mu.Unlock()
	categories := []event.EventCategory{}
	for _, r := range d.Records {
		categories = append(categories, r.EventCategory)
	}
	return categories
}
