package indices

import (
	"context"
	"creativehub/client/es"
	"creativehub/domain/project"
	"creativehub/event"
	"fmt"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	ProjectIndexName = "projects"

	ProjectIndexEventHandlerName = "projectIndexer"
)

type ProjectDocument struct {
	ID          types.ID `json:"id"`
	UUID        string   `json:"uuid"`
	Title       string   `json:"title"`
	Description string   `json:"description"`

	OrganizationID types.ID `json:"organizationId"`
	OwnerID        types.ID `json:"ownerId"`
	ManagerID      types.ID `json:"managerId"`

	StateName     string `json:"stateName"`
	StateCategory string `json:"stateCategory"`
	Published     bool   `json:"published"`
	Promoted      bool   `json:"promoted"`

	ApplicantUUIDs   []string `json:"applicantUuids"`
	ParticipantUUIDs []string `json:"participantUuids"`

	CreateTime types.Timestamp `json:"createTime"`
	UpdateTime types.Timestamp `json:"updateTime"`
}

func NewProjectDocument(p *project.Project) ProjectDocument {
	doc := ProjectDocument{
		ID: p.ID, UUID: p.UUID, Title: p.Title, Description: p.Description,
		OrganizationID: p.OrganizationID, OwnerID: p.OwnerID, ManagerID: p.ManagerID,
		StateName: p.StateName, StateCategory: p.StateCategory.String(),
		Published: p.Published, Promoted: p.Promoted,
		ApplicantUUIDs:   make([]string, 0, len(p.Applicants)),
		ParticipantUUIDs: make([]string, 0, len(p.Participants)),
		CreateTime:       p.CreateTime, UpdateTime: p.UpdateTime,
	}
	for _, a := range p.Applicants {
		doc.ApplicantUUIDs = append(doc.ApplicantUUIDs, a.UserUUID)
	}
	for _, pt := range p.Participants {
		doc.ParticipantUUIDs = append(doc.ParticipantUUIDs, pt.UserUUID)
	}
	return doc
}

// ProjectSource is the read side of the project store used for indexing.
type ProjectSource interface {
	Detail(ctx context.Context, uuid string) (*project.Project, error)
	LoadProjects(ctx context.Context, page, size int) ([]project.Project, error)
}

type Indexer struct {
	source ProjectSource
	docs   es.DocumentStore
}

func NewIndexer(source ProjectSource, docs es.DocumentStore) *Indexer {
	return &Indexer{source: source, docs: docs}
}

func (i *Indexer) IndexProject(ctx context.Context, p *project.Project) error {
	if err := i.docs.Index(ctx, ProjectIndexName, p.ID, NewProjectDocument(p)); err != nil {
		logrus.Warnf("index project %d %s: %v", p.ID, p.UUID, err)
		return err
	}
	logrus.Infof("index project %d %s successfully", p.ID, p.UUID)
	return nil
}

// HandleEvent refreshes the document of the project an event is about.
func (i *Indexer) HandleEvent(ctx context.Context, e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != event.SourceTypeProject {
		return nil
	}

	p, err := i.source.Detail(ctx, e.SourceUUID)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail project when index project %d, %v", e.SourceId, err),
			HandlerIdentifier: ProjectIndexEventHandlerName,
		}
	}
	if err := i.IndexProject(ctx, p); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index project %d, %v", e.SourceId, err),
			HandlerIdentifier: ProjectIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: ProjectIndexEventHandlerName}
}
