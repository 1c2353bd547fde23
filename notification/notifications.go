package notification

import (
	"context"
	"creativehub/domain/project"
	"creativehub/event"
	"creativehub/idgen"
	"creativehub/session"
	"fmt"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

const (
	ReasonSupervisor  = "supervisor"
	ReasonOwner       = "owner"
	ReasonParticipant = "participant"

	NotifierEventHandlerName = "notifier"
)

var idWorker = idgen.NewWorker()

// Notification is an outbox row addressed to one user about one event.
type Notification struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	EventID     types.ID `json:"eventId" gorm:"unique_index:uni_event_recipient" sql:"type:BIGINT UNSIGNED NOT NULL"`
	RecipientID types.ID `json:"recipientId" gorm:"unique_index:uni_event_recipient" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Reason      string   `json:"reason"`

	Category     event.EventCategory `json:"category"`
	ProjectID    types.ID            `json:"projectId"`
	ProjectUUID  string              `json:"projectUuid" gorm:"size:36"`
	ProjectTitle string              `json:"projectTitle"`
	Subject      string              `json:"subject"`

	Read       bool            `json:"read"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (n *Notification) TableName() string {
	return "notifications"
}

var subjects = map[event.EventCategory]string{
	event.EventCategoryProjectSubmitted: "Project '%s' was submitted for review.",
	event.EventCategoryProjectPublished: "Project '%s' was published.",
	event.EventCategoryProjectMediated:  "You were selected for project '%s'.",
	event.EventCategoryProjectCompleted: "Project '%s' was completed.",
	event.EventCategoryProjectReset:     "Project '%s' was reset to draft.",
}

type recipient struct {
	id     types.ID
	reason string
}

type ProjectDetailer interface {
	Detail(ctx context.Context, uuid string) (*project.Project, error)
}

// Notifier turns lifecycle events into outbox rows: supervisors hear about submissions,
// owners about publish and reset, participants about mediation and completion.
// The actor of an event is never notified.
type Notifier struct {
	projects    ProjectDetailer
	outbox      Outbox
	supervisors func() []session.Identity
}

func NewNotifier(projects ProjectDetailer, outbox Outbox, supervisors func() []session.Identity) *Notifier {
	return &Notifier{projects: projects, outbox: outbox, supervisors: supervisors}
}

func (n *Notifier) HandleEvent(ctx context.Context, e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != event.SourceTypeProject {
		return nil
	}
	subject, found := subjects[e.EventCategory]
	if !found {
		return nil
	}

	p, err := n.projects.Detail(ctx, e.SourceUUID)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail project %d: %v", e.SourceId, err),
			HandlerIdentifier: NotifierEventHandlerName,
		}
	}

	now := types.CurrentTimestamp()
	notifications := []Notification{}
	for _, r := range n.recipients(p, e) {
		notifications = append(notifications, Notification{
			ID: idgen.NextID(idWorker), EventID: e.ID, RecipientID: r.id, Reason: r.reason,
			Category: e.EventCategory, ProjectID: p.ID, ProjectUUID: p.UUID, ProjectTitle: p.Title,
			Subject:    fmt.Sprintf(subject, p.Title),
			CreateTime: now,
		})
	}
	if len(notifications) == 0 {
		return &event.EventHandleResult{Success: true, Message: "no recipients", HandlerIdentifier: NotifierEventHandlerName}
	}

	if err := n.outbox.Save(ctx, notifications); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("save %d notifications of event %d: %v", len(notifications), e.ID, err),
			HandlerIdentifier: NotifierEventHandlerName,
		}
	}
	logrus.WithFields(logrus.Fields{"event": e.ID, "category": e.EventCategory}).Infof("%d notifications queued", len(notifications))
	return &event.EventHandleResult{Success: true, HandlerIdentifier: NotifierEventHandlerName}
}

func (n *Notifier) recipients(p *project.Project, e *event.EventRecord) []recipient {
	candidates := []recipient{}
	switch e.EventCategory {
	case event.EventCategoryProjectSubmitted:
		if n.supervisors != nil {
			for _, identity := range n.supervisors() {
				candidates = append(candidates, recipient{id: identity.ID, reason: ReasonSupervisor})
			}
		}
	case event.EventCategoryProjectPublished, event.EventCategoryProjectReset:
		candidates = append(candidates, recipient{id: p.OwnerID, reason: ReasonOwner})
	case event.EventCategoryProjectMediated, event.EventCategoryProjectCompleted:
		for _, participant := range p.Participants {
			candidates = append(candidates, recipient{id: participant.UserID, reason: ReasonParticipant})
		}
	}

	seen := map[types.ID]bool{}
	recipients := []recipient{}
	for _, c := range candidates {
		if c.id == 0 || c.id == e.CreatorId || seen[c.id] {
			continue
		}
		seen[c.id] = true
		recipients = append(recipients, c)
	}
	return recipients
}
