package transition

import (
	"context"
	"creativehub/bizerror"
	"creativehub/domain/project"
	"creativehub/event"
	"creativehub/files"
	"creativehub/session"
	"errors"
	"fmt"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

const (
	ResultTypeFile = "file"
	ResultTypeLink = "link"

	CodeReferenceNotApplicant = "project.reference_not_applicant"
)

type ResultEntry struct {
	Type        string `json:"type" validate:"required,oneof=file link"`
	Value       string `json:"value" validate:"required"`
	Description string `json:"description"`
}

// Transit is an accepted transition: the project already carries the new state,
// from is the state it left.
type Transit struct {
	Project  *project.Project
	From     string
	Name     string
	Identity *session.Identity
}

// Coordinator persists an accepted transition together with its collateral
// records and event, then hands the committed event to the dispatcher.
type Coordinator struct {
	store      project.Store
	files      files.Resolver
	dispatcher event.Dispatcher
	validator  *validator.Validate
}

func NewCoordinator(store project.Store, files files.Resolver, dispatcher event.Dispatcher) *Coordinator {
	return &Coordinator{store: store, files: files, dispatcher: dispatcher, validator: validator.New()}
}

func (c *Coordinator) OnSubmit(ctx context.Context, t *Transit) error {
	return c.commit(ctx, t, &project.Changeset{}, event.EventCategoryProjectSubmitted)
}

func (c *Coordinator) OnPublish(ctx context.Context, t *Transit) error {
	t.Project.Published = true
	return c.commit(ctx, t, &project.Changeset{}, event.EventCategoryProjectPublished)
}

// OnReset keeps participants and the published flag, only the state goes back.
func (c *Coordinator) OnReset(ctx context.Context, t *Transit) error {
	return c.commit(ctx, t, &project.Changeset{}, event.EventCategoryProjectReset)
}

func (c *Coordinator) OnMediate(ctx context.Context, t *Transit, selected []string) error {
	participants, err := c.SelectParticipants(t.Project, selected)
	if err != nil {
		return err
	}
	t.Project.Promoted = false
	return c.commit(ctx, t, &project.Changeset{Participants: participants}, event.EventCategoryProjectMediated)
}

// SelectParticipants validates the selection against the applicants of p and
// returns the participants in selection order, followed by the manager if any.
// A manager who applied and got selected keeps the manager role.
func (c *Coordinator) SelectParticipants(p *project.Project, selected []string) ([]project.Participant, error) {
	if len(selected) == 0 {
		return nil, &bizerror.ErrBadParam{Field: "selected_creatives", Cause: errors.New("at least one creative must be selected")}
	}
	for i, id := range selected {
		if _, err := uuid.Parse(id); err != nil {
			return nil, &bizerror.ErrBadParam{Field: "selected_creatives[" + strconv.Itoa(i) + "]",
				Cause: fmt.Errorf("'%s' is not a valid uuid", id)}
		}
	}

	now := types.CurrentTimestamp()
	participants := []project.Participant{}
	seen := map[types.ID]bool{}
	for i, id := range selected {
		applicant, found := p.FindApplicant(id)
		if !found {
			return nil, &bizerror.ErrUnprocessable{Code: CodeReferenceNotApplicant,
				Field: "selected_creatives[" + strconv.Itoa(i) + "]", Cause: fmt.Errorf("'%s' is not an applicant of the project", id)}
		}
		if seen[applicant.UserID] {
			continue
		}
		seen[applicant.UserID] = true
		role := project.RoleCreative
		if p.HasManager() && applicant.UserID == p.ManagerID {
			role = project.RoleManager
		}
		participants = append(participants, project.Participant{ProjectID: p.ID, UserID: applicant.UserID, UserUUID: applicant.UserUUID,
			Role: role, Weight: len(participants), CreateTime: now})
	}
	if p.HasManager() && !seen[p.ManagerID] {
		participants = append(participants, project.Participant{ProjectID: p.ID, UserID: p.ManagerID, UserUUID: p.ManagerUUID,
			Role: project.RoleManager, Weight: len(participants), CreateTime: now})
	}
	return participants, nil
}

func (c *Coordinator) OnComplete(ctx context.Context, t *Transit, results []ResultEntry) error {
	result, err := c.BuildResult(ctx, results)
	if err != nil {
		return err
	}
	return c.commit(ctx, t, &project.Changeset{Result: result}, event.EventCategoryProjectCompleted)
}

// BuildResult validates every entry, reporting all invalid ones at once. File
// entries are resolved in one batch, those that do not resolve are dropped.
func (c *Coordinator) BuildResult(ctx context.Context, results []ResultEntry) (*project.Result, error) {
	var errs *multierror.Error
	var fileUUIDs []string
	for i, entry := range results {
		field := "results[" + strconv.Itoa(i) + "]"
		if err := c.validator.Struct(entry); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", field, err))
			continue
		}
		if entry.Type == ResultTypeFile {
			if _, err := uuid.Parse(entry.Value); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%s: '%s' is not a valid file reference", field, entry.Value))
				continue
			}
			fileUUIDs = append(fileUUIDs, entry.Value)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, &bizerror.ErrBadParam{Field: "results", Cause: err}
	}

	resolved, err := c.files.LoadByUUIDs(ctx, fileUUIDs)
	if err != nil {
		return nil, err
	}

	result := &project.Result{Files: project.ResultFiles{}, Links: project.ResultLinks{}}
	for _, entry := range results {
		switch entry.Type {
		case ResultTypeFile:
			f, found := resolved[entry.Value]
			if !found {
				logrus.WithField("file", entry.Value).Info("unresolved result file dropped")
				continue
			}
			result.Files = append(result.Files, project.ResultFile{FileUUID: f.UUID, Name: f.Name, Description: entry.Description})
		case ResultTypeLink:
			result.Links = append(result.Links, project.ResultLink{URL: entry.Value, Description: entry.Description})
		}
	}
	return result, nil
}

func (c *Coordinator) commit(ctx context.Context, t *Transit, changeset *project.Changeset, category event.EventCategory) error {
	p := t.Project
	changeset.Project = p
	changeset.Identity = t.Identity
	changeset.Event = project.ProjectEvent(p, category)
	changeset.Event.UpdatedProperties = event.UpdatedProperties{{PropertyName: "StateName", OldValue: t.From, NewValue: p.StateName}}
	for _, participant := range changeset.Participants {
		changeset.Event.UpdatedRelations = append(changeset.Event.UpdatedRelations,
			event.UpdatedRelation{PropertyName: "Participants", TargetType: "USER", NewTargetId: participant.UserUUID})
	}

	ev, err := c.store.Commit(ctx, changeset)
	if err != nil {
		if errors.Is(err, bizerror.ErrConcurrentModification) {
			return err
		}
		return &bizerror.ErrPersistence{Cause: err}
	}

	logrus.WithFields(logrus.Fields{"project": p.UUID, "transition": t.Name, "from": t.From, "to": p.StateName}).
		Info("project transition committed")
	c.dispatcher.Dispatch(ctx, ev)
	return nil
}
