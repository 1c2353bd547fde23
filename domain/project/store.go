package project

import (
	"context"
	"creativehub/bizerror"
	"creativehub/event"
	"creativehub/idgen"
	"creativehub/persistence"
	"creativehub/session"
	"errors"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	otgorm "github.com/smacker/opentracing-gorm"
)

var idWorker = idgen.NewWorker()

type Store interface {
	Create(ctx context.Context, p *Project, identity *session.Identity) (*event.EventRecord, error)
	Detail(ctx context.Context, uuid string) (*Project, error)
	DetailResult(ctx context.Context, projectID types.ID) (*Result, error)
	AddApplicant(ctx context.Context, p *Project, applicant *Applicant, identity *session.Identity) (*event.EventRecord, error)
	Commit(ctx context.Context, changeset *Changeset) (*event.EventRecord, error)
	LoadProjects(ctx context.Context, page, size int) ([]Project, error)
}

// Changeset is what a transition writes: the lifecycle fields of Project, the
// collateral records and the event describing it.
type Changeset struct {
	Project *Project

	// Participants replaces the participants of the project when not nil.
	Participants []Participant
	// Result overwrites files, links and comment of the project result when not nil.
	Result *Result

	Event    event.Event
	Identity *session.Identity
}

type GormStore struct {
	dataSource *persistence.DataSourceManager
}

func NewGormStore(ds *persistence.DataSourceManager) *GormStore {
	return &GormStore{dataSource: ds}
}

func (s *GormStore) db(ctx context.Context) *gorm.DB {
	return otgorm.SetSpanToGorm(ctx, s.dataSource.GormDB())
}

func (s *GormStore) Create(ctx context.Context, p *Project, identity *session.Identity) (*event.EventRecord, error) {
	var ev *event.EventRecord
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		result := Result{ID: idgen.NextID(idWorker), ProjectID: p.ID, Files: ResultFiles{}, Links: ResultLinks{}, UpdateTime: p.CreateTime}
		if err := tx.Create(&result).Error; err != nil {
			return err
		}
		var err error
		ev, err = event.CreateEvent(ProjectEvent(p, event.EventCategoryProjectCreated), identity, p.CreateTime, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *GormStore) Detail(ctx context.Context, uuid string) (*Project, error) {
	db := s.db(ctx)
	p := Project{}
	if err := db.Where(&Project{UUID: uuid}).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	if err := db.Where(&Applicant{ProjectID: p.ID}).Order("weight ASC").Find(&p.Applicants).Error; err != nil {
		return nil, err
	}
	if err := db.Where(&Participant{ProjectID: p.ID}).Order("weight ASC").Find(&p.Participants).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) DetailResult(ctx context.Context, projectID types.ID) (*Result, error) {
	r := Result{}
	if err := s.db(ctx).Where(&Result{ProjectID: projectID}).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *GormStore) AddApplicant(ctx context.Context, p *Project, applicant *Applicant, identity *session.Identity) (*event.EventRecord, error) {
	var ev *event.EventRecord
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		// the version bump serializes applications with transitions of the same project
		if err := bumpVersion(tx, p, map[string]interface{}{}); err != nil {
			return err
		}
		if err := tx.Create(applicant).Error; err != nil {
			return err
		}
		source := ProjectEvent(p, event.EventCategoryProjectApplied)
		source.UpdatedRelations = event.UpdatedRelations{{PropertyName: "Applicants", TargetType: "USER", NewTargetId: applicant.UserUUID}}
		var err error
		ev, err = event.CreateEvent(source, identity, applicant.CreateTime, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.Version++
	p.Applicants = append(p.Applicants, *applicant)
	return ev, nil
}

func (s *GormStore) Commit(ctx context.Context, changeset *Changeset) (*event.EventRecord, error) {
	p := changeset.Project
	now := types.CurrentTimestamp()
	var ev *event.EventRecord
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{
			"state_name":     p.StateName,
			"state_category": p.StateCategory,
			"published":      p.Published,
			"promoted":       p.Promoted,
			"update_time":    now,
		}
		if err := bumpVersion(tx, p, fields); err != nil {
			return err
		}

		if changeset.Participants != nil {
			if err := tx.Where(&Participant{ProjectID: p.ID}).Delete(&Participant{}).Error; err != nil {
				return err
			}
			for i := range changeset.Participants {
				if err := tx.Create(&changeset.Participants[i]).Error; err != nil {
					return err
				}
			}
		}

		if changeset.Result != nil {
			r := changeset.Result
			if err := tx.Model(&Result{}).Where(&Result{ProjectID: p.ID}).Updates(map[string]interface{}{
				"files": r.Files, "links": r.Links, "comment": r.Comment, "update_time": now,
			}).Error; err != nil {
				return err
			}
		}

		var err error
		ev, err = event.CreateEvent(changeset.Event, changeset.Identity, now, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	p.Version++
	p.UpdateTime = now
	if changeset.Participants != nil {
		p.Participants = changeset.Participants
	}
	if changeset.Result != nil {
		changeset.Result.UpdateTime = now
	}
	return ev, nil
}

func (s *GormStore) LoadProjects(ctx context.Context, page, size int) ([]Project, error) {
	projects := []Project{}
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	if err := s.db(ctx).Order("id ASC").Offset(offset).Limit(size).Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// bumpVersion is a compare-and-swap on Project.Version, a stale version yields ErrConcurrentModification.
func bumpVersion(tx *gorm.DB, p *Project, fields map[string]interface{}) error {
	fields["version"] = p.Version + 1
	db := tx.Model(&Project{}).Where("id = ? AND version = ?", p.ID, p.Version).Updates(fields)
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected != 1 {
		return bizerror.ErrConcurrentModification
	}
	return nil
}

func ProjectEvent(p *Project, category event.EventCategory) event.Event {
	return event.Event{
		SourceType:    event.SourceTypeProject,
		SourceId:      p.ID,
		SourceUUID:    p.UUID,
		SourceDesc:    p.Title,
		EventCategory: category,
	}
}

var _ Store = (*GormStore)(nil)
