package project

import (
	"creativehub/domain/state"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fundwit/go-commons/types"
)

const (
	RoleCreative = "creative"
	RoleManager  = "manager"
)

type Project struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	UUID        string   `json:"uuid" gorm:"unique_index;size:36"`
	Title       string   `json:"title"`
	Description string   `json:"description" sql:"type:TEXT"`

	OrganizationID types.ID `json:"organizationId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	OwnerID        types.ID `json:"ownerId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ManagerID      types.ID `json:"managerId"`
	ManagerUUID    string   `json:"managerUuid" gorm:"size:36"`

	StateName     string         `json:"stateName"`
	StateCategory state.Category `json:"stateCategory"`
	Published     bool           `json:"published"`
	Promoted      bool           `json:"promoted"`
	Version       uint           `json:"version"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6)"`

	Applicants   []Applicant   `json:"applicants" gorm:"-"`
	Participants []Participant `json:"participants" gorm:"-"`
}

type Applicant struct {
	ProjectID  types.ID        `json:"projectId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	UserID     types.ID        `json:"userId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	UserUUID   string          `json:"userUuid" gorm:"size:36"`
	Weight     int             `json:"weight"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (a *Applicant) TableName() string {
	return "project_applicants"
}

type Participant struct {
	ProjectID  types.ID        `json:"projectId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	UserID     types.ID        `json:"userId" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	UserUUID   string          `json:"userUuid" gorm:"size:36"`
	Role       string          `json:"role"`
	Weight     int             `json:"weight"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (p *Participant) TableName() string {
	return "project_participants"
}

// Result holds what was delivered, one per project, filled on completion.
type Result struct {
	ID         types.ID        `json:"id" gorm:"primary_key"`
	ProjectID  types.ID        `json:"projectId" gorm:"unique_index" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Files      ResultFiles     `json:"files" sql:"type:TEXT"`
	Links      ResultLinks     `json:"links" sql:"type:TEXT"`
	Comment    string          `json:"comment" sql:"type:TEXT"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6)"`
}

func (r *Result) TableName() string {
	return "project_results"
}

type ResultFile struct {
	FileUUID    string `json:"fileUuid"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ResultLink struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

type ResultFiles []ResultFile
type ResultLinks []ResultLink

type ProjectCreation struct {
	Title          string   `json:"title" validate:"required,max=255"`
	Description    *string  `json:"description" validate:"required"`
	OrganizationID types.ID `json:"organizationId" validate:"required"`
	ManagerID      types.ID `json:"managerId" validate:"required_with=ManagerUUID"`
	ManagerUUID    string   `json:"managerUuid" validate:"required_with=ManagerID,omitempty,uuid"`
}

func (p *Project) CurrentState() string {
	return p.StateName
}

func (p *Project) SetState(s state.State) {
	p.StateName = s.Name
	p.StateCategory = s.Category
}

func (p *Project) HasApplicant() bool {
	return len(p.Applicants) > 0
}

func (p *Project) FindApplicant(userUUID string) (Applicant, bool) {
	for _, a := range p.Applicants {
		if a.UserUUID == userUUID {
			return a, true
		}
	}
	return Applicant{}, false
}

func (p *Project) IsApplicant(userID types.ID) bool {
	for _, a := range p.Applicants {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

func (p *Project) IsParticipant(userID types.ID) bool {
	for _, a := range p.Participants {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

func (p *Project) HasManager() bool {
	return p.ManagerID != 0
}

func (t ResultFiles) Value() (driver.Value, error) {
	if t == nil {
		t = ResultFiles{}
	}
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *ResultFiles) Scan(v interface{}) error {
	return scanJSON(v, c)
}

func (t ResultLinks) Value() (driver.Value, error) {
	if t == nil {
		t = ResultLinks{}
	}
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *ResultLinks) Scan(v interface{}) error {
	return scanJSON(v, c)
}

func scanJSON(v interface{}, target interface{}) error {
	switch value := v.(type) {
	case nil:
		return nil
	case string:
		return json.Unmarshal([]byte(value), target)
	case []byte:
		return json.Unmarshal(value, target)
	default:
		return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
	}
}
