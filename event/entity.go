package event

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fundwit/go-commons/types"
)

const (
	EventCategoryProjectCreated   = "PROJECT_CREATED"
	EventCategoryProjectApplied   = "PROJECT_APPLIED"
	EventCategoryProjectSubmitted = "PROJECT_SUBMITTED"
	EventCategoryProjectPublished = "PROJECT_PUBLISHED"
	EventCategoryProjectMediated  = "PROJECT_MEDIATED"
	EventCategoryProjectCompleted = "PROJECT_COMPLETED"
	EventCategoryProjectReset     = "PROJECT_RESET"
)

const SourceTypeProject = "PROJECT"

type EventCategory string

type Event struct {
	SourceId   types.ID `json:"sourceId"`
	SourceUUID string   `json:"sourceUuid"`
	SourceType string   `json:"sourceType"`
	SourceDesc string   `json:"sourceDesc"`

	CreatorId   types.ID `json:"creatorId"`
	CreatorName string   `json:"creatorName"`

	EventCategory     EventCategory     `json:"eventCategory"`
	UpdatedProperties UpdatedProperties `json:"updatedProperties" sql:"type:TEXT"`
	UpdatedRelations  UpdatedRelations  `json:"updatedRelations" sql:"type:TEXT"`
}

type EventRecord struct {
	ID types.ID `json:"id" gorm:"primary_key"`
	Event

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6)"`
	Synced    bool            `json:"synced"`
}

func (r *EventRecord) TableName() string {
	return "events"
}

type UpdatedProperty struct {
	PropertyName string `json:"propertyName"`
	OldValue     string `json:"oldValue"`
	NewValue     string `json:"newValue"`
}

type UpdatedProperties []UpdatedProperty

// UpdatedRelation records users attached to or detached from the source, e.g. participants.
type UpdatedRelation struct {
	PropertyName string `json:"propertyName"`
	TargetType   string `json:"targetType"`

	OldTargetId string `json:"oldTargetId"`
	NewTargetId string `json:"newTargetId"`
}

type UpdatedRelations []UpdatedRelation

func (t UpdatedProperties) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *UpdatedProperties) Scan(v interface{}) error {
	return scanJSON(v, c)
}

func (t UpdatedRelations) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *UpdatedRelations) Scan(v interface{}) error {
	return scanJSON(v, c)
}

func scanJSON(v interface{}, target interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), target)
}
