package event

import (
	"creativehub/idgen"
	"creativehub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var idWorker *sonyflake.Sonyflake

func init() {
	idWorker = idgen.NewWorker()
}

// CreateEvent persists an event record with db, which is expected to be the
// transaction of the change the event describes.
func CreateEvent(source Event, identity *session.Identity, timestamp types.Timestamp, db *gorm.DB) (*EventRecord, error) {
	record := EventRecord{
		ID:        idgen.NextID(idWorker),
		Event:     source,
		Synced:    false,
		Timestamp: timestamp,
	}
	if identity != nil {
		record.CreatorId = identity.ID
		record.CreatorName = identity.Name
	}
	if err := EventPersistCreateFunc(&record, db); err != nil {
		return nil, err
	}
	return &record, nil
}
