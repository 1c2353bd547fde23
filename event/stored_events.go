package event

import (
	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	EventPersistCreateFunc = eventPersistCreate
)

func eventPersistCreate(record *EventRecord, db *gorm.DB) error {
	return db.Create(record).Error
}

// MarkSynced flags records delivered to every subscriber.
func MarkSynced(db *gorm.DB, ids ...types.ID) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Model(&EventRecord{}).Where("id IN (?)", ids).Update("synced", true).Error
}

// LoadUnsynced returns up to limit records not yet delivered, oldest first.
func LoadUnsynced(db *gorm.DB, limit int) ([]EventRecord, error) {
	var records []EventRecord
	if err := db.Where("synced = ?", false).Order("timestamp ASC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
