package notification

import (
	"context"
	"creativehub/bizerror"
	"creativehub/persistence"
	"errors"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	otgorm "github.com/smacker/opentracing-gorm"
)

type Outbox interface {
	// Save is idempotent per event and recipient.
	Save(ctx context.Context, notifications []Notification) error
	List(ctx context.Context, recipientID types.ID, page, size int) ([]Notification, error)
	MarkRead(ctx context.Context, recipientID, id types.ID) error
}

type GormOutbox struct {
	ds *persistence.DataSourceManager
}

func NewGormOutbox(ds *persistence.DataSourceManager) *GormOutbox {
	return &GormOutbox{ds: ds}
}

func (o *GormOutbox) db(ctx context.Context) *gorm.DB {
	return otgorm.SetSpanToGorm(ctx, o.ds.GormDB())
}

func (o *GormOutbox) Save(ctx context.Context, notifications []Notification) error {
	return o.db(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range notifications {
			n := notifications[i]
			if err := tx.Where(Notification{EventID: n.EventID, RecipientID: n.RecipientID}).FirstOrCreate(&n).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (o *GormOutbox) List(ctx context.Context, recipientID types.ID, page, size int) ([]Notification, error) {
	notifications := []Notification{}
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	if err := o.db(ctx).Where(&Notification{RecipientID: recipientID}).Order("create_time DESC").
		Offset(offset).Limit(size).Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (o *GormOutbox) MarkRead(ctx context.Context, recipientID, id types.ID) error {
	n := Notification{}
	if err := o.db(ctx).Where("id = ? AND recipient_id = ?", id, recipientID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bizerror.ErrNotFound
		}
		return err
	}
	return o.db(ctx).Model(&Notification{}).Where("id = ?", id).Update("read", true).Error
}

var _ Outbox = (*GormOutbox)(nil)
