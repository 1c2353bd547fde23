package event

import (
	"context"
	"creativehub/persistence"

	"github.com/jinzhu/gorm"
	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	otgorm "github.com/smacker/opentracing-gorm"
)

// Relay dispatches records and flags them synced once every subscriber succeeded.
// Records left unsynced are picked up again by Redeliver.
type Relay struct {
	ds         *persistence.DataSourceManager
	dispatcher Dispatcher
}

func NewRelay(ds *persistence.DataSourceManager, dispatcher Dispatcher) *Relay {
	return &Relay{ds: ds, dispatcher: dispatcher}
}

func (r *Relay) db(ctx context.Context) *gorm.DB {
	return otgorm.SetSpanToGorm(ctx, r.ds.GormDB())
}

func (r *Relay) Dispatch(ctx context.Context, record *EventRecord) []EventHandleResult {
	results := r.dispatcher.Dispatch(ctx, record)
	if !allSucceeded(results) {
		return results
	}
	if err := MarkSynced(r.db(ctx), record.ID); err != nil {
		logrus.WithField("event", record.ID).Warnf("mark event synced: %v", err)
	} else {
		record.Synced = true
	}
	return results
}

// Redeliver dispatches up to limit unsynced records again and returns how many got synced.
func (r *Relay) Redeliver(ctx context.Context, limit int) (int, error) {
	records, err := LoadUnsynced(r.db(ctx), limit)
	if err != nil {
		return 0, err
	}
	synced := 0
	for i := range records {
		r.Dispatch(ctx, &records[i])
		if records[i].Synced {
			synced++
		}
	}
	if len(records) > 0 {
		logrus.Infof("redeliver events: %d of %d synced", synced, len(records))
	}
	return synced, nil
}

// StartCron runs Redeliver with a seconds-precision cron spec.
func (r *Relay) StartCron(spec string, limit int) (*cron.Cron, error) {
	crontab := cron.New(cron.WithSeconds())
	_, err := crontab.AddFunc(spec, func() {
		if _, err := r.Redeliver(context.Background(), limit); err != nil {
			logrus.Errorf("redeliver events: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	crontab.Start()
	return crontab, nil
}

func allSucceeded(results []EventHandleResult) bool {
	for _, r := range results {
		if !r.Success {
			return false
		}
	}
	return true
}

var _ Dispatcher = (*Relay)(nil)
