package event_test

import (
	"context"
	"creativehub/event"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func buildRecord() *event.EventRecord {
	return &event.EventRecord{
		ID: 1,
		Event: event.Event{
			SourceType: event.SourceTypeProject,
			SourceId:   1234,
			SourceUUID: "c6e2a3b0-59c2-4cc1-9b2c-3c4d8f7e0a11",
			SourceDesc: "project1234",

			EventCategory: event.EventCategoryProjectPublished,
			UpdatedProperties: event.UpdatedProperties{
				{PropertyName: "StateName", OldValue: "pending", NewValue: "open"}},

			CreatorId:   333,
			CreatorName: "user333",
		},
		Timestamp: types.TimestampOfDate(2021, 1, 1, 12, 12, 12, 0, time.Local),
	}
}

func TestBusDispatch(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should invoke all subscribers in order", func(t *testing.T) {
		bus := event.NewBus()
		var seen []string
		bus.Subscribe("ignore", func(ctx context.Context, e *event.EventRecord) *event.EventHandleResult {
			seen = append(seen, "ignore")
			return nil
		})
		bus.Subscribe("ok", func(ctx context.Context, e *event.EventRecord) *event.EventHandleResult {
			seen = append(seen, "ok")
			return &event.EventHandleResult{Success: true, Message: "success", HandlerIdentifier: "all-success-handler"}
		})
		bus.Subscribe("failure", func(ctx context.Context, e *event.EventRecord) *event.EventHandleResult {
			seen = append(seen, "failure")
			return &event.EventHandleResult{Success: false, Message: "failure"}
		})

		ret := bus.Dispatch(context.Background(), buildRecord())
		Expect(seen).To(Equal([]string{"ignore", "ok", "failure"}))
		Expect(ret).To(Equal([]event.EventHandleResult{
			{Success: true, Message: "success", HandlerIdentifier: "all-success-handler"},
			{Success: false, Message: "failure", HandlerIdentifier: "failure"},
		}))
	})

	t.Run("should isolate panicking subscribers", func(t *testing.T) {
		bus := event.NewBus()
		var reached bool
		bus.Subscribe("panic", func(ctx context.Context, e *event.EventRecord) *event.EventHandleResult {
			panic("mailer down")
		})
		bus.Subscribe("after", func(ctx context.Context, e *event.EventRecord) *event.EventHandleResult {
			reached = true
			return &event.EventHandleResult{Success: true}
		})

		var ret []event.EventHandleResult
		Expect(func() { ret = bus.Dispatch(context.Background(), buildRecord()) }).ToNot(Panic())
		Expect(reached).To(BeTrue())
		Expect(ret).To(Equal([]event.EventHandleResult{
			{Success: false, Message: "panic: mailer down", HandlerIdentifier: "panic"},
			{Success: true, HandlerIdentifier: "after"},
		}))
	})

	t.Run("should return empty results without subscribers", func(t *testing.T) {
		Expect(event.NewBus().Dispatch(context.Background(), buildRecord())).To(BeEmpty())
	})
}
