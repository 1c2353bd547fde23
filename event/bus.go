package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

/*
return nil if not support
*/
type EventHandler func(ctx context.Context, e *EventRecord) *EventHandleResult

type EventHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

type Dispatcher interface {
	Dispatch(ctx context.Context, record *EventRecord) []EventHandleResult
}

var handledEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "creativehub_event_handled_total",
	Help: "Total number of domain events handled by subscriber and outcome",
}, []string{"category", "handler", "outcome"})

type subscription struct {
	name    string
	handler EventHandler
}

// Bus delivers committed events to subscribers. A failing subscriber is logged and
// never affects the others or the publisher.
type Bus struct {
	mu            sync.RWMutex
	subscriptions []subscription
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(name string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions = append(b.subscriptions, subscription{name: name, handler: handler})
}

func (b *Bus) Dispatch(ctx context.Context, record *EventRecord) []EventHandleResult {
	b.mu.RLock()
	subscriptions := make([]subscription, len(b.subscriptions))
	copy(subscriptions, b.subscriptions)
	b.mu.RUnlock()

	results := []EventHandleResult{}
	for _, s := range subscriptions {
		logrus.Debug("pre handle event ", record.Event)
		r := invoke(ctx, s, record)
		if r == nil {
			continue
		}
		results = append(results, *r)

		fields := logrus.Fields{"handler": r.HandlerIdentifier, "category": record.EventCategory, "source": record.SourceUUID}
		if r.Success {
			handledEventsTotal.WithLabelValues(string(record.EventCategory), r.HandlerIdentifier, "success").Inc()
			logrus.WithFields(fields).Info("post handle event. ", r.Message)
		} else {
			handledEventsTotal.WithLabelValues(string(record.EventCategory), r.HandlerIdentifier, "failure").Inc()
			logrus.WithFields(fields).Error("post handler error. ", r.Message)
		}
	}
	return results
}

func invoke(ctx context.Context, s subscription, record *EventRecord) (r *EventHandleResult) {
	defer func() {
		if err := recover(); err != nil {
			r = &EventHandleResult{Success: false, Message: fmt.Sprintf("panic: %v", err), HandlerIdentifier: s.name}
		}
	}()
	r = s.handler(ctx, record)
	if r != nil && r.HandlerIdentifier == "" {
		r.HandlerIdentifier = s.name
	}
	return r
}
