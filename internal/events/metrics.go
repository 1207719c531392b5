package events

import (
	"context"

	"github.com/noah-isme/backend-tour/internal/obs"
)

// MetricsNotifier bridges emitted domain events to the Prometheus event
// counter, labelled by topic. It never fails.
type MetricsNotifier struct{}

// Notify implements Notifier.
func (MetricsNotifier) Notify(_ context.Context, event Event) error {
	if obs.EventsEmittedTotal != nil {
		obs.EventsEmittedTotal.WithLabelValues(event.Topic).Inc()
	}
	return nil
}
