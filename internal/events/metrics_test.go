package events_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tour/internal/events"
	"github.com/noah-isme/backend-tour/internal/obs"
)

func TestMetricsNotifierCountsByTopic(t *testing.T) {
	obs.MustRegisterDomainMetrics("test", prometheus.NewRegistry())
	bus := &events.Bus{
		Log:       events.NewMemoryLog(),
		Notifiers: []events.Notifier{events.MetricsNotifier{}},
	}

	created := testutil.ToFloat64(obs.EventsEmittedTotal.WithLabelValues(events.TopicBookingCreated))
	refunded := testutil.ToFloat64(obs.EventsEmittedTotal.WithLabelValues(events.TopicBookingRefunded))

	_, err := bus.Emit(context.Background(), events.TopicBookingCreated, "ABCD2345", nil)
	require.NoError(t, err)
	_, err = bus.Emit(context.Background(), events.TopicBookingCreated, "ABCD2346", nil)
	require.NoError(t, err)
	_, err = bus.Emit(context.Background(), events.TopicBookingRefunded, "ABCD2345", nil)
	require.NoError(t, err)

	require.Equal(t, created+2, testutil.ToFloat64(obs.EventsEmittedTotal.WithLabelValues(events.TopicBookingCreated)))
	require.Equal(t, refunded+1, testutil.ToFloat64(obs.EventsEmittedTotal.WithLabelValues(events.TopicBookingRefunded)))
}
