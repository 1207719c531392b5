package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tour/internal/events"
)

type captureNotifier struct {
	seen []events.Event
	err  error
}

func (n *captureNotifier) Notify(_ context.Context, event events.Event) error {
	n.seen = append(n.seen, event)
	return n.err
}

func TestEmitRecordsAndNotifies(t *testing.T) {
	log := events.NewMemoryLog()
	notifier := &captureNotifier{}
	bus := &events.Bus{Log: log, Notifiers: []events.Notifier{notifier}}

	ev, err := bus.Emit(context.Background(), events.TopicBookingCreated, "ABCD2345", map[string]any{"total": 10365})
	require.NoError(t, err)
	require.Equal(t, events.TopicBookingCreated, ev.Topic)
	require.Equal(t, "ABCD2345", ev.AggregateID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	require.EqualValues(t, 10365, payload["total"])

	require.Len(t, log.All(), 1)
	require.Len(t, notifier.seen, 1)
}

func TestEmitValidatesInput(t *testing.T) {
	bus := &events.Bus{Log: events.NewMemoryLog()}
	_, err := bus.Emit(context.Background(), "", "ABCD2345", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicBookingPaid, "", nil)
	require.Error(t, err)
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	boom := errors.New("boom")
	bus := &events.Bus{
		Log:       events.NewMemoryLog(),
		Notifiers: []events.Notifier{&captureNotifier{err: boom}},
	}
	_, err := bus.Emit(context.Background(), events.TopicBookingRefunded, "ABCD2345", nil)
	require.ErrorIs(t, err, boom)
}

func TestByAggregateFiltersAuditTrail(t *testing.T) {
	log := events.NewMemoryLog()
	bus := &events.Bus{Log: log}

	_, err := bus.Emit(context.Background(), events.TopicBookingRefunded, "FIRST234", map[string]any{"amount": 4000})
	require.NoError(t, err)
	_, err = bus.Emit(context.Background(), events.TopicBookingRefunded, "OTHER234", map[string]any{"amount": 100})
	require.NoError(t, err)
	_, err = bus.Emit(context.Background(), events.TopicBookingRefunded, "FIRST234", map[string]any{"amount": 6000})
	require.NoError(t, err)

	trail := log.ByAggregate("FIRST234")
	require.Len(t, trail, 2)
}
