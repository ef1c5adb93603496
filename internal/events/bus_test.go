package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rajik786786-oss/kgf-billing/internal/events"
)

type stubStore struct {
	topic       string
	aggregateID string
	payload     []byte
	err         error
}

func (s *stubStore) InsertDomainEvent(_ context.Context, topic, aggregateID string, payload []byte) error {
	s.topic = topic
	s.aggregateID = aggregateID
	s.payload = payload
	return s.err
}

type captureNotifier struct {
	events []events.Event
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return c.err
}

func TestEmitPersistsEvent(t *testing.T) {
	store := &stubStore{}
	notifier := &captureNotifier{}
	fixed := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	bus := events.Bus{
		Store:     store,
		Notifiers: []events.Notifier{notifier},
		Now:       func() time.Time { return fixed },
	}

	payload := map[string]any{"invoiceId": "inv-1", "total": "189.00"}
	event, err := bus.Emit(context.Background(), events.TopicInvoiceFinalized, "inv-1", payload)
	require.NoError(t, err)
	require.Equal(t, events.TopicInvoiceFinalized, store.topic)
	require.Equal(t, "inv-1", store.aggregateID)
	require.JSONEq(t, `{"invoiceId":"inv-1","total":"189.00"}`, string(store.payload))
	require.Len(t, notifier.events, 1)
	require.Equal(t, fixed, event.OccurredAt)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	require.Equal(t, "inv-1", decoded["invoiceId"])
}

func TestEmitRequiresTopicAndAggregate(t *testing.T) {
	bus := events.Bus{Store: &stubStore{}}

	_, err := bus.Emit(context.Background(), "  ", "inv-1", nil)
	require.Error(t, err)

	_, err = bus.Emit(context.Background(), events.TopicCustomerCreated, "", nil)
	require.Error(t, err)
}

func TestEmitNilPayloadBecomesEmptyObject(t *testing.T) {
	store := &stubStore{}
	bus := events.Bus{Store: store}

	_, err := bus.Emit(context.Background(), events.TopicInventoryLowStock, "itm-1", nil)
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(store.payload))
}

func TestEmitNotifierFailureKeepsEvent(t *testing.T) {
	store := &stubStore{}
	notifier := &captureNotifier{err: errors.New("gateway down")}
	bus := events.Bus{Store: store, Notifiers: []events.Notifier{notifier}}

	_, err := bus.Emit(context.Background(), events.TopicInvoiceFinalized, "inv-2", []byte(`{"ok":true}`))
	require.Error(t, err)
	require.Equal(t, "inv-2", store.aggregateID)
	require.Len(t, notifier.events, 1)
}

func TestEmitRejectsInvalidJSONPayload(t *testing.T) {
	bus := events.Bus{Store: &stubStore{}}

	_, err := bus.Emit(context.Background(), events.TopicInvoiceFinalized, "inv-3", []byte("not json"))
	require.Error(t, err)
}
