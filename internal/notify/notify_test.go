package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rajik786786-oss/kgf-billing/internal/events"
)

type captureClient struct {
	tasks []*asynq.Task
}

func (c *captureClient) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func finalizedEvent(t *testing.T, phone string) events.Event {
	t.Helper()
	payload, err := json.Marshal(ReceiptPayload{
		InvoiceID:     "inv-1",
		CustomerName:  "Ravi",
		CustomerPhone: phone,
		Total:         "189.00",
		Currency:      "INR",
	})
	require.NoError(t, err)
	return events.Event{Topic: events.TopicInvoiceFinalized, AggregateID: "inv-1", Payload: payload}
}

func TestNotifierQueuesReceiptWithPhone(t *testing.T) {
	client := &captureClient{}
	n := &ReceiptNotifier{Client: client, Log: zerolog.Nop()}

	require.NoError(t, n.Notify(context.Background(), finalizedEvent(t, "9876543210")))
	require.Len(t, client.tasks, 1)
	require.Equal(t, TaskReceiptSMS, client.tasks[0].Type())

	var payload ReceiptPayload
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &payload))
	require.Equal(t, "9876543210", payload.CustomerPhone)
}

func TestNotifierSkipsWithoutPhone(t *testing.T) {
	client := &captureClient{}
	n := &ReceiptNotifier{Client: client, Log: zerolog.Nop()}

	require.NoError(t, n.Notify(context.Background(), finalizedEvent(t, "")))
	require.Empty(t, client.tasks)
}

func TestNotifierIgnoresOtherTopics(t *testing.T) {
	client := &captureClient{}
	n := &ReceiptNotifier{Client: client, Log: zerolog.Nop()}

	err := n.Notify(context.Background(), events.Event{Topic: events.TopicCustomerCreated, Payload: []byte(`{}`)})
	require.NoError(t, err)
	require.Empty(t, client.tasks)
}

func TestGatewaySenderPostsMessage(t *testing.T) {
	var got gatewayRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewGatewaySender(srv.URL, "secret", "KGFPOS")
	err := sender.Send(context.Background(), "9876543210", "hello")
	require.NoError(t, err)
	require.Equal(t, "9876543210", got.To)
	require.Equal(t, "KGFPOS", got.From)
	require.Equal(t, "hello", got.Message)
}

func TestGatewaySenderRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := NewGatewaySender(srv.URL, "", "")
	err := sender.Send(context.Background(), "9876543210", "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestReceiptMessageFallsBackToGenericName(t *testing.T) {
	msg := ReceiptMessage(ReceiptPayload{InvoiceID: "inv-1", Total: "50.00", Currency: "INR"})
	require.True(t, strings.HasPrefix(msg, "Dear Customer"))
	require.Contains(t, msg, "INR 50.00")
}
