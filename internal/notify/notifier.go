package notify

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/rajik786786-oss/kgf-billing/internal/events"
	"github.com/rajik786786-oss/kgf-billing/internal/obs"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReceiptNotifier listens for finalized invoices and queues a receipt SMS
// when the sale has a customer phone number.
type ReceiptNotifier struct {
	Client enqueuer
	Log    zerolog.Logger
}

// Notify implements events.Notifier.
func (n *ReceiptNotifier) Notify(ctx context.Context, event events.Event) error {
	if n == nil || n.Client == nil || event.Topic != events.TopicInvoiceFinalized {
		return nil
	}
	var payload ReceiptPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}
	if payload.CustomerPhone == "" {
		return nil
	}
	task, err := NewReceiptSMSTask(payload)
	if err != nil {
		return err
	}
	if _, err := n.Client.EnqueueContext(ctx, task); err != nil {
		n.countMessage("enqueue_error")
		return err
	}
	n.countMessage("enqueued")
	n.Log.Info().Str("invoice_id", payload.InvoiceID).Msg("receipt sms queued")
	return nil
}

func (n *ReceiptNotifier) countMessage(result string) {
	if obs.MessagesTotal != nil {
		obs.MessagesTotal.WithLabelValues("receipt_sms", result).Inc()
	}
}
