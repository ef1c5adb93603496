package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/rajik786786-oss/kgf-billing/internal/obs"
)

// Worker consumes receipt tasks and sends them through the gateway.
type Worker struct {
	Sender Sender
	Log    zerolog.Logger
}

// Register attaches the worker's handlers to an asynq mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskReceiptSMS, w.HandleReceiptSMS)
}

// HandleReceiptSMS processes one queued receipt. Errors are returned so
// asynq retries with backoff.
func (w *Worker) HandleReceiptSMS(ctx context.Context, task *asynq.Task) error {
	var payload ReceiptPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("notify: decode receipt payload: %w", err)
	}
	if err := w.Sender.Send(ctx, payload.CustomerPhone, ReceiptMessage(payload)); err != nil {
		w.countMessage("send_error")
		w.Log.Error().Err(err).Str("invoice_id", payload.InvoiceID).Msg("receipt sms failed")
		return err
	}
	w.countMessage("sent")
	w.Log.Info().Str("invoice_id", payload.InvoiceID).Msg("receipt sms sent")
	return nil
}

func (w *Worker) countMessage(result string) {
	if obs.MessagesTotal != nil {
		obs.MessagesTotal.WithLabelValues("receipt_sms", result).Inc()
	}
}
