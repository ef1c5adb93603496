// Package notify delivers receipts to customers over SMS. Sending happens
// off the request path: checkout enqueues a task and the worker process
// talks to the gateway.
package notify

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TaskReceiptSMS is the asynq task kind for receipt delivery.
const TaskReceiptSMS = "sms:receipt"

// ReceiptPayload carries everything the worker needs to compose the SMS.
type ReceiptPayload struct {
	InvoiceID     string `json:"invoiceId"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	Total         string `json:"total"`
	Currency      string `json:"currency"`
}

// NewReceiptSMSTask builds the asynq task for one receipt.
func NewReceiptSMSTask(payload ReceiptPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("notify: marshal receipt payload: %w", err)
	}
	return asynq.NewTask(TaskReceiptSMS, data, asynq.MaxRetry(5)), nil
}
