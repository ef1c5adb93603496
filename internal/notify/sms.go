package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sender delivers one SMS message.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// GatewaySender posts messages to an HTTP SMS gateway.
type GatewaySender struct {
	URL      string
	Token    string
	SenderID string
	Client   *http.Client
}

// NewGatewaySender constructs a GatewaySender.
func NewGatewaySender(url, token, senderID string) *GatewaySender {
	return &GatewaySender{
		URL:      url,
		Token:    token,
		SenderID: senderID,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type gatewayRequest struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

// Send implements Sender.
func (s *GatewaySender) Send(ctx context.Context, phone, message string) error {
	if s.URL == "" {
		return errors.New("notify: sms gateway url not configured")
	}
	if phone == "" {
		return errors.New("notify: phone is required")
	}
	body, err := json.Marshal(gatewayRequest{To: phone, From: s.SenderID, Message: message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: sms gateway: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify: sms gateway returned %d", resp.StatusCode)
	}
	return nil
}

// ReceiptMessage renders the SMS body for one receipt.
func ReceiptMessage(p ReceiptPayload) string {
	name := p.CustomerName
	if name == "" {
		name = "Customer"
	}
	return fmt.Sprintf("Dear %s, thank you for your purchase. Bill %s: %s %s. Visit again!",
		name, p.InvoiceID, p.Currency, p.Total)
}
