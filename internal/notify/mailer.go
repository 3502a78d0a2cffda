// Package notify sends order confirmation emails through an external mail
// relay, with bounded retry.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Message is one outbound email.
type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
	HTMLBody string `json:"html_body"`
}

// Mailer delivers a single message. Implementations do not retry.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// RelayMailer posts messages to an HTTP mail relay.
type RelayMailer struct {
	endpoint string
	sender   string
	client   *http.Client
}

// NewRelayMailer creates a mailer that posts to the given relay endpoint.
func NewRelayMailer(endpoint, sender string) *RelayMailer {
	return &RelayMailer{
		endpoint: endpoint,
		sender:   sender,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type relayRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
	HTMLBody string `json:"html_body,omitempty"`
}

// Send delivers one message through the relay.
func (m *RelayMailer) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(relayRequest{
		From:     m.sender,
		To:       msg.To,
		Subject:  msg.Subject,
		TextBody: msg.TextBody,
		HTMLBody: msg.HTMLBody,
	})
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("call mail relay: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mail relay returned status %d", resp.StatusCode)
	}
	return nil
}
