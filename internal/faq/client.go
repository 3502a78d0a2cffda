// Package faq delegates FAQ turns to an external sub-dialog handler.
package faq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Delegate answers FAQ turns. It receives the raw turn event exactly as this
// engine received it and returns a fulfillment state plus a single message.
type Delegate interface {
	Answer(ctx context.Context, rawEvent json.RawMessage) (state string, message string, err error)
}

// HTTPDelegate posts the turn event to the FAQ handler's endpoint.
type HTTPDelegate struct {
	endpoint string
	client   *http.Client
}

// NewHTTPDelegate creates a delegate for the given FAQ handler endpoint.
func NewHTTPDelegate(endpoint string) *HTTPDelegate {
	return &HTTPDelegate{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// delegateResponse mirrors the FAQ handler's dialog-action reply.
type delegateResponse struct {
	DialogAction struct {
		FulfillmentState string `json:"fulfillmentState"`
		Message          struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"dialogAction"`
}

// Answer forwards the raw event and extracts the handler's state and message.
func (d *HTTPDelegate) Answer(ctx context.Context, rawEvent json.RawMessage) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(rawEvent))
	if err != nil {
		return "", "", fmt.Errorf("build FAQ request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("call FAQ handler: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("FAQ handler returned status %d", resp.StatusCode)
	}

	var parsed delegateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", "", fmt.Errorf("decode FAQ response: %w", err)
	}
	if parsed.DialogAction.FulfillmentState == "" {
		return "", "", fmt.Errorf("FAQ response missing fulfillment state")
	}

	return parsed.DialogAction.FulfillmentState, parsed.DialogAction.Message.Content, nil
}
