// Package payment provides credit card validation against an external
// card-verification API.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Validator checks card details before a payment is accepted.
type Validator interface {
	// Validate reports whether the card number and CVV are acceptable.
	// Any failure reaching or parsing the verification service counts as
	// invalid; callers only ever see pass/fail.
	Validate(ctx context.Context, cardNumber, cvv string) bool
}

// VerifyResponse is the verification service's answer for a card number.
type VerifyResponse struct {
	Valid    bool   `json:"valid"`
	CardType string `json:"cardType"`
}

// APIValidator calls a RapidAPI-hosted card verification service.
type APIValidator struct {
	baseURL string
	apiHost string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewAPIValidator creates a validator backed by the verification API.
func NewAPIValidator(baseURL, apiHost, apiKey string, logger *slog.Logger) *APIValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIValidator{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiHost: apiHost,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// Validate applies the length preconditions, asks the verification service
// about the card number, and enforces network-specific CVV rules.
func (v *APIValidator) Validate(ctx context.Context, cardNumber, cvv string) bool {
	if len(cardNumber) < 13 || len(cardNumber) > 19 {
		v.logger.Info("card rejected: number length out of range", "length", len(cardNumber))
		return false
	}
	if cvv == "" {
		v.logger.Info("card rejected: empty CVV")
		return false
	}

	resp, err := v.verify(ctx, cardNumber)
	if err != nil {
		// Fail closed: a verification outage never lets a card through.
		v.logger.Error("card verification call failed", "error", err)
		return false
	}
	if !resp.Valid {
		v.logger.Info("card number rejected by verification service")
		return false
	}

	return CheckCVV(cardNumber, resp.CardType, cvv)
}

func (v *APIValidator) verify(ctx context.Context, cardNumber string) (*VerifyResponse, error) {
	endpoint := fmt.Sprintf("%s/v1/card/verify?number=%s", v.baseURL, url.QueryEscape(cardNumber))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Host", v.apiHost)
	req.Header.Set("X-RapidAPI-Key", v.apiKey)

	httpResp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call verification service: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verification service returned status %d", httpResp.StatusCode)
	}

	var resp VerifyResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	return &resp, nil
}

// IsAmex reports whether the card belongs to the American Express network,
// judged by the verifier-reported network name or the 34/37 number prefix.
func IsAmex(cardNumber, cardType string) bool {
	return strings.EqualFold(cardType, "American Express") ||
		strings.HasPrefix(cardNumber, "34") ||
		strings.HasPrefix(cardNumber, "37")
}

// CheckCVV enforces the CVV length rule for the card's network: Amex takes
// exactly 4 digits, every other network exactly 3. Non-digit characters in
// the CVV make it invalid regardless of length.
func CheckCVV(cardNumber, cardType, cvv string) bool {
	cvv = strings.TrimSpace(cvv)
	for _, r := range cvv {
		if r < '0' || r > '9' {
			return false
		}
	}

	want := 3
	if IsAmex(cardNumber, cardType) {
		want = 4
	}
	return len(cvv) == want
}

// CVVRequirement describes the expected CVV for the card's network, used in
// corrective prompts after a failed validation.
func CVVRequirement(cardNumber string) string {
	if IsAmex(cardNumber, "") {
		return "4-digit CVV"
	}
	return "3-digit CVV"
}
