package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/rihemtrigui/Customer-Support-Bot/internal/dialog"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/domain"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/faq"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/notify"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/recommend"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/store"
)

type stubRepo struct {
	pingErr error
}

func (s *stubRepo) GetOrder(ctx context.Context, orderNumber int) (*domain.Order, error) {
	return nil, nil
}
func (s *stubRepo) PutOrder(ctx context.Context, order *domain.Order) error { return nil }
func (s *stubRepo) DeleteOrder(ctx context.Context, orderNumber int) error  { return nil }
func (s *stubRepo) UpdateShippingAddress(ctx context.Context, orderNumber int, address string) error {
	return nil
}
func (s *stubRepo) UpdatePaymentMethod(ctx context.Context, orderNumber int, method string) error {
	return nil
}
func (s *stubRepo) NextOrderNumber(ctx context.Context) (int, error)        { return 1000, nil }
func (s *stubRepo) ListOrders(ctx context.Context) ([]*domain.Order, error) { return nil, nil }
func (s *stubRepo) Ping(ctx context.Context) error                          { return s.pingErr }
func (s *stubRepo) Close() error                                            { return nil }

type stubValidator struct{}

func (stubValidator) Validate(ctx context.Context, cardNumber, cvv string) bool { return true }

type stubDispatcher struct{}

func (stubDispatcher) DispatchOrderConfirmation(ctx context.Context, order *domain.Order) bool {
	return true
}

type stubDelegate struct {
	gotRaw  []byte
	state   string
	message string
	err     error
}

func (s *stubDelegate) Answer(ctx context.Context, raw json.RawMessage) (string, string, error) {
	s.gotRaw = append([]byte(nil), raw...)
	return s.state, s.message, s.err
}

var _ notify.Dispatcher = stubDispatcher{}
var _ faq.Delegate = (*stubDelegate)(nil)
var _ store.Repository = (*stubRepo)(nil)

func newTestServer(t *testing.T, repo store.Repository, delegate faq.Delegate) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	engine := dialog.NewEngine(repo, stubValidator{}, stubDispatcher{}, recommend.NewResolver(), delegate, logger)

	r := chi.NewRouter()
	NewFulfillmentHandler(engine).RegisterRoutes(r)
	NewHealthHandler(repo, 0).RegisterHealth(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postTurn(t *testing.T, srv *httptest.Server, body string) *dialog.TurnResponse {
	t.Helper()
	resp, err := http.Post(srv.URL+"/fulfillment", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /fulfillment: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var turn dialog.TurnResponse
	if err := json.NewDecoder(resp.Body).Decode(&turn); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return &turn
}

func TestFulfillGreeting(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &stubRepo{}, &stubDelegate{})

	body := `{"sessionId":"s1","sessionState":{"intent":{"name":"GreetingsIntent"}}}`
	turn := postTurn(t, srv, body)

	if turn.SessionState.Intent.State != "Fulfilled" {
		t.Errorf("expected Fulfilled, got %q", turn.SessionState.Intent.State)
	}
	if len(turn.Messages) == 0 || !strings.Contains(turn.Messages[0].Content, "Welcome to HP SmartBot") {
		t.Errorf("unexpected messages: %+v", turn.Messages)
	}
}

func TestFulfillMalformedBodyStillAnswers(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &stubRepo{}, &stubDelegate{})

	turn := postTurn(t, srv, `{"sessionState": nope`)

	if turn.SessionState.Intent.State != "Failed" {
		t.Errorf("expected Failed close, got %q", turn.SessionState.Intent.State)
	}
	if len(turn.Messages) == 0 || !strings.Contains(turn.Messages[0].Content, "Error processing request") {
		t.Errorf("unexpected messages: %+v", turn.Messages)
	}
}

func TestFulfillForwardsRawBodyToFAQ(t *testing.T) {
	t.Parallel()
	delegate := &stubDelegate{state: "Fulfilled", message: "answered"}
	srv := newTestServer(t, &stubRepo{}, delegate)

	body := `{"sessionId":"s1","sessionState":{"intent":{"name":"FAQIntent"},"sessionAttributes":{"k":"v"}}}`
	turn := postTurn(t, srv, body)

	if string(delegate.gotRaw) != body {
		t.Errorf("delegate did not receive the verbatim body: %s", delegate.gotRaw)
	}
	if len(turn.Messages) == 0 || turn.Messages[0].Content != "answered" {
		t.Errorf("unexpected messages: %+v", turn.Messages)
	}
}

func TestHealthOK(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &stubRepo{}, &stubDelegate{})

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestHealthDegraded(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &stubRepo{pingErr: errors.New("db down")}, &stubDelegate{})

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}

	var status struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if status.Status != "degraded" || status.Checks["database"] != "unreachable" {
		t.Errorf("unexpected health body: %+v", status)
	}
}
