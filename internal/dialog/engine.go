package dialog

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/rihemtrigui/Customer-Support-Bot/internal/faq"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/notify"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/payment"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/recommend"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/store"
)

// User-facing messages for turns that never reach a state machine.
const (
	greetingMessage       = "Hello! Welcome to HP SmartBot! How may I help you today?"
	fallbackMessage       = "I'm sorry, I couldn't understand your request. Could you please clarify your message?"
	faqErrorMessage       = "Sorry, there was an error processing your FAQ request."
	genericFailureMessage = "Error processing request. Please try again later."
)

// Engine processes one conversational turn at a time. It holds no cross-turn
// state of its own; everything it remembers travels in the session
// attributes supplied with each event and returned with each response.
type Engine struct {
	repo       store.Repository
	validator  payment.Validator
	dispatcher notify.Dispatcher
	resolver   *recommend.Resolver
	faq        faq.Delegate
	logger     *slog.Logger
}

// NewEngine wires the engine to its collaborators.
func NewEngine(repo store.Repository, validator payment.Validator, dispatcher notify.Dispatcher,
	resolver *recommend.Resolver, delegate faq.Delegate, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		repo:       repo,
		validator:  validator,
		dispatcher: dispatcher,
		resolver:   resolver,
		faq:        delegate,
		logger:     logger,
	}
}

// HandleTurn routes one turn event to its state machine and renders the
// resulting decision. It never returns an error: faults become a generic
// Failed close so the front-end never sees a raw failure.
func (e *Engine) HandleTurn(ctx context.Context, event *TurnEvent) *TurnResponse {
	if event == nil || event.SessionState.Intent.Name == "" {
		e.logger.Warn("turn event missing intent")
		return e.failureResponse(IntentUnknown, map[string]string{})
	}

	intentName := event.SessionState.Intent.Name
	slots := event.SessionState.Intent.Slots
	remembered := event.SessionState.SessionAttributes
	if remembered == nil {
		remembered = make(map[string]string)
	}

	// Overlay this turn's recognized values onto the carry-forward map
	// before any machine runs.
	rememberRecognizedSlots(slots, remembered)

	e.logger.Info("processing turn",
		"session_id", event.SessionID, "intent", intentName, "remembered", len(remembered))

	var decision Decision
	switch intentName {
	case IntentOrderItem:
		decision = e.handleOrderItem(ctx, slots, remembered)
	case IntentChangeOrder:
		decision = e.handleChangeOrder(ctx, slots, remembered)
	case IntentGreetings:
		decision = closeWith(StateFulfilled, greetingMessage)
	case IntentFAQ:
		decision = e.handleFAQ(ctx, event)
	default:
		// Includes the front-end's own could-not-classify signal.
		decision = closeWith(StateFulfilled, fallbackMessage)
	}

	resp, err := buildResponse(intentName, decision, remembered)
	if err != nil {
		e.logger.Error("response build failed", "intent", intentName, "error", err)
		return e.failureResponse(intentName, remembered)
	}
	return resp
}

// handleFAQ forwards the raw event to the FAQ sub-dialog and passes its
// message through verbatim.
func (e *Engine) handleFAQ(ctx context.Context, event *TurnEvent) Decision {
	raw := event.Raw
	if len(raw) == 0 {
		// Re-encode when the caller did not keep the original body.
		encoded, err := json.Marshal(event)
		if err != nil {
			e.logger.Error("failed to encode FAQ event", "error", err)
			return closeWith(StateFailed, faqErrorMessage)
		}
		raw = encoded
	}

	state, message, err := e.faq.Answer(ctx, raw)
	if err != nil {
		e.logger.Error("FAQ delegate failed", "error", err)
		return closeWith(StateFailed, faqErrorMessage)
	}
	return closeWith(State(state), message)
}

// failureResponse is the generic Failed close for faults that must not leak
// detail to the front-end. It carries no card, so building cannot fail.
func (e *Engine) failureResponse(intentName string, remembered map[string]string) *TurnResponse {
	resp, _ := buildResponse(intentName, closeWith(StateFailed, genericFailureMessage), remembered)
	return resp
}
