package dialog

import (
	"context"
	"strings"
	"testing"

	"github.com/rihemtrigui/Customer-Support-Bot/internal/domain"
)

// completeOrderSlots fills every ordering slot for a cash order.
func completeOrderSlots() map[string]string {
	return map[string]string{
		SlotProducts:        "laptop",
		SlotProductName:     "Spectre x360",
		SlotProductNumber:   "14-ef2013dx",
		SlotName:            "Jane Smith",
		SlotShippingAddress: "12 Main St",
		SlotEmail:           "jane@example.com",
		SlotPaymentMethod:   domain.PaymentCash,
	}
}

func TestOrderItemElicitsSlotsInPriorityOrder(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	ctx := context.Background()

	order := []struct {
		slot   string
		answer string
	}{
		{SlotProducts, "laptop"},
		{SlotProductName, "Spectre x360"},
		{SlotProductNumber, "14-ef2013dx"},
		{SlotName, "Jane Smith"},
		{SlotShippingAddress, "12 Main St"},
		{SlotEmail, "jane@example.com"},
		{SlotPaymentMethod, domain.PaymentCash},
	}

	attrs := map[string]string{}
	for _, step := range order {
		resp := fx.engine.HandleTurn(ctx, turnEvent(IntentOrderItem, nil, attrs))
		if resp.SessionState.DialogAction.SlotToElicit != step.slot {
			t.Fatalf("expected elicitation of %s, got %+v", step.slot, resp.SessionState.DialogAction)
		}
		attrs = resp.SessionState.SessionAttributes
		attrs[step.slot] = step.answer
	}
}

func TestOrderItemCashSkipsCardSlots(t *testing.T) {
	t.Parallel()
	fx := newFixture()

	resp := fx.engine.HandleTurn(context.Background(),
		turnEvent(IntentOrderItem, completeOrderSlots(), nil))

	if resp.SessionState.DialogAction.SlotToElicit != SlotSuggestionResponse {
		t.Fatalf("expected SuggestionResponse elicitation, got %+v", resp.SessionState.DialogAction)
	}
	if fx.validator.calls != 0 {
		t.Errorf("validator must not run for cash orders, got %d calls", fx.validator.calls)
	}
}

func TestOrderItemOnlineRequiresCardSlots(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	ctx := context.Background()

	slots := completeOrderSlots()
	slots[SlotPaymentMethod] = domain.PaymentOnline

	resp := fx.engine.HandleTurn(ctx, turnEvent(IntentOrderItem, slots, nil))
	if resp.SessionState.DialogAction.SlotToElicit != SlotCardNumber {
		t.Fatalf("expected CardNumber elicitation, got %+v", resp.SessionState.DialogAction)
	}

	resp = fx.engine.HandleTurn(ctx, turnEvent(IntentOrderItem,
		map[string]string{SlotCardNumber: "4111111111111111"}, resp.SessionState.SessionAttributes))
	if resp.SessionState.DialogAction.SlotToElicit != SlotExpirationDate {
		t.Fatalf("expected ExpirationDate elicitation, got %+v", resp.SessionState.DialogAction)
	}

	resp = fx.engine.HandleTurn(ctx, turnEvent(IntentOrderItem,
		map[string]string{SlotExpirationDate: "12/25"}, resp.SessionState.SessionAttributes))
	if resp.SessionState.DialogAction.SlotToElicit != SlotCVV {
		t.Fatalf("expected CVV elicitation, got %+v", resp.SessionState.DialogAction)
	}

	resp = fx.engine.HandleTurn(ctx, turnEvent(IntentOrderItem,
		map[string]string{SlotCVV: "123"}, resp.SessionState.SessionAttributes))
	if resp.SessionState.DialogAction.SlotToElicit != SlotSuggestionResponse {
		t.Fatalf("expected SuggestionResponse elicitation, got %+v", resp.SessionState.DialogAction)
	}
	if fx.validator.calls == 0 {
		t.Error("validator should have run once card details were complete")
	}
	if got := fx.repo.orders[1000].PaymentMethod; got != domain.PaymentOnline {
		t.Errorf("expected online order persisted, got %q", got)
	}
}

func TestOrderItemCardValidationFailureReElicitsCVV(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	fx.validator.valid = false

	slots := completeOrderSlots()
	slots[SlotPaymentMethod] = domain.PaymentOnline
	slots[SlotCardNumber] = "4111111111111111"
	slots[SlotExpirationDate] = "12/25"
	slots[SlotCVV] = "12"

	resp := fx.engine.HandleTurn(context.Background(), turnEvent(IntentOrderItem, slots, nil))

	if resp.SessionState.DialogAction.SlotToElicit != SlotCVV {
		t.Fatalf("expected CVV re-elicitation, got %+v", resp.SessionState.DialogAction)
	}
	if got := firstText(t, resp); !strings.Contains(got, "3-digit CVV") {
		t.Errorf("expected non-Amex corrective message, got %q", got)
	}
	if fx.repo.putCalls != 0 {
		t.Errorf("no order may be created on validation failure, got %d writes", fx.repo.putCalls)
	}
}

func TestOrderItemPlacesOrderExactlyOnce(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	ctx := context.Background()

	// First completion turn: the order is placed and the upsell offered.
	resp := fx.engine.HandleTurn(ctx, turnEvent(IntentOrderItem, completeOrderSlots(), nil))

	if fx.repo.putCalls != 1 {
		t.Fatalf("expected exactly one order write, got %d", fx.repo.putCalls)
	}
	if fx.dispatcher.calls != 1 {
		t.Errorf("expected one confirmation dispatch, got %d", fx.dispatcher.calls)
	}
	if fx.dispatcher.last.EmailAddress != "jane@example.com" {
		t.Errorf("confirmation sent to wrong address: %q", fx.dispatcher.last.EmailAddress)
	}
	if got := firstText(t, resp); !strings.Contains(got, "order number is #1000") {
		t.Errorf("unexpected confirmation message: %q", got)
	}

	card := firstCard(t, resp)
	if card.Title != "You may like this item as well!" {
		t.Errorf("unexpected card title: %q", card.Title)
	}
	if len(card.Buttons) != 2 || card.Buttons[0].Value != "yes" || card.Buttons[1].Value != "no" {
		t.Errorf("unexpected card buttons: %+v", card.Buttons)
	}

	attrs := resp.SessionState.SessionAttributes
	if attrs[attrStashedURL] == "" || attrs[attrStashedOrderNumber] != "1000" {
		t.Errorf("upsell stash missing: %+v", attrs)
	}

	// Replay with the suggestion answered: no second write.
	resp = fx.engine.HandleTurn(ctx, turnEvent(IntentOrderItem,
		map[string]string{SlotSuggestionResponse: "no"}, attrs))

	if fx.repo.putCalls != 1 {
		t.Errorf("replay created a second order: %d writes", fx.repo.putCalls)
	}
	if resp.SessionState.Intent.State != string(StateFulfilled) {
		t.Errorf("expected Fulfilled, got %s", resp.SessionState.Intent.State)
	}
}

func TestOrderItemProceedsWhenNotificationFails(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	fx.dispatcher.ok = false

	resp := fx.engine.HandleTurn(context.Background(),
		turnEvent(IntentOrderItem, completeOrderSlots(), nil))

	if fx.repo.putCalls != 1 {
		t.Errorf("expected order write despite mail failure, got %d", fx.repo.putCalls)
	}
	if resp.SessionState.DialogAction.SlotToElicit != SlotSuggestionResponse {
		t.Errorf("flow must continue past mail failure, got %+v", resp.SessionState.DialogAction)
	}
}

func TestOrderItemSuggestionYesClosesWithLinkCard(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	ctx := context.Background()

	resp := fx.engine.HandleTurn(ctx, turnEvent(IntentOrderItem, completeOrderSlots(), nil))
	attrs := resp.SessionState.SessionAttributes

	resp = fx.engine.HandleTurn(ctx, turnEvent(IntentOrderItem,
		map[string]string{SlotSuggestionResponse: `"Yes"`}, attrs))

	if resp.SessionState.Intent.State != string(StateFulfilled) {
		t.Fatalf("expected Fulfilled, got %s", resp.SessionState.Intent.State)
	}
	card := firstCard(t, resp)
	if card.Title != "Check Out This Item!" {
		t.Errorf("unexpected card title: %q", card.Title)
	}
	if !strings.Contains(card.Subtitle, "docking station") {
		t.Errorf("expected laptop accessory in subtitle, got %q", card.Subtitle)
	}
	if len(card.Buttons) != 1 || card.Buttons[0].Value != "https://shorturl.at/cIPgM" {
		t.Errorf("unexpected link button: %+v", card.Buttons)
	}
	// Card-only close: no plain text message.
	for _, m := range resp.Messages {
		if m.ContentType == ContentPlainText {
			t.Errorf("expected card-only response, got text %q", m.Content)
		}
	}
}

func TestOrderItemSuggestionYesRecomputesLostURL(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	ctx := context.Background()

	resp := fx.engine.HandleTurn(ctx, turnEvent(IntentOrderItem, completeOrderSlots(), nil))
	attrs := resp.SessionState.SessionAttributes
	delete(attrs, attrStashedURL)

	resp = fx.engine.HandleTurn(ctx, turnEvent(IntentOrderItem,
		map[string]string{SlotSuggestionResponse: "yes"}, attrs))

	card := firstCard(t, resp)
	if card.Buttons[0].Value != "https://shorturl.at/cIPgM" {
		t.Errorf("expected URL recomputed from product category, got %q", card.Buttons[0].Value)
	}
}

func TestOrderItemSuggestionUnrecognizedAnswerStillFulfills(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	ctx := context.Background()

	resp := fx.engine.HandleTurn(ctx, turnEvent(IntentOrderItem, completeOrderSlots(), nil))
	resp = fx.engine.HandleTurn(ctx, turnEvent(IntentOrderItem,
		map[string]string{SlotSuggestionResponse: "maybe"}, resp.SessionState.SessionAttributes))

	if resp.SessionState.Intent.State != string(StateFulfilled) {
		t.Errorf("expected Fulfilled, got %s", resp.SessionState.Intent.State)
	}
	if got := firstText(t, resp); !strings.Contains(got, "didn't understand") {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestOrderItemSuggestionClosePurgesOrderingMemory(t *testing.T) {
	t.Parallel()
	fx := newFixture()
	ctx := context.Background()

	resp := fx.engine.HandleTurn(ctx, turnEvent(IntentOrderItem, completeOrderSlots(), nil))
	resp = fx.engine.HandleTurn(ctx, turnEvent(IntentOrderItem,
		map[string]string{SlotSuggestionResponse: "no"}, resp.SessionState.SessionAttributes))

	attrs := resp.SessionState.SessionAttributes
	for _, key := range orderingAttributes {
		if _, present := attrs[key]; present {
			t.Errorf("ordering key %s not purged from slot memory", key)
		}
	}
}

func TestOrderItemStoreFailuresCloseFailed(t *testing.T) {
	t.Parallel()

	t.Run("counter failure", func(t *testing.T) {
		t.Parallel()
		fx := newFixture()
		fx.repo.failNext = true
		resp := fx.engine.HandleTurn(context.Background(),
			turnEvent(IntentOrderItem, completeOrderSlots(), nil))
		if resp.SessionState.Intent.State != string(StateFailed) {
			t.Errorf("expected Failed, got %s", resp.SessionState.Intent.State)
		}
	})

	t.Run("write failure", func(t *testing.T) {
		t.Parallel()
		fx := newFixture()
		fx.repo.failPut = true
		resp := fx.engine.HandleTurn(context.Background(),
			turnEvent(IntentOrderItem, completeOrderSlots(), nil))
		if resp.SessionState.Intent.State != string(StateFailed) {
			t.Errorf("expected Failed, got %s", resp.SessionState.Intent.State)
		}
		if fx.dispatcher.calls != 0 {
			t.Errorf("no confirmation may go out for an unpersisted order, got %d", fx.dispatcher.calls)
		}
	})
}
