package dialog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rihemtrigui/Customer-Support-Bot/internal/domain"
)

// lastResortURL is shown when both the stashed URL and the product category
// have vanished from slot memory between the order and suggestion turns.
const lastResortURL = "https://bit.ly/hp-accessories"

// orderingAttributes are the slot-memory keys purged once the ordering flow
// reaches a terminal close, so the next order starts from a clean slate.
var orderingAttributes = []string{
	attrStashedURL, attrStashedOrderNumber,
	SlotProducts, SlotProductName, SlotProductNumber, SlotName,
	SlotShippingAddress, SlotEmail, SlotPaymentMethod,
	SlotCardNumber, SlotExpirationDate, SlotCVV, SlotSuggestionResponse,
}

// handleOrderItem runs the new-item ordering flow: gather the ordering
// slots in priority order, collect card details for online payment, place
// the order exactly once, then offer an accessory suggestion before closing.
func (e *Engine) handleOrderItem(ctx context.Context, slots map[string]Slot, remembered map[string]string) Decision {
	values := make(map[string]string, len(orderItemSpec.requiredSlots))
	for _, sp := range orderItemSpec.requiredSlots {
		value, ok := ResolveSlot(sp.name, slots, remembered)
		if !ok || value == "" {
			return elicit(sp.name, sp.prompt)
		}
		values[sp.name] = value
	}

	if strings.EqualFold(values[SlotPaymentMethod], domain.PaymentOnline) {
		if _, _, _, pending := e.collectCardDetails(slots, remembered); pending != nil {
			return *pending
		}
		if invalid := e.validateCard(ctx, remembered); invalid != nil {
			return *invalid
		}
	}

	// All ordering slots are satisfied. The suggestion slot only exists
	// once this point is reached, so its absence marks the single turn on
	// which the order is placed; replays with it present never write again.
	suggestionResponse, answered := ResolveSlot(SlotSuggestionResponse, slots, remembered)
	if !answered {
		return e.placeOrder(ctx, values, remembered)
	}

	return e.closeSuggestion(suggestionResponse, values[SlotProducts], remembered)
}

// placeOrder persists the order, sends the best-effort confirmation email,
// and elicits the suggestion response with a two-button recommendation card.
func (e *Engine) placeOrder(ctx context.Context, values map[string]string, remembered map[string]string) Decision {
	orderNumber, err := e.repo.NextOrderNumber(ctx)
	if err != nil {
		e.logger.Error("order number assignment failed", "error", err)
		return closeWith(StateFailed, genericFailureMessage)
	}

	order := &domain.Order{
		OrderNumber:     orderNumber,
		ClientName:      values[SlotName],
		ProductType:     values[SlotProducts],
		ProductName:     values[SlotProductName],
		ProductNumber:   values[SlotProductNumber],
		PaymentMethod:   values[SlotPaymentMethod],
		ShippingAddress: values[SlotShippingAddress],
		EmailAddress:    values[SlotEmail],
	}
	if err := e.repo.PutOrder(ctx, order); err != nil {
		e.logger.Error("order persist failed", "order_number", orderNumber, "error", err)
		return closeWith(StateFailed, genericFailureMessage)
	}

	if !e.dispatcher.DispatchOrderConfirmation(ctx, order) {
		// Notification is best-effort; the order still stands.
		e.logger.Warn("order confirmation email not delivered", "order_number", orderNumber)
	}

	suggestion := e.resolver.Suggest(order.ProductType)
	remembered[attrStashedURL] = suggestion.URL
	remembered[SlotProducts] = order.ProductType
	remembered[attrStashedOrderNumber] = strconv.Itoa(orderNumber)

	e.logger.Info("order placed", "order_number", orderNumber, "product_type", order.ProductType)

	return elicitWithCard(SlotSuggestionResponse,
		fmt.Sprintf("Your order has been successfully placed! Your order number is #%d.", orderNumber),
		&Card{
			Title:    "You may like this item as well!",
			Subtitle: suggestion.Description,
			Buttons: []CardButton{
				{Text: "Yes, show me", Value: "yes"},
				{Text: "No, thank you", Value: "no"},
			},
		})
}

// closeSuggestion handles the user's answer to the upsell card and closes
// the flow, purging every ordering key from slot memory on the way out.
func (e *Engine) closeSuggestion(response, productType string, remembered map[string]string) Decision {
	clean := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(response, `"`, "")))

	suggestedURL := remembered[attrStashedURL]
	if suggestedURL == "" {
		// The stash was lost; recompute from the category if we still
		// have it.
		if productType != "" {
			suggestedURL = e.resolver.SuggestedURL(productType)
		} else {
			suggestedURL = lastResortURL
		}
	}
	itemName := e.resolver.ItemName(productType)

	for _, key := range orderingAttributes {
		delete(remembered, key)
	}

	switch clean {
	case "yes":
		return closeWithCard(StateFulfilled, &Card{
			Title:    "Check Out This Item!",
			Subtitle: fmt.Sprintf("Click below to view the %s.", itemName),
			Buttons:  []CardButton{{Text: "View Item", Value: suggestedURL}},
		})
	case "no":
		return closeWith(StateFulfilled, "Okay, no problem. Thank you for your order!")
	default:
		return closeWith(StateFulfilled, "I didn't understand your response. Thank you for your order!")
	}
}
