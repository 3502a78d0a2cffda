package dialog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rihemtrigui/Customer-Support-Bot/internal/domain"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/payment"
)

// handleChangeOrder runs the order-modification flow: locate the order,
// determine the requested action, then complete it. Every gate re-runs each
// turn against slot memory, so the machine itself stays stateless.
func (e *Engine) handleChangeOrder(ctx context.Context, slots map[string]Slot, remembered map[string]string) Decision {
	spec := changeOrderSpec

	orderNumberText, ok := ResolveSlot(SlotOrderNumber, slots, remembered)
	if !ok || orderNumberText == "" {
		return elicit(SlotOrderNumber, spec.prompt(SlotOrderNumber))
	}

	orderNumber, err := strconv.Atoi(orderNumberText)
	if err != nil {
		return elicit(SlotOrderNumber, "Invalid order number format. Please provide a valid order number.")
	}
	if orderNumber <= 0 {
		return elicit(SlotOrderNumber, "Order number must be a positive integer. Please provide a valid order number.")
	}

	order, err := e.repo.GetOrder(ctx, orderNumber)
	if err != nil {
		e.logger.Error("order lookup failed", "order_number", orderNumber, "error", err)
		return closeWith(StateFailed, genericFailureMessage)
	}
	if order == nil {
		return closeWith(StateFailed,
			fmt.Sprintf("Order number %d does not exist. Please check and try again.", orderNumber))
	}

	action, ok := ResolveSlot(SlotActionType, slots, remembered)
	if !ok || action == "" {
		return elicit(SlotActionType, spec.prompt(SlotActionType))
	}

	switch normalizeAction(action) {
	case actionUpdateShipping:
		return e.changeShippingAddress(ctx, orderNumber, slots, remembered)
	case actionCancel:
		return e.cancelOrder(ctx, orderNumber)
	case actionUpdatePayment:
		return e.payExistingOrder(ctx, order, slots, remembered)
	default:
		// Unrecognized action values count as not-yet-resolved.
		return elicit(SlotActionType, spec.prompt(SlotActionType))
	}
}

func (e *Engine) changeShippingAddress(ctx context.Context, orderNumber int, slots map[string]Slot, remembered map[string]string) Decision {
	address, ok := ResolveSlot(SlotShippingAddress, slots, remembered)
	if !ok || address == "" {
		return elicit(SlotShippingAddress, "Please provide the new shipping address.")
	}

	if err := e.repo.UpdateShippingAddress(ctx, orderNumber, address); err != nil {
		e.logger.Error("shipping address update failed", "order_number", orderNumber, "error", err)
		return closeWith(StateFailed, genericFailureMessage)
	}

	return closeWith(StateFulfilled,
		fmt.Sprintf("The shipping address for order %d has been successfully updated to %s.", orderNumber, address))
}

func (e *Engine) cancelOrder(ctx context.Context, orderNumber int) Decision {
	if err := e.repo.DeleteOrder(ctx, orderNumber); err != nil {
		e.logger.Error("order cancellation failed", "order_number", orderNumber, "error", err)
		return closeWith(StateFailed, genericFailureMessage)
	}

	return closeWith(StateFulfilled,
		fmt.Sprintf("Order number %d has been successfully deleted.", orderNumber))
}

// payExistingOrder settles a cash-on-delivery order with a card. Orders
// already paid online close as an idempotent no-op; any other stored payment
// method is a data inconsistency the user cannot repair in this flow.
func (e *Engine) payExistingOrder(ctx context.Context, order *domain.Order, slots map[string]Slot, remembered map[string]string) Decision {
	switch {
	case order.PaidOnline():
		return closeWith(StateFulfilled,
			fmt.Sprintf("The order with number %d has already been paid online.", order.OrderNumber))

	case order.PaidCash():
		cardNumber, _, _, pending := e.collectCardDetails(slots, remembered)
		if pending != nil {
			return *pending
		}
		if invalid := e.validateCard(ctx, remembered); invalid != nil {
			return *invalid
		}

		if err := e.repo.UpdatePaymentMethod(ctx, order.OrderNumber, domain.PaymentOnline); err != nil {
			e.logger.Error("payment method update failed",
				"order_number", order.OrderNumber, "card_prefix", safePrefix(cardNumber), "error", err)
			return closeWith(StateFailed, genericFailureMessage)
		}
		return closeWith(StateFulfilled, "Your order has been paid successfully.")

	default:
		e.logger.Error("stored order has unknown payment method",
			"order_number", order.OrderNumber, "payment_method", order.PaymentMethod)
		return closeWith(StateFailed,
			fmt.Sprintf("Unknown payment method for order %d. Please contact support.", order.OrderNumber))
	}
}

// collectCardDetails walks the card sub-flow in order. When a detail is
// missing it returns the elicitation to send; otherwise all three values.
func (e *Engine) collectCardDetails(slots map[string]Slot, remembered map[string]string) (cardNumber, expirationDate, cvv string, pending *Decision) {
	values := make([]string, len(cardSlots))
	for i, sp := range cardSlots {
		value, ok := ResolveSlot(sp.name, slots, remembered)
		if !ok || value == "" {
			d := elicit(sp.name, sp.prompt)
			return "", "", "", &d
		}
		values[i] = value
	}
	return values[0], values[1], values[2], nil
}

// validateCard runs the validation gate once all card details are present.
// On failure only the CVV is re-elicited; the other card fields stay in slot
// memory so the user does not repeat them.
func (e *Engine) validateCard(ctx context.Context, remembered map[string]string) *Decision {
	cardNumber := remembered[SlotCardNumber]
	cvv := remembered[SlotCVV]

	if e.validator.Validate(ctx, cardNumber, cvv) {
		return nil
	}

	e.logger.Info("card validation failed", "card_prefix", safePrefix(cardNumber))
	delete(remembered, SlotCVV)
	d := elicit(SlotCVV, fmt.Sprintf(
		"Invalid credit card details. Please ensure you're using a valid card number and %s.",
		payment.CVVRequirement(cardNumber)))
	return &d
}

// safePrefix returns the first digits of a card number for log lines.
func safePrefix(cardNumber string) string {
	if len(cardNumber) < 6 {
		return ""
	}
	return cardNumber[:6]
}
