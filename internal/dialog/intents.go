package dialog

import "strings"

// Intent names in the front-end's closed dispatch set.
const (
	IntentOrderItem   = "OrderHPItemIntent"
	IntentChangeOrder = "ChangeOrderIntent"
	IntentGreetings   = "GreetingsIntent"
	IntentFAQ         = "FAQIntent"
	IntentFallback    = "FallbackIntent"
	IntentUnknown     = "UnknownIntent"
)

// Slot names used across the fulfillment flows.
const (
	SlotProducts           = "Products"
	SlotProductName        = "ProductName"
	SlotProductNumber      = "ProductNumber"
	SlotName               = "Name"
	SlotShippingAddress    = "ShippingAddress"
	SlotEmail              = "Email"
	SlotPaymentMethod      = "PaymentMethod"
	SlotCardNumber         = "CardNumber"
	SlotExpirationDate     = "ExpirationDate"
	SlotCVV                = "CVV"
	SlotSuggestionResponse = "SuggestionResponse"
	SlotOrderNumber        = "OrderNumber"
	SlotActionType         = "ActionType"
)

// attrStashedURL and attrStashedOrderNumber stash upsell state in slot
// memory between the order turn and the suggestion turn.
const (
	attrStashedURL         = "SuggestedURL"
	attrStashedOrderNumber = "orderNumber"
)

// Order-modification actions, after normalization.
const (
	actionUpdateShipping = "update_shipping_address"
	actionCancel         = "cancel"
	actionUpdatePayment  = "update_payment"
)

// slotPrompt pairs a required slot with its elicitation prompt.
type slotPrompt struct {
	name   string
	prompt string
}

// intentSpec declares, per intent, the ordered required slots with their
// prompts and the full set of slot names the intent may echo back to the
// front-end. Both the state machines and the response builder consume this
// table, so prompts and allow-lists cannot drift apart.
type intentSpec struct {
	name          string
	requiredSlots []slotPrompt
	validSlots    map[string]bool
}

// cardSlots is the sequential card-detail sub-flow shared by the online
// payment branch of both order flows.
var cardSlots = []slotPrompt{
	{SlotCardNumber, "Please provide your credit card number to complete the payment."},
	{SlotExpirationDate, "Please provide the expiration date of your card in MM/YY format (e.g., 12/25)."},
	{SlotCVV, "Please provide the CVV code of your card (3 digits for most cards, 4 digits for American Express)."},
}

var orderItemSpec = intentSpec{
	name: IntentOrderItem,
	requiredSlots: []slotPrompt{
		{SlotProducts, "What type of product would you like to buy ?"},
		{SlotProductName, "What is the product name ?"},
		{SlotProductNumber, "What is the model number ?"},
		{SlotName, "Please provide your full name"},
		{SlotShippingAddress, "Please provide your shipping address."},
		{SlotEmail, "Please provide your email address."},
		{SlotPaymentMethod, "How would you like to pay ? You can choose between cash on delivery or online payment with a card."},
	},
	validSlots: slotSet(
		SlotProducts, SlotProductName, SlotProductNumber, SlotName,
		SlotShippingAddress, SlotEmail, SlotPaymentMethod,
		SlotCardNumber, SlotExpirationDate, SlotCVV, SlotSuggestionResponse,
	),
}

var changeOrderSpec = intentSpec{
	name: IntentChangeOrder,
	requiredSlots: []slotPrompt{
		{SlotOrderNumber, "Please provide your order number."},
		{SlotActionType, "How can I help you with your order ?"},
	},
	validSlots: slotSet(
		SlotOrderNumber, SlotActionType, SlotShippingAddress,
		SlotCardNumber, SlotExpirationDate, SlotCVV,
	),
}

// intentSpecs indexes the declarative table by intent name. Intents without
// slots (greeting, FAQ, fallback) have no entry and echo no slots back.
var intentSpecs = map[string]intentSpec{
	IntentOrderItem:   orderItemSpec,
	IntentChangeOrder: changeOrderSpec,
}

// prompt returns the elicitation prompt for one of the intent's slots.
func (s intentSpec) prompt(slot string) string {
	for _, sp := range s.requiredSlots {
		if sp.name == slot {
			return sp.prompt
		}
	}
	return ""
}

func slotSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// normalizeAction canonicalizes an order-modification action token. The
// front-end has produced both "update shipping address" and
// "update_shipping_address" for the same action; spaces collapse to
// underscores before matching.
func normalizeAction(action string) string {
	action = strings.ToLower(strings.TrimSpace(action))
	return strings.ReplaceAll(action, " ", "_")
}
