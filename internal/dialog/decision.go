package dialog

// State is the fulfillment state reported with a decision. Fulfilled and
// Failed are terminal; InProgress implies another turn is expected.
type State string

const (
	StateInProgress State = "InProgress"
	StateFulfilled  State = "Fulfilled"
	StateFailed     State = "Failed"
)

// Card is a recommendation card attached to a decision.
type Card struct {
	Title    string
	Subtitle string
	Buttons  []CardButton
}

// Decision is the outcome of a state machine for one turn: either an
// elicitation (SlotToElicit non-empty, State InProgress) or a close. A close
// with an empty Message and a non-nil Card renders as a card-only response.
type Decision struct {
	SlotToElicit string
	State        State
	Message      string
	Card         *Card
}

// elicit asks the user for one more slot value.
func elicit(slot, message string) Decision {
	return Decision{SlotToElicit: slot, State: StateInProgress, Message: message}
}

// elicitWithCard asks for a slot and shows a card alongside the prompt.
func elicitWithCard(slot, message string, card *Card) Decision {
	return Decision{SlotToElicit: slot, State: StateInProgress, Message: message, Card: card}
}

// closeWith ends the intent with a plain message.
func closeWith(state State, message string) Decision {
	return Decision{State: state, Message: message}
}

// closeWithCard ends the intent with a card-only response.
func closeWithCard(state State, card *Card) Decision {
	return Decision{State: state, Card: card}
}
