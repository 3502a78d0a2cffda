// Package dialog implements the per-turn fulfillment engine: slot memory,
// intent routing, the fulfillment state machines, and response building.
package dialog

import "encoding/json"

// Slot is one recognized slot in the incoming turn. A nil Value means the
// slot name was present but the front-end could not resolve a value for it.
type Slot struct {
	Value *SlotValue `json:"value,omitempty"`
}

// SlotValue carries the front-end's interpretation of the user's words.
type SlotValue struct {
	InterpretedValue string `json:"interpretedValue"`
}

// Intent is the classified goal of the current turn.
type Intent struct {
	Name  string          `json:"name"`
	State string          `json:"state,omitempty"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

// SessionState is the front-end's per-conversation state container.
type SessionState struct {
	Intent            Intent            `json:"intent"`
	SessionAttributes map[string]string `json:"sessionAttributes,omitempty"`
}

// TurnEvent is one invocation of the engine. Raw preserves the undecoded
// event body for verbatim pass-through to the FAQ delegate.
type TurnEvent struct {
	SessionID    string       `json:"sessionId"`
	SessionState SessionState `json:"sessionState"`

	Raw json.RawMessage `json:"-"`
}

// DialogAction tells the front-end what to do next.
type DialogAction struct {
	Type         string `json:"type"`
	SlotToElicit string `json:"slotToElicit,omitempty"`
}

// Dialog action types understood by the front-end.
const (
	ActionElicitSlot = "ElicitSlot"
	ActionClose      = "Close"
)

// ResponseSessionState echoes conversation state back to the front-end.
type ResponseSessionState struct {
	DialogAction      DialogAction      `json:"dialogAction"`
	Intent            Intent            `json:"intent"`
	SessionAttributes map[string]string `json:"sessionAttributes"`
}

// ResponseMessage is one message shown to the user; either plain text or an
// image response card.
type ResponseMessage struct {
	ContentType       string       `json:"contentType"`
	Content           string       `json:"content,omitempty"`
	ImageResponseCard *CardPayload `json:"imageResponseCard,omitempty"`
}

// Message content types.
const (
	ContentPlainText = "PlainText"
	ContentImageCard = "ImageResponseCard"
)

// CardPayload is the wire shape of a recommendation card.
type CardPayload struct {
	Title    string       `json:"title,omitempty"`
	Subtitle string       `json:"subtitle"`
	Buttons  []CardButton `json:"buttons"`
}

// CardButton is one tappable button on a card. Value is what the front-end
// submits as the user's answer when tapped.
type CardButton struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// TurnResponse is the engine's answer for one turn.
type TurnResponse struct {
	SessionState ResponseSessionState `json:"sessionState"`
	Messages     []ResponseMessage    `json:"messages"`
}
