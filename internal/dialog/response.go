package dialog

import "fmt"

// maxButtonValueLength is the front-end's hard limit on card button values.
// Oversized values are an error; they are never truncated silently.
const maxButtonValueLength = 50

// buildResponse renders a decision into the front-end's wire shape. The
// remembered attributes are echoed back in full, but only the slot names
// valid for the active intent are surfaced as intent slots, keeping one
// intent's slot memory from leaking into another's protocol state.
func buildResponse(intentName string, d Decision, remembered map[string]string) (*TurnResponse, error) {
	action := DialogAction{Type: ActionClose}
	spec, hasSpec := intentSpecs[intentName]
	if d.SlotToElicit != "" && hasSpec && spec.validSlots[d.SlotToElicit] {
		action = DialogAction{Type: ActionElicitSlot, SlotToElicit: d.SlotToElicit}
	}

	slots := make(map[string]Slot)
	if hasSpec {
		for name, value := range remembered {
			if spec.validSlots[name] {
				slots[name] = Slot{Value: &SlotValue{InterpretedValue: value}}
			}
		}
	}

	messages, err := buildMessages(d)
	if err != nil {
		return nil, err
	}

	return &TurnResponse{
		SessionState: ResponseSessionState{
			DialogAction: action,
			Intent: Intent{
				Name:  intentName,
				State: string(d.State),
				Slots: slots,
			},
			SessionAttributes: remembered,
		},
		Messages: messages,
	}, nil
}

func buildMessages(d Decision) ([]ResponseMessage, error) {
	var messages []ResponseMessage

	if d.Message != "" {
		messages = append(messages, ResponseMessage{
			ContentType: ContentPlainText,
			Content:     d.Message,
		})
	}

	if d.Card != nil {
		card, err := buildCard(d.Card)
		if err != nil {
			return nil, err
		}
		messages = append(messages, ResponseMessage{
			ContentType:       ContentImageCard,
			ImageResponseCard: card,
		})
	}

	if len(messages) == 0 {
		return nil, fmt.Errorf("decision produced no messages")
	}
	return messages, nil
}

func buildCard(c *Card) (*CardPayload, error) {
	buttons := make([]CardButton, 0, len(c.Buttons))
	for _, b := range c.Buttons {
		if len(b.Value) > maxButtonValueLength {
			return nil, fmt.Errorf("button value exceeds %d characters: %s", maxButtonValueLength, b.Value)
		}
		buttons = append(buttons, b)
	}

	return &CardPayload{
		Title:    c.Title,
		Subtitle: c.Subtitle,
		Buttons:  buttons,
	}, nil
}
