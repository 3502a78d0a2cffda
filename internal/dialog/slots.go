package dialog

import "strings"

// ResolveSlot returns the current value of a slot, overlaying the current
// turn's recognition onto values remembered from prior turns.
//
// A value recognized this turn wins: surrounding quotes are stripped and the
// value is written into remembered so it carries forward. Otherwise a
// previously remembered value is returned unchanged. Absence is a normal
// outcome and drives elicitation, not an error.
func ResolveSlot(name string, slots map[string]Slot, remembered map[string]string) (string, bool) {
	if slot, ok := slots[name]; ok && slot.Value != nil {
		value := stripQuotes(slot.Value.InterpretedValue)
		remembered[name] = value
		return value, true
	}

	if value, ok := remembered[name]; ok {
		return value, true
	}

	return "", false
}

// rememberRecognizedSlots overlays every slot recognized this turn into the
// remembered map, so carry-forward state is complete even for slots the
// active state machine has not asked about yet.
func rememberRecognizedSlots(slots map[string]Slot, remembered map[string]string) {
	for name := range slots {
		if value, ok := ResolveSlot(name, slots, remembered); ok && value != "" {
			remembered[name] = value
		}
	}
}

func stripQuotes(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
