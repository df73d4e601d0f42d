// ABOUTME: Event and part types emitted by the agent backend's run endpoint.
// ABOUTME: Decodes the loosely-typed backend payload defensively into tagged variants.

package events

import (
	"encoding/json"
)

// Event is one turn/step record from the backend's run response. Every field
// is optional; the backend's shapes are loose and must never be assumed.
type Event struct {
	ID      string   `json:"id"`
	Content *Content `json:"content"`
}

// Content carries the role and ordered parts of an event.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is a variant over the recognized content fragment shapes. A part with
// none of the fields set is an unrecognized shape and is skipped during
// extraction.
type Part struct {
	Text             string            `json:"text"`
	FunctionCall     *FunctionCall     `json:"functionCall"`
	FunctionResponse *FunctionResponse `json:"functionResponse"`
}

// FunctionCall is a tool invocation requested by the model.
type FunctionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// FunctionResponse is a tool result fed back to the model. Response is kept
// raw because its shape is tool-defined.
type FunctionResponse struct {
	Response json.RawMessage `json:"response"`
}

// Output returns the "output" field of the response payload, if present.
// String values come back verbatim; anything else is re-encoded as compact
// JSON so the caller always gets a displayable string.
func (fr *FunctionResponse) Output() (string, bool) {
	if fr == nil || len(fr.Response) == 0 {
		return "", false
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(fr.Response, &resp); err != nil {
		return "", false
	}

	raw, ok := resp["output"]
	if !ok {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return string(raw), true
}

// Decode parses the run response body into an event sequence. The second
// return is false when the body is not a JSON list at all. Elements that are
// not event-shaped objects are dropped rather than failing the whole
// sequence, matching the backend's best-effort contract.
func Decode(data []byte) ([]Event, bool) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}

	evs := make([]Event, 0, len(raw))
	for _, item := range raw {
		var ev Event
		if err := json.Unmarshal(item, &ev); err != nil {
			continue
		}
		evs = append(evs, ev)
	}
	return evs, true
}
