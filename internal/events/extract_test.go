// ABOUTME: Tests for reply extraction from backend event sequences.
// ABOUTME: Covers precedence, tool fallbacks, defensive decoding, and totality.

package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modelTextEvent(id, text string) Event {
	return Event{
		ID: id,
		Content: &Content{
			Role:  "model",
			Parts: []Part{{Text: text}},
		},
	}
}

func TestExtract_LatestModelTextWins(t *testing.T) {
	evs := []Event{
		modelTextEvent("e1", "A"),
		modelTextEvent("e2", "B"),
	}
	assert.Equal(t, "B", Extract(evs))
}

func TestExtract_SkipsNonModelRoles(t *testing.T) {
	evs := []Event{
		modelTextEvent("e1", "model says hi"),
		{
			ID: "e2",
			Content: &Content{
				Role:  "user",
				Parts: []Part{{Text: "user says bye"}},
			},
		},
	}
	assert.Equal(t, "model says hi", Extract(evs))
}

func TestExtract_SkipsWhitespaceOnlyText(t *testing.T) {
	evs := []Event{
		modelTextEvent("e1", "real answer"),
		modelTextEvent("e2", "   \n\t "),
	}
	assert.Equal(t, "real answer", Extract(evs))
}

func TestExtract_TrimsModelText(t *testing.T) {
	evs := []Event{modelTextEvent("e1", "  answer  \n")}
	assert.Equal(t, "answer", Extract(evs))
}

func TestExtract_FunctionCallFallback(t *testing.T) {
	evs := []Event{
		{
			ID: "e1",
			Content: &Content{
				Role: "model",
				Parts: []Part{{
					FunctionCall: &FunctionCall{Name: "lookup", Args: json.RawMessage(`{"q":"x"}`)},
				}},
			},
		},
	}
	assert.Equal(t,
		"I'm processing your request using lookup. Please wait a moment for the response.",
		Extract(evs))
}

func TestExtract_FunctionCallWithoutName(t *testing.T) {
	evs := []Event{
		{
			Content: &Content{
				Parts: []Part{{FunctionCall: &FunctionCall{}}},
			},
		},
	}
	assert.Contains(t, Extract(evs), "unknown function")
}

func TestExtract_FunctionResponseOutput(t *testing.T) {
	evs := []Event{
		{
			Content: &Content{
				Role: "user",
				Parts: []Part{{
					FunctionResponse: &FunctionResponse{Response: json.RawMessage(`{"output":"42"}`)},
				}},
			},
		},
	}
	assert.Equal(t, "42", Extract(evs))
}

func TestExtract_FunctionResponseNonStringOutput(t *testing.T) {
	evs := []Event{
		{
			Content: &Content{
				Parts: []Part{{
					FunctionResponse: &FunctionResponse{Response: json.RawMessage(`{"output":{"temp":72}}`)},
				}},
			},
		},
	}
	assert.Equal(t, `{"temp":72}`, Extract(evs))
}

func TestExtract_FunctionResponseWithoutOutputIsSkipped(t *testing.T) {
	evs := []Event{
		{
			Content: &Content{
				Parts: []Part{{
					FunctionResponse: &FunctionResponse{Response: json.RawMessage(`{"status":"ok"}`)},
				}},
			},
		},
	}
	assert.Equal(t, FallbackReply, Extract(evs))
}

func TestExtract_ModelTextBeatsToolParts(t *testing.T) {
	// Tool activity exists but an earlier model text is still authoritative.
	evs := []Event{
		modelTextEvent("e1", "the answer"),
		{
			Content: &Content{
				Role: "model",
				Parts: []Part{{
					FunctionCall: &FunctionCall{Name: "lookup"},
				}},
			},
		},
	}
	assert.Equal(t, "the answer", Extract(evs))
}

func TestExtract_LatestToolPartWins(t *testing.T) {
	evs := []Event{
		{
			Content: &Content{
				Parts: []Part{{FunctionCall: &FunctionCall{Name: "first"}}},
			},
		},
		{
			Content: &Content{
				Parts: []Part{{FunctionCall: &FunctionCall{Name: "second"}}},
			},
		},
	}
	assert.Contains(t, Extract(evs), "second")
}

func TestExtract_EmptySequence(t *testing.T) {
	assert.Equal(t, FallbackReply, Extract(nil))
	assert.Equal(t, FallbackReply, Extract([]Event{}))
}

func TestExtract_EventsWithoutContent(t *testing.T) {
	evs := []Event{{ID: "e1"}, {ID: "e2"}}
	assert.Equal(t, FallbackReply, Extract(evs))
}

func TestDecode_NotAList(t *testing.T) {
	for _, body := range []string{`{}`, `"text"`, `42`, `not json at all`, ``} {
		_, ok := Decode([]byte(body))
		assert.False(t, ok, "body %q should not decode", body)
	}
}

func TestDecode_DropsNonEventElements(t *testing.T) {
	body := `[42, "stray", {"id":"e1","content":{"role":"model","parts":[{"text":"hi"}]}}]`
	evs, ok := Decode([]byte(body))
	require.True(t, ok)
	require.Len(t, evs, 1)
	assert.Equal(t, "hi", Extract(evs))
}

func TestExtractFromJSON_WellFormed(t *testing.T) {
	body := `[
		{"id":"e1","content":{"role":"model","parts":[{"text":"first"}]}},
		{"id":"e2","content":{"role":"model","parts":[{"text":"second"}]}}
	]`
	reply, count := ExtractFromJSON([]byte(body))
	assert.Equal(t, "second", reply)
	assert.Equal(t, 2, count)
}

func TestExtractFromJSON_Malformed(t *testing.T) {
	reply, count := ExtractFromJSON([]byte(`{"detail":"oops"}`))
	assert.Equal(t, UnexpectedFormatReply, reply)
	assert.Equal(t, 0, count)
}

func TestExtractFromJSON_EmptyList(t *testing.T) {
	reply, count := ExtractFromJSON([]byte(`[]`))
	assert.Equal(t, FallbackReply, reply)
	assert.Equal(t, 0, count)
}
