// ABOUTME: Derives the single user-facing reply from a backend event sequence.
// ABOUTME: Two-pass precedence: latest model text first, then tool activity, then a fixed fallback.

package events

import (
	"fmt"
	"strings"
)

// Fixed replies surfaced when no model text can be extracted. Extraction is
// total: the user always sees one of these rather than an error or a blank.
const (
	// UnexpectedFormatReply is returned when the backend body is not an
	// event sequence at all.
	UnexpectedFormatReply = "I'm sorry, I received an unexpected response format."

	// FallbackReply is returned when the sequence contains nothing usable.
	FallbackReply = "I'm sorry, I'm having trouble processing your request right now. Please try rephrasing your question."
)

// Extract derives the reply to show the user from an event sequence.
//
// Pass 1 scans from most recent to oldest for a model-role event carrying
// non-empty text; that text is authoritative when present. Pass 2, reached
// only when no model text exists, scans again over parts of any role and
// surfaces in-flight tool activity: a functionCall yields an in-progress
// message naming the function, a functionResponse with an output field
// yields that output. If neither pass finds anything, a fixed fallback is
// returned. Extract never fails.
func Extract(evs []Event) string {
	for i := len(evs) - 1; i >= 0; i-- {
		content := evs[i].Content
		if content == nil || content.Role != "model" {
			continue
		}
		for _, part := range content.Parts {
			if text := strings.TrimSpace(part.Text); text != "" {
				return text
			}
		}
	}

	for i := len(evs) - 1; i >= 0; i-- {
		content := evs[i].Content
		if content == nil {
			continue
		}
		for _, part := range content.Parts {
			if part.FunctionCall != nil {
				name := part.FunctionCall.Name
				if name == "" {
					name = "unknown function"
				}
				return fmt.Sprintf("I'm processing your request using %s. Please wait a moment for the response.", name)
			}
			if output, ok := part.FunctionResponse.Output(); ok {
				return output
			}
		}
	}

	return FallbackReply
}

// ExtractFromJSON decodes a raw run response body and extracts the reply.
// It also reports the number of decoded events for response metadata.
// Like Extract, it is total: a body that is not an event sequence yields
// the fixed unexpected-format reply and a zero count.
func ExtractFromJSON(data []byte) (reply string, count int) {
	evs, ok := Decode(data)
	if !ok {
		return UnexpectedFormatReply, 0
	}
	return Extract(evs), len(evs)
}
