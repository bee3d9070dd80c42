// Package event defines the four broadcast event kinds and the envelope that
// crosses the websocket. Every payload rides as pre-marshalled JSON so the hub
// can fan the same bytes out to every subscriber of a scope.
package event

import (
	"encoding/json"
	"fmt"
)

type Kind string

const (
	ResourceCreated Kind = "resourceCreated"
	ResourceDeleted Kind = "resourceDeleted"
	MessageSent     Kind = "messageSent"
	ReviewCreated   Kind = "reviewCreated"
)

// Scope names. A connection subscribes to one or more scopes; publishes are
// delivered only to subscribers of the matching scope.
const (
	ScopeVenues    = "venues"
	ScopeOperators = "operators"
)

func ReviewScope(venueID string) string { return "reviews:" + venueID }

func MessageScope(userID string) string { return "messages:" + userID }

type Envelope struct {
	Kind    Kind            `json:"kind"`
	Scope   string          `json:"scope"`
	Payload json.RawMessage `json:"payload"`
}

func New(kind Kind, scope string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}
	return Envelope{Kind: kind, Scope: scope, Payload: raw}, nil
}
