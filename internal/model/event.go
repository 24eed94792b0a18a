package model

import "golang.org/x/text/unicode/norm"

// NormalizeID returns the canonical form of an event or gate identity.
// Identities are compared after NFC normalization so that visually
// identical ids from different input encodings collide instead of
// silently naming distinct events.
func NormalizeID(id string) string {
	return norm.NFC.String(id)
}

// BasicEvent is an atomic failure with a probability expression.
//
// The probability is resolved to a scalar at Freeze and never mutated
// afterwards.
type BasicEvent struct {
	id   string
	expr Expression
	p    float64 // Resolved at Freeze.
}

// NewBasicEvent creates a basic event with the given probability expression.
func NewBasicEvent(id string, expr Expression) *BasicEvent {
	return &BasicEvent{id: NormalizeID(id), expr: expr}
}

// ID returns the canonical identity of the event.
func (b *BasicEvent) ID() string { return b.id }

// Probability returns the frozen probability.
// Zero before Freeze resolves the expression.
func (b *BasicEvent) Probability() float64 { return b.p }

// HouseEvent is a boolean constant used for structural configuration.
//
// Semantically a house event is a basic event pinned to 0 or 1; it is kept
// as its own type because constant propagation prunes it structurally
// instead of numerically.
type HouseEvent struct {
	id    string
	state bool
}

// NewHouseEvent creates a house event with the given constant state.
func NewHouseEvent(id string, state bool) *HouseEvent {
	return &HouseEvent{id: NormalizeID(id), state: state}
}

// ID returns the canonical identity of the event.
func (h *HouseEvent) ID() string { return h.id }

// State returns the constant boolean state.
func (h *HouseEvent) State() bool { return h.state }
