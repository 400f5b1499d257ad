package models

import (
	"time"

	"smartshopper/internal/assistant/intent"
)

// Role tags who produced an utterance.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Utterance is one chat message, ordered by arrival.
type Utterance struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// ChatSession is the state of one widget-open conversation. It owns the
// accumulated intent and the full ordered utterance history. Sessions are
// replaced, never mutated in place: HandleTurn returns a new value.
type ChatSession struct {
	ID           string        `json:"id"`
	Intent       intent.Intent `json:"intent"`
	Utterances   []Utterance   `json:"utterances"`
	CreatedAt    time.Time     `json:"createdAt"`
	LastActivity time.Time     `json:"lastActivity"`
}

// WithUtterance returns a copy of the session with the utterance appended.
// The receiver's history slice is never shared with the copy.
func (s ChatSession) WithUtterance(role Role, text string, at time.Time) ChatSession {
	history := make([]Utterance, len(s.Utterances), len(s.Utterances)+1)
	copy(history, s.Utterances)
	s.Utterances = append(history, Utterance{Role: role, Text: text, At: at})
	s.LastActivity = at
	return s
}
