package models

import (
	"time"

	"smartshopper/internal/assistant/intent"
)

// Interaction is one recorded question/response exchange, persisted for
// operator analysis. Recording is fire-and-forget: a turn never fails or
// blocks on it.
type Interaction struct {
	ID        string        `json:"id" db:"id"`
	SessionID string        `json:"sessionId" db:"session_id"`
	Question  string        `json:"question" db:"question"`
	Response  string        `json:"response" db:"response"`
	Intent    intent.Intent `json:"intent" db:"intent"`
	FollowUp  string        `json:"followUp,omitempty" db:"follow_up"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
}
