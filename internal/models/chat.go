package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// RiskLevel is the urgency tier attached to an answer.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Rank orders risk levels; unknown values rank as low.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the three known tiers.
func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// ChatSession is one conversation owned by a single user.
type ChatSession struct {
	ID        string    `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Messages  []Message `json:"messages" db:"messages"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Message is a single turn in a chat.
type Message struct {
	Role               Role                `json:"role"`
	Content            string              `json:"content"`
	Timestamp          time.Time           `json:"timestamp"`
	StructuredResponse *StructuredResponse `json:"structured_response,omitempty"`
}

// StructuredResponse is the fixed-shape answer every chat turn produces.
type StructuredResponse struct {
	DirectAnswer       string    `json:"direct_answer"`
	NextSteps          []string  `json:"next_steps"`
	SourcesUsed        []Source  `json:"sources_used"`
	RiskLevel          RiskLevel `json:"risk_level"`
	AdvisorNeeded      bool      `json:"advisor_needed"`
	ClarifyingQuestion *string   `json:"clarifying_question"`
}

// Source references a vault policy used in an answer.
type Source struct {
	ReferenceID string `json:"vault_id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
}
