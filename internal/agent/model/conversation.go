package model

import (
	"context"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationMessage is one chat turn as received from the caller.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TripContext is the structured, read-only trip snapshot supplied with a turn.
type TripContext struct {
	DestinationCode string `json:"destinationCode,omitempty"`
	DestinationName string `json:"destinationName,omitempty"`
	OriginCode      string `json:"originCode,omitempty"`
	CheckInDate     string `json:"checkInDate,omitempty"`
	CheckOutDate    string `json:"checkOutDate,omitempty"`
	Rooms           int    `json:"rooms,omitempty"`
	Adults          int    `json:"adults,omitempty"`
	Children        int    `json:"children,omitempty"`
	Currency        string `json:"currency,omitempty"`
}

// TurnRequest is the input of one orchestration call.
type TurnRequest struct {
	Locale   string                `json:"locale"`
	Messages []ConversationMessage `json:"messages"`
	Context  *TripContext          `json:"context,omitempty"`
	UserID   string                `json:"userId,omitempty"`
}

// Trip returns the trip context by value, or the zero value when none was sent.
func (r TurnRequest) Trip() TripContext {
	if r.Context == nil {
		return TripContext{}
	}
	return *r.Context
}

// TurnRecord is everything persisted for one completed turn.
type TurnRecord struct {
	SessionID   string          `json:"sessionId"`
	Locale      string          `json:"locale"`
	UserID      string          `json:"userId,omitempty"`
	UserMessage string          `json:"userMessage,omitempty"`
	Context     *TripContext    `json:"context,omitempty"`
	Reply       AssistantReply  `json:"reply"`
	Model       string          `json:"model"`
	ToolCalls   []ToolCallTrace `json:"toolCalls"`
	PriceAudit  PriceAudit      `json:"priceAudit"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// SessionMessage is one stored message record of a session.
type SessionMessage struct {
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Reply     *AssistantReply `json:"reply,omitempty"`
	Model     string          `json:"model,omitempty"`
	ToolCalls []ToolCallTrace `json:"toolCalls,omitempty"`
	Audit     *PriceAudit     `json:"priceAudit,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type SessionRepository interface {
	// SaveTurn upserts the session summary and appends the turn's message records.
	SaveTurn(ctx context.Context, turn TurnRecord) error

	// LoadMessages returns the stored message records of a session, oldest first.
	LoadMessages(ctx context.Context, sessionID string) ([]SessionMessage, error)
}
