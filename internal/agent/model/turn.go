package model

import (
	"context"
	"time"
)

// TurnResult is the output of one orchestration call.
type TurnResult struct {
	Reply AssistantReply `json:"reply"`
	Meta  TurnMeta       `json:"meta"`
}

type TurnMeta struct {
	Model      string          `json:"model"`
	ToolCalls  []ToolCallTrace `json:"toolCalls"`
	PriceAudit PriceAudit      `json:"priceAudit"`
	Rounds     int             `json:"rounds"`
	Exhausted  bool            `json:"exhausted"`
	Usage      Usage           `json:"usage"`
}

type ToolCallTrace struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	Round      int    `json:"round"`
	DurationMS int64  `json:"durationMs"`
}

type Usage struct {
	PromptTokens     int     `json:"promptTokens"`
	CompletionTokens int     `json:"completionTokens"`
	TotalTokens      int     `json:"totalTokens"`
	CostUSD          float64 `json:"costUsd"`
}

type ProgressKind string

const (
	ProgressModelRound ProgressKind = "model_round_start"
	ProgressToolCall   ProgressKind = "tool_call"
	ProgressToolResult ProgressKind = "tool_result"
	ProgressFinalizing ProgressKind = "finalizing"
)

type ProgressEvent struct {
	Kind       ProgressKind `json:"kind"`
	Round      int          `json:"round"`
	ToolName   string       `json:"toolName,omitempty"`
	ToolCallID string       `json:"toolCallId,omitempty"`
	OK         bool         `json:"ok,omitempty"`
	At         time.Time    `json:"at"`
}

// ProgressFunc observes the orchestration loop. A non-nil error aborts the turn.
type ProgressFunc func(ctx context.Context, ev ProgressEvent) error
