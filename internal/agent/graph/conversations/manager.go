package conversations

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"

	"github.com/tanpawarit/tripcomposer/internal/agent/model"
	logx "github.com/tanpawarit/tripcomposer/pkg/logger"
)

// MessagesManager shapes chat history for the model and hands finished turns to the session store.
type MessagesManager struct {
	sessionRepo  model.SessionRepository
	historyLimit int
}

func NewMessagesManager(sessionRepo model.SessionRepository, config model.OrchestratorConfig) *MessagesManager {
	limit := config.HistoryLimit
	if limit <= 0 {
		limit = model.DefaultOrchestratorConfig().HistoryLimit
	}
	return &MessagesManager{
		sessionRepo:  sessionRepo,
		historyLimit: limit,
	}
}

// Normalize applies the history rules with the manager's cap.
func (cm *MessagesManager) Normalize(messages []model.ConversationMessage) []model.ConversationMessage {
	return NormalizeHistory(messages, cm.historyLimit)
}

// BuildContext prepends the system prompt to the normalized history.
func (cm *MessagesManager) BuildContext(systemPrompt string, history []model.ConversationMessage) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history)+1)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	for _, m := range history {
		switch m.Role {
		case model.RoleUser:
			messages = append(messages, schema.UserMessage(m.Content))
		case model.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(m.Content, nil))
		}
	}
	return messages
}

// PersistTurn stores the turn; failures are logged and never returned.
func (cm *MessagesManager) PersistTurn(ctx context.Context, record model.TurnRecord) {
	if cm.sessionRepo == nil {
		return
	}
	if record.SessionID == "" {
		logx.Warn().Msg("skip persisting turn without session id")
		return
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if err := cm.sessionRepo.SaveTurn(ctx, record); err != nil {
		logx.Error().Err(err).Str("sessionID", record.SessionID).Msg("failed to persist turn")
	}
}

// LastUserMessage returns the newest user text, or "" when there is none.
func LastUserMessage(history []model.ConversationMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == model.RoleUser {
			return history[i].Content
		}
	}
	return ""
}

// NormalizeHistory keeps trimmed, non-empty user/assistant turns, newest maxTurns only.
func NormalizeHistory(messages []model.ConversationMessage, maxTurns int) []model.ConversationMessage {
	kept := lo.FilterMap(messages, func(m model.ConversationMessage, _ int) (model.ConversationMessage, bool) {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != model.RoleUser && role != model.RoleAssistant {
			return model.ConversationMessage{}, false
		}
		content := strings.TrimSpace(m.Content)
		return model.ConversationMessage{Role: role, Content: content}, content != ""
	})
	return trimTail(kept, maxTurns)
}

func trimTail(messages []model.ConversationMessage, maxTurns int) []model.ConversationMessage {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		return messages
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]model.ConversationMessage, len(source))
	copy(result, source)
	return result
}
