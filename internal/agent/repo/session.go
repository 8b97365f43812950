package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tanpawarit/tripcomposer/internal/agent/model"
	errx "github.com/tanpawarit/tripcomposer/internal/core/error"
	logx "github.com/tanpawarit/tripcomposer/pkg/logger"
)

type RedisSessionRepository struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisSessionRepository(rdb redis.Cmdable, prefix string, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisSessionRepository) sessionKey(sessionID string) string {
	return fmt.Sprintf("%s:session:%s", r.prefix, sessionID)
}

func (r *RedisSessionRepository) messagesKey(sessionID string) string {
	return fmt.Sprintf("%s:session:%s:messages", r.prefix, sessionID)
}

// SaveTurn upserts the session summary and appends the user and assistant records in one
// MULTI/EXEC, refreshing the TTL of both keys.
func (r *RedisSessionRepository) SaveTurn(ctx context.Context, turn model.TurnRecord) error {
	if turn.SessionID == "" {
		return errors.New("session id is required")
	}
	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	rows, err := turnRows(turn, createdAt)
	if err != nil {
		logx.Error().Err(err).Str("sessionID", turn.SessionID).Msg("failed to marshal session messages")
		return err
	}

	summary := map[string]any{
		"session_id":   turn.SessionID,
		"locale":       turn.Locale,
		"user_id":      turn.UserID,
		"stage":        string(turn.Reply.Stage),
		"model":        turn.Model,
		"options":      len(turn.Reply.PackageOptions),
		"audit_status": string(turn.PriceAudit.Status),
		"updated_at":   createdAt.Format(time.RFC3339),
	}
	if turn.Context != nil {
		b, err := json.Marshal(turn.Context)
		if err != nil {
			return fmt.Errorf("marshal trip context: %w", err)
		}
		summary["context"] = string(b)
	}

	sKey, mKey := r.sessionKey(turn.SessionID), r.messagesKey(turn.SessionID)
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, sKey, "created_at", createdAt.Format(time.RFC3339))
		pipe.HSet(ctx, sKey, summary)
		pipe.HIncrBy(ctx, sKey, "turns", 1)
		pipe.RPush(ctx, mKey, rows...)
		// extend TTL on touch
		if r.ttl > 0 {
			pipe.Expire(ctx, sKey, r.ttl)
			pipe.Expire(ctx, mKey, r.ttl)
		}
		return nil
	})
	if err != nil {
		logx.Error().Err(err).Str("key", sKey).Msg("failed to save turn to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func turnRows(turn model.TurnRecord, at time.Time) ([]any, error) {
	records := make([]model.SessionMessage, 0, 2)
	if turn.UserMessage != "" {
		records = append(records, model.SessionMessage{
			Role:      model.RoleUser,
			Content:   turn.UserMessage,
			CreatedAt: at,
		})
	}
	reply := turn.Reply
	audit := turn.PriceAudit
	records = append(records, model.SessionMessage{
		Role:      model.RoleAssistant,
		Content:   reply.Message,
		Reply:     &reply,
		Model:     turn.Model,
		ToolCalls: turn.ToolCalls,
		Audit:     &audit,
		CreatedAt: at,
	})

	rows := make([]any, 0, len(records))
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshal %s message: %w", rec.Role, err)
		}
		rows = append(rows, b)
	}
	return rows, nil
}

func (r *RedisSessionRepository) LoadMessages(ctx context.Context, sessionID string) ([]model.SessionMessage, error) {
	key := r.messagesKey(sessionID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.SessionMessage{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session messages from redis")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]model.SessionMessage, 0, len(rows))
	for i, s := range rows {
		var m model.SessionMessage
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			logx.Error().Err(err).Str("sessionID", sessionID).Int("index", i).Msg("failed to unmarshal session message")
			return nil, fmt.Errorf("unmarshal message at index %d: %w", i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// ClearSession removes the summary and message log of a session.
func (r *RedisSessionRepository) ClearSession(ctx context.Context, sessionID string) error {
	if err := r.rdb.Del(ctx, r.sessionKey(sessionID), r.messagesKey(sessionID)).Err(); err != nil {
		logx.Error().Err(err).Str("sessionID", sessionID).Msg("failed to delete session from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.SessionRepository = (*RedisSessionRepository)(nil)
