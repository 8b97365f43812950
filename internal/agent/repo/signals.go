package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tanpawarit/tripcomposer/internal/agent/model"
	errx "github.com/tanpawarit/tripcomposer/internal/core/error"
	logx "github.com/tanpawarit/tripcomposer/pkg/logger"
)

// RedisUserSignalStore reads the behavioral summary of a user stored as one JSON document.
type RedisUserSignalStore struct {
	rdb    redis.Cmdable
	prefix string
}

func NewRedisUserSignalStore(rdb redis.Cmdable, prefix string) *RedisUserSignalStore {
	return &RedisUserSignalStore{rdb: rdb, prefix: prefix}
}

func (r *RedisUserSignalStore) signalsKey(userID string) string {
	return fmt.Sprintf("%s:user:%s:signals", r.prefix, userID)
}

// LoadUserSignals returns empty signals for users without a stored document.
func (r *RedisUserSignalStore) LoadUserSignals(ctx context.Context, userID string) (*model.UserSignals, error) {
	key := r.signalsKey(userID)
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return emptySignals(&model.UserSignals{}), nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load user signals from redis")
		return nil, errx.WrapRedis(err)
	}

	var s model.UserSignals
	if err := json.Unmarshal(raw, &s); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to unmarshal user signals")
		return nil, fmt.Errorf("unmarshal user signals: %w", err)
	}
	return emptySignals(&s), nil
}

// SaveUserSignals replaces the stored document; used to seed the demo runner.
func (r *RedisUserSignalStore) SaveUserSignals(ctx context.Context, userID string, s model.UserSignals) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal user signals: %w", err)
	}
	if err := r.rdb.Set(ctx, r.signalsKey(userID), b, 0).Err(); err != nil {
		logx.Error().Err(err).Str("userID", userID).Msg("failed to save user signals")
		return errx.WrapRedis(err)
	}
	return nil
}

func emptySignals(s *model.UserSignals) *model.UserSignals {
	if s.RecentSearches == nil {
		s.RecentSearches = []model.RecentSearch{}
	}
	if s.FavoriteHotels == nil {
		s.FavoriteHotels = []model.FavoriteHotel{}
	}
	if s.RecentBookings == nil {
		s.RecentBookings = []model.RecentBooking{}
	}
	if s.RecentAssistantSessions == nil {
		s.RecentAssistantSessions = []model.AssistantSession{}
	}
	return s
}

var _ model.UserSignalLoader = (*RedisUserSignalStore)(nil)
