package repo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/tanpawarit/tripcomposer/internal/agent/model"
	errx "github.com/tanpawarit/tripcomposer/internal/core/error"
	logx "github.com/tanpawarit/tripcomposer/pkg/logger"
)

const (
	flagsFreshKey = "flags"
	flagsLastKey  = "flags:last"
)

// RedisServiceFlagStore reads the platform service flags from a Redis hash. A fresh
// snapshot is served from memory for cacheTTL; the last good snapshot backs read failures.
type RedisServiceFlagStore struct {
	rdb   redis.Cmdable
	key   string
	cache *cache.Cache
	ttl   time.Duration
}

func NewRedisServiceFlagStore(rdb redis.Cmdable, prefix string, cacheTTL time.Duration) *RedisServiceFlagStore {
	return &RedisServiceFlagStore{
		rdb:   rdb,
		key:   fmt.Sprintf("%s:service_flags", prefix),
		cache: cache.New(cacheTTL, 2*cacheTTL),
		ttl:   cacheTTL,
	}
}

// LoadServiceFlags never fails: on a Redis error it returns the last good snapshot or,
// when there is none, every service enabled.
func (s *RedisServiceFlagStore) LoadServiceFlags(ctx context.Context) (model.ServiceFlags, error) {
	if s.ttl > 0 {
		if v, ok := s.cache.Get(flagsFreshKey); ok {
			return v.(model.ServiceFlags), nil
		}
	}

	fields, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		if v, ok := s.cache.Get(flagsLastKey); ok {
			logx.Warn().Err(errx.WrapRedis(err)).Str("key", s.key).Msg("service flags unavailable, using last snapshot")
			return v.(model.ServiceFlags), nil
		}
		logx.Warn().Err(errx.WrapRedis(err)).Str("key", s.key).Msg("service flags unavailable, assuming all enabled")
		return model.AllServicesEnabled(), nil
	}

	flags := parseFlags(fields)
	if s.ttl > 0 {
		s.cache.Set(flagsFreshKey, flags, cache.DefaultExpiration)
	}
	s.cache.Set(flagsLastKey, flags, cache.NoExpiration)
	return flags, nil
}

// SetServiceFlag writes one flag; used by operators and the demo runner.
func (s *RedisServiceFlagStore) SetServiceFlag(ctx context.Context, service string, enabled bool) error {
	if err := s.rdb.HSet(ctx, s.key, service, strconv.FormatBool(enabled)).Err(); err != nil {
		logx.Error().Err(err).Str("key", s.key).Str("service", service).Msg("failed to set service flag")
		return errx.WrapRedis(err)
	}
	s.cache.Delete(flagsFreshKey)
	return nil
}

func parseFlags(fields map[string]string) model.ServiceFlags {
	flags := model.AllServicesEnabled()
	for _, f := range []struct {
		name string
		dst  *bool
	}{
		{model.ServiceHotel, &flags.Hotel},
		{model.ServiceTransfer, &flags.Transfer},
		{model.ServiceFlight, &flags.Flight},
		{model.ServiceExcursion, &flags.Excursion},
		{model.ServiceInsurance, &flags.Insurance},
	} {
		if raw, ok := fields[f.name]; ok {
			*f.dst = parseFlag(raw)
		}
	}
	return flags
}

// parseFlag treats anything that is not an explicit "off" value as enabled.
func parseFlag(raw string) bool {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "no", "off", "disabled":
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return true
}

var _ model.ServiceFlagLoader = (*RedisServiceFlagStore)(nil)
