package errx

import (
	"errors"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapRedis(t *testing.T) {
	assert.NoError(t, WrapRedis(nil))

	notFound := WrapRedis(redis.Nil)
	require.Error(t, notFound)
	assert.Equal(t, http.StatusNotFound, StatusOf(notFound))
	assert.ErrorIs(t, notFound, redis.Nil)

	boom := errors.New("connection refused")
	wrapped := WrapRedis(boom)
	assert.Equal(t, http.StatusBadGateway, StatusOf(wrapped))
	assert.ErrorIs(t, wrapped, boom)
	assert.Contains(t, wrapped.Error(), RedisErrorMessage)
}

func TestWrapModel(t *testing.T) {
	joined := errors.Join(ErrModelUnavailable, errors.New("primary: timeout"))
	err := WrapModel(joined)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
}
