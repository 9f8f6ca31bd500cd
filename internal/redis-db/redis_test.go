package redis_db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRedisURLDockerStyle(t *testing.T) {
	opts, err := ParseRedisURL("redis:6379", false)
	assert.NoError(t, err)
	assert.Equal(t, "redis:6379", opts.Addr)
	assert.Empty(t, opts.Password)
}

func TestParseRedisURLWithScheme(t *testing.T) {
	opts, err := ParseRedisURL("redis://localhost:6379/2", false)
	assert.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
}

func TestParseRedisURLWithPassword(t *testing.T) {
	opts, err := ParseRedisURL("redis://s3cret@cache.internal:6380", false)
	assert.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "s3cret", opts.Password)
}

func TestNewRedisClientRequiresAddress(t *testing.T) {
	_, err := NewRedisClient(nil)
	assert.Error(t, err)
}

func TestNewRedisClientSingle(t *testing.T) {
	r, err := NewRedisClient([]string{"localhost:6379"})
	assert.NoError(t, err)
	assert.NotNil(t, r.Client())
	assert.Equal(t, []string{"localhost:6379"}, r.Addresses())
}
