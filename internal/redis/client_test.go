package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chocoapi/internal/config"
)

func TestNewClient(t *testing.T) {
	client, err := NewClient("redis://:secret@cache.internal:6380/2")
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "cache.internal:6380", client.Options().Addr)
	assert.Equal(t, "secret", client.Options().Password)
	assert.Equal(t, 2, client.Options().DB)
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("http://localhost:6379")
	assert.ErrorContains(t, err, "parse redis url")
}

func TestConnect_Disabled(t *testing.T) {
	client, err := Connect(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.NoError(t, client.Close())
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), config.RedisConfig{URL: "redis://127.0.0.1:1/0"})
	assert.ErrorContains(t, err, "redis ping")
}
