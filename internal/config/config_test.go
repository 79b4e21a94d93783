package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "socialnet", cfg.AppName)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, 15*time.Minute, cfg.Auth.JWTExpiry)
	assert.Equal(t, 3, cfg.RateLimit.MaxPendingSentRequests)

	// The Kafka defaults must yield a constructible producer/consumer
	// config: brokers present, protocol non-empty.
	assert.NotEmpty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "plaintext", cfg.Kafka.Protocol)
	assert.NotEmpty(t, cfg.Kafka.FriendEventTopic)
	assert.NotEmpty(t, cfg.Kafka.ConsumerGroup)
}
