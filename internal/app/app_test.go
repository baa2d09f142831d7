package app

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/standup-assistant/internal/infrastructure/external/livekit"
	"github.com/johnquangdev/standup-assistant/pkg/config"
)

// unreachable backends make Build fail if it tries to contact them
func unreachableConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Redis.Host = "127.0.0.1"
	cfg.Redis.Port = "1"
	cfg.Storage.Endpoint = "127.0.0.1:1"
	cfg.Storage.BucketName = "standups"
	return cfg
}

func TestBuild_DryRunStaysLocal(t *testing.T) {
	a, err := Build(context.Background(), unreachableConfig(), nil, nil, Options{
		Script: livekit.Script{"Alice": {"All good"}},
		DryRun: true,
	})
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.Orchestrator)

	callID := uuid.New()
	require.True(t, a.State.Put(context.Background(), callID, "phase", "greeting"))
	var phase string
	assert.True(t, a.State.Get(context.Background(), callID, "phase", &phase))
	assert.Equal(t, "greeting", phase)
}

func TestBuild_RealRunNeedsRedis(t *testing.T) {
	_, err := Build(context.Background(), unreachableConfig(), nil, nil, Options{
		Script: livekit.Script{},
	})
	assert.Error(t, err)
}
