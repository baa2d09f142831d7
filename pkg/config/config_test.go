package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_StandupDefaults(t *testing.T) {
	t.Setenv("LIVEKIT_USE_MOCK", "true")
	t.Setenv("ASSEMBLYAI_USE_MOCK", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.Standup.ResponseTimeout)
	assert.Equal(t, time.Minute, cfg.Standup.SilenceTimeout)
	assert.Equal(t, time.Hour, cfg.Standup.StateTTL)
	assert.Equal(t, 5, cfg.Standup.DefaultAggressiveness)
	assert.Equal(t, "31", cfg.Standup.BlockedTransitionID)
	assert.Equal(t, 3, cfg.Standup.MaxQuestions)
	assert.False(t, cfg.Standup.ResetAttendanceOnPresence)
	assert.Equal(t, []string{"stakeholder@example.com", "manager@example.com"}, cfg.Standup.StakeholderEmails)
}

func TestLoad_StandupOverrides(t *testing.T) {
	t.Setenv("LIVEKIT_USE_MOCK", "true")
	t.Setenv("ASSEMBLYAI_USE_MOCK", "true")
	t.Setenv("STANDUP_RESPONSE_TIMEOUT", "30s")
	t.Setenv("STANDUP_RESET_ATTENDANCE_ON_PRESENCE", "true")
	t.Setenv("STANDUP_STAKEHOLDER_EMAILS", "cto@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Standup.ResponseTimeout)
	assert.True(t, cfg.Standup.ResetAttendanceOnPresence)
	assert.Equal(t, []string{"cto@example.com"}, cfg.Standup.StakeholderEmails)
}

func TestLoad_RequiresLiveKitCredentials(t *testing.T) {
	t.Setenv("LIVEKIT_USE_MOCK", "false")
	t.Setenv("LIVEKIT_API_KEY", "")
	t.Setenv("ASSEMBLYAI_USE_MOCK", "true")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsAggressivenessOutOfRange(t *testing.T) {
	t.Setenv("LIVEKIT_USE_MOCK", "true")
	t.Setenv("ASSEMBLYAI_USE_MOCK", "true")
	t.Setenv("STANDUP_DEFAULT_AGGRESSIVENESS", "11")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvAsSlice(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,,")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, getEnvAsSlice("ALLOWED_ORIGINS", ""))
}
