package callcontext

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallBegin_CarriesMetadata(t *testing.T) {
	id := uuid.New()
	ctx, cancel := CallBegin(context.Background(), id, "platform", time.Minute)
	defer cancel()

	ctx = WithParticipant(ctx, "Dana")
	meta := GetCallMetadata(ctx)

	assert.Equal(t, id, meta.CallID)
	assert.Equal(t, "platform", meta.Team)
	assert.Equal(t, "Dana", meta.Participant)
	assert.False(t, meta.StartTime.IsZero())

	_, hasDeadline := ctx.Deadline()
	assert.True(t, hasDeadline)
	assert.Len(t, Fields(ctx), 3)
}

func TestCallBegin_NoDeadlineWhenZero(t *testing.T) {
	ctx, cancel := CallBegin(context.Background(), uuid.New(), "platform", 0)
	defer cancel()

	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline)
	assert.NoError(t, ctx.Err())
}

func TestFields_EmptyContext(t *testing.T) {
	assert.Empty(t, Fields(context.Background()))
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", errors.New("groq API error (status 429): rate limit"), true},
		{"server error", errors.New("jira returned status 503"), true},
		{"refused", errors.New("dial tcp: connection refused"), true},
		{"bad request", errors.New("jira returned status 400"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.err))
		})
	}
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryPolicy{
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		MaxElapsedTime:  time.Second,
	}, func() error {
		calls++
		return errors.New("status 400")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_RetriesTransientError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryPolicy{
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		MaxElapsedTime:  time.Second,
	}, func() error {
		calls++
		if calls < 3 {
			return errors.New("service unavailable")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}
