package jira

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/standup-assistant/pkg/callcontext"
	"github.com/johnquangdev/standup-assistant/pkg/config"
)

var fastRetry = callcontext.RetryPolicy{
	InitialInterval: time.Millisecond,
	MaxInterval:     5 * time.Millisecond,
	MaxElapsedTime:  200 * time.Millisecond,
}

func TestUpdateStatus_BasicAuth(t *testing.T) {
	var gotPath, gotUser, gotPass string
	var gotBody map[string]map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := NewClient(config.JiraConfig{BaseURL: ts.URL + "/", Email: "bot@example.com", APIToken: "tok"}, nil)
	require.NoError(t, c.UpdateStatus(context.Background(), "PROJ-42", "31"))

	assert.Equal(t, "/rest/api/3/issue/PROJ-42/transitions", gotPath)
	assert.Equal(t, "bot@example.com", gotUser)
	assert.Equal(t, "tok", gotPass)
	assert.Equal(t, "31", gotBody["transition"]["id"])
}

func TestAddComment_BearerToken(t *testing.T) {
	var auth string
	var raw []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		raw, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	c := NewClient(config.JiraConfig{BaseURL: ts.URL, OAuthToken: "oauth-tok"}, nil)
	require.NoError(t, c.AddComment(context.Background(), "PROJ-42", "Blocked\nby DB access"))

	assert.Equal(t, "Bearer oauth-tok", auth)
	assert.Contains(t, string(raw), `"type":"doc"`)
	assert.Contains(t, string(raw), `"text":"by DB access"`)
}

func TestPost_RetriesServerErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := NewClient(config.JiraConfig{BaseURL: ts.URL, APIToken: "tok"}, nil).WithRetryPolicy(fastRetry)
	require.NoError(t, c.UpdateStatus(context.Background(), "PROJ-1", "31"))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPost_ClientErrorIsPermanent(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errorMessages":["Issue does not exist"]}`))
	}))
	defer ts.Close()

	c := NewClient(config.JiraConfig{BaseURL: ts.URL, APIToken: "tok"}, nil).WithRetryPolicy(fastRetry)
	err := c.AddComment(context.Background(), "PROJ-9", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
