package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/testutil"
	"github.com/johnquangdev/standup-assistant/pkg/config"
	"github.com/johnquangdev/standup-assistant/pkg/jwt"
)

const teamFixture = `
team: Core Team
project: Apollo
contacts:
  - name: Alice
    email: alice@example.com
    role: Backend
  - name: Bob
    email: bob@example.com
sprint:
  name: Sprint 14
  start: 2025-03-03
  end: 2025-03-14
work_items:
  - key: APO-1
    title: Payment retries
    assignee: Alice
    status: In Progress
    points: 5
  - key: APO-2
    title: Audit log
    assignee: Bob
    points: 3
open_blockers:
  - key: APO-1
    title: Payment retries
    assignee: Alice
    reason: Waiting on DB credentials
    raised: 2025-03-04
`

func TestLoadFixture_Apply(t *testing.T) {
	f, err := LoadFixture(strings.NewReader(teamFixture))
	require.NoError(t, err)
	assert.Equal(t, "To Do", f.WorkItems[1].Status)

	repo := testutil.NewMemoryTeam()
	ctx := context.Background()
	res, err := f.Apply(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Contacts: 2, WorkItems: 2, Blockers: 1}, res)

	// reapplying updates in place
	_, err = f.Apply(ctx, repo)
	require.NoError(t, err)

	contacts, err := repo.ListContacts(ctx, "Core Team")
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Alice", contacts[0].Name)

	sprint, err := repo.FindActiveSprint(ctx, "Core Team", time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, sprint)
	assert.Equal(t, "Apollo", sprint.ProjectName)

	items, err := repo.ListWorkItems(ctx, sprint.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	total, _ := entities.SprintPoints(items)
	assert.Equal(t, 8, total)

	blockers, err := repo.ListOpenBlockers(ctx, "Core Team")
	require.NoError(t, err)
	assert.Len(t, blockers, 1)
}

func TestLoadFixture_Invalid(t *testing.T) {
	cases := map[string]string{
		"no team":     "contacts: [{name: A}]\nsprint: {name: S, start: 2025-03-03, end: 2025-03-14}\n",
		"no contacts": "team: T\nsprint: {name: S, start: 2025-03-03, end: 2025-03-14}\n",
		"no sprint":   "team: T\ncontacts: [{name: A}]\n",
		"reversed":    "team: T\ncontacts: [{name: A}]\nsprint: {name: S, start: 2025-03-14, end: 2025-03-03}\n",
		"bad status":  "team: T\ncontacts: [{name: A}]\nsprint: {name: S, start: 2025-03-03, end: 2025-03-14}\nwork_items: [{key: X-1, status: Started}]\n",
		"unknown key": "team: T\nmembers: []\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFixture(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadScript(t *testing.T) {
	script, err := LoadScript(strings.NewReader("Alice:\n  - Finished the retry logic\n  - No blockers\nBob: []\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Finished the retry logic", "No blockers"}, script["Alice"])
	assert.Empty(t, script["Bob"])

	script, err = LoadScript(strings.NewReader(""))
	require.NoError(t, err)
	assert.NotNil(t, script)

	_, err = LoadScript(strings.NewReader("- not a map\n"))
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	orig := loadConfig
	t.Cleanup(func() { loadConfig = orig })
	loadConfig = func() (*config.Config, error) {
		return &config.Config{JWT: config.JWTConfig{Secret: "s3cret", Issuer: "standup-assistant", Expiry: time.Hour}}, nil
	}

	cmd := NewRootCommand("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "--subject", "cron", "--role", "scheduler"})
	require.NoError(t, cmd.Execute())

	claims, err := jwt.NewManager("s3cret", "standup-assistant", time.Hour).ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "cron", claims.Subject)
	assert.Equal(t, jwt.RoleScheduler, claims.Role)

	cmd = NewRootCommand("test")
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "--subject", "cron", "--role", "admin"})
	assert.Error(t, cmd.Execute())
}

func TestMigrateCommand_RejectsDirection(t *testing.T) {
	cmd := NewRootCommand("test")
	cmd.SetArgs([]string{"migrate", "sideways"})
	assert.Error(t, cmd.Execute())
}
