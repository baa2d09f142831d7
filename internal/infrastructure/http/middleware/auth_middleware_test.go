package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/standup-assistant/pkg/jwt"
)

func newTestServer(manager *jwt.Manager) *echo.Echo {
	e := echo.New()
	e.GET("/ops", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(SubjectContextKey).(string))
	}, EchoAuth(manager), RequireRole(jwt.RoleOperator))
	return e
}

func TestEchoAuth(t *testing.T) {
	manager := jwt.NewManager("secret", "", time.Hour)
	e := newTestServer(manager)

	opToken, err := manager.GenerateToken("ops@example.com", jwt.RoleOperator)
	require.NoError(t, err)
	cronToken, err := manager.GenerateToken("cron", jwt.RoleScheduler)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"invalid", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong role", "Bearer " + cronToken, http.StatusForbidden},
		{"operator", "Bearer " + opToken, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ops", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "ops@example.com", rec.Body.String())
			}
		})
	}
}
