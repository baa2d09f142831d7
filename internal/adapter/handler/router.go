package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/johnquangdev/standup-assistant/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/standup-assistant/internal/infrastructure/metrics"
	"github.com/johnquangdev/standup-assistant/pkg/config"
	"github.com/johnquangdev/standup-assistant/pkg/jwt"

	_ "github.com/johnquangdev/standup-assistant/docs"
)

// Router holds all handlers
type Router struct {
	cfg         *config.Config
	jwt         *jwt.Manager
	callHandler *Call
	teamHandler *Team
	hooks       *Hooks
	livekit     *LiveKitWebhook
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, manager *jwt.Manager, callHandler *Call, teamHandler *Team, hooks *Hooks, livekitHook *LiveKitWebhook) *Router {
	return &Router{
		livekit:     livekitHook,
		cfg:         cfg,
		jwt:         manager,
		callHandler: callHandler,
		teamHandler: teamHandler,
		hooks:       hooks,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	// scheduler hooks are signed, not token-authenticated
	v1.POST("/hooks/trigger", rt.hooks.Trigger)
	if rt.livekit != nil {
		v1.POST("/hooks/livekit", rt.livekit.Receive)
	}

	secured := v1.Group("", middleware.EchoAuth(rt.jwt))
	rt.setupCallRoutes(secured)
	rt.setupTeamRoutes(secured)
}

// setupCallRoutes configures call routes
func (rt *Router) setupCallRoutes(g *echo.Group) {
	calls := g.Group("/calls")
	calls.POST("", rt.callHandler.StartCall, middleware.RequireRole(jwt.RoleOperator, jwt.RoleScheduler))
	calls.GET("/:id", rt.callHandler.GetCall)
	calls.GET("/:id/summary", rt.callHandler.GetSummary)
	calls.GET("/:id/state/:key", rt.callHandler.GetState)
}

// setupTeamRoutes configures team routes
func (rt *Router) setupTeamRoutes(g *echo.Group) {
	teams := g.Group("/teams")
	teams.GET("/:team/attendance", rt.teamHandler.ListAttendance)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := "unknown"
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": env,
	})
}
