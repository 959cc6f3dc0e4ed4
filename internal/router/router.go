// Package router registers the HTTP routes and the middleware that wraps
// them.
package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/carbon-footprint-tracker/internal/handler"
	"github.com/iliyamo/carbon-footprint-tracker/internal/middleware"
)

// Deps is everything the routes need. Cache may be nil, in which case the
// leaderboard is computed on every request.
type Deps struct {
	Auth       *handler.AuthHandler
	Activities *handler.ActivityHandler
	Verifier   middleware.TokenVerifier
	Health     handler.Pinger
	Cache      echo.MiddlewareFunc
	Log        *slog.Logger
}

// New builds an Echo instance with the global middleware, the JSON error
// handler and every route registered.
func New(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler(d.Log)

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.CORS())

	RegisterRoutes(e, d)
	return e
}

// RegisterRoutes maps the landing page, the health check and the /api
// group. Registration and login are public; every other /api route except
// the leaderboard requires a bearer token.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/", handler.Home)
	e.GET("/healthz", handler.Health(d.Health, d.Log))

	api := e.Group("/api")
	api.POST("/register", d.Auth.Register)
	api.POST("/login", d.Auth.Login)

	board := []echo.MiddlewareFunc{}
	if d.Cache != nil {
		board = append(board, d.Cache)
	}
	api.GET("/leaderboard", d.Activities.Leaderboard, board...)

	// Per-route so unknown /api paths stay 404.
	bearer := middleware.BearerAuth(d.Verifier)
	api.GET("/user", d.Auth.Me, bearer)
	api.GET("/activities", d.Activities.List, bearer)
	api.POST("/activities", d.Activities.Create, bearer)
	api.GET("/carbon-score", d.Activities.Score, bearer)
	api.GET("/suggestions", d.Activities.Suggestions, bearer)
	api.GET("/achievements", d.Activities.Achievements, bearer)
}
