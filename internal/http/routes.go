package http

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"task-marketplace.com/task-marketplace/internal/auth"
	middleware "task-marketplace.com/task-marketplace/internal/http/middlewares"
)

type Options struct {
	RateLimitPerMinute int
	AllowedOrigins     []string
	Issuer             *auth.TokenIssuer
	Logger             *slog.Logger
	// TrustProxy takes the client address from X-Forwarded-For. Only enable it
	// behind a proxy that overwrites the header.
	TrustProxy bool
}

// NewServer returns an echo instance with the middleware chain and every route mounted.
func NewServer(h *Handler, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(opts.Logger)
	e.IPExtractor = echo.ExtractIPDirect()
	if opts.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	}

	Register(e, h, opts)
	return e
}

func Register(e *echo.Echo, h *Handler, opts Options) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(opts.Logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: opts.AllowedOrigins}))
	e.Use(middleware.RateLimiter(opts.RateLimitPerMinute, time.Minute))

	requireAuth := middleware.Authenticate(opts.Issuer)

	e.GET("/health", h.Health)
	e.GET("/categories", h.Categories)

	e.POST("/auth/register", h.Register)
	e.POST("/auth/login", h.Login)

	e.GET("/users/me", h.Me, requireAuth)
	e.PUT("/users/me", h.UpdateMe, requireAuth)
	e.GET("/users/:id", h.GetUser)

	e.GET("/tasks", h.ListTasks)
	e.POST("/tasks", h.CreateTask, requireAuth)
	e.GET("/tasks/:id", h.GetTask)
	e.GET("/tasks/user/:userId", h.ListTasksByOwner)
	e.GET("/tasks/applied/:userId", h.ListAppliedTasks)
	e.POST("/tasks/:id/apply", h.ApplyForTask, requireAuth)
	e.PUT("/tasks/:id/applications/:applicationId/accept", h.AcceptApplication, requireAuth)
	e.PUT("/tasks/:id/complete", h.CompleteTask, requireAuth)
	e.POST("/tasks/:id/rating", h.RateWorker, requireAuth)
}
