package app

import (
	"context"
	"fmt"
	"strings"

	"hireboard/internal/config"
	"hireboard/internal/delivery/http/handler"
	"hireboard/internal/delivery/http/middleware"
	"hireboard/internal/delivery/http/routes"
	v1 "hireboard/internal/delivery/http/routes/v1"
	"hireboard/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New builds the HTTP app on top of an already wired container.
func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

func Bootstrap(ctx context.Context, cfg config.Config) (*App, func() error, error) {
	c, err := NewContainer(cfg)
	if err != nil {
		return nil, nil, err
	}
	c.Start(ctx)

	app := New(c)
	return app, c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	accessLog := middleware.NewAccessLogMiddleware(c.Logger)
	app.Use(accessLog.Middleware())

	errMw := middleware.NewErrorMiddleware(c.Logger)
	app.Use(errMw.Middleware())

	fault := middleware.NewFaultMiddleware(c.Config.Fault.Rate, c.Logger)
	if fault.Enabled() {
		c.Logger.WithField("rate", c.Config.Fault.Rate).Warn("fault injection enabled")
		app.Use(fault.Middleware())
	}
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	authMw := middleware.NewAuthMiddleware(c.JWT)
	uc := c.Usecases

	registry := routes.NewRegistry(
		handler.NewHealthHandler(healthChecks(c)...),
		ws.NewHandler(c.Hub, c.Logger),
		v1.Handlers{
			Auth:        handler.NewAuthHandler(uc.Auth),
			Jobs:        handler.NewJobsHandler(uc.Jobs),
			Candidates:  handler.NewCandidateHandler(uc.Candidates, uc.Stages),
			Assessments: handler.NewAssessmentHandler(uc.Assessments),
			Sessions:    handler.NewSessionHandler(uc.Sessions),
			Dashboard:   handler.NewDashboardHandler(uc.Dashboard),
		},
		authMw.Middleware(),
	)
	registry.Register(app)
}

func healthChecks(c *Container) []handler.HealthCheck {
	checks := make([]handler.HealthCheck, 0, 2)
	if c.DB != nil {
		checks = append(checks, handler.HealthCheck{Name: "database", Required: true, Probe: c.DB.Ping})
	}
	if c.Cache != nil && c.Cache.Available() {
		checks = append(checks, handler.HealthCheck{Name: "redis", Probe: c.Cache.Ping})
	}
	return checks
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
