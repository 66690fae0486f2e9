package server

import (
	"log"
	"time"

	"copyflow-be/internal/bootstrap"
	"copyflow-be/internal/config"
	"copyflow-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// multipart overhead on top of the largest accepted upload pair
const bodyLimitSlack = 1024 * 1024

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName: "copyflow",
		// handler values end up in slot stores, page sessions and events
		Immutable: true,
		// compare uploads carry two files
		BodyLimit: 2*cfg.Storage.MaxUploadSize + bodyLimitSlack,
		// a generation may wait the full gateway timeout before falling back
		WriteTimeout: cfg.Gateway.Timeout + 15*time.Second,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: !cfg.App.IsProduction()}))
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: cfg.App.CorsCredentials(),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Workflow-Session",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition, X-Request-ID",
	}))
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("copyflow listening on :%s (gateway: %s)", s.cfg.App.Port, s.cfg.Gateway.Mode)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.WorkflowController.RegisterRoutes(api)
	c.SlotController.RegisterRoutes(api)
	c.GenerationController.RegisterRoutes(api)
	c.SystemController.RegisterRoutes(api)

	c.StageHandler.RegisterRoutes(api)
}
