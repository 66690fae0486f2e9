package controller

import (
	"context"
	"errors"
	"sort"
	"time"

	"copyflow-be/internal/dto"
	"copyflow-be/internal/pkg/logger"
	"copyflow-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck probes one backing service.
type HealthCheck func(ctx context.Context) error

type ISystemController interface {
	RegisterRoutes(r fiber.Router)
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type systemController struct {
	logger logger.ILogger
	checks map[string]HealthCheck
}

func NewSystemController(log logger.ILogger, checks map[string]HealthCheck) ISystemController {
	return &systemController{
		logger: log,
		checks: checks,
	}
}

func (c *systemController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/system/v1")
	h.Get("/logs", c.GetLogs)
	h.Get("/logs/:id", c.GetLogDetail)
	h.Get("/health", c.Health)
}

func (c *systemController) GetLogs(ctx *fiber.Ctx) error {
	page := ctx.QueryInt("page", 1)
	limit := ctx.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}

	logs, err := c.logger.GetLogs(logger.LogFilter{
		Level:      ctx.Query("level"),
		Module:     ctx.Query("module"),
		WorkflowId: ctx.Query("workflow_id"),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", logs))
}

func (c *systemController) GetLogDetail(ctx *fiber.Ctx) error {
	logId := ctx.Params("id")

	l, err := c.logger.GetLogById(logId)
	if errors.Is(err, logger.ErrLogNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Log not found")
	}
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Log detail", l))
}

// Health answers 503 when any configured backing service fails its probe.
func (c *systemController) Health(ctx *fiber.Ctx) error {
	probeCtx, cancel := context.WithTimeout(ctx.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	res := dto.HealthResponse{Status: "ok", Services: make(map[string]string, len(names))}
	for _, name := range names {
		if err := c.checks[name](probeCtx); err != nil {
			res.Services[name] = err.Error()
			res.Status = "degraded"
			continue
		}
		res.Services[name] = "ok"
	}

	body := serverutils.SuccessResponse("Health", res)
	if res.Status != "ok" {
		body.Success = false
		body.Code = fiber.StatusServiceUnavailable
	}
	return ctx.Status(body.Code).JSON(body)
}
