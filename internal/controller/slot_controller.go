package controller

import (
	"copyflow-be/internal/dto"
	"copyflow-be/internal/pkg/serverutils"
	"copyflow-be/internal/service"
	"copyflow-be/internal/workflow"

	"github.com/gofiber/fiber/v2"
)

type ISlotController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Set(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type slotController struct {
	slotService service.ISlotService
	secret      string
}

func NewSlotController(slotService service.ISlotService, secret string) ISlotController {
	return &slotController{
		slotService: slotService,
		secret:      secret,
	}
}

func (c *slotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/slot/v1")
	h.Use(serverutils.SessionMiddleware(c.secret))
	h.Get("", c.List)
	h.Get("/:name", c.Show)
	h.Put("/:name", c.Set)
	h.Delete("/:name", c.Clear)
}

func (c *slotController) List(ctx *fiber.Ctx) error {
	workflowId, err := serverutils.WorkflowID(ctx)
	if err != nil {
		return err
	}

	res, err := c.slotService.List(ctx.Context(), workflowId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Slots", res))
}

func (c *slotController) Show(ctx *fiber.Ctx) error {
	workflowId, err := serverutils.WorkflowID(ctx)
	if err != nil {
		return err
	}

	res, found, err := c.slotService.Get(ctx.Context(), workflowId, param(ctx, "name"))
	if err != nil {
		return err
	}
	if !found {
		return fiber.NewError(fiber.StatusNotFound, "Slot not set")
	}
	return ctx.JSON(serverutils.SuccessResponse("Slot", res))
}

func (c *slotController) Set(ctx *fiber.Ctx) error {
	workflowId, err := serverutils.WorkflowID(ctx)
	if err != nil {
		return err
	}

	var req dto.SetSlotRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.slotService.Set(ctx.Context(), workflowId, workflow.Scope(req.Scope), param(ctx, "name"), req.Value)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Slot saved", res))
}

func (c *slotController) Clear(ctx *fiber.Ctx) error {
	workflowId, err := serverutils.WorkflowID(ctx)
	if err != nil {
		return err
	}

	if err := c.slotService.Clear(ctx.Context(), workflowId, param(ctx, "name")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Slot cleared", nil))
}
