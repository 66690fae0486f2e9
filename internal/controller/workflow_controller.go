package controller

import (
	"copyflow-be/internal/dto"
	"copyflow-be/internal/pkg/serverutils"
	"copyflow-be/internal/service"
	"copyflow-be/pkg/render"

	"github.com/gofiber/fiber/v2"
)

type IWorkflowController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Open(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	Generate(ctx *fiber.Ctx) error
	Edit(ctx *fiber.Ctx) error
	Confirm(ctx *fiber.Ctx) error
	Save(ctx *fiber.Ctx) error
	Navigate(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	PreviewDocx(ctx *fiber.Ctx) error
	GenerateFromComparison(ctx *fiber.Ctx) error
	Events(ctx *fiber.Ctx) error
}

type workflowController struct {
	workflowService   service.IWorkflowService
	comparisonService service.IComparisonService
	documentService   service.IDocumentService
	secret            string
}

func NewWorkflowController(
	workflowService service.IWorkflowService,
	comparisonService service.IComparisonService,
	documentService service.IDocumentService,
	secret string,
) IWorkflowController {
	return &workflowController{
		workflowService:   workflowService,
		comparisonService: comparisonService,
		documentService:   documentService,
		secret:            secret,
	}
}

func (c *workflowController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/workflow/v1")
	h.Post("/sessions", c.Start)

	s := h.Group("", serverutils.SessionMiddleware(c.secret))
	s.Get("/pages/:page", c.Open)
	s.Post("/pages/:page/upload", c.Upload)
	s.Post("/pages/:page/generate", c.Generate)
	s.Put("/pages/:page/content", c.Edit)
	s.Post("/pages/:page/confirm", c.Confirm)
	s.Post("/pages/:page/save", c.Save)
	s.Post("/pages/:page/navigate", c.Navigate)
	s.Post("/pages/:page/reset", c.Reset)
	s.Get("/docx", c.PreviewDocx)
	s.Post("/compare/generate", c.GenerateFromComparison)
	s.Get("/events", c.Events)
}

func (c *workflowController) Start(ctx *fiber.Ctx) error {
	res, err := c.workflowService.Start(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Workflow started", res))
}

func (c *workflowController) Open(ctx *fiber.Ctx) error {
	workflowId, err := serverutils.WorkflowID(ctx)
	if err != nil {
		return err
	}

	res, err := c.workflowService.Open(ctx.Context(), workflowId, param(ctx, "page"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Page", res))
}

func (c *workflowController) Upload(ctx *fiber.Ctx) error {
	workflowId, err := serverutils.WorkflowID(ctx)
	if err != nil {
		return err
	}

	files, err := pageUploads(ctx)
	if err != nil {
		return err
	}

	res, err := c.workflowService.Upload(ctx.Context(), workflowId, param(ctx, "page"), files)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Source loaded", res))
}

func (c *workflowController) Generate(ctx *fiber.Ctx) error {
	workflowId, err := serverutils.WorkflowID(ctx)
	if err != nil {
		return err
	}

	var req dto.GenerateRequest
	if err := parseOptionalBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.workflowService.Generate(ctx.Context(), workflowId, param(ctx, "page"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Generated", res))
}

func (c *workflowController) Edit(ctx *fiber.Ctx) error {
	workflowId, err := serverutils.WorkflowID(ctx)
	if err != nil {
		return err
	}

	var req dto.EditContentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.workflowService.Edit(ctx.Context(), workflowId, param(ctx, "page"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Content updated", res))
}

func (c *workflowController) Confirm(ctx *fiber.Ctx) error {
	workflowId, err := serverutils.WorkflowID(ctx)
	if err != nil {
		return err
	}

	res, err := c.workflowService.Confirm(ctx.Context(), workflowId, param(ctx, "page"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Confirmed", res))
}

func (c *workflowController) Save(ctx *fiber.Ctx) error {
	workflowId, err := serverutils.WorkflowID(ctx)
	if err != nil {
		return err
	}

	res, err := c.workflowService.Save(ctx.Context(), workflowId, param(ctx, "page"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Copy saved", res))
}

func (c *workflowController) Navigate(ctx *fiber.Ctx) error {
	workflowId, err := serverutils.WorkflowID(ctx)
	if err != nil {
		return err
	}

	res, err := c.workflowService.Navigate(ctx.Context(), workflowId, param(ctx, "page"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Ready to continue", res))
}

func (c *workflowController) Reset(ctx *fiber.Ctx) error {
	workflowId, err := serverutils.WorkflowID(ctx)
	if err != nil {
		return err
	}

	res, err := c.workflowService.Reset(ctx.Context(), workflowId, param(ctx, "page"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Page reset", res))
}

func (c *workflowController) PreviewDocx(ctx *fiber.Ctx) error {
	workflowId, err := serverutils.WorkflowID(ctx)
	if err != nil {
		return err
	}

	data, err := c.documentService.PreviewDocx(ctx.Context(), workflowId)
	if err != nil {
		return err
	}
	return sendAttachment(ctx, data, "preview.docx", render.DocxContentType, true)
}

func (c *workflowController) GenerateFromComparison(ctx *fiber.Ctx) error {
	workflowId, err := serverutils.WorkflowID(ctx)
	if err != nil {
		return err
	}

	res, err := c.comparisonService.GenerateFromHandoff(ctx.Context(), workflowId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Generated from comparison", res))
}

func (c *workflowController) Events(ctx *fiber.Ctx) error {
	workflowId, err := serverutils.WorkflowID(ctx)
	if err != nil {
		return err
	}

	res, err := c.workflowService.Events(ctx.Context(), workflowId, ctx.Query("page"), int64(ctx.QueryInt("after", 0)))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Workflow events", res))
}
