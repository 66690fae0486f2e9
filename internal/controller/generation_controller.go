package controller

import (
	"copyflow-be/internal/dto"
	"copyflow-be/internal/pkg/serverutils"
	"copyflow-be/internal/service"
	"copyflow-be/pkg/render"

	"github.com/gofiber/fiber/v2"
)

// IGenerationController serves the stateless routes the web client calls
// directly. Bodies are returned unwrapped, in the shape that client reads.
type IGenerationController interface {
	RegisterRoutes(r fiber.Router)
	GenerateCopyFromUpload(ctx *fiber.Ctx) error
	GenerateCopy(ctx *fiber.Ctx) error
	GenerateDesign(ctx *fiber.Ctx) error
	CompareFiles(ctx *fiber.Ctx) error
	Compare(ctx *fiber.Ctx) error
	GenerateFromComparison(ctx *fiber.Ctx) error
	DownloadCopy(ctx *fiber.Ctx) error
	DownloadDesign(ctx *fiber.Ctx) error
	DocxPreview(ctx *fiber.Ctx) error
	Extract(ctx *fiber.Ctx) error
}

type generationController struct {
	generationService service.IGenerationService
	comparisonService service.IComparisonService
	documentService   service.IDocumentService
}

func NewGenerationController(
	generationService service.IGenerationService,
	comparisonService service.IComparisonService,
	documentService service.IDocumentService,
) IGenerationController {
	return &generationController{
		generationService: generationService,
		comparisonService: comparisonService,
		documentService:   documentService,
	}
}

func (c *generationController) RegisterRoutes(r fiber.Router) {
	r.Post("/generate_copy", c.GenerateCopyFromUpload)
	r.Post("/generate-copy", c.GenerateCopy)
	r.Post("/generate_design", c.GenerateDesign)
	r.Post("/generate-design", c.GenerateDesign)
	r.Post("/compare-files", c.CompareFiles)
	r.Post("/compare", c.Compare)
	r.Post("/generate-from-comparison", c.GenerateFromComparison)
	r.Post("/download-copy", c.DownloadCopy)
	r.Post("/download-design", c.DownloadDesign)
	r.Post("/generate_docx_preview", c.DocxPreview)
	r.Post("/extract", c.Extract)
}

func (c *generationController) GenerateCopyFromUpload(ctx *fiber.Ctx) error {
	file, err := requireFormFile(ctx, "doc1", "file")
	if err != nil {
		return err
	}

	res, err := c.generationService.GenerateCopyFromUpload(ctx.Context(), file, parseKeywords(ctx.FormValue("words_to_anonymize")))
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *generationController) GenerateCopy(ctx *fiber.Ctx) error {
	var req dto.GenerateCopyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.generationService.GenerateCopy(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *generationController) GenerateDesign(ctx *fiber.Ctx) error {
	var req dto.GenerateDesignRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.generationService.GenerateDesign(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *generationController) CompareFiles(ctx *fiber.Ctx) error {
	var req dto.CompareFilesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.comparisonService.CompareFiles(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

// Compare takes either two documents (doc1, doc2) or two text fields.
func (c *generationController) Compare(ctx *fiber.Ctx) error {
	req := dto.CompareTextRequest{
		Text1:          ctx.FormValue("text1"),
		Text2:          ctx.FormValue("text2"),
		ComparisonType: ctx.FormValue("comparison_type"),
		Keywords:       parseKeywords(ctx.FormValue("words_to_anonymize")),
	}

	doc1, has1, err := formFile(ctx, "doc1", "file1")
	if err != nil {
		return err
	}
	doc2, has2, err := formFile(ctx, "doc2", "file2")
	if err != nil {
		return err
	}

	var res *dto.CompareTextResponse
	switch {
	case has1 && has2:
		res, err = c.comparisonService.CompareDocuments(ctx.Context(), doc1, doc2, &req)
	case has1 || has2:
		return fiber.NewError(fiber.StatusBadRequest, "Two files required for comparison")
	default:
		if err := serverutils.ValidateRequest(req); err != nil {
			return err
		}
		res, err = c.comparisonService.CompareText(ctx.Context(), &req)
	}
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *generationController) GenerateFromComparison(ctx *fiber.Ctx) error {
	var req dto.GenerateFromComparisonRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.comparisonService.GenerateFromComparison(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *generationController) DownloadCopy(ctx *fiber.Ctx) error {
	var req dto.DownloadCopyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	data, err := c.documentService.CopyDocx(ctx.Context(), req.Copy)
	if err != nil {
		return err
	}
	return sendAttachment(ctx, data, "generated-copy.docx", render.DocxContentType, false)
}

func (c *generationController) DownloadDesign(ctx *fiber.Ctx) error {
	var req dto.DownloadDesignRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	data, err := c.documentService.DesignPDF(ctx.Context(), req.Title, req.Html)
	if err != nil {
		return err
	}
	return sendAttachment(ctx, data, "generated-design.pdf", render.PDFContentType, false)
}

func (c *generationController) DocxPreview(ctx *fiber.Ctx) error {
	var req dto.DownloadCopyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	data, err := c.documentService.CopyDocx(ctx.Context(), req.Copy)
	if err != nil {
		return err
	}
	return sendAttachment(ctx, data, "preview.docx", render.DocxContentType, true)
}

func (c *generationController) Extract(ctx *fiber.Ctx) error {
	file, err := requireFormFile(ctx, "file", "doc1")
	if err != nil {
		return err
	}

	res, err := c.generationService.Extract(ctx.Context(), file, ctx.FormValue("mode", ctx.Query("mode")))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Extracted", res))
}
