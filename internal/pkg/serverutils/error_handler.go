package serverutils

import (
	"context"
	"errors"

	"copyflow-be/internal/ingestion"
	"copyflow-be/internal/workflow"
	"copyflow-be/pkg/gateway"
	"copyflow-be/pkg/render"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type errorStatus struct {
	err    error
	status int
}

// Checked in order, the first match wins.
var errorStatuses = []errorStatus{
	{ingestion.ErrUnsupportedFileType, fiber.StatusBadRequest},
	{ingestion.ErrEmptyContent, fiber.StatusBadRequest},
	{ingestion.ErrUnknownMode, fiber.StatusBadRequest},
	{ingestion.ErrTooLarge, fiber.StatusRequestEntityTooLarge},
	{ingestion.ErrCorrupt, fiber.StatusUnprocessableEntity},

	{workflow.ErrDirty, fiber.StatusConflict},
	{workflow.ErrNotConfirmed, fiber.StatusConflict},
	{workflow.ErrInvalidTransition, fiber.StatusConflict},
	{workflow.ErrStaleGeneration, fiber.StatusConflict},
	{workflow.ErrSourceCount, fiber.StatusBadRequest},
	{workflow.ErrNotEditable, fiber.StatusBadRequest},
	{workflow.ErrNotConfirmable, fiber.StatusBadRequest},
	{workflow.ErrUnknownSlot, fiber.StatusBadRequest},
	{workflow.ErrScopeMismatch, fiber.StatusBadRequest},
	{workflow.ErrUnknownPage, fiber.StatusNotFound},

	{gateway.ErrUnknownComparison, fiber.StatusBadRequest},
	{gateway.ErrUnavailable, fiber.StatusBadGateway},
	{gateway.ErrMalformedResponse, fiber.StatusBadGateway},

	{render.ErrEmptyCopy, fiber.StatusBadRequest},
	{render.ErrEmptyDesign, fiber.StatusBadRequest},

	{context.DeadlineExceeded, fiber.StatusRequestTimeout},
}

// StatusOf maps a service error to the HTTP status the API answers with.
func StatusOf(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return fiber.StatusBadRequest
	}
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return fiber.StatusInternalServerError
}

func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := StatusOf(err)
		message := err.Error()

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			message = validationMessage(validationErrs)
		}
		if status == fiber.StatusInternalServerError {
			message = "Internal server error"
		}

		return ctx.Status(status).JSON(ErrorResponse(status, message))
	}
}
