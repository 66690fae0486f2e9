package service

import (
	"context"
	"fmt"
	"strings"

	"copyflow-be/internal/workflow"
	"copyflow-be/pkg/render"

	"github.com/google/uuid"
)

const defaultDesignTitle = "Generated Design"

type IDocumentService interface {
	CopyDocx(ctx context.Context, copyText string) ([]byte, error)
	// PreviewDocx renders the copy last confirmed on the briefing page.
	PreviewDocx(ctx context.Context, workflowId uuid.UUID) ([]byte, error)
	DesignPDF(ctx context.Context, title, html string) ([]byte, error)
}

type documentService struct {
	slots ISlotService
}

func NewDocumentService(slots ISlotService) IDocumentService {
	return &documentService{slots: slots}
}

func (s *documentService) CopyDocx(_ context.Context, copyText string) ([]byte, error) {
	return render.DOCX(copyText)
}

func (s *documentService) PreviewDocx(ctx context.Context, workflowId uuid.UUID) ([]byte, error) {
	values, err := s.slots.Values(ctx, workflowId, workflow.SlotDocxCopyText, workflow.SlotConfirmedCopy)
	if err != nil {
		return nil, err
	}

	for _, slot := range []string{workflow.SlotDocxCopyText, workflow.SlotConfirmedCopy} {
		if text := values[slot]; strings.TrimSpace(text) != "" {
			return render.DOCX(text)
		}
	}
	return nil, fmt.Errorf("%w: no confirmed copy to preview", workflow.ErrNotConfirmed)
}

func (s *documentService) DesignPDF(_ context.Context, title, html string) ([]byte, error) {
	if strings.TrimSpace(title) == "" {
		title = defaultDesignTitle
	}
	return render.DesignPDF(title, html)
}
