package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"copyflow-be/internal/dto"
	"copyflow-be/internal/ingestion"
	"copyflow-be/internal/workflow"
	"copyflow-be/pkg/gateway"

	"github.com/google/uuid"
)

type IComparisonService interface {
	CompareFiles(ctx context.Context, req *dto.CompareFilesRequest) (*dto.CompareFilesResponse, error)
	// CompareUploads extracts both files in parallel before scoring them.
	CompareUploads(ctx context.Context, file1, file2 dto.UploadFile) (*dto.CompareFilesResponse, error)
	CompareText(ctx context.Context, req *dto.CompareTextRequest) (*dto.CompareTextResponse, error)
	// CompareDocuments extracts two uploads as text and compares them like CompareText.
	CompareDocuments(ctx context.Context, file1, file2 dto.UploadFile, req *dto.CompareTextRequest) (*dto.CompareTextResponse, error)
	GenerateFromComparison(ctx context.Context, req *dto.GenerateFromComparisonRequest) (*dto.GenerateFromComparisonResponse, error)
	// GenerateFromHandoff reads the compare page hand-off slots of a workflow.
	GenerateFromHandoff(ctx context.Context, workflowId uuid.UUID) (*dto.GenerateFromComparisonResponse, error)
}

type comparisonService struct {
	extractor *ingestion.Extractor
	gateway   gateway.Gateway
	slots     ISlotService
}

func NewComparisonService(extractor *ingestion.Extractor, gw gateway.Gateway, slots ISlotService) IComparisonService {
	return &comparisonService{extractor: extractor, gateway: gw, slots: slots}
}

func toCompareFilesResponse(cmp gateway.Comparison) *dto.CompareFilesResponse {
	return &dto.CompareFilesResponse{
		Similarity:    cmp.Similarity,
		ContentMatch:  cmp.ContentMatch,
		Structure:     cmp.Structure,
		Compatibility: cmp.Compatibility,
		Source:        cmp.Source,
		Fallback:      cmp.Source == gateway.SourceFallback,
	}
}

func requireContent(docs ...gateway.Document) error {
	for i, d := range docs {
		if strings.TrimSpace(d.Content) == "" {
			return fmt.Errorf("file%d: %w", i+1, ingestion.ErrEmptyContent)
		}
	}
	return nil
}

func (s *comparisonService) CompareFiles(ctx context.Context, req *dto.CompareFilesRequest) (*dto.CompareFilesResponse, error) {
	if err := requireContent(req.File1, req.File2); err != nil {
		return nil, err
	}
	cmp, err := s.gateway.CompareFiles(ctx, req.File1, req.File2)
	if err != nil {
		return nil, err
	}
	return toCompareFilesResponse(cmp), nil
}

func (s *comparisonService) CompareUploads(ctx context.Context, file1, file2 dto.UploadFile) (*dto.CompareFilesResponse, error) {
	refs, err := extractAll(ctx, s.extractor, ingestion.ModeRaw, []dto.UploadFile{file1, file2})
	if err != nil {
		return nil, err
	}
	cmp, err := s.gateway.CompareFiles(ctx, documentOf(refs[0]), documentOf(refs[1]))
	if err != nil {
		return nil, err
	}
	return toCompareFilesResponse(cmp), nil
}

func (s *comparisonService) CompareText(ctx context.Context, req *dto.CompareTextRequest) (*dto.CompareTextResponse, error) {
	kind, err := gateway.ParseComparisonType(req.ComparisonType)
	if err != nil {
		return nil, err
	}

	cmp, err := s.gateway.CompareContent(ctx, gateway.ContentComparison{
		Briefing: req.Text1,
		Copy:     req.Text2,
		Type:     kind,
		Keywords: req.Keywords,
	})
	if err != nil {
		return nil, err
	}

	result := make(map[string]any, len(cmp.Report)+1)
	for k, v := range cmp.Report {
		result[k] = v
	}
	result["similarity_score"] = cmp.Similarity
	return &dto.CompareTextResponse{
		Result:   result,
		Source:   cmp.Source,
		Fallback: cmp.Source == gateway.SourceFallback,
	}, nil
}

func (s *comparisonService) CompareDocuments(ctx context.Context, file1, file2 dto.UploadFile, req *dto.CompareTextRequest) (*dto.CompareTextResponse, error) {
	refs, err := extractAll(ctx, s.extractor, ingestion.ModeText, []dto.UploadFile{file1, file2})
	if err != nil {
		return nil, err
	}
	textReq := *req
	textReq.Text1, textReq.Text2 = refs[0].Content, refs[1].Content
	return s.CompareText(ctx, &textReq)
}

func (s *comparisonService) GenerateFromComparison(ctx context.Context, req *dto.GenerateFromComparisonRequest) (*dto.GenerateFromComparisonResponse, error) {
	if err := requireContent(req.File1, req.File2); err != nil {
		return nil, err
	}
	c, err := s.gateway.GenerateFromComparison(ctx, req.File1, req.File2)
	if err != nil {
		return nil, err
	}
	return &dto.GenerateFromComparisonResponse{
		Content:  c.Text,
		Source:   c.Source,
		Fallback: c.Source == gateway.SourceFallback,
	}, nil
}

func (s *comparisonService) GenerateFromHandoff(ctx context.Context, workflowId uuid.UUID) (*dto.GenerateFromComparisonResponse, error) {
	values, err := s.slots.Values(ctx, workflowId, workflow.SlotCompareFile1, workflow.SlotCompareFile2)
	if err != nil {
		return nil, err
	}

	docs := make([]gateway.Document, 0, 2)
	for _, slot := range []string{workflow.SlotCompareFile1, workflow.SlotCompareFile2} {
		raw, ok := values[slot]
		if !ok {
			return nil, fmt.Errorf("%w: %s is not set, compare two files first", workflow.ErrNotConfirmed, slot)
		}
		var doc gateway.Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", slot, err)
		}
		docs = append(docs, doc)
	}

	return s.GenerateFromComparison(ctx, &dto.GenerateFromComparisonRequest{File1: docs[0], File2: docs[1]})
}
