package service

import (
	"context"

	"copyflow-be/internal/dto"
	"copyflow-be/internal/ingestion"
	"copyflow-be/pkg/gateway"
	"copyflow-be/pkg/langdetect"
)

// IGenerationService backs the stateless generation routes used by clients
// that keep their own page state.
type IGenerationService interface {
	GenerateCopy(ctx context.Context, req *dto.GenerateCopyRequest) (*dto.GenerateCopyResponse, error)
	GenerateCopyFromUpload(ctx context.Context, file dto.UploadFile, keywords []string) (*dto.GenerateCopyResponse, error)
	GenerateDesign(ctx context.Context, req *dto.GenerateDesignRequest) (*dto.GenerateDesignResponse, error)
	Extract(ctx context.Context, file dto.UploadFile, mode string) (*dto.ExtractResponse, error)
}

type generationService struct {
	extractor *ingestion.Extractor
	gateway   gateway.Gateway
}

func NewGenerationService(extractor *ingestion.Extractor, gw gateway.Gateway) IGenerationService {
	return &generationService{extractor: extractor, gateway: gw}
}

func (s *generationService) GenerateCopy(ctx context.Context, req *dto.GenerateCopyRequest) (*dto.GenerateCopyResponse, error) {
	fileName := req.FileName
	if fileName == "" {
		fileName = "briefing.txt"
	}

	c, err := s.gateway.GenerateCopy(ctx, gateway.CopyRequest{
		Briefing: req.Briefing,
		FileName: fileName,
		Keywords: req.Keywords,
	})
	if err != nil {
		return nil, err
	}
	return &dto.GenerateCopyResponse{
		Output:   c.Text,
		Copy:     c.Text,
		Source:   c.Source,
		Fallback: c.Source == gateway.SourceFallback,
	}, nil
}

func (s *generationService) GenerateCopyFromUpload(ctx context.Context, file dto.UploadFile, keywords []string) (*dto.GenerateCopyResponse, error) {
	refs, err := extractAll(ctx, s.extractor, ingestion.ModeText, []dto.UploadFile{file})
	if err != nil {
		return nil, err
	}
	return s.GenerateCopy(ctx, &dto.GenerateCopyRequest{
		Briefing: refs[0].Content,
		FileName: file.Name,
		Keywords: keywords,
	})
}

func (s *generationService) GenerateDesign(ctx context.Context, req *dto.GenerateDesignRequest) (*dto.GenerateDesignResponse, error) {
	template := req.Template
	if template == "" {
		template = defaultTemplate
	}

	d, err := s.gateway.GenerateDesign(ctx, gateway.DesignRequest{
		Copy:     req.Copy,
		Template: template,
		Language: langdetect.ResolveDesignCode(req.Language, req.Copy),
		Keywords: req.Keywords,
	})
	if err != nil {
		return nil, err
	}
	return &dto.GenerateDesignResponse{
		Html:         d.HTML,
		Output:       d.HTML,
		DesignedCopy: d.HTML,
		Language:     d.Language,
		Metrics:      d.Metrics,
		Source:       d.Source,
		Fallback:     d.Source == gateway.SourceFallback,
	}, nil
}

func (s *generationService) Extract(ctx context.Context, file dto.UploadFile, mode string) (*dto.ExtractResponse, error) {
	m, err := ingestion.ParseMode(mode)
	if err != nil {
		return nil, err
	}

	content, err := s.extractor.Extract(ctx, ingestion.Source{
		Name:        file.Name,
		Data:        file.Data,
		ContentType: file.ContentType,
	}, m).Unwrap()
	if err != nil {
		return nil, err
	}
	return &dto.ExtractResponse{
		Name:    content.Name,
		Kind:    string(content.Kind),
		Format:  string(content.Format),
		Content: content.Body,
		Pages:   content.Pages,
	}, nil
}
