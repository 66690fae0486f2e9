package service

import (
	"context"
	"time"

	"copyflow-be/internal/dto"
	"copyflow-be/internal/ingestion"
	"copyflow-be/internal/workflow"

	"golang.org/x/sync/errgroup"
)

// extractAll reads every upload in parallel. The first failure is returned
// alone and no partial result is produced.
func extractAll(ctx context.Context, extractor *ingestion.Extractor, mode ingestion.Mode, files []dto.UploadFile) ([]workflow.SourceRef, error) {
	refs := make([]workflow.SourceRef, len(files))
	g, gctx := errgroup.WithContext(ctx)

	for i, f := range files {
		g.Go(func() error {
			content, err := extractor.Extract(gctx, ingestion.Source{
				Name:        f.Name,
				Data:        f.Data,
				ContentType: f.ContentType,
			}, mode).Unwrap()
			if err != nil {
				return err
			}
			refs[i] = sourceRef(f, content)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

func sourceRef(f dto.UploadFile, content ingestion.Content) workflow.SourceRef {
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return workflow.SourceRef{
		Name:        f.Name,
		Content:     content.Body,
		Type:        contentType,
		Size:        int64(len(f.Data)),
		Kind:        string(content.Kind),
		Format:      string(content.Format),
		ExtractedAt: time.Now().UnixMilli(),
	}
}
