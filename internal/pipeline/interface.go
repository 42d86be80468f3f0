package pipeline

import (
	"context"

	"social-insights-orchestrator/internal/models"
)

type PipelineInterface interface {
	Ingest(ctx context.Context, onlyClient string) (*models.RunReport, error)
	Refresh(ctx context.Context, onlyClient string) (*models.RunReport, error)
}
