package graph

import (
	"context"

	"social-insights-orchestrator/internal/models"
)

type ClientInterface interface {
	ListPosts(ctx context.Context, listingURL string) ([]models.RawPost, error)
	FetchInsights(ctx context.Context, insightsURL string) ([]models.RawMetric, error)
}
