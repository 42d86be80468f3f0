package insights

import (
	"time"

	"social-insights-orchestrator/internal/graph"
	"social-insights-orchestrator/internal/models"
)

type NormalizerInterface interface {
	Flatten(raw []models.RawMetric) map[string]int64
	FacebookRate(flat map[string]int64, likes, comments, shares int64) float64
	InstagramRate(flat map[string]int64) float64
	BuildPost(client string, network graph.Network, raw models.RawPost, flat map[string]int64, now time.Time) models.Post
	RefreshedMetrics(post models.Post, flat map[string]int64) (models.PostMetrics, float64)
	Strategy() Strategy
}
