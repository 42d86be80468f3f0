package storage

import (
	"context"

	"social-insights-orchestrator/internal/models"
)

type StorageInterface interface {
	// Post operations
	PostExists(ctx context.Context, client, network, postID string) (bool, error)
	InsertPost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, client, network, postID string) (*models.Post, error)
	ListPosts(ctx context.Context, client, network string) ([]models.Post, error)
	UpdatePostEngagement(ctx context.Context, client, network, postID string, rate float64, metrics models.PostMetrics) error
	CountPosts(ctx context.Context, client, network string) (int64, error)

	// Insight snapshot operations (append-only)
	AppendInsightSnapshot(ctx context.Context, snapshot *models.InsightSnapshot) error
	ListInsightSnapshots(ctx context.Context, client, network, postID string) ([]models.InsightSnapshot, error)

	// Sync state operations
	GetSyncState(ctx context.Context, client, network string) (*models.SyncState, error)
	UpsertSyncState(ctx context.Context, state *models.SyncState) error

	// Health check and cleanup
	Ping(ctx context.Context) error
	Close() error
}
