package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"social-insights-orchestrator/internal/config"
	"social-insights-orchestrator/internal/graph"
	"social-insights-orchestrator/internal/insights"
	"social-insights-orchestrator/internal/models"
	"social-insights-orchestrator/internal/storage"
)

// InsightMode selects when per-post insights are fetched.
type InsightMode string

const (
	// ModeAtWrite fetches insights before writing a post; a failed insight
	// fetch skips the post entirely, leaving it for the next run.
	ModeAtWrite InsightMode = "at_write"
	// ModeDeferred writes the post immediately with zero metrics and lets
	// the refresh pass attach insights later. Never loses base post data.
	ModeDeferred InsightMode = "deferred"
)

func ParseInsightMode(raw string) (InsightMode, error) {
	switch InsightMode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeDeferred, "":
		return ModeDeferred, nil
	case ModeAtWrite:
		return ModeAtWrite, nil
	default:
		return "", fmt.Errorf("unknown insight mode: %q", raw)
	}
}

var _ PipelineInterface = (*Pipeline)(nil)

// Pipeline runs the sequential ingest and refresh passes over every
// configured client x network pair. Provider failures are logged and skipped;
// only storage-level failures surface as errors.
type Pipeline struct {
	storage    storage.StorageInterface
	client     graph.ClientInterface
	normalizer insights.NormalizerInterface
	clients    config.Clients
	apiVersion string
	mode       InsightMode
}

func NewPipeline(
	storage storage.StorageInterface,
	client graph.ClientInterface,
	normalizer insights.NormalizerInterface,
	clients config.Clients,
	apiVersion string,
	mode InsightMode,
) *Pipeline {
	return &Pipeline{
		storage:    storage,
		client:     client,
		normalizer: normalizer,
		clients:    clients,
		apiVersion: apiVersion,
		mode:       mode,
	}
}

// forEachNetwork iterates client x network pairs in deterministic order,
// skipping pairs with missing credentials or unsupported networks. onlyClient
// narrows the pass to a single client when non-empty.
func (p *Pipeline) forEachNetwork(onlyClient string, report *models.RunReport, fn func(client string, network graph.Network, creds config.NetworkCredentials)) {
	clientNames := make([]string, 0, len(p.clients))
	for name := range p.clients {
		if onlyClient != "" && name != onlyClient {
			continue
		}
		clientNames = append(clientNames, name)
	}
	sort.Strings(clientNames)

	for _, clientName := range clientNames {
		slog.Info("Processing client", "client", clientName)
		report.Clients++

		networks := p.clients[clientName]
		networkNames := make([]string, 0, len(networks))
		for name := range networks {
			networkNames = append(networkNames, name)
		}
		sort.Strings(networkNames)

		for _, networkName := range networkNames {
			creds := networks[networkName]
			if creds.AccessToken == "" || creds.AccountID == "" {
				slog.Error("Missing credentials, skipping network",
					"client", clientName, "network", networkName)
				report.NetworksSkipped++
				continue
			}

			network, err := graph.ResolveNetwork(networkName)
			if err != nil {
				var unsupported *graph.ErrUnsupportedNetwork
				if errors.As(err, &unsupported) {
					slog.Warn("Unknown network, skipping",
						"client", clientName, "network", networkName)
				} else {
					slog.Error("Failed to resolve network",
						"client", clientName, "network", networkName, "error", err)
				}
				report.NetworksSkipped++
				continue
			}

			report.Networks++
			fn(clientName, network, creds)
		}
	}
}

// Ingest lists every configured account's posts and writes the ones not yet
// stored. Already-stored posts are never touched.
func (p *Pipeline) Ingest(ctx context.Context, onlyClient string) (*models.RunReport, error) {
	report := &models.RunReport{StartedAt: time.Now()}
	defer func() { report.Duration = time.Since(report.StartedAt) }()

	p.forEachNetwork(onlyClient, report, func(clientName string, network graph.Network, creds config.NetworkCredentials) {
		provider := graph.NewProvider(network, p.apiVersion)

		posts, err := p.client.ListPosts(ctx, provider.ListingURL(creds.AccountID, creds.AccessToken))
		if err != nil {
			slog.Error("Failed to list posts",
				"client", clientName, "network", network, "error", err)
			report.Failures++
			return
		}

		slog.Info("Fetched post listing",
			"client", clientName, "network", network, "posts", len(posts))
		report.PostsFetched += len(posts)

		inserted := 0
		for _, raw := range posts {
			outcome := p.ingestPost(ctx, clientName, network, provider, creds, raw)
			switch {
			case outcome.Inserted:
				inserted++
				report.PostsInserted++
			case outcome.Skip == SkipFailure:
				report.Failures++
			default:
				report.PostsSkipped++
			}
		}

		state := &models.SyncState{
			Client:        clientName,
			Network:       string(network),
			LastRunAt:     time.Now(),
			PostsSeen:     len(posts),
			PostsInserted: inserted,
		}
		if err := p.storage.UpsertSyncState(ctx, state); err != nil {
			slog.Error("Failed to update sync state",
				"client", clientName, "network", network, "error", err)
			report.Failures++
		}
	})

	slog.Info("Ingest pass completed",
		"clients", report.Clients, "networks", report.Networks,
		"fetched", report.PostsFetched, "inserted", report.PostsInserted,
		"skipped", report.PostsSkipped, "failures", report.Failures)

	return report, nil
}

// SkipFailure marks outcomes the run report counts as failures rather than
// ordinary skips.
const SkipFailure models.SkipReason = "failure"

func (p *Pipeline) ingestPost(ctx context.Context, clientName string, network graph.Network, provider *graph.Provider, creds config.NetworkCredentials, raw models.RawPost) models.ItemOutcome {
	if raw.ID == "" {
		slog.Warn("Listing item without id, skipping",
			"client", clientName, "network", network)
		return models.ItemOutcome{Skip: models.SkipInvalid}
	}

	exists, err := p.storage.PostExists(ctx, clientName, string(network), raw.ID)
	if err != nil {
		slog.Error("Existence check failed",
			"client", clientName, "network", network, "post", raw.ID, "error", err)
		return models.ItemOutcome{PostID: raw.ID, Skip: SkipFailure}
	}
	if exists {
		return models.ItemOutcome{PostID: raw.ID, Skip: models.SkipExists}
	}

	flat := map[string]int64{}
	if p.mode == ModeAtWrite {
		rawMetrics, err := p.client.FetchInsights(ctx,
			provider.InsightsURL(raw.ID, raw.MediaType, creds.AccessToken, false))
		if err != nil {
			slog.Error("Insight fetch failed, skipping post",
				"client", clientName, "network", network, "post", raw.ID, "error", err)
			return models.ItemOutcome{PostID: raw.ID, Skip: models.SkipInsightsFailed}
		}
		flat = p.normalizer.Flatten(rawMetrics)
	}

	post := p.normalizer.BuildPost(clientName, network, raw, flat, time.Now())
	if err := p.storage.InsertPost(ctx, &post); err != nil {
		slog.Error("Failed to insert post",
			"client", clientName, "network", network, "post", raw.ID, "error", err)
		return models.ItemOutcome{PostID: raw.ID, Skip: SkipFailure}
	}

	if p.mode == ModeAtWrite {
		snapshot := &models.InsightSnapshot{
			Client:  clientName,
			Network: string(network),
			PostID:  raw.ID,
			TakenAt: time.Now(),
			Metrics: flat,
		}
		if err := p.storage.AppendInsightSnapshot(ctx, snapshot); err != nil {
			slog.Error("Failed to append insight snapshot",
				"client", clientName, "network", network, "post", raw.ID, "error", err)
		}
	}

	slog.Info("New post stored",
		"client", clientName, "network", network, "post", raw.ID)
	return models.ItemOutcome{PostID: raw.ID, Inserted: true}
}

// Refresh re-fetches insights for every stored post, appends a snapshot and
// overwrites the derived engagement rate. Full re-scan, no delta tracking.
func (p *Pipeline) Refresh(ctx context.Context, onlyClient string) (*models.RunReport, error) {
	report := &models.RunReport{StartedAt: time.Now()}
	defer func() { report.Duration = time.Since(report.StartedAt) }()

	p.forEachNetwork(onlyClient, report, func(clientName string, network graph.Network, creds config.NetworkCredentials) {
		provider := graph.NewProvider(network, p.apiVersion)

		posts, err := p.storage.ListPosts(ctx, clientName, string(network))
		if err != nil {
			slog.Error("Failed to list stored posts",
				"client", clientName, "network", network, "error", err)
			report.Failures++
			return
		}

		for _, post := range posts {
			if err := p.refreshPost(ctx, provider, creds, post); err != nil {
				slog.Error("Failed to refresh post insights",
					"client", clientName, "network", network, "post", post.PostID, "error", err)
				report.Failures++
				continue
			}
			report.PostsRefreshed++
		}
	})

	slog.Info("Refresh pass completed",
		"clients", report.Clients, "networks", report.Networks,
		"refreshed", report.PostsRefreshed, "failures", report.Failures)

	return report, nil
}

func (p *Pipeline) refreshPost(ctx context.Context, provider *graph.Provider, creds config.NetworkCredentials, post models.Post) error {
	rawMetrics, err := p.client.FetchInsights(ctx,
		provider.InsightsURL(post.PostID, post.MediaType, creds.AccessToken, true))
	if err != nil {
		return fmt.Errorf("fetching insights: %w", err)
	}

	flat := p.normalizer.Flatten(rawMetrics)

	snapshot := &models.InsightSnapshot{
		Client:  post.Client,
		Network: post.Network,
		PostID:  post.PostID,
		TakenAt: time.Now(),
		Metrics: flat,
	}
	if err := p.storage.AppendInsightSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("appending snapshot: %w", err)
	}

	metrics, rate := p.normalizer.RefreshedMetrics(post, flat)
	if err := p.storage.UpdatePostEngagement(ctx, post.Client, post.Network, post.PostID, rate, metrics); err != nil {
		return fmt.Errorf("updating engagement: %w", err)
	}

	return nil
}
