package insights

import (
	"fmt"
	"strings"
	"time"

	"social-insights-orchestrator/internal/graph"
	"social-insights-orchestrator/internal/models"
)

// Strategy selects the Facebook engagement-rate numerator. The two source
// revisions disagreed, so both are kept and picked by configuration.
type Strategy string

const (
	// StrategyCounts uses listing summary counts: (likes+comments+shares)/reach.
	StrategyCounts Strategy = "counts"
	// StrategyEngagedUsers uses the post_engaged_users insight: engaged/reach.
	StrategyEngagedUsers Strategy = "engaged_users"
)

func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(raw))) {
	case StrategyCounts, "":
		return StrategyCounts, nil
	case StrategyEngagedUsers:
		return StrategyEngagedUsers, nil
	default:
		return "", fmt.Errorf("unknown engagement strategy: %q", raw)
	}
}

// defaultDuration is attached to video details when the provider reports
// none; carried over from the original ingestion behavior.
const defaultDuration = 60

var _ NormalizerInterface = (*Normalizer)(nil)

type Normalizer struct {
	strategy Strategy
}

func NewNormalizer(strategy Strategy) *Normalizer {
	return &Normalizer{strategy: strategy}
}

func (n *Normalizer) Strategy() Strategy {
	return n.strategy
}

// Flatten converts a raw metric array into a name->value map, taking the
// first value of each metric's values array. Providers return a single
// current value per metric per request; there is no time-series handling.
func (n *Normalizer) Flatten(raw []models.RawMetric) map[string]int64 {
	flat := make(map[string]int64, len(raw))
	for _, metric := range raw {
		if metric.Name == "" || len(metric.Values) == 0 {
			continue
		}
		flat[metric.Name] = metric.Values[0].Value
	}
	return flat
}

// rate computes interactions/reach*100, guarding division by zero: a post
// with no reach has a 0% rate, never NaN or Inf.
func rate(interactions, reach int64) float64 {
	if reach <= 0 {
		return 0
	}
	return float64(interactions) / float64(reach) * 100
}

// FacebookRate derives the engagement rate for a Facebook post. Counts come
// from the listing summaries, reach from the post_impressions_unique insight.
func (n *Normalizer) FacebookRate(flat map[string]int64, likes, comments, shares int64) float64 {
	reach := flat["post_impressions_unique"]
	if n.strategy == StrategyEngagedUsers {
		return rate(flat["post_engaged_users"], reach)
	}
	return rate(likes+comments+shares, reach)
}

// InstagramRate derives the engagement rate for an Instagram post:
// (likes+comments+saved)/reach*100.
func (n *Normalizer) InstagramRate(flat map[string]int64) float64 {
	return rate(flat["likes"]+flat["comments"]+flat["saved"], flat["reach"])
}

// BuildPost maps a raw listing item plus flattened insights onto the
// canonical Post record. Missing provider fields default rather than error:
// timestamps fall back to now, media types to text, metrics to 0.
func (n *Normalizer) BuildPost(client string, network graph.Network, raw models.RawPost, flat map[string]int64, now time.Time) models.Post {
	post := models.Post{
		Client:      client,
		Network:     string(network),
		PostID:      raw.ID,
		PublishedAt: now,
		MediaType:   graph.NormalizeMediaType(raw.MediaType),
	}

	switch network {
	case graph.NetworkInstagram:
		post.Text = raw.Caption
		post.Permalink = raw.Permalink
		if ts, ok := parseGraphTime(raw.Timestamp); ok {
			post.PublishedAt = ts
		}
		post.EngagementRate = n.InstagramRate(flat)
		videoViews := flat["video_views"]
		if videoViews == 0 {
			videoViews = flat["plays"]
		}
		post.Metrics = models.PostMetrics{
			Impressions:       flat["impressions"],
			Reach:             flat["reach"],
			TotalInteractions: flat["likes"] + flat["comments"] + flat["saved"],
			Saved:             flat["saved"],
			VideoViews:        videoViews,
		}
		post.Details = models.PostDetails{
			VideoViews:   videoViews,
			Duration:     defaultDuration,
			ThumbnailURL: raw.MediaURL,
		}
	default:
		post.Text = raw.Message
		post.Permalink = raw.PermalinkURL
		if ts, ok := parseGraphTime(raw.CreatedTime); ok {
			post.PublishedAt = ts
		}
		likes, comments, shares := raw.LikeCount(), raw.CommentCount(), raw.ShareCount()
		post.EngagementRate = n.FacebookRate(flat, likes, comments, shares)
		interactions := likes + comments + shares
		if n.strategy == StrategyEngagedUsers {
			interactions = flat["post_engaged_users"]
		}
		post.Metrics = models.PostMetrics{
			Impressions:       flat["post_impressions"],
			Reach:             flat["post_impressions_unique"],
			TotalInteractions: interactions,
			Saved:             0,
			VideoViews:        0,
		}
		post.Details = models.PostDetails{
			Duration: defaultDuration,
		}
	}

	return post
}

// RefreshedMetrics recomputes the metrics block and rate from a fresh
// insight fetch, preserving fields the refresh metric set does not cover.
func (n *Normalizer) RefreshedMetrics(post models.Post, flat map[string]int64) (models.PostMetrics, float64) {
	switch graph.Network(post.Network) {
	case graph.NetworkInstagram:
		videoViews := flat["video_views"]
		if videoViews == 0 {
			videoViews = flat["plays"]
		}
		metrics := models.PostMetrics{
			Impressions:       flat["impressions"],
			Reach:             flat["reach"],
			TotalInteractions: flat["likes"] + flat["comments"] + flat["saved"],
			Saved:             flat["saved"],
			VideoViews:        videoViews,
		}
		return metrics, n.InstagramRate(flat)
	default:
		metrics := post.Metrics
		metrics.Impressions = flat["post_impressions"]
		metrics.Reach = flat["post_impressions_unique"]
		// The refresh metric set has no interaction counts, so the rate
		// reuses the stored interaction total against the fresh reach.
		reach := flat["post_impressions_unique"]
		if n.strategy == StrategyEngagedUsers {
			if engaged, ok := flat["post_engaged_users"]; ok {
				metrics.TotalInteractions = engaged
			}
		}
		return metrics, rate(metrics.TotalInteractions, reach)
	}
}

// graphTimeLayouts covers the Graph API timestamp format (numeric zone
// offset without a colon) and plain RFC 3339.
var graphTimeLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
}

func parseGraphTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range graphTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
