package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is the canonical record stored per social-media publication.
// Identity is (client, network, post_id); base fields are written once
// and never overwritten by later runs.
type Post struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Client         string             `bson:"client" json:"client"`
	Network        string             `bson:"network" json:"network"`
	PostID         string             `bson:"post_id" json:"post_id"`
	PublishedAt    time.Time          `bson:"published_at" json:"published_at"`
	MediaType      string             `bson:"media_type" json:"media_type"`
	Text           string             `bson:"text" json:"text"`
	Permalink      string             `bson:"permalink" json:"permalink"`
	EngagementRate float64            `bson:"engagement_rate" json:"engagement_rate"`
	Details        PostDetails        `bson:"details" json:"details"`
	Metrics        PostMetrics        `bson:"metrics" json:"metrics"`
	InsertedAt     time.Time          `bson:"inserted_at" json:"inserted_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

type PostDetails struct {
	VideoViews   int64  `bson:"video_views" json:"video_views"`
	Duration     int64  `bson:"duration" json:"duration"`
	ThumbnailURL string `bson:"thumbnail_url" json:"thumbnail_url"`
}

type PostMetrics struct {
	Impressions       int64 `bson:"impressions" json:"impressions"`
	Reach             int64 `bson:"reach" json:"reach"`
	TotalInteractions int64 `bson:"total_interactions" json:"total_interactions"`
	Saved             int64 `bson:"saved" json:"saved"`
	VideoViews        int64 `bson:"video_views" json:"video_views"`
}

// InsightSnapshot is one timestamped capture of a post's raw insight
// metrics. Snapshots are append-only; refresh passes add new ones.
type InsightSnapshot struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Client  string             `bson:"client" json:"client"`
	Network string             `bson:"network" json:"network"`
	PostID  string             `bson:"post_id" json:"post_id"`
	TakenAt time.Time          `bson:"taken_at" json:"taken_at"`
	Metrics map[string]int64   `bson:"metrics" json:"metrics"`
}

// SyncState tracks the last completed pass per (client, network) pair.
type SyncState struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Client        string             `bson:"client" json:"client"`
	Network       string             `bson:"network" json:"network"`
	LastRunAt     time.Time          `bson:"last_run_at" json:"last_run_at"`
	PostsSeen     int                `bson:"posts_seen" json:"posts_seen"`
	PostsInserted int                `bson:"posts_inserted" json:"posts_inserted"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// RawPost is a listing item as returned by the Graph APIs. Facebook and
// Instagram populate different subsets of these fields.
type RawPost struct {
	ID           string      `json:"id"`
	Message      string      `json:"message,omitempty"`       // Facebook
	Caption      string      `json:"caption,omitempty"`       // Instagram
	CreatedTime  string      `json:"created_time,omitempty"`  // Facebook
	Timestamp    string      `json:"timestamp,omitempty"`     // Instagram
	MediaType    string      `json:"media_type,omitempty"`    // Instagram
	MediaURL     string      `json:"media_url,omitempty"`     // Instagram
	Permalink    string      `json:"permalink,omitempty"`     // Instagram
	PermalinkURL string      `json:"permalink_url,omitempty"` // Facebook
	Username     string      `json:"username,omitempty"`
	Likes        *RawSummary `json:"likes,omitempty"`    // Facebook
	Comments     *RawSummary `json:"comments,omitempty"` // Facebook
	Shares       *RawShares  `json:"shares,omitempty"`   // Facebook
}

type RawSummary struct {
	Summary struct {
		TotalCount int64 `json:"total_count"`
	} `json:"summary"`
}

type RawShares struct {
	Count int64 `json:"count"`
}

// LikeCount returns the Facebook likes summary count, 0 when absent.
func (p *RawPost) LikeCount() int64 {
	if p.Likes == nil {
		return 0
	}
	return p.Likes.Summary.TotalCount
}

func (p *RawPost) CommentCount() int64 {
	if p.Comments == nil {
		return 0
	}
	return p.Comments.Summary.TotalCount
}

func (p *RawPost) ShareCount() int64 {
	if p.Shares == nil {
		return 0
	}
	return p.Shares.Count
}

// RawMetric is one entry of a Graph insights response. Providers return a
// single current value per metric in this design, so only the first element
// of Values is used.
type RawMetric struct {
	Name   string           `json:"name"`
	Period string           `json:"period,omitempty"`
	Values []RawMetricValue `json:"values"`
}

type RawMetricValue struct {
	Value int64 `json:"value"`
}

// SkipReason classifies why the pipeline left a post or network untouched.
type SkipReason string

const (
	SkipNone           SkipReason = ""
	SkipExists         SkipReason = "exists"
	SkipInsightsFailed SkipReason = "insights_failed"
	SkipInvalid        SkipReason = "invalid"
)

// ItemOutcome is the per-post result of an ingestion pass.
type ItemOutcome struct {
	PostID   string     `json:"post_id"`
	Inserted bool       `json:"inserted"`
	Skip     SkipReason `json:"skip,omitempty"`
}

// RunReport aggregates counters for one pipeline invocation.
type RunReport struct {
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
	Clients         int           `json:"clients"`
	Networks        int           `json:"networks"`
	PostsFetched    int           `json:"posts_fetched"`
	PostsInserted   int           `json:"posts_inserted"`
	PostsSkipped    int           `json:"posts_skipped"`
	PostsRefreshed  int           `json:"posts_refreshed"`
	NetworksSkipped int           `json:"networks_skipped"`
	Failures        int           `json:"failures"`
}
