package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"social-insights-orchestrator/internal/models"
)

const (
	PostsCollection     = "posts"
	InsightsCollection  = "post_insights"
	SyncStateCollection = "sync_state"
)

var _ StorageInterface = (*MongoStorage)(nil)

// MongoStorage persists the client -> network -> post hierarchy. The
// hierarchy is flattened into compound keys: every post document carries
// (client, network, post_id) with a unique index, and insight snapshots hang
// off the same key as an append-only collection.
type MongoStorage struct {
	client   *mongo.Client
	database *mongo.Database
}

func NewMongoStorage(mongoURI, databaseName string) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	storage := &MongoStorage{
		client:   client,
		database: client.Database(databaseName),
	}

	if err := storage.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return storage, nil
}

var postIdentity = bson.D{
	{Key: "client", Value: 1},
	{Key: "network", Value: 1},
	{Key: "post_id", Value: 1},
}

func (s *MongoStorage) createIndexes(ctx context.Context) error {
	postsIndexes := []mongo.IndexModel{
		{
			Keys:    postIdentity,
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "client", Value: 1}, {Key: "network", Value: 1}, {Key: "published_at", Value: -1}}},
		{Keys: bson.D{{Key: "inserted_at", Value: -1}}},
	}
	if _, err := s.database.Collection(PostsCollection).Indexes().CreateMany(ctx, postsIndexes); err != nil {
		return err
	}

	insightsIndexes := []mongo.IndexModel{
		{Keys: append(append(bson.D{}, postIdentity...), bson.E{Key: "taken_at", Value: -1})},
	}
	if _, err := s.database.Collection(InsightsCollection).Indexes().CreateMany(ctx, insightsIndexes); err != nil {
		return err
	}

	syncIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "client", Value: 1}, {Key: "network", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "last_run_at", Value: -1}}},
	}
	if _, err := s.database.Collection(SyncStateCollection).Indexes().CreateMany(ctx, syncIndexes); err != nil {
		return err
	}

	return nil
}

func identityFilter(client, network, postID string) bson.M {
	return bson.M{"client": client, "network": network, "post_id": postID}
}

// Post operations

func (s *MongoStorage) PostExists(ctx context.Context, client, network, postID string) (bool, error) {
	collection := s.database.Collection(PostsCollection)

	count, err := collection.CountDocuments(ctx, identityFilter(client, network, postID), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// InsertPost writes a post at most once per identity. The upsert keeps every
// base field under $setOnInsert so a concurrent or repeated insert never
// overwrites what an earlier run stored.
func (s *MongoStorage) InsertPost(ctx context.Context, post *models.Post) error {
	if post.Client == "" || post.Network == "" || post.PostID == "" {
		return fmt.Errorf("invalid post data: client, network and post_id are required")
	}

	collection := s.database.Collection(PostsCollection)

	now := time.Now()
	if post.InsertedAt.IsZero() {
		post.InsertedAt = now
	}
	post.UpdatedAt = now

	update := bson.M{
		"$setOnInsert": bson.M{
			"client":          post.Client,
			"network":         post.Network,
			"post_id":         post.PostID,
			"published_at":    post.PublishedAt,
			"media_type":      post.MediaType,
			"text":            post.Text,
			"permalink":       post.Permalink,
			"engagement_rate": post.EngagementRate,
			"details":         post.Details,
			"metrics":         post.Metrics,
			"inserted_at":     post.InsertedAt,
			"updated_at":      post.UpdatedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(ctx, identityFilter(post.Client, post.Network, post.PostID), update, opts)
	return err
}

func (s *MongoStorage) GetPost(ctx context.Context, client, network, postID string) (*models.Post, error) {
	collection := s.database.Collection(PostsCollection)

	var post models.Post
	err := collection.FindOne(ctx, identityFilter(client, network, postID)).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &post, nil
}

func (s *MongoStorage) ListPosts(ctx context.Context, client, network string) ([]models.Post, error) {
	collection := s.database.Collection(PostsCollection)

	filter := bson.M{"client": client, "network": network}
	opts := options.Find().SetSort(bson.D{{Key: "published_at", Value: -1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}

	return posts, nil
}

// UpdatePostEngagement is the only mutation the refresh pass performs on a
// stored post: the derived rate and the metrics block.
func (s *MongoStorage) UpdatePostEngagement(ctx context.Context, client, network, postID string, rate float64, metrics models.PostMetrics) error {
	collection := s.database.Collection(PostsCollection)

	update := bson.M{
		"$set": bson.M{
			"engagement_rate": rate,
			"metrics":         metrics,
			"updated_at":      time.Now(),
		},
	}

	result, err := collection.UpdateOne(ctx, identityFilter(client, network, postID), update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("post %s/%s/%s not found", client, network, postID)
	}

	return nil
}

func (s *MongoStorage) CountPosts(ctx context.Context, client, network string) (int64, error) {
	collection := s.database.Collection(PostsCollection)

	filter := bson.M{}
	if client != "" {
		filter["client"] = client
	}
	if network != "" {
		filter["network"] = network
	}

	return collection.CountDocuments(ctx, filter)
}

// Insight snapshot operations

func (s *MongoStorage) AppendInsightSnapshot(ctx context.Context, snapshot *models.InsightSnapshot) error {
	if snapshot.Client == "" || snapshot.Network == "" || snapshot.PostID == "" {
		return fmt.Errorf("invalid snapshot data: client, network and post_id are required")
	}

	if snapshot.TakenAt.IsZero() {
		snapshot.TakenAt = time.Now()
	}

	collection := s.database.Collection(InsightsCollection)
	_, err := collection.InsertOne(ctx, snapshot)
	return err
}

func (s *MongoStorage) ListInsightSnapshots(ctx context.Context, client, network, postID string) ([]models.InsightSnapshot, error) {
	collection := s.database.Collection(InsightsCollection)

	opts := options.Find().SetSort(bson.D{{Key: "taken_at", Value: 1}})
	cursor, err := collection.Find(ctx, identityFilter(client, network, postID), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snapshots []models.InsightSnapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, err
	}

	return snapshots, nil
}

// Sync state operations

func (s *MongoStorage) GetSyncState(ctx context.Context, client, network string) (*models.SyncState, error) {
	collection := s.database.Collection(SyncStateCollection)

	filter := bson.M{"client": client, "network": network}

	var state models.SyncState
	err := collection.FindOne(ctx, filter).Decode(&state)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &state, nil
}

func (s *MongoStorage) UpsertSyncState(ctx context.Context, state *models.SyncState) error {
	collection := s.database.Collection(SyncStateCollection)

	filter := bson.M{"client": state.Client, "network": state.Network}

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"client":         state.Client,
			"network":        state.Network,
			"last_run_at":    state.LastRunAt,
			"posts_seen":     state.PostsSeen,
			"posts_inserted": state.PostsInserted,
			"updated_at":     now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// Health check and cleanup

func (s *MongoStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStorage) Close() error {
	return s.client.Disconnect(context.Background())
}
