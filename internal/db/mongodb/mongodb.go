package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omnipulse/omnipulse/internal/db"
	"github.com/omnipulse/omnipulse/internal/models"
	"github.com/omnipulse/omnipulse/internal/shared"
)

// MongoDB implements the Database interface on top of MongoDB. Bucket updates
// use optimistic concurrency: a revision counter guards ReplaceOne, and
// conflicting writers retry the whole read-modify-write.
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	config   *db.Config
}

const (
	collBuckets       = "day_buckets"
	collSnapshot      = "analytics_snapshot"
	collLeads         = "leads"
	collConversations = "conversations"
	collFollowUps     = "follow_ups"
	collFollowUpLogs  = "follow_up_logs"
	collOutreachLogs  = "outreach_logs"
	collBookings      = "bookings"
)

// maxBucketRetries bounds the optimistic write loop before the update is
// reported as a storage failure.
const maxBucketRetries = 5

// New creates a new MongoDB database instance
func New(config *db.Config) (*MongoDB, error) {
	return &MongoDB{
		config: config,
	}, nil
}

// Connect establishes connection to MongoDB
func (m *MongoDB) Connect(ctx context.Context) error {
	clientOptions := options.Client().ApplyURI(m.config.URI)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.client = client
	m.database = client.Database(m.config.Database)

	if err := m.createIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// Disconnect closes the MongoDB connection
func (m *MongoDB) Disconnect(ctx context.Context) error {
	if m.client != nil {
		return m.client.Disconnect(ctx)
	}
	return nil
}

// Ping checks the database connection
func (m *MongoDB) Ping(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("not connected to database")
	}
	return m.client.Ping(ctx, nil)
}

// createIndexes creates the indexes the bounded scans rely on
func (m *MongoDB) createIndexes(ctx context.Context) error {
	recencyIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	for _, coll := range []string{collLeads, collConversations, collBookings} {
		if _, err := m.database.Collection(coll).Indexes().CreateMany(ctx, recencyIndex); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}

	sentIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "sent_at", Value: -1}},
		},
	}

	for _, coll := range []string{collFollowUpLogs, collOutreachLogs} {
		if _, err := m.database.Collection(coll).Indexes().CreateMany(ctx, sentIndex); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}

	followUpIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}

	if _, err := m.database.Collection(collFollowUps).Indexes().CreateMany(ctx, followUpIndex); err != nil {
		return fmt.Errorf("failed to create follow-up indexes: %w", err)
	}

	return nil
}

// UpdateDailyBucket runs mutate inside an optimistic read-modify-write on one
// bucket document. A new day starts from a zero bucket; a lost insert race or
// a revision mismatch retries the full cycle.
func (m *MongoDB) UpdateDailyBucket(ctx context.Context, date string, mutate func(*models.DailyBucket) error) (*models.DailyBucket, error) {
	coll := m.database.Collection(collBuckets)

	for attempt := 0; attempt < maxBucketRetries; attempt++ {
		var bucket models.DailyBucket
		fresh := false

		err := coll.FindOne(ctx, bson.M{"_id": date}).Decode(&bucket)
		if err == mongo.ErrNoDocuments {
			bucket = *models.NewDailyBucket(date)
			fresh = true
		} else if err != nil {
			return nil, fmt.Errorf("failed to read bucket %s: %w", date, err)
		}

		if err := mutate(&bucket); err != nil {
			return nil, err
		}

		prev := bucket.Revision
		bucket.Revision++

		if fresh {
			if _, err := coll.InsertOne(ctx, &bucket); err != nil {
				if mongo.IsDuplicateKeyError(err) {
					continue // another writer created today's bucket first
				}
				return nil, fmt.Errorf("failed to insert bucket %s: %w", date, err)
			}
			return &bucket, nil
		}

		result, err := coll.ReplaceOne(ctx, bson.M{"_id": date, "revision": prev}, &bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to replace bucket %s: %w", date, err)
		}
		if result.MatchedCount == 1 {
			return &bucket, nil
		}
		// revision moved under us, retry
	}

	return nil, fmt.Errorf("bucket %s: update conflict persisted after %d attempts: %w", date, maxBucketRetries, shared.ErrStorageUnavailable)
}

// GetDailyBucket retrieves one bucket by day key, nil when the day has no
// sessions yet.
func (m *MongoDB) GetDailyBucket(ctx context.Context, date string) (*models.DailyBucket, error) {
	var bucket models.DailyBucket
	err := m.database.Collection(collBuckets).FindOne(ctx, bson.M{"_id": date}).Decode(&bucket)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bucket %s: %w", date, err)
	}
	return &bucket, nil
}

// ListDailyBuckets returns the most recent buckets ordered by date descending.
func (m *MongoDB) ListDailyBuckets(ctx context.Context, limit int) ([]*models.DailyBucket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := m.database.Collection(collBuckets).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}
	defer cursor.Close(ctx)

	var buckets []*models.DailyBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("failed to decode buckets: %w", err)
	}

	return buckets, nil
}

// SaveLatestSnapshot merge-writes the snapshot under its fixed key.
func (m *MongoDB) SaveLatestSnapshot(ctx context.Context, snap *models.LatestSnapshot) error {
	snap.ID = models.SnapshotID

	opts := options.Replace().SetUpsert(true)
	if _, err := m.database.Collection(collSnapshot).ReplaceOne(ctx, bson.M{"_id": models.SnapshotID}, snap, opts); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetLatestSnapshot returns the snapshot, nil when nothing was recorded yet.
func (m *MongoDB) GetLatestSnapshot(ctx context.Context) (*models.LatestSnapshot, error) {
	var snap models.LatestSnapshot
	err := m.database.Collection(collSnapshot).FindOne(ctx, bson.M{"_id": models.SnapshotID}).Decode(&snap)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return &snap, nil
}

// ListLeads returns the most recent lead records.
func (m *MongoDB) ListLeads(ctx context.Context, limit int) ([]*models.Lead, error) {
	var leads []*models.Lead
	if err := m.listRecent(ctx, collLeads, "created_at", limit, &leads); err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

// ListConversations returns the most recent conversation records.
func (m *MongoDB) ListConversations(ctx context.Context, limit int) ([]*models.ConversationRecord, error) {
	var conversations []*models.ConversationRecord
	if err := m.listRecent(ctx, collConversations, "created_at", limit, &conversations); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

// CountPendingFollowUps counts follow-ups still waiting to be sent.
func (m *MongoDB) CountPendingFollowUps(ctx context.Context) (int, error) {
	count, err := m.database.Collection(collFollowUps).CountDocuments(ctx, bson.M{"status": models.FollowUpPending})
	if err != nil {
		return 0, fmt.Errorf("failed to count pending follow-ups: %w", err)
	}
	return int(count), nil
}

// ListFollowUpLogs returns the most recent follow-up log entries.
func (m *MongoDB) ListFollowUpLogs(ctx context.Context, limit int) ([]*models.FollowUpLog, error) {
	var logs []*models.FollowUpLog
	if err := m.listRecent(ctx, collFollowUpLogs, "sent_at", limit, &logs); err != nil {
		return nil, fmt.Errorf("failed to list follow-up logs: %w", err)
	}
	return logs, nil
}

// ListOutreachLogs returns the most recent outreach log entries.
func (m *MongoDB) ListOutreachLogs(ctx context.Context, limit int) ([]*models.OutreachLog, error) {
	var logs []*models.OutreachLog
	if err := m.listRecent(ctx, collOutreachLogs, "sent_at", limit, &logs); err != nil {
		return nil, fmt.Errorf("failed to list outreach logs: %w", err)
	}
	return logs, nil
}

// ListBookings returns the most recent booking records.
func (m *MongoDB) ListBookings(ctx context.Context, limit int) ([]*models.Booking, error) {
	var bookings []*models.Booking
	if err := m.listRecent(ctx, collBookings, "created_at", limit, &bookings); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// listRecent runs a bounded most-recent-first scan on one collection.
func (m *MongoDB) listRecent(ctx context.Context, coll, sortField string, limit int, out interface{}) error {
	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := m.database.Collection(coll).Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	return cursor.All(ctx, out)
}

// GetDatabase returns the underlying MongoDB database instance
func (m *MongoDB) GetDatabase() *mongo.Database {
	return m.database
}
