package db

import (
	"context"

	"github.com/omnipulse/omnipulse/internal/models"
)

// Config holds database configuration.
type Config struct {
	Provider string            // mongodb, sqlite
	URI      string            // connection URI or file path
	Database string            // database name
	Options  map[string]string // provider-specific options
}

// Database is the keyed document store backing the analytics engine, plus the
// bounded read access it needs to the externally-owned record sets.
//
// UpdateDailyBucket is the single concurrency-control point of the whole
// subsystem: implementations must run the mutate callback inside an atomic
// read-modify-write on the one bucket key, retrying internally on write
// conflict, and return shared.ErrStorageUnavailable (wrapped) once the retry
// budget is spent. A reader never observes a partially-applied bucket.
type Database interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error

	// Bucket store. Written only by the session recorder.
	UpdateDailyBucket(ctx context.Context, date string, mutate func(*models.DailyBucket) error) (*models.DailyBucket, error)
	GetDailyBucket(ctx context.Context, date string) (*models.DailyBucket, error)
	ListDailyBuckets(ctx context.Context, limit int) ([]*models.DailyBucket, error)

	// Latest snapshot, merge-written on every recorded session.
	SaveLatestSnapshot(ctx context.Context, snap *models.LatestSnapshot) error
	GetLatestSnapshot(ctx context.Context) (*models.LatestSnapshot, error)

	// Bounded most-recent-first scans over externally-owned collections.
	ListLeads(ctx context.Context, limit int) ([]*models.Lead, error)
	ListConversations(ctx context.Context, limit int) ([]*models.ConversationRecord, error)
	CountPendingFollowUps(ctx context.Context) (int, error)
	ListFollowUpLogs(ctx context.Context, limit int) ([]*models.FollowUpLog, error)
	ListOutreachLogs(ctx context.Context, limit int) ([]*models.OutreachLog, error)
	ListBookings(ctx context.Context, limit int) ([]*models.Booking, error)
}
