package services

import (
	"context"
	"fmt"
	"time"

	"github.com/omnipulse/omnipulse/internal/db"
	"github.com/omnipulse/omnipulse/internal/logger"
	"github.com/omnipulse/omnipulse/internal/models"
	"github.com/omnipulse/omnipulse/internal/shared"
)

// RecorderService ingests completed conversation sessions. It is the only
// writer of daily buckets; many webhook workers call RecordSession
// concurrently and rely on the store's per-key read-modify-write for
// correctness.
type RecorderService struct {
	db  db.Database
	now func() time.Time
}

// NewRecorderService creates a new session recorder.
func NewRecorderService(database db.Database) *RecorderService {
	return &RecorderService{db: database, now: time.Now}
}

// RecordSession folds one completed session into the current day's bucket and
// merge-writes the latest snapshot. A shared.ErrStorageUnavailable result
// means the session was not applied at all; the caller must retry or
// dead-letter it.
func (s *RecorderService) RecordSession(ctx context.Context, summary *models.SessionSummary) error {
	if err := summary.Validate(); err != nil {
		return fmt.Errorf("invalid session summary: %w", err)
	}

	date := shared.DayKey(s.now())

	bucket, err := s.db.UpdateDailyBucket(ctx, date, func(b *models.DailyBucket) error {
		b.Fold(summary)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record session for %s: %w", date, err)
	}

	snap := &models.LatestSnapshot{
		Bucket:    *bucket,
		UpdatedAt: s.now(),
	}
	if err := s.db.SaveLatestSnapshot(ctx, snap); err != nil {
		// The bucket write already committed; the snapshot is a
		// denormalized convenience and the next session refreshes it.
		logger.Warning("Failed to refresh latest snapshot for %s: %v", date, err)
	}

	return nil
}

// Today returns the denormalized snapshot of the current day, nil when no
// session has been recorded yet.
func (s *RecorderService) Today(ctx context.Context) (*models.LatestSnapshot, error) {
	snap, err := s.db.GetLatestSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	return snap, nil
}
