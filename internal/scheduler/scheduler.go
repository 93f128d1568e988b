package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/omnipulse/omnipulse/internal/db"
	"github.com/omnipulse/omnipulse/internal/logger"
	"github.com/omnipulse/omnipulse/internal/models"
	"github.com/omnipulse/omnipulse/internal/shared"
)

// digestSpec fires shortly after midnight so yesterday's bucket is complete.
const digestSpec = "5 0 * * *"

// Scheduler runs the daily digest: it logs yesterday's aggregate summary and
// pre-creates today's zero bucket so early dashboard reads find a document.
type Scheduler struct {
	db      db.Database
	cron    *cron.Cron
	running bool
	mu      sync.RWMutex
}

// New creates a new digest scheduler
func New(database db.Database) *Scheduler {
	return &Scheduler{
		db:   database,
		cron: cron.New(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := s.cron.AddFunc(digestSpec, func() {
		if err := s.RunDigest(context.Background()); err != nil {
			logger.Error("Daily digest failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to add digest job: %w", err)
	}

	s.cron.Start()
	s.running = true

	logger.Info("Digest scheduler started")
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cron.Stop()
	s.running = false

	logger.Info("Digest scheduler stopped")
}

// RunDigest executes one digest cycle. Exposed so the CLI can trigger it
// manually.
func (s *Scheduler) RunDigest(ctx context.Context) error {
	now := time.Now()
	yesterday := shared.DayKey(now.AddDate(0, 0, -1))
	today := shared.DayKey(now)

	bucket, err := s.db.GetDailyBucket(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("failed to load bucket %s: %w", yesterday, err)
	}

	if bucket == nil {
		logger.Info("Daily digest %s: no sessions recorded", yesterday)
	} else {
		logger.Info("Daily digest %s: %d messages, %d leads, %d active users, conversion %.2f, efficiency %.3f",
			yesterday, bucket.TotalMessagesToday, bucket.NewLeadsToday, len(bucket.ActiveUsers),
			bucket.ConversionRate, bucket.LearningEfficiency)
	}

	// A no-op update materializes today's zero-filled bucket.
	if _, err := s.db.UpdateDailyBucket(ctx, today, func(*models.DailyBucket) error { return nil }); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", today, err)
	}

	return nil
}
