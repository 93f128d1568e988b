package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/omnipulse/omnipulse/internal/db"
	"github.com/omnipulse/omnipulse/internal/models"
	"github.com/omnipulse/omnipulse/internal/shared"
)

// SQLite implements the Database interface for embedded deployments. Bucket
// documents are stored as JSON rows; the read-modify-write runs inside an
// immediate transaction so the database lock serializes concurrent writers.
type SQLite struct {
	db     *sql.DB
	config *db.Config
}

// maxBucketRetries bounds commit retries when the database is busy.
const maxBucketRetries = 5

// New creates a new SQLite database instance
func New(config *db.Config) (*SQLite, error) {
	return &SQLite{
		config: config,
	}, nil
}

// Connect opens the database file and applies migrations.
func (s *SQLite) Connect(ctx context.Context) error {
	dbPath := s.config.URI
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	} else if !filepath.IsAbs(dbPath) {
		absPath, err := filepath.Abs(dbPath)
		if err != nil {
			return fmt.Errorf("failed to resolve absolute path: %w", err)
		}
		dbPath = absPath
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	// _txlock=immediate makes every write transaction take the database
	// lock up front, which is the per-key serialization the bucket
	// invariants need on a non-transactional-document store.
	conn, err := sql.Open("sqlite3", dbPath+"?_txlock=immediate&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("failed to open SQLite database at path '%s': %w", dbPath, err)
	}

	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping SQLite database at path '%s': %w", dbPath, err)
	}

	s.db = conn

	if err := db.RunMigrations(conn, s.config.Options["migrations_dir"]); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Disconnect closes the SQLite connection
func (s *SQLite) Disconnect(ctx context.Context) error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the database connection
func (s *SQLite) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("not connected to database")
	}
	return s.db.PingContext(ctx)
}

// UpdateDailyBucket runs mutate inside a write transaction on one bucket row.
func (s *SQLite) UpdateDailyBucket(ctx context.Context, date string, mutate func(*models.DailyBucket) error) (*models.DailyBucket, error) {
	var lastErr error

	for attempt := 0; attempt < maxBucketRetries; attempt++ {
		bucket, err := s.updateBucketOnce(ctx, date, mutate)
		if err == nil {
			return bucket, nil
		}
		if !isBusy(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("bucket %s: %v: %w", date, lastErr, shared.ErrStorageUnavailable)
}

func (s *SQLite) updateBucketOnce(ctx context.Context, date string, mutate func(*models.DailyBucket) error) (*models.DailyBucket, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	bucket := models.NewDailyBucket(date)
	fresh := false

	var doc string
	var revision int64
	err = tx.QueryRowContext(ctx, `SELECT doc, revision FROM day_buckets WHERE date = ?`, date).Scan(&doc, &revision)
	if err == sql.ErrNoRows {
		fresh = true
	} else if err != nil {
		return nil, fmt.Errorf("failed to read bucket %s: %w", date, err)
	} else {
		if err := json.Unmarshal([]byte(doc), bucket); err != nil {
			return nil, fmt.Errorf("failed to decode bucket %s: %w", date, err)
		}
		bucket.Revision = revision
	}

	if err := mutate(bucket); err != nil {
		return nil, err
	}
	bucket.Revision++

	data, err := json.Marshal(bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bucket %s: %w", date, err)
	}

	if fresh {
		_, err = tx.ExecContext(ctx, `INSERT INTO day_buckets (date, revision, doc) VALUES (?, ?, ?)`,
			date, bucket.Revision, string(data))
	} else {
		_, err = tx.ExecContext(ctx, `UPDATE day_buckets SET revision = ?, doc = ? WHERE date = ?`,
			bucket.Revision, string(data), date)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write bucket %s: %w", date, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bucket %s: %w", date, err)
	}

	return bucket, nil
}

// isBusy reports whether an error is a transient lock conflict worth
// retrying.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}

// GetDailyBucket retrieves one bucket by day key, nil when absent.
func (s *SQLite) GetDailyBucket(ctx context.Context, date string) (*models.DailyBucket, error) {
	var doc string
	var revision int64
	err := s.db.QueryRowContext(ctx, `SELECT doc, revision FROM day_buckets WHERE date = ?`, date).Scan(&doc, &revision)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bucket %s: %w", date, err)
	}

	bucket := models.NewDailyBucket(date)
	if err := json.Unmarshal([]byte(doc), bucket); err != nil {
		return nil, fmt.Errorf("failed to decode bucket %s: %w", date, err)
	}
	bucket.Revision = revision

	return bucket, nil
}

// ListDailyBuckets returns the most recent buckets ordered by date descending.
func (s *SQLite) ListDailyBuckets(ctx context.Context, limit int) ([]*models.DailyBucket, error) {
	if limit <= 0 {
		limit = 14
	}

	rows, err := s.db.QueryContext(ctx, `SELECT date, doc, revision FROM day_buckets ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}
	defer rows.Close()

	var buckets []*models.DailyBucket
	for rows.Next() {
		var date, doc string
		var revision int64
		if err := rows.Scan(&date, &doc, &revision); err != nil {
			return nil, fmt.Errorf("failed to scan bucket row: %w", err)
		}

		bucket := models.NewDailyBucket(date)
		if err := json.Unmarshal([]byte(doc), bucket); err != nil {
			return nil, fmt.Errorf("failed to decode bucket %s: %w", date, err)
		}
		bucket.Revision = revision
		buckets = append(buckets, bucket)
	}

	return buckets, rows.Err()
}

// SaveLatestSnapshot merge-writes the snapshot row under its fixed key.
func (s *SQLite) SaveLatestSnapshot(ctx context.Context, snap *models.LatestSnapshot) error {
	snap.ID = models.SnapshotID

	data, err := json.Marshal(snap.Bucket)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analytics_snapshot (id, doc, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at
	`, models.SnapshotID, string(data), snap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// GetLatestSnapshot returns the snapshot, nil when nothing was recorded yet.
func (s *SQLite) GetLatestSnapshot(ctx context.Context) (*models.LatestSnapshot, error) {
	var doc string
	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx, `SELECT doc, updated_at FROM analytics_snapshot WHERE id = ?`, models.SnapshotID).Scan(&doc, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	snap := &models.LatestSnapshot{ID: models.SnapshotID, UpdatedAt: updatedAt}
	if err := json.Unmarshal([]byte(doc), &snap.Bucket); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return snap, nil
}

// ListLeads returns the most recent lead records.
func (s *SQLite) ListLeads(ctx context.Context, limit int) ([]*models.Lead, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, platform, COALESCE(tier, ''), score, created_at
		FROM leads
		ORDER BY created_at DESC
		LIMIT ?
	`, boundedLimit(limit, 400))
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		lead := &models.Lead{}
		var tier string
		if err := rows.Scan(&lead.ID, &lead.UserID, &lead.Platform, &tier, &lead.Score, &lead.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead row: %w", err)
		}
		lead.Tier = models.LeadTier(tier)
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

// ListConversations returns the most recent conversation records.
func (s *SQLite) ListConversations(ctx context.Context, limit int) ([]*models.ConversationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, platform, user_id, intent_category, response_type, sentiment_score,
		       message_count, COALESCE(last_message, ''), created_at
		FROM conversations
		ORDER BY created_at DESC
		LIMIT ?
	`, boundedLimit(limit, 400))
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*models.ConversationRecord
	for rows.Next() {
		conv := &models.ConversationRecord{}
		if err := rows.Scan(&conv.ID, &conv.Platform, &conv.UserID, &conv.IntentCategory, &conv.ResponseType,
			&conv.SentimentScore, &conv.MessageCount, &conv.LastMessage, &conv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		conversations = append(conversations, conv)
	}

	return conversations, rows.Err()
}

// CountPendingFollowUps counts follow-ups still waiting to be sent.
func (s *SQLite) CountPendingFollowUps(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM follow_ups WHERE status = ?`, models.FollowUpPending).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending follow-ups: %w", err)
	}
	return count, nil
}

// ListFollowUpLogs returns the most recent follow-up log entries.
func (s *SQLite) ListFollowUpLogs(ctx context.Context, limit int) ([]*models.FollowUpLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lead_id, channel, sent_at
		FROM follow_up_logs
		ORDER BY sent_at DESC
		LIMIT ?
	`, boundedLimit(limit, 200))
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-up logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.FollowUpLog
	for rows.Next() {
		entry := &models.FollowUpLog{}
		if err := rows.Scan(&entry.ID, &entry.LeadID, &entry.Channel, &entry.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan follow-up log row: %w", err)
		}
		logs = append(logs, entry)
	}

	return logs, rows.Err()
}

// ListOutreachLogs returns the most recent outreach log entries.
func (s *SQLite) ListOutreachLogs(ctx context.Context, limit int) ([]*models.OutreachLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lead_id, status, sent_at, replied_at
		FROM outreach_logs
		ORDER BY sent_at DESC
		LIMIT ?
	`, boundedLimit(limit, 200))
	if err != nil {
		return nil, fmt.Errorf("failed to list outreach logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.OutreachLog
	for rows.Next() {
		entry := &models.OutreachLog{}
		var repliedAt sql.NullTime
		if err := rows.Scan(&entry.ID, &entry.LeadID, &entry.Status, &entry.SentAt, &repliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outreach log row: %w", err)
		}
		if repliedAt.Valid {
			t := repliedAt.Time
			entry.RepliedAt = &t
		}
		logs = append(logs, entry)
	}

	return logs, rows.Err()
}

// ListBookings returns the most recent booking records.
func (s *SQLite) ListBookings(ctx context.Context, limit int) ([]*models.Booking, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lead_id, status, starts_at, created_at
		FROM bookings
		ORDER BY created_at DESC
		LIMIT ?
	`, boundedLimit(limit, 200))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		booking := &models.Booking{}
		if err := rows.Scan(&booking.ID, &booking.LeadID, &booking.Status, &booking.StartsAt, &booking.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func boundedLimit(limit, fallback int) int {
	if limit <= 0 || limit > fallback {
		return fallback
	}
	return limit
}
