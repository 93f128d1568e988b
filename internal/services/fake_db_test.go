package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/omnipulse/omnipulse/internal/models"
)

// fakeDB is an in-memory db.Database with per-method error injection. The
// bucket mutex gives UpdateDailyBucket the same per-key atomicity a real
// store provides.
type fakeDB struct {
	mu sync.Mutex

	buckets  map[string]*models.DailyBucket
	snapshot *models.LatestSnapshot

	leads         []*models.Lead
	conversations []*models.ConversationRecord
	pending       int
	followUpLogs  []*models.FollowUpLog
	outreachLogs  []*models.OutreachLog
	bookings      []*models.Booking

	updateBucketErr  error
	listBucketsErr   error
	saveSnapshotErr  error
	listLeadsErr     error
	listConvosErr    error
	countPendingErr  error
	listFollowUpsErr error
	listOutreachErr  error
	listBookingsErr  error
}

func newFakeDB() *fakeDB {
	return &fakeDB{buckets: map[string]*models.DailyBucket{}}
}

func (f *fakeDB) Connect(ctx context.Context) error    { return nil }
func (f *fakeDB) Disconnect(ctx context.Context) error { return nil }
func (f *fakeDB) Ping(ctx context.Context) error       { return nil }

func (f *fakeDB) UpdateDailyBucket(ctx context.Context, date string, mutate func(*models.DailyBucket) error) (*models.DailyBucket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateBucketErr != nil {
		return nil, fmt.Errorf("update bucket %s: %w", date, f.updateBucketErr)
	}

	bucket, ok := f.buckets[date]
	if !ok {
		bucket = models.NewDailyBucket(date)
		f.buckets[date] = bucket
	}
	if err := mutate(bucket); err != nil {
		return nil, err
	}
	bucket.Revision++

	out := *bucket
	return &out, nil
}

func (f *fakeDB) GetDailyBucket(ctx context.Context, date string) (*models.DailyBucket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket, ok := f.buckets[date]
	if !ok {
		return nil, nil
	}
	out := *bucket
	return &out, nil
}

func (f *fakeDB) ListDailyBuckets(ctx context.Context, limit int) ([]*models.DailyBucket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listBucketsErr != nil {
		return nil, f.listBucketsErr
	}

	dates := make([]string, 0, len(f.buckets))
	for date := range f.buckets {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	if limit > 0 && len(dates) > limit {
		dates = dates[:limit]
	}

	out := make([]*models.DailyBucket, len(dates))
	for i, date := range dates {
		bucket := *f.buckets[date]
		out[i] = &bucket
	}
	return out, nil
}

func (f *fakeDB) SaveLatestSnapshot(ctx context.Context, snap *models.LatestSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveSnapshotErr != nil {
		return f.saveSnapshotErr
	}
	copied := *snap
	copied.ID = models.SnapshotID
	f.snapshot = &copied
	return nil
}

func (f *fakeDB) GetLatestSnapshot(ctx context.Context) (*models.LatestSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.snapshot == nil {
		return nil, nil
	}
	out := *f.snapshot
	return &out, nil
}

func (f *fakeDB) ListLeads(ctx context.Context, limit int) ([]*models.Lead, error) {
	if f.listLeadsErr != nil {
		return nil, f.listLeadsErr
	}
	return f.leads, nil
}

func (f *fakeDB) ListConversations(ctx context.Context, limit int) ([]*models.ConversationRecord, error) {
	if f.listConvosErr != nil {
		return nil, f.listConvosErr
	}
	return f.conversations, nil
}

func (f *fakeDB) CountPendingFollowUps(ctx context.Context) (int, error) {
	if f.countPendingErr != nil {
		return 0, f.countPendingErr
	}
	return f.pending, nil
}

func (f *fakeDB) ListFollowUpLogs(ctx context.Context, limit int) ([]*models.FollowUpLog, error) {
	if f.listFollowUpsErr != nil {
		return nil, f.listFollowUpsErr
	}
	return f.followUpLogs, nil
}

func (f *fakeDB) ListOutreachLogs(ctx context.Context, limit int) ([]*models.OutreachLog, error) {
	if f.listOutreachErr != nil {
		return nil, f.listOutreachErr
	}
	return f.outreachLogs, nil
}

func (f *fakeDB) ListBookings(ctx context.Context, limit int) ([]*models.Booking, error) {
	if f.listBookingsErr != nil {
		return nil, f.listBookingsErr
	}
	return f.bookings, nil
}
