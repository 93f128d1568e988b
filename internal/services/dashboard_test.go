package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnipulse/omnipulse/internal/models"
	"github.com/omnipulse/omnipulse/internal/shared"
)

func TestGetStatsSeedFallback(t *testing.T) {
	fake := newFakeDB()
	dashboard := NewDashboardService(fake)
	dashboard.now = func() time.Time { return testNow }

	payload, err := dashboard.GetStats(context.Background())
	require.NoError(t, err)
	require.NotNil(t, payload)

	// Seed data is internally consistent: the headline equals the last
	// point of the daily chart.
	require.Len(t, payload.Charts.DailyMessages, 7)
	last := payload.Charts.DailyMessages[len(payload.Charts.DailyMessages)-1]
	assert.Equal(t, payload.Summary.TotalMessagesToday, last.Value)
	assert.Equal(t, shared.DayLabel(shared.DayKey(testNow)), last.Label)

	assert.Positive(t, payload.Summary.TotalMessagesToday)
	assert.Positive(t, payload.Summary.NewLeadsToday)
	assert.Positive(t, payload.ActiveUsers)
	assert.Len(t, payload.PlatformMetrics, len(models.AllPlatforms))
	assert.Len(t, payload.CategoryBreakdown, len(models.AllIntentCategories))
	assert.Len(t, payload.TopConversations, 2)
}

func TestGetStatsFromBuckets(t *testing.T) {
	fake := newFakeDB()
	recorder := NewRecorderService(fake)
	dashboard := NewDashboardService(fake)
	dashboard.now = func() time.Time { return testNow }

	// Three days of real sessions, newest day last.
	days := []time.Time{testNow.AddDate(0, 0, -2), testNow.AddDate(0, 0, -1), testNow}
	for i, day := range days {
		day := day
		recorder.now = func() time.Time { return day }
		for j := 0; j <= i; j++ {
			s := testSession("user-1", models.PlatformInstagram, 2)
			require.NoError(t, recorder.RecordSession(context.Background(), s))
		}
	}

	payload, err := dashboard.GetStats(context.Background())
	require.NoError(t, err)

	// Today's bucket holds three sessions of two messages each.
	assert.Equal(t, 6, payload.Summary.TotalMessagesToday)
	assert.Equal(t, 3, payload.Summary.NewLeadsToday)
	assert.Equal(t, models.IntentLeadInquiry, payload.Summary.MostCommonCategory)
	assert.Equal(t, 1, payload.ActiveUsers)

	// Charts run oldest to newest.
	require.Len(t, payload.Charts.DailyMessages, 3)
	assert.Equal(t, []int{2, 4, 6}, []int{
		payload.Charts.DailyMessages[0].Value,
		payload.Charts.DailyMessages[1].Value,
		payload.Charts.DailyMessages[2].Value,
	})

	// The per-platform weekly series mirrors the same window.
	for _, series := range payload.Charts.WeeklyMessagesByPlatform {
		require.Len(t, series.Series, 3)
		if series.Platform == models.PlatformInstagram {
			assert.Equal(t, 6, series.Series[2].Value)
		} else {
			assert.Equal(t, 0, series.Series[2].Value)
		}
	}

	// Instagram carries all the traffic in the platform rows.
	for _, row := range payload.PlatformMetrics {
		if row.Platform == models.PlatformInstagram {
			assert.Equal(t, 6, row.Messages)
			assert.Equal(t, 3, row.Leads)
			assert.Equal(t, 1.5, row.AvgResponseTime)
		} else {
			assert.Zero(t, row.Messages)
		}
	}
}

func TestGetStatsStoreError(t *testing.T) {
	fake := newFakeDB()
	fake.listBucketsErr = errors.New("store down")
	dashboard := NewDashboardService(fake)

	payload, err := dashboard.GetStats(context.Background())
	assert.Error(t, err)
	assert.Nil(t, payload)
}

func TestTopConversationsDegradesToSeeds(t *testing.T) {
	fake := newFakeDB()
	fake.listConvosErr = errors.New("conversations unreachable")
	dashboard := NewDashboardService(fake)
	dashboard.now = func() time.Time { return testNow }

	payload, err := dashboard.GetStats(context.Background())
	require.NoError(t, err)
	assert.Len(t, payload.TopConversations, 2)
}

func TestTopConversationsCapped(t *testing.T) {
	fake := newFakeDB()
	for i := 0; i < 25; i++ {
		fake.conversations = append(fake.conversations, &models.ConversationRecord{
			ID:       "conv",
			Platform: models.PlatformWeb,
			UserID:   "u",
		})
	}
	dashboard := NewDashboardService(fake)
	dashboard.now = func() time.Time { return testNow }

	payload, err := dashboard.GetStats(context.Background())
	require.NoError(t, err)
	assert.Len(t, payload.TopConversations, topConversationLimit)
}

func TestAscendingWindow(t *testing.T) {
	buckets := []*models.DailyBucket{
		models.NewDailyBucket("2026-09-01"),
		models.NewDailyBucket("2026-08-31"),
		models.NewDailyBucket("2026-08-30"),
	}

	window := ascendingWindow(buckets, 2)
	require.Len(t, window, 2)
	assert.Equal(t, "2026-08-31", window[0].Date)
	assert.Equal(t, "2026-09-01", window[1].Date)

	window = ascendingWindow(buckets, 10)
	require.Len(t, window, 3)
	assert.Equal(t, "2026-08-30", window[0].Date)
}

func TestSeedBucketsInvariants(t *testing.T) {
	buckets := seedBuckets(testNow)
	require.Len(t, buckets, seedDays)

	// Newest first, like a store read.
	assert.Equal(t, shared.DayKey(testNow), buckets[0].Date)

	for _, bucket := range buckets {
		assert.Equal(t, bucket.ResponseSamples, bucket.IntentCounts.Total())

		platformMessages := 0
		for _, p := range models.AllPlatforms {
			platformMessages += bucket.Platforms.Get(p).Messages
		}
		assert.Equal(t, bucket.TotalMessagesToday, platformMessages)

		assert.Equal(t, bucket.NewLeadsToday, bucket.ConversionCount)
		assert.GreaterOrEqual(t, bucket.LearningEfficiency, 0.0)
		assert.LessOrEqual(t, bucket.LearningEfficiency, 1.0)
	}

	// The demo week is busier toward today.
	assert.Greater(t, buckets[0].TotalMessagesToday, buckets[seedDays-1].TotalMessagesToday)
}
