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

func insightsFixture() *fakeDB {
	fake := newFakeDB()

	fake.leads = []*models.Lead{
		{ID: "l1", Tier: models.TierHot},
		{ID: "l2", Tier: models.TierHot},
		{ID: "l3", Tier: models.TierWarm},
		{ID: "l4", Tier: models.TierCold},
		{ID: "l5"}, // untiered
	}

	fake.conversations = []*models.ConversationRecord{
		{IntentCategory: models.IntentLeadInquiry, ResponseType: models.ResponsePricing, SentimentScore: 0.5},
		{IntentCategory: models.IntentSupport, ResponseType: models.ResponseSupport, SentimentScore: 0.3},
		{IntentCategory: models.IntentSupport, ResponseType: models.ResponseGeneral, SentimentScore: -0.3},
		{IntentCategory: models.IntentDemoBooking, ResponseType: models.ResponseDemo, SentimentScore: -0.6},
	}

	fake.pending = 3
	fake.followUpLogs = []*models.FollowUpLog{
		{ID: "f1"}, {ID: "f2"},
	}

	replied := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	fake.outreachLogs = []*models.OutreachLog{
		{ID: "o1", Status: models.OutreachSent, RepliedAt: &replied},
		{ID: "o2", Status: models.OutreachSent},
		{ID: "o3", Status: "queued"},
	}

	fake.bookings = []*models.Booking{
		{ID: "b1", Status: models.BookingConfirmed},
		{ID: "b2", Status: models.BookingConfirmed},
		{ID: "b3", Status: "cancelled"},
	}

	b1 := models.NewDailyBucket("2026-08-31")
	b1.NewLeadsToday = 4
	b1.LearningEfficiency = 0.5
	b2 := models.NewDailyBucket("2026-09-01")
	b2.NewLeadsToday = 6
	b2.LearningEfficiency = 0.7
	fake.buckets[b1.Date] = b1
	fake.buckets[b2.Date] = b2

	return fake
}

func TestGetLeadInsights(t *testing.T) {
	fake := insightsFixture()
	insights := NewLeadInsightService(fake)

	payload, err := insights.GetLeadInsights(context.Background())
	require.NoError(t, err)
	require.NotNil(t, payload)

	assert.Equal(t, models.LeadTierCounts{Hot: 2, Warm: 2, Cold: 1}, payload.LeadTiers)

	// Band boundaries are exclusive: 0.3 and -0.3 are both neutral.
	assert.Equal(t, models.SentimentBuckets{Positive: 1, Neutral: 2, Negative: 1}, payload.SentimentBuckets)

	require.Len(t, payload.IntentBreakdown, len(models.AllIntentCategories))
	assert.Equal(t, "Support", payload.IntentBreakdown[1].Label)
	assert.Equal(t, 2, payload.IntentBreakdown[1].Value)

	require.Len(t, payload.ResponseMix, len(models.AllResponseTypes))

	// Trend runs oldest to newest.
	require.Len(t, payload.ConversionTrend, 2)
	assert.Equal(t, 4, payload.ConversionTrend[0].Value)
	assert.Equal(t, 6, payload.ConversionTrend[1].Value)

	assert.Equal(t, models.FollowUpMetrics{Sent: 2, Pending: 3, SuccessRate: 0.4}, payload.FollowUp)
	assert.Equal(t, models.OutreachMetrics{Sent: 2, Replies: 1, ReplyRate: 0.5}, payload.Outreach)
	assert.Equal(t, models.ROIMetrics{Bookings: 2, LearningEfficiency: 0.6}, payload.ROI)
}

func TestGetLeadInsightsPartial(t *testing.T) {
	fake := insightsFixture()
	fake.listLeadsErr = errors.New("leads unreachable")
	fake.listOutreachErr = errors.New("outreach unreachable")
	insights := NewLeadInsightService(fake)

	payload, err := insights.GetLeadInsights(context.Background())

	var partial *shared.PartialDataError
	require.True(t, errors.As(err, &partial))
	assert.ElementsMatch(t, []string{"leads", "outreach logs"}, partial.Scans)

	// Failed groups come back zeroed; the rest is intact.
	require.NotNil(t, payload)
	assert.Equal(t, models.LeadTierCounts{}, payload.LeadTiers)
	assert.Equal(t, models.OutreachMetrics{Sent: 0, Replies: 0, ReplyRate: 0}, payload.Outreach)
	assert.Equal(t, 2, payload.ROI.Bookings)
	assert.Equal(t, 1, payload.SentimentBuckets.Positive)
}

func TestGetLeadInsightsMajorityFailure(t *testing.T) {
	fake := insightsFixture()
	fake.listLeadsErr = errors.New("down")
	fake.listConvosErr = errors.New("down")
	fake.listBucketsErr = errors.New("down")
	fake.countPendingErr = errors.New("down")

	insights := NewLeadInsightService(fake)
	payload, err := insights.GetLeadInsights(context.Background())

	require.Error(t, err)
	assert.Nil(t, payload)

	var partial *shared.PartialDataError
	assert.False(t, errors.As(err, &partial))
}

func TestGetLeadInsightsEmptyStore(t *testing.T) {
	fake := newFakeDB()
	insights := NewLeadInsightService(fake)

	payload, err := insights.GetLeadInsights(context.Background())
	require.NoError(t, err)

	// Empty record sets are not failures; everything is just zero.
	assert.Equal(t, models.LeadTierCounts{}, payload.LeadTiers)
	assert.Equal(t, 0.0, payload.FollowUp.SuccessRate)
	assert.Equal(t, 0.0, payload.Outreach.ReplyRate)
	assert.Empty(t, payload.ConversionTrend)
}

func TestReduceFollowUps(t *testing.T) {
	testcases := []struct {
		name     string
		sent     int
		pending  int
		wantRate float64
	}{
		{"even-split", 5, 5, 0.5},
		{"all-sent", 4, 0, 1.0},
		{"all-pending", 0, 7, 0.0},
		{"empty", 0, 0, 0.0},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			got := reduceFollowUps(tc.sent, tc.pending)
			assert.Equal(t, tc.sent, got.Sent)
			assert.Equal(t, tc.pending, got.Pending)
			assert.Equal(t, tc.wantRate, got.SuccessRate)
		})
	}
}

func TestReduceLeadTiersDefaultsToWarm(t *testing.T) {
	leads := []*models.Lead{
		{Tier: models.TierHot},
		{Tier: "unknown"},
		{},
	}

	got := reduceLeadTiers(leads)
	assert.Equal(t, models.LeadTierCounts{Hot: 1, Warm: 2}, got)
}

func TestReduceROIEmptyBuckets(t *testing.T) {
	got := reduceROI(nil, nil)
	assert.Equal(t, models.ROIMetrics{Bookings: 0, LearningEfficiency: 0}, got)
}
