package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeSession(platform Platform, intent IntentCategory, rt ResponseType, userID string, messages int) *SessionSummary {
	return &SessionSummary{
		Conversation: Conversation{
			Platform:       platform,
			IntentCategory: intent,
			ResponseType:   rt,
			SentimentScore: 0.5,
			UserID:         userID,
			Messages:       make([]Message, messages),
		},
		IsLead:         false,
		ResponseTimeMs: 2000,
		LeadScore:      50,
	}
}

func TestFoldSingleSession(t *testing.T) {
	bucket := NewDailyBucket("2026-09-01")

	s := makeSession(PlatformWhatsApp, IntentLeadInquiry, ResponsePricing, "user-1", 4)
	s.IsLead = true
	bucket.Fold(s)

	assert.Equal(t, 4, bucket.TotalMessagesToday)
	assert.Equal(t, 1, bucket.NewLeadsToday)
	assert.Equal(t, 1, bucket.ConversionCount)
	assert.Equal(t, 1, bucket.ResponseSamples)
	assert.Equal(t, int64(2000), bucket.ResponseTimeTotalMs)
	assert.Equal(t, 1, bucket.SentimentSamples)
	assert.Equal(t, 0.5, bucket.SentimentTotal)
	assert.Equal(t, 1, bucket.IntentCounts.LeadInquiry)
	assert.Equal(t, 1, bucket.ResponseTypeCounts.Pricing)
	assert.True(t, bucket.ActiveUsers["user-1"])

	whatsapp := bucket.Platforms.Get(PlatformWhatsApp)
	assert.Equal(t, 4, whatsapp.Messages)
	assert.Equal(t, 1, whatsapp.Leads)
	assert.Equal(t, 1, whatsapp.ConversionCount)
	assert.True(t, whatsapp.ActiveUsers["user-1"])

	// Derived fields after a single 2s, lead session.
	assert.Equal(t, IntentLeadInquiry, bucket.MostCommonCategory)
	assert.Equal(t, 2.0, bucket.AvgResponseTime)
	assert.Equal(t, 1.0, bucket.ConversionRate)
	assert.Equal(t, 0.5, bucket.AvgSentiment())
}

func TestFoldActiveUserDedup(t *testing.T) {
	bucket := NewDailyBucket("2026-09-01")

	for i := 0; i < 3; i++ {
		bucket.Fold(makeSession(PlatformWeb, IntentSupport, ResponseSupport, "repeat-user", 2))
	}

	assert.Len(t, bucket.ActiveUsers, 1)
	assert.Len(t, bucket.Platforms.Web.ActiveUsers, 1)
	assert.Equal(t, 3, bucket.ResponseSamples)
	assert.Equal(t, 6, bucket.TotalMessagesToday)
}

func TestFoldUnknownValues(t *testing.T) {
	bucket := NewDailyBucket("2026-09-01")

	s := makeSession(Platform("telegram"), IntentCategory("Gossip"), ResponseType("Sales"), "user-2", 1)
	bucket.Fold(s)

	// Unknown values fold into the catch-all slots instead of being dropped,
	// so the totals still reconcile with the session count.
	assert.Equal(t, 1, bucket.IntentCounts.GeneralChat)
	assert.Equal(t, 1, bucket.ResponseTypeCounts.General)
	assert.Equal(t, 1, bucket.Platforms.Web.Messages)
	assert.Equal(t, bucket.ResponseSamples, bucket.IntentCounts.Total())
}

func TestFoldCategoryTotalMatchesSessions(t *testing.T) {
	bucket := NewDailyBucket("2026-09-01")

	sessions := 25
	for i := 0; i < sessions; i++ {
		intent := AllIntentCategories[i%len(AllIntentCategories)]
		bucket.Fold(makeSession(AllPlatforms[i%len(AllPlatforms)], intent, ResponseGeneral, "user", 3))
	}

	assert.Equal(t, sessions, bucket.IntentCounts.Total())
	assert.Equal(t, sessions, bucket.ResponseSamples)
	assert.Equal(t, sessions*3, bucket.TotalMessagesToday)

	platformMessages := 0
	for _, p := range AllPlatforms {
		platformMessages += bucket.Platforms.Get(p).Messages
	}
	assert.Equal(t, bucket.TotalMessagesToday, platformMessages)
}

func TestLearningEfficiencyEMA(t *testing.T) {
	bucket := NewDailyBucket("2026-09-01")

	s := makeSession(PlatformWeb, IntentGeneralChat, ResponseGeneral, "u", 1)
	s.LeadScore = 50
	bucket.Fold(s)
	assert.Equal(t, 0.2, bucket.LearningEfficiency)

	s.LeadScore = 100
	bucket.Fold(s)
	assert.Equal(t, 0.52, bucket.LearningEfficiency)
}

func TestLearningEfficiencyClamp(t *testing.T) {
	testcases := []struct {
		name  string
		score float64
		want  float64
	}{
		{"over-100-clamps", 250, 0.4},
		{"negative-clamps", -30, 0.0},
		{"boundary-100", 100, 0.4},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			bucket := NewDailyBucket("2026-09-01")
			s := makeSession(PlatformWeb, IntentGeneralChat, ResponseGeneral, "u", 1)
			s.LeadScore = tc.score
			bucket.Fold(s)
			assert.Equal(t, tc.want, bucket.LearningEfficiency)
		})
	}
}

func TestIntentCountsTop(t *testing.T) {
	testcases := []struct {
		name   string
		counts IntentCounts
		want   IntentCategory
	}{
		{"all-zero", IntentCounts{}, IntentLeadInquiry},
		{"clear-winner", IntentCounts{Support: 5, GeneralChat: 2}, IntentSupport},
		{"tie-resolves-canonical", IntentCounts{Support: 3, DemoBooking: 3}, IntentSupport},
		{"general-chat-wins", IntentCounts{LeadInquiry: 1, GeneralChat: 4}, IntentGeneralChat},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.counts.Top())
		})
	}
}

func TestPlatformStatsDerived(t *testing.T) {
	stats := PlatformStats{
		Messages:            10,
		ResponseTimeTotalMs: 4500,
		ResponseSamples:     3,
		SentimentTotal:      1.2,
		SentimentSamples:    3,
		ConversionCount:     2,
	}

	assert.Equal(t, 1.5, stats.AvgResponseTimeSec())
	assert.Equal(t, 0.4, stats.AvgSentiment())
	assert.Equal(t, 0.2, stats.ConversionRate())
}

func TestPlatformStatsZeroSamples(t *testing.T) {
	var stats PlatformStats

	assert.Equal(t, 0.0, stats.AvgResponseTimeSec())
	assert.Equal(t, 0.0, stats.AvgSentiment())
	assert.Equal(t, 0.0, stats.ConversionRate())
}

func TestConversionRateUsesSessionCount(t *testing.T) {
	bucket := NewDailyBucket("2026-09-01")

	// Two sessions with many messages each, one lead. The rate is per
	// session, so message volume must not dilute it.
	lead := makeSession(PlatformWhatsApp, IntentLeadInquiry, ResponsePricing, "a", 20)
	lead.IsLead = true
	bucket.Fold(lead)
	bucket.Fold(makeSession(PlatformWeb, IntentSupport, ResponseSupport, "b", 20))

	assert.Equal(t, 0.5, bucket.ConversionRate)
}

func TestSessionSummaryValidate(t *testing.T) {
	testcases := []struct {
		name    string
		mutate  func(*SessionSummary)
		wantErr bool
	}{
		{"valid", func(s *SessionSummary) {}, false},
		{"missing-user", func(s *SessionSummary) { s.Conversation.UserID = "" }, true},
		{"missing-platform", func(s *SessionSummary) { s.Conversation.Platform = "" }, true},
		{"negative-response-time", func(s *SessionSummary) { s.ResponseTimeMs = -1 }, true},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			s := makeSession(PlatformWeb, IntentSupport, ResponseSupport, "user", 1)
			tc.mutate(s)
			err := s.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
