package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/omnipulse/omnipulse/internal/models"
	"github.com/omnipulse/omnipulse/internal/shared"
)

// Seed data shown on brand-new installs so the dashboards render something
// sensible before the first session arrives. Buckets are synthesized by
// folding generated sessions, so every counter invariant holds in the demo
// data too.

const seedDays = 7

var seedSentiments = []float64{0.6, 0.2, -0.3, 0.0, 0.8, -0.1}

// seedBuckets returns seven synthetic day buckets ending today, ordered most
// recent first like a store read.
func seedBuckets(now time.Time) []*models.DailyBucket {
	buckets := make([]*models.DailyBucket, 0, seedDays)

	for offset := 0; offset < seedDays; offset++ {
		day := now.AddDate(0, 0, -offset)
		bucket := models.NewDailyBucket(shared.DayKey(day))

		// Busier toward the end of the demo week.
		sessions := 8 + (seedDays-1-offset)*3
		for i := 0; i < sessions; i++ {
			platform := models.AllPlatforms[i%len(models.AllPlatforms)]
			summary := &models.SessionSummary{
				Conversation: models.Conversation{
					Platform:       platform,
					IntentCategory: models.AllIntentCategories[i%len(models.AllIntentCategories)],
					ResponseType:   models.AllResponseTypes[i%len(models.AllResponseTypes)],
					SentimentScore: seedSentiments[i%len(seedSentiments)],
					UserID:         fmt.Sprintf("demo-%s-%d", platform, i%5),
					Messages:       make([]models.Message, 2+i%4),
				},
				IsLead:         i%4 == 0,
				ResponseTimeMs: int64(900 + 350*(i%5)),
				LeadScore:      float64(45 + 8*(i%6)),
			}
			bucket.Fold(summary)
		}

		buckets = append(buckets, bucket)
	}

	return buckets
}

// seedConversations returns the two placeholder conversations shown when the
// conversation store is empty.
func seedConversations(now time.Time) []*models.ConversationRecord {
	return []*models.ConversationRecord{
		{
			ID:             uuid.New().String(),
			Platform:       models.PlatformWhatsApp,
			UserID:         "demo-whatsapp-0",
			IntentCategory: models.IntentLeadInquiry,
			ResponseType:   models.ResponsePricing,
			SentimentScore: 0.6,
			MessageCount:   5,
			LastMessage:    "Thanks! Could you send over the pricing sheet?",
			CreatedAt:      now.Add(-15 * time.Minute),
		},
		{
			ID:             uuid.New().String(),
			Platform:       models.PlatformWeb,
			UserID:         "demo-web-1",
			IntentCategory: models.IntentDemoBooking,
			ResponseType:   models.ResponseDemo,
			SentimentScore: 0.3,
			MessageCount:   8,
			LastMessage:    "Tuesday afternoon works for the demo.",
			CreatedAt:      now.Add(-2 * time.Hour),
		},
	}
}
