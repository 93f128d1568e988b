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

const (
	dashboardBucketWindow = 14
	chartDays             = 7
	topConversationLimit  = 10
)

// DashboardService assembles the operational summary view from recent day
// buckets. It is a pure reader and may run concurrently with any number of
// in-flight RecordSession calls.
type DashboardService struct {
	db  db.Database
	now func() time.Time
}

// NewDashboardService creates a new dashboard assembler.
func NewDashboardService(database db.Database) *DashboardService {
	return &DashboardService{db: database, now: time.Now}
}

// GetStats builds the operational dashboard payload. An empty bucket store is
// not an error: the payload degrades to seeded demo data.
func (s *DashboardService) GetStats(ctx context.Context) (*models.DashboardPayload, error) {
	buckets, err := s.db.ListDailyBuckets(ctx, dashboardBucketWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load day buckets: %w", err)
	}
	if len(buckets) == 0 {
		buckets = seedBuckets(s.now())
	}

	latest := buckets[0]

	week := ascendingWindow(buckets, chartDays)

	daily := make([]models.ChartPoint, len(week))
	for i, bucket := range week {
		daily[i] = models.ChartPoint{Label: shared.DayLabel(bucket.Date), Value: bucket.TotalMessagesToday}
	}

	weekly := make([]models.PlatformSeries, 0, len(models.AllPlatforms))
	for _, platform := range models.AllPlatforms {
		series := make([]models.ChartPoint, len(week))
		for i, bucket := range week {
			series[i] = models.ChartPoint{
				Label: shared.DayLabel(bucket.Date),
				Value: bucket.Platforms.Get(platform).Messages,
			}
		}
		weekly = append(weekly, models.PlatformSeries{Platform: platform, Series: series})
	}

	leadsByPlatform := make([]models.ChartPoint, 0, len(models.AllPlatforms))
	platformMetrics := make([]models.PlatformMetrics, 0, len(models.AllPlatforms))
	for _, platform := range models.AllPlatforms {
		stats := latest.Platforms.Get(platform)
		leadsByPlatform = append(leadsByPlatform, models.ChartPoint{Label: string(platform), Value: stats.Leads})
		platformMetrics = append(platformMetrics, models.PlatformMetrics{
			Platform:        platform,
			Messages:        stats.Messages,
			Leads:           stats.Leads,
			AvgResponseTime: stats.AvgResponseTimeSec(),
			AvgSentiment:    stats.AvgSentiment(),
			ConversionRate:  stats.ConversionRate(),
		})
	}

	categories := make([]models.ChartPoint, 0, len(models.AllIntentCategories))
	for _, category := range models.AllIntentCategories {
		categories = append(categories, models.ChartPoint{
			Label: string(category),
			Value: latest.IntentCounts.Get(category),
		})
	}

	return &models.DashboardPayload{
		Summary: models.DashboardSummary{
			TotalMessagesToday: latest.TotalMessagesToday,
			NewLeadsToday:      latest.NewLeadsToday,
			MostCommonCategory: latest.MostCommonCategory,
			AvgResponseTime:    latest.AvgResponseTime,
			ConversionRate:     latest.ConversionRate,
			AvgSentiment:       latest.AvgSentiment(),
		},
		Charts: models.DashboardCharts{
			DailyMessages:            daily,
			WeeklyMessagesByPlatform: weekly,
			LeadsByPlatform:          leadsByPlatform,
		},
		PlatformMetrics:    platformMetrics,
		CategoryBreakdown:  categories,
		ActiveUsers:        len(latest.ActiveUsers),
		TopConversations:   s.topConversations(ctx),
		LearningEfficiency: latest.LearningEfficiency,
	}, nil
}

// topConversations pages the most recent conversations, degrading to seed
// data when the externally-owned store is empty or unreachable.
func (s *DashboardService) topConversations(ctx context.Context) []*models.ConversationRecord {
	conversations, err := s.db.ListConversations(ctx, topConversationLimit)
	if err != nil {
		logger.Warning("Failed to list conversations for dashboard: %v", err)
		conversations = nil
	}
	if len(conversations) == 0 {
		return seedConversations(s.now())
	}
	if len(conversations) > topConversationLimit {
		conversations = conversations[:topConversationLimit]
	}
	return conversations
}

// ascendingWindow takes up to n buckets from a date-descending list and
// returns them oldest first for chart rendering.
func ascendingWindow(buckets []*models.DailyBucket, n int) []*models.DailyBucket {
	if len(buckets) > n {
		buckets = buckets[:n]
	}
	window := make([]*models.DailyBucket, len(buckets))
	for i, bucket := range buckets {
		window[len(buckets)-1-i] = bucket
	}
	return window
}
