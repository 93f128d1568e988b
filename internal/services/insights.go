package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/omnipulse/omnipulse/internal/db"
	"github.com/omnipulse/omnipulse/internal/logger"
	"github.com/omnipulse/omnipulse/internal/models"
	"github.com/omnipulse/omnipulse/internal/shared"
)

const (
	leadScanLimit         = 400
	conversationScanLimit = 400
	trendDays             = 7
	logScanLimit          = 200

	// Sentiment band thresholds for conversation scoring.
	sentimentPositive = 0.3
	sentimentNegative = -0.3
)

// LeadInsightService assembles the lead-insight funnel from bounded parallel
// scans across the externally-owned record sets plus the day buckets.
type LeadInsightService struct {
	db db.Database
}

// NewLeadInsightService creates a new lead-insight assembler.
func NewLeadInsightService(database db.Database) *LeadInsightService {
	return &LeadInsightService{db: database}
}

// GetLeadInsights fans out seven independent scans under one cancellable
// context and reduces whatever succeeded. The call fails outright only when a
// majority of scans fail; otherwise the payload carries zeroed groups for the
// failures and the error is a *shared.PartialDataError.
func (s *LeadInsightService) GetLeadInsights(ctx context.Context) (*models.LeadInsightsPayload, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		leads         []*models.Lead
		conversations []*models.ConversationRecord
		buckets       []*models.DailyBucket
		pending       int
		followUpLogs  []*models.FollowUpLog
		outreachLogs  []*models.OutreachLog
		bookings      []*models.Booking
	)

	scans := []struct {
		name string
		run  func() error
	}{
		{"leads", func() (err error) {
			leads, err = s.db.ListLeads(ctx, leadScanLimit)
			return
		}},
		{"conversations", func() (err error) {
			conversations, err = s.db.ListConversations(ctx, conversationScanLimit)
			return
		}},
		{"buckets", func() (err error) {
			buckets, err = s.db.ListDailyBuckets(ctx, trendDays)
			return
		}},
		{"pending follow-ups", func() (err error) {
			pending, err = s.db.CountPendingFollowUps(ctx)
			return
		}},
		{"follow-up logs", func() (err error) {
			followUpLogs, err = s.db.ListFollowUpLogs(ctx, logScanLimit)
			return
		}},
		{"outreach logs", func() (err error) {
			outreachLogs, err = s.db.ListOutreachLogs(ctx, logScanLimit)
			return
		}},
		{"bookings", func() (err error) {
			bookings, err = s.db.ListBookings(ctx, logScanLimit)
			return
		}},
	}

	errs := make([]error, len(scans))
	var wg sync.WaitGroup
	for i := range scans {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = scans[i].run()
		}(i)
	}
	wg.Wait()

	var failed []string
	for i, err := range errs {
		if err != nil {
			logger.Warning("Lead insight scan %q failed: %v", scans[i].name, err)
			failed = append(failed, scans[i].name)
		}
	}
	if len(failed) > len(scans)/2 {
		return nil, fmt.Errorf("lead insights unavailable: %d of %d scans failed", len(failed), len(scans))
	}

	payload := &models.LeadInsightsPayload{
		LeadTiers:       reduceLeadTiers(leads),
		FollowUp:        reduceFollowUps(len(followUpLogs), pending),
		Outreach:        reduceOutreach(outreachLogs),
		ROI:             reduceROI(bookings, buckets),
		ConversionTrend: conversionTrend(buckets),
	}
	payload.IntentBreakdown, payload.ResponseMix, payload.SentimentBuckets = reduceConversations(conversations)

	if len(failed) > 0 {
		return payload, &shared.PartialDataError{Scans: failed}
	}
	return payload, nil
}

// reduceLeadTiers counts leads per tier, defaulting unknown or missing tiers
// to warm.
func reduceLeadTiers(leads []*models.Lead) models.LeadTierCounts {
	var tiers models.LeadTierCounts
	for _, lead := range leads {
		switch lead.Tier {
		case models.TierHot:
			tiers.Hot++
		case models.TierCold:
			tiers.Cold++
		default:
			tiers.Warm++
		}
	}
	return tiers
}

// reduceConversations builds the intent and response-type frequency maps plus
// the sentiment bands over the scanned conversations.
func reduceConversations(conversations []*models.ConversationRecord) ([]models.ChartPoint, []models.ChartPoint, models.SentimentBuckets) {
	var intents models.IntentCounts
	var responses models.ResponseTypeCounts
	var bands models.SentimentBuckets

	for _, conv := range conversations {
		intents.Add(conv.IntentCategory)
		responses.Add(conv.ResponseType)
		switch {
		case conv.SentimentScore > sentimentPositive:
			bands.Positive++
		case conv.SentimentScore < sentimentNegative:
			bands.Negative++
		default:
			bands.Neutral++
		}
	}

	intentPoints := make([]models.ChartPoint, 0, len(models.AllIntentCategories))
	for _, category := range models.AllIntentCategories {
		intentPoints = append(intentPoints, models.ChartPoint{Label: string(category), Value: intents.Get(category)})
	}

	responsePoints := make([]models.ChartPoint, 0, len(models.AllResponseTypes))
	for _, rt := range models.AllResponseTypes {
		responsePoints = append(responsePoints, models.ChartPoint{Label: string(rt), Value: responses.Get(rt)})
	}

	return intentPoints, responsePoints, bands
}

// conversionTrend maps the bucket window to an ascending new-leads series.
func conversionTrend(buckets []*models.DailyBucket) []models.ChartPoint {
	window := ascendingWindow(buckets, trendDays)
	trend := make([]models.ChartPoint, len(window))
	for i, bucket := range window {
		trend[i] = models.ChartPoint{Label: shared.DayLabel(bucket.Date), Value: bucket.NewLeadsToday}
	}
	return trend
}

func reduceFollowUps(sent, pending int) models.FollowUpMetrics {
	total := sent + pending
	if total < 1 {
		total = 1
	}
	return models.FollowUpMetrics{
		Sent:        sent,
		Pending:     pending,
		SuccessRate: shared.Round(float64(sent)/float64(total), 2),
	}
}

func reduceOutreach(logs []*models.OutreachLog) models.OutreachMetrics {
	var sent, replies int
	for _, entry := range logs {
		if entry.Status == models.OutreachSent {
			sent++
		}
		if entry.RepliedAt != nil {
			replies++
		}
	}
	denom := sent
	if denom < 1 {
		denom = 1
	}
	return models.OutreachMetrics{
		Sent:      sent,
		Replies:   replies,
		ReplyRate: shared.Round(float64(replies)/float64(denom), 2),
	}
}

// reduceROI counts confirmed bookings and averages learning efficiency across
// the bucket window, 0 when no buckets exist.
func reduceROI(bookings []*models.Booking, buckets []*models.DailyBucket) models.ROIMetrics {
	var confirmed int
	for _, booking := range bookings {
		if booking.Status == models.BookingConfirmed {
			confirmed++
		}
	}

	var efficiency float64
	if len(buckets) > 0 {
		var total float64
		for _, bucket := range buckets {
			total += bucket.LearningEfficiency
		}
		efficiency = shared.Round(total/float64(len(buckets)), 3)
	}

	return models.ROIMetrics{
		Bookings:           confirmed,
		LearningEfficiency: efficiency,
	}
}
