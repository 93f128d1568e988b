package models

// ChartPoint is one labeled value in a chart series.
type ChartPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// PlatformSeries is a per-platform time series.
type PlatformSeries struct {
	Platform Platform     `json:"platform"`
	Series   []ChartPoint `json:"series"`
}

// PlatformMetrics is the per-platform metric row of the operational
// dashboard. All rates use per-platform denominators.
type PlatformMetrics struct {
	Platform        Platform `json:"platform"`
	Messages        int      `json:"messages"`
	Leads           int      `json:"leads"`
	AvgResponseTime float64  `json:"avg_response_time"`
	AvgSentiment    float64  `json:"avg_sentiment"`
	ConversionRate  float64  `json:"conversion_rate"`
}

// DashboardSummary is the headline block of the operational dashboard,
// snapshotted from the most recent bucket.
type DashboardSummary struct {
	TotalMessagesToday int            `json:"total_messages_today"`
	NewLeadsToday      int            `json:"new_leads_today"`
	MostCommonCategory IntentCategory `json:"most_common_category"`
	AvgResponseTime    float64        `json:"avg_response_time"`
	ConversionRate     float64        `json:"conversion_rate"`
	AvgSentiment       float64        `json:"avg_sentiment"`
}

// DashboardCharts groups the chart series of the operational dashboard.
type DashboardCharts struct {
	DailyMessages            []ChartPoint     `json:"daily_messages"`
	WeeklyMessagesByPlatform []PlatformSeries `json:"weekly_messages_by_platform"`
	LeadsByPlatform          []ChartPoint     `json:"leads_by_platform"`
}

// DashboardPayload is the full operational summary view.
type DashboardPayload struct {
	Summary            DashboardSummary      `json:"summary"`
	Charts             DashboardCharts       `json:"charts"`
	PlatformMetrics    []PlatformMetrics     `json:"platform_metrics"`
	CategoryBreakdown  []ChartPoint          `json:"category_breakdown"`
	ActiveUsers        int                   `json:"active_users"`
	TopConversations   []*ConversationRecord `json:"top_conversations"`
	LearningEfficiency float64               `json:"learning_efficiency"`
}

// SentimentBuckets counts conversations by sentiment band.
type SentimentBuckets struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// LeadTierCounts counts leads per tier.
type LeadTierCounts struct {
	Hot  int `json:"hot"`
	Warm int `json:"warm"`
	Cold int `json:"cold"`
}

// FollowUpMetrics is the follow-up group of the lead-insight funnel.
type FollowUpMetrics struct {
	Sent        int     `json:"sent"`
	Pending     int     `json:"pending"`
	SuccessRate float64 `json:"success_rate"`
}

// OutreachMetrics is the outreach group of the lead-insight funnel.
type OutreachMetrics struct {
	Sent      int     `json:"sent"`
	Replies   int     `json:"replies"`
	ReplyRate float64 `json:"reply_rate"`
}

// ROIMetrics is the return-on-investment group of the lead-insight funnel.
type ROIMetrics struct {
	Bookings           int     `json:"bookings"`
	LearningEfficiency float64 `json:"learning_efficiency"`
}

// LeadInsightsPayload is the full lead-insight funnel view.
type LeadInsightsPayload struct {
	IntentBreakdown  []ChartPoint     `json:"intent_breakdown"`
	SentimentBuckets SentimentBuckets `json:"sentiment_buckets"`
	LeadTiers        LeadTierCounts   `json:"lead_tiers"`
	ConversionTrend  []ChartPoint     `json:"conversion_trend"`
	ResponseMix      []ChartPoint     `json:"response_mix"`
	FollowUp         FollowUpMetrics  `json:"follow_up"`
	Outreach         OutreachMetrics  `json:"outreach"`
	ROI              ROIMetrics       `json:"roi"`
}

// APIResponse is the standard HTTP response envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
