package models

import (
	"time"

	"github.com/omnipulse/omnipulse/internal/shared"
)

// Exponential moving average weights for the learning-efficiency metric.
const (
	learningDecay  = 0.6
	learningWeight = 0.4
)

// IntentCounts carries one counter per known intent category. The fixed shape
// means every bucket document always has all four keys present.
type IntentCounts struct {
	LeadInquiry int `json:"lead_inquiry" bson:"lead_inquiry"`
	Support     int `json:"support" bson:"support"`
	DemoBooking int `json:"demo_booking" bson:"demo_booking"`
	GeneralChat int `json:"general_chat" bson:"general_chat"`
}

// Add increments the counter for the given category. Unknown categories fold
// into General Chat so the category total always matches the session count.
func (c *IntentCounts) Add(category IntentCategory) {
	switch category {
	case IntentLeadInquiry:
		c.LeadInquiry++
	case IntentSupport:
		c.Support++
	case IntentDemoBooking:
		c.DemoBooking++
	default:
		c.GeneralChat++
	}
}

// Get returns the counter for a category.
func (c IntentCounts) Get(category IntentCategory) int {
	switch category {
	case IntentLeadInquiry:
		return c.LeadInquiry
	case IntentSupport:
		return c.Support
	case IntentDemoBooking:
		return c.DemoBooking
	default:
		return c.GeneralChat
	}
}

// Total returns the sum over all categories.
func (c IntentCounts) Total() int {
	return c.LeadInquiry + c.Support + c.DemoBooking + c.GeneralChat
}

// Top returns the category with the highest count. Ties resolve to the
// earliest category in the canonical order, so an all-zero bucket reports
// Lead Inquiry.
func (c IntentCounts) Top() IntentCategory {
	top := AllIntentCategories[0]
	best := c.Get(top)
	for _, category := range AllIntentCategories[1:] {
		if c.Get(category) > best {
			top = category
			best = c.Get(category)
		}
	}
	return top
}

// ResponseTypeCounts carries one counter per known response type.
type ResponseTypeCounts struct {
	Pricing    int `json:"pricing" bson:"pricing"`
	Onboarding int `json:"onboarding" bson:"onboarding"`
	Demo       int `json:"demo" bson:"demo"`
	Support    int `json:"support" bson:"support"`
	General    int `json:"general" bson:"general"`
}

// Add increments the counter for the given response type, folding unknown
// types into General.
func (c *ResponseTypeCounts) Add(rt ResponseType) {
	switch rt {
	case ResponsePricing:
		c.Pricing++
	case ResponseOnboarding:
		c.Onboarding++
	case ResponseDemo:
		c.Demo++
	case ResponseSupport:
		c.Support++
	default:
		c.General++
	}
}

// Get returns the counter for a response type.
func (c ResponseTypeCounts) Get(rt ResponseType) int {
	switch rt {
	case ResponsePricing:
		return c.Pricing
	case ResponseOnboarding:
		return c.Onboarding
	case ResponseDemo:
		return c.Demo
	case ResponseSupport:
		return c.Support
	default:
		return c.General
	}
}

// PlatformStats holds the per-platform slice of the day's counters. The shape
// mirrors the bucket-level fields, scoped to a single channel.
type PlatformStats struct {
	Messages            int             `json:"messages" bson:"messages"`
	Leads               int             `json:"leads" bson:"leads"`
	ResponseTimeTotalMs int64           `json:"response_time_total_ms" bson:"response_time_total_ms"`
	ResponseSamples     int             `json:"response_samples" bson:"response_samples"`
	SentimentTotal      float64         `json:"sentiment_total" bson:"sentiment_total"`
	SentimentSamples    int             `json:"sentiment_samples" bson:"sentiment_samples"`
	ConversionCount     int             `json:"conversion_count" bson:"conversion_count"`
	ActiveUsers         map[string]bool `json:"active_users" bson:"active_users"`
}

// AvgResponseTimeSec derives the average response time in seconds.
func (p PlatformStats) AvgResponseTimeSec() float64 {
	samples := p.ResponseSamples
	if samples < 1 {
		samples = 1
	}
	return shared.Round(float64(p.ResponseTimeTotalMs)/float64(samples)/1000, 1)
}

// AvgSentiment derives the average sentiment score.
func (p PlatformStats) AvgSentiment() float64 {
	samples := p.SentimentSamples
	if samples < 1 {
		samples = 1
	}
	return shared.Round(p.SentimentTotal/float64(samples), 1)
}

// ConversionRate derives the per-platform conversion rate against message
// volume on that channel.
func (p PlatformStats) ConversionRate() float64 {
	messages := p.Messages
	if messages < 1 {
		messages = 1
	}
	return shared.Round(float64(p.ConversionCount)/float64(messages), 2)
}

// PlatformBreakdown always carries all six platform slots, zero-filled.
type PlatformBreakdown struct {
	WhatsApp  PlatformStats `json:"whatsapp" bson:"whatsapp"`
	Facebook  PlatformStats `json:"facebook" bson:"facebook"`
	Instagram PlatformStats `json:"instagram" bson:"instagram"`
	Threads   PlatformStats `json:"threads" bson:"threads"`
	LinkedIn  PlatformStats `json:"linkedin" bson:"linkedin"`
	Web       PlatformStats `json:"web" bson:"web"`
}

// Get returns a mutable pointer to the slot for a platform. Unknown platform
// names land in the web slot, which is where widget traffic reports anyway.
func (b *PlatformBreakdown) Get(p Platform) *PlatformStats {
	switch p {
	case PlatformWhatsApp:
		return &b.WhatsApp
	case PlatformFacebook:
		return &b.Facebook
	case PlatformInstagram:
		return &b.Instagram
	case PlatformThreads:
		return &b.Threads
	case PlatformLinkedIn:
		return &b.LinkedIn
	default:
		return &b.Web
	}
}

// DailyBucket is the per-calendar-day aggregate document holding all running
// counters. It has exactly one writer role (the session recorder) and is
// replaced atomically by the store on every update.
type DailyBucket struct {
	Date     string `json:"date" bson:"_id"`
	Revision int64  `json:"-" bson:"revision"`

	TotalMessagesToday  int     `json:"total_messages_today" bson:"total_messages_today"`
	NewLeadsToday       int     `json:"new_leads_today" bson:"new_leads_today"`
	ResponseTimeTotalMs int64   `json:"response_time_total_ms" bson:"response_time_total_ms"`
	ResponseSamples     int     `json:"response_samples" bson:"response_samples"`
	SentimentTotal      float64 `json:"sentiment_total" bson:"sentiment_total"`
	SentimentSamples    int     `json:"sentiment_samples" bson:"sentiment_samples"`
	ConversionCount     int     `json:"conversion_count" bson:"conversion_count"`

	IntentCounts       IntentCounts       `json:"intent_counts" bson:"intent_counts"`
	ResponseTypeCounts ResponseTypeCounts `json:"response_type_counts" bson:"response_type_counts"`

	ActiveUsers map[string]bool   `json:"active_users" bson:"active_users"`
	Platforms   PlatformBreakdown `json:"platform_breakdown" bson:"platform_breakdown"`

	LearningEfficiency float64 `json:"learning_efficiency" bson:"learning_efficiency"`

	// Denormalized fields, recomputed on every write. Never mutated directly.
	MostCommonCategory IntentCategory `json:"most_common_category" bson:"most_common_category"`
	AvgResponseTime    float64        `json:"avg_response_time" bson:"avg_response_time"`
	ConversionRate     float64        `json:"conversion_rate" bson:"conversion_rate"`
}

// NewDailyBucket returns a zero-valued bucket for a day key.
func NewDailyBucket(date string) *DailyBucket {
	return &DailyBucket{
		Date:               date,
		ActiveUsers:        map[string]bool{},
		MostCommonCategory: IntentLeadInquiry,
	}
}

// Fold applies one completed session to the bucket and recomputes the
// denormalized fields. Callers must run Fold inside the store's
// read-modify-write boundary for the bucket's day key.
func (b *DailyBucket) Fold(s *SessionSummary) {
	messages := len(s.Conversation.Messages)

	b.TotalMessagesToday += messages
	if s.IsLead {
		b.NewLeadsToday++
		b.ConversionCount++
	}
	b.ResponseSamples++
	b.ResponseTimeTotalMs += s.ResponseTimeMs
	b.SentimentSamples++
	b.SentimentTotal += s.Conversation.SentimentScore
	b.IntentCounts.Add(s.Conversation.IntentCategory)
	b.ResponseTypeCounts.Add(s.Conversation.ResponseType)

	if b.ActiveUsers == nil {
		b.ActiveUsers = map[string]bool{}
	}
	b.ActiveUsers[s.Conversation.UserID] = true

	stats := b.Platforms.Get(s.Conversation.Platform)
	stats.Messages += messages
	if s.IsLead {
		stats.Leads++
		stats.ConversionCount++
	}
	stats.ResponseSamples++
	stats.ResponseTimeTotalMs += s.ResponseTimeMs
	stats.SentimentSamples++
	stats.SentimentTotal += s.Conversation.SentimentScore
	if stats.ActiveUsers == nil {
		stats.ActiveUsers = map[string]bool{}
	}
	stats.ActiveUsers[s.Conversation.UserID] = true

	// Lead scores outside [0,100] are clamped before smoothing so the
	// moving average stays inside [0,1].
	score := s.LeadScore
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	b.LearningEfficiency = shared.Round(learningDecay*b.LearningEfficiency+learningWeight*score/100, 3)

	b.recomputeDerived()
}

// recomputeDerived refreshes the read-side convenience fields from the raw
// counters. ConversionRate divides by session count, not message volume.
func (b *DailyBucket) recomputeDerived() {
	b.MostCommonCategory = b.IntentCounts.Top()

	samples := b.ResponseSamples
	if samples < 1 {
		samples = 1
	}
	b.AvgResponseTime = shared.Round(float64(b.ResponseTimeTotalMs)/float64(samples)/1000, 1)
	b.ConversionRate = shared.Round(float64(b.ConversionCount)/float64(samples), 2)
}

// AvgSentiment derives the day's average sentiment score.
func (b *DailyBucket) AvgSentiment() float64 {
	samples := b.SentimentSamples
	if samples < 1 {
		samples = 1
	}
	return shared.Round(b.SentimentTotal/float64(samples), 1)
}

// LatestSnapshot is a denormalized copy of the current day's bucket, kept
// under a fixed key so "today" reads do not need to know the day key.
type LatestSnapshot struct {
	ID        string      `json:"-" bson:"_id"`
	Bucket    DailyBucket `json:"bucket" bson:"bucket"`
	UpdatedAt time.Time   `json:"updated_at" bson:"updated_at"`
}

// SnapshotID is the fixed document key of the latest snapshot.
const SnapshotID = "latest"
