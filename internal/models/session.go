package models

import (
	"fmt"
	"time"
)

// Platform identifies one of the supported conversation channels.
type Platform string

const (
	PlatformWhatsApp  Platform = "whatsapp"
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformThreads   Platform = "threads"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformWeb       Platform = "web"
)

// AllPlatforms is the canonical platform order used for charts and breakdowns.
var AllPlatforms = []Platform{
	PlatformWhatsApp,
	PlatformFacebook,
	PlatformInstagram,
	PlatformThreads,
	PlatformLinkedIn,
	PlatformWeb,
}

// IntentCategory classifies the purpose of a conversation.
type IntentCategory string

const (
	IntentLeadInquiry IntentCategory = "Lead Inquiry"
	IntentSupport     IntentCategory = "Support"
	IntentDemoBooking IntentCategory = "Demo Booking"
	IntentGeneralChat IntentCategory = "General Chat"
)

// AllIntentCategories is the canonical category order. The first entry wins
// ties when picking the most common category.
var AllIntentCategories = []IntentCategory{
	IntentLeadInquiry,
	IntentSupport,
	IntentDemoBooking,
	IntentGeneralChat,
}

// ResponseType classifies the assistant's reply style.
type ResponseType string

const (
	ResponsePricing    ResponseType = "Pricing"
	ResponseOnboarding ResponseType = "Onboarding"
	ResponseDemo       ResponseType = "Demo"
	ResponseSupport    ResponseType = "Support"
	ResponseGeneral    ResponseType = "General"
)

// AllResponseTypes is the canonical response-type order.
var AllResponseTypes = []ResponseType{
	ResponsePricing,
	ResponseOnboarding,
	ResponseDemo,
	ResponseSupport,
	ResponseGeneral,
}

// Message is a single turn inside a conversation.
type Message struct {
	Role      string    `json:"role" bson:"role"`
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
}

// Conversation is the conversation part of a completed session.
type Conversation struct {
	Platform       Platform       `json:"platform" bson:"platform"`
	IntentCategory IntentCategory `json:"intent_category" bson:"intent_category"`
	ResponseType   ResponseType   `json:"response_type" bson:"response_type"`
	SentimentScore float64        `json:"sentiment_score" bson:"sentiment_score"`
	UserID         string         `json:"user_id" bson:"user_id"`
	Messages       []Message      `json:"messages" bson:"messages"`
}

// SessionSummary is the unit ingested by the session recorder: one completed
// conversation turn-cycle produced by the reply engine. Immutable once
// submitted and consumed exactly once.
type SessionSummary struct {
	Conversation   Conversation `json:"conversation" bson:"conversation"`
	IsLead         bool         `json:"is_lead" bson:"is_lead"`
	ResponseTimeMs int64        `json:"response_time_ms" bson:"response_time_ms"`
	LeadScore      float64      `json:"lead_score" bson:"lead_score"`
}

// Validate checks the fields the recorder depends on.
func (s *SessionSummary) Validate() error {
	if s.Conversation.UserID == "" {
		return fmt.Errorf("session summary missing user_id")
	}
	if s.Conversation.Platform == "" {
		return fmt.Errorf("session summary missing platform")
	}
	if s.ResponseTimeMs < 0 {
		return fmt.Errorf("negative response time: %d", s.ResponseTimeMs)
	}
	return nil
}
