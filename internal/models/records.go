package models

import "time"

// LeadTier is the qualitative bucket assigned to a lead record.
type LeadTier string

const (
	TierHot  LeadTier = "hot"
	TierWarm LeadTier = "warm"
	TierCold LeadTier = "cold"
)

// Lead is a qualified contact record owned by the CRM side of the system.
// This subsystem only reads it.
type Lead struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Platform  Platform  `json:"platform" bson:"platform"`
	Tier      LeadTier  `json:"tier,omitempty" bson:"tier,omitempty"`
	Score     float64   `json:"score" bson:"score"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// ConversationRecord is the stored form of a completed conversation, owned by
// the conversation store.
type ConversationRecord struct {
	ID             string         `json:"id" bson:"_id"`
	Platform       Platform       `json:"platform" bson:"platform"`
	UserID         string         `json:"user_id" bson:"user_id"`
	IntentCategory IntentCategory `json:"intent_category" bson:"intent_category"`
	ResponseType   ResponseType   `json:"response_type" bson:"response_type"`
	SentimentScore float64        `json:"sentiment_score" bson:"sentiment_score"`
	MessageCount   int            `json:"message_count" bson:"message_count"`
	LastMessage    string         `json:"last_message,omitempty" bson:"last_message,omitempty"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
}

// Follow-up, outreach and booking statuses used by the insight reductions.
const (
	FollowUpPending  = "pending"
	OutreachSent     = "sent"
	BookingConfirmed = "confirmed"
)

// FollowUp is a scheduled follow-up owned by the outreach subsystem.
type FollowUp struct {
	ID        string    `json:"id" bson:"_id"`
	LeadID    string    `json:"lead_id" bson:"lead_id"`
	Status    string    `json:"status" bson:"status"`
	DueAt     time.Time `json:"due_at" bson:"due_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// FollowUpLog records one follow-up message that was actually sent.
type FollowUpLog struct {
	ID      string    `json:"id" bson:"_id"`
	LeadID  string    `json:"lead_id" bson:"lead_id"`
	Channel Platform  `json:"channel" bson:"channel"`
	SentAt  time.Time `json:"sent_at" bson:"sent_at"`
}

// OutreachLog records one cold-outreach attempt and, when present, the reply.
type OutreachLog struct {
	ID        string     `json:"id" bson:"_id"`
	LeadID    string     `json:"lead_id" bson:"lead_id"`
	Status    string     `json:"status" bson:"status"`
	SentAt    time.Time  `json:"sent_at" bson:"sent_at"`
	RepliedAt *time.Time `json:"replied_at,omitempty" bson:"replied_at,omitempty"`
}

// Booking is a calendar booking owned by the booking subsystem.
type Booking struct {
	ID        string    `json:"id" bson:"_id"`
	LeadID    string    `json:"lead_id" bson:"lead_id"`
	Status    string    `json:"status" bson:"status"`
	StartsAt  time.Time `json:"starts_at" bson:"starts_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
