package entity

import "time"

// Lead statuses. A lead starts as pending when the estimate is first
// shown and is promoted to new when the dialog completes.
const (
	LeadStatusPending   = "pending"
	LeadStatusNew       = "new"
	LeadStatusViewed    = "viewed"
	LeadStatusContacted = "contacted"
	LeadStatusWon       = "won"
	LeadStatusLost      = "lost"
)

// Lead is a durably recorded sales opportunity. At most one per
// conversation.
type Lead struct {
	ID             string `json:"id" bson:"_id"`
	ShopID         string `json:"shop_id" bson:"shop_id"`
	ConversationID string `json:"conversation_id" bson:"conversation_id"`

	CustomerName    string `json:"customer_name,omitempty" bson:"customer_name,omitempty"`
	CustomerPhone   string `json:"customer_phone,omitempty" bson:"customer_phone,omitempty"`
	CustomerContact string `json:"customer_contact,omitempty" bson:"customer_contact,omitempty"`

	DeviceCategory string `json:"device_category,omitempty" bson:"device_category,omitempty"`
	DeviceFullName string `json:"device_full_name,omitempty" bson:"device_full_name,omitempty"`
	ProblemSummary string `json:"problem_summary,omitempty" bson:"problem_summary,omitempty"`
	Urgency        string `json:"urgency,omitempty" bson:"urgency,omitempty"`

	EstimatedPriceMin float64 `json:"estimated_price_min,omitempty" bson:"estimated_price_min,omitempty"`
	EstimatedPriceMax float64 `json:"estimated_price_max,omitempty" bson:"estimated_price_max,omitempty"`

	Status      string `json:"status" bson:"status"`
	MasterNotes string `json:"master_notes,omitempty" bson:"master_notes,omitempty"`

	NotificationSent bool      `json:"notification_sent" bson:"notification_sent"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}

// Appointment statuses.
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
)

// Appointment is an optional visit slot derived from a lead's
// free-text preferred time.
type Appointment struct {
	ID              string    `json:"id" bson:"_id"`
	ShopID          string    `json:"shop_id" bson:"shop_id"`
	LeadID          string    `json:"lead_id" bson:"lead_id"`
	ScheduledAt     time.Time `json:"scheduled_at" bson:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes" bson:"duration_minutes"`
	Status          string    `json:"status" bson:"status"`
	ReminderSent    bool      `json:"reminder_sent" bson:"reminder_sent"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}
