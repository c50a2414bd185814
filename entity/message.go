package entity

import "time"

// Message roles.
const (
	RoleUser   = "user"
	RoleBot    = "bot"
	RoleMaster = "master"
)

// Message is one append-only transcript entry. Ordering by CreatedAt
// reconstructs the full dialog including operator messages.
type Message struct {
	ID             string    `json:"id" bson:"_id"`
	ConversationID string    `json:"conversation_id" bson:"conversation_id"`
	Role           string    `json:"role" bson:"role"`
	Content        string    `json:"content" bson:"content"`
	StepName       string    `json:"step_name,omitempty" bson:"step_name,omitempty"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}
