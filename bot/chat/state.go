package chat

import "AutoLead/ai/nlu"

// Step identifies a stage of the intake funnel.
type Step string

const (
	StepGreeting    Step = "greeting"
	StepDeviceType  Step = "device_type"
	StepDeviceModel Step = "device_model"
	StepProblem     Step = "problem"
	// Retired steps kept in the order so stored sessions from older
	// funnel versions still deserialize and skip past them.
	StepPreviousRepair Step = "previous_repair"
	StepUrgency        Step = "urgency"
	StepEstimate       Step = "estimate"
	StepContactInfo    Step = "contact_info"
	StepCompleted      Step = "completed"
)

var stepOrder = []Step{
	StepGreeting,
	StepDeviceType,
	StepDeviceModel,
	StepProblem,
	StepPreviousRepair,
	StepUrgency,
	StepEstimate,
	StepContactInfo,
	StepCompleted,
}

// next returns the step that follows s in funnel order.
func (s Step) next() (Step, bool) {
	for i, step := range stepOrder {
		if step == s && i+1 < len(stepOrder) {
			return stepOrder[i+1], true
		}
	}
	return "", false
}

// MaxHistory bounds the sliding dialog window passed to extraction.
const MaxHistory = 6

// CollectedData accumulates everything learned during one dialog.
// Zero value means not collected yet.
type CollectedData struct {
	DeviceCategory     string `json:"device_category,omitempty"`
	DeviceBrand        string `json:"device_brand,omitempty"`
	DeviceModel        string `json:"device_model,omitempty"`
	ProblemRaw         string `json:"problem_raw,omitempty"`
	ProblemCategory    string `json:"problem_category,omitempty"`
	ProblemDescription string `json:"problem_description,omitempty"`
	Urgency            string `json:"urgency,omitempty"`
	CustomerName       string `json:"customer_name,omitempty"`
	CustomerPhone      string `json:"customer_phone,omitempty"`
	PreferredTime      string `json:"preferred_time,omitempty"`

	EstimatedPriceMin float64 `json:"estimated_price_min,omitempty"`
	EstimatedPriceMax float64 `json:"estimated_price_max,omitempty"`
	PriceConfidence   string  `json:"price_confidence,omitempty"`

	LeadID string `json:"lead_id,omitempty"`
}

// Update carries field changes produced by a step handler. Nil means
// leave the field alone; a pointer to "" clears it.
type Update struct {
	DeviceCategory     *string
	DeviceBrand        *string
	DeviceModel        *string
	ProblemRaw         *string
	ProblemCategory    *string
	ProblemDescription *string
	Urgency            *string
	CustomerName       *string
	CustomerPhone      *string
	PreferredTime      *string
}

func (u Update) apply(c *CollectedData) {
	if u.DeviceCategory != nil {
		c.DeviceCategory = *u.DeviceCategory
	}
	if u.DeviceBrand != nil {
		c.DeviceBrand = *u.DeviceBrand
	}
	if u.DeviceModel != nil {
		c.DeviceModel = *u.DeviceModel
	}
	if u.ProblemRaw != nil {
		c.ProblemRaw = *u.ProblemRaw
	}
	if u.ProblemCategory != nil {
		c.ProblemCategory = *u.ProblemCategory
	}
	if u.ProblemDescription != nil {
		c.ProblemDescription = *u.ProblemDescription
	}
	if u.Urgency != nil {
		c.Urgency = *u.Urgency
	}
	if u.CustomerName != nil {
		c.CustomerName = *u.CustomerName
	}
	if u.CustomerPhone != nil {
		c.CustomerPhone = *u.CustomerPhone
	}
	if u.PreferredTime != nil {
		c.PreferredTime = *u.PreferredTime
	}
}

func ptr(s string) *string { return &s }

// SessionState is the volatile per-user dialog state. It lives in the
// session store under a TTL; everything the admin panel needs after
// expiry is denormalized onto the Conversation record.
type SessionState struct {
	ConversationID string        `json:"conversation_id"`
	ShopID         string        `json:"shop_id"`
	Channel        string        `json:"channel"`
	CurrentStep    Step          `json:"current_step"`
	Collected      CollectedData `json:"collected"`
	MessagesCount  int           `json:"messages_count"`
	MessageHistory []nlu.Turn    `json:"message_history"`
}

// NewSessionState starts a fresh dialog at the greeting step.
func NewSessionState(conversationID, shopID, channel string) *SessionState {
	return &SessionState{
		ConversationID: conversationID,
		ShopID:         shopID,
		Channel:        channel,
		CurrentStep:    StepGreeting,
	}
}

// PushHistory appends a turn and trims the window to MaxHistory.
func (s *SessionState) PushHistory(role, text string) {
	s.MessageHistory = append(s.MessageHistory, nlu.Turn{Role: role, Text: text})
	if len(s.MessageHistory) > MaxHistory {
		s.MessageHistory = s.MessageHistory[len(s.MessageHistory)-MaxHistory:]
	}
}
