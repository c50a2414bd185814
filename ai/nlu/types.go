package nlu

// Intent classifies what the user is doing in a turn.
type Intent string

const (
	IntentProvideData Intent = "provide_data"
	IntentQuestion    Intent = "question"
	IntentOffTopic    Intent = "off_topic"
	IntentGreeting    Intent = "greeting"
	IntentConfirm     Intent = "confirm"
	IntentDecline     Intent = "decline"
)

// Turn is one entry of the bounded history passed for model context.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Request is a single extraction call: one per user turn.
type Request struct {
	Step      string
	UserText  string
	Collected any
	History   []Turn

	// Shop customization, threaded explicitly so nothing ambient can
	// leak between tenants.
	Personality string
	PromoText   string
	CustomFAQ   string
	Address     string
	ShopName    string
}

// Fields holds everything the model may extract from a turn. Nil means
// not found; downstream code never touches loose maps.
type Fields struct {
	DeviceCategory     *string `json:"device_category"`
	DeviceBrand        *string `json:"device_brand"`
	DeviceModel        *string `json:"device_model"`
	ProblemCategory    *string `json:"problem_category"`
	ProblemDescription *string `json:"problem_description"`
	Urgency            *string `json:"urgency"`
	UrgencyHint        *string `json:"urgency_hint"`
	CustomerName       *string `json:"customer_name"`
	CustomerPhone      *string `json:"customer_phone"`
	PreferredTime      *string `json:"preferred_time"`
	Decision           *string `json:"decision"`
}

// Result is the typed outcome of one extraction call.
type Result struct {
	Intent        Intent
	Fields        Fields
	Reply         string
	ShouldAdvance bool
	Confidence    string
}

// Fallback replies per step, used whenever the model call fails or
// returns garbage. The user must always get some reply.
var fallbackReplies = map[string]string{
	"greeting":     "Какой автомобиль нужно починить?",
	"device_type":  "Какая марка автомобиля?",
	"device_model": "Ничего, разберёмся на месте. Что случилось с машиной?",
	"problem":      "Расскажите, что случилось?",
	"contact_info": "Как вас зовут?",
	"estimate":     "Хотите записаться на диагностику?",
	"completed":    "Ваша заявка уже оформлена. Напишите /start чтобы начать новую.",
}

const genericFallback = "Не совсем понял. Попробуйте ещё раз."

// FallbackResult is the safe substitute when extraction is unavailable:
// provide_data intent, no fields, fixed per-step reply.
func FallbackResult(step string) Result {
	reply, ok := fallbackReplies[step]
	if !ok {
		reply = genericFallback
	}
	return Result{
		Intent:     IntentProvideData,
		Reply:      reply,
		Confidence: "low",
	}
}

func validIntent(s string) Intent {
	switch Intent(s) {
	case IntentProvideData, IntentQuestion, IntentOffTopic,
		IntentGreeting, IntentConfirm, IntentDecline:
		return Intent(s)
	}
	return IntentProvideData
}
