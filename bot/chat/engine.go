// Package chat is the conversation orchestrator for the intake funnel:
// a step state machine over a TTL session store, with transcripts,
// leads and appointments written to the durable store as side effects.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"AutoLead/ai/nlu"
	"AutoLead/entity"
	"AutoLead/internal/lib/sl"
	"AutoLead/pricing"
)

const (
	handoffAck = "Сейчас позову мастера — он ответит в течение 30 минут. " +
		"Если будут ещё вопросы, пишите!"
	restartSuggestion = "Что-то пошло не так. Начнём сначала — /start"
	sessionExpired    = "Сессия истекла. Напишите /start"
	skipClosing       = "Спасибо! Если появятся вопросы — напишите."
	takeoverNotice    = "Сейчас с вами свяжется наш специалист 👨‍🔧"
	releaseNotice     = "Спасибо за ожидание! Бот снова на связи 🤖"
)

// Incoming is a normalized inbound text message from any channel.
type Incoming struct {
	UserID   string
	Username string
	Text     string
	Channel  string
}

// Engine routes user messages to step handlers, owns all state
// transitions and persists every message. Shop configuration is passed
// per call so one engine instance serves every tenant.
type Engine struct {
	sessions SessionStore
	store    Store
	extract  Extractor
	log      *slog.Logger

	transcript TranscriptListener
	notifier   Notifier

	greeting    StepHandler
	deviceType  StepHandler
	deviceModel StepHandler
	problem     StepHandler
	estimate    StepHandler
	contact     StepHandler
}

func NewEngine(sessions SessionStore, store Store, extract Extractor, logger *slog.Logger) *Engine {
	return &Engine{
		sessions:    sessions,
		store:       store,
		extract:     extract,
		log:         logger.With(sl.Module("chat")),
		greeting:    &greetingStep{extract: extract},
		deviceType:  &deviceTypeStep{extract: extract},
		deviceModel: &deviceModelStep{extract: extract},
		problem:     &problemStep{extract: extract},
		estimate:    &estimateStep{extract: extract},
		contact:     &contactInfoStep{extract: extract},
	}
}

// SetTranscriptListener wires the live transcript mirror (may be nil).
func (e *Engine) SetTranscriptListener(l TranscriptListener) { e.transcript = l }

// SetNotifier wires owner notifications (may be nil).
func (e *Engine) SetNotifier(n Notifier) { e.notifier = n }

func (e *Engine) handlerFor(step Step) (StepHandler, bool) {
	switch step {
	case StepGreeting:
		return e.greeting, true
	case StepDeviceType:
		return e.deviceType, true
	case StepDeviceModel:
		return e.deviceModel, true
	case StepProblem:
		return e.problem, true
	case StepEstimate:
		return e.estimate, true
	case StepContactInfo:
		return e.contact, true
	case StepPreviousRepair, StepUrgency, StepCompleted:
		return nil, false
	}
	return nil, false
}

// HandleText processes one inbound text message and returns the reply
// to send. It never fails outward: persistence errors are logged and
// the dialog keeps moving.
func (e *Engine) HandleText(ctx context.Context, shop *entity.Shop, in Incoming) Reply {
	log := e.log.With(
		slog.String("shop_id", shop.ID),
		slog.String("user_id", in.UserID),
	)
	lowered := strings.ToLower(strings.TrimSpace(in.Text))

	// Restart wins over everything, including human mode.
	if lowered == "/start" || lowered == "start" || lowered == "начать" {
		return e.restart(ctx, shop, in, log)
	}

	if IsHandoffRequest(lowered) {
		return e.handoff(ctx, shop, in, log)
	}

	state, err := e.sessions.Get(ctx, shop.ID, in.UserID)
	if err != nil {
		log.Error("session load failed", sl.Err(err))
		return Reply{Text: restartSuggestion, ShouldSend: true}
	}

	// Operator owns the dialog: record the message, stay silent.
	if state != nil {
		mode, err := e.store.ConversationMode(ctx, state.ConversationID)
		if err != nil {
			log.Warn("conversation mode lookup failed", sl.Err(err))
		}
		if mode == entity.ModeHuman {
			e.appendMessage(ctx, state.ConversationID, entity.RoleUser, in.Text, "human_chat")
			if err := e.store.TouchConversation(ctx, state.ConversationID); err != nil {
				log.Warn("touch conversation failed", sl.Err(err))
			}
			log.Info("message silenced, human mode",
				slog.String("conversation_id", state.ConversationID))
			return Reply{}
		}
	}

	// First contact without /start starts the funnel the same way.
	if state == nil {
		return e.start(ctx, shop, in, in.Text, log)
	}

	if state.CurrentStep == StepCompleted {
		return e.completedFollowUp(ctx, shop, in, state)
	}

	if lowered == "пропустить" || lowered == "skip" {
		return e.advanceStep(ctx, shop, in, state, log)
	}

	return e.dispatch(ctx, shop, in, state, log)
}

// restart abandons any existing dialog and opens a fresh one.
func (e *Engine) restart(ctx context.Context, shop *entity.Shop, in Incoming, log *slog.Logger) Reply {
	old, err := e.sessions.Get(ctx, shop.ID, in.UserID)
	if err != nil {
		log.Warn("session load failed on restart", sl.Err(err))
	}
	if old != nil {
		if err := e.store.SetConversationStatus(ctx, old.ConversationID, entity.ConvStatusAbandoned); err != nil {
			log.Warn("abandon conversation failed", sl.Err(err))
		}
	}
	if err := e.sessions.Delete(ctx, shop.ID, in.UserID); err != nil {
		log.Warn("session delete failed", sl.Err(err))
	}
	return e.start(ctx, shop, in, "/start", log)
}

// start opens a new conversation and shows the greeting.
func (e *Engine) start(ctx context.Context, shop *entity.Shop, in Incoming, firstMessage string, log *slog.Logger) Reply {
	state := e.newSession(ctx, shop, in, log)
	e.saveSession(ctx, shop, in.UserID, state, log)

	entry := e.greeting.Entry(ctx, shop, state)

	e.appendMessage(ctx, state.ConversationID, entity.RoleUser, firstMessage, string(StepGreeting))
	e.appendMessage(ctx, state.ConversationID, entity.RoleBot, entry.Text, string(StepGreeting))

	log.Info("conversation started",
		slog.String("conversation_id", state.ConversationID),
		slog.String("channel", in.Channel),
	)
	return Reply{Text: entry.Text, Menu: entry.Menu, ShouldSend: true}
}

// handoff closes the funnel and hands the dialog to a human.
func (e *Engine) handoff(ctx context.Context, shop *entity.Shop, in Incoming, log *slog.Logger) Reply {
	state, err := e.sessions.Get(ctx, shop.ID, in.UserID)
	if err != nil {
		log.Warn("session load failed on handoff", sl.Err(err))
	}

	if state != nil {
		e.appendMessage(ctx, state.ConversationID, entity.RoleUser, in.Text, "handoff")
		e.appendMessage(ctx, state.ConversationID, entity.RoleBot, handoffAck, "handoff")
		if err := e.store.SetConversationStatus(ctx, state.ConversationID, entity.ConvStatusHandoff); err != nil {
			log.Warn("handoff status update failed", sl.Err(err))
		}
		if e.notifier != nil {
			e.notifier.HandoffRequested(ctx, shop, state.ConversationID, in.Text)
		}
		log.Info("handoff requested", slog.String("conversation_id", state.ConversationID))
	}

	if err := e.sessions.Delete(ctx, shop.ID, in.UserID); err != nil {
		log.Warn("session delete failed", sl.Err(err))
	}
	return Reply{Text: handoffAck, ShouldSend: true}
}

// completedFollowUp answers questions after the request is filed
// without reopening the funnel.
func (e *Engine) completedFollowUp(ctx context.Context, shop *entity.Shop, in Incoming, state *SessionState) Reply {
	res := e.extract.Process(ctx, extractionRequest(shop, state, StepCompleted, in.Text))

	e.appendMessage(ctx, state.ConversationID, entity.RoleUser, in.Text, string(StepCompleted))
	e.appendMessage(ctx, state.ConversationID, entity.RoleBot, res.Reply, string(StepCompleted))

	return Reply{Text: res.Reply, ShouldSend: true}
}

// advanceStep skips the current step, walking over retired steps that
// have no prompt of their own.
func (e *Engine) advanceStep(ctx context.Context, shop *entity.Shop, in Incoming, state *SessionState, log *slog.Logger) Reply {
	step := state.CurrentStep
	for {
		next, ok := step.next()
		if !ok {
			return Reply{Text: skipClosing, ShouldSend: true}
		}
		step = next
		if step == StepCompleted {
			state.CurrentStep = step
			e.saveSession(ctx, shop, in.UserID, state, log)
			return Reply{Text: skipClosing, ShouldSend: true}
		}
		if _, ok := e.handlerFor(step); ok {
			break
		}
	}

	state.CurrentStep = step
	if step == StepEstimate {
		e.lookupPricing(ctx, shop, state, log)
	}
	e.saveSession(ctx, shop, in.UserID, state, log)

	handler, _ := e.handlerFor(step)
	entry := handler.Entry(ctx, shop, state)
	return Reply{Text: entry.Text, Menu: entry.Menu, ShouldSend: true}
}

// dispatch runs the current step handler and applies its outcome.
func (e *Engine) dispatch(ctx context.Context, shop *entity.Shop, in Incoming, state *SessionState, log *slog.Logger) Reply {
	handler, ok := e.handlerFor(state.CurrentStep)
	if !ok {
		log.Warn("no handler for step", slog.String("step", string(state.CurrentStep)))
		return Reply{Text: restartSuggestion, ShouldSend: true}
	}

	stepBefore := state.CurrentStep
	state.PushHistory(entity.RoleUser, in.Text)

	out := handler.Process(ctx, shop, state, in.Text)

	// Partial data survives regardless of intent: a problem described
	// before the brand is known must not be lost.
	out.Update.apply(&state.Collected)

	if out.Intent == nlu.IntentQuestion || out.Intent == nlu.IntentOffTopic {
		state.MessagesCount++
		state.PushHistory(entity.RoleBot, out.Text)
		e.saveSession(ctx, shop, in.UserID, state, log)

		e.appendMessage(ctx, state.ConversationID, entity.RoleUser, in.Text, string(stepBefore))
		e.appendMessage(ctx, state.ConversationID, entity.RoleBot, out.Text, string(stepBefore))
		e.syncConversation(ctx, shop, state, in, log)

		return Reply{Text: out.Text, Menu: out.Menu, ShouldSend: true}
	}

	text := out.Text
	menu := out.Menu

	if out.Next != "" {
		state.CurrentStep = out.Next

		// Entering the estimate resolves pricing and files the lead
		// early so an abandoned dialog still surfaces in the panel.
		if out.Next == StepEstimate {
			e.lookupPricing(ctx, shop, state, log)
			e.saveLead(ctx, shop, state, in, entity.LeadStatusPending, log)
		}

		if out.Next != StepCompleted {
			if nextHandler, ok := e.handlerFor(out.Next); ok {
				entry := nextHandler.Entry(ctx, shop, state)
				switch {
				case out.Next == StepEstimate && entry.Text != "":
					// The price card is always appended to the reply.
					if text != "" {
						text += "\n\n" + entry.Text
					} else {
						text = entry.Text
					}
					menu = entry.Menu
				case entry.Menu != nil:
					menu = entry.Menu
				case text == "" && entry.Text != "":
					text = entry.Text
				}
			}
		}
	}

	state.MessagesCount++
	state.PushHistory(entity.RoleBot, text)
	e.saveSession(ctx, shop, in.UserID, state, log)

	e.appendMessage(ctx, state.ConversationID, entity.RoleUser, in.Text, string(stepBefore))
	e.appendMessage(ctx, state.ConversationID, entity.RoleBot, text, string(state.CurrentStep))
	e.syncConversation(ctx, shop, state, in, log)

	if state.CurrentStep == StepCompleted {
		if state.Collected.LeadID != "" {
			e.promoteLead(ctx, shop, state, in, log)
		} else {
			e.saveLead(ctx, shop, state, in, entity.LeadStatusNew, log)
		}
	}

	log.Info("message processed",
		slog.String("conversation_id", state.ConversationID),
		slog.String("step", string(state.CurrentStep)),
		slog.String("intent", string(out.Intent)),
		slog.Int("messages", state.MessagesCount),
	)
	return Reply{Text: text, Menu: menu, ShouldSend: true}
}

// HandleChoice processes an inline button press.
func (e *Engine) HandleChoice(ctx context.Context, shop *entity.Shop, userID, data string) Reply {
	log := e.log.With(
		slog.String("shop_id", shop.ID),
		slog.String("user_id", userID),
	)

	state, err := e.sessions.Get(ctx, shop.ID, userID)
	if err != nil {
		log.Error("session load failed", sl.Err(err))
	}
	if state == nil {
		return Reply{Text: sessionExpired, ShouldSend: true}
	}

	prefix, value, _ := strings.Cut(data, ":")
	label := callbackLabel(prefix, value)
	stepBefore := string(state.CurrentStep)
	in := Incoming{UserID: userID, Channel: state.Channel}

	switch prefix {
	case "device":
		// Greeting keyboard: the value is a car brand.
		state.Collected.DeviceCategory = "car"
		if value == "other" {
			state.CurrentStep = StepDeviceType
			e.saveSession(ctx, shop, userID, state, log)
			response := "Напишите марку вашего автомобиля:"
			e.appendMessage(ctx, state.ConversationID, entity.RoleUser, label, stepBefore)
			e.appendMessage(ctx, state.ConversationID, entity.RoleBot, response, string(StepDeviceType))
			e.syncConversation(ctx, shop, state, in, log)
			return Reply{Text: response, ShouldSend: true}
		}
		state.Collected.DeviceBrand = value
		state.CurrentStep = StepDeviceType
		e.saveSession(ctx, shop, userID, state, log)
		entry := e.deviceType.Entry(ctx, shop, state)
		e.appendMessage(ctx, state.ConversationID, entity.RoleUser, label, stepBefore)
		e.appendMessage(ctx, state.ConversationID, entity.RoleBot, entry.Text, string(StepDeviceType))
		e.syncConversation(ctx, shop, state, in, log)
		return Reply{Text: entry.Text, Menu: entry.Menu, ShouldSend: true}

	case "brand":
		// Legacy prefix from older keyboards, still routed.
		state.Collected.DeviceBrand = value
		state.CurrentStep = StepDeviceModel
		e.saveSession(ctx, shop, userID, state, log)
		response := "Напишите марку и модель вашего автомобиля:"
		if value != "other" {
			response = e.deviceModel.Entry(ctx, shop, state).Text
		}
		e.appendMessage(ctx, state.ConversationID, entity.RoleUser, label, stepBefore)
		e.appendMessage(ctx, state.ConversationID, entity.RoleBot, response, string(StepDeviceModel))
		e.syncConversation(ctx, shop, state, in, log)
		return Reply{Text: response, ShouldSend: true}

	case "model":
		if value == "custom" {
			brand := state.Collected.DeviceBrand
			if brand == "" {
				brand = "автомобиля"
			}
			response := fmt.Sprintf("Напишите модель вашего %s (и год, если знаете):", brand)
			e.appendMessage(ctx, state.ConversationID, entity.RoleUser, label, stepBefore)
			e.appendMessage(ctx, state.ConversationID, entity.RoleBot, response, string(StepDeviceModel))
			return Reply{Text: response, ShouldSend: true}
		}
		state.Collected.DeviceModel = value
		state.CurrentStep = StepProblem
		e.saveSession(ctx, shop, userID, state, log)
		entry := e.problem.Entry(ctx, shop, state)
		e.appendMessage(ctx, state.ConversationID, entity.RoleUser, label, stepBefore)
		e.appendMessage(ctx, state.ConversationID, entity.RoleBot, entry.Text, string(StepProblem))
		e.syncConversation(ctx, shop, state, in, log)
		return Reply{Text: entry.Text, Menu: entry.Menu, ShouldSend: true}

	case "problem":
		if value == "custom" {
			response := "Опишите проблему своими словами:"
			e.appendMessage(ctx, state.ConversationID, entity.RoleUser, label, stepBefore)
			e.appendMessage(ctx, state.ConversationID, entity.RoleBot, response, string(StepProblem))
			return Reply{Text: response, ShouldSend: true}
		}
		state.Collected.ProblemCategory = value
		state.CurrentStep = StepEstimate
		e.lookupPricing(ctx, shop, state, log)
		e.saveLead(ctx, shop, state, in, entity.LeadStatusPending, log)
		e.saveSession(ctx, shop, userID, state, log)
		entry := e.estimate.Entry(ctx, shop, state)
		e.appendMessage(ctx, state.ConversationID, entity.RoleUser, label, stepBefore)
		e.appendMessage(ctx, state.ConversationID, entity.RoleBot, entry.Text, string(StepEstimate))
		e.syncConversation(ctx, shop, state, in, log)
		return Reply{Text: entry.Text, Menu: entry.Menu, ShouldSend: true}
	}

	log.Warn("unknown callback", slog.String("data", data))
	return Reply{Text: "Не понял. Попробуйте ещё раз.", ShouldSend: true}
}

// Operator side door.

// Takeover switches the conversation to human mode and returns the
// notice to relay to the customer.
func (e *Engine) Takeover(ctx context.Context, conversationID string) (string, error) {
	if err := e.store.SetConversationMode(ctx, conversationID, entity.ModeHuman, entity.ConvStatusHumanActive); err != nil {
		return "", fmt.Errorf("set conversation mode: %w", err)
	}
	e.appendMessage(ctx, conversationID, entity.RoleBot, takeoverNotice, "takeover")
	e.log.Info("conversation taken over", slog.String("conversation_id", conversationID))
	return takeoverNotice, nil
}

// Release returns the conversation to the bot.
func (e *Engine) Release(ctx context.Context, conversationID string) (string, error) {
	if err := e.store.SetConversationMode(ctx, conversationID, entity.ModeBot, entity.ConvStatusActive); err != nil {
		return "", fmt.Errorf("set conversation mode: %w", err)
	}
	e.appendMessage(ctx, conversationID, entity.RoleBot, releaseNotice, "release")
	e.log.Info("conversation released", slog.String("conversation_id", conversationID))
	return releaseNotice, nil
}

// OperatorMessage appends a master message to the transcript. The
// caller delivers it over the channel.
func (e *Engine) OperatorMessage(ctx context.Context, conversationID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("empty message")
	}

	msg := entity.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           entity.RoleMaster,
		Content:        text,
		StepName:       "human_chat",
		CreatedAt:      time.Now().UTC(),
	}
	if err := e.store.SaveMessage(ctx, &msg); err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	if e.transcript != nil {
		e.transcript.MessageSaved(msg)
	}
	if err := e.store.TouchConversation(ctx, conversationID); err != nil {
		e.log.Warn("touch conversation failed",
			slog.String("conversation_id", conversationID), sl.Err(err))
	}
	return nil
}

// Persistence helpers.

func (e *Engine) newSession(ctx context.Context, shop *entity.Shop, in Incoming, log *slog.Logger) *SessionState {
	conversationID := uuid.NewString()
	now := time.Now().UTC()

	conv := &entity.Conversation{
		ID:             conversationID,
		ShopID:         shop.ID,
		Channel:        in.Channel,
		ExternalUserID: in.UserID,
		Status:         entity.ConvStatusActive,
		CurrentStep:    string(StepGreeting),
		Mode:           entity.ModeBot,
		StartedAt:      now,
		LastMessageAt:  now,
	}
	if err := e.store.CreateConversation(ctx, conv); err != nil {
		log.Error("create conversation failed",
			slog.String("conversation_id", conversationID), sl.Err(err))
	}

	return NewSessionState(conversationID, shop.ID, in.Channel)
}

func (e *Engine) saveSession(ctx context.Context, shop *entity.Shop, userID string, state *SessionState, log *slog.Logger) {
	if err := e.sessions.Save(ctx, shop.ID, userID, state); err != nil {
		log.Error("session save failed",
			slog.String("conversation_id", state.ConversationID), sl.Err(err))
	}
}

// appendMessage writes one transcript entry. Errors never break the
// dialog; they are logged and the turn continues.
func (e *Engine) appendMessage(ctx context.Context, conversationID, role, content, stepName string) {
	msg := entity.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		StepName:       stepName,
		CreatedAt:      time.Now().UTC(),
	}
	if err := e.store.SaveMessage(ctx, &msg); err != nil {
		e.log.Warn("transcript append failed",
			slog.String("conversation_id", conversationID),
			slog.String("role", role),
			sl.Err(err),
		)
		return
	}
	if e.transcript != nil {
		e.transcript.MessageSaved(msg)
	}
}

// conversationRow denormalizes the session onto the Conversation record
// so the panel can read everything after the session TTL expires.
func conversationRow(shop *entity.Shop, state *SessionState, in Incoming) *entity.Conversation {
	c := state.Collected
	return &entity.Conversation{
		ID:                 state.ConversationID,
		ShopID:             shop.ID,
		Channel:            state.Channel,
		ExternalUserID:     in.UserID,
		CurrentStep:        string(state.CurrentStep),
		DeviceCategory:     c.DeviceCategory,
		DeviceBrand:        c.DeviceBrand,
		DeviceModel:        c.DeviceModel,
		ProblemDescription: c.ProblemDescription,
		ProblemCategory:    c.ProblemCategory,
		Urgency:            c.Urgency,
		CustomerName:       c.CustomerName,
		CustomerPhone:      c.CustomerPhone,
		PreferredTime:      c.PreferredTime,
		EstimatedPriceMin:  c.EstimatedPriceMin,
		EstimatedPriceMax:  c.EstimatedPriceMax,
		PriceConfidence:    c.PriceConfidence,
		MessagesCount:      state.MessagesCount,
		LastMessageAt:      time.Now().UTC(),
	}
}

func (e *Engine) syncConversation(ctx context.Context, shop *entity.Shop, state *SessionState, in Incoming, log *slog.Logger) {
	if err := e.store.SyncConversation(ctx, conversationRow(shop, state, in)); err != nil {
		log.Warn("conversation sync failed",
			slog.String("conversation_id", state.ConversationID), sl.Err(err))
	}
}

// lookupPricing resolves the estimate from the shop's active rules and
// stores the bounds in the session. A lookup failure leaves the bounds
// empty and the estimate falls back to the diagnostics text.
func (e *Engine) lookupPricing(ctx context.Context, shop *entity.Shop, state *SessionState, log *slog.Logger) {
	rules, err := e.store.ActivePriceRules(ctx, shop.ID)
	if err != nil {
		log.Warn("price rules lookup failed", sl.Err(err))
		return
	}

	c := &state.Collected
	est := pricing.Estimate(rules, c.ProblemCategory, c.DeviceBrand, c.DeviceModel)
	if min, max, ok := est.Range(); ok {
		c.EstimatedPriceMin = min
		c.EstimatedPriceMax = max
		c.PriceConfidence = est.Confidence
		log.Info("pricing resolved",
			slog.Float64("price_min", min),
			slog.Float64("price_max", max),
			slog.String("confidence", est.Confidence),
		)
		return
	}
	log.Info("pricing: no matching rule",
		slog.String("problem", c.ProblemCategory),
		slog.String("brand", c.DeviceBrand),
	)
}

// saveLead files the lead and syncs the conversation. Called with
// pending status when the estimate is first shown and with new status
// when the dialog completes without a prior lead.
func (e *Engine) saveLead(ctx context.Context, shop *entity.Shop, state *SessionState, in Incoming, status string, log *slog.Logger) {
	now := time.Now().UTC()
	c := state.Collected

	conv := conversationRow(shop, state, in)
	conv.Status = entity.ConvStatusActive
	if status == entity.LeadStatusNew {
		conv.Status = entity.ConvStatusCompleted
		conv.CompletedAt = &now
	}
	if err := e.store.SyncConversation(ctx, conv); err != nil {
		log.Warn("conversation sync failed",
			slog.String("conversation_id", state.ConversationID), sl.Err(err))
	}

	contact := "tg:" + in.UserID
	if state.Channel == entity.ChannelWhatsApp {
		contact = "wa:" + in.UserID
	} else if in.Username != "" {
		contact = in.Username
	}

	problem := c.ProblemDescription
	if problem == "" {
		problem = c.ProblemCategory
	}
	urgency := c.Urgency
	if urgency == "" {
		urgency = "normal"
	}

	lead := &entity.Lead{
		ID:                uuid.NewString(),
		ShopID:            shop.ID,
		ConversationID:    state.ConversationID,
		CustomerName:      c.CustomerName,
		CustomerPhone:     c.CustomerPhone,
		CustomerContact:   contact,
		DeviceCategory:    c.DeviceCategory,
		DeviceFullName:    strings.TrimSpace(c.DeviceBrand + " " + c.DeviceModel),
		ProblemSummary:    problem,
		Urgency:           urgency,
		EstimatedPriceMin: c.EstimatedPriceMin,
		EstimatedPriceMax: c.EstimatedPriceMax,
		Status:            status,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	leadID, err := e.store.CreateLead(ctx, lead)
	if err != nil {
		log.Error("lead save failed",
			slog.String("conversation_id", state.ConversationID), sl.Err(err))
		return
	}
	state.Collected.LeadID = leadID
	lead.ID = leadID

	e.maybeAppointment(ctx, shop, state, leadID, log)

	if e.notifier != nil && status == entity.LeadStatusNew {
		e.notifier.LeadCreated(ctx, shop, lead, c.PreferredTime, state.MessagesCount)
	}

	log.Info("lead saved",
		slog.String("lead_id", leadID),
		slog.String("status", status),
		slog.String("device", lead.DeviceFullName),
	)
}

// promoteLead moves the pending lead to new on completion, syncing the
// contact details collected after the lead was filed.
func (e *Engine) promoteLead(ctx context.Context, shop *entity.Shop, state *SessionState, in Incoming, log *slog.Logger) {
	now := time.Now().UTC()
	c := state.Collected

	if err := e.store.PromoteLead(ctx, c.LeadID, entity.LeadStatusNew, c.CustomerName, c.CustomerPhone); err != nil {
		log.Error("lead promote failed", slog.String("lead_id", c.LeadID), sl.Err(err))
		return
	}

	conv := conversationRow(shop, state, in)
	conv.Status = entity.ConvStatusCompleted
	conv.CompletedAt = &now
	if err := e.store.SyncConversation(ctx, conv); err != nil {
		log.Warn("conversation sync failed",
			slog.String("conversation_id", state.ConversationID), sl.Err(err))
	}

	e.maybeAppointment(ctx, shop, state, c.LeadID, log)

	if e.notifier != nil {
		problem := c.ProblemDescription
		if problem == "" {
			problem = c.ProblemCategory
		}
		e.notifier.LeadCreated(ctx, shop, &entity.Lead{
			ID:                c.LeadID,
			ShopID:            shop.ID,
			ConversationID:    state.ConversationID,
			CustomerName:      c.CustomerName,
			CustomerPhone:     c.CustomerPhone,
			DeviceCategory:    c.DeviceCategory,
			DeviceFullName:    strings.TrimSpace(c.DeviceBrand + " " + c.DeviceModel),
			ProblemSummary:    problem,
			Urgency:           c.Urgency,
			EstimatedPriceMin: c.EstimatedPriceMin,
			EstimatedPriceMax: c.EstimatedPriceMax,
			Status:            entity.LeadStatusNew,
		}, c.PreferredTime, state.MessagesCount)
	}

	log.Info("lead promoted",
		slog.String("lead_id", c.LeadID),
		slog.String("customer", c.CustomerName),
	)
}

// maybeAppointment books a visit slot when the preferred time parses
// to something concrete.
func (e *Engine) maybeAppointment(ctx context.Context, shop *entity.Shop, state *SessionState, leadID string, log *slog.Logger) {
	pt := state.Collected.PreferredTime
	if pt == "" {
		return
	}
	scheduled, ok := ParsePreferredTime(pt, time.Now())
	if !ok {
		return
	}

	appt := &entity.Appointment{
		ID:              uuid.NewString(),
		ShopID:          shop.ID,
		LeadID:          leadID,
		ScheduledAt:     scheduled,
		DurationMinutes: 60,
		Status:          entity.AppointmentPending,
		CreatedAt:       time.Now().UTC(),
	}
	if err := e.store.CreateAppointment(ctx, appt); err != nil {
		log.Warn("appointment save failed", slog.String("lead_id", leadID), sl.Err(err))
		return
	}
	log.Info("appointment created",
		slog.String("lead_id", leadID),
		slog.Time("scheduled_at", scheduled),
	)
}
