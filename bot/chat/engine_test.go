package chat

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"AutoLead/ai/nlu"
	"AutoLead/entity"
)

// Test doubles.

type fakeSessions struct {
	m map[string]*SessionState
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{m: make(map[string]*SessionState)}
}

func (f *fakeSessions) key(shopID, userID string) string { return shopID + "|" + userID }

func (f *fakeSessions) Get(_ context.Context, shopID, userID string) (*SessionState, error) {
	return f.m[f.key(shopID, userID)], nil
}

func (f *fakeSessions) Save(_ context.Context, shopID, userID string, state *SessionState) error {
	f.m[f.key(shopID, userID)] = state
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, shopID, userID string) error {
	delete(f.m, f.key(shopID, userID))
	return nil
}

type promotion struct {
	leadID, status, name, phone string
}

type fakeStore struct {
	mode         string
	rules        []entity.PriceRule
	created      []entity.Conversation
	synced       []entity.Conversation
	statuses     map[string]string
	messages     []entity.Message
	leads        []entity.Lead
	promotions   []promotion
	appointments []entity.Appointment
	touched      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{mode: entity.ModeBot, statuses: make(map[string]string)}
}

func (f *fakeStore) CreateConversation(_ context.Context, conv *entity.Conversation) error {
	f.created = append(f.created, *conv)
	return nil
}

func (f *fakeStore) SyncConversation(_ context.Context, conv *entity.Conversation) error {
	f.synced = append(f.synced, *conv)
	if conv.Status != "" {
		f.statuses[conv.ID] = conv.Status
	}
	return nil
}

func (f *fakeStore) SetConversationStatus(_ context.Context, conversationID, status string) error {
	f.statuses[conversationID] = status
	return nil
}

func (f *fakeStore) SetConversationMode(_ context.Context, conversationID, mode, status string) error {
	f.mode = mode
	f.statuses[conversationID] = status
	return nil
}

func (f *fakeStore) ConversationMode(_ context.Context, _ string) (string, error) {
	return f.mode, nil
}

func (f *fakeStore) TouchConversation(_ context.Context, _ string) error {
	f.touched++
	return nil
}

func (f *fakeStore) SaveMessage(_ context.Context, msg *entity.Message) error {
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeStore) CreateLead(_ context.Context, lead *entity.Lead) (string, error) {
	// Mirror the at-most-once upsert: an existing lead for the
	// conversation wins.
	for _, l := range f.leads {
		if l.ConversationID == lead.ConversationID {
			return l.ID, nil
		}
	}
	f.leads = append(f.leads, *lead)
	return lead.ID, nil
}

func (f *fakeStore) PromoteLead(_ context.Context, leadID, status, name, phone string) error {
	f.promotions = append(f.promotions, promotion{leadID, status, name, phone})
	return nil
}

func (f *fakeStore) CreateAppointment(_ context.Context, appt *entity.Appointment) error {
	f.appointments = append(f.appointments, *appt)
	return nil
}

func (f *fakeStore) ActivePriceRules(_ context.Context, _ string) ([]entity.PriceRule, error) {
	return f.rules, nil
}

type fakeExtractor struct {
	results  []nlu.Result
	requests []nlu.Request
}

func (f *fakeExtractor) Process(_ context.Context, req nlu.Request) nlu.Result {
	f.requests = append(f.requests, req)
	if len(f.results) == 0 {
		return nlu.FallbackResult(req.Step)
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res
}

type notifierCall struct {
	kind   string
	leadID string
	convID string
}

type fakeNotifier struct {
	calls []notifierCall
}

func (f *fakeNotifier) LeadCreated(_ context.Context, _ *entity.Shop, lead *entity.Lead, _ string, _ int) {
	f.calls = append(f.calls, notifierCall{kind: "lead", leadID: lead.ID})
}

func (f *fakeNotifier) HandoffRequested(_ context.Context, _ *entity.Shop, conversationID, _ string) {
	f.calls = append(f.calls, notifierCall{kind: "handoff", convID: conversationID})
}

func testShop() *entity.Shop {
	return &entity.Shop{ID: "shop-1", Name: "АвтоМастер", IsActive: true}
}

func testEngine(sessions SessionStore, store Store, extract Extractor) *Engine {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(sessions, store, extract, log)
}

func seedSession(sessions *fakeSessions, step Step, collected CollectedData) *SessionState {
	state := NewSessionState("conv-1", "shop-1", entity.ChannelTelegram)
	state.CurrentStep = step
	state.Collected = collected
	sessions.m["shop-1|user-1"] = state
	return state
}

func incoming(text string) Incoming {
	return Incoming{UserID: "user-1", Username: "@vasya", Text: text, Channel: entity.ChannelTelegram}
}

// Tests.

func TestHandleText_StartOpensDialog(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	engine := testEngine(sessions, store, &fakeExtractor{})

	reply := engine.HandleText(context.Background(), testShop(), incoming("/start"))

	if !reply.ShouldSend {
		t.Fatal("expected a visible reply")
	}
	if reply.Text != defaultGreeting {
		t.Errorf("expected default greeting, got %q", reply.Text)
	}
	if reply.Menu == nil {
		t.Error("expected the brand keyboard")
	}

	state := sessions.m["shop-1|user-1"]
	if state == nil {
		t.Fatal("expected a session to be created")
	}
	if state.CurrentStep != StepGreeting {
		t.Errorf("expected greeting step, got %s", state.CurrentStep)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected 1 conversation created, got %d", len(store.created))
	}
	if len(store.messages) != 2 {
		t.Fatalf("expected user+bot transcript entries, got %d", len(store.messages))
	}
	if store.messages[0].Role != entity.RoleUser || store.messages[0].Content != "/start" {
		t.Errorf("expected literal /start recorded, got %+v", store.messages[0])
	}
}

func TestHandleText_RestartAbandonsExisting(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	engine := testEngine(sessions, store, &fakeExtractor{})
	seedSession(sessions, StepProblem, CollectedData{DeviceBrand: "Toyota"})

	engine.HandleText(context.Background(), testShop(), incoming("начать"))

	if store.statuses["conv-1"] != entity.ConvStatusAbandoned {
		t.Errorf("expected old conversation abandoned, got %q", store.statuses["conv-1"])
	}
	state := sessions.m["shop-1|user-1"]
	if state == nil || state.ConversationID == "conv-1" {
		t.Error("expected a fresh conversation after restart")
	}
	if state.Collected.DeviceBrand != "" {
		t.Error("expected collected data dropped on restart")
	}
}

func TestHandleText_HumanModeSuppressesBot(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	store.mode = entity.ModeHuman
	extract := &fakeExtractor{}
	engine := testEngine(sessions, store, extract)
	seedSession(sessions, StepProblem, CollectedData{})

	reply := engine.HandleText(context.Background(), testShop(), incoming("а когда можно приехать?"))

	if reply.ShouldSend {
		t.Fatal("bot must stay silent in human mode")
	}
	if len(extract.requests) != 0 {
		t.Error("no extraction call expected in human mode")
	}
	if len(store.messages) != 1 || store.messages[0].Role != entity.RoleUser {
		t.Fatalf("expected the customer message recorded, got %+v", store.messages)
	}
	if store.messages[0].StepName != "human_chat" {
		t.Errorf("expected human_chat step name, got %q", store.messages[0].StepName)
	}
	if store.touched != 1 {
		t.Errorf("expected conversation touched once, got %d", store.touched)
	}
}

func TestHandleText_RestartWinsOverHumanMode(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	store.mode = entity.ModeHuman
	engine := testEngine(sessions, store, &fakeExtractor{})
	seedSession(sessions, StepProblem, CollectedData{})

	reply := engine.HandleText(context.Background(), testShop(), incoming("/start"))

	if !reply.ShouldSend {
		t.Fatal("restart must answer even in human mode")
	}
	if store.statuses["conv-1"] != entity.ConvStatusAbandoned {
		t.Errorf("expected old conversation abandoned, got %q", store.statuses["conv-1"])
	}
}

func TestHandleText_HandoffClosesFunnel(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	notifier := &fakeNotifier{}
	engine := testEngine(sessions, store, &fakeExtractor{})
	engine.SetNotifier(notifier)
	seedSession(sessions, StepEstimate, CollectedData{})

	reply := engine.HandleText(context.Background(), testShop(), incoming("позовите мастера"))

	if reply.Text != handoffAck {
		t.Errorf("expected handoff acknowledgement, got %q", reply.Text)
	}
	if store.statuses["conv-1"] != entity.ConvStatusHandoff {
		t.Errorf("expected handoff status, got %q", store.statuses["conv-1"])
	}
	if _, ok := sessions.m["shop-1|user-1"]; ok {
		t.Error("expected session deleted after handoff")
	}
	if len(notifier.calls) != 1 || notifier.calls[0].kind != "handoff" {
		t.Fatalf("expected one handoff notification, got %+v", notifier.calls)
	}
}

func TestHandleText_SkipWalksRetiredSteps(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	engine := testEngine(sessions, store, &fakeExtractor{})
	seedSession(sessions, StepProblem, CollectedData{DeviceBrand: "Toyota", DeviceModel: "Camry"})

	reply := engine.HandleText(context.Background(), testShop(), incoming("пропустить"))

	state := sessions.m["shop-1|user-1"]
	if state.CurrentStep != StepEstimate {
		t.Fatalf("expected skip to land on estimate, got %s", state.CurrentStep)
	}
	if !strings.Contains(reply.Text, "Хотите записаться") {
		t.Errorf("expected the estimate prompt, got %q", reply.Text)
	}
	// Skipping only resolves pricing; the lead is filed on a real
	// transition into the estimate.
	if len(store.leads) != 0 {
		t.Errorf("expected no lead on skip, got %d", len(store.leads))
	}
}

func TestHandleText_SkipAtContactInfoCompletes(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	engine := testEngine(sessions, store, &fakeExtractor{})
	seedSession(sessions, StepContactInfo, CollectedData{})

	reply := engine.HandleText(context.Background(), testShop(), incoming("skip"))

	if reply.Text != skipClosing {
		t.Errorf("expected closing text, got %q", reply.Text)
	}
	if sessions.m["shop-1|user-1"].CurrentStep != StepCompleted {
		t.Error("expected dialog completed")
	}
}

func TestHandleText_QuestionKeepsStep(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	extract := &fakeExtractor{results: []nlu.Result{
		{Intent: nlu.IntentQuestion, Reply: "Диагностика от 500 ₽."},
	}}
	engine := testEngine(sessions, store, extract)
	seedSession(sessions, StepProblem, CollectedData{DeviceBrand: "Toyota"})

	reply := engine.HandleText(context.Background(), testShop(), incoming("сколько стоит диагностика?"))

	if reply.Text != "Диагностика от 500 ₽." {
		t.Errorf("unexpected reply %q", reply.Text)
	}
	state := sessions.m["shop-1|user-1"]
	if state.CurrentStep != StepProblem {
		t.Errorf("question must not advance the funnel, got %s", state.CurrentStep)
	}
	if state.MessagesCount != 1 {
		t.Errorf("expected messages counted, got %d", state.MessagesCount)
	}
}

func TestHandleText_GreetingJumpsToEstimateOnFullMessage(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	store.rules = []entity.PriceRule{
		{
			ID: "r1", ShopID: "shop-1", RepairCategory: "brake_repair",
			PriceMin: 3000, PriceMax: 7000,
			IsActive: true, Priority: entity.PriorityGeneric,
		},
	}
	extract := &fakeExtractor{results: []nlu.Result{
		{
			Intent: nlu.IntentProvideData,
			Fields: nlu.Fields{
				DeviceBrand:        ptr("Toyota"),
				DeviceModel:        ptr("Camry"),
				ProblemCategory:    ptr("brake_repair"),
				ProblemDescription: ptr("скрипят тормоза"),
			},
			Reply:         "Понял вас!",
			ShouldAdvance: true,
		},
	}}
	engine := testEngine(sessions, store, extract)
	seedSession(sessions, StepGreeting, CollectedData{})

	engine.HandleText(context.Background(), testShop(),
		incoming("у меня Toyota Camry, скрипят тормоза"))

	state := sessions.m["shop-1|user-1"]
	if state.CurrentStep != StepEstimate {
		t.Fatalf("full first message must jump to estimate, got %s", state.CurrentStep)
	}
	if state.Collected.DeviceBrand != "Toyota" || state.Collected.DeviceModel != "Camry" {
		t.Errorf("unexpected device fields: %+v", state.Collected)
	}
	if state.Collected.EstimatedPriceMin != 3000 {
		t.Errorf("expected pricing resolved on the jump, got %v", state.Collected.EstimatedPriceMin)
	}
	if len(store.leads) != 1 || store.leads[0].Status != entity.LeadStatusPending {
		t.Fatalf("expected a pending lead filed on the jump, got %+v", store.leads)
	}
}

func TestHandleText_GreetingKeepsPartialFields(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	extract := &fakeExtractor{results: []nlu.Result{
		{
			Intent: nlu.IntentProvideData,
			Fields: nlu.Fields{ProblemDescription: ptr("не заводится по утрам")},
			Reply:  "А какая у вас машина?",
		},
	}}
	engine := testEngine(sessions, store, extract)
	seedSession(sessions, StepGreeting, CollectedData{})

	reply := engine.HandleText(context.Background(), testShop(), incoming("не заводится по утрам"))

	state := sessions.m["shop-1|user-1"]
	if state.CurrentStep != StepGreeting {
		t.Errorf("without a brand the funnel must stay on greeting, got %s", state.CurrentStep)
	}
	if state.Collected.ProblemDescription != "не заводится по утрам" {
		t.Errorf("problem details must be kept for the later jump, got %q",
			state.Collected.ProblemDescription)
	}
	if len(reply.Menu) == 0 {
		t.Error("expected the brand keyboard re-offered")
	}
}

func TestHandleText_ProblemAdvancesToEstimateAndFilesPendingLead(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	store.rules = []entity.PriceRule{
		{
			ID: "r1", ShopID: "shop-1", RepairCategory: "brakes",
			PriceMin: 3000, PriceMax: 7000,
			IsActive: true, Priority: entity.PriorityGeneric,
		},
	}
	extract := &fakeExtractor{results: []nlu.Result{
		{
			Intent: nlu.IntentProvideData,
			Fields: nlu.Fields{
				ProblemCategory:    ptr("brakes"),
				ProblemDescription: ptr("скрипят тормоза"),
			},
			Reply:         "Понял!",
			ShouldAdvance: true,
		},
	}}
	engine := testEngine(sessions, store, extract)
	seedSession(sessions, StepProblem, CollectedData{DeviceBrand: "Toyota", DeviceModel: "Camry"})

	reply := engine.HandleText(context.Background(), testShop(), incoming("скрипят тормоза"))

	state := sessions.m["shop-1|user-1"]
	if state.CurrentStep != StepEstimate {
		t.Fatalf("expected estimate step, got %s", state.CurrentStep)
	}
	if state.Collected.EstimatedPriceMin != 3000 || state.Collected.EstimatedPriceMax != 7000 {
		t.Errorf("expected pricing resolved, got %v-%v",
			state.Collected.EstimatedPriceMin, state.Collected.EstimatedPriceMax)
	}
	if !strings.Contains(reply.Text, "Понял!") || !strings.Contains(reply.Text, "3,000") {
		t.Errorf("expected step reply with the price card appended, got %q", reply.Text)
	}

	if len(store.leads) != 1 {
		t.Fatalf("expected one pending lead, got %d", len(store.leads))
	}
	lead := store.leads[0]
	if lead.Status != entity.LeadStatusPending {
		t.Errorf("expected pending status, got %q", lead.Status)
	}
	if lead.DeviceFullName != "Toyota Camry" || lead.ProblemSummary != "скрипят тормоза" {
		t.Errorf("unexpected lead payload: %+v", lead)
	}
	if lead.CustomerContact != "@vasya" {
		t.Errorf("expected username contact, got %q", lead.CustomerContact)
	}
	if state.Collected.LeadID == "" {
		t.Error("expected lead id stored in the session")
	}
}

func TestHandleText_ContactInfoCompletesAndPromotesLead(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	notifier := &fakeNotifier{}
	extract := &fakeExtractor{results: []nlu.Result{
		{
			Intent: nlu.IntentProvideData,
			Fields: nlu.Fields{CustomerPhone: ptr("89161234567")},
			Reply:  "Спасибо! Мастер свяжется с вами.",
		},
	}}
	engine := testEngine(sessions, store, extract)
	engine.SetNotifier(notifier)
	seedSession(sessions, StepContactInfo, CollectedData{
		DeviceBrand:  "Toyota",
		CustomerName: "Василий",
		LeadID:       "lead-1",
	})

	engine.HandleText(context.Background(), testShop(), incoming("89161234567"))

	state := sessions.m["shop-1|user-1"]
	if state.CurrentStep != StepCompleted {
		t.Fatalf("expected completed step, got %s", state.CurrentStep)
	}
	if state.Collected.CustomerPhone != "+79161234567" {
		t.Errorf("expected normalized phone, got %q", state.Collected.CustomerPhone)
	}

	if len(store.promotions) != 1 {
		t.Fatalf("expected one promotion, got %d", len(store.promotions))
	}
	p := store.promotions[0]
	if p.leadID != "lead-1" || p.status != entity.LeadStatusNew {
		t.Errorf("unexpected promotion %+v", p)
	}
	if p.name != "Василий" || p.phone != "+79161234567" {
		t.Errorf("expected contact details synced, got %+v", p)
	}
	if store.statuses["conv-1"] != entity.ConvStatusCompleted {
		t.Errorf("expected conversation completed, got %q", store.statuses["conv-1"])
	}
	if len(notifier.calls) != 1 || notifier.calls[0].kind != "lead" {
		t.Fatalf("expected one lead notification, got %+v", notifier.calls)
	}
}

func TestHandleText_CompletedFollowUpDoesNotReopen(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	extract := &fakeExtractor{results: []nlu.Result{
		{Intent: nlu.IntentQuestion, Reply: "Мы работаем с 9 до 20."},
	}}
	engine := testEngine(sessions, store, extract)
	seedSession(sessions, StepCompleted, CollectedData{LeadID: "lead-1"})

	reply := engine.HandleText(context.Background(), testShop(), incoming("какой у вас график?"))

	if reply.Text != "Мы работаем с 9 до 20." {
		t.Errorf("unexpected reply %q", reply.Text)
	}
	if sessions.m["shop-1|user-1"].CurrentStep != StepCompleted {
		t.Error("follow-up must not reopen the funnel")
	}
	if len(extract.requests) != 1 || extract.requests[0].Step != string(StepCompleted) {
		t.Fatalf("expected one completed-step extraction, got %+v", extract.requests)
	}
}

func TestHandleChoice_SessionExpired(t *testing.T) {
	sessions := newFakeSessions()
	engine := testEngine(sessions, newFakeStore(), &fakeExtractor{})

	reply := engine.HandleChoice(context.Background(), testShop(), "user-1", "device:Toyota")

	if reply.Text != sessionExpired {
		t.Errorf("expected session expired text, got %q", reply.Text)
	}
}

func TestHandleChoice_BrandButton(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	engine := testEngine(sessions, store, &fakeExtractor{})
	seedSession(sessions, StepGreeting, CollectedData{})

	reply := engine.HandleChoice(context.Background(), testShop(), "user-1", "device:Toyota")

	state := sessions.m["shop-1|user-1"]
	if state.Collected.DeviceBrand != "Toyota" || state.Collected.DeviceCategory != "car" {
		t.Errorf("expected brand recorded, got %+v", state.Collected)
	}
	if state.CurrentStep != StepDeviceType {
		t.Errorf("expected device_type step, got %s", state.CurrentStep)
	}
	if reply.Menu == nil {
		t.Error("expected the Toyota model keyboard")
	}
	if store.messages[0].Content != "[Выбрано: Toyota]" {
		t.Errorf("expected choice label in transcript, got %q", store.messages[0].Content)
	}
}

func TestHandleChoice_ProblemButtonFilesPendingLead(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	engine := testEngine(sessions, store, &fakeExtractor{})
	seedSession(sessions, StepProblem, CollectedData{DeviceBrand: "Toyota", DeviceModel: "Camry"})

	reply := engine.HandleChoice(context.Background(), testShop(), "user-1", "problem:brake_repair")

	state := sessions.m["shop-1|user-1"]
	if state.CurrentStep != StepEstimate {
		t.Fatalf("expected estimate step, got %s", state.CurrentStep)
	}
	if state.Collected.ProblemCategory != "brake_repair" {
		t.Errorf("expected problem category set, got %q", state.Collected.ProblemCategory)
	}
	if len(store.leads) != 1 || store.leads[0].Status != entity.LeadStatusPending {
		t.Fatalf("expected a pending lead, got %+v", store.leads)
	}
	if !strings.Contains(reply.Text, "диагностик") {
		t.Errorf("expected diagnostics fallback without price rules, got %q", reply.Text)
	}
}

func TestHandleChoice_CustomModelKeepsStep(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	engine := testEngine(sessions, store, &fakeExtractor{})
	seedSession(sessions, StepDeviceModel, CollectedData{DeviceBrand: "Toyota"})

	engine.HandleChoice(context.Background(), testShop(), "user-1", "model:custom")

	state := sessions.m["shop-1|user-1"]
	if state.CurrentStep != StepDeviceModel || state.Collected.DeviceModel != "" {
		t.Errorf("custom choice must only prompt, got step %s model %q",
			state.CurrentStep, state.Collected.DeviceModel)
	}
}

func TestTakeoverAndRelease(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	engine := testEngine(sessions, store, &fakeExtractor{})

	notice, err := engine.Takeover(context.Background(), "conv-1")
	if err != nil {
		t.Fatalf("takeover: %v", err)
	}
	if notice != takeoverNotice {
		t.Errorf("unexpected takeover notice %q", notice)
	}
	if store.mode != entity.ModeHuman || store.statuses["conv-1"] != entity.ConvStatusHumanActive {
		t.Errorf("expected human mode, got mode=%q status=%q", store.mode, store.statuses["conv-1"])
	}

	notice, err = engine.Release(context.Background(), "conv-1")
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if notice != releaseNotice {
		t.Errorf("unexpected release notice %q", notice)
	}
	if store.mode != entity.ModeBot || store.statuses["conv-1"] != entity.ConvStatusActive {
		t.Errorf("expected bot mode restored, got mode=%q status=%q", store.mode, store.statuses["conv-1"])
	}
}

func TestOperatorMessage(t *testing.T) {
	sessions := newFakeSessions()
	store := newFakeStore()
	engine := testEngine(sessions, store, &fakeExtractor{})

	if err := engine.OperatorMessage(context.Background(), "conv-1", "  "); err == nil {
		t.Error("expected error for empty message")
	}

	if err := engine.OperatorMessage(context.Background(), "conv-1", "Приезжайте к 15:00"); err != nil {
		t.Fatalf("operator message: %v", err)
	}
	if len(store.messages) != 1 {
		t.Fatalf("expected one transcript entry, got %d", len(store.messages))
	}
	msg := store.messages[0]
	if msg.Role != entity.RoleMaster || msg.StepName != "human_chat" {
		t.Errorf("unexpected transcript entry %+v", msg)
	}
}

