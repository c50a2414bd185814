package chat

import (
	"context"
	"fmt"
	"strings"

	"AutoLead/ai/nlu"
	"AutoLead/entity"
)

// extractionRequest assembles the model call for a turn, threading the
// shop's customization explicitly so nothing ambient crosses tenants.
func extractionRequest(shop *entity.Shop, state *SessionState, step Step, text string) nlu.Request {
	req := nlu.Request{
		Step:      string(step),
		UserText:  text,
		Collected: state.Collected,
		History:   state.MessageHistory,
	}
	if shop != nil {
		req.Personality = shop.BotPersonality
		req.PromoText = shop.PromoText
		req.CustomFAQ = shop.CustomFAQ
		req.Address = shop.Address
		req.ShopName = shop.DisplayName
		if req.ShopName == "" {
			req.ShopName = shop.Name
		}
	}
	return req
}

// problemUpdate lifts any problem fields out of extraction results so
// partial finds survive across steps.
func problemUpdate(f nlu.Fields) (Update, bool) {
	var u Update
	found := false
	if f.ProblemCategory != nil && *f.ProblemCategory != "" {
		u.ProblemCategory = f.ProblemCategory
		found = true
	}
	if f.ProblemDescription != nil && *f.ProblemDescription != "" {
		u.ProblemDescription = f.ProblemDescription
		found = true
	}
	if f.UrgencyHint != nil && *f.UrgencyHint != "" {
		u.Urgency = f.UrgencyHint
		found = true
	} else if f.Urgency != nil && *f.Urgency != "" {
		u.Urgency = f.Urgency
		found = true
	}
	return u, found
}

func strField(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Greeting.

type greetingStep struct{ extract Extractor }

const defaultGreeting = "Привет! Я Алекс, помогу с ремонтом автомобиля.\n\n" +
	"Расскажите, что случилось — или выберите марку машины ниже."

func (s *greetingStep) Entry(_ context.Context, shop *entity.Shop, _ *SessionState) Outcome {
	text := defaultGreeting
	if shop != nil && shop.GreetingText != "" {
		text = shop.GreetingText
	}
	return Outcome{Text: text, Menu: carBrandKeyboard()}
}

// Process tries to pull a brand, model and even the problem out of the
// very first message so chatty users jump past the button flow.
func (s *greetingStep) Process(ctx context.Context, shop *entity.Shop, state *SessionState, text string) Outcome {
	res := s.extract.Process(ctx, extractionRequest(shop, state, StepGreeting, text))

	if res.Intent == nlu.IntentQuestion || res.Intent == nlu.IntentOffTopic {
		return Outcome{Text: res.Reply, Menu: carBrandKeyboard(), Intent: res.Intent}
	}

	parsed := res.Fields
	brand := strField(parsed.DeviceBrand)
	model := strField(parsed.DeviceModel)
	problem, hasProblem := problemUpdate(parsed)

	category := strField(parsed.DeviceCategory)
	if category == "" {
		category = "car"
	}

	if brand != "" {
		update := problem
		update.DeviceCategory = ptr(category)
		update.DeviceBrand = ptr(brand)
		if model != "" {
			update.DeviceModel = ptr(model)
		}

		next := StepDeviceModel
		switch {
		case hasProblem && problem.ProblemCategory != nil:
			// Everything in one message, straight to the estimate.
			next = StepEstimate
		case model != "":
			next = StepProblem
		}
		return Outcome{Text: res.Reply, Next: next, Update: update, Intent: res.Intent}
	}

	// No brand yet. Keep whatever problem details were mentioned so the
	// dialog can jump once the brand arrives.
	return Outcome{Text: res.Reply, Menu: carBrandKeyboard(), Update: problem, Intent: res.Intent}
}

// Device type (brand).

type deviceTypeStep struct{ extract Extractor }

func (s *deviceTypeStep) Entry(_ context.Context, _ *entity.Shop, state *SessionState) Outcome {
	brand := state.Collected.DeviceBrand
	if rows, ok := brandModelKeyboards[brand]; ok {
		return Outcome{Text: fmt.Sprintf("Какая модель %s?", brand), Menu: rows}
	}
	if brand == "" {
		brand = "автомобиля"
	}
	return Outcome{Text: fmt.Sprintf("Напишите модель вашего %s:", brand)}
}

func (s *deviceTypeStep) Process(ctx context.Context, shop *entity.Shop, state *SessionState, text string) Outcome {
	res := s.extract.Process(ctx, extractionRequest(shop, state, StepDeviceType, text))

	if res.Intent == nlu.IntentQuestion || res.Intent == nlu.IntentOffTopic {
		return Outcome{Text: res.Reply, Menu: s.Entry(ctx, shop, state).Menu, Intent: res.Intent}
	}

	parsed := res.Fields
	if brand := strField(parsed.DeviceBrand); brand != "" {
		update := Update{DeviceBrand: ptr(brand), DeviceCategory: ptr("car")}
		if model := strField(parsed.DeviceModel); model != "" {
			update.DeviceModel = ptr(model)
			return Outcome{Text: res.Reply, Next: StepProblem, Update: update, Intent: res.Intent}
		}
		return Outcome{Text: res.Reply, Next: StepDeviceModel, Update: update, Intent: res.Intent}
	}

	reply := res.Reply
	if reply == "" {
		reply = "Не совсем понял. Напишите марку автомобиля:"
	}
	return Outcome{Text: reply, Menu: s.Entry(ctx, shop, state).Menu, Intent: res.Intent}
}

// Device model.

type deviceModelStep struct{ extract Extractor }

func (s *deviceModelStep) Entry(_ context.Context, _ *entity.Shop, state *SessionState) Outcome {
	brand := state.Collected.DeviceBrand
	if brand == "" {
		brand = "автомобиля"
	}
	return Outcome{Text: fmt.Sprintf("Напишите модель вашего %s (и год, если знаете):", brand)}
}

func (s *deviceModelStep) Process(ctx context.Context, shop *entity.Shop, state *SessionState, text string) Outcome {
	res := s.extract.Process(ctx, extractionRequest(shop, state, StepDeviceModel, text))

	model := strField(res.Fields.DeviceModel)
	switch strings.ToLower(model) {
	case "не знаю", "unknown", "не указана", "null":
		model = ""
	}

	// Genuine off-topic keeps the user here; "I don't know" does not.
	if res.Intent == nlu.IntentOffTopic && !res.ShouldAdvance {
		return Outcome{Text: res.Reply, Intent: res.Intent}
	}

	category := strField(res.Fields.DeviceCategory)
	if category == "" {
		category = state.Collected.DeviceCategory
	}
	if category == "" {
		category = "car"
	}

	// Model is optional, the mechanic can clarify on-site.
	return Outcome{
		Text: res.Reply,
		Next: StepProblem,
		Update: Update{
			DeviceModel:    ptr(model),
			DeviceCategory: ptr(category),
		},
		Intent: nlu.IntentProvideData,
	}
}

// Problem.

type problemStep struct{ extract Extractor }

func (s *problemStep) Entry(_ context.Context, _ *entity.Shop, state *SessionState) Outcome {
	car := state.Collected.DeviceModel
	if car == "" {
		car = state.Collected.DeviceBrand
	}
	if car == "" {
		car = "автомобилем"
	}
	return Outcome{Text: fmt.Sprintf("Что случилось с %s?", car), Menu: problemKeyboard()}
}

func (s *problemStep) Process(ctx context.Context, shop *entity.Shop, state *SessionState, text string) Outcome {
	res := s.extract.Process(ctx, extractionRequest(shop, state, StepProblem, text))

	parsed := res.Fields
	hasProblemData := strField(parsed.ProblemDescription) != "" || strField(parsed.ProblemCategory) != ""

	// A described problem advances even when the intent came back as a
	// question ("тормоза скрипят, это опасно?").
	if (res.Intent == nlu.IntentQuestion || res.Intent == nlu.IntentOffTopic) && !hasProblemData {
		return Outcome{Text: res.Reply, Menu: problemKeyboard(), Intent: res.Intent}
	}

	category := strField(parsed.ProblemCategory)
	if category == "" {
		category = "other"
	}
	description := strField(parsed.ProblemDescription)
	if description == "" {
		description = text
	}

	update := Update{
		ProblemRaw:         ptr(text),
		ProblemCategory:    ptr(category),
		ProblemDescription: ptr(description),
	}
	if strField(parsed.UrgencyHint) == "urgent" {
		update.Urgency = ptr("urgent")
	}

	return Outcome{Text: res.Reply, Next: StepEstimate, Update: update, Intent: nlu.IntentProvideData}
}

// Estimate.

type estimateStep struct{ extract Extractor }

func (s *estimateStep) Entry(_ context.Context, _ *entity.Shop, state *SessionState) Outcome {
	c := state.Collected
	device := strings.TrimSpace(strings.TrimSpace(c.DeviceBrand) + " " + strings.TrimSpace(c.DeviceModel))
	problem := c.ProblemDescription
	if problem == "" {
		problem = c.ProblemCategory
	}
	if problem == "" {
		problem = "ремонт"
	}

	if c.EstimatedPriceMin > 0 && c.EstimatedPriceMax > 0 {
		return Outcome{Text: fmt.Sprintf(
			"🚗 %s — %s\n\n"+
				"Ориентировочная стоимость: %s – %s ₽\n\n"+
				"Точную цену мастер назовёт после осмотра. Хотите записаться на приём?",
			device, problem, FormatPrice(c.EstimatedPriceMin), FormatPrice(c.EstimatedPriceMax))}
	}
	return Outcome{Text: fmt.Sprintf(
		"🚗 %s — %s\n\n"+
			"Точную стоимость назовём после диагностики.\n"+
			"Компьютерная диагностика от 500 ₽, занимает 20–30 минут.\n\n"+
			"Хотите записаться?",
		device, problem)}
}

func (s *estimateStep) Process(ctx context.Context, shop *entity.Shop, state *SessionState, text string) Outcome {
	res := s.extract.Process(ctx, extractionRequest(shop, state, StepEstimate, text))

	if res.Intent == nlu.IntentQuestion || res.Intent == nlu.IntentOffTopic {
		return Outcome{Text: res.Reply, Intent: res.Intent}
	}

	var update Update
	if pt := strField(res.Fields.PreferredTime); pt != "" {
		update.PreferredTime = ptr(pt)
	}

	decision := strField(res.Fields.Decision)
	if decision == "appointment" || res.Intent == nlu.IntentConfirm {
		return Outcome{Text: res.Reply, Next: StepContactInfo, Update: update, Intent: res.Intent}
	}
	// Thinking it over, declining or asking for a master all close the
	// funnel; master requests are also caught upstream by the handoff
	// detector.
	return Outcome{Text: res.Reply, Next: StepCompleted, Update: update, Intent: res.Intent}
}

// Contact info.

type contactInfoStep struct{ extract Extractor }

func (s *contactInfoStep) Entry(_ context.Context, _ *entity.Shop, state *SessionState) Outcome {
	if state.Collected.CustomerName != "" {
		return Outcome{Text: "Оставьте номер телефона для связи (или напишите «пропустить»):"}
	}
	return Outcome{Text: "Как к вам обращаться?"}
}

func (s *contactInfoStep) Process(ctx context.Context, shop *entity.Shop, state *SessionState, text string) Outcome {
	res := s.extract.Process(ctx, extractionRequest(shop, state, StepContactInfo, text))

	if res.Intent == nlu.IntentQuestion || res.Intent == nlu.IntentOffTopic {
		return Outcome{Text: res.Reply, Intent: res.Intent}
	}

	parsed := res.Fields

	// Name already known: this input is the phone.
	if state.Collected.CustomerName != "" && state.Collected.CustomerPhone == "" {
		phone := strField(parsed.CustomerPhone)
		if phone == "" {
			phone = strings.TrimSpace(text)
		}
		return Outcome{
			Text:   res.Reply,
			Next:   StepCompleted,
			Update: Update{CustomerPhone: ptr(NormalizePhone(phone))},
			Intent: res.Intent,
		}
	}

	name := strField(parsed.CustomerName)
	if name == "" {
		name = strings.TrimSpace(text)
	}

	if phone := strField(parsed.CustomerPhone); phone != "" {
		return Outcome{
			Text: res.Reply,
			Next: StepCompleted,
			Update: Update{
				CustomerName:  ptr(name),
				CustomerPhone: ptr(NormalizePhone(phone)),
			},
			Intent: res.Intent,
		}
	}

	// Got the name, the reply should ask for the phone.
	return Outcome{Text: res.Reply, Update: Update{CustomerName: ptr(name)}, Intent: res.Intent}
}
