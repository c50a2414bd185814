package nlu

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Personality templates keyed by the shop's bot_personality setting.
var personalityStyles = map[string]string{
	"friendly": `Ты — Алекс, помощник в автосервисе.
Стиль: полуформальный, на "вы" с маленькой буквы. Дружелюбный, но конкретный.
Максимум 4 строки в ответе. Без канцелярита и пустых фраз.
Если человек описывает инцидент (авария, стук, не заводится) — коротко прояви эмпатию, затем к делу.`,
	"professional": `Ты — помощник в автосервисном центре.
Стиль: вежливый и деловой, на "Вы" с большой буквы. Без лишних эмоций.
Максимум 4 строки в ответе. Чётко и по делу.`,
	"casual": `Ты — Алекс, помогаешь с ремонтом авто.
Стиль: максимально простой, на "ты". Как друг, который разбирается в машинах.
Максимум 4 строки. Без формальностей.`,
}

const defaultFAQ = `ЧАСТЫЕ ВОПРОСЫ (отвечай на них, если спрашивают):
- Цена ремонта: зависит от марки, модели и вида работ. Точнее скажу когда узнаю марку и проблему.
- Что ремонтируем: двигатель, тормоза, подвеска, электрика, кузов, кондиционер, коробка передач, замена масла, шиномонтаж.
- Диагностика: компьютерная диагностика от 500 ₽, занимает 20–30 минут.
- Гарантия: на все виды ремонта — 6 месяцев или 10 000 км.`

// Per-step extraction instructions. The step name drives which fields
// the model should hunt for and when should_advance is true.
var stepInstructions = map[string]string{
	"greeting": `ЦЕЛЬ: узнать какой автомобиль нужно починить.
Нужные данные: device_category (всегда "car"), device_brand, device_model.
Распознавай русские написания и прозвища марок агрессивно: "ниссан хтерра 2007" = brand=Nissan, model=X-Terra 2007;
"камрюха" = Toyota Camry; "крузак" = Toyota Land Cruiser; "приорка" = Lada Priora.
Год (4 цифры) записывай в device_model как часть ("Camry 2018").
Если описана ПРОБЛЕМА без авто — сохрани problem_description и problem_category, should_advance=false, спроси марку.
Если есть И авто И проблема — собери всё, should_advance=true.
Марка без модели — should_advance=true (дальше спросим модель).`,
	"device_type": `ЦЕЛЬ: узнать марку автомобиля.
Нужные данные: device_brand, device_model (если скажет), device_category="car".
При advance — спроси модель коротко и естественно.`,
	"device_model": `ЦЕЛЬ: узнать модель и год автомобиля.
Нужные данные: device_model.
Если человек НЕ ЗНАЕТ модель («не знаю», «старый») — это нормально: device_model=null, should_advance=true,
скажи «ничего, разберёмся на месте» и спроси что случилось.
НЕ записывай текст вроде «она старая» как модель.`,
	"problem": `ЦЕЛЬ: понять что случилось с автомобилем.
Нужные данные: problem_category (engine_repair/brake_repair/oil_change/suspension_repair/diagnostics/bodywork/electrical/ac_repair/transmission/tire_service/other),
problem_description, urgency_hint (urgent/normal/flexible).
Описание неисправности — это intent="provide_data" и should_advance=true, НЕ вопрос.
При advance — ответ короткий: подтверди проблему, НЕ обещай «сейчас посчитаю» — оценка придёт автоматически.`,
	"estimate": `ЦЕЛЬ: клиент видит оценку стоимости и решает — записаться или нет.
Нужные данные: decision (appointment/call_master/think), preferred_time если назвал время.
Если клиент согласился (decision=appointment) — ОБЯЗАТЕЛЬНО спроси имя в конце ответа.
Если хочет подумать — «Без проблем. Напишите когда надумаете.»
Если задаёт вопрос — ответь по делу, should_advance=false.`,
	"contact_info": `ЦЕЛЬ: узнать имя и телефон для записи.
Нужные данные: customer_name, customer_phone.
Телефон нормализуй в международный формат. Если не дали телефон — не настаивай.
Если имя уже известно — спроси только телефон.
После телефона — подтверди запись коротко и тепло.`,
	"completed": `Заявка уже оформлена.
Если клиент задаёт вопрос — ответь по делу.
Если хочет начать заново — скажи написать /start.
Если спрашивает про статус — скажи что мастер свяжется.`,
}

const outputContract = `Верни СТРОГО JSON без пояснений:
{
  "intent": "provide_data" | "question" | "off_topic" | "greeting" | "confirm" | "decline",
  "parsed_data": {только найденные поля, остальные не включай},
  "response": "текст ответа клиенту",
  "should_advance": true | false,
  "confidence": "high" | "medium" | "low"
}`

func buildPrompt(req Request) string {
	style, ok := personalityStyles[req.Personality]
	if !ok {
		style = personalityStyles["friendly"]
	}

	var sb strings.Builder
	sb.WriteString(style)
	sb.WriteString("\n\n")

	if req.ShopName != "" {
		fmt.Fprintf(&sb, "Автосервис: %s.\n", req.ShopName)
	}
	if req.Address != "" {
		fmt.Fprintf(&sb, "Адрес: %s.\n", req.Address)
	}

	sb.WriteString(defaultFAQ)
	sb.WriteString("\n")
	if req.CustomFAQ != "" {
		fmt.Fprintf(&sb, "\nДОПОЛНИТЕЛЬНЫЕ ОТВЕТЫ (от владельца автосервиса):\n%s\n", req.CustomFAQ)
	}
	if req.PromoText != "" {
		fmt.Fprintf(&sb, "\nАКЦИИ И СКИДКИ (упомяни если уместно, но не навязывай):\n%s\n", req.PromoText)
	}

	if instruction, ok := stepInstructions[req.Step]; ok {
		sb.WriteString("\n")
		sb.WriteString(instruction)
		sb.WriteString("\n")
	}

	if collected, err := json.Marshal(req.Collected); err == nil && string(collected) != "null" {
		fmt.Fprintf(&sb, "\nУже собрано: %s\n", collected)
	}

	if len(req.History) > 0 {
		sb.WriteString("\nИстория диалога:\n")
		for _, turn := range req.History {
			who := "Алекс"
			if turn.Role == "user" {
				who = "Клиент"
			}
			fmt.Fprintf(&sb, "%s: %s\n", who, turn.Text)
		}
	}

	fmt.Fprintf(&sb, "\nСообщение клиента: %s\n\n%s", req.UserText, outputContract)
	return sb.String()
}
