package nlu

import (
	"io"
	"log/slog"
	"testing"
)

func testClient() *Client {
	return &Client{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestParse_PlainJSON(t *testing.T) {
	raw := `{
		"intent": "provide_data",
		"parsed_data": {"device_brand": "Toyota", "device_model": "Camry"},
		"response": "Отлично, что случилось с Camry?",
		"should_advance": true,
		"confidence": "high"
	}`

	res := testClient().parse("greeting", raw)

	if res.Intent != IntentProvideData {
		t.Errorf("expected provide_data, got %q", res.Intent)
	}
	if res.Fields.DeviceBrand == nil || *res.Fields.DeviceBrand != "Toyota" {
		t.Error("expected device_brand extracted")
	}
	if !res.ShouldAdvance || res.Confidence != "high" {
		t.Errorf("unexpected flags: advance=%v confidence=%q", res.ShouldAdvance, res.Confidence)
	}
}

func TestParse_MarkdownFenced(t *testing.T) {
	raw := "```json\n{\"intent\": \"question\", \"response\": \"Да, работаем по выходным.\"}\n```"

	res := testClient().parse("completed", raw)

	if res.Intent != IntentQuestion {
		t.Errorf("expected question intent, got %q", res.Intent)
	}
	if res.Reply != "Да, работаем по выходным." {
		t.Errorf("unexpected reply %q", res.Reply)
	}
}

func TestParse_InvalidJSONFallsBack(t *testing.T) {
	res := testClient().parse("device_model", "извините, не могу ответить в JSON")

	if res.Intent != IntentProvideData {
		t.Errorf("fallback must be provide_data, got %q", res.Intent)
	}
	if res.Reply != fallbackReplies["device_model"] {
		t.Errorf("expected the per-step fallback reply, got %q", res.Reply)
	}
}

func TestParse_EmptyResponseGetsFallbackReply(t *testing.T) {
	res := testClient().parse("problem", `{"intent": "provide_data"}`)

	if res.Reply != fallbackReplies["problem"] {
		t.Errorf("expected fallback reply substituted, got %q", res.Reply)
	}
	if res.Confidence != "low" {
		t.Errorf("expected low confidence default, got %q", res.Confidence)
	}
}

func TestParse_UnknownIntentNormalized(t *testing.T) {
	res := testClient().parse("problem", `{"intent": "chitchat", "response": "ок"}`)

	if res.Intent != IntentProvideData {
		t.Errorf("unknown intent must normalize to provide_data, got %q", res.Intent)
	}
}

func TestFallbackResult_UnknownStep(t *testing.T) {
	res := FallbackResult("nonexistent")
	if res.Reply != genericFallback {
		t.Errorf("expected generic fallback, got %q", res.Reply)
	}
}
