package chat

import (
	"testing"

	"AutoLead/ai/nlu"
)

func TestStepNext_FunnelOrder(t *testing.T) {
	cases := []struct {
		step Step
		want Step
	}{
		{StepGreeting, StepDeviceType},
		{StepDeviceType, StepDeviceModel},
		{StepDeviceModel, StepProblem},
		{StepProblem, StepPreviousRepair},
		{StepPreviousRepair, StepUrgency},
		{StepUrgency, StepEstimate},
		{StepEstimate, StepContactInfo},
		{StepContactInfo, StepCompleted},
	}
	for _, tc := range cases {
		got, ok := tc.step.next()
		if !ok {
			t.Errorf("%s: expected a next step", tc.step)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: expected next %s, got %s", tc.step, tc.want, got)
		}
	}

	if _, ok := StepCompleted.next(); ok {
		t.Error("completed must be terminal")
	}
}

func TestUpdateApply_PartialFields(t *testing.T) {
	c := CollectedData{
		DeviceBrand: "Toyota",
		ProblemRaw:  "стук спереди",
	}

	u := Update{
		DeviceModel: ptr("Camry"),
		Urgency:     ptr("urgent"),
	}
	u.apply(&c)

	if c.DeviceBrand != "Toyota" {
		t.Errorf("nil update field must not touch collected data, got brand %q", c.DeviceBrand)
	}
	if c.DeviceModel != "Camry" || c.Urgency != "urgent" {
		t.Errorf("expected model/urgency applied, got %q / %q", c.DeviceModel, c.Urgency)
	}

	// A pointer to empty string clears the field.
	Update{DeviceModel: ptr("")}.apply(&c)
	if c.DeviceModel != "" {
		t.Errorf("expected model cleared, got %q", c.DeviceModel)
	}
}

func TestPushHistory_TrimsWindow(t *testing.T) {
	s := NewSessionState("conv-1", "shop-1", "telegram")

	for i := 0; i < MaxHistory+4; i++ {
		s.PushHistory("user", "msg")
	}
	s.PushHistory("bot", "latest")

	if len(s.MessageHistory) != MaxHistory {
		t.Fatalf("expected history capped at %d, got %d", MaxHistory, len(s.MessageHistory))
	}
	last := s.MessageHistory[len(s.MessageHistory)-1]
	if last != (nlu.Turn{Role: "bot", Text: "latest"}) {
		t.Fatalf("expected newest turn kept, got %+v", last)
	}
}

func TestNewSessionState(t *testing.T) {
	s := NewSessionState("conv-1", "shop-1", "whatsapp")
	if s.CurrentStep != StepGreeting {
		t.Errorf("expected greeting step, got %s", s.CurrentStep)
	}
	if s.ConversationID != "conv-1" || s.ShopID != "shop-1" || s.Channel != "whatsapp" {
		t.Errorf("unexpected identity fields: %+v", s)
	}
}
