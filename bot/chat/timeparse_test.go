package chat

import (
	"testing"
	"time"
)

var parseNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestParsePreferredTime_TomorrowWithClock(t *testing.T) {
	got, ok := ParsePreferredTime("завтра в 10:00", parseNow)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	want := time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParsePreferredTime_DayAfterTomorrow(t *testing.T) {
	// "послезавтра" contains "завтра" and must win the day resolution.
	got, ok := ParsePreferredTime("послезавтра в 9", parseNow)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	want := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParsePreferredTime_ClockVariants(t *testing.T) {
	cases := []struct {
		text         string
		hour, minute int
	}{
		{"15:30", 15, 30},
		{"17.45", 17, 45},
		{"в 17", 17, 0},
		{"в17", 17, 0},
		{"11", 11, 0},
	}
	for _, tc := range cases {
		got, ok := ParsePreferredTime(tc.text, parseNow)
		if !ok {
			t.Errorf("%q: expected parse to succeed", tc.text)
			continue
		}
		if got.Hour() != tc.hour || got.Minute() != tc.minute {
			t.Errorf("%q: expected %02d:%02d, got %02d:%02d", tc.text, tc.hour, tc.minute, got.Hour(), got.Minute())
		}
		if got.Day() != parseNow.Day() {
			t.Errorf("%q: expected today, got day %d", tc.text, got.Day())
		}
	}
}

func TestParsePreferredTime_Rejects(t *testing.T) {
	// Day words without an hour, no time at all, impossible clocks.
	cases := []string{
		"завтра",
		"когда удобно",
		"в 99",
		"25:70",
		"",
	}
	for _, text := range cases {
		if _, ok := ParsePreferredTime(text, parseNow); ok {
			t.Errorf("%q: expected parse to fail", text)
		}
	}
}
