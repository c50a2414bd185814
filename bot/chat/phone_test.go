package chat

import "testing"

func TestNormalizePhone_RussianFormats(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"89161234567", "+79161234567"},
		{"+7 916 123-45-67", "+79161234567"},
		{"8 (916) 123 45 67", "+79161234567"},
		{"+79161234567", "+79161234567"},
	}
	for _, tc := range cases {
		if got := NormalizePhone(tc.raw); got != tc.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizePhone_InvalidKeptAsTyped(t *testing.T) {
	for _, raw := range []string{"12345", "позвоните вечером", ""} {
		if got := NormalizePhone(raw); got != raw {
			t.Errorf("NormalizePhone(%q) = %q, want input back", raw, got)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	if !IsValidPhone("89161234567") {
		t.Error("expected local mobile number to be valid")
	}
	if IsValidPhone("12345") {
		t.Error("expected short number to be invalid")
	}
}
