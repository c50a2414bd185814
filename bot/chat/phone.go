package chat

import "github.com/nyaruka/phonenumbers"

// defaultRegion resolves local numbers without a country code.
const defaultRegion = "RU"

// NormalizePhone formats a raw phone into E.164. When the input does
// not parse as a valid number it is returned as typed so the lead
// still carries whatever the customer gave us.
func NormalizePhone(raw string) string {
	num, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

// IsValidPhone reports whether raw parses as a dialable number.
func IsValidPhone(raw string) bool {
	num, err := phonenumbers.Parse(raw, defaultRegion)
	return err == nil && phonenumbers.IsValidNumber(num)
}
