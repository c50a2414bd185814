package chat

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatNumberedMenu renders menu options as a numbered text list for
// channels without inline keyboards (WhatsApp).
func FormatNumberedMenu(text string, rows [][]MenuOption) string {
	var sb strings.Builder
	sb.WriteString(text)
	sb.WriteString("\n\n")

	idx := 1
	for _, row := range rows {
		for _, opt := range row {
			fmt.Fprintf(&sb, "%d. %s\n", idx, opt.Label)
			idx++
		}
	}
	sb.WriteString("\nОтветьте номером варианта:")
	return sb.String()
}

// MatchNumberToOption maps a typed number back to the callback data of
// the corresponding option. Empty string when the text is not a valid
// option number.
func MatchNumberToOption(text string, rows [][]MenuOption) string {
	num, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || num < 1 {
		return ""
	}

	idx := 1
	for _, row := range rows {
		for _, opt := range row {
			if idx == num {
				return opt.Data
			}
			idx++
		}
	}
	return ""
}

// FormatPrice renders 15000 as "15,000". Shared by the estimate texts
// and the owner lead card so the two never drift apart.
func FormatPrice(v float64) string {
	n := int64(v + 0.5)
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var sb strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}
