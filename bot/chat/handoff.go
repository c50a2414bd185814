package chat

import (
	"regexp"
	"strings"
)

// Exact one-word commands that always mean "get me a human".
var handoffExact = map[string]struct{}{
	"мастер":      {},
	"оператор":    {},
	"человек":     {},
	"master":      {},
	"operator":    {},
	"менеджер":    {},
	"специалист":  {},
	"консультант": {},
}

// Person-words in any grammatical form (мастер/мастера/мастеру/...).
var handoffPersonRe = regexp.MustCompile(
	`мастер\w*|оператор\w*|специалист\w*|менеджер\w*|консультант\w*|человек\w*`)

// Action verbs and intent markers.
var handoffActionRe = regexp.MustCompile(
	`позови|позовите|переключи|переключите|соедини|соедините|` +
		`свяжи|свяжите|подключи|подключите|дай|дайте|` +
		`хочу|можно|нужен|нужна|нужно|давай|давайте|` +
		`поговорить|обсудить|связаться|пообщаться|побеседовать|` +
		`поговорю|обсужу|пообщаюсь|` +
		`говорить|общаться|звать|вызвать|вызови|вызовите|` +
		`попрос|жду|ждать|где(?:[^\p{L}\p{N}]|$)`)

// IsHandoffRequest reports whether lowered text asks for a human.
//
// Two-signal rule: a person-word plus an action-word anywhere in the
// message fires, regardless of word order. A person-word alone fires
// only when the message is short enough to read as a command
// ("мастера!" yes, "мастер сказал поменять колодки" no).
func IsHandoffRequest(lowered string) bool {
	if _, ok := handoffExact[lowered]; ok {
		return true
	}

	hasPerson := handoffPersonRe.MatchString(lowered)
	if !hasPerson {
		return false
	}
	if handoffActionRe.MatchString(lowered) {
		return true
	}
	return len(strings.Fields(lowered)) <= 3
}
