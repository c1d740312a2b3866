// Package intent classifies a chat message into exactly one intent using an
// ordered, first-match rule list.
package intent

import "strings"

// Intent is the classification assigned to an incoming message.
type Intent string

const (
	Arithmetic    Intent = "arithmetic"
	DateQuery     Intent = "date_query"
	TimeQuery     Intent = "time_query"
	HistoryRecall Intent = "history_recall"
	SelfIdentify  Intent = "self_identify"
	Fallback      Intent = "fallback"
)

// Keyword sets cover English and Korean phrasings.
var (
	dateKeywords     = []string{"date", "day", "today", "날짜", "요일"}
	timeKeywords     = []string{"time", "현재 시간", "시각", "hour", "minute"}
	recallKeywords   = []string{"history", "memory", "log", "대화", "내역", "지난", "remember"}
	identityKeywords = []string{"who are you", "what are you", "이름", "정체", "your difference"}
)

// Rule pairs an intent with its predicate over a normalized message.
type Rule struct {
	Intent Intent
	Match  func(msg string) bool
}

// Rules is the classification policy, highest priority first. Evaluation is
// first-match; the terminal fallback rule matches unconditionally. The
// arithmetic predicate is a cheap pre-filter, not a parseability guarantee:
// when the expression later fails to evaluate, the caller resumes with the
// rules after it.
var Rules = []Rule{
	{Intent: Arithmetic, Match: looksArithmetic},
	{Intent: DateQuery, Match: containsAny(dateKeywords)},
	{Intent: TimeQuery, Match: containsAny(timeKeywords)},
	{Intent: HistoryRecall, Match: containsAny(recallKeywords)},
	{Intent: SelfIdentify, Match: containsAny(identityKeywords)},
	{Intent: Fallback, Match: func(string) bool { return true }},
}

// Normalize lowercases and trims a message the way every predicate expects.
func Normalize(msg string) string {
	return strings.ToLower(strings.TrimSpace(msg))
}

// Classify returns the first matching intent for the message.
func Classify(msg string) Intent {
	m := Normalize(msg)
	for _, r := range Rules {
		if r.Match(m) {
			return r.Intent
		}
	}
	return Fallback
}

// looksArithmetic matches messages carrying at least one digit and one
// arithmetic operator character.
func looksArithmetic(msg string) bool {
	return strings.ContainsAny(msg, "0123456789") && strings.ContainsAny(msg, "+-*/%")
}

func containsAny(keywords []string) func(string) bool {
	return func(msg string) bool {
		for _, kw := range keywords {
			if strings.Contains(msg, kw) {
				return true
			}
		}
		return false
	}
}
