package intent

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		msg  string
		want Intent
	}{
		{"2+2", Arithmetic},
		{"what is 3 * 4", Arithmetic},
		{"room 2-b", Arithmetic}, // pre-filter accepts; evaluator sorts it out later
		{"What day is it?", DateQuery},
		{"오늘 날짜 알려줘", DateQuery},
		{"what time is it", TimeQuery},
		{"현재 시간", TimeQuery},
		{"show me our history", HistoryRecall},
		{"do you remember what I said", HistoryRecall},
		{"대화 내역 보여줘", HistoryRecall},
		{"who are you", SelfIdentify},
		{"WHO ARE YOU", SelfIdentify},
		{"tell me your difference", SelfIdentify},
		{"hello there", Fallback},
		{"", Fallback},
	}
	for _, tc := range cases {
		if got := Classify(tc.msg); got != tc.want {
			t.Fatalf("Classify(%q) = %q, want %q", tc.msg, got, tc.want)
		}
	}
}

func TestClassifyArithmeticPrecedesDate(t *testing.T) {
	// Both a date keyword and a digit+operator pair: rule 1 must win.
	if got := Classify("today 3+3"); got != Arithmetic {
		t.Fatalf("Classify(\"today 3+3\") = %q, want %q", got, Arithmetic)
	}
}

func TestRuleOrderIsDeclaredOrder(t *testing.T) {
	want := []Intent{Arithmetic, DateQuery, TimeQuery, HistoryRecall, SelfIdentify, Fallback}
	if len(Rules) != len(want) {
		t.Fatalf("len(Rules) = %d, want %d", len(Rules), len(want))
	}
	for i, w := range want {
		if Rules[i].Intent != w {
			t.Fatalf("Rules[%d].Intent = %q, want %q", i, Rules[i].Intent, w)
		}
	}
}

func TestFallbackRuleMatchesAnything(t *testing.T) {
	last := Rules[len(Rules)-1]
	if last.Intent != Fallback {
		t.Fatalf("terminal rule = %q, want %q", last.Intent, Fallback)
	}
	for _, msg := range []string{"", "anything at all", "???"} {
		if !last.Match(msg) {
			t.Fatalf("fallback rule did not match %q", msg)
		}
	}
}
