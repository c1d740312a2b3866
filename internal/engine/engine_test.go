package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jaehyuk-k/miru/internal/convlog"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 30, 14, 5, 9, 0, time.Local)
}

func newTestEngine(t *testing.T) (*Engine, *convlog.InMemoryStore) {
	t.Helper()
	store := convlog.NewInMemoryStore()
	eng := New(store, nil, Config{Clock: fixedClock})
	return eng, store
}

func TestArithmeticAnswers(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	cases := []struct {
		msg  string
		want string
	}{
		{"2+2", "The result is 4."},
		{"2 + 2", "The result is 4."},
		{"7/2", "The result is 3.5."},
		{"7//2", "The result is 3."},
		{"-7//2", "The result is -4."},
		{"2**10", "The result is 1024."},
		{"2**0.5", "The result is 1.4142135623730951."},
		{"today 3+3", "The result is 6."}, // arithmetic outranks the date keyword
	}
	for _, tc := range cases {
		if got := eng.GenerateResponse(ctx, tc.msg); got != tc.want {
			t.Fatalf("GenerateResponse(%q) = %q, want %q", tc.msg, got, tc.want)
		}
	}
}

func TestArithmeticFallthrough(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	// Division by zero matches the arithmetic rule, fails evaluation, and
	// must land on a lower rule instead of an error.
	if got := eng.GenerateResponse(ctx, "5%0"); got != fallbackReply {
		t.Fatalf("GenerateResponse(\"5%%0\") = %q, want fallback reply", got)
	}
	// Unparseable digit+operator input behaves the same.
	if got := eng.GenerateResponse(ctx, "room 2-b"); got != fallbackReply {
		t.Fatalf("GenerateResponse(\"room 2-b\") = %q, want fallback reply", got)
	}
	// Fall-through continues against the remaining rules, not straight to
	// fallback: a date keyword in the same message still answers.
	if got := eng.GenerateResponse(ctx, "today's agenda: 3/"); !strings.HasPrefix(got, "Today's date is ") {
		t.Fatalf("GenerateResponse(\"today's agenda: 3/\") = %q, want date reply", got)
	}
}

func TestDateAndTimeReplies(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	if got := eng.GenerateResponse(ctx, "what day is it"); got != "Today's date is 2026-08-30 (local time)." {
		t.Fatalf("date reply = %q", got)
	}
	if got := eng.GenerateResponse(ctx, "what time is it"); got != "The current time is 14:05:09 (local time)." {
		t.Fatalf("time reply = %q", got)
	}
}

func TestHistoryRecallEmpty(t *testing.T) {
	eng, _ := newTestEngine(t)
	if got := eng.GenerateResponse(context.Background(), "show me our history"); got != noHistoryReply {
		t.Fatalf("recall on empty store = %q, want %q", got, noHistoryReply)
	}
}

func TestHistoryRecallRendersChronologically(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	if _, err := store.Append(ctx, "first", "one"); err != nil {
		t.Fatalf("Append error = %v", err)
	}
	if _, err := store.Append(ctx, "second", "two"); err != nil {
		t.Fatalf("Append error = %v", err)
	}

	got := eng.GenerateResponse(ctx, "show me our history")
	want := historyHeader +
		"\n1. You said: 'first' | I responded: 'one'" +
		"\n2. You said: 'second' | I responded: 'two'"
	if got != want {
		t.Fatalf("recall = %q, want %q", got, want)
	}
}

func TestHistoryRecallHonorsLimit(t *testing.T) {
	store := convlog.NewInMemoryStore()
	eng := New(store, nil, Config{HistoryLimit: 2, Clock: fixedClock})
	ctx := context.Background()

	for _, msg := range []string{"a", "b", "c"} {
		if _, err := store.Append(ctx, msg, "re:"+msg); err != nil {
			t.Fatalf("Append error = %v", err)
		}
	}

	got := eng.GenerateResponse(ctx, "show me our history")
	if strings.Contains(got, "'a'") {
		t.Fatalf("recall included turn beyond limit: %q", got)
	}
	if !strings.Contains(got, "'b'") || !strings.Contains(got, "'c'") {
		t.Fatalf("recall missing recent turns: %q", got)
	}
}

type failingStore struct{}

func (failingStore) Append(context.Context, string, string) (convlog.Turn, error) {
	return convlog.Turn{}, errors.New("disk gone")
}
func (failingStore) Recent(context.Context, int) ([]convlog.Turn, error) {
	return nil, errors.New("disk gone")
}
func (failingStore) Close() error { return nil }

func TestHistoryRecallStoreFailureStillReplies(t *testing.T) {
	eng := New(failingStore{}, nil, Config{Clock: fixedClock})
	if got := eng.GenerateResponse(context.Background(), "show me our history"); got != noHistoryReply {
		t.Fatalf("recall with failing store = %q, want %q", got, noHistoryReply)
	}
}

func TestSelfIdentifyAndFallback(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	if got := eng.GenerateResponse(ctx, "who are you"); got != selfReply {
		t.Fatalf("self reply = %q", got)
	}
	if got := eng.GenerateResponse(ctx, "sing me a song"); got != fallbackReply {
		t.Fatalf("fallback reply = %q", got)
	}
}

func TestDeterminismForFixedStore(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()
	if _, err := store.Append(ctx, "hi", "hello"); err != nil {
		t.Fatalf("Append error = %v", err)
	}

	for _, msg := range []string{"2+2", "who are you", "show me our history", "blah"} {
		first := eng.GenerateResponse(ctx, msg)
		second := eng.GenerateResponse(ctx, msg)
		if first != second {
			t.Fatalf("GenerateResponse(%q) not deterministic: %q then %q", msg, first, second)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{4, "4"},
		{-4, "-4"},
		{3.5, "3.5"},
		{1024, "1024"},
		{0.5, "0.5"},
		{1500.5, "1500.5"},
		{0, "0"},
	}
	for _, tc := range cases {
		if got := FormatNumber(tc.in); got != tc.want {
			t.Fatalf("FormatNumber(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
