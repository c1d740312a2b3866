// Package engine turns a classified message into a reply.
package engine

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/jaehyuk-k/miru/internal/convlog"
	"github.com/jaehyuk-k/miru/internal/expr"
	"github.com/jaehyuk-k/miru/internal/intent"
	"github.com/jaehyuk-k/miru/internal/observability"
)

const (
	noHistoryReply = "There is no previous conversation yet."
	historyHeader  = "Here is our recent conversation history:"
	selfReply      = "I am a small open-source AI assistant. Unlike large models such as ChatGPT " +
		"or Gemini, I run entirely on simple logic without access to external APIs " +
		"or massive datasets. I can perform arithmetic, tell the date and time, and " +
		"remember our conversation, but I don't pretend to know everything."
	fallbackReply = "I'm sorry, I don't have enough information to answer that. " +
		"I'm still learning and rely on simple reasoning rather than vast knowledge."
)

// Config carries engine tunables; zero values get safe defaults.
type Config struct {
	// HistoryLimit is how many turns a history recall renders.
	HistoryLimit int
	// MaxExpressionLen skips the arithmetic attempt for longer messages.
	MaxExpressionLen int
	// Clock supplies the wall time for date/time answers; tests inject it.
	Clock func() time.Time
}

// Engine generates replies. It holds no per-session state: continuity comes
// only from re-querying the persisted log. Persisting the current turn is
// the caller's job, performed after generation.
type Engine struct {
	store        convlog.Store
	metrics      *observability.Metrics
	historyLimit int
	maxExprLen   int
	clock        func() time.Time
}

func New(store convlog.Store, metrics *observability.Metrics, cfg Config) *Engine {
	e := &Engine{
		store:        store,
		metrics:      metrics,
		historyLimit: cfg.HistoryLimit,
		maxExprLen:   cfg.MaxExpressionLen,
		clock:        cfg.Clock,
	}
	if e.historyLimit <= 0 {
		e.historyLimit = 10
	}
	if e.maxExprLen <= 0 {
		e.maxExprLen = 512
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	return e
}

// GenerateResponse answers one message. It always returns a reply: rules are
// tried in priority order, and an arithmetic match whose expression fails to
// evaluate falls through to the remaining rules instead of surfacing the
// failure.
func (e *Engine) GenerateResponse(ctx context.Context, message string) string {
	msg := intent.Normalize(message)
	for _, rule := range intent.Rules {
		if !rule.Match(msg) {
			continue
		}
		reply, ok := e.handle(ctx, rule.Intent, msg)
		if !ok {
			continue
		}
		if e.metrics != nil {
			e.metrics.Turns.WithLabelValues(string(rule.Intent)).Inc()
		}
		return reply
	}
	// Unreachable: the terminal fallback rule matches unconditionally.
	return fallbackReply
}

func (e *Engine) handle(ctx context.Context, it intent.Intent, msg string) (string, bool) {
	switch it {
	case intent.Arithmetic:
		return e.answerArithmetic(msg)
	case intent.DateQuery:
		return fmt.Sprintf("Today's date is %s (local time).", e.clock().Format("2006-01-02")), true
	case intent.TimeQuery:
		return fmt.Sprintf("The current time is %s (local time).", e.clock().Format("15:04:05")), true
	case intent.HistoryRecall:
		return e.answerHistory(ctx), true
	case intent.SelfIdentify:
		return selfReply, true
	default:
		return fallbackReply, true
	}
}

// answerArithmetic reports ok=false when the message is not an evaluable
// expression, which resumes rule matching at the next rule.
func (e *Engine) answerArithmetic(msg string) (string, bool) {
	if len(msg) > e.maxExprLen {
		e.countFallthrough("too_long")
		return "", false
	}
	node, err := expr.Parse(msg)
	if err != nil {
		e.countFallthrough("parse")
		return "", false
	}
	value, err := expr.Evaluate(node)
	if err != nil {
		e.countFallthrough("eval")
		return "", false
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		// Results like 0**-1 or (-1)**0.5 have no sensible rendering.
		e.countFallthrough("non_finite")
		return "", false
	}
	return fmt.Sprintf("The result is %s.", FormatNumber(value)), true
}

func (e *Engine) answerHistory(ctx context.Context) string {
	turns, err := e.store.Recent(ctx, e.historyLimit)
	if err != nil {
		log.Printf("history recall failed: %v", err)
		if e.metrics != nil {
			e.metrics.StoreErrors.WithLabelValues("recent").Inc()
		}
		return noHistoryReply
	}
	if len(turns) == 0 {
		return noHistoryReply
	}
	var b strings.Builder
	b.WriteString(historyHeader)
	for i, t := range turns {
		fmt.Fprintf(&b, "\n%d. You said: '%s' | I responded: '%s'", i+1, t.UserText, t.AIText)
	}
	return b.String()
}

func (e *Engine) countFallthrough(stage string) {
	if e.metrics != nil {
		e.metrics.EvalFallthroughs.WithLabelValues(stage).Inc()
	}
}
