// Package httpapi exposes the responder over HTTP: a JSON chat endpoint, a
// history listing, a websocket chat stream and the embedded UI.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/jaehyuk-k/miru/internal/config"
	"github.com/jaehyuk-k/miru/internal/convlog"
	"github.com/jaehyuk-k/miru/internal/engine"
	"github.com/jaehyuk-k/miru/internal/observability"
)

const promptForInput = "Please provide a message."

const maxHistoryLimit = 100

type Server struct {
	cfg      config.Config
	store    convlog.Store
	engine   *engine.Engine
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
	static   http.Handler
}

func New(cfg config.Config, store convlog.Store, eng *engine.Engine, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:     cfg,
		store:   store,
		engine:  eng,
		metrics: metrics,
		static:  newStaticHandler(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless explicitly opened up.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Get("/ui", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Handle("/ui/*", http.StripPrefix("/ui/", s.static))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/chat", s.handleChat)
	r.Get("/v1/history", s.handleHistory)
	r.Get("/v1/chat/ws", s.handleChatWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"store_mode": s.storeMode(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"store_mode": s.storeMode(),
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
	TurnID   int64  `json:"turn_id,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		// Precondition failure: neither the dispatcher nor the store sees
		// an empty message.
		respondJSON(w, http.StatusOK, chatResponse{Response: promptForInput})
		return
	}

	start := time.Now()
	reply := s.engine.GenerateResponse(r.Context(), msg)
	s.metrics.ObserveTurnLatency(time.Since(start))

	// Persist after generation; a logging failure never suppresses the
	// already-computed reply.
	turn, err := s.store.Append(r.Context(), msg, reply)
	if err != nil {
		log.Printf("append turn failed: %v", err)
		s.metrics.StoreErrors.WithLabelValues("append").Inc()
		respondJSON(w, http.StatusOK, chatResponse{Response: reply})
		return
	}
	respondJSON(w, http.StatusOK, chatResponse{Response: reply, TurnID: turn.ID})
}

type historyResponse struct {
	Turns []convlog.Turn `json:"turns"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := convlog.DefaultRecentLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	turns, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("history query failed: %v", err)
		s.metrics.StoreErrors.WithLabelValues("recent").Inc()
		respondError(w, http.StatusInternalServerError, "store_unavailable", "could not read conversation history")
		return
	}
	if turns == nil {
		turns = []convlog.Turn{}
	}
	respondJSON(w, http.StatusOK, historyResponse{Turns: turns})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

func (s *Server) storeMode() string {
	switch s.store.(type) {
	case *convlog.PostgresStore:
		return "postgres"
	case *convlog.SQLiteStore:
		return "sqlite"
	case *convlog.InMemoryStore:
		return "in-memory"
	default:
		return "custom"
	}
}
