package httpapi

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jaehyuk-k/miru/internal/protocol"
)

const (
	wsReadLimit    = 1 << 20
	wsReadTimeout  = 120 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// handleChatWS answers user_message payloads over a websocket. Each message
// is classified and answered independently, exactly like a POST to /v1/chat;
// reads and writes stay on this goroutine so writes are never interleaved.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.ActiveWSClients.Inc()
	defer s.metrics.ActiveWSClients.Dec()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		if msgType != websocket.TextMessage {
			continue
		}

		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			s.writeWS(conn, protocol.TypeErrorEvent, protocol.NewErrorEvent("invalid_client_message", err.Error()))
			continue
		}
		msg, ok := parsed.(protocol.UserMessage)
		if !ok {
			s.writeWS(conn, protocol.TypeErrorEvent, protocol.NewErrorEvent("invalid_client_message", "unexpected payload"))
			continue
		}
		s.metrics.WSMessages.WithLabelValues("inbound", string(protocol.TypeUserMessage)).Inc()

		text := strings.TrimSpace(msg.Text)
		if text == "" {
			s.writeWS(conn, protocol.TypeErrorEvent, protocol.NewErrorEvent("empty_message", promptForInput))
			continue
		}

		start := time.Now()
		reply := s.engine.GenerateResponse(r.Context(), text)
		s.metrics.ObserveTurnLatency(time.Since(start))

		var turnID int64
		if turn, err := s.store.Append(r.Context(), text, reply); err != nil {
			log.Printf("append turn failed: %v", err)
			s.metrics.StoreErrors.WithLabelValues("append").Inc()
		} else {
			turnID = turn.ID
		}

		s.writeWS(conn, protocol.TypeAssistantMessage, protocol.NewAssistantMessage(msg.ID, reply, turnID))
	}
}

func (s *Server) writeWS(conn *websocket.Conn, t protocol.MessageType, v any) {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(v); err != nil {
		return
	}
	s.metrics.WSMessages.WithLabelValues("outbound", string(t)).Inc()
}
