// Package protocol defines the websocket chat message envelope.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeUserMessage      MessageType = "user_message"
	TypeAssistantMessage MessageType = "assistant_message"
	TypeErrorEvent       MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// UserMessage carries one free-text message from the client.
type UserMessage struct {
	Type MessageType `json:"type"`
	ID   string      `json:"id,omitempty"`
	Text string      `json:"text"`
}

// AssistantMessage carries one generated reply.
type AssistantMessage struct {
	Type    MessageType `json:"type"`
	ID      string      `json:"id"`
	ReplyTo string      `json:"reply_to,omitempty"`
	TurnID  int64       `json:"turn_id,omitempty"`
	Text    string      `json:"text"`
	TSMs    int64       `json:"ts_ms"`
}

// ErrorEvent reports a client-visible protocol problem.
type ErrorEvent struct {
	Type   MessageType `json:"type"`
	Code   string      `json:"code"`
	Detail string      `json:"detail,omitempty"`
}

// NewAssistantMessage stamps a reply with a fresh id and send time.
func NewAssistantMessage(replyTo, text string, turnID int64) AssistantMessage {
	return AssistantMessage{
		Type:    TypeAssistantMessage,
		ID:      uuid.NewString(),
		ReplyTo: replyTo,
		TurnID:  turnID,
		Text:    text,
		TSMs:    time.Now().UnixMilli(),
	}
}

// NewErrorEvent builds an error payload for the client.
func NewErrorEvent(code, detail string) ErrorEvent {
	return ErrorEvent{Type: TypeErrorEvent, Code: code, Detail: detail}
}

// ParseClientMessage decodes and validates one inbound payload.
func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeUserMessage:
		var msg UserMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
