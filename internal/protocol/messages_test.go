package protocol

import (
	"errors"
	"testing"
)

func TestParseClientMessageUserMessage(t *testing.T) {
	parsed, err := ParseClientMessage([]byte(`{"type":"user_message","id":"m-1","text":"2+2"}`))
	if err != nil {
		t.Fatalf("ParseClientMessage error = %v", err)
	}
	msg, ok := parsed.(UserMessage)
	if !ok {
		t.Fatalf("parsed type = %T, want UserMessage", parsed)
	}
	if msg.ID != "m-1" || msg.Text != "2+2" {
		t.Fatalf("parsed = %+v, want id m-1 text 2+2", msg)
	}
}

func TestParseClientMessageUnsupportedType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"assistant_message","text":"nope"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseClientMessageInvalidJSON(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`{not json`)); err == nil {
		t.Fatalf("ParseClientMessage succeeded on invalid JSON, want error")
	}
}

func TestNewAssistantMessage(t *testing.T) {
	msg := NewAssistantMessage("m-1", "The result is 4.", 7)
	if msg.Type != TypeAssistantMessage {
		t.Fatalf("Type = %q, want %q", msg.Type, TypeAssistantMessage)
	}
	if msg.ID == "" {
		t.Fatalf("ID is empty, want generated id")
	}
	if msg.ReplyTo != "m-1" || msg.TurnID != 7 || msg.Text != "The result is 4." {
		t.Fatalf("msg = %+v", msg)
	}
	if msg.TSMs == 0 {
		t.Fatalf("TSMs = 0, want send timestamp")
	}
}
