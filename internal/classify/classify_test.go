package classify

import (
	"strings"
	"testing"

	"github.com/kodexlabs/chat-widget/internal/domain"
	"github.com/kodexlabs/chat-widget/internal/protocol"
)

func TestClassifyDefaultTexts(t *testing.T) {
	tests := []struct {
		name     string
		frame    *protocol.Frame
		wantText string
	}{
		{
			name:     "form confirmation without body",
			frame:    &protocol.Frame{Type: protocol.TypeFormConfirmation},
			wantText: "Form submitted successfully!",
		},
		{
			name:     "form confirmation with body keeps it",
			frame:    &protocol.Frame{Type: protocol.TypeFormConfirmation, Message: "Thanks!"},
			wantText: "Thanks!",
		},
		{
			name:     "error without body",
			frame:    &protocol.Frame{Type: protocol.TypeError},
			wantText: "An error occurred.",
		},
		{
			name:     "unknown type without body",
			frame:    &protocol.Frame{Type: "telemetry_burst"},
			wantText: "[Unknown message type: telemetry_burst]",
		},
		{
			name:     "unknown type with body keeps it",
			frame:    &protocol.Frame{Type: "telemetry_burst", Message: "raw"},
			wantText: "raw",
		},
		{
			name:     "message prefers message over text",
			frame:    &protocol.Frame{Type: protocol.TypeMessage, Message: "hi", Text: "ignored"},
			wantText: "hi",
		},
		{
			name:     "message falls back to text",
			frame:    &protocol.Frame{Type: protocol.TypeMessage, Text: "fallback"},
			wantText: "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Classify(tt.frame)
			if r.Message == nil {
				t.Fatal("expected a message, got nil")
			}
			if r.Message.Text != tt.wantText {
				t.Errorf("text = %q, want %q", r.Message.Text, tt.wantText)
			}
			if r.Message.Sender != domain.SenderAssistant {
				t.Errorf("sender = %v, want assistant", r.Message.Sender)
			}
			if r.Message.ID == "" {
				t.Error("expected a generated message id")
			}
		})
	}
}

func TestClassifyPongIsSilent(t *testing.T) {
	r := Classify(&protocol.Frame{Type: protocol.TypePong})
	if r.Message != nil {
		t.Errorf("pong produced a message: %+v", r.Message)
	}
	if r.ClearTranscript || r.AgentUnassigned || r.AgentAssigned != "" {
		t.Errorf("pong produced side effects: %+v", r)
	}
}

func TestClassifyBareExitChat(t *testing.T) {
	r := Classify(&protocol.Frame{Type: protocol.TypeExitChat})
	if r.Message != nil {
		t.Errorf("bare exit frame produced a direct message: %+v", r.Message)
	}
	if !r.AgentUnassigned {
		t.Error("expected agent-unassigned signal")
	}
}

func TestClassifyExitChatWithBody(t *testing.T) {
	r := Classify(&protocol.Frame{Type: protocol.TypeExitChat, Message: "Agent left."})
	if r.Message == nil {
		t.Fatal("expected a message for an exit frame with a body")
	}
	if r.Message.Text != "Agent left." {
		t.Errorf("text = %q", r.Message.Text)
	}
	if !r.AgentUnassigned {
		t.Error("expected agent-unassigned signal")
	}
}

func TestClassifyAgentSignals(t *testing.T) {
	unavailable := false

	tests := []struct {
		name           string
		frame          *protocol.Frame
		wantAssigned   string
		wantUnassigned bool
		wantRestart    bool
	}{
		{
			name:           "support status unavailable",
			frame:          &protocol.Frame{Type: protocol.TypeSupportStatus, AgentAvailable: &unavailable},
			wantUnassigned: true,
		},
		{
			name:        "welcome re-arms",
			frame:       &protocol.Frame{Type: protocol.TypeWelcome, Message: "hi"},
			wantRestart: true,
		},
		{
			name:        "onboarding re-arms",
			frame:       &protocol.Frame{Type: protocol.TypeOnboarding, Message: "hi"},
			wantRestart: true,
		},
		{
			name: "agent private message by role prefers sender name",
			frame: &protocol.Frame{
				Type: protocol.TypePrivateMessage, Message: "hi",
				SenderRole: protocol.RoleAgent, SenderID: "a-17", SenderName: "ava_k",
			},
			wantAssigned: "ava_k",
		},
		{
			name: "agent private message falls back to sender id",
			frame: &protocol.Frame{
				Type: protocol.TypePrivateMessage, Message: "hi",
				SenderRole: protocol.RoleAgent, SenderID: "a-17",
			},
			wantAssigned: "a-17",
		},
		{
			name: "agent sender id marks agent without role",
			frame: &protocol.Frame{
				Type: protocol.TypePrivateMessage, Message: "hi",
				SenderID: protocol.RoleAgent,
			},
			wantAssigned: "agent",
		},
		{
			name:         "explicit agent id field",
			frame:        &protocol.Frame{Type: protocol.TypeUserAssigned, Message: "assigned", AgentID: "mira"},
			wantAssigned: "mira",
		},
		{
			name:  "user private message assigns nothing",
			frame: &protocol.Frame{Type: protocol.TypePrivateMessage, Message: "hi", SenderRole: protocol.RoleUser},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Classify(tt.frame)
			if r.AgentAssigned != tt.wantAssigned {
				t.Errorf("assigned = %q, want %q", r.AgentAssigned, tt.wantAssigned)
			}
			if r.AgentUnassigned != tt.wantUnassigned {
				t.Errorf("unassigned = %v, want %v", r.AgentUnassigned, tt.wantUnassigned)
			}
			if r.SessionRestart != tt.wantRestart {
				t.Errorf("restart = %v, want %v", r.SessionRestart, tt.wantRestart)
			}
		})
	}
}

func TestClassifyLLMResponseFencedJSON(t *testing.T) {
	body := "```json\n{\"message\":\"Here is a joke.\",\"buttons\":[{\"label\":\"Another one\",\"value\":\"another joke\"}]}\n```"
	r := Classify(&protocol.Frame{Type: protocol.TypeLLMResponse, Message: body})

	if r.Message == nil {
		t.Fatal("expected a message")
	}
	if r.Message.Text != "Here is a joke." {
		t.Errorf("text = %q", r.Message.Text)
	}
	if len(r.Buttons) != 1 || r.Buttons[0].Value != "another joke" {
		t.Errorf("buttons = %+v", r.Buttons)
	}
	if r.Message.Buttons == nil || r.Message.Buttons[0].Label != "Another one" {
		t.Errorf("message buttons = %+v", r.Message.Buttons)
	}
}

func TestClassifyLLMResponseBareJSON(t *testing.T) {
	body := `{"message":"plain object","options":[{"label":"A","value":"a"}]}`
	r := Classify(&protocol.Frame{Type: protocol.TypeLLMResponse, Message: body})

	if r.Message == nil || r.Message.Text != "plain object" {
		t.Fatalf("message = %+v", r.Message)
	}
	if len(r.Options) != 1 || r.Options[0].Value != "a" {
		t.Errorf("options = %+v", r.Options)
	}
}

func TestClassifyLLMResponsePlainText(t *testing.T) {
	// Outer frame carries buttons, but an unparseable body clears the
	// surface rather than presenting stale actions.
	r := Classify(&protocol.Frame{
		Type:    protocol.TypeLLMResponse,
		Message: "```\njust some prose\n```",
		Buttons: []domain.ActionButton{{Label: "Old", Value: "old"}},
	})

	if r.Message == nil {
		t.Fatal("expected a message")
	}
	if r.Message.Text != "just some prose" {
		t.Errorf("text = %q, want fence-stripped body", r.Message.Text)
	}
	if r.Buttons != nil || r.Options != nil {
		t.Errorf("surface not cleared: buttons=%+v options=%+v", r.Buttons, r.Options)
	}
	if r.Message.Buttons != nil {
		t.Errorf("message buttons not cleared: %+v", r.Message.Buttons)
	}
}

func TestClassifyLLMResponseEmptyNestedMessage(t *testing.T) {
	body := `{"buttons":[{"label":"Go","value":"go"}]}`
	r := Classify(&protocol.Frame{Type: protocol.TypeLLMResponse, Message: body})
	if r.Message == nil {
		t.Fatal("expected a message")
	}
	// No nested message: the stripped body stays as the text.
	if !strings.Contains(r.Message.Text, "buttons") {
		t.Errorf("text = %q", r.Message.Text)
	}
	if len(r.Buttons) != 1 {
		t.Errorf("buttons = %+v", r.Buttons)
	}
}

func TestClassifyClearPrevious(t *testing.T) {
	r := Classify(&protocol.Frame{Type: protocol.TypeClearChat, Message: "Fresh start", ClearPrevious: true})
	if !r.ClearTranscript {
		t.Error("expected transcript-clear signal")
	}
	if r.Message == nil || r.Message.Text != "Fresh start" {
		t.Errorf("message = %+v", r.Message)
	}
}

func TestClassifyPreservesFrameID(t *testing.T) {
	r := Classify(&protocol.Frame{Type: protocol.TypeMessage, ID: "srv-42", Message: "hi"})
	if r.Message.ID != "srv-42" {
		t.Errorf("id = %q, want srv-42", r.Message.ID)
	}
}

func TestClassifyFormFrame(t *testing.T) {
	form := &domain.FormSpec{Fields: []domain.FormField{{Name: "email", Label: "Email"}}}
	r := Classify(&protocol.Frame{Type: protocol.TypeForm, Message: "Fill this in", Form: form})
	if r.Form == nil || len(r.Form.Fields) != 1 {
		t.Fatalf("form = %+v", r.Form)
	}
	if r.Message == nil || r.Message.Form != form {
		t.Errorf("message form not carried: %+v", r.Message)
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  plain  ", "plain"},
	}
	for _, tt := range tests {
		if got := stripCodeFences(tt.in); got != tt.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
