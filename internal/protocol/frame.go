// Package protocol defines the JSON frames exchanged with the chat backend.
//
// Inbound frames are a closed set discriminated by "type". Rather than
// spreading untyped JSON into widget state, every field the backend is known
// to emit is declared here; frames with an unrecognized type still decode and
// keep their raw payload so they can be surfaced for debuggability.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/kodexlabs/chat-widget/internal/domain"
)

// Inbound frame types.
const (
	TypeMessage          = "message"
	TypePrivateMessage   = "private_message"
	TypeWelcome          = "welcome"
	TypeSupportStatus    = "support_status"
	TypeForm             = "form"
	TypeFormSubmission   = "form_submission"
	TypeFormConfirmation = "form_submission_confirmation"
	TypeError            = "error"
	TypeClearChat        = "clear_chat"
	TypeAgentStatus      = "agent_status"
	TypeOnboarding       = "onboarding"
	TypeUserAssigned     = "user_assigned"
	TypePong             = "pong"
	TypeLLMResponse      = "llm_res"
	TypeExitChat         = "EXIT_CHAT"
)

// Outbound frame types.
const (
	TypeLogin = "login"
	TypePing  = "ping"
)

// Sender roles carried on private messages.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

var knownTypes = map[string]bool{
	TypeMessage:          true,
	TypePrivateMessage:   true,
	TypeWelcome:          true,
	TypeSupportStatus:    true,
	TypeForm:             true,
	TypeFormSubmission:   true,
	TypeFormConfirmation: true,
	TypeError:            true,
	TypeClearChat:        true,
	TypeAgentStatus:      true,
	TypeOnboarding:       true,
	TypeUserAssigned:     true,
	TypePong:             true,
	TypeLLMResponse:      true,
	TypeExitChat:         true,
}

// Frame is one decoded inbound unit.
type Frame struct {
	Type           string                `json:"type"`
	ID             string                `json:"id,omitempty"`
	Message        string                `json:"message,omitempty"`
	Text           string                `json:"text,omitempty"`
	SenderID       string                `json:"senderId,omitempty"`
	SenderRole     string                `json:"senderRole,omitempty"`
	SenderName     string                `json:"senderName,omitempty"`
	AgentID        string                `json:"agentId,omitempty"`
	AgentAvailable *bool                 `json:"agentAvailable,omitempty"`
	ClearPrevious  bool                  `json:"clearPrevious,omitempty"`
	Buttons        []domain.ActionButton `json:"buttons,omitempty"`
	Options        []domain.ActionButton `json:"options,omitempty"`
	Form           *domain.FormSpec      `json:"form,omitempty"`

	raw []byte
}

// Decode parses one inbound frame. Only malformed JSON is an error; frames
// with an unrecognized type decode fine and are classified as unknown.
func Decode(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	f.raw = append([]byte(nil), data...)
	return &f, nil
}

// Raw returns the original payload the frame was decoded from.
func (f *Frame) Raw() []byte {
	return f.raw
}

// Known reports whether the frame type is part of the recognized protocol.
func (f *Frame) Known() bool {
	return knownTypes[f.Type]
}

// Body returns the display text, preferring "message" over "text".
func (f *Frame) Body() string {
	if f.Message != "" {
		return f.Message
	}
	return f.Text
}
