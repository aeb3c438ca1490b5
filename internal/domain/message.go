// Package domain contains core domain types for the chat widget.
package domain

import (
	"time"
)

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	// SenderUser marks messages typed (or clicked) by the end user.
	SenderUser Sender = "user"
	// SenderAssistant marks messages produced by the backend, whether the
	// automated bot or a handed-off human agent.
	SenderAssistant Sender = "assistant"
)

// ActionButton is a quick-reply affordance offered alongside a message.
// Buttons are ephemeral: they live only as part of a Message or the current
// action surface and are never persisted on their own.
type ActionButton struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Kind  string `json:"kind,omitempty"`
}

const (
	// ButtonKindOption tags entries that arrived via an "options" list.
	ButtonKindOption = "option"
	// ButtonKindButton tags entries that arrived via a "buttons" list.
	ButtonKindButton = "button"
)

// FormField is one input in an inline form requested by the backend.
type FormField struct {
	Label    string `json:"label"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required,omitempty"`
}

// FormSpec describes an inline form. At most one form is active at a time.
type FormSpec struct {
	Fields      []FormField `json:"fields"`
	SubmitLabel string      `json:"submitLabel,omitempty"`
}

// Message is one canonical transcript entry. Immutable once appended.
type Message struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Sender    Sender         `json:"sender"`
	Timestamp time.Time      `json:"timestamp"`
	Buttons   []ActionButton `json:"buttons,omitempty"`
	Options   []ActionButton `json:"options,omitempty"`
	Form      *FormSpec      `json:"form,omitempty"`
}
