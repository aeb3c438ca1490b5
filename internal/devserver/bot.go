package devserver

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kodexlabs/chat-widget/internal/domain"
	"github.com/kodexlabs/chat-widget/internal/protocol"
)

// mentorName is the identity of the simulated human agent.
const mentorName = "ava_k"

// Bot produces scripted replies covering every inbound frame type the widget
// understands: welcome, llm_res (both well-formed fenced JSON and plain
// text), forms, clear_chat, simulated agent handoff and exit.
type Bot struct {
	mu       sync.Mutex
	assigned map[string]bool
}

// NewBot creates a scripted bot.
func NewBot() *Bot {
	return &Bot{assigned: make(map[string]bool)}
}

// Handle maps one client envelope to the frames sent in response.
func (b *Bot) Handle(env clientEnvelope) []protocol.Frame {
	switch env.Type {
	case protocol.TypeLogin:
		return []protocol.Frame{b.welcome()}
	case protocol.TypePing:
		return []protocol.Frame{{Type: protocol.TypePong}}
	case protocol.TypePrivateMessage:
		return b.reply(env.SenderID, env.Message)
	case protocol.TypeFormSubmission:
		return []protocol.Frame{{Type: protocol.TypeFormConfirmation}}
	default:
		return []protocol.Frame{{
			Type:    protocol.TypeError,
			Message: "Unsupported message type: " + env.Type,
		}}
	}
}

func (b *Bot) welcome() protocol.Frame {
	return protocol.Frame{
		Type:    protocol.TypeWelcome,
		ID:      uuid.NewString(),
		Message: "Hi! I'm the Kodex assistant. Ask me anything, or pick an option below.",
		Buttons: []domain.ActionButton{
			{Label: "Explore JavaScript", Value: "explore javascript"},
			{Label: "Find Challenges", Value: "find challenges"},
		},
	}
}

func (b *Bot) reply(userID, text string) []protocol.Frame {
	lower := strings.ToLower(strings.TrimSpace(text))

	switch {
	case strings.Contains(lower, "mentor") || strings.Contains(lower, "agent"):
		b.setAssigned(userID, true)
		return []protocol.Frame{
			{Type: protocol.TypeUserAssigned, Message: "Connecting you with a mentor..."},
			{
				Type:       protocol.TypePrivateMessage,
				SenderRole: protocol.RoleAgent,
				SenderName: mentorName,
				Message:    "Hi, you're chatting with Ava. How can I help?",
			},
		}
	case lower == "stop" || strings.Contains(lower, "exit"):
		if b.setAssigned(userID, false) {
			return []protocol.Frame{{Type: protocol.TypeExitChat}}
		}
		return []protocol.Frame{{
			Type:    protocol.TypeMessage,
			Message: "There's no agent on this chat. Anything else I can do?",
		}}
	case strings.Contains(lower, "form") || strings.Contains(lower, "contact"):
		return []protocol.Frame{{
			Type:    protocol.TypeForm,
			Message: "Happy to pass this along. Fill in the form below.",
			Form: &domain.FormSpec{
				Fields: []domain.FormField{
					{Label: "Name", Name: "name", Type: "text", Required: true},
					{Label: "Email", Name: "email", Type: "email", Required: true},
					{Label: "Message", Name: "message", Type: "textarea", Required: true},
				},
				SubmitLabel: "Send",
			},
		}}
	case strings.Contains(lower, "joke"):
		return []protocol.Frame{{
			Type: protocol.TypeLLMResponse,
			Message: "```json\n" +
				`{"message":"Why do programmers prefer dark mode? Because light attracts bugs!",` +
				`"buttons":[{"label":"Another one","value":"tell me a programming joke"}]}` +
				"\n```",
		}}
	case strings.Contains(lower, "challenge"):
		return []protocol.Frame{{
			Type:    protocol.TypeMessage,
			Message: "Pick a difficulty and I'll find you something to build.",
			Options: []domain.ActionButton{
				{Label: "Beginner", Value: "beginner challenges"},
				{Label: "Intermediate", Value: "intermediate challenges"},
				{Label: "Advanced", Value: "advanced challenges"},
			},
		}}
	case strings.Contains(lower, "clear"):
		return []protocol.Frame{{
			Type:          protocol.TypeClearChat,
			Message:       "Chat cleared. What's next?",
			ClearPrevious: true,
		}}
	default:
		// Plain llm_res text exercises the widget's fenced-JSON fallback.
		return []protocol.Frame{{
			Type: protocol.TypeLLMResponse,
			Message: "I can help with JavaScript, coding challenges, and tips. " +
				"Try \"find challenges\", \"show me a form\", or \"talk to a mentor\".",
		}}
	}
}

// setAssigned flips the simulated handoff flag, returning the prior value.
func (b *Bot) setAssigned(userID string, assigned bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev := b.assigned[userID]
	b.assigned[userID] = assigned
	return prev
}
