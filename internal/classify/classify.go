// Package classify maps inbound frames onto canonical transcript entries.
//
// Classification is a pure function of a single decoded frame: it produces
// exactly one displayable Message (keepalive pongs excepted) plus the
// side-channel signals that drive agent-handoff tracking, the action
// surface, and transcript clearing. No state is shared between calls beyond
// the fallback message-id generator.
package classify

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kodexlabs/chat-widget/internal/domain"
	"github.com/kodexlabs/chat-widget/internal/protocol"
)

// Default display texts for frames that omit a body.
const (
	defaultFormConfirmation = "Form submitted successfully!"
	defaultErrorText        = "An error occurred."
)

// Result carries the canonical message plus side-channel signals derived
// from one inbound frame.
type Result struct {
	// Message is the transcript entry for this frame. Nil only for pong
	// keepalive frames, which are not user visible.
	Message *domain.Message

	// AgentAssigned is the newly observed agent identity, if any.
	AgentAssigned string
	// AgentUnassigned reports an explicit agent-departure signal.
	AgentUnassigned bool
	// SessionRestart reports a welcome/onboarding frame, which re-arms
	// disconnect handling for a future assignment.
	SessionRestart bool

	// ClearTranscript requests the transcript be emptied before this
	// frame's message is appended.
	ClearTranscript bool

	// Options and Buttons replace the current action surface. Both empty
	// means the surface is cleared.
	Options []domain.ActionButton
	Buttons []domain.ActionButton
	// Form replaces the active form; nil clears it.
	Form *domain.FormSpec
}

// Classify maps one decoded inbound frame to its canonical result.
func Classify(f *protocol.Frame) Result {
	r := Result{
		ClearTranscript: f.ClearPrevious,
		Options:         f.Options,
		Buttons:         f.Buttons,
		Form:            f.Form,
	}

	classifyAgentSignals(f, &r)

	if f.Type == protocol.TypePong {
		return r
	}
	if f.Type == protocol.TypeExitChat && f.Body() == "" {
		// The departure notice appended by the handoff tracker is the
		// user-visible record of a bare exit frame.
		return r
	}

	msg := domain.Message{
		ID:        f.ID,
		Text:      f.Body(),
		Sender:    domain.SenderAssistant,
		Timestamp: time.Now(),
		Buttons:   f.Buttons,
		Options:   f.Options,
		Form:      f.Form,
	}
	if msg.ID == "" {
		msg.ID = domain.NewMessageID()
	}

	switch f.Type {
	case protocol.TypeLLMResponse:
		classifyLLMResponse(f, &msg, &r)
	case protocol.TypeFormConfirmation:
		if msg.Text == "" {
			msg.Text = defaultFormConfirmation
		}
	case protocol.TypeError:
		if msg.Text == "" {
			msg.Text = defaultErrorText
		}
	case protocol.TypeMessage, protocol.TypePrivateMessage, protocol.TypeWelcome,
		protocol.TypeSupportStatus, protocol.TypeForm, protocol.TypeClearChat,
		protocol.TypeAgentStatus, protocol.TypeOnboarding, protocol.TypeUserAssigned,
		protocol.TypeFormSubmission, protocol.TypeExitChat:
		// Body as resolved above.
	default:
		// Unknown types are not dropped: they stay visible so operators
		// can spot protocol drift from the transcript itself.
		if msg.Text == "" {
			msg.Text = fmt.Sprintf("[Unknown message type: %s]", f.Type)
		}
	}

	r.Message = &msg
	return r
}

// classifyAgentSignals extracts agent assignment changes. The branches are
// exclusive and ordered: departure first, then session restart, then
// assignment via an agent-attributed private message, then an explicit
// agent-identity field on any frame.
func classifyAgentSignals(f *protocol.Frame, r *Result) {
	switch {
	case isAgentUnavailable(f):
		r.AgentUnassigned = true
	case f.Type == protocol.TypeWelcome || f.Type == protocol.TypeOnboarding:
		r.SessionRestart = true
	case f.Type == protocol.TypePrivateMessage && isAgentSender(f):
		identity := f.SenderName
		if identity == "" {
			identity = f.SenderID
		}
		if identity == "" {
			identity = protocol.RoleAgent
		}
		r.AgentAssigned = identity
	case f.AgentID != "":
		r.AgentAssigned = f.AgentID
	}
}

func isAgentUnavailable(f *protocol.Frame) bool {
	if f.Type == protocol.TypeExitChat {
		return true
	}
	return f.Type == protocol.TypeSupportStatus &&
		f.AgentAvailable != nil && !*f.AgentAvailable
}

func isAgentSender(f *protocol.Frame) bool {
	return f.SenderRole == protocol.RoleAgent || f.SenderID == protocol.RoleAgent
}

// llmPayload is the nested JSON object an llm_res body may carry.
type llmPayload struct {
	Message string                `json:"message"`
	Buttons []domain.ActionButton `json:"buttons"`
	Options []domain.ActionButton `json:"options"`
}

// classifyLLMResponse handles the llm_res frame type: the body may be a JSON
// object optionally wrapped in code-fence markers. On successful parse the
// nested message/buttons/options override the outer frame's fields; on parse
// failure the fence-stripped text is shown as-is and the action surface is
// cleared. Parse failure is never surfaced.
func classifyLLMResponse(f *protocol.Frame, msg *domain.Message, r *Result) {
	stripped := stripCodeFences(f.Body())
	msg.Text = stripped

	var payload llmPayload
	if err := json.Unmarshal([]byte(stripped), &payload); err != nil {
		msg.Buttons = nil
		msg.Options = nil
		r.Buttons = nil
		r.Options = nil
		return
	}

	if payload.Message != "" {
		msg.Text = payload.Message
	}
	msg.Buttons = payload.Buttons
	msg.Options = payload.Options
	r.Buttons = payload.Buttons
	r.Options = payload.Options
}

// stripCodeFences removes leading/trailing markdown fence markers from a
// suspected JSON body.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
