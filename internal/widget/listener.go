package widget

import (
	"github.com/kodexlabs/chat-widget/internal/domain"
)

// Listener receives canonical state updates for rendering. Callbacks run on
// the widget's serialized event path and must not block or call back into
// the widget synchronously.
type Listener interface {
	// OnMessage fires for every transcript entry actually appended,
	// inbound and outbound echoes alike.
	OnMessage(msg domain.Message)
	// OnConnectionState fires when the connected indicator toggles.
	OnConnectionState(connected bool)
	// OnAgentChange fires when agent assignment changes; "" means none.
	OnAgentChange(agent string)
	// OnActionSurface fires with the replacement button set; nil clears it.
	OnActionSurface(buttons []domain.ActionButton)
	// OnForm fires with the replacement active form; nil clears it.
	OnForm(form *domain.FormSpec)
	// OnTranscriptCleared fires when the transcript is emptied.
	OnTranscriptCleared()
	// OnComposerFocus asks the renderer to return focus to the composer.
	OnComposerFocus()
}

// Funcs adapts optional callbacks to Listener. Nil fields are ignored.
type Funcs struct {
	Message           func(domain.Message)
	ConnectionState   func(bool)
	AgentChange       func(string)
	ActionSurface     func([]domain.ActionButton)
	Form              func(*domain.FormSpec)
	TranscriptCleared func()
	ComposerFocus     func()
}

// OnMessage implements Listener.
func (f Funcs) OnMessage(msg domain.Message) {
	if f.Message != nil {
		f.Message(msg)
	}
}

// OnConnectionState implements Listener.
func (f Funcs) OnConnectionState(connected bool) {
	if f.ConnectionState != nil {
		f.ConnectionState(connected)
	}
}

// OnAgentChange implements Listener.
func (f Funcs) OnAgentChange(agent string) {
	if f.AgentChange != nil {
		f.AgentChange(agent)
	}
}

// OnActionSurface implements Listener.
func (f Funcs) OnActionSurface(buttons []domain.ActionButton) {
	if f.ActionSurface != nil {
		f.ActionSurface(buttons)
	}
}

// OnForm implements Listener.
func (f Funcs) OnForm(form *domain.FormSpec) {
	if f.Form != nil {
		f.Form(form)
	}
}

// OnTranscriptCleared implements Listener.
func (f Funcs) OnTranscriptCleared() {
	if f.TranscriptCleared != nil {
		f.TranscriptCleared()
	}
}

// OnComposerFocus implements Listener.
func (f Funcs) OnComposerFocus() {
	if f.ComposerFocus != nil {
		f.ComposerFocus()
	}
}
