// Package widget implements the chat session core: it owns the one live
// transport connection, classifies inbound frames into the canonical
// transcript, tracks agent handoff, derives the action surface, and persists
// session state across restarts.
//
// All handlers — inbound frames, user intents, and timers — are serialized
// under one lock and run to completion, mirroring an event-driven UI
// runtime: frames are processed strictly in arrival order with no client
// side reordering.
package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kodexlabs/chat-widget/internal/actions"
	"github.com/kodexlabs/chat-widget/internal/classify"
	"github.com/kodexlabs/chat-widget/internal/domain"
	"github.com/kodexlabs/chat-widget/internal/framelog"
	"github.com/kodexlabs/chat-widget/internal/handoff"
	"github.com/kodexlabs/chat-widget/internal/identity"
	"github.com/kodexlabs/chat-widget/internal/protocol"
	"github.com/kodexlabs/chat-widget/internal/store"
	"github.com/kodexlabs/chat-widget/internal/suggest"
	"github.com/kodexlabs/chat-widget/internal/transcript"
)

// persistTimeout bounds individual local-storage operations.
const persistTimeout = 5 * time.Second

// disconnectSettleDelay lets the outbound "stop" message go first when the
// user ends a handoff themselves.
const disconnectSettleDelay = 100 * time.Millisecond

// Config holds the widget's connection parameters.
type Config struct {
	ServerURL      string
	ReconnectDelay time.Duration
	PingInterval   time.Duration
}

// Widget is the session/connection manager. It is the single writer of the
// Session; the rendering layer observes it through the Listener and feeds
// user intents back in through the exported methods.
type Widget struct {
	cfg      Config
	repo     store.Repository
	listener Listener
	frames   *framelog.Logger

	mu      sync.Mutex
	session domain.Session
	log     *transcript.Store
	tracker *handoff.Tracker
	surface *actions.Surface
	engine  *suggest.Engine
	conn    *Conn
}

// New wires a widget over the given local state repository. listener may be
// nil; frames may be nil to disable protocol logging.
func New(cfg Config, repo store.Repository, listener Listener, frames *framelog.Logger) *Widget {
	w := &Widget{
		cfg:      cfg,
		repo:     repo,
		listener: listener,
		frames:   frames,
		surface:  actions.New(),
		engine:   suggest.NewEngine(),
	}
	if w.listener == nil {
		w.listener = Funcs{}
	}
	w.log = transcript.New(repo, w.listener.OnMessage)
	w.tracker = handoff.New(repo, w.log, w.listener.OnComposerFocus)
	return w
}

// Open restores persisted state (stable user id, transcript, agent identity)
// and opens the one transport connection, which sends the login handshake.
func (w *Widget) Open(ctx context.Context) error {
	w.mu.Lock()
	userID, err := identity.EnsureUserID(ctx, w.repo)
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("establish identity: %w", err)
	}
	w.session.UserID = userID

	if err := w.log.Load(ctx); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("restore transcript: %w", err)
	}
	if err := w.tracker.Restore(ctx); err != nil {
		slog.Warn("Failed to restore agent identity", "error", err)
	}
	w.session.AgentName = w.tracker.Agent()

	w.conn = NewConn(w.cfg.ServerURL, userID,
		ReconnectPolicy{Delay: w.cfg.ReconnectDelay},
		w.cfg.PingInterval, w.handleFrame, w.handleConnState)
	conn := w.conn
	agent := w.session.AgentName
	w.mu.Unlock()

	if agent != "" {
		w.listener.OnAgentChange(agent)
	}
	conn.Connect(ctx)
	return nil
}

// handleFrame processes one inbound frame: classify, append, update handoff
// state, replace the action surface, notify the renderer.
func (w *Widget) handleFrame(f *protocol.Frame) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.frames != nil {
		w.frames.Log(framelog.Event{
			UserID:    w.session.UserID,
			Direction: framelog.DirectionInbound,
			Type:      f.Type,
			Payload:   f.Raw(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if f.Type == protocol.TypePong {
		// Keepalive pong: nothing user visible, surface untouched.
		return
	}

	// A frame may carry signals without a displayable entry (a bare exit
	// frame, whose visible record is the tracker's disconnect notice), so
	// the signal path runs regardless of r.Message.
	r := classify.Classify(f)

	if r.ClearTranscript {
		w.log.Clear(ctx)
		w.listener.OnTranscriptCleared()
	}

	if r.Message != nil {
		w.log.Append(ctx, *r.Message)
	}

	prevAgent := w.tracker.Agent()
	w.tracker.Apply(ctx, r)
	if agent := w.tracker.Agent(); agent != prevAgent {
		w.session.AgentName = agent
		w.listener.OnAgentChange(agent)
	}

	w.surface.Update(r.Options, r.Buttons, r.Form)
	w.listener.OnActionSurface(w.surface.Buttons())
	w.listener.OnForm(w.surface.Form())
}

func (w *Widget) handleConnState(connected bool) {
	w.mu.Lock()
	// Mirror the connection's own state machine rather than deriving it
	// from the boolean: a torn-down connection reports Disconnected, a
	// dropped one Closed.
	if w.conn != nil {
		w.session.State = w.conn.State()
	}
	w.mu.Unlock()
	w.listener.OnConnectionState(connected)
}

// SendText echoes the trimmed draft into the transcript and transmits it to
// the current recipient (assigned agent, else the bot). A silent no-op
// unless the connection is open and the trimmed draft is non-empty.
func (w *Widget) SendText(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sendTextLocked(text)
}

func (w *Widget) sendTextLocked(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if w.conn == nil || !w.conn.Connected() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	w.log.Append(ctx, domain.Message{
		ID:        domain.NewMessageID(),
		Text:      text,
		Sender:    domain.SenderUser,
		Timestamp: time.Now(),
	})
	w.send(protocol.TypePrivateMessage,
		protocol.NewPrivateMessage(w.session.UserID, w.session.Recipient(), text))
}

// ClickButton sends the button's value as free text, then clears the
// action-button set. The form, if any, stays: it is cleared only on
// explicit submission.
func (w *Widget) ClickButton(value string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.sendTextLocked(value)
	w.surface.ClearButtons()
	w.listener.OnActionSurface(nil)
}

// ClickSuggestion sends the selected suggestion as free text. Clearing the
// draft is the renderer's side of the contract.
func (w *Widget) ClickSuggestion(value string) {
	w.SendText(value)
}

// SubmitForm packages the collected field values into a form_submission
// frame and clears the active form. Submission is serialized: a second
// attempt while one is outstanding returns actions.ErrSubmitInFlight, and an
// attempt with no active form returns actions.ErrNoActiveForm. With the
// connection down the form stays in place and nothing is sent.
func (w *Widget) SubmitForm(values map[string]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil || !w.conn.Connected() {
		return nil
	}
	if _, err := w.surface.BeginSubmit(); err != nil {
		return err
	}

	w.send(protocol.TypeFormSubmission,
		protocol.NewFormSubmission(w.session.UserID, values))
	w.surface.EndSubmit()
	w.listener.OnForm(nil)
	return nil
}

// DisconnectAgent ends a handoff at the user's request: a "stop" message to
// the assigned agent goes out first, then after a short delay the local
// agent state and action surface are cleared.
func (w *Widget) DisconnectAgent() {
	w.mu.Lock()
	if w.conn == nil || !w.conn.Connected() || !w.tracker.Assigned() {
		w.mu.Unlock()
		return
	}
	w.send(protocol.TypePrivateMessage,
		protocol.NewPrivateMessage(w.session.UserID, w.session.AgentName, "stop"))
	w.mu.Unlock()

	time.AfterFunc(disconnectSettleDelay, func() {
		w.mu.Lock()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		w.tracker.ClearLocal(ctx)
		w.session.AgentName = ""
		w.surface.Clear()
		w.mu.Unlock()

		w.listener.OnAgentChange("")
		w.listener.OnActionSurface(nil)
		w.listener.OnForm(nil)
	})
}

// send transmits an envelope through the connection, recording it in the
// frame log. Callers hold w.mu.
func (w *Widget) send(frameType string, env interface{}) {
	if w.frames != nil {
		raw, err := json.Marshal(env)
		if err == nil {
			w.frames.Log(framelog.Event{
				UserID:    w.session.UserID,
				Direction: framelog.DirectionOutbound,
				Type:      frameType,
				Payload:   raw,
			})
		}
	}
	w.conn.Send(env)
}

// Suggest returns canned composer phrases matching the draft.
func (w *Widget) Suggest(draft string) []suggest.Suggestion {
	return w.engine.Suggest(draft)
}

// Messages returns a copy of the transcript in arrival order.
func (w *Widget) Messages() []domain.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.log.Messages()
}

// Agent returns the raw assigned agent identity, or "" when unassigned.
func (w *Widget) Agent() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tracker.Agent()
}

// AgentDisplayName returns the assigned agent's identity formatted for
// display, or "" when unassigned.
func (w *Widget) AgentDisplayName() string {
	agent := w.Agent()
	if agent == "" {
		return ""
	}
	return handoff.FormatAgentName(agent)
}

// Buttons returns the current action-button set in display order.
func (w *Widget) Buttons() []domain.ActionButton {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.surface.Buttons()
}

// Form returns the active form, or nil.
func (w *Widget) Form() *domain.FormSpec {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.surface.Form()
}

// Connected reports whether the connection is open.
func (w *Widget) Connected() bool {
	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()
	return conn != nil && conn.Connected()
}

// UserID returns the stable user identifier, available after Open.
func (w *Widget) UserID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.UserID
}

// Teardown closes the connection, guaranteeing no reconnect fires
// afterwards, and flushes the frame log. Persisted state stays in place.
func (w *Widget) Teardown() {
	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()

	if conn != nil {
		conn.Teardown()
	}
	if w.frames != nil {
		if err := w.frames.Close(); err != nil {
			slog.Debug("Failed to close frame log", "error", err)
		}
	}
}

// EndSession tears the widget down and wipes all persisted session state:
// the transcript, the agent identity, and the stable user id are cleared
// together.
func (w *Widget) EndSession(ctx context.Context) error {
	w.Teardown()
	if err := w.repo.Wipe(ctx); err != nil {
		return fmt.Errorf("wipe session state: %w", err)
	}
	return nil
}
