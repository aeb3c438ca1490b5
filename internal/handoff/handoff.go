// Package handoff tracks the transfer of conversational responsibility
// between the automated bot and a human agent.
package handoff

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/kodexlabs/chat-widget/internal/classify"
	"github.com/kodexlabs/chat-widget/internal/store"
	"github.com/kodexlabs/chat-widget/internal/transcript"
)

// focusDelay lets layout settle before input focus returns to the composer.
const focusDelay = 100 * time.Millisecond

// Tracker is a small state machine over agent assignment: Unassigned, or
// Assigned with an identity. A per-assignment handled guard prevents a burst
// of departure signals from producing duplicate transitions or notices.
type Tracker struct {
	repo    store.Repository
	log     *transcript.Store
	onFocus func()

	agent   string
	handled bool
}

// New creates a tracker. onFocus, if non-nil, is invoked (after a short
// delay) when an agent departure should return input focus to the composer.
func New(repo store.Repository, log *transcript.Store, onFocus func()) *Tracker {
	return &Tracker{repo: repo, log: log, onFocus: onFocus}
}

// Restore reads the persisted agent identity at widget start.
func (t *Tracker) Restore(ctx context.Context) error {
	stored, ok, err := t.repo.Get(ctx, store.KeyAgentName)
	if err != nil {
		return err
	}
	if ok && stored != "" {
		t.agent = stored
	}
	return nil
}

// Agent returns the current agent identity, or "" when unassigned.
func (t *Tracker) Agent() string {
	return t.agent
}

// Assigned reports whether an agent currently owns the conversation.
func (t *Tracker) Assigned() bool {
	return t.agent != ""
}

// Apply consumes the agent signals of one classified frame.
func (t *Tracker) Apply(ctx context.Context, r classify.Result) {
	switch {
	case r.AgentUnassigned:
		t.unassign(ctx)
	case r.SessionRestart:
		// Re-arm disconnect handling for a new assignment.
		t.handled = false
	case r.AgentAssigned != "":
		t.assign(ctx, r.AgentAssigned)
	}
}

func (t *Tracker) assign(ctx context.Context, identity string) {
	t.agent = identity
	t.handled = false
	if err := t.repo.Set(ctx, store.KeyAgentName, identity); err != nil {
		slog.Warn("Failed to persist agent identity", "agent", identity, "error", err)
	}
	slog.Info("Agent assigned", "agent", identity)
}

// unassign transitions Assigned -> Unassigned at most once per assignment.
// It appends a disconnect notice (the transcript suppresses duplicates),
// clears the persisted identity, then schedules the composer-focus callback.
func (t *Tracker) unassign(ctx context.Context) {
	if t.agent == "" || t.handled {
		return
	}
	t.handled = true
	t.agent = ""

	t.log.AppendDisconnectNotice(ctx)
	if err := t.repo.Delete(ctx, store.KeyAgentName); err != nil {
		slog.Warn("Failed to clear persisted agent identity", "error", err)
	}
	slog.Info("Agent unassigned")

	if t.onFocus != nil {
		time.AfterFunc(focusDelay, t.onFocus)
	}
}

// ClearLocal drops the current assignment without a transcript notice. Used
// when the user ends the handoff themselves.
func (t *Tracker) ClearLocal(ctx context.Context) {
	if t.agent == "" {
		return
	}
	t.agent = ""
	if err := t.repo.Delete(ctx, store.KeyAgentName); err != nil {
		slog.Warn("Failed to clear persisted agent identity", "error", err)
	}
}

// FormatAgentName renders a raw agent identifier for display: underscores
// become spaces and each word is title-cased ("ava_k" -> "Ava K").
func FormatAgentName(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	words := strings.Fields(name)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
