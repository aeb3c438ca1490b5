// Package transcript maintains the append-only ordered message log.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kodexlabs/chat-widget/internal/domain"
	"github.com/kodexlabs/chat-widget/internal/store"
)

// DisconnectNotice is the well-formed transcript entry appended when the
// assigned agent leaves the conversation.
const DisconnectNotice = "You have been disconnected from the agent."

// disconnectMarker is the textual-containment check used to suppress
// duplicate disconnect notices.
const disconnectMarker = "disconnected from the agent"

// Store is the append-only transcript. Every mutation serializes the full
// log to the durable local state repository; ordering equals arrival order
// and entries are immutable once appended.
type Store struct {
	repo     store.Repository
	entries  []domain.Message
	onAppend func(domain.Message)
}

// New creates a transcript backed by repo. onAppend, if non-nil, is invoked
// for every entry that is actually appended (suppressed duplicates excluded).
func New(repo store.Repository, onAppend func(domain.Message)) *Store {
	return &Store{repo: repo, onAppend: onAppend}
}

// Load restores a previously persisted transcript. Corrupt or foreign data
// is treated as no prior transcript, not as an error.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.repo.Get(ctx, store.KeyTranscript)
	if err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}
	if !ok {
		s.entries = nil
		return nil
	}

	var entries []domain.Message
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		slog.Warn("Discarding corrupt persisted transcript", "error", err)
		s.entries = nil
		return nil
	}
	s.entries = entries
	return nil
}

// Append adds a message to the end of the log and persists it. It reports
// whether the message was actually appended: a disconnect notice is
// suppressed when the current last entry already communicates the same
// disconnection.
func (s *Store) Append(ctx context.Context, msg domain.Message) bool {
	if s.isDuplicateDisconnect(msg) {
		return false
	}

	s.entries = append(s.entries, msg)
	s.persist(ctx)
	if s.onAppend != nil {
		s.onAppend(msg)
	}
	return true
}

// AppendDisconnectNotice appends a well-formed agent-disconnected entry,
// subject to the duplicate-suppression rule.
func (s *Store) AppendDisconnectNotice(ctx context.Context) bool {
	return s.Append(ctx, domain.Message{
		ID:        fmt.Sprintf("notice_%d", time.Now().UnixMilli()),
		Text:      DisconnectNotice,
		Sender:    domain.SenderAssistant,
		Timestamp: time.Now(),
	})
}

// Clear empties the log and persists the empty state.
func (s *Store) Clear(ctx context.Context) {
	s.entries = nil
	s.persist(ctx)
}

// Messages returns a copy of the ordered log.
func (s *Store) Messages() []domain.Message {
	out := make([]domain.Message, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

func (s *Store) isDuplicateDisconnect(msg domain.Message) bool {
	if !strings.Contains(msg.Text, disconnectMarker) || len(s.entries) == 0 {
		return false
	}
	last := s.entries[len(s.entries)-1]
	return strings.Contains(last.Text, disconnectMarker)
}

// persist serializes the full log. Timestamps marshal as RFC 3339 text and
// convert back to time.Time on load. Persistence is best effort: a write
// failure leaves the in-memory transcript authoritative.
func (s *Store) persist(ctx context.Context) {
	entries := s.entries
	if entries == nil {
		entries = []domain.Message{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		slog.Warn("Failed to serialize transcript", "error", err)
		return
	}
	if err := s.repo.Set(ctx, store.KeyTranscript, string(raw)); err != nil {
		slog.Warn("Failed to persist transcript", "error", err)
	}
}
