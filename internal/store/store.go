// Package store provides the durable local state repository for the widget.
//
// It is the widget's analog of browser local storage: a small set of fixed,
// distinct keys holding the stable user identifier, the last-known assigned
// agent, and the serialized transcript. Guarantees are best effort; callers
// treat corrupt or missing values as absent, never as errors to surface.
package store

import (
	"context"
)

// Fixed storage keys. All three are cleared together on session teardown.
const (
	KeyUserID     = "chat_user_id"
	KeyAgentName  = "chat_agent_name"
	KeyTranscript = "chat_messages"
)

// Repository defines the interface for persisting widget session state.
type Repository interface {
	// Get retrieves the value stored under key. A missing key is not an
	// error: ok is false and err is nil.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error

	// Wipe removes all widget state at once (session teardown semantics).
	Wipe(ctx context.Context) error

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases the backing storage.
	Close() error
}
