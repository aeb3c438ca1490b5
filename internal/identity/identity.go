// Package identity provides the stable per-profile user identifier.
package identity

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/kodexlabs/chat-widget/internal/store"
)

var userIDPattern = regexp.MustCompile(`^user_[a-f0-9-]{36}$`)

// IsValidUserID reports whether id has the shape this package generates.
func IsValidUserID(id string) bool {
	return userIDPattern.MatchString(id)
}

// NewUserID generates a fresh opaque user identifier.
func NewUserID() string {
	return "user_" + uuid.NewString()
}

// EnsureUserID returns the persisted user identifier, generating and storing
// a new one if none exists yet. The identifier is created once at first
// widget open and read thereafter; a corrupt stored value is replaced rather
// than surfaced.
func EnsureUserID(ctx context.Context, repo store.Repository) (string, error) {
	stored, ok, err := repo.Get(ctx, store.KeyUserID)
	if err != nil {
		return "", fmt.Errorf("read user id: %w", err)
	}
	if ok && IsValidUserID(stored) {
		return stored, nil
	}

	id := NewUserID()
	if err := repo.Set(ctx, store.KeyUserID, id); err != nil {
		return "", fmt.Errorf("persist user id: %w", err)
	}
	return id, nil
}
