// Package devserver implements a local scripted chat backend speaking the
// widget's frame protocol, so the client can be exercised end to end without
// the production service.
package devserver

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Registry tracks the active connection per logged-in user.
type Registry struct {
	mu     sync.RWMutex
	active map[string]*websocket.Conn
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[string]*websocket.Conn)}
}

// Get returns the active connection for a user, or nil.
func (r *Registry) Get(userID string) *websocket.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active[userID]
}

// Register records a user's connection, replacing (and closing) any prior one.
func (r *Registry) Register(userID string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.active[userID]; ok && existing != conn {
		_ = existing.Close(websocket.StatusNormalClosure, "session replaced")
	}
	r.active[userID] = conn
	slog.Info("Chat session registered", "user_id", userID)
}

// Unregister removes a user's connection if it is still the registered one.
func (r *Registry) Unregister(userID string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.active[userID]; ok && current == conn {
		delete(r.active, userID)
		slog.Info("Chat session unregistered", "user_id", userID)
	}
}

// CloseAll terminates every active session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, conn := range r.active {
		_ = conn.Close(websocket.StatusNormalClosure, "server shutting down")
		slog.Info("Chat session closed", "user_id", userID)
	}
	r.active = make(map[string]*websocket.Conn)
}
