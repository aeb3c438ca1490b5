package devserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/kodexlabs/chat-widget/internal/protocol"
)

// clientEnvelope is the union of outbound shapes the widget sends.
type clientEnvelope struct {
	Type        string            `json:"type"`
	UserID      string            `json:"userId,omitempty"`
	Role        string            `json:"role,omitempty"`
	SenderID    string            `json:"senderId,omitempty"`
	RecipientID string            `json:"recipientId,omitempty"`
	Message     string            `json:"message,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
}

// Handler upgrades widget connections and answers with scripted frames.
type Handler struct {
	reg           *Registry
	bot           *Bot
	allowedOrigin string
	isDev         bool
}

// NewHandler creates a websocket handler for the development backend.
func NewHandler(reg *Registry, allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		reg:           reg,
		bot:           NewBot(),
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// ServeHTTP implements http.Handler for the websocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept websocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var userID string
	defer func() {
		if userID != "" {
			h.reg.Unregister(userID, ws)
		}
	}()

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("Websocket closed by client", "user_id", userID)
			} else {
				slog.Warn("Websocket read error", "error", err, "user_id", userID)
			}
			return
		}

		var env clientEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			slog.Warn("Dropping malformed client envelope", "error", err)
			continue
		}

		if env.Type == protocol.TypeLogin {
			userID = env.UserID
			h.reg.Register(userID, ws)
		}

		for _, frame := range h.bot.Handle(env) {
			if err := h.writeJSON(ctx, ws, frame); err != nil {
				slog.Debug("Failed to write frame", "error", err, "user_id", userID)
				return
			}
		}
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	slog.Warn("Websocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *Handler) writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}
