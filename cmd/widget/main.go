// Terminal client for the Kodex assistant chat widget.
//
// The widget core owns the session; this binary is only the rendering layer:
// it prints the canonical transcript and action surface, and forwards typed
// text, button clicks, and form submissions back into the core.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kodexlabs/chat-widget/internal/config"
	"github.com/kodexlabs/chat-widget/internal/domain"
	"github.com/kodexlabs/chat-widget/internal/framelog"
	"github.com/kodexlabs/chat-widget/internal/handoff"
	"github.com/kodexlabs/chat-widget/internal/store"
	"github.com/kodexlabs/chat-widget/internal/widget"
)

func main() {
	// Diagnostics go to stderr; stdout is the chat surface.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open local state database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close local state database", "error", closeErr)
		}
	}()

	frames, err := framelog.New(framelog.Config{
		Enabled:   cfg.FrameLog.Enabled,
		Dir:       cfg.FrameLog.Dir,
		QueueSize: cfg.FrameLog.QueueSize,
	})
	if err != nil {
		slog.Error("Failed to initialize frame log", "error", err)
		os.Exit(1)
	}

	w := widget.New(widget.Config{
		ServerURL:      cfg.ServerURL,
		ReconnectDelay: cfg.ReconnectDelay,
		PingInterval:   cfg.PingInterval,
	}, repo, consoleListener(), frames)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Open(ctx); err != nil {
		slog.Error("Failed to open widget", "error", err)
		os.Exit(1)
	}

	for _, msg := range w.Messages() {
		renderMessage(msg)
	}
	fmt.Println(`Type a message, or /help for commands.`)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			w.Teardown()
			return
		case line, ok := <-lines:
			if !ok {
				w.Teardown()
				return
			}
			if !handleLine(ctx, w, line) {
				return
			}
		}
	}
}

// handleLine dispatches one composer line; it returns false to exit.
func handleLine(ctx context.Context, w *widget.Widget, line string) bool {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return true
	case trimmed == "/help":
		fmt.Println(`Commands:
  /suggest <draft>   show canned phrases matching the draft
  /click <value>     click the action button with that value
  /submit k=v ...    submit the active form
  /agent             show the assigned agent
  /disconnect        end the agent handoff
  /quit              close, keeping local history
  /end               close and wipe local history`)
	case strings.HasPrefix(trimmed, "/suggest"):
		draft := strings.TrimSpace(strings.TrimPrefix(trimmed, "/suggest"))
		for _, s := range w.Suggest(draft) {
			fmt.Printf("  ? %s\n", s.Label)
		}
	case strings.HasPrefix(trimmed, "/click "):
		w.ClickButton(strings.TrimSpace(strings.TrimPrefix(trimmed, "/click ")))
	case strings.HasPrefix(trimmed, "/submit"):
		values := parseFormValues(strings.TrimPrefix(trimmed, "/submit"))
		if err := w.SubmitForm(values); err != nil {
			fmt.Printf("! %v\n", err)
		}
	case trimmed == "/agent":
		if name := w.AgentDisplayName(); name != "" {
			fmt.Printf("* Chatting with %s\n", name)
		} else {
			fmt.Println("* No agent assigned")
		}
	case trimmed == "/disconnect":
		w.DisconnectAgent()
	case trimmed == "/quit":
		w.Teardown()
		return false
	case trimmed == "/end":
		if err := w.EndSession(ctx); err != nil {
			slog.Error("Failed to end session", "error", err)
		}
		return false
	default:
		w.SendText(trimmed)
	}
	return true
}

func parseFormValues(args string) map[string]string {
	values := make(map[string]string)
	for _, pair := range strings.Fields(args) {
		k, v, ok := strings.Cut(pair, "=")
		if ok {
			values[k] = v
		}
	}
	return values
}

func consoleListener() widget.Listener {
	return widget.Funcs{
		Message: renderMessage,
		ConnectionState: func(connected bool) {
			if connected {
				fmt.Println("* Connected")
			} else {
				fmt.Println("* Disconnected")
			}
		},
		AgentChange: func(agent string) {
			if agent != "" {
				fmt.Printf("* You are now chatting with %s\n", handoff.FormatAgentName(agent))
			} else {
				fmt.Println("* Back with the assistant")
			}
		},
		ActionSurface: func(buttons []domain.ActionButton) {
			for _, b := range buttons {
				fmt.Printf("  [%s] -> /click %s\n", b.Label, b.Value)
			}
		},
		Form: func(form *domain.FormSpec) {
			if form == nil {
				return
			}
			fmt.Println("* Form requested:")
			for _, f := range form.Fields {
				required := ""
				if f.Required {
					required = " (required)"
				}
				fmt.Printf("    %s: %s%s\n", f.Name, f.Label, required)
			}
			fmt.Println("  Submit with /submit name=value ...")
		},
		TranscriptCleared: func() {
			fmt.Println("* Transcript cleared")
		},
	}
}

func renderMessage(msg domain.Message) {
	prefix := "assistant"
	if msg.Sender == domain.SenderUser {
		prefix = "you"
	}
	fmt.Printf("%s> %s\n", prefix, msg.Text)
}
