// Package framelog records raw protocol traffic as NDJSON for debugging.
package framelog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config controls frame logging.
type Config struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Event is one logged frame, inbound or outbound.
type Event struct {
	Time      time.Time       `json:"ts"`
	UserID    string          `json:"user_id"`
	Direction string          `json:"direction"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Directions for Event.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Logger appends events to one NDJSON file per user. Writes go through a
// bounded queue drained by a single worker so logging never blocks the
// widget's event handling; events are dropped with a warning when the queue
// is full.
type Logger struct {
	cfg   Config
	ch    chan Event
	done  chan struct{}
	once  sync.Once
	files map[string]*os.File
}

// New creates a frame logger. A disabled config yields a logger whose Log is
// a no-op, so callers never need to nil-check.
func New(cfg Config) (*Logger, error) {
	l := &Logger{cfg: cfg, done: make(chan struct{})}
	if !cfg.Enabled {
		return l, nil
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create frame log directory: %w", err)
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
		l.cfg.QueueSize = 256
	}

	l.ch = make(chan Event, l.cfg.QueueSize)
	l.files = make(map[string]*os.File)
	go l.drain()
	return l, nil
}

// Log enqueues one event. Non-blocking: a full queue drops the event.
func (l *Logger) Log(ev Event) {
	if !l.cfg.Enabled {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	select {
	case l.ch <- ev:
	default:
		slog.Warn("Frame log queue full, dropping event", "user_id", ev.UserID, "type", ev.Type)
	}
}

// Close flushes the queue and closes all log files.
func (l *Logger) Close() error {
	if !l.cfg.Enabled {
		return nil
	}
	l.once.Do(func() {
		close(l.ch)
		<-l.done
	})
	return nil
}

func (l *Logger) drain() {
	defer close(l.done)
	for ev := range l.ch {
		l.write(ev)
	}
	for _, f := range l.files {
		if err := f.Close(); err != nil {
			slog.Debug("Failed to close frame log file", "error", err)
		}
	}
}

func (l *Logger) write(ev Event) {
	f, err := l.file(ev.UserID)
	if err != nil {
		slog.Warn("Failed to open frame log file", "user_id", ev.UserID, "error", err)
		return
	}
	line, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("Failed to serialize frame log event", "error", err)
		return
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		slog.Warn("Failed to write frame log event", "error", err)
	}
}

func (l *Logger) file(userID string) (*os.File, error) {
	if userID == "" {
		userID = "unknown"
	}
	if f, ok := l.files[userID]; ok {
		return f, nil
	}
	path := filepath.Join(l.cfg.Dir, userID+".ndjson")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	l.files[userID] = f
	return f, nil
}
