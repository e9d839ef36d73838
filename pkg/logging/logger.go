// Package logging writes structured JSONL events for a session.
//
// Logs go to files only: the terminal belongs to the UI while it runs.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel accepts debug, info, warn/warning and error.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return l, nil
	case "warning":
		return LevelWarn, nil
	case "":
		return LevelInfo, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Category represents the subsystem generating the log
type Category string

const (
	CategoryTerminal  Category = "terminal"
	CategoryInput     Category = "input"
	CategoryRender    Category = "render"
	CategoryLayout    Category = "layout"
	CategoryConfig    Category = "config"
	CategoryClipboard Category = "clipboard"
)

// Event represents a structured log event
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Category  Category       `json:"category"`
	EventType string         `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	PaneID    *int           `json:"pane_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// Logger writes structured events to a session file and, for errors, a
// shared errors file. A nil *Logger discards everything.
type Logger struct {
	sessionID   string
	baseDir     string
	sessionFile *os.File
	errorFile   *os.File
	mu          sync.Mutex
	minLevel    Level
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}

// Nop returns a logger that writes nothing.
func Nop() *Logger {
	return &Logger{minLevel: LevelError}
}

// NewLogger creates baseDir/sessions/<sessionID>.jsonl and
// baseDir/errors.jsonl, appending to existing files.
func NewLogger(baseDir, sessionID string) (*Logger, error) {
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	sessionsDir := filepath.Join(baseDir, "sessions")
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	sessionFile, err := os.OpenFile(
		filepath.Join(sessionsDir, sessionID+".jsonl"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0644,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open session log: %w", err)
	}

	errorFile, err := os.OpenFile(
		filepath.Join(baseDir, "errors.jsonl"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0644,
	)
	if err != nil {
		sessionFile.Close()
		return nil, fmt.Errorf("failed to open error log: %w", err)
	}

	return &Logger{
		sessionID:   sessionID,
		baseDir:     baseDir,
		sessionFile: sessionFile,
		errorFile:   errorFile,
		minLevel:    LevelInfo,
	}, nil
}

// SessionID returns the id events are stamped with.
func (l *Logger) SessionID() string {
	if l == nil {
		return ""
	}
	return l.sessionID
}

// SessionPath returns the session log file path, or "" for Nop loggers.
func (l *Logger) SessionPath() string {
	if l == nil || l.sessionFile == nil {
		return ""
	}
	return l.sessionFile.Name()
}

// SetMinLevel sets the minimum log level
func (l *Logger) SetMinLevel(level Level) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// Log writes an event to appropriate destinations
func (l *Logger) Log(event Event) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sessionFile == nil && l.errorFile == nil {
		return nil
	}
	if levelRank[event.Level] < levelRank[l.minLevel] {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.SessionID == "" {
		event.SessionID = l.sessionID
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')

	if l.sessionFile != nil {
		if _, err := l.sessionFile.Write(data); err != nil {
			return fmt.Errorf("failed to write to session log: %w", err)
		}
	}
	if event.Level == LevelError && l.errorFile != nil {
		if _, err := l.errorFile.Write(data); err != nil {
			return fmt.Errorf("failed to write to error log: %w", err)
		}
	}
	return nil
}

// Helper methods for common log patterns

// Debug logs a debug event
func (l *Logger) Debug(category Category, eventType string, message string, details map[string]any) error {
	return l.Log(Event{Level: LevelDebug, Category: category, EventType: eventType, Message: message, Details: details})
}

// Info logs an info event
func (l *Logger) Info(category Category, eventType string, message string, details map[string]any) error {
	return l.Log(Event{Level: LevelInfo, Category: category, EventType: eventType, Message: message, Details: details})
}

// Warn logs a warning event
func (l *Logger) Warn(category Category, eventType string, message string, details map[string]any) error {
	return l.Log(Event{Level: LevelWarn, Category: category, EventType: eventType, Message: message, Details: details})
}

// Error logs an error event
func (l *Logger) Error(category Category, eventType string, message string, details map[string]any) error {
	return l.Log(Event{Level: LevelError, Category: category, EventType: eventType, Message: message, Details: details})
}

// Close closes all log files
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	if l.sessionFile != nil {
		if err := l.sessionFile.Close(); err != nil {
			errs = append(errs, err)
		}
		l.sessionFile = nil
	}
	if l.errorFile != nil {
		if err := l.errorFile.Close(); err != nil {
			errs = append(errs, err)
		}
		l.errorFile = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing log files: %v", errs)
	}
	return nil
}

// ReadRecentEvents reads the last count events from a JSONL log. Lines
// that fail to decode end the read.
func ReadRecentEvents(logPath string, count int) ([]Event, error) {
	file, err := os.Open(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	defer file.Close()

	var events []Event
	decoder := json.NewDecoder(file)
	for {
		var event Event
		if err := decoder.Decode(&event); err != nil {
			break
		}
		events = append(events, event)
	}

	if len(events) > count {
		events = events[len(events)-count:]
	}
	return events, nil
}
