package session

import (
	"errors"
	"log/slog"
	"sync"

	"markestedt/ahkgen/config"
	"markestedt/ahkgen/platform"
	"markestedt/ahkgen/script"
	"markestedt/ahkgen/storage"
)

// Export sources
const (
	SourceWeb  = "web"
	SourceCLI  = "cli"
	SourceTray = "tray"
)

// History records export attempts
type History interface {
	SaveExport(e *storage.Export) error
}

// EventType identifies what changed in a session
type EventType string

const (
	SequenceChanged EventType = "sequence"
	ScriptGenerated EventType = "generated"
	GenerateFailed  EventType = "failed"
)

// Event is delivered to listeners after every change. Err is set for
// GenerateFailed only.
type Event struct {
	Type    EventType
	Actions []script.Action
	Export  *storage.Export
	Err     error
}

// Listener receives session events. Listeners must not block.
type Listener func(Event)

// Session owns the sequence being composed and turns it into scripts
type Session struct {
	seq       *script.Sequence
	history   History
	clipboard platform.Clipboard

	mu        sync.RWMutex
	cfg       *config.Config
	listeners []Listener
}

// Option configures a Session
type Option func(*Session)

// WithHistory records every export attempt in h
func WithHistory(h History) Option {
	return func(s *Session) {
		s.history = h
	}
}

// WithClipboard enables copying generated scripts when the config asks for it
func WithClipboard(c platform.Clipboard) Option {
	return func(s *Session) {
		s.clipboard = c
	}
}

// New creates an empty session
func New(cfg *config.Config, opts ...Option) *Session {
	s := &Session{
		seq: script.NewSequence(),
		cfg: cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsWarning reports whether err is user input the UI should warn about
// rather than a failure
func IsWarning(err error) bool {
	return errors.Is(err, script.ErrParameterRequired) ||
		errors.Is(err, script.ErrEmptySequence) ||
		errors.Is(err, script.ErrUnknownActionType)
}

// Subscribe registers a listener for session events
func (s *Session) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Config returns the current configuration
func (s *Session) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// UpdateConfig swaps in a new configuration
func (s *Session) UpdateConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// Actions returns a snapshot of the sequence
func (s *Session) Actions() []script.Action {
	return s.seq.Actions()
}

// AddAction validates form input and appends the resulting action
func (s *Session) AddAction(t script.ActionType, param string) (script.Action, error) {
	a, err := script.NewAction(t, param)
	if err != nil {
		return script.Action{}, err
	}

	s.seq.Append(a)
	slog.Debug("Action added", "action", a.String(), "count", s.seq.Len())
	s.notifySequence()
	return a, nil
}

// RemoveAction deletes the action at index i
func (s *Session) RemoveAction(i int) error {
	if err := s.seq.RemoveAt(i); err != nil {
		return err
	}
	s.notifySequence()
	return nil
}

// MoveUp swaps the action at i with the one before it
func (s *Session) MoveUp(i int) error {
	moved, err := s.seq.MoveUp(i)
	if err != nil {
		return err
	}
	if moved {
		s.notifySequence()
	}
	return nil
}

// MoveDown swaps the action at i with the one after it
func (s *Session) MoveDown(i int) error {
	moved, err := s.seq.MoveDown(i)
	if err != nil {
		return err
	}
	if moved {
		s.notifySequence()
	}
	return nil
}

// Clear empties the sequence
func (s *Session) Clear() {
	s.seq.Clear()
	s.notifySequence()
}

// Preview renders the script without writing it. An empty hotkey selects
// the configured default.
func (s *Session) Preview(hotkey string) (string, error) {
	cfg := s.Config()
	return script.Build(s.hotkeyOrDefault(cfg, hotkey), s.seq.Actions(),
		script.WithWindowTitle(cfg.Script.WindowTitle))
}

// Generate writes the script for the current sequence to the configured
// output path. An empty sequence fails with script.ErrEmptySequence before
// anything is written or recorded. Write failures are recorded in history
// and returned; they are not retried. Either failure is also delivered to
// listeners as GenerateFailed.
func (s *Session) Generate(hotkey, source string) (*storage.Export, error) {
	cfg := s.Config()
	hotkey = s.hotkeyOrDefault(cfg, hotkey)

	actions := s.seq.Actions()
	if len(actions) == 0 {
		s.notify(Event{Type: GenerateFailed, Err: script.ErrEmptySequence})
		return nil, script.ErrEmptySequence
	}

	text, err := script.Export(cfg.Script.OutputPath, hotkey, actions,
		script.WithWindowTitle(cfg.Script.WindowTitle))

	export := &storage.Export{
		Hotkey:      hotkey,
		WindowTitle: cfg.Script.WindowTitle,
		ActionCount: len(actions),
		OutputPath:  cfg.Script.OutputPath,
		ScriptText:  text,
		Source:      source,
		Success:     err == nil,
	}
	if err != nil {
		export.ErrorMessage = err.Error()
	}

	if s.history != nil && cfg.History.Enabled {
		if herr := s.history.SaveExport(export); herr != nil {
			slog.Warn("Failed to record export", "error", herr)
		}
	}

	if err != nil {
		slog.Error("Script generation failed", "error", err, "path", cfg.Script.OutputPath)
		s.notify(Event{Type: GenerateFailed, Actions: actions, Export: export, Err: err})
		return export, err
	}

	slog.Info("Script generated", "path", cfg.Script.OutputPath, "hotkey", hotkey, "actions", len(actions), "source", source)

	if cfg.Script.CopyToClipboard && s.clipboard != nil {
		if cerr := s.clipboard.SetText(text); cerr != nil {
			slog.Warn("Failed to copy script to clipboard", "error", cerr)
		}
	}

	s.notify(Event{Type: ScriptGenerated, Actions: actions, Export: export})
	return export, nil
}

func (s *Session) hotkeyOrDefault(cfg *config.Config, hotkey string) string {
	if hotkey == "" {
		return cfg.Script.DefaultHotkey
	}
	return hotkey
}

func (s *Session) notifySequence() {
	s.notify(Event{Type: SequenceChanged, Actions: s.seq.Actions()})
}

func (s *Session) notify(evt Event) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(evt)
	}
}
