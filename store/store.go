// Package store owns the on-disk memory document: a single JSON file
// holding plugin settings plus the ordered list of memory entries.
//
// The in-memory document is the single source of truth between loads.
// Every mutation is a whole-document rewrite, serialized by one mutex so
// UI-driven edits and hook executions cannot interleave. Writes are not
// atomic-rename; a process killed mid-write can corrupt the file, which is
// why destructive bulk operations take a timestamped backup first.
package store

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Chris4081/memauto-go-sdk/core"
)

// SchemaVersion is the current on-disk schema version.
const SchemaVersion = 1

// FileName is the backing file name inside the data directory.
const FileName = "memories.json"

// Settings are the recognized configuration values. Unrecognized or
// malformed persisted values fall back to defaults rather than failing
// the load.
type Settings struct {
	TimeContext     bool              `json:"timecontext"`
	DateContext     bool              `json:"datecontext"`
	Debug           bool              `json:"debug"`
	UILang          string            `json:"ui_lang"`
	MaxContextChars int               `json:"max_context_chars"`
	MaxShowMemories int               `json:"max_show_memories"`
	InjectGuide     bool              `json:"inject_guide"`
	GuideLang       string            `json:"guide_lang"`
	GuideOnce       bool              `json:"guide_once"`
	GuideMode       string            `json:"guide_mode"` // "trigger" | "always"
	HintOnTriggers  bool              `json:"hint_on_triggers"`
	GuideTriggers   []string          `json:"guide_triggers"`
	GuideCustom     map[string]string `json:"guide_custom"`
	AllowModelSaves bool              `json:"allow_model_saves"`
}

// Document is the full persisted state: settings plus entries.
// Entry order is semantically significant: administrative operations
// address entries by positional index.
type Document struct {
	Version int `json:"version"`
	Settings
	Pairs []core.Entry `json:"pairs"`
}

// Defaults returns a fresh document with default settings and no entries.
func Defaults() Document {
	return Document{
		Version: SchemaVersion,
		Settings: Settings{
			TimeContext:     true,
			DateContext:     true,
			Debug:           false,
			UILang:          "en",
			MaxContextChars: 1200,
			MaxShowMemories: 8,
			InjectGuide:     true,
			GuideLang:       "en",
			GuideOnce:       true,
			GuideMode:       "trigger",
			HintOnTriggers:  true,
			GuideTriggers: []string{
				"merke", "merk dir", "erinnere", "speichere",
				"remember", "store", "save this", "note this",
			},
			GuideCustom:     map[string]string{"de": "", "en": ""},
			AllowModelSaves: true,
		},
	}
}

// Store provides concurrency-safe access to the backing file.
type Store struct {
	dir string
	log *slog.Logger

	mu  sync.Mutex
	doc Document
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Open creates the data directory and backing file if needed and loads the
// document. Open never fails on malformed content: anything unreadable is
// coerced to defaults so the host conversation can always proceed.
func Open(dir string, opts ...Option) (*Store, error) {
	s := &Store{
		dir: dir,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	s.Reload()
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Reload re-reads the backing file, replacing the in-memory document.
// An absent file yields defaults and is created on the next save.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = s.readLocked()
	s.log.Debug("store loaded", "entries", len(s.doc.Pairs))
}

func (s *Store) readLocked() Document {
	raw, err := os.ReadFile(s.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("reading memory file", "err", err)
		}
		return Defaults()
	}
	return sanitize(raw)
}

// Save serializes the full document and overwrites the backing file.
// I/O failures are logged and returned; callers treat them as a warning,
// never as a reason to abort a host turn.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	if s.doc.Version < SchemaVersion {
		s.doc.Version = SchemaVersion
	}
	b, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding memory document: %w", err)
	}
	if err := os.WriteFile(s.Path(), append(b, '\n'), 0o644); err != nil {
		s.log.Warn("writing memory file", "err", err)
		return fmt.Errorf("writing memory file: %w", err)
	}
	s.log.Debug("store saved", "entries", len(s.doc.Pairs))
	return nil
}

// Backup copies the backing file to a timestamped sibling and returns its
// path. Failure is reported without raising; backups are never auto-pruned.
func (s *Store) Backup() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backupLocked()
}

func (s *Store) backupLocked() (string, error) {
	src, err := os.Open(s.Path())
	if err != nil {
		s.log.Warn("backup skipped", "err", err)
		return "", fmt.Errorf("opening memory file: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("memories.backup-%s.json", time.Now().Format("20060102-150405"))
	path := filepath.Join(s.dir, name)
	dst, err := os.Create(path)
	if err != nil {
		s.log.Warn("backup failed", "err", err)
		return "", fmt.Errorf("creating backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		s.log.Warn("backup failed", "err", err)
		return "", fmt.Errorf("copying to backup: %w", err)
	}
	s.log.Info("backup written", "path", path)
	return path, nil
}

// Entries returns a copy of the entry list in store order.
func (s *Store) Entries() []core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Entry, len(s.doc.Pairs))
	copy(out, s.doc.Pairs)
	return out
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.doc.Pairs)
}

// Settings returns a snapshot of the current settings.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySettings(s.doc.Settings)
}

// UpdateSettings applies mutate under the store lock and persists the
// result.
func (s *Store) UpdateSettings(mutate func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(&s.doc.Settings)
	return s.saveLocked()
}

// Contains reports whether an entry with the same identity triple exists.
func (s *Store) Contains(key core.Identity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.doc.Pairs {
		if e.Key() == key {
			return true
		}
	}
	return false
}

// Append adds an entry and persists. The caller is responsible for
// validation and duplicate checks (see the pipeline package).
func (s *Store) Append(e core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Pairs = append(s.doc.Pairs, e)
	return s.saveLocked()
}

// Update replaces the entry at index and persists.
func (s *Store) Update(index int, e core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.Pairs) {
		return fmt.Errorf("invalid entry index %d", index)
	}
	// Creation time is set once and never mutated.
	e.CreatedAt = s.doc.Pairs[index].CreatedAt
	s.doc.Pairs[index] = e
	return s.saveLocked()
}

// Delete removes the entry at index and persists.
func (s *Store) Delete(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.Pairs) {
		return fmt.Errorf("invalid entry index %d", index)
	}
	s.doc.Pairs = append(s.doc.Pairs[:index], s.doc.Pairs[index+1:]...)
	return s.saveLocked()
}

// DeleteAll removes every entry after taking a backup. Both happen under
// one lock acquisition, so no concurrent append can land between the
// snapshot and the wipe. The backup path is returned even when
// empty-on-failure so the UI can surface it.
func (s *Store) DeleteAll() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	backup, _ := s.backupLocked()
	s.doc.Pairs = nil
	if err := s.saveLocked(); err != nil {
		return backup, err
	}
	return backup, nil
}

func copySettings(in Settings) Settings {
	out := in
	out.GuideTriggers = append([]string(nil), in.GuideTriggers...)
	out.GuideCustom = make(map[string]string, len(in.GuideCustom))
	for k, v := range in.GuideCustom {
		out.GuideCustom[k] = v
	}
	return out
}
