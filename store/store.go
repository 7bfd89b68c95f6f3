// Package store keeps the ordered collection of named templates, the active
// template marker and the open draft, persisted through a kv.Store.
//
// A template named "DEMO" always exists at index 0. It can be duplicated but
// never renamed, deleted or overwritten. Every mutation re-checks this before
// returning.
//
// Persistence failures never fail an operation: they are logged and the
// store keeps working from memory. A Store is not safe for concurrent use.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/lvillar/doclayout"
	"github.com/lvillar/doclayout/kv"
	"github.com/lvillar/doclayout/layout"
)

// Storage keys.
const (
	KeyTemplates = "doclayout.templates"
	KeyActive    = "doclayout.active"
	KeyDraft     = "doclayout.draft"
	KeyBackup    = "doclayout.templates.backup"
)

// legacyBlankName is a template older versions kept next to DEMO. It is
// dropped on load.
const legacyBlankName = "Plantilla en Blanco"

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTimeout bounds every storage call.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.timeout = d
	}
}

// Store is the template collection.
type Store struct {
	kv      kv.Store
	log     *slog.Logger
	timeout time.Duration

	templates []*layout.Template
	active    string
	draft     *layout.Template
	lastErr   error
}

// New returns a store backed by backend and loads its contents. A nil
// backend keeps everything in memory.
func New(ctx context.Context, backend kv.Store, opts ...Option) *Store {
	if backend == nil {
		backend = kv.NewMemory()
	}
	s := &Store{
		kv:      backend,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reload(ctx)
	return s
}

var (
	instanceMu sync.Mutex
	instance   *Store
)

// Init creates the process-wide store, replacing any previous one.
func Init(ctx context.Context, backend kv.Store, opts ...Option) *Store {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	instance = New(ctx, backend, opts...)
	return instance
}

// Instance returns the process-wide store. If Init was never called, an
// in-memory store is created on first access.
func Instance() *Store {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance == nil {
		instance = New(context.Background(), nil)
	}
	return instance
}

// Reload replaces the in-memory state with the persisted one. Templates and
// elements that cannot be decoded are skipped; missing data yields a
// collection holding only DEMO. When anything was skipped the stored
// collection is left as is and a copy is kept under KeyBackup.
func (s *Store) Reload(ctx context.Context) {
	s.templates = nil
	s.active = ""
	s.draft = nil

	damaged := false
	if data, ok := s.get(ctx, KeyTemplates); ok {
		list, skipped, err := layout.DecodeListLenient(data)
		if err != nil {
			s.log.Warn("discarding unreadable templates", "err", err)
			damaged = true
		}
		for _, e := range skipped {
			s.log.Warn("skipping unreadable template data", "err", e)
			damaged = true
		}
		if damaged {
			s.set(ctx, KeyBackup, data)
		}
		for _, t := range list {
			t.Name = canonical(t.Name)
			if t.Name != legacyBlankName && t.Name != "" && s.find(t.Name) < 0 {
				s.templates = append(s.templates, t)
			}
		}
	}
	if data, ok := s.get(ctx, KeyActive); ok {
		s.active = strings.TrimSpace(string(data))
		if s.find(s.active) < 0 {
			s.active = ""
		}
	}
	if data, ok := s.get(ctx, KeyDraft); ok {
		if t, err := layout.Decode(data); err == nil {
			s.draft = t
		} else {
			s.log.Warn("discarding unreadable draft", "err", err)
		}
	}
	if s.ensureDemo() && !damaged {
		s.persistTemplates(ctx)
	}
}

// Err returns the last persistence error, or nil if the last write
// succeeded.
func (s *Store) Err() error { return s.lastErr }

// List returns copies of all templates in order. DEMO is always first.
func (s *Store) List() []*layout.Template {
	out := make([]*layout.Template, len(s.templates))
	for i, t := range s.templates {
		out[i] = t.Clone()
	}
	return out
}

// Names returns the template names in order.
func (s *Store) Names() []string {
	out := make([]string, len(s.templates))
	for i, t := range s.templates {
		out[i] = t.Name
	}
	return out
}

// Get returns a copy of the named template.
func (s *Store) Get(name string) (*layout.Template, error) {
	i := s.find(name)
	if i < 0 {
		return nil, doclayout.NewError("Get", name, doclayout.ErrNotFound)
	}
	return s.templates[i].Clone(), nil
}

// Protected reports whether name is the protected default template.
func Protected(name string) bool {
	return canonical(name) == layout.DemoName
}

// Create adds a template. A blank template has no elements; otherwise it
// starts as a copy of the DEMO layout.
func (s *Store) Create(ctx context.Context, name string, blank bool) (*layout.Template, error) {
	name = canonical(name)
	if err := s.checkNewName("Create", name); err != nil {
		return nil, err
	}
	var t *layout.Template
	if blank {
		t = layout.Blank(name)
	} else {
		t = s.templates[0].Clone()
		t.Name = name
	}
	t.Normalize()
	s.templates = append(s.templates, t)
	s.commit(ctx)
	return t.Clone(), nil
}

// Duplicate copies the named template under a free name of the form
// "<name> - Copy", "<name> - Copy 2", ... and returns the new name.
func (s *Store) Duplicate(ctx context.Context, name string) (string, error) {
	i := s.find(name)
	if i < 0 {
		return "", doclayout.NewError("Duplicate", name, doclayout.ErrNotFound)
	}
	src := s.templates[i]
	newName := src.Name + " - Copy"
	for n := 2; s.find(newName) >= 0; n++ {
		newName = fmt.Sprintf("%s - Copy %d", src.Name, n)
	}
	t := src.Clone()
	t.Name = newName
	s.templates = append(s.templates, t)
	s.commit(ctx)
	return newName, nil
}

// Rename changes a template name. The active marker follows the template.
func (s *Store) Rename(ctx context.Context, oldName, newName string) error {
	if Protected(oldName) {
		return doclayout.NewError("Rename", oldName, doclayout.ErrProtectedTemplate)
	}
	i := s.find(oldName)
	if i < 0 {
		return doclayout.NewError("Rename", oldName, doclayout.ErrNotFound)
	}
	newName = canonical(newName)
	if newName == s.templates[i].Name {
		return nil
	}
	if err := s.checkNewName("Rename", newName); err != nil {
		return err
	}
	wasActive := s.active == s.templates[i].Name
	s.templates[i].Name = newName
	s.commit(ctx)
	if wasActive {
		s.SetActive(ctx, newName)
	}
	return nil
}

// Delete removes a template. Deleting the active template clears the active
// marker.
func (s *Store) Delete(ctx context.Context, name string) error {
	if Protected(name) {
		return doclayout.NewError("Delete", name, doclayout.ErrProtectedTemplate)
	}
	i := s.find(name)
	if i < 0 {
		return doclayout.NewError("Delete", name, doclayout.ErrNotFound)
	}
	removed := s.templates[i].Name
	s.templates = append(s.templates[:i], s.templates[i+1:]...)
	s.commit(ctx)
	if s.active == removed {
		s.active = ""
		s.remove(ctx, KeyActive)
	}
	return nil
}

// Save inserts t or replaces the template with the same name. The stored
// copy is normalized. DEMO cannot be overwritten.
func (s *Store) Save(ctx context.Context, t *layout.Template) error {
	if t == nil {
		return doclayout.NewError("Save", "", doclayout.ErrInvalidName)
	}
	c := t.Clone()
	c.Name = canonical(c.Name)
	if c.Name == "" {
		return doclayout.NewError("Save", "", doclayout.ErrInvalidName)
	}
	if Protected(c.Name) {
		return doclayout.NewError("Save", c.Name, doclayout.ErrProtectedTemplate)
	}
	c.Normalize()
	if i := s.find(c.Name); i >= 0 {
		s.templates[i] = c
	} else {
		s.templates = append(s.templates, c)
	}
	s.commit(ctx)
	return nil
}

// SetActive records name as the template open for editing.
func (s *Store) SetActive(ctx context.Context, name string) error {
	i := s.find(name)
	if i < 0 {
		return doclayout.NewError("SetActive", name, doclayout.ErrNotFound)
	}
	s.active = s.templates[i].Name
	s.set(ctx, KeyActive, []byte(s.active))
	s.ensureDemo()
	return nil
}

// ActiveName returns the active template name, or "" if none is active.
func (s *Store) ActiveName() string { return s.active }

// Active returns a copy of the active template.
func (s *Store) Active() (*layout.Template, bool) {
	if s.active == "" {
		return nil, false
	}
	t, err := s.Get(s.active)
	return t, err == nil
}

// Draft returns a copy of the persisted editor draft.
func (s *Store) Draft() (*layout.Template, bool) {
	if s.draft == nil {
		return nil, false
	}
	return s.draft.Clone(), true
}

// SaveDraft persists the template currently open in the editor.
func (s *Store) SaveDraft(ctx context.Context, t *layout.Template) {
	if t == nil {
		return
	}
	s.draft = t.Clone()
	data, err := layout.Encode(s.draft)
	if err != nil {
		s.fail("encode draft", err)
		return
	}
	s.set(ctx, KeyDraft, data)
}

// ClearDraft discards the persisted draft.
func (s *Store) ClearDraft(ctx context.Context) {
	s.draft = nil
	s.remove(ctx, KeyDraft)
}

func (s *Store) checkNewName(op, name string) error {
	if name == "" {
		return doclayout.NewError(op, name, doclayout.ErrInvalidName)
	}
	if s.find(name) >= 0 {
		return doclayout.NewError(op, name, doclayout.ErrDuplicateName)
	}
	return nil
}

func (s *Store) find(name string) int {
	name = canonical(name)
	for i, t := range s.templates {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// ensureDemo makes DEMO exist exactly once at index 0 and reports whether
// the collection changed.
func (s *Store) ensureDemo() bool {
	var demo *layout.Template
	rest := make([]*layout.Template, 0, len(s.templates))
	changed := false
	for i, t := range s.templates {
		if t.Name != layout.DemoName {
			rest = append(rest, t)
			continue
		}
		if demo != nil || i != 0 {
			changed = true
		}
		if demo == nil {
			demo = t
		}
	}
	if demo == nil {
		demo = layout.Demo()
		changed = true
	}
	s.templates = append([]*layout.Template{demo}, rest...)
	return changed
}

func (s *Store) commit(ctx context.Context) {
	s.ensureDemo()
	s.persistTemplates(ctx)
}

func (s *Store) persistTemplates(ctx context.Context) {
	data, err := layout.EncodeList(s.templates)
	if err != nil {
		s.fail("encode templates", err)
		return
	}
	s.set(ctx, KeyTemplates, data)
}

func (s *Store) get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		s.fail("read "+key, err)
		return nil, false
	}
	return data, true
}

func (s *Store) set(ctx context.Context, key string, data []byte) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.kv.Set(ctx, key, data); err != nil {
		s.fail("write "+key, err)
		return
	}
	s.lastErr = nil
}

func (s *Store) remove(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.kv.Remove(ctx, key); err != nil {
		s.fail("remove "+key, err)
		return
	}
	s.lastErr = nil
}

func (s *Store) fail(what string, err error) {
	s.lastErr = fmt.Errorf("store: %s: %w", what, err)
	s.log.Error("persistence failed, continuing in memory", "op", what, "err", err)
}

// canonical trims and NFC-normalizes a template name so visually identical
// names compare equal.
func canonical(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
