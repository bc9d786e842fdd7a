package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrNotFound is returned when renaming a character that is not in the catalog.
var ErrNotFound = errors.New("catalog: entry not found")

// Store publishes the current Snapshot. Reads are lock-free; Reload and Rename
// are serialized against each other and replace the snapshot as a whole.
type Store struct {
	current atomic.Pointer[Snapshot]
	mu      sync.Mutex
	logger  *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for rename warnings and reload notices.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore builds the initial snapshot from data.
func NewStore(data Data, opts ...StoreOption) (*Store, error) {
	s := &Store{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	snap, err := NewSnapshot(data)
	if err != nil {
		return nil, err
	}
	s.current.Store(snap)
	return s, nil
}

// Snapshot returns the catalog version currently in effect. The result never
// changes underneath the caller.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Reload rebuilds the catalog from data and swaps it in. Custom character
// names set through Rename are carried over for characters that still exist.
// On error the previous snapshot stays active.
func (s *Store) Reload(data Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	next, err := NewSnapshot(data)
	if err != nil {
		return fmt.Errorf("reload catalog: %w", err)
	}
	if carried := carryAliases(prev, next.data); carried > 0 {
		next, err = NewSnapshot(next.data)
		if err != nil {
			return fmt.Errorf("reload catalog: %w", err)
		}
	}
	s.current.Store(next)
	s.logger.Info("catalog reloaded",
		"characters", next.characters.Len(),
		"artifact_sets", next.artifactSets.Len(),
		"weapons", next.weapons.Len(),
		"dev_items", next.devItems.Len(),
		"materials", next.materials.Len())
	return nil
}

func carryAliases(prev *Snapshot, d Data) int {
	if prev == nil {
		return 0
	}
	n := 0
	for i := range d.Characters {
		c := &d.Characters[i]
		if c.CustomName != "" {
			continue
		}
		if old, ok := prev.characters.Lookup(c.Key); ok && old.CustomName != "" {
			c.CustomName = old.CustomName
			n++
		}
	}
	return n
}

// Rename sets the custom name of the character stored under target. Both
// arguments are normalized first and renaming to the current key is a no-op.
// A missing target returns ErrNotFound and a name that normalizes to nothing
// returns ErrEmptyKey. A name that collides with another character's key is
// logged and applied anyway.
func (s *Store) Rename(target, name string) error {
	target = Normalize(target)
	name = Normalize(name)
	if target == name {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.current.Load()
	if !snap.characters.HasKey(target) {
		return fmt.Errorf("rename %q: %w", target, ErrNotFound)
	}
	if name == "" {
		return fmt.Errorf("rename %q: custom name: %w", target, ErrEmptyKey)
	}
	if snap.characters.HasKey(name) {
		s.logger.Warn("custom name already exists as a character; items for the renamed character may be misattributed",
			"name", name, "target", target)
	}

	d := snap.data.clone()
	for i := range d.Characters {
		if d.Characters[i].Key == target {
			d.Characters[i].CustomName = name
		}
	}
	next, err := NewSnapshot(d)
	if err != nil {
		return fmt.Errorf("rename %q: %w", target, err)
	}
	s.current.Store(next)
	s.logger.Info("set custom character name", "target", target, "name", name)
	return nil
}

// AssignMainCharacterName renames the player-named protagonist.
func (s *Store) AssignMainCharacterName(name string) error {
	if Normalize(name) == "" {
		return fmt.Errorf("main character name %q: %w", name, ErrEmptyKey)
	}
	return s.Rename(MainCharacterKey, name)
}
