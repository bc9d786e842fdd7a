// Package catalog holds the in-memory vocabulary that OCR output is resolved
// against: characters, artifact sets, weapons, materials, development items,
// stats and elements.
//
// A Store publishes immutable Snapshots. Reloads and renames build a complete
// new Snapshot and swap it in atomically, so readers always see a consistent
// catalog without taking locks.
package catalog

import "slices"

// Entry is the part shared by every catalog record: the normalized lookup key
// and the canonical value a lookup resolves to.
type Entry interface {
	CatalogKey() string
	CanonicalValue() string
}

// Character is a playable character. CustomName is the only field that may
// change after load; it holds a player-chosen alias for customizable entries.
type Character struct {
	Key           string
	Name          string
	Elements      []string
	WeaponType    string
	Constellation string
	CustomName    string
}

func (c Character) CatalogKey() string     { return c.Key }
func (c Character) CanonicalValue() string { return c.Name }

// MatchKey is the key fuzzy resolution compares against: the custom alias when
// one is set, the catalog key otherwise.
func (c Character) MatchKey() string {
	if c.CustomName != "" {
		return c.CustomName
	}
	return c.Key
}

// ArtifactPiece is one of the (up to five) pieces of an artifact set.
type ArtifactPiece struct {
	Slot string
	Key  string
	Name string
}

// ArtifactSet groups the pieces sharing a set bonus.
type ArtifactSet struct {
	Key    string
	Name   string
	Pieces []ArtifactPiece
}

func (a ArtifactSet) CatalogKey() string     { return a.Key }
func (a ArtifactSet) CanonicalValue() string { return a.Name }

// Item is a flat key to value record. Weapons, materials, development items,
// stat codes and element names all use it.
type Item struct {
	Key  string
	Name string
}

func (i Item) CatalogKey() string     { return i.Key }
func (i Item) CanonicalValue() string { return i.Name }

// Data is what a loader supplies on startup or reload.
type Data struct {
	Characters   []Character
	ArtifactSets []ArtifactSet
	Weapons      []Item
	DevItems     []Item
	Materials    []Item
}

// clone returns a deep copy so a Snapshot never shares mutable slices with
// the caller that supplied the data.
func (d Data) clone() Data {
	out := Data{
		Characters:   make([]Character, len(d.Characters)),
		ArtifactSets: make([]ArtifactSet, len(d.ArtifactSets)),
		Weapons:      slices.Clone(d.Weapons),
		DevItems:     slices.Clone(d.DevItems),
		Materials:    slices.Clone(d.Materials),
	}
	for i, c := range d.Characters {
		c.Elements = slices.Clone(c.Elements)
		out.Characters[i] = c
	}
	for i, a := range d.ArtifactSets {
		a.Pieces = slices.Clone(a.Pieces)
		out.ArtifactSets[i] = a
	}
	return out
}
