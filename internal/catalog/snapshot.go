package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyKey is returned when a record has neither a key nor a name to derive one from.
	ErrEmptyKey = errors.New("catalog: entry has an empty key")
	// ErrDuplicateKey is returned when two records of one domain normalize to the same key.
	ErrDuplicateKey = errors.New("catalog: duplicate key")
)

// Snapshot is one immutable, fully built version of the catalog.
type Snapshot struct {
	data Data

	characters     *Table[Character]
	characterNames *Table[Character]
	artifactSets   *Table[ArtifactSet]
	weapons        *Table[Item]
	devItems       *Table[Item]
	materials      *Table[Item]
	stats          *Table[Item]
	elements       *Table[Item]
}

// NewSnapshot normalizes every key in data and builds the lookup tables.
// The stat and element tables are generated from the fixed vocabulary.
func NewSnapshot(data Data) (*Snapshot, error) {
	d := data.clone()

	for i := range d.Characters {
		c := &d.Characters[i]
		key, err := normalizeKey("character", c.Key, c.Name)
		if err != nil {
			return nil, err
		}
		c.Key = key
		c.CustomName = Normalize(c.CustomName)
		for j, e := range c.Elements {
			c.Elements[j] = Normalize(e)
		}
	}
	for i := range d.ArtifactSets {
		a := &d.ArtifactSets[i]
		key, err := normalizeKey("artifact set", a.Key, a.Name)
		if err != nil {
			return nil, err
		}
		a.Key = key
		for j := range a.Pieces {
			p := &a.Pieces[j]
			pieceKey, err := normalizeKey("artifact piece", p.Key, p.Name)
			if err != nil {
				return nil, fmt.Errorf("set %s: %w", a.Key, err)
			}
			p.Key = pieceKey
			p.Slot = Normalize(p.Slot)
		}
	}
	for _, items := range []struct {
		domain string
		items  []Item
	}{
		{"weapon", d.Weapons},
		{"development item", d.DevItems},
		{"material", d.Materials},
	} {
		for i := range items.items {
			it := &items.items[i]
			key, err := normalizeKey(items.domain, it.Key, it.Name)
			if err != nil {
				return nil, err
			}
			it.Key = key
		}
	}

	if err := checkUnique("character", d.Characters); err != nil {
		return nil, err
	}
	if err := checkUnique("artifact set", d.ArtifactSets); err != nil {
		return nil, err
	}
	if err := checkUnique("weapon", d.Weapons); err != nil {
		return nil, err
	}
	if err := checkUnique("development item", d.DevItems); err != nil {
		return nil, err
	}
	if err := checkUnique("material", d.Materials); err != nil {
		return nil, err
	}

	return &Snapshot{
		data:           d,
		characters:     newTable(d.Characters, Character.CatalogKey),
		characterNames: newTable(characterMatchOrder(d.Characters), Character.MatchKey),
		artifactSets:   newTable(d.ArtifactSets, ArtifactSet.CatalogKey),
		weapons:        newTable(d.Weapons, Item.CatalogKey),
		devItems:       newTable(d.DevItems, Item.CatalogKey),
		materials:      newTable(d.Materials, Item.CatalogKey),
		stats:          newTable(statItems(), Item.CatalogKey),
		elements:       newTable(elementItems(), Item.CatalogKey),
	}, nil
}

// characterMatchOrder puts aliased characters last so an alias equal to some
// other character's key wins that slot in the match index.
func characterMatchOrder(chars []Character) []Character {
	out := make([]Character, 0, len(chars))
	for _, c := range chars {
		if c.CustomName == "" {
			out = append(out, c)
		}
	}
	for _, c := range chars {
		if c.CustomName != "" {
			out = append(out, c)
		}
	}
	return out
}

func normalizeKey(domain, key, name string) (string, error) {
	k := Normalize(key)
	if k == "" {
		k = Normalize(name)
	}
	if k == "" {
		return "", fmt.Errorf("%s %q: %w", domain, name, ErrEmptyKey)
	}
	return k, nil
}

func checkUnique[E Entry](domain string, entries []E) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.CatalogKey()]; ok {
			return fmt.Errorf("%s %q: %w", domain, e.CatalogKey(), ErrDuplicateKey)
		}
		seen[e.CatalogKey()] = struct{}{}
	}
	return nil
}

// Characters is keyed by catalog key.
func (s *Snapshot) Characters() *Table[Character] { return s.characters }

// CharacterNames is keyed by match key: the custom alias where one is set.
func (s *Snapshot) CharacterNames() *Table[Character] { return s.characterNames }

func (s *Snapshot) ArtifactSets() *Table[ArtifactSet] { return s.artifactSets }
func (s *Snapshot) Weapons() *Table[Item]             { return s.weapons }
func (s *Snapshot) DevItems() *Table[Item]            { return s.devItems }
func (s *Snapshot) Materials() *Table[Item]           { return s.materials }

// Stats maps normalized stat labels ("critrate", "hp%") to stat codes.
func (s *Snapshot) Stats() *Table[Item] { return s.stats }

// Elements maps element keys to display names ("pyro" -> "Pyro").
func (s *Snapshot) Elements() *Table[Item] { return s.elements }

// Data returns a copy of the normalized records the snapshot was built from.
func (s *Snapshot) Data() Data { return s.data.clone() }
