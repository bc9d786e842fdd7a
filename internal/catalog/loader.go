package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog file base names inside a catalog directory. Each may be stored as
// .json, .yaml or .yml.
const (
	CharactersFile = "characters"
	ArtifactsFile  = "artifacts"
	WeaponsFile    = "weapons"
	DevItemsFile   = "devitems"
	MaterialsFile  = "materials"
)

var catalogExtensions = []string{".json", ".yaml", ".yml"}

// characterRecord is the on-disk shape of one characters file entry.
type characterRecord struct {
	Name          string   `json:"name" yaml:"name"`
	Elements      []string `json:"elements,omitempty" yaml:"elements,omitempty"`
	WeaponType    string   `json:"weapon_type,omitempty" yaml:"weapon_type,omitempty"`
	Constellation string   `json:"constellation,omitempty" yaml:"constellation,omitempty"`
}

type pieceRecord struct {
	Key  string `json:"key,omitempty" yaml:"key,omitempty"`
	Name string `json:"name" yaml:"name"`
}

type artifactSetRecord struct {
	Name   string                 `json:"name" yaml:"name"`
	Pieces map[string]pieceRecord `json:"pieces" yaml:"pieces"`
}

// LoadDir reads the five catalog files from dir. Characters and artifacts are
// required; weapons, development items and materials default to empty.
func LoadDir(dir string) (Data, error) {
	var data Data

	var chars map[string]characterRecord
	if err := readCatalogFile(dir, CharactersFile, true, &chars); err != nil {
		return Data{}, err
	}
	for _, key := range sortedKeys(chars) {
		r := chars[key]
		data.Characters = append(data.Characters, Character{
			Key:           key,
			Name:          r.Name,
			Elements:      r.Elements,
			WeaponType:    r.WeaponType,
			Constellation: r.Constellation,
		})
	}

	var sets map[string]artifactSetRecord
	if err := readCatalogFile(dir, ArtifactsFile, true, &sets); err != nil {
		return Data{}, err
	}
	for _, key := range sortedKeys(sets) {
		r := sets[key]
		set := ArtifactSet{Key: key, Name: r.Name}
		for _, slot := range orderedSlots(r.Pieces) {
			p := r.Pieces[slot]
			set.Pieces = append(set.Pieces, ArtifactPiece{Slot: slot, Key: p.Key, Name: p.Name})
		}
		data.ArtifactSets = append(data.ArtifactSets, set)
	}

	for _, flat := range []struct {
		base string
		dst  *[]Item
	}{
		{WeaponsFile, &data.Weapons},
		{DevItemsFile, &data.DevItems},
		{MaterialsFile, &data.Materials},
	} {
		var m map[string]string
		if err := readCatalogFile(dir, flat.base, false, &m); err != nil {
			return Data{}, err
		}
		for _, key := range sortedKeys(m) {
			*flat.dst = append(*flat.dst, Item{Key: key, Name: m[key]})
		}
	}

	return data, nil
}

// Load reads dir and builds a snapshot from it in one step.
func Load(dir string) (*Snapshot, error) {
	data, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(data)
}

func readCatalogFile(dir, base string, required bool, out any) error {
	path, err := findCatalogFile(dir, base)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	raw, err := os.ReadFile(path) //nolint:gosec // G304: catalog directory is operator-provided
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	switch filepath.Ext(path) {
	case ".json":
		err = json.Unmarshal(raw, out)
	default:
		err = yaml.Unmarshal(raw, out)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func findCatalogFile(dir, base string) (string, error) {
	for _, ext := range catalogExtensions {
		p := filepath.Join(dir, base+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("catalog file %s{%s} in %s: %w",
		base, strings.Join(catalogExtensions, ","), dir, os.ErrNotExist)
}

// isCatalogFile reports whether path names one of the catalog files.
func isCatalogFile(path string) bool {
	ext := filepath.Ext(path)
	if !slices.Contains(catalogExtensions, ext) {
		return false
	}
	base := strings.TrimSuffix(filepath.Base(path), ext)
	switch base {
	case CharactersFile, ArtifactsFile, WeaponsFile, DevItemsFile, MaterialsFile:
		return true
	}
	return false
}

// orderedSlots lists piece slots in gear-slot order, unknown slots last.
func orderedSlots(pieces map[string]pieceRecord) []string {
	out := make([]string, 0, len(pieces))
	for _, s := range gearSlots {
		if _, ok := pieces[s]; ok {
			out = append(out, s)
		}
	}
	var rest []string
	for s := range pieces {
		if !slices.Contains(gearSlots, s) {
			rest = append(rest, s)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
