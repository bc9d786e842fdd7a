package testutil

import (
	"encoding/json"
	"testing"

	"github.com/MeKo-Tech/kamera/internal/catalog"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// SampleData returns a small catalog covering every domain. Keys are already
// in normalized form.
func SampleData() catalog.Data {
	return catalog.Data{
		Characters: []catalog.Character{
			{Key: "albedo", Name: "Albedo", Elements: []string{"geo"}, WeaponType: "sword"},
			{Key: "amber", Name: "Amber", Elements: []string{"pyro"}, WeaponType: "bow"},
			{Key: "kamisatoayaka", Name: "KamisatoAyaka", Elements: []string{"cryo"}, WeaponType: "sword"},
			{Key: "kamisatoayato", Name: "KamisatoAyato", Elements: []string{"hydro"}, WeaponType: "sword"},
			{Key: "raidenshogun", Name: "RaidenShogun", Elements: []string{"electro"}, WeaponType: "polearm"},
			{Key: "traveler", Name: "Traveler", Elements: []string{"anemo", "geo", "electro", "dendro", "hydro"}, WeaponType: "sword"},
			{Key: "wanderer", Name: "Wanderer", Elements: []string{"anemo"}, WeaponType: "catalyst"},
		},
		ArtifactSets: []catalog.ArtifactSet{
			{
				Key:  "gladiatorsfinale",
				Name: "GladiatorsFinale",
				Pieces: []catalog.ArtifactPiece{
					{Slot: "flower", Key: "gladiatorsnostalgia", Name: "Gladiator's Nostalgia"},
					{Slot: "plume", Key: "gladiatorsdestiny", Name: "Gladiator's Destiny"},
					{Slot: "sands", Key: "gladiatorslonging", Name: "Gladiator's Longing"},
					{Slot: "goblet", Key: "gladiatorsintoxication", Name: "Gladiator's Intoxication"},
					{Slot: "circlet", Key: "gladiatorstriumphus", Name: "Gladiator's Triumphus"},
				},
			},
			{
				Key:  "wandererstroupe",
				Name: "WanderersTroupe",
				Pieces: []catalog.ArtifactPiece{
					{Slot: "flower", Key: "troupesdawnlight", Name: "Troupe's Dawnlight"},
					{Slot: "plume", Key: "bardsarrowfeather", Name: "Bard's Arrow Feather"},
					{Slot: "sands", Key: "concertsfinalhour", Name: "Concert's Final Hour"},
					{Slot: "goblet", Key: "wanderingminstrel", Name: "Wandering Minstrel"},
					{Slot: "circlet", Key: "conductorstophat", Name: "Conductor's Top Hat"},
				},
			},
			{
				Key:  "emblemofseveredfate",
				Name: "EmblemOfSeveredFate",
				Pieces: []catalog.ArtifactPiece{
					{Slot: "flower", Key: "magnificenttsuba", Name: "Magnificent Tsuba"},
					{Slot: "plume", Key: "sundereddamask", Name: "Sundered Damask"},
				},
			},
		},
		Weapons: []catalog.Item{
			{Key: "dullblade", Name: "DullBlade"},
			{Key: "favoniussword", Name: "FavoniusSword"},
			{Key: "favoniuslance", Name: "FavoniusLance"},
			{Key: "engulfinglightning", Name: "EngulfingLightning"},
			{Key: "mistsplitterreforged", Name: "MistsplitterReforged"},
		},
		DevItems: []catalog.Item{
			{Key: "heroswit", Name: "HerosWit"},
			{Key: "adventurersexperience", Name: "AdventurersExperience"},
			{Key: "mysticenhancementore", Name: "MysticEnhancementOre"},
		},
		Materials: []catalog.Item{
			{Key: "cecilia", Name: "Cecilia"},
			{Key: "dandelionseed", Name: "DandelionSeed"},
			{Key: "sunsettia", Name: "Sunsettia"},
			{Key: "mysticenhancementore", Name: "MysticEnhancementOre"},
		},
	}
}

// SampleStore builds a catalog.Store from SampleData.
func SampleStore(t *testing.T, opts ...catalog.StoreOption) *catalog.Store {
	t.Helper()

	store, err := catalog.NewStore(SampleData(), opts...)
	require.NoError(t, err)
	return store
}

// WriteCatalogDir writes data as catalog files into dir using ext (".json",
// ".yaml" or ".yml") and returns dir.
func WriteCatalogDir(t *testing.T, dir string, data catalog.Data, ext string) string {
	t.Helper()

	type piece struct {
		Key  string `json:"key,omitempty" yaml:"key,omitempty"`
		Name string `json:"name" yaml:"name"`
	}
	type set struct {
		Name   string           `json:"name" yaml:"name"`
		Pieces map[string]piece `json:"pieces" yaml:"pieces"`
	}
	type character struct {
		Name          string   `json:"name" yaml:"name"`
		Elements      []string `json:"elements,omitempty" yaml:"elements,omitempty"`
		WeaponType    string   `json:"weapon_type,omitempty" yaml:"weapon_type,omitempty"`
		Constellation string   `json:"constellation,omitempty" yaml:"constellation,omitempty"`
	}

	chars := make(map[string]character, len(data.Characters))
	for _, c := range data.Characters {
		chars[c.Key] = character{Name: c.Name, Elements: c.Elements, WeaponType: c.WeaponType, Constellation: c.Constellation}
	}
	sets := make(map[string]set, len(data.ArtifactSets))
	for _, a := range data.ArtifactSets {
		s := set{Name: a.Name, Pieces: make(map[string]piece, len(a.Pieces))}
		for _, p := range a.Pieces {
			s.Pieces[p.Slot] = piece{Key: p.Key, Name: p.Name}
		}
		sets[a.Key] = s
	}
	flat := func(items []catalog.Item) map[string]string {
		m := make(map[string]string, len(items))
		for _, it := range items {
			m[it.Key] = it.Name
		}
		return m
	}

	files := map[string]any{
		catalog.CharactersFile: chars,
		catalog.ArtifactsFile:  sets,
		catalog.WeaponsFile:    flat(data.Weapons),
		catalog.DevItemsFile:   flat(data.DevItems),
		catalog.MaterialsFile:  flat(data.Materials),
	}
	for base, v := range files {
		var (
			raw []byte
			err error
		)
		if ext == ".json" {
			raw, err = json.MarshalIndent(v, "", "  ")
		} else {
			raw, err = yaml.Marshal(v)
		}
		require.NoError(t, err)
		WriteFile(t, dir, base+ext, raw)
	}
	return dir
}
