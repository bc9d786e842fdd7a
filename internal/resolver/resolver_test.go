package resolver_test

import (
	"testing"

	"github.com/MeKo-Tech/kamera/internal/catalog"
	"github.com/MeKo-Tech/kamera/internal/resolver"
	"github.com/MeKo-Tech/kamera/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T, opts ...resolver.Option) (*resolver.Resolver, *catalog.Store) {
	t.Helper()
	store := testutil.SampleStore(t)
	return resolver.New(store, opts...), store
}

func TestStat(t *testing.T) {
	r, _ := newResolver(t)

	tests := []struct {
		input  string
		want   string
		method resolver.Method
	}{
		{"hp", "hp", resolver.MethodExact},
		{"HP%", "hp_", resolver.MethodExact},
		{"Pyro DMG Bonus", "pyro_dmg_", resolver.MethodExact},
		{"Elemental Mastery", "eleMas", resolver.MethodExact},
		{"critrat", "critRate_", resolver.MethodSubstring},
		{"Energy Recharqe", "enerRech_", resolver.MethodFuzzy},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := r.Stat(tt.input)
			require.True(t, res.OK(), "status %s", res.Status)
			assert.Equal(t, tt.want, res.Value)
			assert.Equal(t, tt.method, res.Method)
		})
	}
}

func TestStat_ExactDoesNotScan(t *testing.T) {
	r, _ := newResolver(t)

	res := r.Stat("atk%")
	assert.Equal(t, resolver.MethodExact, res.Method)
	assert.Zero(t, res.Compared)
}

func TestNoMatchKeepsInput(t *testing.T) {
	r, _ := newResolver(t)

	res := r.Weapon("qqqqqqqqqqqq")
	assert.Equal(t, resolver.StatusNoMatch, res.Status)
	assert.False(t, res.OK())
	assert.Empty(t, res.Value)
	assert.Equal(t, "qqqqqqqqqqqq", res.OrInput())
}

func TestBlankInputIsInvalid(t *testing.T) {
	r, _ := newResolver(t)

	for name, fn := range map[string]func(string, ...resolver.LookupOption) resolver.Result{
		"stat":      r.Stat,
		"element":   r.Element,
		"weapon":    r.Weapon,
		"set":       r.SetName,
		"piece":     r.SetFromPieceName,
		"character": r.Character,
		"devitem":   r.DevelopmentItem,
		"material":  r.Material,
	} {
		t.Run(name, func(t *testing.T) {
			res := fn("  \t ")
			assert.Equal(t, resolver.StatusInvalid, res.Status)
			assert.Empty(t, res.OrInput())
		})
	}
	assert.Equal(t, resolver.StatusInvalid, r.GearSlot("").Status)
}

func TestElement(t *testing.T) {
	r, _ := newResolver(t)

	assert.Equal(t, "Pyro", r.Element("pyro").Value)
	assert.Equal(t, "Electro", r.Element("ELECTRO").Value)
	assert.Equal(t, "Dendro", r.Element("dendr").Value)
}

func TestWeapon(t *testing.T) {
	r, _ := newResolver(t)

	res := r.Weapon("Favonius Sw0rd")
	require.True(t, res.OK())
	assert.Equal(t, "FavoniusSword", res.Value)
	assert.Equal(t, resolver.MethodFuzzy, res.Method)

	// "favonius" is contained in two keys and too short to score above 90
	assert.Equal(t, resolver.StatusNoMatch, r.Weapon("Favonius").Status)

	assert.Equal(t, "MistsplitterReforged", r.Weapon("Mistsplitter Reforged").Value)
}

func TestWithThreshold(t *testing.T) {
	r, _ := newResolver(t)

	assert.True(t, r.Weapon("Favonius Sw0rd").OK())
	assert.False(t, r.Weapon("Favonius Sw0rd", resolver.WithThreshold(95)).OK())

	strict, _ := newResolver(t, resolver.WithDefaultThreshold(95))
	assert.InDelta(t, 95.0, strict.Threshold(), 0)
	assert.False(t, strict.Weapon("Favonius Sw0rd").OK())
	assert.True(t, strict.Weapon("Favonius Sw0rd", resolver.WithThreshold(90)).OK())
}

func TestSetName(t *testing.T) {
	r, _ := newResolver(t)

	assert.Equal(t, "GladiatorsFinale", r.SetName("Gladiator's Finale").Value)
	assert.Equal(t, "EmblemOfSeveredFate", r.SetName("Emblem of Severed Fat").Value)
}

func TestSetFromPieceName(t *testing.T) {
	r, _ := newResolver(t)

	exact := r.SetFromPieceName("Gladiator's Nostalgia")
	require.True(t, exact.OK())
	assert.Equal(t, "GladiatorsFinale", exact.Value)
	assert.Equal(t, resolver.MethodExact, exact.Method)
	assert.Equal(t, "gladiatorsfinale", exact.Key)

	fuzzy := r.SetFromPieceName("Gladiators Nostalgla")
	require.True(t, fuzzy.OK())
	assert.Equal(t, "GladiatorsFinale", fuzzy.Value)
	assert.Equal(t, resolver.MethodPiece, fuzzy.Method)
	assert.Greater(t, fuzzy.Score, 90.0)

	assert.Equal(t, "WanderersTroupe", r.SetFromPieceName("Bard's Arrow Feather").Value)
	assert.Equal(t, "EmblemOfSeveredFate", r.SetFromPieceName("Magnificent Tsuba").Value)

	miss := r.SetFromPieceName("Completely Unknown Piece")
	assert.Equal(t, resolver.StatusNoMatch, miss.Status)
	assert.Equal(t, "Completely Unknown Piece", miss.OrInput())
}

func TestCharacter(t *testing.T) {
	r, store := newResolver(t)

	assert.Equal(t, "KamisatoAyaka", r.Character("Kamisato Ayaka").Value)
	assert.Equal(t, "KamisatoAyaka", r.Character("kamisatoayak").Value)

	fuzzy := r.Character("Kamisato Ayaca")
	assert.Equal(t, "KamisatoAyaka", fuzzy.Value)
	assert.Equal(t, resolver.MethodFuzzy, fuzzy.Method)

	require.NoError(t, store.AssignMainCharacterName("Aether"))

	res := r.Character("Aether")
	require.True(t, res.OK())
	assert.Equal(t, "Traveler", res.Value)
	assert.Equal(t, resolver.MethodExact, res.Method)

	// once aliased, the catalog key no longer matches
	assert.Equal(t, resolver.StatusNoMatch, r.Character("Traveler").Status)
}

func TestCharacterElements(t *testing.T) {
	r, store := newResolver(t)

	elements, ok := r.CharacterElements("Amber")
	require.True(t, ok)
	assert.Equal(t, []string{"pyro"}, elements)
	assert.True(t, r.CharacterMatchesElement("Amber", "Pyro"))
	assert.False(t, r.CharacterMatchesElement("Amber", "hydro"))

	_, ok = r.CharacterElements("Nobody")
	assert.False(t, ok)
	assert.False(t, r.CharacterMatchesElement("Nobody", "pyro"))

	_, ok = r.CharacterElements("  ")
	assert.False(t, ok)
	assert.False(t, r.CharacterMatchesElement("", "pyro"))
	assert.False(t, r.CharacterMatchesElement("???", "anemo"))

	require.NoError(t, store.AssignMainCharacterName("Aether"))
	elements, ok = r.CharacterElements("Aether")
	require.True(t, ok)
	assert.Contains(t, elements, "geo")
	assert.True(t, r.CharacterMatchesElement("Aether", "Dendro"))
	assert.False(t, r.CharacterMatchesElement("Aether", "cryo"))

	// the catalog key keeps working next to the custom name
	assert.True(t, r.CharacterMatchesElement("Traveler", "anemo"))
}

func TestDevelopmentItem(t *testing.T) {
	r, _ := newResolver(t)

	res := r.DevelopmentItem("Hero's Wit")
	require.True(t, res.OK())
	assert.Equal(t, "HerosWit", res.Value)

	fallback := r.DevelopmentItem("Sunsettia")
	require.True(t, fallback.OK())
	assert.Equal(t, "Sunsettia", fallback.Value)

	assert.Equal(t, resolver.StatusNoMatch, r.DevelopmentItem("Mora Mora Mora").Status)
}

func TestMaterial(t *testing.T) {
	r, _ := newResolver(t)

	assert.Equal(t, "DandelionSeed", r.Material("Dandelion Seed").Value)
	assert.Equal(t, "DandelionSeed", r.Material("Dandelion Sead").Value)
	assert.False(t, r.Material("Hero's Wit").OK())
}

func TestGearSlot(t *testing.T) {
	r, _ := newResolver(t)

	tests := map[string]string{
		"Flower of Life":     "flower",
		"Plume of Death":     "plume",
		"Sands of Eon":       "sands",
		"Goblet of Eonothem": "goblet",
		"Circlet of Logos":   "circlet",
	}
	for input, want := range tests {
		res := r.GearSlot(input)
		assert.Equal(t, want, res.Value, input)
		assert.Equal(t, resolver.MethodSubstring, res.Method)
	}

	miss := r.GearSlot("Weapon")
	assert.Equal(t, resolver.StatusNoMatch, miss.Status)
	assert.Equal(t, "Weapon", miss.OrInput())
}

func TestLookupsFollowReload(t *testing.T) {
	r, store := newResolver(t)
	require.False(t, r.Weapon("Skyward Blade").OK())

	data := testutil.SampleData()
	data.Weapons = append(data.Weapons, catalog.Item{Key: "skywardblade", Name: "SkywardBlade"})
	require.NoError(t, store.Reload(data))

	assert.Equal(t, "SkywardBlade", r.Weapon("Skyward Blade").Value)
}

func TestValidators(t *testing.T) {
	r, _ := newResolver(t)

	assert.True(t, r.IsValidStat("critRate_"))
	assert.False(t, r.IsValidStat("critrate"))

	assert.True(t, r.IsValidElement("Pyro"))
	assert.True(t, r.IsValidElement("pyro"))
	assert.False(t, r.IsValidElement("fire"))

	assert.True(t, r.IsValidWeapon("DullBlade"))
	assert.True(t, r.IsValidWeapon("Dull Blade"))
	assert.False(t, r.IsValidWeapon("Dull"))

	assert.True(t, r.IsValidSetName("GladiatorsFinale"))
	assert.True(t, r.IsValidSetName("gladiatorsfinale"))
	assert.True(t, r.IsValidSetName("Gladiator's Finale"))
	assert.False(t, r.IsValidSetName("Gladiator"))

	assert.True(t, r.IsValidMaterial("Cecilia"))
	assert.False(t, r.IsValidMaterial("HerosWit"))

	assert.True(t, r.IsEnhancementMaterial("Fine Enhancement Ore"))
	assert.True(t, r.IsEnhancementMaterial("Sunsettia"))
	assert.False(t, r.IsEnhancementMaterial("Dull Blade"))

	assert.True(t, r.IsValidCharacter("Traveler (Anemo)"))
	assert.True(t, r.IsValidCharacter("Wanderer"))
	assert.True(t, r.IsValidCharacter("Albedo"))
	assert.False(t, r.IsValidCharacter("Nobody"))
	assert.False(t, r.IsValidCharacter("Wanderer's Troupe"))
	assert.False(t, r.IsValidCharacter("The Wanderer's"))
	assert.False(t, r.IsValidCharacter("Wanderer (Anemo)"))
	assert.True(t, r.IsValidCharacter("wanderer"))

	assert.True(t, r.IsValidSlot("sands"))
	assert.False(t, r.IsValidSlot("Sands"))
}
