package catalog

import "strings"

// MainCharacterKey is the catalog key of the protagonist whose display name
// the player chooses.
const MainCharacterKey = "traveler"

// elementKeys is the fixed element list, in game order.
var elementKeys = []string{
	"pyro",
	"hydro",
	"dendro",
	"electro",
	"anemo",
	"cryo",
	"geo",
}

// baseStats maps stat labels as they read on screen (normalized) to stat codes.
// Per-element damage bonuses are generated from elementKeys.
var baseStats = []Item{
	{Key: "hp", Name: "hp"},
	{Key: "hp%", Name: "hp_"},
	{Key: "atk", Name: "atk"},
	{Key: "atk%", Name: "atk_"},
	{Key: "def", Name: "def"},
	{Key: "def%", Name: "def_"},
	{Key: "energyrecharge", Name: "enerRech_"},
	{Key: "elementalmastery", Name: "eleMas"},
	{Key: "healingbonus", Name: "heal_"},
	{Key: "critrate", Name: "critRate_"},
	{Key: "critdmg", Name: "critDMG_"},
	{Key: "physicaldmgbonus", Name: "physical_dmg_"},
}

var gearSlots = []string{
	"flower",
	"plume",
	"sands",
	"goblet",
	"circlet",
}

var enhancementMaterials = []string{
	"enhancementore",
	"fineenhancementore",
	"mysticenhancementore",
	"sanctifyingunction",
	"sanctifyingessence",
}

// Display names of the characters the player can rename.
const (
	TravelerName = "Traveler"
	WandererName = "Wanderer"
)

var customizableNames = []string{TravelerName, WandererName}

// ElementKeys returns the seven element keys in game order.
func ElementKeys() []string { return append([]string(nil), elementKeys...) }

// GearSlots returns the artifact slot names in display order.
func GearSlots() []string { return append([]string(nil), gearSlots...) }

// EnhancementMaterials returns the normalized names of weapon enhancement ores.
func EnhancementMaterials() []string { return append([]string(nil), enhancementMaterials...) }

// CustomizableNames returns the display names of characters the player can rename.
func CustomizableNames() []string { return append([]string(nil), customizableNames...) }

func statItems() []Item {
	items := make([]Item, 0, len(baseStats)+len(elementKeys))
	items = append(items, baseStats...)
	for _, e := range elementKeys {
		// pyrodmgbonus -> pyro_dmg_
		items = append(items, Item{Key: e + "dmgbonus", Name: e + "_dmg_"})
	}
	return items
}

func elementItems() []Item {
	items := make([]Item, 0, len(elementKeys))
	for _, e := range elementKeys {
		items = append(items, Item{Key: e, Name: strings.ToUpper(e[:1]) + e[1:]})
	}
	return items
}
