package cmd

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCommand(t *testing.T) {
	var names []string
	for _, sub := range catalogCmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "validate", "watch"}, names)
}

func TestCatalogValidate(t *testing.T) {
	out, _, err := executeCommand(t, "", "catalog", "validate", "--catalog-dir", sampleCatalogDir(t), "--format", "json")
	require.NoError(t, err)

	var counts catalogCounts
	require.NoError(t, json.Unmarshal([]byte(out), &counts))
	assert.Equal(t, catalogCounts{
		Characters: 7,
		Artifacts:  3,
		Weapons:    5,
		DevItems:   3,
		Materials:  4,
		Stats:      19,
		Elements:   7,
	}, counts)
}

func TestCatalogValidateMissingDir(t *testing.T) {
	_, _, err := executeCommand(t, "", "catalog", "validate", "--catalog-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load catalog")
}

func TestCatalogListCounts(t *testing.T) {
	out, _, err := executeCommand(t, "", "catalog", "list", "--catalog-dir", sampleCatalogDir(t))
	require.NoError(t, err)
	assert.Contains(t, out, "weapons:    5")
	assert.Contains(t, out, "elements:   7")
}

func TestCatalogListWeapons(t *testing.T) {
	out, _, err := executeCommand(t, "", "catalog", "list", "weapons", "--catalog-dir", sampleCatalogDir(t))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"dullblade\tDullBlade",
		"engulfinglightning\tEngulfingLightning",
		"favoniuslance\tFavoniusLance",
		"favoniussword\tFavoniusSword",
		"mistsplitterreforged\tMistsplitterReforged",
	}, strings.Split(strings.TrimSpace(out), "\n"))
}

func TestCatalogListCharactersShowsAlias(t *testing.T) {
	dir := sampleCatalogDir(t)
	viperSetAliases(t, map[string]string{"traveler": "Lumine"})

	out, _, err := executeCommand(t, "", "catalog", "list", "characters", "--catalog-dir", dir, "--format", "json")
	require.NoError(t, err)

	var entries []catalogEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 7)
	for _, e := range entries {
		if e.Key == "traveler" {
			assert.Equal(t, "lumine", e.Alias)
			return
		}
	}
	t.Fatal("traveler not listed")
}

func TestCatalogListArtifacts(t *testing.T) {
	out, _, err := executeCommand(t, "", "catalog", "list", "artifacts", "--catalog-dir", sampleCatalogDir(t))
	require.NoError(t, err)
	assert.Contains(t, out, "emblemofseveredfate\tEmblemOfSeveredFate\t[Magnificent Tsuba, Sundered Damask]")
}

func TestCatalogListBuiltinTables(t *testing.T) {
	// stats and elements need no files, but the directory must still load.
	out, _, err := executeCommand(t, "", "catalog", "list", "elements", "--catalog-dir", sampleCatalogDir(t))
	require.NoError(t, err)
	assert.Contains(t, out, "electro\tElectro")
}

func TestCatalogListUnknownTable(t *testing.T) {
	_, _, err := executeCommand(t, "", "catalog", "list", "hats", "--catalog-dir", sampleCatalogDir(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument")
}

func TestCatalogWatchStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := sampleCatalogDir(t)
	_, errOut, err := executeCommandContext(t, ctx, "", "catalog", "watch", "--catalog-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, errOut, "watching catalog directory")
}
