package cmd

import (
	"encoding/json"
	"image"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/kamera/internal/engine"
	"github.com/MeKo-Tech/kamera/internal/engine/enginetest"
	"github.com/MeKo-Tech/kamera/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegionImages(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		testutil.SaveImage(t, testutil.TextImage(name), paths[i])
	}
	return paths
}

func TestExtractCommand(t *testing.T) {
	assert.True(t, strings.HasPrefix(extractCmd.Use, "extract"))
	assert.NotEmpty(t, extractCmd.Short)
	for _, name := range []string{"recursive", "include", "exclude", "mode", "numbers-only", "separator", "scale", "grayscale", "contrast", "invert", "threshold", "region", "resolve"} {
		assert.NotNil(t, extractCmd.Flags().Lookup(name), name)
	}
}

func TestExtractText(t *testing.T) {
	f := &enginetest.Factory{Lines: enginetest.StaticLines("Favonius", "Sword")}
	useFakeEngines(t, f)
	paths := writeRegionImages(t, "a.png", "b.png", "c.png")

	out, _, err := executeCommand(t, "", append([]string{"extract", "--separator", " ", "--pool-size", "2"}, paths...)...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for i, line := range lines {
		assert.Equal(t, paths[i]+"\tFavonius Sword", line)
	}

	// Never more engines than requested or than images.
	assert.Len(t, f.Built(), 2)
	for _, e := range f.Built() {
		assert.False(t, e.SharedUse())
		assert.True(t, e.Closed())
	}
}

func TestExtractPoolSizeCappedByImages(t *testing.T) {
	f := &enginetest.Factory{Lines: enginetest.StaticLines("7")}
	useFakeEngines(t, f)
	paths := writeRegionImages(t, "level.png")

	_, _, err := executeCommand(t, "", "extract", paths[0], "--numbers-only", "--mode", "single_block")
	require.NoError(t, err)

	require.Len(t, f.Built(), 1)
	calls := f.Built()[0].Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, engine.RecognizeOptions{Mode: engine.SingleBlock, NumbersOnly: true}, calls[0].Opts)
}

func TestExtractRegionAndScale(t *testing.T) {
	f := &enginetest.Factory{}
	useFakeEngines(t, f)
	paths := writeRegionImages(t, "screen.png")

	_, _, err := executeCommand(t, "", "extract", paths[0], "--region", "2,2,12,8", "--scale", "2")
	require.NoError(t, err)

	calls := f.Built()[0].Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 20, calls[0].Bounds.Dx())
	assert.Equal(t, 12, calls[0].Bounds.Dy())
}

func TestExtractResolveJSON(t *testing.T) {
	useFakeEngines(t, &enginetest.Factory{Lines: enginetest.StaticLines("Favonius Sw0rd")})
	paths := writeRegionImages(t, "weapon.png")

	out, _, err := executeCommand(t, "", "extract", paths[0],
		"--resolve", "weapon", "--catalog-dir", sampleCatalogDir(t), "--format", "json")
	require.NoError(t, err)

	var records []extractRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, paths[0], records[0].File)
	assert.Equal(t, "Favonius Sw0rd", records[0].Text)
	require.NotNil(t, records[0].Resolution)
	assert.Equal(t, "FavoniusSword", records[0].Resolution.Value)
	assert.Equal(t, "fuzzy", records[0].Resolution.Method)
}

func TestExtractResolveWatchesCatalog(t *testing.T) {
	useFakeEngines(t, &enginetest.Factory{Lines: enginetest.StaticLines("Dull Blade")})
	paths := writeRegionImages(t, "weapon.png")
	dir := sampleCatalogDir(t)

	out, errOut, err := executeCommand(t, "", "extract", paths[0],
		"--resolve", "weapon", "--catalog-dir", dir, "--watch-catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "DullBlade")
	assert.Contains(t, errOut, "watching catalog directory")
}

func TestExtractDirectory(t *testing.T) {
	useFakeEngines(t, &enginetest.Factory{Lines: enginetest.StaticLines("Amber")})
	paths := writeRegionImages(t, "name_1.png", "name_2.png", "level.png")
	dir := filepath.Dir(paths[0])

	out, _, err := executeCommand(t, "", "extract", dir, "--include", "name_*")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{paths[0] + "\tAmber", paths[1] + "\tAmber"}, lines)
}

func TestExtractErrors(t *testing.T) {
	paths := writeRegionImages(t, "ok.png")
	txt := testutil.WriteFile(t, t.TempDir(), "notes.txt", []byte("hello"))

	tests := []struct {
		name    string
		factory *enginetest.Factory
		args    []string
		want    string
	}{
		{"unsupported", &enginetest.Factory{}, []string{"extract", txt}, "unsupported image format"},
		{"missing file", &enginetest.Factory{}, []string{"extract", filepath.Join(t.TempDir(), "gone.png")}, "gone.png"},
		{"bad region", &enginetest.Factory{}, []string{"extract", paths[0], "--region", "1,2,3"}, "invalid region"},
		{"bad mode", &enginetest.Factory{}, []string{"extract", paths[0], "--mode", "columns"}, "invalid extract.mode"},
		{"unknown domain", &enginetest.Factory{}, []string{"extract", paths[0], "--resolve", "hat"}, "unknown domain"},
		{"engine init", &enginetest.Factory{FailAt: 1}, []string{"extract", paths[0]}, "initialization failed"},
		{"no images", &enginetest.Factory{}, []string{"extract"}, "requires at least 1 arg"},
		{"empty dir", &enginetest.Factory{}, []string{"extract", t.TempDir()}, "no image files found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useFakeEngines(t, tt.factory)
			_, _, err := executeCommand(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseRegion(t *testing.T) {
	r, err := parseRegion("10, 20,110,45")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(10, 20, 110, 45), r)

	// Corners are canonicalized.
	r, err = parseRegion("110,45,10,20")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(10, 20, 110, 45), r)

	for _, bad := range []string{"", "1,2,3", "a,b,c,d", "5,5,5,9"} {
		_, err := parseRegion(bad)
		assert.Error(t, err, bad)
	}
}
