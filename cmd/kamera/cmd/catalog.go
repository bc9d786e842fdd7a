package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MeKo-Tech/kamera/internal/catalog"
	"github.com/spf13/cobra"
)

// catalogCmd groups the catalog maintenance commands.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect, validate and watch the catalog files",
	Long: `Work with the catalog directory that recognized text is matched against.

The directory holds characters, artifacts, weapons, materials and
developmentitems files in JSON or YAML. Stats and elements are built in.`,
}

var catalogListCmd = &cobra.Command{
	Use:       "list [" + strings.Join(listDomains, "|") + "]",
	Short:     "List catalog entries",
	Long:      "List the keys and canonical values of one catalog table, or the table sizes when no table is named.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: listDomains,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		snap := store.Snapshot()

		if len(args) == 0 {
			return writeCounts(cmd.OutOrStdout(), cfg.Output.Format, snap)
		}

		entries := listEntries(snap, args[0])
		return writeOutput(cmd.OutOrStdout(), cfg.Output.Format, entries, func(w io.Writer) error {
			for _, e := range entries {
				if _, err := fmt.Fprintln(w, e); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the catalog files load",
	Long: `Load the catalog directory and report the number of entries per table.
Missing required files, decode errors, blank keys and duplicate keys fail.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		return writeCounts(cmd.OutOrStdout(), cfg.Output.Format, store.Snapshot())
	},
}

var catalogWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the catalog whenever its files change",
	Long: `Load the catalog and keep reloading it while the files are edited, logging
every reload. A file that fails to load leaves the previous catalog in place.
Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := catalog.NewWatcher(cfg.Catalog.Dir, store, slog.Default())
		w.SetDebounce(cfg.Catalog.WatchDebounce)
		return w.Run(ctx)
	},
}

var listDomains = []string{"characters", "artifacts", "weapons", "devitems", "materials", "stats", "elements"}

// catalogEntry is the serialized form of one listed entry.
type catalogEntry struct {
	Key    string   `json:"key" yaml:"key"`
	Value  string   `json:"value" yaml:"value"`
	Alias  string   `json:"alias,omitempty" yaml:"alias,omitempty"`
	Pieces []string `json:"pieces,omitempty" yaml:"pieces,omitempty"`
}

func (e catalogEntry) String() string {
	s := e.Key + "\t" + e.Value
	if e.Alias != "" {
		s += "\t(alias " + e.Alias + ")"
	}
	if len(e.Pieces) > 0 {
		s += "\t[" + strings.Join(e.Pieces, ", ") + "]"
	}
	return s
}

func listEntries(snap *catalog.Snapshot, name string) []catalogEntry {
	var out []catalogEntry
	switch name {
	case "characters":
		for k, c := range snap.Characters().All() {
			out = append(out, catalogEntry{Key: k, Value: c.Name, Alias: c.CustomName})
		}
	case "artifacts":
		for k, a := range snap.ArtifactSets().All() {
			e := catalogEntry{Key: k, Value: a.Name}
			for _, p := range a.Pieces {
				e.Pieces = append(e.Pieces, p.Name)
			}
			out = append(out, e)
		}
	default:
		var t *catalog.Table[catalog.Item]
		switch name {
		case "weapons":
			t = snap.Weapons()
		case "devitems":
			t = snap.DevItems()
		case "materials":
			t = snap.Materials()
		case "stats":
			t = snap.Stats()
		case "elements":
			t = snap.Elements()
		default:
			return nil
		}
		for k, it := range t.All() {
			out = append(out, catalogEntry{Key: k, Value: it.Name})
		}
	}
	return out
}

// catalogCounts reports the size of every table.
type catalogCounts struct {
	Characters int `json:"characters" yaml:"characters"`
	Artifacts  int `json:"artifacts" yaml:"artifacts"`
	Weapons    int `json:"weapons" yaml:"weapons"`
	DevItems   int `json:"devitems" yaml:"devitems"`
	Materials  int `json:"materials" yaml:"materials"`
	Stats      int `json:"stats" yaml:"stats"`
	Elements   int `json:"elements" yaml:"elements"`
}

func writeCounts(w io.Writer, format string, snap *catalog.Snapshot) error {
	c := catalogCounts{
		Characters: snap.Characters().Len(),
		Artifacts:  snap.ArtifactSets().Len(),
		Weapons:    snap.Weapons().Len(),
		DevItems:   snap.DevItems().Len(),
		Materials:  snap.Materials().Len(),
		Stats:      snap.Stats().Len(),
		Elements:   snap.Elements().Len(),
	}
	return writeOutput(w, format, c, func(w io.Writer) error {
		_, err := fmt.Fprintf(w,
			"characters: %d\nartifacts:  %d\nweapons:    %d\ndevitems:   %d\nmaterials:  %d\nstats:      %d\nelements:   %d\n",
			c.Characters, c.Artifacts, c.Weapons, c.DevItems, c.Materials, c.Stats, c.Elements)
		return err
	})
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd, catalogValidateCmd, catalogWatchCmd)
}
