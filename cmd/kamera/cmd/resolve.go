package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MeKo-Tech/kamera/internal/resolver"
	"github.com/spf13/cobra"
)

// resolveCmd represents the resolve command.
var resolveCmd = &cobra.Command{
	Use:   "resolve <domain> [text...]",
	Short: "Match recognized text against the catalog",
	Long: `Resolve noisy text to canonical catalog values. Without text arguments,
one value per line is read from stdin; in text format each result is written
as soon as its line is read, so kamera can sit at the end of a pipe.

Domains: character, devitem, element, material, piece, set, slot, stat, weapon.
The stat, element and slot domains need no catalog files. With --watch-catalog
edits to the catalog files apply to the lines that follow.

Examples:
  kamera resolve stat "CRIT Rate" "ATK%"
  kamera resolve character "Kamisato Ayaca" --alias traveler=Lumine
  cat names.txt | kamera resolve weapon --format json
  ocr-feed | kamera resolve material --watch-catalog`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		lookup, release, err := newLookup(cmd.Context(), cfg, args[0])
		if err != nil {
			return err
		}
		defer release()

		out := newRecordWriter(cmd.OutOrStdout(), cfg.Output.Format)
		resolve := func(in string) error {
			if err := out.Write(newResultRecord(lookup(in))); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		}

		if inputs := args[1:]; len(inputs) > 0 {
			for _, in := range inputs {
				if err := resolve(in); err != nil {
					return err
				}
			}
		} else if err := eachLine(cmd.InOrStdin(), resolve); err != nil {
			return err
		}

		if err := out.Flush(); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}

		if strict, _ := cmd.Flags().GetBool("strict"); strict && out.unresolved > 0 {
			return fmt.Errorf("%d of %d values did not resolve", out.unresolved, out.total)
		}
		return nil
	},
}

// recordWriter prints text records as they arrive. JSON and YAML are one
// document, so those records are held until Flush.
type recordWriter struct {
	w       io.Writer
	format  string
	pending []resultRecord

	total, unresolved int
}

func newRecordWriter(w io.Writer, format string) *recordWriter {
	return &recordWriter{w: w, format: format}
}

func (rw *recordWriter) Write(r resultRecord) error {
	rw.total++
	if r.Status != resolver.StatusResolved.String() {
		rw.unresolved++
	}
	if rw.format == outputFormatJSON || rw.format == outputFormatYAML {
		rw.pending = append(rw.pending, r)
		return nil
	}
	_, err := fmt.Fprintln(rw.w, r)
	return err
}

func (rw *recordWriter) Flush() error {
	if rw.format != outputFormatJSON && rw.format != outputFormatYAML {
		return nil
	}
	records := rw.pending
	if records == nil {
		records = []resultRecord{}
	}
	rw.pending = nil
	return writeOutput(rw.w, rw.format, records, nil)
}

// eachLine calls fn with every non-blank line of r as soon as it is read.
func eachLine(r io.Reader, fn func(string) error) error {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		n++
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if n == 0 {
		return errors.New("read stdin: no input")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().Bool("strict", false, "exit with an error when any value does not resolve")
}
