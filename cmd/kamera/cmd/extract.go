package cmd

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/kamera/internal/engine"
	"github.com/MeKo-Tech/kamera/internal/extract"
	"github.com/MeKo-Tech/kamera/internal/resolver"
	"github.com/spf13/cobra"
)

// extractCmd represents the extract command.
var extractCmd = &cobra.Command{
	Use:   "extract <image|dir...>",
	Short: "Recognize the text in screenshot regions",
	Long: `Run OCR on one or more image files. Each file is one region, for example a
cropped item name or stat line. Directories contribute the images they contain.
Images are processed concurrently with at most one engine per image.

Supported formats: JPEG, PNG, GIF, BMP, TIFF, WebP

Examples:
  kamera extract name.png
  kamera extract level.png --numbers-only --threshold 160
  kamera extract screen.png --region 1230,120,1700,170 --resolve weapon
  kamera extract cards/ --mode single_block --separator " " --format json
  kamera extract shots/ -r --include "name_*.png"`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}

		opts, err := cfg.ToExtractOptions()
		if err != nil {
			return err
		}
		if region, _ := cmd.Flags().GetString("region"); region != "" {
			if opts.Preprocess.Region, err = parseRegion(region); err != nil {
				return err
			}
		}

		// Resolve the domain first so a typo fails before any engine starts.
		var lookup func(string) resolver.Result
		if name, _ := cmd.Flags().GetString("resolve"); name != "" {
			var release func()
			if lookup, release, err = newLookup(cmd.Context(), cfg, name); err != nil {
				return err
			}
			defer release()
		}

		recursive, _ := cmd.Flags().GetBool("recursive")
		include, _ := cmd.Flags().GetStringSlice("include")
		exclude, _ := cmd.Flags().GetStringSlice("exclude")
		files, err := extract.Discover(args, recursive, include, exclude)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return errors.New("no image files found")
		}

		imgs := make([]image.Image, len(files))
		for i, path := range files {
			if !extract.IsSupportedImage(path) {
				return fmt.Errorf("unsupported image format: %s", path)
			}
			if imgs[i], err = extract.LoadImage(path); err != nil {
				return err
			}
		}

		p, err := engine.NewPool(min(cfg.Engine.PoolSize, len(imgs)), engineFactory(cfg),
			engine.WithLogger(slog.Default()))
		if err != nil {
			return err
		}
		defer func() {
			if err := p.Close(); err != nil {
				slog.Warn("failed to close engine pool", "error", err)
			}
		}()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		x := extract.New(p,
			extract.WithAcquireTimeout(cfg.Engine.AcquireTimeout),
			extract.WithLogger(slog.Default()))
		texts, err := x.ExtractAll(ctx, imgs, opts)
		if err != nil {
			return err
		}

		records := make([]extractRecord, len(texts))
		for i, text := range texts {
			records[i] = extractRecord{File: files[i], Text: text}
			if lookup != nil {
				rec := newResultRecord(lookup(text))
				records[i].Resolution = &rec
			}
		}

		err = writeOutput(cmd.OutOrStdout(), cfg.Output.Format, records, func(w io.Writer) error {
			for _, r := range records {
				if _, err := fmt.Fprintln(w, r); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	},
}

// extractRecord is the serialized result for one image.
type extractRecord struct {
	File       string        `json:"file" yaml:"file"`
	Text       string        `json:"text" yaml:"text"`
	Resolution *resultRecord `json:"resolution,omitempty" yaml:"resolution,omitempty"`
}

func (r extractRecord) String() string {
	if r.Resolution == nil {
		return fmt.Sprintf("%s\t%s", r.File, r.Text)
	}
	return fmt.Sprintf("%s\t%s", r.File, r.Resolution)
}

// parseRegion parses "x0,y0,x1,y1" into a rectangle.
func parseRegion(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("invalid region %q: want x0,y0,x1,y1", s)
	}
	var n [4]int
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid region %q: %w", s, err)
		}
		n[i] = v
	}
	r := image.Rect(n[0], n[1], n[2], n[3])
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("invalid region %q: empty rectangle", s)
	}
	return r, nil
}

func init() {
	rootCmd.AddCommand(extractCmd)

	flags := extractCmd.Flags()
	flags.String("mode", engine.SingleLine.String(), "page segmentation mode (single_line, single_block, auto, sparse_text)")
	flags.Bool("numbers-only", false, "restrict recognition to digits")
	flags.String("separator", "", "string placed between recognized lines")
	flags.Float64("scale", 0, "resize factor applied before recognition (0 keeps the size)")
	flags.Bool("grayscale", false, "convert to grayscale before recognition")
	flags.Float64("contrast", 0, "contrast adjustment in percent (-100 to 100)")
	flags.Bool("invert", false, "invert colors, for light text on dark backgrounds")
	flags.Int("threshold", 0, "binarize at this luminance (1-255, 0 disables)")
	flags.String("region", "", "crop to x0,y0,x1,y1 before recognition")
	flags.BoolP("recursive", "r", false, "descend into subdirectories")
	flags.StringSlice("include", nil, "only process files whose name matches one of these patterns")
	flags.StringSlice("exclude", nil, "skip files whose name matches one of these patterns")
	flags.String("resolve", "", "resolve the text in this domain (see kamera resolve --help)")

	bindFlags(flags, []flagBinding{
		{"extract.mode", "mode"},
		{"extract.numbers_only", "numbers-only"},
		{"extract.separator", "separator"},
		{"extract.scale", "scale"},
		{"extract.grayscale", "grayscale"},
		{"extract.contrast", "contrast"},
		{"extract.invert", "invert"},
		{"extract.threshold", "threshold"},
	})
}
