package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/kamera/internal/engine"
	"github.com/spf13/cobra"
)

// enginesCmd groups the engine pool commands.
var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "Manage the OCR engine pool",
}

var enginesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Start the engine pool and report whether it is ready",
	Long: `Construct the configured number of OCR engines with the configured trained
data, optionally restart them once, and shut them down again. Use it to verify
the tessdata directory and language before a scan.

Examples:
  kamera engines check
  kamera engines check --pool-size 2 --language eng --restart`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}

		start := time.Now()
		p, err := engine.NewPool(cfg.Engine.PoolSize, engineFactory(cfg), engine.WithLogger(slog.Default()))
		if err != nil {
			if errors.Is(err, engine.ErrNoBackend) {
				return fmt.Errorf("%w (rebuild with: go build -tags=tesseract ./cmd/kamera)", err)
			}
			return err
		}
		defer func() {
			if err := p.Close(); err != nil {
				slog.Warn("failed to close engine pool", "error", err)
			}
		}()

		if restart, _ := cmd.Flags().GetBool("restart"); restart {
			if err := p.Restart(); err != nil {
				return err
			}
		}

		status := engineStatus{
			Capacity:  p.Capacity(),
			Available: p.Available(),
			DataPath:  cfg.Engine.DataPath,
			Language:  cfg.Engine.Language,
			Startup:   time.Since(start).Round(time.Millisecond).String(),
		}
		return writeOutput(cmd.OutOrStdout(), cfg.Output.Format, status, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "%d of %d engines ready (%s, %s) in %s\n",
				status.Available, status.Capacity, status.Language, status.DataPath, status.Startup)
			return err
		})
	},
}

// engineStatus is the serialized result of an engine check.
type engineStatus struct {
	Capacity  int    `json:"capacity" yaml:"capacity"`
	Available int    `json:"available" yaml:"available"`
	DataPath  string `json:"data_path" yaml:"data_path"`
	Language  string `json:"language" yaml:"language"`
	Startup   string `json:"startup" yaml:"startup"`
}

func init() {
	rootCmd.AddCommand(enginesCmd)
	enginesCmd.AddCommand(enginesCheckCmd)
	enginesCheckCmd.Flags().Bool("restart", false, "restart the pool once after startup")
}
