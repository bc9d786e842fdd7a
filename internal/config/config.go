package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MeKo-Tech/kamera/internal/catalog"
	"github.com/MeKo-Tech/kamera/internal/engine"
	"github.com/MeKo-Tech/kamera/internal/extract"
	"github.com/MeKo-Tech/kamera/internal/resolver"
)

// Config represents the complete configuration for the kamera tool.
// It is loaded from configuration files, environment variables and
// command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Engine   EngineConfig   `mapstructure:"engine" yaml:"engine" json:"engine"`
	Resolver ResolverConfig `mapstructure:"resolver" yaml:"resolver" json:"resolver"`
	Catalog  CatalogConfig  `mapstructure:"catalog" yaml:"catalog" json:"catalog"`
	Extract  ExtractConfig  `mapstructure:"extract" yaml:"extract" json:"extract"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output" json:"output"`
}

// EngineConfig contains OCR engine pool settings.
type EngineConfig struct {
	DataPath string `mapstructure:"data_path" yaml:"data_path" json:"data_path"`
	Language string `mapstructure:"language" yaml:"language" json:"language"`
	PoolSize int    `mapstructure:"pool_size" yaml:"pool_size" json:"pool_size"`
	// AcquireTimeout bounds the wait for a free engine. Zero waits forever.
	AcquireTimeout time.Duration `mapstructure:"acquire_timeout" yaml:"acquire_timeout" json:"acquire_timeout"`
}

// ResolverConfig contains fuzzy matching settings.
type ResolverConfig struct {
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence" json:"min_confidence"`
}

// CatalogConfig locates the catalog files.
type CatalogConfig struct {
	Dir           string        `mapstructure:"dir" yaml:"dir" json:"dir"`
	Watch         bool          `mapstructure:"watch" yaml:"watch" json:"watch"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce" yaml:"watch_debounce" json:"watch_debounce"`
	// Aliases maps character keys to the names the player gave them.
	Aliases map[string]string `mapstructure:"aliases" yaml:"aliases" json:"aliases"`
}

// ExtractConfig contains recognition and preprocessing defaults.
type ExtractConfig struct {
	Mode        string  `mapstructure:"mode" yaml:"mode" json:"mode"`
	NumbersOnly bool    `mapstructure:"numbers_only" yaml:"numbers_only" json:"numbers_only"`
	Separator   string  `mapstructure:"separator" yaml:"separator" json:"separator"`
	Scale       float64 `mapstructure:"scale" yaml:"scale" json:"scale"`
	Grayscale   bool    `mapstructure:"grayscale" yaml:"grayscale" json:"grayscale"`
	Contrast    float64 `mapstructure:"contrast" yaml:"contrast" json:"contrast"`
	Invert      bool    `mapstructure:"invert" yaml:"invert" json:"invert"`
	Threshold   int     `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
}

// MetricsConfig controls the metrics textfile dump.
type MetricsConfig struct {
	File string `mapstructure:"file" yaml:"file" json:"file"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	tess := engine.DefaultTesseractConfig()
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Engine: EngineConfig{
			DataPath: tess.DataPath,
			Language: tess.Language,
			PoolSize: engine.DefaultCapacity,
		},
		Resolver: ResolverConfig{
			MinConfidence: resolver.DefaultThreshold,
		},
		Catalog: CatalogConfig{
			Dir:           "./catalog",
			WatchDebounce: catalog.DefaultWatchDebounce,
		},
		Extract: ExtractConfig{
			Mode: engine.SingleLine.String(),
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validFormats   = []string{"text", "json", "yaml"}
)

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	if c.Engine.PoolSize <= 0 {
		return fmt.Errorf("invalid engine pool size: %d (must be positive)", c.Engine.PoolSize)
	}
	if c.Engine.AcquireTimeout < 0 {
		return fmt.Errorf("invalid engine acquire timeout: %s (must not be negative)", c.Engine.AcquireTimeout)
	}
	if c.Engine.Language == "" {
		return errors.New("engine language must not be empty")
	}

	if c.Resolver.MinConfidence < 0 || c.Resolver.MinConfidence > 100 {
		return fmt.Errorf("invalid resolver.min_confidence: %.2f (must be between 0 and 100)", c.Resolver.MinConfidence)
	}

	if c.Catalog.Watch && c.Catalog.Dir == "" {
		return errors.New("catalog.watch requires catalog.dir")
	}
	for key, name := range c.Catalog.Aliases {
		if catalog.Normalize(name) == "" {
			return fmt.Errorf("invalid catalog.aliases[%s]: name must contain letters or digits", key)
		}
	}
	if c.Catalog.WatchDebounce < 0 {
		return fmt.Errorf("invalid catalog.watch_debounce: %s (must not be negative)", c.Catalog.WatchDebounce)
	}

	if _, err := engine.ParsePageSegMode(c.Extract.Mode); err != nil {
		return fmt.Errorf("invalid extract.mode: %w", err)
	}
	if c.Extract.Scale < 0 {
		return fmt.Errorf("invalid extract.scale: %.2f (must not be negative)", c.Extract.Scale)
	}
	if c.Extract.Contrast < -100 || c.Extract.Contrast > 100 {
		return fmt.Errorf("invalid extract.contrast: %.2f (must be between -100 and 100)", c.Extract.Contrast)
	}
	if c.Extract.Threshold < 0 || c.Extract.Threshold > 255 {
		return fmt.Errorf("invalid extract.threshold: %d (must be between 0 and 255)", c.Extract.Threshold)
	}

	return nil
}

// ToTesseractConfig converts the engine section for the Tesseract backend.
func (c *Config) ToTesseractConfig() engine.TesseractConfig {
	return engine.TesseractConfig{
		DataPath: c.Engine.DataPath,
		Language: c.Engine.Language,
	}
}

// ToExtractOptions converts the extract section into per-call options.
func (c *Config) ToExtractOptions() (extract.Options, error) {
	mode, err := engine.ParsePageSegMode(c.Extract.Mode)
	if err != nil {
		return extract.Options{}, err
	}
	return extract.Options{
		Mode:        mode,
		NumbersOnly: c.Extract.NumbersOnly,
		Separator:   c.Extract.Separator,
		Preprocess: extract.Preprocess{
			Scale:     c.Extract.Scale,
			Grayscale: c.Extract.Grayscale,
			Contrast:  c.Extract.Contrast,
			Invert:    c.Extract.Invert,
			Threshold: uint8(min(max(c.Extract.Threshold, 0), 255)),
		},
	}, nil
}
