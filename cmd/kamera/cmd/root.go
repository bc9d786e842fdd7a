package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/kamera/internal/config"
	"github.com/MeKo-Tech/kamera/internal/metrics"
	"github.com/MeKo-Tech/kamera/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "kamera",
	Short: "OCR text extraction and fuzzy catalog matching for game inventory screens",
	Long: `kamera reads text from inventory screenshots with a pool of Tesseract
engines and maps the noisy results onto canonical catalog values
(characters, weapons, artifact sets, materials, stats).

Examples:
  kamera resolve stat "CRIT Rate"
  kamera resolve weapon "Favonius Sw0rd" --min-confidence 85
  kamera extract name.png --resolve character
  kamera catalog list weapons --format yaml
  kamera engines check --pool-size 2`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		}
		return cmd.Help()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.Metrics.File == "" {
			return nil
		}
		if err := metrics.WriteFile(cfg.Metrics.File); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
// This allows tests to execute commands without calling os.Exit().
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is search in ., $HOME, $HOME/.config/kamera, /etc/kamera)")
	flags.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.StringP("format", "f", "text", "output format (text, json, yaml)")
	flags.String("catalog-dir", "./catalog", "directory holding the catalog files")
	flags.Bool("watch-catalog", false, "reload the catalog when its files change while resolve or extract runs")
	flags.StringToString("alias", nil, "custom character name as key=name, e.g. traveler=Aether (repeatable)")
	flags.Float64("min-confidence", 90, "minimum similarity (0-100) a fuzzy match must exceed")
	flags.String("metrics-file", "", "write Prometheus metrics in text format to this file on exit")
	flags.Bool("version", false, "print version information and exit")

	// Engine pool
	flags.String("data-path", "./tessdata", "directory holding the trained language data")
	flags.String("language", "genshin_fast_09_04_21", "trained recognition profile")
	flags.Int("pool-size", 8, "number of OCR engines kept in the pool")
	flags.Duration("acquire-timeout", 0, "how long to wait for a free engine (0 waits forever)")

	bindFlags(rootCmd.PersistentFlags(), []flagBinding{
		{"verbose", "verbose"},
		{"log_level", "log-level"},
		{"output.format", "format"},
		{"catalog.dir", "catalog-dir"},
		{"catalog.watch", "watch-catalog"},
		{"catalog.aliases", "alias"},
		{"resolver.min_confidence", "min-confidence"},
		{"metrics.file", "metrics-file"},
		{"engine.data_path", "data-path"},
		{"engine.language", "language"},
		{"engine.pool_size", "pool-size"},
		{"engine.acquire_timeout", "acquire-timeout"},
	})

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if globalConfig == nil {
			initConfig()
		}

		var logLevel slog.Level
		if globalConfig.Verbose {
			logLevel = slog.LevelDebug
		} else {
			switch globalConfig.LogLevel {
			case "debug":
				logLevel = slog.LevelDebug
			case "warn":
				logLevel = slog.LevelWarn
			case "error":
				logLevel = slog.LevelError
			default:
				logLevel = slog.LevelInfo
			}
		}

		// Logs go to stderr so stdout stays clean for results.
		logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configLoader = config.NewLoader()

	// Commands validate after flags are merged in, so only read errors stop here.
	var err error
	if cfgFile != "" {
		globalConfig, err = configLoader.LoadWithFileWithoutValidation(cfgFile)
	} else {
		globalConfig, err = configLoader.LoadWithoutValidation()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}

// GetConfig returns the configuration including flags set on the command line.
func GetConfig() *config.Config {
	if globalConfig == nil {
		initConfig()
	}

	// Flags are bound after the initial load, so unmarshal again.
	var cfg config.Config
	if err := GetConfigLoader().GetViper().Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling updated configuration: %v\n", err)
		return globalConfig
	}
	return &cfg
}

// GetConfigLoader returns the global configuration loader.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		configLoader = config.NewLoader()
	}
	return configLoader
}

type flagBinding struct {
	key  string
	flag string
}

// bindFlags binds flags to configuration keys on the global viper instance.
func bindFlags(fs *pflag.FlagSet, bindings []flagBinding) {
	for _, b := range bindings {
		if err := viper.BindPFlag(b.key, fs.Lookup(b.flag)); err != nil {
			panic(fmt.Sprintf("bind flag --%s to %s: %v", b.flag, b.key, err))
		}
	}
}
