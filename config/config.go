package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/meysamhadeli/assetgraph/constants/lipgloss"
	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config represents the structure of the configuration file
type Config struct {
	Prefix        string                   `mapstructure:"prefix"`
	Address       string                   `mapstructure:"address"`
	BaseURL       string                   `mapstructure:"base_url"`
	Concurrency   int                      `mapstructure:"concurrency"`
	EnableCache   bool                     `mapstructure:"enable_cache"`
	CacheSize     int                      `mapstructure:"cache_size"`
	Minify        bool                     `mapstructure:"minify"`
	Closure       string                   `mapstructure:"closure"`
	LogLevel      string                   `mapstructure:"log_level"`
	LogFormat     string                   `mapstructure:"log_format"`
	Files         []models.StaticFile      `mapstructure:"files"`
	Directories   []models.StaticDirectory `mapstructure:"directories"`
	Extensions    map[string]string        `mapstructure:"extensions"`
	CSSProperties map[string]string        `mapstructure:"css_properties"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Prefix:      "/static",
	Address:     ":8080",
	BaseURL:     "",
	Concurrency: 0,
	EnableCache: true,
	CacheSize:   256,
	Minify:      false,
	Closure:     string(models.ClosureSinglePass),
	LogLevel:    "info",
	LogFormat:   "colorful",
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and environment variables, and returns the final config.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	var config *Config

	setDefaults()

	viper.AutomaticEnv()
	bindEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	} else {
		viper.SetConfigName("static-config")
		viper.AddConfigPath(cwd)
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
			fmt.Fprintln(os.Stderr, lipgloss.Yellow.Render("No configuration file found, using defaults"))
		}
	}

	bindFlags(rootCmd)

	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.applyMountFlags(rootCmd); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("prefix", DefaultConfig.Prefix)
	viper.SetDefault("address", DefaultConfig.Address)
	viper.SetDefault("base_url", DefaultConfig.BaseURL)
	viper.SetDefault("concurrency", DefaultConfig.Concurrency)
	viper.SetDefault("enable_cache", DefaultConfig.EnableCache)
	viper.SetDefault("cache_size", DefaultConfig.CacheSize)
	viper.SetDefault("minify", DefaultConfig.Minify)
	viper.SetDefault("closure", DefaultConfig.Closure)
	viper.SetDefault("log_level", DefaultConfig.LogLevel)
	viper.SetDefault("log_format", DefaultConfig.LogFormat)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv() {
	_ = viper.BindEnv("prefix", "STATIC_PREFIX")
	_ = viper.BindEnv("address", "STATIC_ADDRESS")
	_ = viper.BindEnv("base_url", "STATIC_BASE_URL")
	_ = viper.BindEnv("concurrency", "STATIC_CONCURRENCY")
	_ = viper.BindEnv("enable_cache", "STATIC_ENABLE_CACHE")
	_ = viper.BindEnv("cache_size", "STATIC_CACHE_SIZE")
	_ = viper.BindEnv("minify", "STATIC_MINIFY")
	_ = viper.BindEnv("closure", "STATIC_CLOSURE")
	_ = viper.BindEnv("log_level", "STATIC_LOG_LEVEL")
	_ = viper.BindEnv("log_format", "STATIC_LOG_FORMAT")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(rootCmd *cobra.Command) {
	for _, key := range []string{"prefix", "address", "base_url", "concurrency", "enable_cache", "cache_size", "minify", "closure", "log_level", "log_format"} {
		if flag := rootCmd.PersistentFlags().Lookup(key); flag != nil {
			_ = viper.BindPFlag(key, flag)
		}
	}
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	// Use PersistentFlags so that these flags are available in all subcommands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	rootCmd.PersistentFlags().String("prefix", DefaultConfig.Prefix, "URL prefix every static file is served under.")
	rootCmd.PersistentFlags().String("address", DefaultConfig.Address, "Address the server listens on (e.g., ':8080').")
	rootCmd.PersistentFlags().String("base_url", DefaultConfig.BaseURL, "Absolute origin prepended to early hint URLs (e.g., 'https://cdn.example.com').")
	rootCmd.PersistentFlags().Int("concurrency", DefaultConfig.Concurrency, "Maximum files read in parallel during setup (0 uses the number of CPUs).")
	rootCmd.PersistentFlags().Bool("enable_cache", DefaultConfig.EnableCache, "Enable or disable the rendered artifact cache")
	rootCmd.PersistentFlags().Int("cache_size", DefaultConfig.CacheSize, "Maximum number of rendered artifacts kept in memory.")
	rootCmd.PersistentFlags().Bool("minify", DefaultConfig.Minify, "Minify CSS and JavaScript responses.")
	rootCmd.PersistentFlags().String("closure", DefaultConfig.Closure, "Dependency graph closure: 'single-pass' or 'transitive'.")
	rootCmd.PersistentFlags().String("log_level", DefaultConfig.LogLevel, "Log level: 'trace', 'debug', 'info', 'warn' or 'error'.")
	rootCmd.PersistentFlags().String("log_format", DefaultConfig.LogFormat, "Log format: 'colorful' or 'json'.")

	rootCmd.PersistentFlags().StringArray("dir", nil, "Serve a directory as alias=path. Repeatable.")
	rootCmd.PersistentFlags().StringArray("file", nil, "Serve a single file as alias=path. Repeatable.")

	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}

// applyMountFlags appends --dir and --file mounts after the configured ones.
func (c *Config) applyMountFlags(rootCmd *cobra.Command) error {
	flags := rootCmd.PersistentFlags()
	if flags.Lookup("dir") != nil {
		dirs, err := flags.GetStringArray("dir")
		if err != nil {
			return err
		}
		for _, value := range dirs {
			alias, path, err := ParseMount(value)
			if err != nil {
				return fmt.Errorf("invalid --dir: %w", err)
			}
			c.Directories = append(c.Directories, models.StaticDirectory{Alias: alias, Path: path})
		}
	}
	if flags.Lookup("file") != nil {
		files, err := flags.GetStringArray("file")
		if err != nil {
			return err
		}
		for _, value := range files {
			alias, path, err := ParseMount(value)
			if err != nil {
				return fmt.Errorf("invalid --file: %w", err)
			}
			if alias == "" {
				return fmt.Errorf("invalid --file %q: alias is required", value)
			}
			c.Files = append(c.Files, models.StaticFile{Alias: alias, Path: path})
		}
	}
	return nil
}

// ParseMount splits "alias=path". A value without "=" mounts path under an empty alias.
func ParseMount(value string) (string, string, error) {
	alias, path, found := strings.Cut(value, "=")
	if !found {
		alias, path = "", value
	}
	alias = strings.Trim(strings.TrimSpace(alias), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return "", "", fmt.Errorf("%q has no path", value)
	}
	return alias, path, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if _, err := models.ParseClosureMode(c.Closure); err != nil {
		return err
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "colorful", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative")
	}
	if _, err := c.CSSOverrides(); err != nil {
		return err
	}
	return nil
}

// CSSOverrides converts css_properties into parser overrides. "none" removes a property.
func (c *Config) CSSOverrides() (map[string]models.PolicyDirective, error) {
	overrides := make(map[string]models.PolicyDirective, len(c.CSSProperties))
	for property, value := range c.CSSProperties {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" || value == "none" {
			overrides[property] = models.DirectiveNone
			continue
		}
		directive, ok := models.ParseDirective(value)
		if !ok {
			return nil, fmt.Errorf("css property %q: unknown directive %q", property, value)
		}
		overrides[property] = directive
	}
	return overrides, nil
}

func ParseLogLevel(value string) (pterm.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "trace":
		return pterm.LogLevelTrace, nil
	case "debug":
		return pterm.LogLevelDebug, nil
	case "", "info":
		return pterm.LogLevelInfo, nil
	case "warn", "warning":
		return pterm.LogLevelWarn, nil
	case "error":
		return pterm.LogLevelError, nil
	case "disabled", "off":
		return pterm.LogLevelDisabled, nil
	default:
		return pterm.LogLevelInfo, fmt.Errorf("unknown log level %q", value)
	}
}

// NewLogger builds the pterm logger described by log_level and log_format.
func (c *Config) NewLogger(writer io.Writer) *pterm.Logger {
	level, _ := ParseLogLevel(c.LogLevel)
	logger := pterm.DefaultLogger.WithLevel(level)
	if writer != nil {
		logger = logger.WithWriter(writer)
	}
	if strings.EqualFold(c.LogFormat, "json") {
		logger = logger.WithFormatter(pterm.LogFormatterJSON)
	}
	return logger
}
