package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the config reads,
// e.g. CHAINALLOC_HEAD or CHAINALLOC_DATABASE_URL.
const EnvPrefix = "CHAINALLOC"

// Config holds the settings for one chainalloc invocation
type Config struct {
	Scenario       string `mapstructure:"scenario"`
	LocationsFile  string `mapstructure:"locations"`
	InventoryFile  string `mapstructure:"inventory"`
	RequestsFile   string `mapstructure:"requests"`
	Head           string `mapstructure:"head"`
	Format         string `mapstructure:"format"`
	OutputDir      string `mapstructure:"output"`
	Verbose        bool   `mapstructure:"verbose"`
	LogLevel       string `mapstructure:"log-level"`
	MaxDepth       int    `mapstructure:"max-depth"`
	Serve          bool   `mapstructure:"serve"`
	Listen         string `mapstructure:"listen"`
	EventRetention int    `mapstructure:"event-retention"`
	DatabaseURL    string `mapstructure:"database-url"`
	Demo           bool   `mapstructure:"demo"`
}

// RegisterFlags defines the command line flags Load reads
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Optional config file (yaml, json or toml)")
	flags.String("scenario", "", "YAML scenario with locations, stock and requests")
	flags.String("locations", "", "CSV file with locations (name,fallback)")
	flags.String("inventory", "", "CSV file with stock (location,product,quantity)")
	flags.String("requests", "", "CSV file with requests (product,quantity)")
	flags.String("head", "", "Location the allocation starts at")
	flags.String("format", "text", "Output format (text, json, csv)")
	flags.String("output", "", "Directory to write results to instead of stdout")
	flags.BoolP("verbose", "v", false, "Enable verbose output")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.Int("max-depth", 0, "Maximum locations one allocation may consult (0 = unbounded)")
	flags.Bool("serve", false, "Run the HTTP server instead of a single allocation")
	flags.String("listen", ":8080", "HTTP listen address")
	flags.Int("event-retention", 1000, "Allocation runs whose events the server keeps (0 = unbounded)")
	flags.String("database-url", "", "Postgres DSN to load the location snapshot from")
	flags.Bool("demo", false, "Allocate against the built-in three-warehouse sample")
}

// Load resolves configuration from flags, environment and an optional
// config file, in that order of precedence.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return Config{}, fmt.Errorf("failed to bind flags: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the config names one usable input source and output format
func (c Config) Validate() error {
	switch c.Format {
	case "text", "json", "csv":
	default:
		return fmt.Errorf("unknown format %q (want text, json or csv)", c.Format)
	}
	if c.MaxDepth < 0 {
		return errors.New("max-depth cannot be negative")
	}
	if c.EventRetention < 0 {
		return errors.New("event-retention cannot be negative")
	}

	if c.Demo {
		return nil
	}

	csvFiles := c.LocationsFile != "" || c.InventoryFile != ""
	sources := 0
	for _, set := range []bool{c.Scenario != "", csvFiles, c.DatabaseURL != ""} {
		if set {
			sources++
		}
	}
	switch {
	case sources == 0:
		return errors.New("one of --scenario, --locations/--inventory, --database-url or --demo is required")
	case sources > 1:
		return errors.New("--scenario, --locations/--inventory and --database-url are mutually exclusive")
	}

	if csvFiles && (c.LocationsFile == "" || c.InventoryFile == "") {
		return errors.New("--locations and --inventory must be given together")
	}

	if !c.Serve {
		if c.Scenario == "" && c.RequestsFile == "" {
			return errors.New("--requests is required unless the scenario carries requests")
		}
	}
	return nil
}
