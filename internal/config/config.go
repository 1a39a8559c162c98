package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/kolah/specir/internal/complexity"
)

type Config struct {
	Spec           string           `koanf:"spec"`
	Out            string           `koanf:"out"`
	Format         string           `koanf:"format"`
	Pretty         bool             `koanf:"pretty"`
	ValidateSpec   bool             `koanf:"validate"`
	ExcludeSchemas []string         `koanf:"exclude-schemas"`
	Complexity     ComplexityConfig `koanf:"complexity"`
}

type ComplexityConfig struct {
	Threshold int `koanf:"threshold"`
}

// BindCommonFlags binds the flags shared by every subcommand that reads a
// spec.
func BindCommonFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: specir.yaml)")
	flags.StringP("spec", "s", "", "OpenAPI spec file path")
	flags.StringP("out", "o", "", "Output file path (default: stdout)")
	flags.String("format", "", "Output format: json or yaml")
	flags.Bool("pretty", false, "Indent JSON output")
	flags.Bool("validate", false, "Validate the spec before building")
	flags.StringSlice("exclude-schemas", nil, "Schemas to exclude")
	flags.Int("threshold", 0, "Complexity extraction threshold")
}

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		configFile, _ = cmd.PersistentFlags().GetString("config")
	}
	if configFile == "" {
		if _, err := os.Stat("specir.yaml"); err == nil {
			configFile = "specir.yaml"
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Format == "" {
		cfg.Format = "json"
	}
	if cfg.Complexity.Threshold == 0 {
		cfg.Complexity.Threshold = complexity.DefaultThreshold
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)

	getString := func(name string) string {
		if v, err := cmd.Flags().GetString(name); err == nil && v != "" {
			return v
		}
		if v, err := cmd.PersistentFlags().GetString(name); err == nil && v != "" {
			return v
		}
		return ""
	}

	getStringSlice := func(name string) []string {
		if v, err := cmd.Flags().GetStringSlice(name); err == nil && len(v) > 0 {
			return v
		}
		if v, err := cmd.PersistentFlags().GetStringSlice(name); err == nil && len(v) > 0 {
			return v
		}
		return nil
	}

	flagChanged := func(name string) bool {
		return cmd.Flags().Changed(name) || cmd.PersistentFlags().Changed(name)
	}

	getBool := func(name string) bool {
		if v, err := cmd.Flags().GetBool(name); err == nil && v {
			return v
		}
		if v, err := cmd.PersistentFlags().GetBool(name); err == nil {
			return v
		}
		return false
	}

	getInt := func(name string) int {
		if v, err := cmd.Flags().GetInt(name); err == nil && v != 0 {
			return v
		}
		if v, err := cmd.PersistentFlags().GetInt(name); err == nil {
			return v
		}
		return 0
	}

	if v := getString("spec"); v != "" {
		m["spec"] = v
	}
	if v := getString("out"); v != "" {
		m["out"] = v
	}
	if v := getString("format"); v != "" {
		m["format"] = v
	}
	if flagChanged("pretty") {
		m["pretty"] = getBool("pretty")
	}
	if flagChanged("validate") {
		m["validate"] = getBool("validate")
	}
	if v := getStringSlice("exclude-schemas"); len(v) > 0 {
		m["exclude-schemas"] = v
	}
	if v := getInt("threshold"); v != 0 {
		m["complexity.threshold"] = v
	}

	return m
}

// Validate checks field values after file and flag merging.
func (c *Config) Validate() error {
	if c.Spec == "" {
		return fmt.Errorf("spec file is required")
	}

	validFormats := map[string]bool{"json": true, "yaml": true}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid format: %s (valid: json, yaml)", c.Format)
	}

	if c.Complexity.Threshold < 1 {
		return fmt.Errorf("complexity threshold must be positive, got %d", c.Complexity.Threshold)
	}

	return nil
}
