// Package config defines the data structures related to configuration and
// includes functions for loading and checking the config.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strings"

	"github.com/iwvelando/compound-curves/internal/curve"
	"github.com/iwvelando/compound-curves/internal/session"
	"github.com/iwvelando/compound-curves/pkg/constants"
	"github.com/iwvelando/compound-curves/pkg/mathutil"
	"github.com/iwvelando/compound-curves/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for compound-curves.
type Configuration struct {
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
	Palette  []string       `yaml:"palette,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// DefaultsConfig holds the initial widget values.
type DefaultsConfig struct {
	Mode        string  `yaml:"mode,omitempty"`
	Principal   float64 `yaml:"principal,omitempty"`
	Years       int     `yaml:"years,omitempty"`
	RatePercent float64 `yaml:"ratePercent,omitempty"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("defaults.mode", constants.DefaultMode)
	v.SetDefault("defaults.principal", constants.DefaultPrincipal)
	v.SetDefault("defaults.years", constants.DefaultYears)
	v.SetDefault("defaults.ratePercent", constants.DefaultRatePercent)
	v.SetDefault("palette", constants.DefaultPalette)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A missing file yields the defaults.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file, %s", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file, %s", err)
		}
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

// Validate returns an error for settings that cannot be used at all.
func (c *Configuration) Validate() error {
	if err := validation.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := validation.ValidateLogFormat(c.Logging.Format); err != nil {
		return err
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			return err
		}
	}
	if _, err := curve.ParseMode(c.Defaults.Mode); err != nil {
		return err
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	d := c.Defaults
	if math.IsNaN(d.Principal) || d.Principal < constants.MinPrincipal || d.Principal > constants.MaxPrincipal {
		warnings = append(warnings, fmt.Sprintf("default principal %.2f outside [%.0f, %.0f], it will be clamped",
			d.Principal, constants.MinPrincipal, constants.MaxPrincipal))
	}
	if d.Years < constants.MinYears || d.Years > constants.MaxYears {
		warnings = append(warnings, fmt.Sprintf("default years %d outside [%d, %d], it will be clamped",
			d.Years, constants.MinYears, constants.MaxYears))
	}
	if math.IsNaN(d.RatePercent) || d.RatePercent < constants.MinRatePercent || d.RatePercent > constants.MaxRatePercent {
		warnings = append(warnings, fmt.Sprintf("default rate %.1f%% outside [%.1f%%, %.1f%%], it will be clamped",
			d.RatePercent, constants.MinRatePercent, constants.MaxRatePercent))
	}

	for _, color := range c.Palette {
		if err := validation.ValidateHexColor(color); err != nil {
			warnings = append(warnings, err.Error()+", the default palette will be used")
			break
		}
	}
	if len(c.Palette) == 0 {
		warnings = append(warnings, "palette is empty, the default palette will be used")
	}

	return warnings
}

// EffectivePalette returns the configured palette, or the default one when
// the configured palette is empty or contains malformed colors.
func (c *Configuration) EffectivePalette() []string {
	if len(c.Palette) == 0 {
		return constants.DefaultPalette
	}
	for _, color := range c.Palette {
		if validation.ValidateHexColor(color) != nil {
			return constants.DefaultPalette
		}
	}
	return c.Palette
}

// Params returns the clamped initial calculation parameters.
func (c *Configuration) Params() session.Params {
	mode, err := curve.ParseMode(c.Defaults.Mode)
	if err != nil {
		mode = curve.FutureValue
	}
	return session.Params{
		Mode:      mode,
		Principal: c.Defaults.Principal,
		Years:     c.Defaults.Years,
		Rate:      mathutil.PercentToRate(c.Defaults.RatePercent),
	}.Clamp()
}
