// Package constants provides shared constants for the compound-curves application.
package constants

// Input bounds enforced by the rendering surfaces.
const (
	// MinPrincipal is the smallest principal accepted by the input widgets
	MinPrincipal = 1.0

	// MaxPrincipal is the largest principal accepted by the input widgets
	MaxPrincipal = 10000.0

	// PrincipalStep is the widget step for the principal input
	PrincipalStep = 10.0

	// MinYears is the shortest horizon in years
	MinYears = 1

	// MaxYears is the longest horizon in years
	MaxYears = 50

	// MinRatePercent is the lowest annual rate, in percent
	MinRatePercent = 0.0

	// MaxRatePercent is the highest annual rate, in percent
	MaxRatePercent = 20.0

	// RatePercentStep is the widget step for the rate input, in percent
	RatePercentStep = 0.1
)

// Default calculation parameters.
const (
	DefaultPrincipal   = 100.0
	DefaultYears       = 10
	DefaultRatePercent = 5.0
	DefaultMode        = "fv"
)

// Financial constants
const (
	// DecimalPlaces is the precision for currency rounding
	DecimalPlaces = 2

	// CurrencySymbol prefixes every formatted amount
	CurrencySymbol = "€"

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// DefaultPalette is the fixed series palette, cycled in insertion order.
var DefaultPalette = []string{
	"#1f77b4",
	"#ff7f0e",
	"#2ca02c",
	"#d62728",
	"#9467bd",
	"#8c564b",
	"#e377c2",
	"#7f7f7f",
	"#bcbd22",
	"#17becf",
}

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "compound-curves.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides read by viper
	EnvPrefix = "COMPOUND_CURVES"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultSessionTTL is how long an idle browser session is kept, as a duration string
	DefaultSessionTTL = "2h"

	// SessionCookieName names the cookie carrying the session id
	SessionCookieName = "ffc_session"
)
