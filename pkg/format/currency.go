// Package format renders amounts for display.
package format

import (
	"fmt"
	"math"

	"github.com/iwvelando/compound-curves/pkg/constants"
	"github.com/iwvelando/compound-curves/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with a euro sign and thousands separators (e.g., "-€1,234.56").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-" + constants.CurrencySymbol + formatted
	}
	return constants.CurrencySymbol + formatted
}

// Percent renders a rate (0.05) as a one-decimal percentage ("5.0%").
func Percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", mathutil.RateToPercent(rate))
}

func formatPositiveCurrency(value float64) string {
	return printer.Sprintf("%.2f", mathutil.Round(value))
}
