package dashboard

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var revenuePrinter = message.NewPrinter(language.English)

// formatRevenue renders cents as a grouped dollar amount, e.g. "$1,234.56".
func formatRevenue(cents int64) string {
	return revenuePrinter.Sprintf("$%d.%02d", cents/100, cents%100)
}
