package indicators

import (
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

const dateLayout = "2006-01-02"

// FormatPrice renders prices at or above one dollar with grouping and two decimals,
// and sub-dollar prices with six decimals.
func FormatPrice(v float64) string {
	if v >= 1 {
		return printer.Sprintf("$%.2f", v)
	}
	return printer.Sprintf("$%.6f", v)
}

// FormatVolume renders large volumes without decimals.
func FormatVolume(v float64) string {
	if v > 1000 {
		return printer.Sprintf("%.0f", v)
	}
	return printer.Sprintf("%.2f", v)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "latest session"
	}
	return t.UTC().Format(dateLayout)
}
