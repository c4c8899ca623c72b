package estimate

import "fmt"

// FormatMinutes renders a duration for display, e.g. "about 25 min" or
// "about 1 h 5 min".
func FormatMinutes(minutes int) string {
	if minutes < 1 {
		return "about 1 min"
	}
	if minutes < 60 {
		return fmt.Sprintf("about %d min", minutes)
	}
	h := minutes / 60
	m := minutes % 60
	if m == 0 {
		return fmt.Sprintf("about %d h", h)
	}
	return fmt.Sprintf("about %d h %d min", h, m)
}

// FormatCurrency renders an amount in yuan with two decimals.
func FormatCurrency(amount float64) string {
	return fmt.Sprintf("¥%.2f", amount)
}
