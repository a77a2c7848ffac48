package format

import (
	"fmt"
	"strings"
	"time"
)

// FmtCurrency formats amount in minor units for basic currencies. Whole
// amounts drop the cents: FmtCurrency(5000, "USD", "en") => "$50".
func FmtCurrency(minor int64, currency, lang string) string {
	currency = strings.ToUpper(currency)
	neg := minor < 0
	if neg {
		minor = -minor
	}
	sign := ""
	if neg {
		sign = "-"
	}
	switch currency {
	case "USD", "EUR":
		symbol := "$"
		if currency == "EUR" {
			symbol = "€"
		}
		head := thousandSep(minor/100, lang)
		if cents := minor % 100; cents != 0 {
			return fmt.Sprintf("%s%s%s%s%02d", sign, symbol, head, decimalSep(lang), cents)
		}
		return sign + symbol + head
	case "JPY":
		return sign + "¥" + thousandSep(minor, lang)
	default:
		return fmt.Sprintf("%s%s %s", sign, currency, thousandSep(minor, lang))
	}
}

// FmtCount formats an integer with locale grouping: 10000 => "10,000".
func FmtCount(n int64, lang string) string {
	if n < 0 {
		return "-" + thousandSep(-n, lang)
	}
	return thousandSep(n, lang)
}

func thousandSep(n int64, lang string) string {
	sep := ","
	if strings.ToLower(lang) == "es" {
		sep = "."
	}
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			b.WriteString(sep)
		}
		b.WriteRune(c)
	}
	return b.String()
}

func decimalSep(lang string) string {
	if strings.ToLower(lang) == "es" {
		return ","
	}
	return "."
}

// FmtDate formats time in a locale-friendly short form.
func FmtDate(t time.Time, lang string) string {
	switch strings.ToLower(lang) {
	case "es":
		return t.Format("02/01/2006")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// FmtClock formats a chat timestamp as hours and minutes.
func FmtClock(t time.Time) string { return t.Format("15:04") }
