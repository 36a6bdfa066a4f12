package services

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
)

// FormatUSD formats an amount as US dollars with thousands separators and
// exactly 2 decimal places (e.g., $1,234,567.80).
func FormatUSD(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	result := "$" + humanize.FormatFloat("#,###.##", amount)
	// Rounding can turn a tiny negative into zero; never print "-$0.00".
	if negative && result != "$0.00" {
		result = "-" + result
	}
	return result
}

// FormatNumber groups thousands and keeps up to 3 fraction digits, trimming
// trailing zeros (1234.5 -> "1,234.5", 2000 -> "2,000").
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return humanize.CommafWithDigits(v, 3)
}

// FormatFixed renders v with a fixed number of decimals and no grouping.
func FormatFixed(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// FormatPercent renders a fraction as a percentage (0.12 -> "12%").
func FormatPercent(fraction float64, decimals int) string {
	return FormatFixed(fraction*100, decimals) + "%"
}

// Titleize turns an identifier like "storage_30days" into "Storage 30days".
func Titleize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	runes := []rune(s)
	atWordStart := true
	for i, r := range runes {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r)
		if isWord && atWordStart {
			runes[i] = unicode.ToUpper(r)
		}
		atWordStart = !isWord
	}
	return string(runes)
}

// Capitalize upper-cases the first letter only ("interstate" -> "Interstate").
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
