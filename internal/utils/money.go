package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money represents a monetary value in the smallest currency unit (cents for
// most currencies). The engine keeps balances as float64; Money exists so
// display formatting rounds once and prints exact digits.
type Money int64

// Currency represents a currency with its formatting rules
type Currency struct {
	Code          string // ISO 4217 code (e.g., "USD")
	Symbol        string // Display symbol (e.g., "$")
	SymbolFirst   bool   // True if symbol comes before amount
	DecimalPlaces int    // Usually 2, but 0 for JPY, KRW, etc.
	ThousandsSep  string // Thousands separator
	DecimalSep    string // Decimal separator
}

// Common currencies with formatting rules
var Currencies = map[string]Currency{
	"USD": {Code: "USD", Symbol: "$", SymbolFirst: true, DecimalPlaces: 2, ThousandsSep: ",", DecimalSep: "."},
	"EUR": {Code: "EUR", Symbol: "€", SymbolFirst: true, DecimalPlaces: 2, ThousandsSep: ".", DecimalSep: ","},
	"GBP": {Code: "GBP", Symbol: "£", SymbolFirst: true, DecimalPlaces: 2, ThousandsSep: ",", DecimalSep: "."},
	"JPY": {Code: "JPY", Symbol: "¥", SymbolFirst: true, DecimalPlaces: 0, ThousandsSep: ",", DecimalSep: "."},
	"INR": {Code: "INR", Symbol: "₹", SymbolFirst: true, DecimalPlaces: 2, ThousandsSep: ",", DecimalSep: "."},
	"PHP": {Code: "PHP", Symbol: "₱", SymbolFirst: true, DecimalPlaces: 2, ThousandsSep: ",", DecimalSep: "."},
	"SEK": {Code: "SEK", Symbol: "kr", SymbolFirst: false, DecimalPlaces: 2, ThousandsSep: " ", DecimalSep: ","},
	"CHF": {Code: "CHF", Symbol: "CHF", SymbolFirst: true, DecimalPlaces: 2, ThousandsSep: "'", DecimalSep: "."},
}

// DefaultCurrency is used when a currency code is not found
var DefaultCurrency = Currency{Code: "USD", Symbol: "$", SymbolFirst: true, DecimalPlaces: 2, ThousandsSep: ",", DecimalSep: "."}

// FromMajor converts major units to a currency's minor units, rounding half away from zero
func FromMajor(amount float64, decimalPlaces int) Money {
	return Money(math.Round(amount * math.Pow10(decimalPlaces)))
}

// ToCents returns the value in cents (the underlying representation)
func (m Money) ToCents() int64 {
	return int64(m)
}

// String returns a simple string representation (e.g., "123.45")
func (m Money) String() string {
	negative := m < 0
	if negative {
		m = -m
	}
	dollars := int64(m) / 100
	cents := int64(m) % 100

	result := fmt.Sprintf("%d.%02d", dollars, cents)
	if negative {
		result = "-" + result
	}
	return result
}

// Format formats the money value with the given currency.
// m must already be in that currency's minor units.
func (m Money) Format(currencyCode string) string {
	currency := GetCurrency(currencyCode)

	negative := m < 0
	if negative {
		m = -m
	}

	// Calculate multiplier based on decimal places
	multiplier := int64(1)
	for i := 0; i < currency.DecimalPlaces; i++ {
		multiplier *= 10
	}

	// Get whole and fractional parts
	whole := int64(m) / multiplier
	frac := int64(m) % multiplier

	// Format whole part with thousands separator
	wholeStr := formatWithSeparator(whole, currency.ThousandsSep)

	// Build result
	var result string
	if currency.DecimalPlaces > 0 {
		fracStr := fmt.Sprintf("%0*d", currency.DecimalPlaces, frac)
		result = wholeStr + currency.DecimalSep + fracStr
	} else {
		result = wholeStr
	}

	// Add symbol
	if currency.SymbolFirst {
		result = currency.Symbol + result
	} else {
		result = result + " " + currency.Symbol
	}

	if negative {
		result = "-" + result
	}

	return result
}

// FormatAmount renders a major-unit amount for display. An empty currency
// code prints the shortest plain number ("10000", "12.5").
func FormatAmount(amount float64, currencyCode string) string {
	if currencyCode == "" {
		return strconv.FormatFloat(amount, 'f', -1, 64)
	}
	currency := GetCurrency(currencyCode)
	return FromMajor(amount, currency.DecimalPlaces).Format(currency.Code)
}

// formatWithSeparator adds thousands separators to a number
func formatWithSeparator(n int64, sep string) string {
	str := strconv.FormatInt(n, 10)
	if len(str) <= 3 || sep == "" {
		return str
	}

	var result strings.Builder
	startOffset := len(str) % 3
	if startOffset == 0 {
		startOffset = 3
	}

	result.WriteString(str[:startOffset])
	for i := startOffset; i < len(str); i += 3 {
		result.WriteString(sep)
		result.WriteString(str[i : i+3])
	}

	return result.String()
}

// GetCurrency returns the currency configuration for a code, or the default if not found
func GetCurrency(code string) Currency {
	if c, ok := Currencies[strings.ToUpper(code)]; ok {
		return c
	}
	return DefaultCurrency
}

// IsKnownCurrency reports whether code has formatting rules
func IsKnownCurrency(code string) bool {
	_, ok := Currencies[strings.ToUpper(code)]
	return ok
}
