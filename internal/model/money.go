package model

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var euroPrinter = message.NewPrinter(language.English)

// FormatEUR renders an amount as "€18,000.00".
func FormatEUR(v float64) string {
	return euroPrinter.Sprintf("€%.2f", v)
}
