// Package marketing содержит генераторы продающих текстов и работу с суммами в реалах.
package marketing

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	brPrinter = message.NewPrinter(language.BrazilianPortuguese)
	// 2.000 или 1.250.000 без запятой: точки разделяют тысячи.
	thousandsOnly = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
)

// FormatBRL форматирует сумму как "R$ 1.234,56".
func FormatBRL(v float64) string {
	return "R$ " + brPrinter.Sprintf("%.2f", v)
}

// ParseBRL извлекает сумму из свободного текста вроде "R$ 1.234,56" или "850".
// Запятая считается десятичным разделителем, точки разделяют тысячи.
func ParseBRL(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0, false
	}

	switch {
	case strings.Contains(cleaned, ","):
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case thousandsOnly.MatchString(cleaned):
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SumBRL складывает суммы, пропуская значения, которые не удалось разобрать.
func SumBRL(values []string) float64 {
	var total float64
	for _, s := range values {
		if v, ok := ParseBRL(s); ok {
			total += v
		}
	}
	return total
}
