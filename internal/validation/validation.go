// Package validation содержит функции валидации входных данных.
package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxFieldLength ограничивает длину текстовых полей бюджета и отзыва.
const MaxFieldLength = 500

// NormalizeEmail приводит email к виду, в котором он хранится и ищется.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail проверяет, что адрес содержит непустые локальную часть и домен.
func IsValidEmail(email string) bool {
	if email == "" || strings.ContainsAny(email, " \t\r\n") {
		return false
	}

	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}

	return strings.Count(email, "@") == 1
}

// IsValidPhoneBR проверяет, что в номере от 10 до 13 цифр: DDD и номер, возможно с кодом страны.
func IsValidPhoneBR(phone string) bool {
	digits := 0
	for _, ch := range phone {
		if unicode.IsDigit(ch) {
			digits++
			continue
		}
		if !strings.ContainsRune(" +-()./", ch) {
			return false
		}
	}

	return digits >= 10 && digits <= 13
}

// IsValidField проверяет, что после обрезки пробелов поле не пустое и не длиннее MaxFieldLength.
func IsValidField(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && utf8.RuneCountInString(s) <= MaxFieldLength
}
