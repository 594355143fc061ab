package domain

import (
	"fmt"
	"strings"
)

// LanguageCode identifies one of the languages a tag can carry text for.
// The zero value means "no language given".
type LanguageCode string

// Supported languages.
const (
	EN LanguageCode = "EN"
	DE LanguageCode = "DE"
	ES LanguageCode = "ES"
	FR LanguageCode = "FR"
	IT LanguageCode = "IT"
	RM LanguageCode = "RM"
)

// Languages lists every supported language in slot order.
// Listing operations emit texts in this order.
var Languages = []LanguageCode{EN, DE, ES, FR, IT, RM}

// ParseLanguage converts a two-letter code (any case) into a LanguageCode.
// Returns ErrValidation for codes outside Languages.
func ParseLanguage(s string) (LanguageCode, error) {
	code := LanguageCode(strings.ToUpper(strings.TrimSpace(s)))
	if !code.Valid() {
		return "", fmt.Errorf("%w: unsupported language %q", ErrValidation, s)
	}
	return code, nil
}

// Valid reports whether l is one of the supported languages.
func (l LanguageCode) Valid() bool {
	for _, known := range Languages {
		if l == known {
			return true
		}
	}
	return false
}

// LocaleIndex returns the slot of l in a record's text array.
//
// Codes outside Languages resolve to slot 0, the same slot as EN. Callers
// must reject such codes with ParseLanguage or Valid before writing,
// otherwise the write lands on the English text.
func LocaleIndex(l LanguageCode) int {
	switch l {
	case EN:
		return 0
	case DE:
		return 1
	case ES:
		return 2
	case FR:
		return 7
	case IT:
		return 8
	case RM:
		return 28
	default:
		return 0
	}
}
