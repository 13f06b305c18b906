package extract

import (
	"slices"
	"strings"
	"unicode"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

// Keyword sets are matched against the words of a lowercased label.
// Labels are written in English or French.
var (
	dateKeywords = []string{
		"date", "day", "birthday", "birthdate", "deadline", "expiry", "expiration",
		"jour", "naissance", "echeance", "échéance", "délai", "delai",
	}
	emailKeywords = []string{
		"email", "mail", "courriel",
	}
	numberKeywords = []string{
		"amount", "count", "number", "quantity", "qty", "total", "price", "phone",
		"tel", "age", "rate", "percent", "percentage",
		"montant", "nombre", "quantité", "quantite", "prix", "téléphone", "telephone",
		"âge", "taux", "pourcentage",
	}
)

// InferType suggests a field type for a placeholder label. The guess is a
// default for form authors to correct, not a validation rule.
func InferType(label string) domain.FieldType {
	words := splitWords(strings.ToLower(label))
	switch {
	case matchAny(words, dateKeywords):
		return domain.FieldTypeDate
	case matchAny(words, emailKeywords):
		return domain.FieldTypeEmail
	case matchAny(words, numberKeywords):
		return domain.FieldTypeNumber
	default:
		return domain.FieldTypeText
	}
}

// splitWords splits on anything that is neither a letter nor a digit, so
// "date_naissance" and "e-mail" both break into keyword-sized words.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func matchAny(words, keywords []string) bool {
	for _, w := range words {
		if slices.Contains(keywords, w) {
			return true
		}
	}
	return false
}
