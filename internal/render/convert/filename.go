package convert

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

const (
	maxSlugLen   = 50
	fallbackSlug = "document"
)

// Filename returns the download name of a generated document:
// <id>_<slug>_<YYYYmmdd_HHMMSS>.<ext>, using only [A-Za-z0-9._-].
func Filename(id uuid.UUID, title string, format domain.OutputFormat, now time.Time) string {
	return id.String() + "_" + Slug(title) + "_" + now.UTC().Format("20060102_150405") + "." + format.Extension()
}

// Slug reduces a title to ASCII letters, digits and dashes joined by
// underscores. Accents are stripped; an empty result yields "document".
func Slug(title string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		stripped = title
	}

	var b strings.Builder
	sep := false
	for _, r := range stripped {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-') {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			sep = false
			continue
		}
		sep = true
	}

	slug := b.String()
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "_-")
	}
	if slug == "" {
		return fallbackSlug
	}
	return slug
}
