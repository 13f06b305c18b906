package template

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
	"github.com/GraceHermine/GenerateurDocument/internal/render/extract"
)

// BuildForm turns extracted placeholders into one form titled after the
// template with one required question per placeholder, in document order.
//
// Labels that normalize to the same key get numbered suffixes (amount,
// amount_2, ...) so each question owns a distinct variable. Labels without
// any word character fall back to field_<position>.
func BuildForm(title string, versionID uuid.UUID, vars []extract.Variable, now time.Time) domain.Form {
	form := domain.Form{
		ID:                uuid.New(),
		TemplateVersionID: versionID,
		Title:             title,
		CreatedAt:         now,
		Questions:         make([]domain.Question, 0, len(vars)),
	}

	seen := make(map[string]int, len(vars))
	for i, v := range vars {
		key := domain.NormalizeKey(v.Label)
		if key == "" {
			key = "field_" + strconv.Itoa(i+1)
		}
		key = uniqueKey(key, seen)

		form.Questions = append(form.Questions, domain.Question{
			ID:       uuid.New(),
			FormID:   form.ID,
			Label:    v.Label,
			Variable: key,
			Type:     v.Type,
			Required: true,
			Position: i,
		})
	}
	return form
}

func uniqueKey(key string, seen map[string]int) string {
	n := seen[key]
	seen[key] = n + 1
	if n == 0 {
		return key
	}
	for {
		n++
		candidate := key + "_" + strconv.Itoa(n)
		if seen[candidate] == 0 {
			seen[candidate] = 1
			seen[key] = n
			return candidate
		}
	}
}
