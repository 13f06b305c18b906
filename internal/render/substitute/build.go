package substitute

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

// FromAnswers builds replacements from validated answers. Each value is
// registered under the question's raw label and its variable key. Raw labels
// are registered first and a variable key never overrides a label, so a
// placeholder always resolves to the answer of the question it produced.
// Answers referencing an unknown question are skipped.
func FromAnswers(questions []domain.Question, answers []domain.Answer, log *slog.Logger) *Replacements {
	byID := make(map[uuid.UUID]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	type resolved struct {
		q     domain.Question
		value string
	}
	known := make([]resolved, 0, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			log.Warn("answer references unknown question", slog.String("question_id", a.QuestionID.String()))
			continue
		}
		known = append(known, resolved{q: q, value: a.Value})
	}

	repl := NewReplacements()
	for _, r := range known {
		repl.Set(r.q.Label, r.value)
	}
	for _, r := range known {
		if _, taken := repl.Get(r.q.Variable); !taken {
			repl.Set(r.q.Variable, r.value)
		}
	}
	return repl
}

// FromData builds replacements from a key/value input map. Keys are applied
// longest first so that a key never shadows a longer key it prefixes.
func FromData(data map[string]any) *Replacements {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	repl := NewReplacements()
	for _, k := range keys {
		repl.Set(k, Stringify(data[k]))
	}
	return repl
}

// Merge appends the keys of other that are not registered yet.
func (r *Replacements) Merge(other *Replacements) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		if _, ok := r.values[k]; !ok {
			r.Set(k, other.values[k])
		}
	}
}

// Stringify renders an input value the way it should appear in a document.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ", ")
	case interface{ String() string }:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
