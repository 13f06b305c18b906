package template

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

// UpdateQuestion edits the suggested label, type, required flag or choices
// of a question. Choices are kept only for select questions.
func (s *Service) UpdateQuestion(ctx context.Context, input UpdateQuestionInput) (domain.Question, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return domain.Question{}, err
	}
	if err := input.Validate(); err != nil {
		return domain.Question{}, err
	}

	q, err := s.forms.GetQuestion(ctx, input.QuestionID)
	if err != nil {
		return domain.Question{}, fmt.Errorf("get question: %w", err)
	}

	if input.Label != nil {
		q.Label = strings.TrimSpace(*input.Label)
	}
	if input.Type != nil {
		q.Type = *input.Type
	}
	if input.Required != nil {
		q.Required = *input.Required
	}
	if input.Choices != nil {
		q.Choices = make([]string, len(input.Choices))
		for i, c := range input.Choices {
			q.Choices[i] = strings.TrimSpace(c)
		}
	}
	if q.Type != domain.FieldTypeSelect {
		q.Choices = nil
	} else if len(q.Choices) == 0 {
		return domain.Question{}, domain.NewValidationError("choices", "required for select questions")
	}

	updated, err := s.forms.UpdateQuestion(ctx, q)
	if err != nil {
		return domain.Question{}, fmt.Errorf("update question: %w", err)
	}

	s.log.InfoContext(ctx, "question updated",
		slog.String("question_id", q.ID.String()),
		slog.String("type", string(updated.Type)),
	)

	return updated, nil
}
