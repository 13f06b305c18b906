package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/adapter/storage/blob"
	"github.com/GraceHermine/GenerateurDocument/internal/docx"
	"github.com/GraceHermine/GenerateurDocument/internal/domain"
	"github.com/GraceHermine/GenerateurDocument/internal/render/convert"
	"github.com/GraceHermine/GenerateurDocument/internal/render/substitute"
)

// Run claims a PENDING document and generates it. Documents that are gone
// or already claimed are skipped, so redelivered jobs are harmless.
// Generation failures are recorded on the document, not returned.
func (s *Service) Run(ctx context.Context, id uuid.UUID) error {
	doc, err := s.docs.Claim(ctx, id, time.Now().UTC())
	switch {
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrNotFound):
		s.log.DebugContext(ctx, "document skipped",
			slog.String("document_id", id.String()),
			slog.String("reason", err.Error()),
		)
		return nil
	case err != nil:
		return fmt.Errorf("claim document: %w", err)
	}

	s.log.InfoContext(ctx, "document claimed",
		slog.String("document_id", doc.ID.String()),
		slog.String("status", doc.Status.String()),
		slog.Int("attempt", doc.Attempt),
	)

	s.execute(ctx, doc)
	return nil
}

// execute runs one PROCESSING attempt to its end and returns the document
// in its final state.
func (s *Service) execute(ctx context.Context, doc domain.Document) domain.Document {
	start := time.Now()

	final, err := s.produceSafely(ctx, doc)
	if err != nil {
		final = s.fail(ctx, doc, err)
	}

	if s.jobs != nil {
		s.jobs.RecordJob(final.Status.String(), final.Format.String(), time.Since(start))
	}
	return final
}

// produce renders the artifact, then stores it and completes the document
// while the attempt row is locked. A stale attempt can neither overwrite the
// artifact of a newer one nor complete the document.
func (s *Service) produce(ctx context.Context, doc domain.Document) (domain.Document, error) {
	result, title, err := s.renderDocument(ctx, doc)
	if err != nil {
		return domain.Document{}, err
	}

	now := time.Now().UTC()
	artifact := domain.Artifact{
		Key:         blob.DocumentKey(doc.ID, doc.Format),
		Filename:    convert.Filename(doc.ID, title, doc.Format, now),
		ContentType: result.ContentType,
		Size:        int64(len(result.Data)),
	}

	var completed domain.Document
	err = s.tx.RunInTx(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.docs.LockAttempt(ctx, doc.ID, doc.Attempt); err != nil {
			return fmt.Errorf("lock attempt: %w", err)
		}
		if _, err := s.blobs.Put(ctx, artifact.Key, result.Data); err != nil {
			return fmt.Errorf("store artifact: %w: %v", domain.ErrStorage, err)
		}
		d, err := s.docs.Complete(ctx, doc.ID, doc.Attempt, artifact, now)
		if err != nil {
			return fmt.Errorf("complete document: %w", err)
		}
		completed = d
		return nil
	})
	if err != nil {
		return domain.Document{}, err
	}

	s.log.InfoContext(ctx, "document completed",
		slog.String("document_id", doc.ID.String()),
		slog.String("status", completed.Status.String()),
		slog.Int("attempt", completed.Attempt),
		slog.String("converter", result.Converter),
		slog.Int64("size_bytes", artifact.Size),
	)
	return completed, nil
}

// produceSafely turns a panic below the job boundary into an error, so the
// attempt is failed instead of staying PROCESSING. The transaction opened by
// produce is rolled back before the panic reaches here.
func (s *Service) produceSafely(ctx context.Context, doc domain.Document) (final domain.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generation panic: %v", r)
		}
	}()
	return s.produce(ctx, doc)
}

// renderDocument loads the version source, substitutes the submitted values
// and converts the result to the requested format.
func (s *Service) renderDocument(ctx context.Context, doc domain.Document) (convert.Result, string, error) {
	version, err := s.templates.GetVersion(ctx, doc.TemplateVersionID)
	if err != nil {
		return convert.Result{}, "", fmt.Errorf("get template version: %w", err)
	}
	tpl, err := s.templates.GetByID(ctx, version.TemplateID)
	if err != nil {
		return convert.Result{}, "", fmt.Errorf("get template: %w", err)
	}

	source, err := s.blobs.Get(ctx, version.SourceKey)
	if err != nil {
		return convert.Result{}, "", fmt.Errorf("read template source: %w: %v", domain.ErrStorage, err)
	}
	parsed, err := docx.Open(source)
	if err != nil {
		return convert.Result{}, "", fmt.Errorf("open template source: %w", err)
	}

	repl := substitute.FromData(doc.InputData)
	if len(doc.Answers) > 0 {
		forms, err := s.forms.ListByVersion(ctx, version.ID)
		if err != nil {
			return convert.Result{}, "", fmt.Errorf("list forms: %w", err)
		}
		answered := substitute.FromAnswers(domain.AllQuestions(forms), doc.Answers, s.log)
		answered.Merge(repl)
		repl = answered
	}

	changed := substitute.Apply(parsed, repl)
	s.log.DebugContext(ctx, "placeholders substituted",
		slog.String("document_id", doc.ID.String()),
		slog.Int("keys", repl.Len()),
		slog.Int("paragraphs", changed),
	)

	result, err := s.render.Render(ctx, parsed, doc.Format)
	if err != nil {
		return convert.Result{}, "", fmt.Errorf("render %s: %w", doc.Format, err)
	}
	return result, tpl.Title, nil
}

// fail records the cause of a failed attempt. The returned document
// reflects the stored state, or the input with FAILED when it could not be
// stored.
func (s *Service) fail(ctx context.Context, doc domain.Document, cause error) domain.Document {
	ctx = context.WithoutCancel(ctx)

	failed, err := s.docs.Fail(ctx, doc.ID, doc.Attempt, cause.Error(), time.Now().UTC())
	if err != nil {
		s.log.ErrorContext(ctx, "record document failure",
			slog.String("document_id", doc.ID.String()),
			slog.Int("attempt", doc.Attempt),
			slog.String("cause", cause.Error()),
			slog.String("error", err.Error()),
		)
		if current, getErr := s.docs.GetByID(ctx, doc.ID); getErr == nil {
			return current
		}
		doc.Status = domain.DocumentStatusFailed
		msg := cause.Error()
		doc.ErrorLog = &msg
		return doc
	}

	s.log.WarnContext(ctx, "document failed",
		slog.String("document_id", doc.ID.String()),
		slog.String("status", failed.Status.String()),
		slog.Int("attempt", failed.Attempt),
		slog.String("error", cause.Error()),
	)
	return failed
}
