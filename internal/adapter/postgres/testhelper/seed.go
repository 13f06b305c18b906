package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// SeedTemplate creates a template without versions.
func SeedTemplate(t *testing.T, pool *pgxpool.Pool) domain.Template {
	t.Helper()

	ts := now()
	tpl := domain.Template{
		ID:          uuid.New(),
		Title:       "Template " + uniqueSuffix(),
		Description: "seeded",
		Category:    "test",
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO templates (id, title, description, category, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		tpl.ID, tpl.Title, tpl.Description, tpl.Category, tpl.CreatedAt, tpl.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTemplate: %v", err)
	}
	return tpl
}

// SeedVersion creates an active version of templateID with the given
// number and schema. Other versions of the template are deactivated.
func SeedVersion(t *testing.T, pool *pgxpool.Pool, templateID uuid.UUID, number int, schema domain.InputSchema) domain.TemplateVersion {
	t.Helper()
	ctx := context.Background()

	if schema == nil {
		schema = domain.InputSchema{}
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("testhelper: SeedVersion marshal schema: %v", err)
	}

	v := domain.TemplateVersion{
		ID:             uuid.New(),
		TemplateID:     templateID,
		VersionNumber:  number,
		SourceKey:      "templates/" + templateID.String() + "/seed.docx",
		SourceFilename: "seed.docx",
		InputSchema:    schema,
		IsActive:       true,
		CreatedAt:      now(),
	}

	if _, err := pool.Exec(ctx,
		`UPDATE template_versions SET is_active = false WHERE template_id = $1`, templateID,
	); err != nil {
		t.Fatalf("testhelper: SeedVersion deactivate: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO template_versions (id, template_id, version_number, source_key, source_filename, input_schema, is_active, change_log, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		v.ID, v.TemplateID, v.VersionNumber, v.SourceKey, v.SourceFilename, raw, v.IsActive, v.ChangeLog, v.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedVersion: %v", err)
	}
	return v
}

// SeedDocument creates a PENDING document for versionID.
func SeedDocument(t *testing.T, pool *pgxpool.Pool, versionID uuid.UUID, ownerID *uuid.UUID) domain.Document {
	t.Helper()

	ts := now()
	d := domain.Document{
		ID:                uuid.New(),
		TemplateVersionID: versionID,
		OwnerID:           ownerID,
		Format:            domain.OutputFormatDOCX,
		InputData:         map[string]any{},
		Status:            domain.DocumentStatusPending,
		CreatedAt:         ts,
		UpdatedAt:         ts,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO documents (id, template_version_id, owner_id, format, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.TemplateVersionID, d.OwnerID, string(d.Format), string(d.Status), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDocument: %v", err)
	}
	return d
}
