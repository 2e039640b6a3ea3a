package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-readiness/constants"
	"github.com/joseph-ayodele/permit-readiness/internal/common"
	"github.com/joseph-ayodele/permit-readiness/internal/entity"
)

var validationColumns = []string{"id", "project_id", "document_id", "checklist_item_id", "status", "notes", "validated_at"}

// ValidationRepository stores validation outcomes. Records are append-only.
type ValidationRepository interface {
	Create(ctx context.Context, rec *entity.ValidationRecord) error
	LatestForDocument(ctx context.Context, documentID uuid.UUID) (*entity.ValidationRecord, error)
	LatestForItem(ctx context.Context, projectID uuid.UUID, itemID string) (*entity.ValidationRecord, error)
	History(ctx context.Context, documentID uuid.UUID) ([]*entity.ValidationRecord, error)
	LatestByProject(ctx context.Context, projectID uuid.UUID) (map[uuid.UUID]*entity.ValidationRecord, error)
}

type validationRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewValidationRepository(db *DB, logger *slog.Logger) ValidationRepository {
	return &validationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *validationRepository) Create(ctx context.Context, rec *entity.ValidationRecord) error {
	if !rec.Status.Valid() {
		return fmt.Errorf("status %q: %w", rec.Status, common.ErrInvalidInput)
	}
	notes := rec.Notes
	if notes == nil {
		notes = []string{}
	}
	raw, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	q, args := r.db.builder().Insert(tableValidations).
		Columns(validationColumns...).
		Values(rec.ID, rec.ProjectID, rec.DocumentID, rec.ChecklistItemID, string(rec.Status), string(raw), rec.ValidatedAt.UTC()).
		Query()
	if _, err := exec(ctx, r.db.drv, q, args); err != nil {
		r.logger.Error("failed to store validation", "document_id", rec.DocumentID, "status", rec.Status, "error", err)
		return common.WrapError(err, "create validation")
	}
	return nil
}

func (r *validationRepository) LatestForDocument(ctx context.Context, documentID uuid.UUID) (*entity.ValidationRecord, error) {
	return r.latest(ctx, entsql.EQ("document_id", documentID))
}

func (r *validationRepository) LatestForItem(ctx context.Context, projectID uuid.UUID, itemID string) (*entity.ValidationRecord, error) {
	return r.latest(ctx, entsql.And(
		entsql.EQ("project_id", projectID),
		entsql.EQ("checklist_item_id", itemID),
	))
}

// History returns every validation of a document, newest first.
func (r *validationRepository) History(ctx context.Context, documentID uuid.UUID) ([]*entity.ValidationRecord, error) {
	b := r.db.builder()
	q, args := b.Select(validationColumns...).
		From(b.Table(tableValidations)).
		Where(entsql.EQ("document_id", documentID)).
		OrderBy(entsql.Desc("validated_at")).
		Query()
	recs, err := r.list(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to list validation history", "document_id", documentID, "error", err)
		return nil, common.WrapError(err, "validation history")
	}
	return recs, nil
}

// LatestByProject returns the latest record per document of a project.
func (r *validationRepository) LatestByProject(ctx context.Context, projectID uuid.UUID) (map[uuid.UUID]*entity.ValidationRecord, error) {
	b := r.db.builder()
	q, args := b.Select(validationColumns...).
		From(b.Table(tableValidations)).
		Where(entsql.EQ("project_id", projectID)).
		OrderBy(entsql.Desc("validated_at")).
		Query()
	recs, err := r.list(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to list project validations", "project_id", projectID, "error", err)
		return nil, common.WrapError(err, "project validations")
	}
	out := make(map[uuid.UUID]*entity.ValidationRecord, len(recs))
	for _, rec := range recs {
		if _, seen := out[rec.DocumentID]; !seen {
			out[rec.DocumentID] = rec
		}
	}
	return out, nil
}

func (r *validationRepository) latest(ctx context.Context, where *entsql.Predicate) (*entity.ValidationRecord, error) {
	b := r.db.builder()
	q, args := b.Select(validationColumns...).
		From(b.Table(tableValidations)).
		Where(where).
		OrderBy(entsql.Desc("validated_at")).
		Limit(1).
		Query()
	recs, err := r.list(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to get latest validation", "error", err)
		return nil, common.WrapError(err, "latest validation")
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("validation: %w", common.ErrNotFound)
	}
	return recs[0], nil
}

func (r *validationRepository) list(ctx context.Context, q string, args []any) ([]*entity.ValidationRecord, error) {
	var out []*entity.ValidationRecord
	err := query(ctx, r.db.drv, q, args, func(rs rowScanner) error {
		var (
			rec    entity.ValidationRecord
			status string
			raw    string
		)
		if err := rs.Scan(&rec.ID, &rec.ProjectID, &rec.DocumentID, &rec.ChecklistItemID, &status, &raw, &rec.ValidatedAt); err != nil {
			return err
		}
		rec.Status = constants.ValidationStatus(status)
		rec.Notes = []string{}
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &rec.Notes); err != nil {
				return fmt.Errorf("decode notes for validation %s: %w", rec.ID, err)
			}
		}
		out = append(out, &rec)
		return nil
	})
	return out, err
}
