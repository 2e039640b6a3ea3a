package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-readiness/internal/common"
	"github.com/joseph-ayodele/permit-readiness/internal/entity"
)

var projectColumns = []string{"id", "name", "jurisdiction", "checklist", "created_at", "updated_at"}

type ProjectRepository interface {
	Create(ctx context.Context, p *entity.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	List(ctx context.Context) ([]*entity.Project, error)
	UpdateChecklist(ctx context.Context, id uuid.UUID, checklist entity.Checklist, updatedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type projectRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewProjectRepository(db *DB, logger *slog.Logger) ProjectRepository {
	return &projectRepository{
		db:     db,
		logger: logger,
	}
}

func (r *projectRepository) Create(ctx context.Context, p *entity.Project) error {
	raw, err := json.Marshal(checklistOrEmpty(p.Checklist))
	if err != nil {
		return fmt.Errorf("encode checklist: %w", err)
	}
	q, args := r.db.builder().Insert(tableProjects).
		Columns(projectColumns...).
		Values(p.ID, p.Name, p.Jurisdiction, string(raw), p.CreatedAt.UTC(), p.UpdatedAt.UTC()).
		Query()
	if _, err := exec(ctx, r.db.drv, q, args); err != nil {
		r.logger.Error("failed to create project", "name", p.Name, "jurisdiction", p.Jurisdiction, "error", err)
		return common.WrapError(err, "create project")
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	b := r.db.builder()
	q, args := b.Select(projectColumns...).
		From(b.Table(tableProjects)).
		Where(entsql.EQ("id", id)).
		Query()

	var found *entity.Project
	err := query(ctx, r.db.drv, q, args, func(rs rowScanner) error {
		p, err := scanProject(rs)
		found = p
		return err
	})
	if err != nil {
		r.logger.Error("failed to get project", "project_id", id, "error", err)
		return nil, common.WrapError(err, "get project")
	}
	if found == nil {
		return nil, fmt.Errorf("project %s: %w", id, common.ErrNotFound)
	}
	return found, nil
}

// List returns all projects, newest first.
func (r *projectRepository) List(ctx context.Context) ([]*entity.Project, error) {
	b := r.db.builder()
	q, args := b.Select(projectColumns...).
		From(b.Table(tableProjects)).
		OrderBy(entsql.Desc("created_at")).
		Query()

	var out []*entity.Project
	err := query(ctx, r.db.drv, q, args, func(rs rowScanner) error {
		p, err := scanProject(rs)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to list projects", "error", err)
		return nil, common.WrapError(err, "list projects")
	}
	return out, nil
}

func (r *projectRepository) UpdateChecklist(ctx context.Context, id uuid.UUID, checklist entity.Checklist, updatedAt time.Time) error {
	raw, err := json.Marshal(checklistOrEmpty(checklist))
	if err != nil {
		return fmt.Errorf("encode checklist: %w", err)
	}
	q, args := r.db.builder().Update(tableProjects).
		Set("checklist", string(raw)).
		Set("updated_at", updatedAt.UTC()).
		Where(entsql.EQ("id", id)).
		Query()
	n, err := exec(ctx, r.db.drv, q, args)
	if err != nil {
		r.logger.Error("failed to update checklist", "project_id", id, "error", err)
		return common.WrapError(err, "update checklist")
	}
	if n == 0 {
		return fmt.Errorf("project %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// Delete removes the project with its documents and validation history.
func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	b := r.db.builder()
	var deleted int64
	err := r.db.withTx(ctx, func(tx dialect.Tx) error {
		q, args := b.Delete(tableValidations).Where(entsql.EQ("project_id", id)).Query()
		if _, err := exec(ctx, tx, q, args); err != nil {
			return err
		}
		q, args = b.Delete(tableDocuments).Where(entsql.EQ("project_id", id)).Query()
		if _, err := exec(ctx, tx, q, args); err != nil {
			return err
		}
		q, args = b.Delete(tableProjects).Where(entsql.EQ("id", id)).Query()
		n, err := exec(ctx, tx, q, args)
		deleted = n
		return err
	})
	if err != nil {
		r.logger.Error("failed to delete project", "project_id", id, "error", err)
		return common.WrapError(err, "delete project")
	}
	if deleted == 0 {
		return fmt.Errorf("project %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *projectRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	b := r.db.builder()
	q, args := b.Select("id").
		From(b.Table(tableProjects)).
		Where(entsql.EQ("id", id)).
		Limit(1).
		Query()
	exists := false
	err := query(ctx, r.db.drv, q, args, func(rowScanner) error {
		exists = true
		return nil
	})
	if err != nil {
		r.logger.Error("failed to check project existence", "project_id", id, "error", err)
		return false, common.WrapError(err, "check project")
	}
	return exists, nil
}

func scanProject(rs rowScanner) (*entity.Project, error) {
	var (
		p   entity.Project
		raw string
	)
	if err := rs.Scan(&p.ID, &p.Name, &p.Jurisdiction, &raw, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.Checklist); err != nil {
			return nil, fmt.Errorf("decode checklist for project %s: %w", p.ID, err)
		}
	}
	if p.Checklist == nil {
		p.Checklist = entity.Checklist{}
	}
	return &p, nil
}

func checklistOrEmpty(cl entity.Checklist) entity.Checklist {
	if cl == nil {
		return entity.Checklist{}
	}
	return cl
}
